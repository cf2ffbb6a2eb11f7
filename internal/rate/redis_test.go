package rate

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real: REDIS_ADDR=localhost:6379 go test ./internal/rate
func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := rdb.NewClient(&rdb.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	l := NewRedisLimiter(client, "test:rl:"+time.Now().Format("150405.000")+":", 2, time.Minute)
	fixed := time.Now()
	l.Now = func() time.Time { return fixed }

	r1, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, r1.Allowed)
	assert.EqualValues(t, 1, r1.Remaining)

	_, err = l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)

	r3, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, r3.Allowed)
	assert.EqualValues(t, 0, r3.Remaining)
	assert.Positive(t, r3.RetryAfter)
}

// fakeRedis implementa solo lo que RedisLimiter usa (TxPipeline con INCR +
// EXPIRE); cualquier otro método del Cmdable embebido entra en pánico.
type fakeRedis struct {
	rdb.Cmdable
	counts  map[string]int64
	ttls    map[string]time.Duration
	execErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) TxPipeline() rdb.Pipeliner { return &fakePipe{db: f} }

type fakePipe struct {
	rdb.Pipeliner
	db    *fakeRedis
	incrs []*rdb.IntCmd
	keys  []string
}

func (p *fakePipe) Incr(ctx context.Context, key string) *rdb.IntCmd {
	cmd := rdb.NewIntCmd(ctx, "incr", key)
	p.incrs = append(p.incrs, cmd)
	p.keys = append(p.keys, key)
	return cmd
}

func (p *fakePipe) Expire(ctx context.Context, key string, ttl time.Duration) *rdb.BoolCmd {
	p.db.ttls[key] = ttl
	return rdb.NewBoolCmd(ctx, "expire", key, ttl)
}

func (p *fakePipe) Exec(context.Context) ([]rdb.Cmder, error) {
	if p.db.execErr != nil {
		return nil, p.db.execErr
	}
	out := make([]rdb.Cmder, 0, len(p.incrs))
	for i, cmd := range p.incrs {
		p.db.counts[p.keys[i]]++
		cmd.SetVal(p.db.counts[p.keys[i]])
		out = append(out, cmd)
	}
	return out, nil
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	db := newFakeRedis()
	l := NewRedisLimiter(db, "", 2, time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 15, 0, time.UTC)
	l.Now = func() time.Time { return now }

	r1, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, r1.Allowed)
	assert.EqualValues(t, 2, r1.Limit)
	assert.EqualValues(t, 1, r1.Remaining)
	winStart := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, winStart.Add(time.Minute), r1.ResetTime)

	key := "rl:ip:1.2.3.4:" + strconv.FormatInt(winStart.Unix(), 10)
	assert.EqualValues(t, 1, db.counts[key])
	assert.Equal(t, time.Minute, db.ttls[key])

	_, err = l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)

	now = now.Add(14*time.Second + 500*time.Millisecond) // 10:00:29.5
	r3, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, r3.Allowed)
	assert.EqualValues(t, 0, r3.Remaining)
	assert.Equal(t, 31*time.Second, r3.RetryAfter)

	// otra identidad no comparte contador; los espacios no rompen la clave
	r, err := l.Allow(ctx, "ana maria@x.com")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
	assert.Contains(t, db.counts, "rl:ana_maria@x.com:"+strconv.FormatInt(winStart.Unix(), 10))

	// ventana siguiente: clave nueva, contador en cero
	now = winStart.Add(time.Minute)
	r4, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, r4.Allowed)
	assert.EqualValues(t, 1, r4.Remaining)
}

func TestRedisLimiter_BackendError(t *testing.T) {
	db := newFakeRedis()
	db.execErr = errors.New("connection refused")
	l := NewRedisLimiter(db, "x:", 5, time.Minute)

	_, err := l.Allow(context.Background(), "anonymous")
	assert.ErrorIs(t, err, db.execErr)
}
