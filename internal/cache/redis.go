package cache

import (
	"context"
	"errors"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Redis struct {
	c          *rdb.Client
	prefix     string
	defaultTTL time.Duration
}

func NewRedis(addr string, db int, prefix string, defaultTTL time.Duration) *Redis {
	return &Redis{
		c:          rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Raw expone el cliente subyacente; el rate limiter lo comparte.
func (r *Redis) Raw() *rdb.Client { return r.c }

func (r *Redis) Get(ctx context.Context, k string) ([]byte, error) {
	b, err := r.c.Get(ctx, r.prefix+k).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *Redis) Set(ctx context.Context, k string, v []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.c.Set(ctx, r.prefix+k, v, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, k string) error {
	return r.c.Del(ctx, r.prefix+k).Err()
}

func (r *Redis) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.c.Close() }
