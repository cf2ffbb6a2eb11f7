package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("ao:", time.Minute)

	_, err := m.Get(ctx, "profile:1")
	assert.True(t, IsNotFound(err))

	v := []byte(`{"id":"1"}`)
	require.NoError(t, m.Set(ctx, "profile:1", v, 0))
	v[0] = 'X'

	got, err := m.Get(ctx, "profile:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(got))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "profile:1"))
	_, err = m.Get(ctx, "profile:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("", time.Minute)
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	require.Eventually(t, func() bool {
		_, err := m.Get(ctx, "k")
		return IsNotFound(err)
	}, time.Second, 5*time.Millisecond)
}

func TestNew(t *testing.T) {
	c, err := New(Config{Kind: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(Config{Kind: "redis"})
	assert.Error(t, err)

	_, err = New(Config{Kind: "memcached"})
	assert.Error(t, err)
}
