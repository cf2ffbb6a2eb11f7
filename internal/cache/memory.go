package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory es un cache in-process sobre go-cache. Los valores se copian al
// entrar y al salir.
type Memory struct {
	prefix string
	c      *gocache.Cache
}

func NewMemory(prefix string, defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &Memory{prefix: prefix, c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Memory) Get(_ context.Context, k string) ([]byte, error) {
	v, ok := m.c.Get(m.prefix + k)
	if !ok {
		return nil, ErrNotFound
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), nil
}

func (m *Memory) Set(_ context.Context, k string, v []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(m.prefix+k, append([]byte(nil), v...), ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, k string) error {
	m.c.Delete(m.prefix + k)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}

// Len devuelve la cantidad de items (incluye expirados aún no purgados).
func (m *Memory) Len() int { return m.c.ItemCount() }
