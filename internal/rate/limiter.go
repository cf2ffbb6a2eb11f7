// Package rate limita requests por identidad con contadores de ventana fija.
//
// MemoryLimiter guarda los buckets en el proceso: con varias instancias cada
// una tiene sus propios contadores y el techo efectivo se multiplica por la
// cantidad de instancias. RedisLimiter comparte los contadores entre
// instancias.
//
// Ambos son fixed-window: una ráfaga que cruza el borde de la ventana puede
// admitir hasta 2x el techo en poco tiempo.
package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// ResetTime es el instante en que termina la ventana actual.
	ResetTime time.Time
	// RetryAfter solo se completa cuando Allowed es false.
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
