package rate

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count     int64
	resetTime time.Time
}

// MemoryLimiter es un contador de ventana fija por identidad, en memoria.
//
// Un bucket vencido (now > resetTime) se trata como inexistente: se reinicia
// en el próximo Check y lo borra el barrido periódico (Start/Stop).
type MemoryLimiter struct {
	max    int64
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	startMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

type Option func(*MemoryLimiter)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewMemoryLimiter(max int, window time.Duration, opts ...Option) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &MemoryLimiter{
		max:     int64(max),
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Check registra un request de identity y decide si se admite.
func (l *MemoryLimiter) Check(identity string) Result {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[identity]
	if !ok || now.After(b.resetTime) {
		b = &bucket{count: 1, resetTime: now.Add(l.window)}
		l.buckets[identity] = b
		l.mu.Unlock()
		return Result{Allowed: true, Limit: l.max, Remaining: l.max - 1, ResetTime: b.resetTime}
	}
	b.count++
	count, reset := b.count, b.resetTime
	l.mu.Unlock()

	if count > l.max {
		return Result{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: retryAfter(reset.Sub(now)),
		}
	}
	return Result{Allowed: true, Limit: l.max, Remaining: l.max - count, ResetTime: reset}
}

// Allow adapta Check a la interfaz Limiter. Nunca devuelve error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	return l.Check(key), nil
}

// Sweep borra los buckets vencidos y devuelve cuántos borró.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.buckets {
		if now.After(b.resetTime) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Len devuelve la cantidad de buckets vivos o vencidos aún no barridos.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Window devuelve el largo de la ventana.
func (l *MemoryLimiter) Window() time.Duration { return l.window }

// Start lanza el barrido periódico (intervalo = ventana). Llamadas repetidas
// no lanzan más de una goroutine.
func (l *MemoryLimiter) Start() {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	if l.stop != nil {
		return
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.loop(l.stop, l.done)
}

// Stop detiene el barrido y espera a que termine. Idempotente; después de
// Stop se puede volver a llamar a Start.
func (l *MemoryLimiter) Stop() {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	if l.stop == nil {
		return
	}
	close(l.stop)
	<-l.done
	l.stop, l.done = nil, nil
}

func (l *MemoryLimiter) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(l.window)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// retryAfter redondea hacia arriba al segundo, mínimo 1s.
func retryAfter(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	s := d.Truncate(time.Second)
	if s < d {
		s += time.Second
	}
	return s
}
