package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/aestheticops/internal/metrics"
)

// WithMetrics instrumenta requests HTTP (contador, latencia, en vuelo).
//
// Corre antes del router, así que deja un chi.Context vacío en el request:
// chi lo reutiliza y al volver RoutePattern() tiene la ruta que matcheó. Las
// rutas no registradas quedan como metrics.OtherRoute.
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rctx := chi.RouteContext(r.Context())
			if rctx == nil {
				rctx = chi.NewRouteContext()
				r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			}

			done := m.HTTPStart(r.Method)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() { done(rctx.RoutePattern(), rec.status) }()
			next.ServeHTTP(rec, r)
		})
	}
}
