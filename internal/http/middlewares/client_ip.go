package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
)

// WithClientIP deja en r.RemoteAddr la IP real del cliente. Solo los proxies
// de trusted pueden aportarla vía X-Forwarded-For / X-Real-IP; sin proxies
// configurados la request pasa intacta.
func WithClientIP(trusted helpers.TrustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := trusted.ClientIP(r); ip != helpers.ClientIP(r) {
				r2 := r.Clone(r.Context())
				r2.RemoteAddr = ip
				r = r2
			}
			next.ServeHTTP(w, r)
		})
	}
}
