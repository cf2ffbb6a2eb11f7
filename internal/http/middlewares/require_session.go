package middlewares

import (
	"net/http"

	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
)

// RequireSession corta con 401 los requests sin sesión válida. Va después del
// Gatekeeper, que es quien la decodifica.
func RequireSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r.Context()) == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="aestheticops"`)
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
