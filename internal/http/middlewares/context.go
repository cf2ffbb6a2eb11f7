package middlewares

import (
	"context"

	"github.com/dropDatabas3/aestheticops/internal/claims"
)

type ctxKey string

const (
	ctxSessionKey   ctxKey = "session"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithSession inyecta las claims de sesión validadas.
func WithSession(ctx context.Context, s *claims.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, s)
}

// GetSession obtiene las claims de sesión. nil si el request es anónimo.
func GetSession(ctx context.Context) *claims.Session {
	s, _ := ctx.Value(ctxSessionKey).(*claims.Session)
	return s
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
