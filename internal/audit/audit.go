// Package audit registra eventos de seguridad (logins, migraciones de
// credenciales, altas) en un logger dedicado "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
)

// Eventos
const (
	EventLoginSucceeded     = "auth.login.succeeded"
	EventLoginFailed        = "auth.login.failed"
	EventCredentialMigrated = "auth.credential.migrated"
	EventClinicRegistered   = "auth.clinic.registered"
	EventProfileUpdated     = "users.profile.updated"
)

// Log emite el evento con los campos dados más el request_id/user_id que
// ya traiga el logger del contexto.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	l.Info(event, append(fields, zap.String("event", event))...)
}
