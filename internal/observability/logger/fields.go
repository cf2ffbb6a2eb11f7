package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ResetAt(v time.Time) zap.Field      { return zap.Time("reset_at", v) }
func Remaining(v int) zap.Field          { return zap.Int("remaining", v) }

// ---- Negocio ----

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email crea un campo para el email (usar con cuidado en prod).
func Email(v string) zap.Field { return zap.String("email", v) }

// Role del principal autenticado.
func Role(v string) zap.Field { return zap.String("role", v) }

// ClinicName de la cuenta.
func ClinicName(v string) zap.Field { return zap.String("clinic_name", v) }

// Identity es la clave usada por el rate limiter (email o ip:<addr>).
func Identity(v string) zap.Field { return zap.String("identity", v) }

// Scheme del credential almacenado (plaintext, argon2id, bcrypt).
func Scheme(v string) zap.Field { return zap.String("scheme", v) }

// Reason interna de un rechazo; nunca viaja al cliente.
func Reason(v string) zap.Field { return zap.String("reason", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// ---- Genéricos ----

func Count(v int) zap.Field             { return zap.Int("count", v) }
func Key(v string) zap.Field            { return zap.String("key", v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
