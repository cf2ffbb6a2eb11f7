// Package validation contiene las reglas de formato de los campos de entrada.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Email: algo@algo.algo, sin espacios y con una sola arroba por segmento.
// Es deliberadamente permisivo: la verificación real es que el usuario pueda
// recibir correo.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail indica si s tiene forma de email.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// MinLen indica si s, sin espacios en los extremos, tiene al menos n
// caracteres (runas, no bytes).
func MinLen(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// FieldError describe un campo rechazado. Message es apto para el usuario.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Field construye un FieldError.
func Field(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
