package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Códigos de rechazo. Son estables: la UI los usa para resaltar el campo.
const (
	ViolationTooShort      = "too_short"
	ViolationMissingUpper  = "missing_upper"
	ViolationMissingLower  = "missing_lower"
	ViolationMissingDigit  = "missing_digit"
	ViolationMissingSymbol = "missing_symbol"
	ViolationBlacklisted   = "blacklisted"
)

// Violation es una regla incumplida: Code para máquinas, Message para el usuario.
type Violation struct {
	Code    string
	Message string
}

// Violations se imprime como la lista de mensajes separados por "; ".
type Violations []Violation

func (vs Violations) Codes() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Code
	}
	return out
}

func (vs Violations) String() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// Policy son las reglas de contraseña de registro. El mínimo de la app es 8.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// Check devuelve las reglas que s no cumple; vacío = aceptada.
func (p Policy) Check(s string) Violations {
	var out Violations
	if n := len([]rune(s)); n < p.MinLength {
		out = append(out, Violation{ViolationTooShort,
			fmt.Sprintf("La contraseña debe tener al menos %d caracteres", p.MinLength)})
	}

	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	rules := []struct {
		need, has bool
		v         Violation
	}{
		{p.RequireUpper, hasU, Violation{ViolationMissingUpper, "Debe incluir una mayúscula"}},
		{p.RequireLower, hasL, Violation{ViolationMissingLower, "Debe incluir una minúscula"}},
		{p.RequireDigit, hasD, Violation{ViolationMissingDigit, "Debe incluir un número"}},
		{p.RequireSymbol, hasS, Violation{ViolationMissingSymbol, "Debe incluir un símbolo"}},
	}
	for _, r := range rules {
		if r.need && !r.has {
			out = append(out, r.v)
		}
	}
	return out
}

// Blacklisted es la violación que se reporta cuando la contraseña figura en
// la lista de contraseñas comunes.
func Blacklisted() Violation {
	return Violation{ViolationBlacklisted, "La contraseña es demasiado común"}
}
