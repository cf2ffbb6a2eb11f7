package password

import (
	"crypto/subtle"
	"strings"
)

// Scheme identifica cómo está guardado un credential.
type Scheme string

const (
	SchemeNone      Scheme = ""
	SchemePlaintext Scheme = "plaintext"
	SchemeArgon2id  Scheme = "argon2id"
	SchemeBcrypt    Scheme = "bcrypt"
)

// Credential es el valor de password de un usuario, con su esquema explícito.
// Se decodifica una sola vez al cargar el registro (Decode); las comparaciones
// posteriores despachan por Scheme y nunca vuelven a inspeccionar prefijos.
type Credential struct {
	Scheme Scheme
	Value  string
}

// Plaintext construye un credential legacy sin hash.
func Plaintext(v string) Credential {
	return Credential{Scheme: SchemePlaintext, Value: v}
}

// HashCredential hashea plain con argon2id y sal nueva.
func HashCredential(p Params, plain string) (Credential, error) {
	h, err := Hash(p, plain)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Scheme: SchemeArgon2id, Value: h}, nil
}

// Decode reconstruye un Credential a partir de lo persistido.
//
// Con scheme explícito, ese scheme manda (aunque el valor esté mal formado: en
// ese caso nunca verifica). Sin scheme (registros legacy) el valor es hash solo
// si parsea completo como PHC argon2id o como bcrypt; cualquier otra cosa es
// plaintext. Un valor vacío no verifica nunca.
func Decode(scheme, raw string) Credential {
	if raw == "" {
		return Credential{}
	}
	switch s := Scheme(strings.ToLower(strings.TrimSpace(scheme))); s {
	case SchemePlaintext, SchemeArgon2id, SchemeBcrypt:
		return Credential{Scheme: s, Value: raw}
	case SchemeNone:
	default:
		// scheme desconocido: registro mal formado
		return Credential{Scheme: s, Value: raw}
	}
	if _, _, _, ok := parsePHC(raw); ok {
		return Credential{Scheme: SchemeArgon2id, Value: raw}
	}
	if isBcrypt(raw) {
		return Credential{Scheme: SchemeBcrypt, Value: raw}
	}
	return Plaintext(raw)
}

// IsHashed indica si el credential ya está en forma de hash.
func (c Credential) IsHashed() bool {
	return c.Scheme == SchemeArgon2id || c.Scheme == SchemeBcrypt
}

// IsZero indica ausencia de credential.
func (c Credential) IsZero() bool {
	return c.Value == ""
}

// Verify compara plain contra el credential. Un hash nunca cae a comparación
// en claro.
func (c Credential) Verify(plain string) bool {
	if c.Value == "" || plain == "" {
		return false
	}
	switch c.Scheme {
	case SchemeArgon2id:
		return Verify(plain, c.Value)
	case SchemeBcrypt:
		return VerifyBcrypt(plain, c.Value)
	case SchemePlaintext:
		return subtle.ConstantTimeCompare([]byte(plain), []byte(c.Value)) == 1
	default:
		return false
	}
}

// String no expone el valor para que un credential nunca termine en logs.
func (c Credential) String() string {
	if c.Scheme == SchemeNone {
		return "credential(none)"
	}
	return "credential(" + string(c.Scheme) + ")"
}

// GoString evita que %#v filtre el valor.
func (c Credential) GoString() string { return c.String() }
