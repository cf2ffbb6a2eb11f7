// Package util reúne helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja la primera letra del usuario y del primer label del dominio:
// "ana.perez@glow.es" → "a…@g….es". Se usa para no escribir emails completos
// en los logs.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.IndexByte(s, '@')
	if at <= 0 {
		return maskOpaque(s)
	}
	local, domain := s[:at], s[at+1:]
	labels := strings.Split(domain, ".")
	labels[0] = keepFirst(labels[0])
	return keepFirst(local) + "@" + strings.Join(labels, ".")
}

// MaskIdentity enmascara una clave de rate limiting. Las de IP ("ip:...") y
// "anonymous" se dejan tal cual: no identifican a una persona por sí solas.
func MaskIdentity(id string) string {
	if id == "anonymous" || strings.HasPrefix(id, "ip:") {
		return id
	}
	return MaskEmail(id)
}

func keepFirst(s string) string {
	r := []rune(s)
	if len(r) <= 1 {
		return s
	}
	return string(r[0]) + "…"
}

func maskOpaque(s string) string {
	r := []rune(s)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 3:
		return "***"
	default:
		return string(r[0]) + "…" + string(r[len(r)-1])
	}
}
