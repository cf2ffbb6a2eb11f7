// Package claims define los atributos que viajan en el token de sesión.
package claims

import "github.com/dropDatabas3/aestheticops/internal/domain/repository"

// Session son las claims de un principal autenticado. Se derivan del User al
// momento del login y se confían sin volver al store en cada request.
type Session struct {
	ID           string                  `json:"id"`
	Email        string                  `json:"email"`
	Name         string                  `json:"name,omitempty"`
	Role         string                  `json:"role"`
	ClinicName   string                  `json:"clinicName"`
	Subscription repository.Subscription `json:"subscription"`
}

// FromUser copia 1:1 los campos del usuario. Nunca incluye el credential.
func FromUser(u *repository.User) Session {
	s := Session{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		ClinicName:   u.ClinicName,
		Subscription: u.Subscription,
	}
	if u.Subscription.TrialEndsAt != nil {
		t := *u.Subscription.TrialEndsAt
		s.Subscription.TrialEndsAt = &t
	}
	return s
}

// IsAdmin indica si el rol es admin.
func (s Session) IsAdmin() bool {
	return s.Role == repository.RoleAdmin
}
