package auth

import (
	"time"

	"github.com/dropDatabas3/aestheticops/internal/claims"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
)

// UserView es la representación pública de un usuario (nunca incluye el
// credential).
type UserView struct {
	ID           string                  `json:"id"`
	Email        string                  `json:"email"`
	Name         string                  `json:"name,omitempty"`
	Phone        string                  `json:"phone,omitempty"`
	Role         string                  `json:"role"`
	ClinicName   string                  `json:"clinicName"`
	Subscription repository.Subscription `json:"subscription"`
	CreatedAt    *time.Time              `json:"createdAt,omitempty"`
}

// UserViewFrom arma la vista desde el registro del store.
func UserViewFrom(u *repository.User) UserView {
	v := UserView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Role:         u.Role,
		ClinicName:   u.ClinicName,
		Subscription: u.Clone().Subscription,
	}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt.UTC()
		v.CreatedAt = &t
	}
	return v
}

// UserViewFromSession arma la vista desde las claims (sin teléfono ni fecha).
func UserViewFromSession(s claims.Session) UserView {
	return UserView{
		ID:           s.ID,
		Email:        s.Email,
		Name:         s.Name,
		Role:         s.Role,
		ClinicName:   s.ClinicName,
		Subscription: s.Subscription,
	}
}

// ProfileUpdate son los campos mutables del perfil. nil = sin cambios.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	ClinicName *string `json:"clinicName,omitempty"`
}

// SessionResponse es la respuesta de GET /api/auth/session.
type SessionResponse struct {
	User UserView `json:"user"`
}
