package repository

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/security/password"
)

// Roles de una cuenta de clínica. Se fijan al crear la cuenta.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// ValidRole indica si r pertenece al set cerrado de roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Subscription es metadata de facturación; el autenticador la copia a las
// claims sin interpretarla.
type Subscription struct {
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
}

// User es una cuenta de la clínica.
//
// Email es la clave de búsqueda y se guarda normalizado (NormalizeEmail).
// Password solo muta una vez: cuando un credential legacy en claro se migra a
// hash en el primer login exitoso.
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	Password     password.Credential
	Role         string
	ClinicName   string
	Subscription Subscription
	CreatedAt    time.Time
}

// Clone devuelve una copia profunda.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Subscription.TrialEndsAt != nil {
		t := *u.Subscription.TrialEndsAt
		c.Subscription.TrialEndsAt = &t
	}
	return &c
}

// NormalizeEmail aplica la regla de igualdad de emails: sin espacios y en
// minúsculas. Se usa al escribir y al buscar.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ProfilePatch son los campos que el propio usuario puede editar. nil = sin cambio.
type ProfilePatch struct {
	Name       *string
	Phone      *string
	ClinicName *string
}

// Apply copia los campos presentes sobre u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ClinicName != nil {
		u.ClinicName = *p.ClinicName
	}
}

// UserRepository es el store persistente de usuarios.
type UserRepository interface {
	// FindByEmail busca por email normalizado. ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por ID. ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// Create inserta un usuario nuevo. ErrConflict si el email ya existe.
	Create(ctx context.Context, u *User) error

	// Save reemplaza el registro con el mismo ID. ErrNotFound si no existe.
	// Solo el autenticador lo usa (migración del credential).
	Save(ctx context.Context, u *User) error

	// UpdateProfile aplica p sobre el registro actual en una sola operación y
	// devuelve el resultado. Nunca toca email, rol, credential ni suscripción.
	UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*User, error)

	// List devuelve todos los usuarios (herramientas de admin).
	List(ctx context.Context) ([]User, error)

	// Ping verifica que el backend esté accesible.
	Ping(ctx context.Context) error

	Close() error
}
