// Package auth contiene los controllers de sesión, registro y perfil.
package auth

import (
	"errors"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/claims"
	httperrors "github.com/dropDatabas3/aestheticops/internal/http/errors"
	"github.com/dropDatabas3/aestheticops/internal/http/helpers"
	svc "github.com/dropDatabas3/aestheticops/internal/http/services/auth"
	"github.com/dropDatabas3/aestheticops/internal/validation"
)

// TokenEncoder firma las claims de sesión.
type TokenEncoder interface {
	Encode(s claims.Session) (string, time.Time, error)
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login    *LoginController
	Logout   *LogoutController
	Session  *SessionController
	Register *RegisterController
	Profile  *ProfileController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, tokens TokenEncoder, cookie helpers.SessionCookie) *Controllers {
	return &Controllers{
		Login:    NewLoginController(s.Auth, tokens, cookie),
		Logout:   NewLogoutController(cookie),
		Session:  NewSessionController(),
		Register: NewRegisterController(s.Register),
		Profile:  NewProfileController(s.Profile),
	}
}

// mapServiceError traduce los errores de services a la respuesta HTTP.
func mapServiceError(err error) *httperrors.AppError {
	var fe *validation.FieldError
	var pe *svc.PolicyError
	switch {
	case errors.Is(err, svc.ErrInvalidCredentials):
		// incluye ErrMissingCredentials: mismo 401 y mismo mensaje
		return httperrors.ErrInvalidCredentials.WithCause(err)
	case errors.Is(err, svc.ErrMissingFields):
		return httperrors.ErrMissingFields.WithDetail("Todos los campos son requeridos")
	case errors.As(err, &fe):
		return httperrors.ErrInvalidFormat.WithDetail(fe.Message)
	case errors.As(err, &pe):
		return httperrors.ErrPasswordTooWeak.WithDetail(pe.Violations.String())
	case errors.Is(err, svc.ErrPasswordMismatch):
		return httperrors.ErrPasswordMismatch
	case errors.Is(err, svc.ErrEmailTaken):
		return httperrors.ErrEmailAlreadyInUse
	case errors.Is(err, svc.ErrUserNotFound):
		return httperrors.ErrUserNotFound
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
