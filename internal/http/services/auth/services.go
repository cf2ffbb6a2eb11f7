// Package auth contiene los services de autenticación, registro y perfil.
package auth

import (
	"time"

	"github.com/dropDatabas3/aestheticops/internal/cache"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/email"
	"github.com/dropDatabas3/aestheticops/internal/metrics"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
)

// Deps contiene las dependencias para crear los services auth.
type Deps struct {
	Repo    repository.UserRepository
	Hash    password.Params
	Metrics *metrics.Metrics // nil = sin métricas

	// Registro
	Policy      password.Policy
	Blacklist   *password.Blacklist // nil = sin blacklist
	Mailer      email.Sender        // nil = Noop
	TrialPeriod time.Duration
	DefaultRole string

	// Perfil
	Cache    cache.Client // nil = sin cache
	CacheTTL time.Duration

	// Now es el reloj; nil usa time.Now.
	Now func() time.Time
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Auth     *Authenticator
	Register *RegisterService
	Profile  *ProfileService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	return Services{
		Auth:     NewAuthenticator(d),
		Register: NewRegisterService(d),
		Profile:  NewProfileService(d),
	}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
