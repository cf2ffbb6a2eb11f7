package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/aestheticops/internal/audit"
	"github.com/dropDatabas3/aestheticops/internal/claims"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/metrics"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/util"
)

// Errores de login
var (
	// ErrInvalidCredentials cubre email inexistente, password incorrecta,
	// campos vacíos y fallas del store: el llamador no debe poder distinguirlas.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials envuelve ErrInvalidCredentials; solo sirve para
	// métricas y logs, hacia afuera es el mismo fallo.
	ErrMissingCredentials = fmt.Errorf("%w: missing email or password", ErrInvalidCredentials)
)

// Authenticator verifica email + password contra el store y, si el
// credential guardado está en claro, lo migra a hash en el mismo login.
type Authenticator struct {
	repo    repository.UserRepository
	params  password.Params
	metrics *metrics.Metrics
}

func NewAuthenticator(d Deps) *Authenticator {
	p := d.Hash
	if p.KeyLen == 0 {
		p = password.Default
	}
	return &Authenticator{repo: d.Repo, params: p, metrics: d.Metrics}
}

// Authenticate devuelve las claims del usuario si el password coincide.
//
// Un credential en claro que verifica se reemplaza por su hash antes de
// devolver las claims; si ese guardado falla el login se rechaza, así nunca
// se emite una sesión para una cuenta que sigue guardada en claro. Dos logins
// concurrentes de la misma cuenta legacy pueden migrar ambos: gana la última
// escritura y cualquiera de los dos hashes verifica.
func (a *Authenticator) Authenticate(ctx context.Context, email, plain string) (*claims.Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.authenticator"),
		logger.Op("Authenticate"),
	)

	email = repository.NormalizeEmail(email)
	if email == "" || plain == "" {
		a.metrics.LoginAttempt(metrics.LoginMissing)
		return nil, ErrMissingCredentials
	}

	user, err := a.repo.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("user not found")
			a.metrics.LoginAttempt(metrics.LoginInvalid)
			audit.Log(ctx, audit.EventLoginFailed, logger.Email(util.MaskEmail(email)), logger.Reason("unknown_email"))
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		a.metrics.LoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	log = log.With(logger.UserID(user.ID), logger.Scheme(string(user.Password.Scheme)))

	if !user.Password.Verify(plain) {
		log.Debug("password check failed")
		a.metrics.LoginAttempt(metrics.LoginInvalid)
		audit.Log(ctx, audit.EventLoginFailed, logger.UserID(user.ID), logger.Reason("bad_password"))
		return nil, ErrInvalidCredentials
	}

	if !user.Password.IsHashed() {
		if err := a.migrate(ctx, user, plain); err != nil {
			log.Error("legacy credential migration failed", logger.Err(err))
			a.metrics.LoginAttempt(metrics.LoginError)
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		log.Info("legacy credential migrated to hash")
		a.metrics.PasswordMigrated()
		audit.Log(ctx, audit.EventCredentialMigrated, logger.UserID(user.ID), logger.Scheme(string(user.Password.Scheme)))
	}

	a.metrics.LoginAttempt(metrics.LoginSuccess)
	audit.Log(ctx, audit.EventLoginSucceeded, logger.UserID(user.ID), logger.Role(user.Role))
	s := claims.FromUser(user)
	return &s, nil
}

func (a *Authenticator) migrate(ctx context.Context, u *repository.User, plain string) error {
	cred, err := password.HashCredential(a.params, plain)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	updated := u.Clone()
	updated.Password = cred
	if err := a.repo.Save(ctx, updated); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	u.Password = cred
	return nil
}

// HashPassword es la primitiva que usa el registro antes del primer guardado.
func (a *Authenticator) HashPassword(plain string) (password.Credential, error) {
	return password.HashCredential(a.params, plain)
}
