package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/aestheticops/internal/audit"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/email"
	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	"github.com/dropDatabas3/aestheticops/internal/observability/logger"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/util"
	"github.com/dropDatabas3/aestheticops/internal/validation"
)

// Errores de registro
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrEmailTaken       = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

// PolicyError indica que la password no cumple la política o está en la
// blacklist.
type PolicyError struct {
	Violations password.Violations
}

func (e *PolicyError) Error() string {
	return "password rejected: " + strings.Join(e.Violations.Codes(), ",")
}

const defaultTrialPeriod = 14 * 24 * time.Hour

// RegisterService da de alta una clínica con su primer usuario.
type RegisterService struct {
	deps   Deps
	params password.Params
}

func NewRegisterService(d Deps) *RegisterService {
	if d.Mailer == nil {
		d.Mailer = email.Noop{}
	}
	if d.TrialPeriod <= 0 {
		d.TrialPeriod = defaultTrialPeriod
	}
	if !repository.ValidRole(d.DefaultRole) {
		d.DefaultRole = repository.RoleAdmin
	}
	if d.Policy.MinLength <= 0 {
		d.Policy.MinLength = 8
	}
	p := d.Hash
	if p.KeyLen == 0 {
		p = password.Default
	}
	return &RegisterService{deps: d, params: p}
}

// Register valida la entrada, hashea la password y persiste el usuario. El
// email de bienvenida es best-effort: si falla se loguea y el alta sigue.
func (s *RegisterService) Register(ctx context.Context, in dto.RegisterRequest) (*repository.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.ClinicName = strings.TrimSpace(in.ClinicName)
	in.Phone = strings.TrimSpace(in.Phone)
	addr := repository.NormalizeEmail(in.Email)

	if err := s.validate(in, addr); err != nil {
		s.deps.Metrics.Registration("invalid")
		return nil, err
	}

	cred, err := password.HashCredential(s.params, in.Password)
	if err != nil {
		s.deps.Metrics.Registration("error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.deps.now().UTC()
	trialEnds := now.Add(s.deps.TrialPeriod)
	u := &repository.User{
		ID:         uuid.NewString(),
		Email:      addr,
		Name:       in.Name,
		Phone:      in.Phone,
		Password:   cred,
		Role:       s.deps.DefaultRole,
		ClinicName: in.ClinicName,
		Subscription: repository.Subscription{
			Plan:        "trial",
			Status:      "active",
			TrialEndsAt: &trialEnds,
		},
		CreatedAt: now,
	}

	if err := s.deps.Repo.Create(ctx, u); err != nil {
		if repository.IsConflict(err) {
			log.Debug("email already registered", logger.Email(util.MaskEmail(addr)))
			s.deps.Metrics.Registration("conflict")
			return nil, ErrEmailTaken
		}
		log.Error("create user failed", logger.Err(err))
		s.deps.Metrics.Registration("error")
		return nil, fmt.Errorf("create user: %w", err)
	}

	log = log.With(logger.UserID(u.ID), logger.ClinicName(u.ClinicName))
	log.Info("clinic registered")
	audit.Log(ctx, audit.EventClinicRegistered, logger.UserID(u.ID), logger.ClinicName(u.ClinicName))
	s.deps.Metrics.Registration("created")

	s.sendWelcome(ctx, u)
	return u.Clone(), nil
}

func (s *RegisterService) validate(in dto.RegisterRequest, addr string) error {
	if in.Name == "" || addr == "" || in.Password == "" || in.ClinicName == "" || in.Phone == "" {
		return ErrMissingFields
	}
	if !validation.MinLen(in.Name, 2) {
		return validation.Field("name", "El nombre debe tener al menos 2 caracteres")
	}
	if !validation.ValidEmail(addr) {
		return validation.Field("email", "Email inválido")
	}
	if !validation.MinLen(in.ClinicName, 2) {
		return validation.Field("clinicName", "El nombre de la clínica es requerido")
	}
	if !validation.MinLen(in.Phone, 9) {
		return validation.Field("phone", "Teléfono inválido")
	}
	if vs := s.deps.Policy.Check(in.Password); len(vs) > 0 {
		return &PolicyError{Violations: vs}
	}
	if s.deps.Blacklist.Contains(in.Password) {
		return &PolicyError{Violations: password.Violations{password.Blacklisted()}}
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return ErrPasswordMismatch
	}
	return nil
}

func (s *RegisterService) sendWelcome(ctx context.Context, u *repository.User) {
	log := logger.From(ctx).With(logger.Component("auth.register"), logger.UserID(u.ID))

	subject, html, text, err := email.Welcome(email.WelcomeVars{
		Name:        u.Name,
		ClinicName:  u.ClinicName,
		TrialEndsAt: u.Subscription.TrialEndsAt,
	})
	if err != nil {
		log.Warn("welcome email render failed", logger.Err(err))
		return
	}
	if err := s.deps.Mailer.Send(u.Email, subject, html, text); err != nil {
		log.Warn("welcome email not sent", logger.Err(err))
	}
}
