package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	dto "github.com/dropDatabas3/aestheticops/internal/http/dto/auth"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/store/memory"
	"github.com/dropDatabas3/aestheticops/internal/validation"
)

type captureMailer struct {
	mu   sync.Mutex
	to   []string
	fail error
}

func (m *captureMailer) Send(to, subject, html, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.to = append(m.to, to)
	return nil
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:            "Ana Pérez",
		Email:           "Ana@Glow.es",
		Password:        "Secret#123",
		ConfirmPassword: "Secret#123",
		ClinicName:      "Glow",
		Phone:           "600123456",
	}
}

func newRegister(repo repository.UserRepository, mailer *captureMailer, bl *password.Blacklist) *RegisterService {
	return NewRegisterService(Deps{
		Repo:      repo,
		Hash:      testParams,
		Mailer:    mailer,
		Blacklist: bl,
		Now:       func() time.Time { return fixedNow },
	})
}

func TestRegister_CreatesHashedTrialUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	mailer := &captureMailer{}

	u, err := newRegister(repo, mailer, nil).Register(ctx, validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@glow.es", u.Email)
	assert.Equal(t, repository.RoleAdmin, u.Role)
	assert.Equal(t, "trial", u.Subscription.Plan)
	assert.Equal(t, "active", u.Subscription.Status)
	require.NotNil(t, u.Subscription.TrialEndsAt)
	assert.Equal(t, fixedNow.Add(14*24*time.Hour), *u.Subscription.TrialEndsAt)

	stored, err := repo.FindByEmail(ctx, "ana@glow.es")
	require.NoError(t, err)
	assert.Equal(t, password.SchemeArgon2id, stored.Password.Scheme)
	assert.True(t, stored.Password.Verify("Secret#123"))

	assert.Equal(t, []string{"ana@glow.es"}, mailer.to)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newRegister(memory.New(), &captureMailer{}, nil)
	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	in := validRegister()
	in.Email = " ANA@glow.es"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	bl := &password.Blacklist{}
	bl.Add("Password#1")

	cases := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
		field  string
		target error
	}{
		{"missing phone", func(r *dto.RegisterRequest) { r.Phone = "" }, "", ErrMissingFields},
		{"missing email", func(r *dto.RegisterRequest) { r.Email = "  " }, "", ErrMissingFields},
		{"short name", func(r *dto.RegisterRequest) { r.Name = "A" }, "name", nil},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "ana@glow" }, "email", nil},
		{"short clinic", func(r *dto.RegisterRequest) { r.ClinicName = "G" }, "clinicName", nil},
		{"short phone", func(r *dto.RegisterRequest) { r.Phone = "600123" }, "phone", nil},
		{"mismatch", func(r *dto.RegisterRequest) { r.ConfirmPassword = "Other#123" }, "", ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegister()
			tc.mutate(&in)
			repo := memory.New()
			_, err := newRegister(repo, &captureMailer{}, bl).Register(context.Background(), in)
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			} else {
				var fe *validation.FieldError
				require.True(t, errors.As(err, &fe), err)
				assert.Equal(t, tc.field, fe.Field)
			}
			assert.Equal(t, 0, repo.Writes())
		})
	}

	t.Run("weak password", func(t *testing.T) {
		in := validRegister()
		in.Password, in.ConfirmPassword = "short", ""
		_, err := newRegister(memory.New(), &captureMailer{}, bl).Register(context.Background(), in)
		var pe *PolicyError
		require.True(t, errors.As(err, &pe))
		assert.Contains(t, pe.Violations.Codes(), password.ViolationTooShort)
		assert.Contains(t, pe.Violations.String(), "al menos 8 caracteres")
	})

	t.Run("blacklisted", func(t *testing.T) {
		in := validRegister()
		in.Password, in.ConfirmPassword = "password#1", ""
		_, err := newRegister(memory.New(), &captureMailer{}, bl).Register(context.Background(), in)
		var pe *PolicyError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, []string{password.ViolationBlacklisted}, pe.Violations.Codes())
	})

	t.Run("confirm is optional", func(t *testing.T) {
		in := validRegister()
		in.ConfirmPassword = ""
		_, err := newRegister(memory.New(), &captureMailer{}, bl).Register(context.Background(), in)
		assert.NoError(t, err)
	})
}

func TestRegister_MailFailureIsNotFatal(t *testing.T) {
	repo := memory.New()
	_, err := newRegister(repo, &captureMailer{fail: errors.New("smtp down")}, nil).
		Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Writes())
}

func TestRegister_StoreFailure(t *testing.T) {
	repo := memory.New()
	repo.FailWrites = errors.New("disk full")
	mailer := &captureMailer{}
	_, err := newRegister(repo, mailer, nil).Register(context.Background(), validRegister())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, mailer.to)
}
