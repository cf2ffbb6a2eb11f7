package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/store/memory"
)

// Parámetros baratos para que los tests no tarden.
var testParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

func legacyUser() *repository.User {
	trial := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	return &repository.User{
		ID:         "1",
		Email:      "a@x.com",
		Name:       "Ana",
		Password:   password.Plaintext("secret123"),
		Role:       repository.RoleAdmin,
		ClinicName: "Glow",
		Subscription: repository.Subscription{
			Plan: "trial", Status: "active", TrialEndsAt: &trial,
		},
	}
}

func newAuth(repo repository.UserRepository) *Authenticator {
	return NewAuthenticator(Deps{Repo: repo, Hash: testParams})
}

func TestAuthenticate_LegacyMigratesOnSuccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	a := newAuth(repo)

	s, err := a.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "1", s.ID)
	assert.Equal(t, "a@x.com", s.Email)
	assert.Equal(t, repository.RoleAdmin, s.Role)
	assert.Equal(t, "Glow", s.ClinicName)
	require.NotNil(t, s.Subscription.TrialEndsAt)

	stored, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, stored.Password.IsHashed())
	assert.Equal(t, password.SchemeArgon2id, stored.Password.Scheme)
	assert.NotEqual(t, "secret123", stored.Password.Value)
	assert.True(t, stored.Password.Verify("secret123"))
}

func TestAuthenticate_WrongPasswordLeavesCredential(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	before := repo.Writes()
	a := newAuth(repo)

	s, err := a.Authenticate(ctx, "a@x.com", "wrongpass")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, password.Plaintext("secret123"), stored.Password)
	assert.Equal(t, before, repo.Writes())
}

func TestAuthenticate_MigrationHappensOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	a := newAuth(repo)

	_, err := a.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	afterFirst := repo.Writes()
	first, _ := repo.GetByID(ctx, "1")

	_, err = a.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	second, _ := repo.GetByID(ctx, "1")

	assert.Equal(t, afterFirst, repo.Writes(), "a hashed credential must not be rewritten")
	assert.Equal(t, first.Password, second.Password)
}

func TestAuthenticate_NoPlaintextResurrection(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	a := newAuth(repo)

	_, err := a.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	// el hash guardado usado como password no debe verificar
	stored, _ := repo.GetByID(ctx, "1")
	_, err = a.Authenticate(ctx, "a@x.com", stored.Password.Value)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_EmailIsCaseInsensitive(t *testing.T) {
	a := newAuth(memory.New(legacyUser()))
	s, err := a.Authenticate(context.Background(), "  A@X.COM ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "1", s.ID)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	ctx := context.Background()
	hashed, err := password.HashCredential(testParams, "Correct#1")
	require.NoError(t, err)
	repo := memory.New(
		legacyUser(),
		&repository.User{ID: "2", Email: "b@x.com", Password: hashed, Role: repository.RoleStaff},
		&repository.User{ID: "3", Email: "c@x.com", Role: repository.RoleStaff}, // sin credential
	)
	a := newAuth(repo)

	cases := []struct{ email, pass string }{
		{"nobody@x.com", "secret123"},
		{"a@x.com", "nope"},
		{"b@x.com", "nope"},
		{"c@x.com", "anything"},
		{"c@x.com", " "},
		{"a@x.com", ""},
		{"b@x.com", ""},
		{"nobody@x.com", ""},
	}
	for _, tc := range cases {
		s, err := a.Authenticate(ctx, tc.email, tc.pass)
		assert.Nil(t, s, tc.email)
		assert.ErrorIs(t, err, ErrInvalidCredentials, tc.email)
	}
}

func TestAuthenticate_MissingFields(t *testing.T) {
	a := newAuth(memory.New(legacyUser()))
	for _, in := range [][2]string{{"", "x"}, {"a@x.com", ""}, {"   ", "x"}} {
		_, err := a.Authenticate(context.Background(), in[0], in[1])
		assert.ErrorIs(t, err, ErrMissingCredentials)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestAuthenticate_BcryptImported(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := legacyUser()
	u.Password = password.Decode("", string(h))
	require.Equal(t, password.SchemeBcrypt, u.Password.Scheme)
	repo := memory.New(u)
	before := repo.Writes()

	s, err := newAuth(repo).Authenticate(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "1", s.ID)
	assert.Equal(t, before, repo.Writes(), "hashed credentials are never migrated")
}

func TestAuthenticate_StoreReadFailureFailsClosed(t *testing.T) {
	repo := memory.New(legacyUser())
	boom := errors.New("disk unreadable")
	repo.FailReads = boom

	s, err := newAuth(repo).Authenticate(context.Background(), "a@x.com", "secret123")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, boom)
}

func TestAuthenticate_MigrationSaveFailureDenies(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	repo.FailWrites = errors.New("read-only fs")

	s, err := newAuth(repo).Authenticate(ctx, "a@x.com", "secret123")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.FailWrites = nil
	stored, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, password.SchemePlaintext, stored.Password.Scheme)
}

func TestAuthenticate_ConcurrentMigrationLastWriterWins(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(legacyUser())
	a := newAuth(repo)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.Authenticate(ctx, "a@x.com", "secret123")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	stored, _ := repo.GetByID(ctx, "1")
	assert.True(t, stored.Password.IsHashed())
	assert.True(t, stored.Password.Verify("secret123"))
}

func TestHashPassword(t *testing.T) {
	c, err := newAuth(memory.New()).HashPassword("Secret#123")
	require.NoError(t, err)
	assert.True(t, c.IsHashed())
	assert.True(t, c.Verify("Secret#123"))
}
