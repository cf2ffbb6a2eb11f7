package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
)

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &repository.User{ID: "1", Email: " A@X.com ", Role: repository.RoleAdmin, Password: password.Plaintext("pw")}
	require.NoError(t, s.Create(ctx, u))

	got, err := s.FindByEmail(ctx, "a@x.COM")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	// las copias devueltas no alias el estado interno
	got.Role = repository.RoleStaff
	again, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleAdmin, again.Role)

	assert.ErrorIs(t, s.Create(ctx, &repository.User{ID: "2", Email: "a@x.com"}), repository.ErrConflict)

	again.Name = "Ana"
	require.NoError(t, s.Save(ctx, again))
	got, err = s.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	assert.ErrorIs(t, s.Save(ctx, &repository.User{ID: "nope"}), repository.ErrNotFound)
	_, err = s.FindByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, s.Writes())
}

func TestStore_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	s := New(&repository.User{ID: "1", Email: "a@x.com"})
	s.FailReads = boom
	_, err := s.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Ping(ctx), boom)

	s.FailReads = nil
	s.FailWrites = boom
	assert.ErrorIs(t, s.Save(ctx, &repository.User{ID: "1", Email: "a@x.com"}), boom)
}

func TestStore_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := New(&repository.User{ID: "1", Email: "a@x.com", Name: "Ana", Password: password.Plaintext("pw")})

	clinic := "Glow"
	u, err := s.UpdateProfile(ctx, "1", repository.ProfilePatch{ClinicName: &clinic})
	require.NoError(t, err)
	assert.Equal(t, "Glow", u.ClinicName)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, password.Plaintext("pw"), u.Password)
	assert.Equal(t, 2, s.Writes())

	_, err = s.UpdateProfile(ctx, "nope", repository.ProfilePatch{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
