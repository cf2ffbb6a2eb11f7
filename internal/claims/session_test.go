package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
)

func TestFromUser(t *testing.T) {
	trial := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	u := &repository.User{
		ID:         "u1",
		Email:      "a@x.com",
		Name:       "Ana",
		Password:   password.Plaintext("secret123"),
		Role:       repository.RoleAdmin,
		ClinicName: "Clínica Sol",
		Subscription: repository.Subscription{
			Plan: "trial", Status: "active", TrialEndsAt: &trial,
		},
	}

	s := FromUser(u)
	assert.Equal(t, "u1", s.ID)
	assert.Equal(t, "a@x.com", s.Email)
	assert.Equal(t, "admin", s.Role)
	assert.Equal(t, "Clínica Sol", s.ClinicName)
	assert.Equal(t, "trial", s.Subscription.Plan)
	assert.True(t, s.IsAdmin())

	// la copia no comparte el puntero de TrialEndsAt
	*u.Subscription.TrialEndsAt = trial.Add(time.Hour)
	assert.Equal(t, trial, *s.Subscription.TrialEndsAt)
}
