package jwt

import (
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/aestheticops/internal/claims"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
)

func testCodec(now *time.Time) *Codec {
	c := NewCodec("0123456789abcdef0123456789abcdef", "aestheticops", time.Hour)
	c.Now = func() time.Time { return *now }
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCodec(&now)

	trial := now.Add(14 * 24 * time.Hour)
	in := claims.Session{
		ID:         "42",
		Email:      "a@x.com",
		Role:       repository.RoleManager,
		ClinicName: "Clínica Sol",
		Subscription: repository.Subscription{
			Plan: "trial", Status: "active", TrialEndsAt: &trial,
		},
	}
	tok, exp, err := c.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	out, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Role, out.Role)
	assert.Equal(t, in.ClinicName, out.ClinicName)
	require.NotNil(t, out.Subscription.TrialEndsAt)
	assert.True(t, trial.Equal(*out.Subscription.TrialEndsAt))
}

func TestCodec_Rejects(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := testCodec(&now)
	tok, _, err := c.Encode(claims.Session{ID: "1", Role: repository.RoleAdmin})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := now.Add(time.Hour + leeway + time.Second)
		_, err := testCodec(&later).Decode(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("within leeway", func(t *testing.T) {
		later := now.Add(time.Hour + leeway/2)
		_, err := testCodec(&later).Decode(tok)
		assert.NoError(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewCodec("another-secret-another-secret-xx", "aestheticops", time.Hour)
		other.Now = c.Now
		_, err := other.Decode(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := testCodec(&now)
		other.Issuer = "someone-else"
		_, err := other.Decode(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(tok, ".")
		require.Len(t, parts, 3)
		parts[1] = parts[1][:len(parts[1])-2] + "AA"
		_, err := c.Decode(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.RegisteredClaims{
			Subject:   "1",
			Issuer:    "aestheticops",
			ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Hour)),
		})
		s, err := unsigned.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = c.Decode(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		raw := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.RegisteredClaims{Subject: "1", Issuer: "aestheticops"})
		s, err := raw.SignedString(c.Secret)
		require.NoError(t, err)
		_, err = c.Decode(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := c.Decode("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
