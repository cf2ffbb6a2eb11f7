// Package jwt firma y valida los tokens de sesión (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/aestheticops/internal/claims"
	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
)

// ErrInvalidToken cubre cualquier falla al decodificar: firma, algoritmo,
// issuer, expiración o payload mal formado.
var ErrInvalidToken = errors.New("invalid session token")

const leeway = 30 * time.Second

type Codec struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now es el reloj; nil usa time.Now.
	Now func() time.Time
}

func NewCodec(secret, issuer string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{Secret: []byte(secret), Issuer: issuer, TTL: ttl}
}

type sessionToken struct {
	Email        string                  `json:"email"`
	Name         string                  `json:"name,omitempty"`
	Role         string                  `json:"role"`
	ClinicName   string                  `json:"clinicName"`
	Subscription repository.Subscription `json:"subscription"`
	jwtv5.RegisteredClaims
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Encode firma las claims. El subject es el ID del usuario.
func (c *Codec) Encode(s claims.Session) (string, time.Time, error) {
	if len(c.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt: empty secret")
	}
	if s.ID == "" {
		return "", time.Time{}, errors.New("jwt: session without id")
	}
	now := c.now().UTC()
	exp := now.Add(c.TTL)

	tc := sessionToken{
		Email:        s.Email,
		Name:         s.Name,
		Role:         s.Role,
		ClinicName:   s.ClinicName,
		Subscription: s.Subscription,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   s.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, tc)
	signed, err := tok.SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Decode valida el token y reconstruye las claims.
func (c *Codec) Decode(raw string) (*claims.Session, error) {
	if raw == "" || len(c.Secret) == 0 {
		return nil, ErrInvalidToken
	}
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuedAt(),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithTimeFunc(c.now),
	}
	if c.Issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(c.Issuer))
	}

	var tc sessionToken
	tok, err := jwtv5.ParseWithClaims(raw, &tc, func(*jwtv5.Token) (any, error) {
		return c.Secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims.Session{
		ID:           tc.Subject,
		Email:        tc.Email,
		Name:         tc.Name,
		Role:         tc.Role,
		ClinicName:   tc.ClinicName,
		Subscription: tc.Subscription,
	}, nil
}
