// Package session issues and verifies stateless session tokens (HS256 JWTs).
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// Compile-time checks: Manager is both halves of the session collaborator.
var (
	_ domain.PrincipalResolver = (*Manager)(nil)
	_ domain.SessionIssuer     = (*Manager)(nil)
)

const issuer = "bazaar"

// Claims is the token payload.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a manager. The secret must not be empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue mints a token for the principal.
func (m *Manager) Issue(p domain.Principal) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Email: p.Email,
		Name:  p.Name,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return token, expiresAt, nil
}

// Resolve verifies the token and returns its principal. Empty, malformed,
// expired, or forged tokens all resolve to None.
func (m *Manager) Resolve(_ context.Context, token string) domain.Optional[domain.Principal] {
	if token == "" {
		return domain.None[domain.Principal]()
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.None[domain.Principal]()
	}

	return domain.Some(domain.Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  domain.Role(claims.Role),
	})
}
