package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// Session is the result of a successful login.
type Session struct {
	Principal domain.Principal
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates admins and issues sessions.
type AuthService struct {
	admins domain.AdminRepository
	hasher domain.PasswordHasher
	issuer domain.SessionIssuer
}

// NewAuthService creates an auth service with the given adapters.
func NewAuthService(admins domain.AdminRepository, hasher domain.PasswordHasher, issuer domain.SessionIssuer) *AuthService {
	return &AuthService{
		admins: admins,
		hasher: hasher,
		issuer: issuer,
	}
}

// Login verifies the admin credential and issues a session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("looking up admin: %w", err)
	}

	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	principal := domain.PrincipalFromAdmin(admin)
	token, expiresAt, err := s.issuer.Issue(principal)
	if err != nil {
		return Session{}, fmt.Errorf("issuing session: %w", err)
	}

	return Session{Principal: principal, Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureAdmin creates an admin with the given credentials unless one with
// that email already exists. It reports whether an admin was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)

	_, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrAdminNotFound) {
		return false, fmt.Errorf("looking up admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	admin := domain.Admin{
		ID:           generateID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("creating admin: %w", err)
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
