package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neomorfeo/bazaar/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndResolve(t *testing.T) {
	m := newTestManager(t)
	want := domain.Principal{ID: "a1", Email: "ops@example.com", Name: "Ops", Role: domain.RoleAdmin}

	token, expiresAt, err := m.Issue(want)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt = %v, want in the future", expiresAt)
	}

	got, ok := m.Resolve(context.Background(), token).Get()
	if !ok {
		t.Fatal("expected a principal")
	}
	if got != want {
		t.Errorf("principal = %+v, want %+v", got, want)
	}
}

func TestResolve_Absent(t *testing.T) {
	m := newTestManager(t)
	other, _ := NewManager("other-secret", time.Hour)
	forged, _, _ := other.Issue(domain.Principal{ID: "a1", Role: domain.RoleAdmin})

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue(domain.Principal{ID: "a1", Role: domain.RoleAdmin})

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a1", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"forged":   forged,
		"expired":  stale,
		"alg none": none,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if m.Resolve(context.Background(), token).Present() {
				t.Error("expected no principal")
			}
		})
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewManager("s", 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}
