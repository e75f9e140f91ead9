package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neomorfeo/bazaar/internal/app"
	"github.com/neomorfeo/bazaar/internal/domain"
)

type mockAdminRepo struct {
	admins map[string]domain.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]domain.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, a domain.Admin) error {
	if _, ok := m.admins[a.Email]; ok {
		return &domain.EmailConflictError{Email: a.Email}
	}
	m.admins[a.Email] = a
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (domain.Admin, error) {
	for _, a := range m.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Admin{}, domain.ErrAdminNotFound
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (domain.Admin, error) {
	a, ok := m.admins[email]
	if !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	return a, nil
}

// plainHasher stores passwords with a marker prefix.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type stubIssuer struct {
	issued []domain.Principal
}

func (s *stubIssuer) Issue(p domain.Principal) (string, time.Time, error) {
	s.issued = append(s.issued, p)
	return "token-" + p.ID, time.Now().Add(time.Hour), nil
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	repo := newMockAdminRepo()
	svc := app.NewAuthService(repo, plainHasher{}, &stubIssuer{})

	created, err := svc.EnsureAdmin(context.Background(), " Ops@Example.com ", "s3cret", "Ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected admin to be created")
	}

	admin, err := repo.GetByEmail(context.Background(), "ops@example.com")
	if err != nil {
		t.Fatalf("admin not stored under normalized email: %v", err)
	}
	if admin.PasswordHash != "plain:s3cret" {
		t.Errorf("PasswordHash = %q, want hashed password", admin.PasswordHash)
	}
	if admin.ID == "" {
		t.Error("ID should not be empty")
	}

	created, err = svc.EnsureAdmin(context.Background(), "ops@example.com", "other", "Ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second call should not create an admin")
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockAdminRepo()
	issuer := &stubIssuer{}
	svc := app.NewAuthService(repo, plainHasher{}, issuer)

	if _, err := svc.EnsureAdmin(context.Background(), "ops@example.com", "s3cret", "Ops"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	session, err := svc.Login(context.Background(), "OPS@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Principal.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", session.Principal.Role, domain.RoleAdmin)
	}
	if session.Token != "token-"+session.Principal.ID {
		t.Errorf("Token = %q, want issuer token", session.Token)
	}
	if len(issuer.issued) != 1 {
		t.Errorf("issued %d tokens, want 1", len(issuer.issued))
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMockAdminRepo()
	issuer := &stubIssuer{}
	svc := app.NewAuthService(repo, plainHasher{}, issuer)

	if _, err := svc.EnsureAdmin(context.Background(), "ops@example.com", "s3cret", "Ops"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	cases := map[string][2]string{
		"wrong password": {"ops@example.com", "nope"},
		"unknown email":  {"ghost@example.com", "s3cret"},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), creds[0], creds[1])
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if len(issuer.issued) != 0 {
		t.Errorf("issued %d tokens, want 0", len(issuer.issued))
	}
}
