package domain

import (
	"context"
	"time"
)

// VendorRepository defines the persistence contract for vendors.
type VendorRepository interface {
	Create(ctx context.Context, vendor Vendor) error
	AddProfile(ctx context.Context, profile Profile) error
	GetByID(ctx context.Context, id string) (Vendor, error)
	List(ctx context.Context, filter ListFilter) ([]Vendor, error)
	// UpdateStatus applies the change in a single atomic write and returns
	// the stored vendor. Unknown ids yield ErrVendorNotFound.
	UpdateStatus(ctx context.Context, change StatusChange) (Vendor, error)
}

// ListFilter holds optional criteria for listing vendors.
// Results are always ordered by creation time, newest first.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// CategoryRepository defines the persistence contract for the category catalog.
type CategoryRepository interface {
	Create(ctx context.Context, category Category) error
	// List returns every category ordered by DisplayOrder ascending.
	List(ctx context.Context) ([]Category, error)
}

// AdminRepository defines the persistence contract for admins.
type AdminRepository interface {
	Create(ctx context.Context, admin Admin) error
	GetByID(ctx context.Context, id string) (Admin, error)
	GetByEmail(ctx context.Context, email string) (Admin, error)
}

// EventPublisher defines the contract for emitting moderation events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, vendor Vendor) error
}

// TransitionValidator validates moderation events against the current status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// PrincipalResolver turns request session evidence into a principal.
// Missing or invalid evidence yields None, never an error.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) Optional[Principal]
}

// SessionIssuer mints session tokens for authenticated principals.
type SessionIssuer interface {
	Issue(principal Principal) (token string, expiresAt time.Time, err error)
}

// PasswordHasher hashes and verifies admin credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
