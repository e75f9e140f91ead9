package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// ModerationService orchestrates the vendor moderation workflow.
// Every operation takes the acting principal explicitly and refuses to touch
// the store unless it resolves to an admin.
type ModerationService struct {
	repo      domain.VendorRepository
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// ModerationOption customizes a ModerationService.
type ModerationOption func(*ModerationService)

// WithClock overrides the time source used for approval timestamps.
func WithClock(now func() time.Time) ModerationOption {
	return func(s *ModerationService) { s.now = now }
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(logger *slog.Logger) ModerationOption {
	return func(s *ModerationService) { s.logger = logger }
}

// NewModerationService creates a service with the given adapters.
func NewModerationService(
	repo domain.VendorRepository,
	validator domain.TransitionValidator,
	publisher domain.EventPublisher,
	opts ...ModerationOption,
) *ModerationService {
	s := &ModerationService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve marks the vendor approved and records the acting admin and time.
// Re-approving refreshes the attribution.
func (s *ModerationService) Approve(ctx context.Context, actor domain.Optional[domain.Principal], vendorID string) (domain.Vendor, error) {
	return s.transition(ctx, actor, vendorID, domain.EventApprove)
}

// Suspend marks the vendor suspended. Approval attribution is kept.
func (s *ModerationService) Suspend(ctx context.Context, actor domain.Optional[domain.Principal], vendorID string) (domain.Vendor, error) {
	return s.transition(ctx, actor, vendorID, domain.EventSuspend)
}

// ListPending returns vendors awaiting moderation, newest first.
func (s *ModerationService) ListPending(ctx context.Context, actor domain.Optional[domain.Principal]) ([]domain.Vendor, error) {
	if _, err := requireAdmin(actor, "list pending vendors"); err != nil {
		return nil, err
	}

	pending := domain.StatusPending
	vendors, err := s.repo.List(ctx, domain.ListFilter{Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("listing pending vendors: %w", err)
	}
	return vendors, nil
}

// Get returns a single vendor.
func (s *ModerationService) Get(ctx context.Context, actor domain.Optional[domain.Principal], vendorID string) (domain.Vendor, error) {
	if _, err := requireAdmin(actor, "view vendors"); err != nil {
		return domain.Vendor{}, err
	}
	return s.repo.GetByID(ctx, vendorID)
}

func (s *ModerationService) transition(ctx context.Context, actor domain.Optional[domain.Principal], vendorID string, event domain.Event) (domain.Vendor, error) {
	admin, err := requireAdmin(actor, string(event)+" vendors")
	if err != nil {
		return domain.Vendor{}, err
	}

	vendor, err := s.repo.GetByID(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	dst, err := s.validator.Apply(ctx, vendor.Status, event)
	if err != nil {
		return domain.Vendor{}, err
	}

	change := domain.StatusChange{VendorID: vendorID, Status: dst}
	if dst == domain.StatusApproved {
		change.Approval = &domain.Approval{At: s.now(), ByID: admin.ID}
	}

	updated, err := s.repo.UpdateStatus(ctx, change)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("updating vendor status: %w", err)
	}

	// The transition is committed at this point; a lost event must not
	// turn it into a failure.
	if err := s.publisher.Publish(ctx, event, updated); err != nil {
		s.logger.ErrorContext(ctx, "publishing moderation event",
			"event", string(event),
			"vendor_id", updated.ID,
			"error", err,
		)
	}

	return updated, nil
}

func requireAdmin(actor domain.Optional[domain.Principal], action string) (domain.Principal, error) {
	p, ok := actor.Get()
	if !ok || !p.IsAdmin() {
		return domain.Principal{}, &domain.AuthorizationError{Action: action}
	}
	return p, nil
}
