package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/bazaar/internal/domain"
)

var _ domain.EventPublisher = (*Publisher)(nil)

// ModerationJobKind identifies moderation jobs in River's queue.
const ModerationJobKind = "vendor.moderated"

// ModerationJobArgs is a snapshot of a vendor right after a moderation
// transition was committed. The worker never reads the directory back.
type ModerationJobArgs struct {
	Event        string `json:"event"`
	VendorID     string `json:"vendor_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	ApprovedByID string `json:"approved_by_id,omitempty"`
}

func (ModerationJobArgs) Kind() string { return ModerationJobKind }

func (ModerationJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 5,
		Tags:        []string{"moderation"},
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a moderation event as an async job.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, vendor domain.Vendor) error {
	args := ModerationJobArgs{
		Event:    string(event),
		VendorID: vendor.ID,
		Name:     vendor.Name,
		Status:   string(vendor.Status),
	}
	if vendor.ApprovedByID != nil {
		args.ApprovedByID = *vendor.ApprovedByID
	}

	if _, err := p.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("enqueuing moderation job: %w", err)
	}
	return nil
}
