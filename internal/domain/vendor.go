package domain

import "time"

// Status represents the moderation state of a vendor.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the defined moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSuspended:
		return true
	}
	return false
}

// Event represents a moderation action that triggers a state transition.
type Event string

const (
	EventApprove Event = "approve"
	EventSuspend Event = "suspend"
)

// Transition defines a valid state change: an event moves a vendor from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the vendor moderation workflow.
// Both events are accepted from every state, including their own destination.
var Transitions = []Transition{
	{Event: EventApprove, Src: StatusPending, Dst: StatusApproved},
	{Event: EventApprove, Src: StatusApproved, Dst: StatusApproved},
	{Event: EventApprove, Src: StatusSuspended, Dst: StatusApproved},
	{Event: EventSuspend, Src: StatusPending, Dst: StatusSuspended},
	{Event: EventSuspend, Src: StatusApproved, Dst: StatusSuspended},
	{Event: EventSuspend, Src: StatusSuspended, Dst: StatusSuspended},
}

// Vendor is a marketplace listing subject to moderation.
type Vendor struct {
	ID     string
	Name   string
	Email  string
	Status Status

	// ApprovedAt and ApprovedByID are written together by the approve
	// transition and left untouched by suspension.
	ApprovedAt   *time.Time
	ApprovedByID *string

	Categories []Category
	Profile    Optional[Profile]

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVendor creates a vendor in the initial "pending" state.
func NewVendor(id, name, email string, categories []Category) Vendor {
	now := time.Now().UTC()
	return Vendor{
		ID:         id,
		Name:       name,
		Email:      email,
		Status:     StatusPending,
		Categories: categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Profile is one of a vendor's public presentations. At most one per vendor is the default.
type Profile struct {
	ID          string
	VendorID    string
	Headline    string
	Description string
	City        string
	IsDefault   bool
	CreatedAt   time.Time
}

// Approval carries the attribution recorded by the approve transition.
type Approval struct {
	At   time.Time
	ByID string
}

// StatusChange is a single atomic mutation of a vendor's moderation fields.
type StatusChange struct {
	VendorID string
	Status   Status
	Approval *Approval
}

// Validate checks that the change is internally consistent: approval
// attribution is present exactly when the target status is approved.
func (c StatusChange) Validate() error {
	if !c.Status.Valid() {
		return &InvalidStatusChangeError{Reason: "unknown status " + string(c.Status)}
	}
	if c.Status == StatusApproved && (c.Approval == nil || c.Approval.ByID == "") {
		return &InvalidStatusChangeError{Reason: "approval requires attribution"}
	}
	if c.Status != StatusApproved && c.Approval != nil {
		return &InvalidStatusChangeError{Reason: "attribution only applies to approval"}
	}
	return nil
}
