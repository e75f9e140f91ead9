package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthorizationError is returned when the acting principal is absent or lacks the admin role.
// No mutation is attempted once it is raised.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("admin role required to %s", e.Action)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// InvalidStatusChangeError is returned when a StatusChange would leave a vendor inconsistent.
type InvalidStatusChangeError struct {
	Reason string
}

func (e *InvalidStatusChangeError) Error() string {
	return "invalid status change: " + e.Reason
}

// EmailConflictError is returned when an admin email is already registered.
type EmailConflictError struct {
	Email string
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("email %q is already in use", e.Email)
}

// CategoryConflictError is returned when a category name is already in use.
type CategoryConflictError struct {
	Name string
}

func (e *CategoryConflictError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Name)
}
