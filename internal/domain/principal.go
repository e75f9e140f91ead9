package domain

import "time"

// Admin is an operator allowed to moderate vendors.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// Role distinguishes principal kinds.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// IsAdmin reports whether the principal may moderate vendors.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalFromAdmin builds the session principal for an authenticated admin.
func PrincipalFromAdmin(a Admin) Principal {
	return Principal{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  RoleAdmin,
	}
}
