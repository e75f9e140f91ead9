package http

import (
	"time"

	"github.com/neomorfeo/bazaar/internal/domain"
)

const timestampFormat = time.RFC3339Nano

// VendorResponse is the API representation of a vendor.
type VendorResponse struct {
	ID           string             `json:"id" doc:"Unique identifier"`
	Name         string             `json:"name" doc:"Business name"`
	Email        string             `json:"email" doc:"Contact email"`
	Status       string             `json:"status" enum:"pending,approved,suspended" doc:"Moderation state"`
	ApprovedAt   *string            `json:"approvedAt" doc:"Time of the latest approval (RFC 3339)"`
	ApprovedByID *string            `json:"approvedById" doc:"Admin who approved most recently"`
	Categories   []CategoryResponse `json:"categories" doc:"Service categories, by display order"`
	Profile      *ProfileResponse   `json:"profile" doc:"Default profile, null when none is marked default"`
	CreatedAt    string             `json:"createdAt" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt    string             `json:"updatedAt" doc:"Last update timestamp (RFC 3339)"`
}

// ProfileResponse is the API representation of a vendor's default profile.
type ProfileResponse struct {
	ID          string `json:"id"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	City        string `json:"city"`
	IsDefault   bool   `json:"isDefault"`
}

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	Name         string `json:"name" doc:"Display name"`
	DisplayOrder int    `json:"displayOrder" doc:"Ascending sort key"`
}

// PrincipalResponse is the API representation of the caller's identity.
type PrincipalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toVendorResponse(v domain.Vendor) VendorResponse {
	resp := VendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		Email:        v.Email,
		Status:       string(v.Status),
		ApprovedByID: v.ApprovedByID,
		Categories:   toCategoryResponses(v.Categories),
		CreatedAt:    v.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:    v.UpdatedAt.UTC().Format(timestampFormat),
	}
	if v.ApprovedAt != nil {
		at := v.ApprovedAt.UTC().Format(timestampFormat)
		resp.ApprovedAt = &at
	}
	if p, ok := v.Profile.Get(); ok {
		resp.Profile = &ProfileResponse{
			ID:          p.ID,
			Headline:    p.Headline,
			Description: p.Description,
			City:        p.City,
			IsDefault:   p.IsDefault,
		}
	}
	return resp
}

func toVendorResponses(vendors []domain.Vendor) []VendorResponse {
	out := make([]VendorResponse, len(vendors))
	for i, v := range vendors {
		out[i] = toVendorResponse(v)
	}
	return out
}

func toCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder}
	}
	return out
}

func toPrincipalResponse(p domain.Principal) *PrincipalResponse {
	return &PrincipalResponse{
		ID:    p.ID,
		Email: p.Email,
		Name:  p.Name,
		Role:  string(p.Role),
	}
}
