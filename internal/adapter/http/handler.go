package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/bazaar/internal/app"
	"github.com/neomorfeo/bazaar/internal/domain"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// Services bundles what the HTTP adapter calls into.
type Services struct {
	Moderation *app.ModerationService
	Catalog    *app.CatalogService
	Auth       *app.AuthService
	Resolver   domain.PrincipalResolver
	Logger     *slog.Logger

	// LoginLimiter throttles POST /auth/login per remote address; nil disables it.
	LoginLimiter  *RateLimiter
	SecureCookies bool
}

// Credentials is the session evidence a request may carry. A bearer token
// takes precedence over the cookie.
type Credentials struct {
	Authorization string `header:"Authorization" doc:"Bearer session token"`
	Session       string `cookie:"session" doc:"Session cookie"`
}

func (c Credentials) token() string {
	if scheme, token, ok := strings.Cut(c.Authorization, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return c.Session
}

// --- Vendors ---

type VendorInput struct {
	Credentials
	ID string `path:"id" doc:"Vendor ID"`
}

type VendorOutput struct {
	Body struct {
		Vendor VendorResponse `json:"vendor"`
	}
}

type ListPendingInput struct {
	Credentials
}

type ListPendingOutput struct {
	Body struct {
		Vendors []VendorResponse `json:"vendors"`
	}
}

// --- Categories ---

type ListCategoriesInput struct{}

type ListCategoriesOutput struct {
	Body struct {
		Categories []CategoryResponse `json:"categories"`
	}
}

type handler struct {
	Services
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, s Services) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	h := &handler{Services: s}

	huma.Register(api, huma.Operation{
		OperationID: "list-pending-vendors",
		Method:      http.MethodGet,
		Path:        "/vendors/pending",
		Summary:     "List vendors awaiting moderation",
		Tags:        []string{"Moderation"},
	}, h.listPending)

	huma.Register(api, huma.Operation{
		OperationID: "get-vendor",
		Method:      http.MethodGet,
		Path:        "/vendors/{id}",
		Summary:     "Get a vendor by ID",
		Tags:        []string{"Moderation"},
	}, h.getVendor)

	huma.Register(api, huma.Operation{
		OperationID: "approve-vendor",
		Method:      http.MethodPatch,
		Path:        "/vendors/{id}/approve",
		Summary:     "Approve a vendor",
		Tags:        []string{"Moderation"},
	}, h.approve)

	huma.Register(api, huma.Operation{
		OperationID: "suspend-vendor",
		Method:      http.MethodPatch,
		Path:        "/vendors/{id}/suspend",
		Summary:     "Suspend a vendor",
		Tags:        []string{"Moderation"},
	}, h.suspend)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/categories",
		Summary:     "List service categories",
		Tags:        []string{"Catalog"},
	}, h.listCategories)

	registerAuth(api, h)
}

func (h *handler) principal(ctx context.Context, c Credentials) domain.Optional[domain.Principal] {
	return h.Resolver.Resolve(ctx, c.token())
}

func (h *handler) listPending(ctx context.Context, input *ListPendingInput) (*ListPendingOutput, error) {
	vendors, err := h.Moderation.ListPending(ctx, h.principal(ctx, input.Credentials))
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}
	out := &ListPendingOutput{}
	out.Body.Vendors = toVendorResponses(vendors)
	return out, nil
}

func (h *handler) getVendor(ctx context.Context, input *VendorInput) (*VendorOutput, error) {
	vendor, err := h.Moderation.Get(ctx, h.principal(ctx, input.Credentials), input.ID)
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}
	return vendorOutput(vendor), nil
}

func (h *handler) approve(ctx context.Context, input *VendorInput) (*VendorOutput, error) {
	vendor, err := h.Moderation.Approve(ctx, h.principal(ctx, input.Credentials), input.ID)
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}
	return vendorOutput(vendor), nil
}

func (h *handler) suspend(ctx context.Context, input *VendorInput) (*VendorOutput, error) {
	vendor, err := h.Moderation.Suspend(ctx, h.principal(ctx, input.Credentials), input.ID)
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}
	return vendorOutput(vendor), nil
}

func (h *handler) listCategories(ctx context.Context, _ *ListCategoriesInput) (*ListCategoriesOutput, error) {
	categories, err := h.Catalog.List(ctx)
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = toCategoryResponses(categories)
	return out, nil
}

func vendorOutput(v domain.Vendor) *VendorOutput {
	out := &VendorOutput{}
	out.Body.Vendor = toVendorResponse(v)
	return out
}

// toHumaError translates domain errors to Huma HTTP errors.
//
// Unknown vendor ids map to 404 rather than the generic 500 used for other
// store failures, so callers can tell a bad id from an outage.
func (h *handler) toHumaError(ctx context.Context, err error) error {
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		return huma.Error403Forbidden("Unauthorized")
	}

	if errors.Is(err, domain.ErrVendorNotFound) {
		return huma.Error404NotFound("vendor not found")
	}

	if errors.Is(err, domain.ErrInvalidCredentials) {
		return huma.Error401Unauthorized("invalid email or password")
	}

	// The current transition table accepts every event from every status.
	// This covers validators that reject an event for the vendor's status.
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var emailErr *domain.EmailConflictError
	var categoryErr *domain.CategoryConflictError
	if errors.As(err, &emailErr) || errors.As(err, &categoryErr) {
		return huma.Error409Conflict(err.Error())
	}

	h.Logger.ErrorContext(ctx, "request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}
