package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/bazaar/internal/domain"
)

const tracerName = "github.com/neomorfeo/bazaar/internal/adapter/otel"

// finish records err on span, if any, and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracingVendorRepository wraps a domain.VendorRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingVendorRepository struct {
	next   domain.VendorRepository
	tracer trace.Tracer
}

var _ domain.VendorRepository = (*TracingVendorRepository)(nil)

// NewTracingVendorRepository creates a tracing decorator around the given repository.
func NewTracingVendorRepository(next domain.VendorRepository) *TracingVendorRepository {
	return &TracingVendorRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingVendorRepository) Create(ctx context.Context, vendor domain.Vendor) (err error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.Create",
		trace.WithAttributes(
			attribute.String("vendor.id", vendor.ID),
			attribute.Int("vendor.categories", len(vendor.Categories)),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Create(ctx, vendor)
}

func (r *TracingVendorRepository) AddProfile(ctx context.Context, profile domain.Profile) (err error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.AddProfile",
		trace.WithAttributes(
			attribute.String("vendor.id", profile.VendorID),
			attribute.String("profile.id", profile.ID),
			attribute.Bool("profile.default", profile.IsDefault),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.AddProfile(ctx, profile)
}

func (r *TracingVendorRepository) GetByID(ctx context.Context, id string) (_ domain.Vendor, err error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.GetByID",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)
	defer func() { finish(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingVendorRepository) List(ctx context.Context, filter domain.ListFilter) (_ []domain.Vendor, err error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer func() { finish(span, err) }()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	vendors, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(vendors)))
	}
	return vendors, err
}

func (r *TracingVendorRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) (_ domain.Vendor, err error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("vendor.id", change.VendorID),
			attribute.String("vendor.status", string(change.Status)),
		),
	)
	defer func() { finish(span, err) }()

	if change.Approval != nil {
		span.SetAttributes(attribute.String("vendor.approved_by_id", change.Approval.ByID))
	}

	return r.next.UpdateStatus(ctx, change)
}

// TracingCategoryRepository wraps a domain.CategoryRepository with OpenTelemetry tracing.
type TracingCategoryRepository struct {
	next   domain.CategoryRepository
	tracer trace.Tracer
}

var _ domain.CategoryRepository = (*TracingCategoryRepository)(nil)

func NewTracingCategoryRepository(next domain.CategoryRepository) *TracingCategoryRepository {
	return &TracingCategoryRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingCategoryRepository) Create(ctx context.Context, category domain.Category) (err error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create",
		trace.WithAttributes(
			attribute.String("category.id", category.ID),
			attribute.Int("category.display_order", category.DisplayOrder),
		),
	)
	defer func() { finish(span, err) }()

	return r.next.Create(ctx, category)
}

func (r *TracingCategoryRepository) List(ctx context.Context) (_ []domain.Category, err error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.List")
	defer func() { finish(span, err) }()

	categories, err := r.next.List(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(categories)))
	}
	return categories, err
}
