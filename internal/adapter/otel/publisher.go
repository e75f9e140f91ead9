package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with a span per event and
// a moderation.events counter labelled by event and outcome.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
	events metric.Int64Counter
}

var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
// Instruments come from the global MeterProvider at construction time.
func NewTracingPublisher(next domain.EventPublisher) (*TracingPublisher, error) {
	events, err := otel.Meter(tracerName).Int64Counter("moderation.events",
		metric.WithDescription("Moderation events handed to the publisher"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating moderation.events counter: %w", err)
	}

	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
		events: events,
	}, nil
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, vendor domain.Vendor) (err error) {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("vendor.id", vendor.ID),
			attribute.String("vendor.status", string(vendor.Status)),
		),
	)
	defer func() {
		outcome := "published"
		if err != nil {
			outcome = "failed"
		}
		p.events.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("outcome", outcome),
		))
		finish(span, err)
	}()

	return p.next.Publish(ctx, event, vendor)
}
