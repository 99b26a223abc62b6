package service

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stefanfredik/openaccess-sub000/internal/cache"
	"github.com/stefanfredik/openaccess-sub000/internal/observability"
)

var tracer = otel.Tracer("github.com/stefanfredik/openaccess-sub000/internal/service")

// Deps are the collaborators shared by every service
type Deps struct {
	Cache   cache.Cache
	Events  *EventBus
	Metrics *observability.Metrics
}

func startSpan(ctx context.Context, name string, tenantID int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("tenant_id", tenantID)))
}

// endSpan records err on the span, if any, and ends it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// invalidate drops a tenant's cached snapshot. A failure is logged; the next
// read still sees fresh data once the entry expires.
func (d Deps) invalidate(ctx context.Context, tenantID int64) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, tenantID); err != nil {
		log.Error(ctx, errors.Wrap(err, "failed to invalidate topology cache", j.KV("tenant_id", tenantID)))
	}
}
