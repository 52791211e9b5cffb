package eventpresentation

import (
	"context"

	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a delivery-scoped logger for inbound callbacks such as payment webhooks.
// Fields: delivery_id (generated if empty), trace_id/span_id when valid, plus the
// caller's low-cardinality attributes (e.g. "source", "use_case").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	attrs map[string]string,
) context.Context {
	base = logctx.FromOr(ctx, base)

	fields := make([]observability.Field, 0, len(attrs)+3)

	deliveryID := attrs["delivery_id"]
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	fields = append(fields, observability.F("delivery_id", deliveryID))

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	for k, v := range attrs {
		if k == "delivery_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}
