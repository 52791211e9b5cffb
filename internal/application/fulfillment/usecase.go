package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/order"
	"github.com/delus-studio/storefront/internal/domain/payment"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	fulfillmentService = "fulfillment-service"
	useCaseWebhook     = "fulfillment.handle_webhook"
	spanPrefix         = "UC."
)

var (
	ErrInvalidSignature = payment.ErrInvalidSignature
	ErrMalformedPayload = payment.ErrMalformedPayload
)

type WebhookInput struct {
	Payload   []byte
	Signature string
}

type WebhookResult struct {
	EventID   string
	EventType string
	SessionID string
	// Handled is false for event types the storefront does not act on.
	Handled bool
	// Replay is true when the session was already fulfilled by an earlier delivery.
	Replay    bool
	OrderID   string
	Matched   int
	Unmatched int
}

// HandleWebhookUseCase reconciles stock with completed checkout sessions.
type HandleWebhookUseCase struct {
	verifier    payment.WebhookVerifier
	processor   payment.Processor
	products    catalog.ProductRepository
	orders      order.Repository
	idGenerator IDGenerator

	log           observability.Logger
	tracer        observability.Tracer
	reqCounter    observability.Counter
	durHistogram  observability.Histogram
	stockDecrCntr observability.Counter
}

func NewHandleWebhookUseCase(
	verifier payment.WebhookVerifier,
	processor payment.Processor,
	products catalog.ProductRepository,
	orders order.Repository,
	idGen IDGenerator,
	tel observability.Observability,
) *HandleWebhookUseCase {
	log, tracer, metrics := observability.Resolve(tel)
	return &HandleWebhookUseCase{
		verifier:      verifier,
		processor:     processor,
		products:      products,
		orders:        orders,
		idGenerator:   idGen,
		log:           log.With(observability.F("service", fulfillmentService)),
		tracer:        tracer,
		reqCounter:    metrics.Counter(observability.MUsecaseRequests),
		durHistogram:  metrics.Histogram(observability.MUsecaseDuration),
		stockDecrCntr: metrics.Counter(observability.MStockDecrements),
	}
}

// Execute verifies the delivery and, for completed checkouts, decrements stock for every matched line item.
// Unmatched items are skipped. An error is returned only when nothing was written and the delivery should be retried
// or rejected.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd WebhookInput) (_ *WebhookResult, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.log, observability.F("use_case", useCaseWebhook))
	ctx, span := uc.tracer.Start(ctx, spanPrefix+"HandleWebhook",
		attribute.String("use_case", useCaseWebhook),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	result := &WebhookResult{}

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseWebhook),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency, observability.L("use_case", useCaseWebhook))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
			observability.F("handled", result.Handled),
			observability.F("replay", result.Replay),
			observability.F("matched", result.Matched),
			observability.F("unmatched", result.Unmatched),
		}
		if result.EventType != "" {
			fields = append(fields, observability.F("event_type", result.EventType))
		}
		if result.OrderID != "" {
			fields = append(fields, observability.F("order_id", result.OrderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	event, err := uc.verifier.VerifyEvent(cmd.Payload, cmd.Signature)
	if err != nil {
		outcome, statusText = "rejected", "VERIFICATION_FAILED"
		return nil, fmt.Errorf("fulfillment: verify: %w", err)
	}
	result.EventID, result.EventType, result.SessionID = event.ID, event.Type, event.SessionID
	ctx, logger = logctx.Enrich(ctx, logger,
		observability.F("stripe_event_id", event.ID),
		observability.F("checkout_session_id", event.SessionID),
	)
	span.SetAttributes(
		attribute.String("payment.event_id", event.ID),
		attribute.String("payment.event_type", event.Type),
	)

	if event.Type != payment.EventCheckoutCompleted {
		statusText = "IGNORED"
		return result, nil
	}
	result.Handled = true

	if prior, lookupErr := uc.orders.FindBySession(ctx, event.SessionID); lookupErr == nil {
		statusText = "REPLAY"
		result.Replay, result.OrderID = true, prior.ID
		return result, nil
	} else if !errors.Is(lookupErr, order.ErrNotFound) {
		outcome, statusText = "error", "LEDGER_LOOKUP_FAILED"
		return result, fmt.Errorf("fulfillment: ledger lookup: %w", lookupErr)
	}

	items, err := uc.processor.ListLineItems(ctx, event.SessionID)
	if err != nil {
		outcome, statusText = "error", "LINE_ITEMS_FAILED"
		return result, fmt.Errorf("fulfillment: list line items: %w", err)
	}

	lines := make([]order.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, uc.resolve(ctx, logger, item))
	}

	o := order.New(uc.idGenerator.NewID(), event.SessionID, event.ID, event.CustomerEmail, lines)
	if err = uc.orders.Insert(ctx, o); err != nil {
		if errors.Is(err, order.ErrConflict) {
			// a concurrent delivery claimed the session first
			statusText = "REPLAY"
			result.Replay = true
			return result, nil
		}
		outcome, statusText = "error", "LEDGER_INSERT_FAILED"
		return result, fmt.Errorf("fulfillment: record order: %w", err)
	}
	result.OrderID = o.ID

	failed := false
	for i, l := range o.Lines {
		if !l.Matched {
			result.Unmatched++
			continue
		}
		if uc.decrement(ctx, logger, l) {
			result.Matched++
			continue
		}
		result.Unmatched++
		o.MarkUnfulfilled(i)
		failed = true
	}
	if failed {
		// stock already moved for the other lines; the delivery is still acknowledged
		if updateErr := uc.orders.Update(ctx, o); updateErr != nil {
			logger.Error("order_status_update_failed",
				observability.F("order_id", o.ID),
				observability.F("status", string(o.Status)),
				observability.F("error", updateErr),
			)
		}
	}
	if result.Unmatched > 0 {
		statusText = "PARTIALLY_FULFILLED"
	}
	span.AddEvent("order.fulfilled", trace.WithAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int("order.matched", result.Matched),
	))

	return result, nil
}

// resolve maps a purchased item to a catalog product, preferring the product id
// carried in metadata over the display name.
func (uc *HandleWebhookUseCase) resolve(ctx context.Context, logger observability.Logger, item payment.PurchasedItem) order.Line {
	line := order.Line{Description: item.Description, Quantity: item.Quantity}

	if raw, ok := item.Metadata[payment.MetadataProductID]; ok && raw != "" {
		if id, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			if p, getErr := uc.products.Get(ctx, id); getErr == nil {
				line.ProductID, line.Matched = p.ID, true
				return line
			}
		}
		logger.Warn("line_item_metadata_unresolved",
			observability.F("product_id", raw),
			observability.F("description", item.Description),
		)
	}

	p, err := uc.products.FindByName(ctx, item.Description)
	if err != nil {
		logger.Warn("line_item_unmatched",
			observability.F("description", item.Description),
			observability.F("quantity", item.Quantity),
		)
		return line
	}
	line.ProductID, line.Matched = p.ID, true
	return line
}

func (uc *HandleWebhookUseCase) decrement(ctx context.Context, logger observability.Logger, l order.Line) bool {
	left, err := uc.products.DecrementStock(ctx, l.ProductID, int(l.Quantity))
	if err != nil {
		uc.stockDecrCntr.Add(float64(l.Quantity), observability.L("outcome", "failed"))
		logger.Error("stock_decrement_failed",
			observability.F("product_id", l.ProductID),
			observability.F("quantity", l.Quantity),
			observability.F("error", err),
		)
		return false
	}
	uc.stockDecrCntr.Add(float64(l.Quantity), observability.L("outcome", "decremented"))
	logger.Info("stock_decremented",
		observability.F("product_id", l.ProductID),
		observability.F("quantity", l.Quantity),
		observability.F("stock_left", left),
	)
	return true
}
