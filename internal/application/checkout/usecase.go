package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domcart "github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/payment"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService = "checkout-service"
	useCaseCreate   = "checkout.create_session"
	spanPrefix      = "UC."

	// CheckoutSessionPlaceholder is substituted by the processor with the real session id.
	CheckoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"
)

var ErrEmptyCart = errors.New("checkout: cart is empty")

// Config holds the fixed parts of every checkout request.
type Config struct {
	Currency         string
	AllowedCountries []string
	Shipping         []payment.ShippingOption
}

// DefaultConfig ships free to the US and Canada in 5 to 7 business days.
func DefaultConfig() Config {
	return Config{
		Currency:         "usd",
		AllowedCountries: []string{"US", "CA"},
		Shipping: []payment.ShippingOption{{
			DisplayName: "Free shipping",
			Amount:      0,
			Currency:    "usd",
			Estimate:    payment.DeliveryEstimate{MinBusinessDays: 5, MaxBusinessDays: 7},
		}},
	}
}

type CreateSessionInput struct {
	Cart *domcart.Cart
	// BaseURL is the externally visible origin, e.g. "https://delus.example/".
	BaseURL string
}

type CreateSessionResult struct {
	SessionID string
	URL       string
}

type CreateSessionUseCase struct {
	processor payment.Processor
	cfg       Config

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewCreateSessionUseCase(processor payment.Processor, cfg Config, tel observability.Observability) *CreateSessionUseCase {
	log, tracer, metrics := observability.Resolve(tel)
	if cfg.Currency == "" {
		cfg.Currency = DefaultConfig().Currency
	}
	return &CreateSessionUseCase{
		processor:    processor,
		cfg:          cfg,
		log:          log.With(observability.F("service", checkoutService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// Execute turns the cart into a processor checkout session and clears the cart once the session exists.
func (uc *CreateSessionUseCase) Execute(ctx context.Context, cmd CreateSessionInput) (_ *CreateSessionResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCreate))
	ctx, span := uc.tracer.Start(ctx, spanPrefix+"CreateCheckoutSession",
		attribute.String("use_case", useCaseCreate),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var sessionID string
	var lines int

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
			observability.L("use_case", useCaseCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency, observability.L("use_case", useCaseCreate))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
			observability.F("line_items", lines),
		}
		if sessionID != "" {
			fields = append(fields, observability.F("checkout_session_id", sessionID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields,
				observability.F("error", err.Error()),
				observability.F("error_kind", string(payment.KindOf(err))),
			)
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.Cart == nil || cmd.Cart.IsEmpty() {
		outcome, statusText = "rejected", "EMPTY_CART"
		return nil, ErrEmptyCart
	}

	req := uc.buildRequest(cmd.Cart, cmd.BaseURL)
	lines = len(req.LineItems)
	span.SetAttributes(attribute.Int("checkout.line_items", lines))

	sess, err := uc.processor.CreateCheckoutSession(ctx, req)
	if err != nil {
		outcome, statusText = "error", "PROCESSOR_"+strings.ToUpper(string(payment.KindOf(err)))
		return nil, fmt.Errorf("checkout: create session: %w", err)
	}
	sessionID = sess.ID

	cmd.Cart.Clear()
	return &CreateSessionResult{SessionID: sess.ID, URL: sess.URL}, nil
}

func (uc *CreateSessionUseCase) buildRequest(c *domcart.Cart, baseURL string) payment.CheckoutRequest {
	base := strings.TrimRight(baseURL, "/") + "/"

	items := make([]payment.LineItem, 0, c.Len())
	for _, e := range c.Entries {
		item := payment.LineItem{
			Name:       e.Name,
			Currency:   uc.cfg.Currency,
			UnitAmount: catalog.MinorUnits(e.Price),
			Quantity:   int64(e.Quantity),
			Metadata:   map[string]string{payment.MetadataProductID: fmt.Sprintf("%d", e.ProductID)},
		}
		if e.ImageURL != "" {
			item.Images = []string{base + "static/" + strings.TrimLeft(e.ImageURL, "/")}
		}
		items = append(items, item)
	}

	return payment.CheckoutRequest{
		LineItems:        items,
		SuccessURL:       base + "success?session_id=" + CheckoutSessionPlaceholder,
		CancelURL:        base + "cart",
		AllowedCountries: uc.cfg.AllowedCountries,
		Shipping:         uc.cfg.Shipping,
	}
}
