package cart

import (
	"context"
	"fmt"
	"time"

	domain "github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	cartService = "cart-service"
	useCaseAdd  = "cart.add"
	spanPrefix  = "UC."
)

var (
	ErrNotFound          = catalog.ErrNotFound
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrInvalidQuantity   = domain.ErrInvalidQuantity
)

type AddToCartInput struct {
	Cart      *domain.Cart
	ProductID int64
	Quantity  int
}

type AddToCartResult struct {
	CartSize int
	ImageURL string
}

// AddToCartUseCase validates the requested quantity against live stock and mutates the supplied cart.
// Persisting the cart is left to the caller.
type AddToCartUseCase struct {
	products       catalog.ProductRepository
	imageOverrides map[int64]string

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewAddToCartUseCase(products catalog.ProductRepository, imageOverrides map[int64]string, tel observability.Observability) *AddToCartUseCase {
	log, tracer, metrics := observability.Resolve(tel)
	return &AddToCartUseCase{
		products:       products,
		imageOverrides: imageOverrides,
		log:            log.With(observability.F("service", cartService)),
		tracer:         tracer,
		reqCounter:     metrics.Counter(observability.MUsecaseRequests),
		durHistogram:   metrics.Histogram(observability.MUsecaseDuration),
	}
}

func (uc *AddToCartUseCase) Execute(ctx context.Context, cmd AddToCartInput) (_ *AddToCartResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseAdd),
		observability.F("product_id", cmd.ProductID),
		observability.F("quantity", cmd.Quantity),
	)
	ctx, span := uc.tracer.Start(ctx, spanPrefix+"AddToCart",
		attribute.String("use_case", useCaseAdd),
		attribute.Int64("product.id", cmd.ProductID),
		attribute.Int("cart.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var result *AddToCartResult

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
			observability.L("use_case", useCaseAdd),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency, observability.L("use_case", useCaseAdd))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if result != nil {
			fields = append(fields, observability.F("cart_size", result.CartSize))
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

	if cmd.Cart == nil {
		cmd.Cart = domain.New()
	}
	if cmd.Quantity < 1 {
		outcome, statusText = "rejected", "INVALID_QUANTITY"
		return nil, ErrInvalidQuantity
	}

	product, err := uc.products.Get(ctx, cmd.ProductID)
	if err != nil {
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		return nil, fmt.Errorf("cart: get product %d: %w", cmd.ProductID, err)
	}

	if err = cmd.Cart.Add(product, cmd.Quantity); err != nil {
		outcome, statusText = "rejected", "INSUFFICIENT_STOCK"
		return nil, err
	}

	span.AddEvent("cart.updated", trace.WithAttributes(attribute.Int("cart.size", cmd.Cart.Len())))
	result = &AddToCartResult{
		CartSize: cmd.Cart.Len(),
		ImageURL: uc.displayImage(product),
	}
	return result, nil
}

// displayImage prefers a curated image for known products.
func (uc *AddToCartUseCase) displayImage(p *catalog.Product) string {
	if img, ok := uc.imageOverrides[p.ID]; ok && img != "" {
		return img
	}
	return p.ImageURL
}
