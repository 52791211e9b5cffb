package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delus-studio/storefront/internal/domain/payment"
	"github.com/delus-studio/storefront/internal/observability"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

const (
	peer               = "stripe"
	endpointCreate     = "checkout.sessions.create"
	endpointRetrieve   = "checkout.sessions.retrieve"
	endpointLineItems  = "checkout.sessions.line_items"
	expandLineProducts = "data.price.product"
)

// Processor implements payment.Processor on top of Stripe Checkout.
type Processor struct {
	sessions *session.Client

	log          observability.Logger
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

// NewBackend returns an API backend that never retries; a failed call surfaces to the
// shopper, who retries by hand. An empty url targets the live API, a nil logger the
// stripe-go default.
func NewBackend(url string, logger stripego.LeveledLoggerInterface) stripego.Backend {
	cfg := &stripego.BackendConfig{
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     logger,
	}
	if url != "" {
		cfg.URL = stripego.String(url)
	}
	return stripego.GetBackendWithConfig(stripego.APIBackend, cfg)
}

// NewProcessor builds a processor for key. A nil backend uses NewBackend against the live API.
func NewProcessor(key string, backend stripego.Backend, tel observability.Observability) *Processor {
	if backend == nil {
		backend = NewBackend("", nil)
	}
	log, _, metrics := observability.Resolve(tel)
	return &Processor{
		sessions:     &session.Client{B: backend, Key: key},
		log:          log.With(observability.F("component", "stripe_processor")),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

func (p *Processor) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	params := checkoutParams(req)
	params.Context = ctx

	var cs *stripego.CheckoutSession
	err := p.observe(endpointCreate, func() (err error) {
		cs, err = p.sessions.New(params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return toSession(cs), nil
}

func (p *Processor) RetrieveSession(ctx context.Context, id string) (*payment.Session, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	var cs *stripego.CheckoutSession
	err := p.observe(endpointRetrieve, func() (err error) {
		cs, err = p.sessions.Get(id, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve checkout session %s: %w", id, err)
	}
	return toSession(cs), nil
}

func (p *Processor) ListLineItems(ctx context.Context, sessionID string) ([]payment.PurchasedItem, error) {
	params := &stripego.CheckoutSessionListLineItemsParams{Session: stripego.String(sessionID)}
	params.Context = ctx
	params.AddExpand(expandLineProducts)

	var items []payment.PurchasedItem
	err := p.observe(endpointLineItems, func() error {
		it := p.sessions.ListLineItems(params)
		for it.Next() {
			items = append(items, toPurchasedItem(it.LineItem()))
		}
		return it.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: list line items for %s: %w", sessionID, err)
	}
	return items, nil
}

// observe records external call metrics and maps the error into the payment taxonomy.
func (p *Processor) observe(endpoint string, call func() error) error {
	start := time.Now()
	err := classify(call())

	outcome := "success"
	if err != nil {
		outcome = string(payment.KindOf(err))
		p.log.Warn("stripe_call_failed",
			observability.F("endpoint", endpoint),
			observability.F("error_kind", outcome),
			observability.F("error", err),
		)
	}
	p.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	p.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return err
}

// classify maps stripe-go failures onto the payment error taxonomy. A missing resource is
// both ErrNotFound and ErrInvalidRequest.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *stripego.Error
	if errors.As(err, &se) {
		if se.Code == stripego.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %w: %s", payment.ErrNotFound, payment.ErrInvalidRequest, se.Msg)
		}
		if se.Type == stripego.ErrorTypeInvalidRequest {
			return fmt.Errorf("%w: %s", payment.ErrInvalidRequest, se.Msg)
		}
		return fmt.Errorf("%w: %s", payment.ErrRejected, se.Msg)
	}
	return fmt.Errorf("%w: %v", payment.ErrNetwork, err)
}

func checkoutParams(req payment.CheckoutRequest) *stripego.CheckoutSessionParams {
	params := &stripego.CheckoutSessionParams{
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:         stripego.String(req.SuccessURL),
		CancelURL:          stripego.String(req.CancelURL),
	}

	for _, li := range req.LineItems {
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripego.String(li.Name),
			Images:   stripego.StringSlice(li.Images),
			Metadata: li.Metadata,
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(li.Currency),
				ProductData: product,
				UnitAmount:  stripego.Int64(li.UnitAmount),
			},
			Quantity: stripego.Int64(li.Quantity),
		})
	}

	if len(req.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(req.AllowedCountries),
		}
	}

	for _, opt := range req.Shipping {
		params.ShippingOptions = append(params.ShippingOptions, &stripego.CheckoutSessionShippingOptionParams{
			ShippingRateData: &stripego.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripego.String("fixed_amount"),
				DisplayName: stripego.String(opt.DisplayName),
				FixedAmount: &stripego.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripego.Int64(opt.Amount),
					Currency: stripego.String(opt.Currency),
				},
				DeliveryEstimate: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripego.String("business_day"),
						Value: stripego.Int64(opt.Estimate.MinBusinessDays),
					},
					Maximum: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripego.String("business_day"),
						Value: stripego.Int64(opt.Estimate.MaxBusinessDays),
					},
				},
			},
		})
	}
	return params
}

func toSession(cs *stripego.CheckoutSession) *payment.Session {
	if cs == nil {
		return nil
	}
	s := &payment.Session{
		ID:            cs.ID,
		URL:           cs.URL,
		CustomerEmail: cs.CustomerEmail,
		PaymentStatus: string(cs.PaymentStatus),
	}
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	return s
}

func toPurchasedItem(li *stripego.LineItem) payment.PurchasedItem {
	item := payment.PurchasedItem{Description: li.Description, Quantity: li.Quantity}
	if li.Price != nil && li.Price.Product != nil {
		item.Metadata = li.Price.Product.Metadata
		if item.Description == "" {
			item.Description = li.Price.Product.Name
		}
	}
	return item
}
