package payment

import (
	"errors"
	"time"
)

var (
	ErrNetwork          = errors.New("payment: processor unreachable")
	ErrInvalidRequest   = errors.New("payment: invalid request")
	ErrRejected         = errors.New("payment: request rejected")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrMalformedPayload = errors.New("payment: malformed webhook payload")
	ErrNotFound         = errors.New("payment: session not found")
)

type Kind string

const (
	KindNetwork        Kind = "network"
	KindInvalidRequest Kind = "invalid_request"
	KindRejected       Kind = "rejected"
	KindUnknown        Kind = "unknown"
)

// KindOf classifies a processor failure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrRejected):
		return KindRejected
	default:
		return KindUnknown
	}
}

// MetadataProductID is the product metadata key carrying the catalog id.
const MetadataProductID = "product_id"

type LineItem struct {
	Name       string
	Currency   string
	UnitAmount int64
	Quantity   int64
	Images     []string
	Metadata   map[string]string
}

type DeliveryEstimate struct {
	MinBusinessDays int64
	MaxBusinessDays int64
}

type ShippingOption struct {
	DisplayName string
	Amount      int64
	Currency    string
	Estimate    DeliveryEstimate
}

type CheckoutRequest struct {
	LineItems        []LineItem
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	Shipping         []ShippingOption
}

type Session struct {
	ID            string
	URL           string
	CustomerEmail string
	PaymentStatus string
}

// PurchasedItem is a line item as reported by the processor after payment.
type PurchasedItem struct {
	Description string
	Quantity    int64
	Metadata    map[string]string
}

const EventCheckoutCompleted = "checkout.session.completed"

type Event struct {
	ID            string
	Type          string
	SessionID     string
	CustomerEmail string
	CreatedAt     time.Time
}
