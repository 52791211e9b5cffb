package payment

import "context"

// Processor creates and inspects hosted checkout sessions.
// Failures wrap ErrNetwork, ErrInvalidRequest or ErrRejected.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	ListLineItems(ctx context.Context, sessionID string) ([]PurchasedItem, error)
}

// WebhookVerifier authenticates and decodes a webhook delivery.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}
