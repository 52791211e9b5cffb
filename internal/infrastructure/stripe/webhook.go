package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/delus-studio/storefront/internal/domain/payment"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Verifier checks the Stripe-Signature header against the endpoint secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

func (v *Verifier) VerifyEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", payment.ErrInvalidSignature)
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}

	out := &payment.Event{
		ID:        evt.ID,
		Type:      string(evt.Type),
		CreatedAt: time.Unix(evt.Created, 0).UTC(),
	}
	if out.Type != payment.EventCheckoutCompleted {
		return out, nil
	}
	if evt.Data == nil {
		return nil, fmt.Errorf("%w: event has no data", payment.ErrMalformedPayload)
	}
	var cs stripego.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: checkout session: %v", payment.ErrMalformedPayload, err)
	}
	if cs.ID == "" {
		return nil, fmt.Errorf("%w: checkout session id missing", payment.ErrMalformedPayload)
	}
	out.SessionID = cs.ID
	if s := toSession(&cs); s != nil {
		out.CustomerEmail = s.CustomerEmail
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
