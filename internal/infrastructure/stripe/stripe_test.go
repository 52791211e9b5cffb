package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delus-studio/storefront/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

func testBackend(url string) stripego.Backend {
	return NewBackend(url, &stripego.LeveledLogger{Level: stripego.LevelNull})
}

func checkoutRequest() payment.CheckoutRequest {
	return payment.CheckoutRequest{
		LineItems: []payment.LineItem{{
			Name:       "Delus Trucker Hat",
			Currency:   "usd",
			UnitAmount: 4999,
			Quantity:   2,
			Images:     []string{"http://localhost/static/hat.jpg"},
			Metadata:   map[string]string{payment.MetadataProductID: "1"},
		}},
		SuccessURL:       "http://localhost/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        "http://localhost/cart",
		AllowedCountries: []string{"US", "CA"},
		Shipping: []payment.ShippingOption{{
			DisplayName: "Free shipping", Currency: "usd",
			Estimate: payment.DeliveryEstimate{MinBusinessDays: 5, MaxBusinessDays: 7},
		}},
	}
}

func TestProcessorCreateCheckoutSession(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k, v := range r.PostForm {
			form[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	}))
	defer srv.Close()

	p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
	sess, err := p.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "4999", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "2", form["line_items[0][quantity]"])
	assert.Equal(t, "1", form["line_items[0][price_data][product_data][metadata][product_id]"])
	assert.Equal(t, "US", form["shipping_address_collection[allowed_countries][0]"])
	assert.Equal(t, "0", form["shipping_options[0][shipping_rate_data][fixed_amount][amount]"])
	assert.Equal(t, "business_day", form["shipping_options[0][shipping_rate_data][delivery_estimate][minimum][unit]"])
}

func TestProcessorClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"InvalidRequest", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"bad param"}}`, payment.ErrInvalidRequest},
		{"CardDeclined", http.StatusPaymentRequired, `{"error":{"type":"card_error","message":"declined"}}`, payment.ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
			_, err := p.CreateCheckoutSession(context.Background(), checkoutRequest())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("Network", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		p := NewProcessor("sk_test_123", testBackend(url), nil)
		_, err := p.CreateCheckoutSession(context.Background(), checkoutRequest())
		assert.ErrorIs(t, err, payment.ErrNetwork)
	})
}

func TestProcessorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, `{"error":{"type":"api_error","message":"down"}}`)
	}))
	defer srv.Close()

	p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
	_, err := p.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestProcessorRetrieveMissingSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session: cs_x"}}`)
	}))
	defer srv.Close()

	p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
	_, err := p.RetrieveSession(context.Background(), "cs_x")
	assert.ErrorIs(t, err, payment.ErrNotFound)
	assert.Equal(t, payment.KindInvalidRequest, payment.KindOf(err))
}

func TestProcessorListLineItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/checkout/sessions/cs_1/line_items"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"object":"list","has_more":false,"url":"/v1/checkout/sessions/cs_1/line_items","data":[
			{"id":"li_1","object":"item","description":"Delus Trucker Hat","quantity":2,
			 "price":{"id":"price_1","object":"price","product":{"id":"prod_1","object":"product","name":"Delus Trucker Hat","metadata":{"product_id":"1"}}}}
		]}`)
	}))
	defer srv.Close()

	p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
	items, err := p.ListLineItems(context.Background(), "cs_1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Delus Trucker Hat", items[0].Description)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, "1", items[0].Metadata[payment.MetadataProductID])
}

func TestProcessorRetrieveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"cs_1","object":"checkout.session","payment_status":"paid","customer_details":{"email":"fan@delus.example"}}`)
	}))
	defer srv.Close()

	p := NewProcessor("sk_test_123", testBackend(srv.URL), nil)
	sess, err := p.RetrieveSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "fan@delus.example", sess.CustomerEmail)
	assert.Equal(t, "paid", sess.PaymentStatus)
}

const secret = "whsec_test"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

func TestVerifierVerifyEvent(t *testing.T) {
	v := NewVerifier(secret, 0)
	completed := `{"id":"evt_1","object":"event","type":"checkout.session.completed","created":1700000000,
		"data":{"object":{"id":"cs_1","object":"checkout.session","customer_details":{"email":"fan@delus.example"}}}}`

	t.Run("Completed", func(t *testing.T) {
		header, body := signed(t, completed)
		evt, err := v.VerifyEvent(body, header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", evt.ID)
		assert.Equal(t, payment.EventCheckoutCompleted, evt.Type)
		assert.Equal(t, "cs_1", evt.SessionID)
		assert.Equal(t, "fan@delus.example", evt.CustomerEmail)
	})

	t.Run("OtherType", func(t *testing.T) {
		header, body := signed(t, `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{}}}`)
		evt, err := v.VerifyEvent(body, header)
		require.NoError(t, err)
		assert.Equal(t, "charge.refunded", evt.Type)
		assert.Empty(t, evt.SessionID)
	})

	t.Run("BadSignature", func(t *testing.T) {
		_, body := signed(t, completed)
		_, err := v.VerifyEvent(body, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)

		_, err = v.VerifyEvent(body, "")
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		header, body := signed(t, completed)
		_, err := NewVerifier("whsec_other", 0).VerifyEvent(body, header)
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("Malformed", func(t *testing.T) {
		header, body := signed(t, `{not json`)
		_, err := v.VerifyEvent(body, header)
		assert.ErrorIs(t, err, payment.ErrMalformedPayload)
	})
}
