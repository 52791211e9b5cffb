package httppresentation

import (
	"errors"
	"io"
	"net/http"

	appcheckout "github.com/delus-studio/storefront/internal/application/checkout"
	appfulfillment "github.com/delus-studio/storefront/internal/application/fulfillment"
	"github.com/delus-studio/storefront/internal/domain/payment"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"
	eventpresentation "github.com/delus-studio/storefront/internal/presentation/event"
)

type createSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Carts.Load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	res, err := h.deps.CreateSession.Execute(r.Context(), appcheckout.CreateSessionInput{
		Cart:    c,
		BaseURL: h.baseURL(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.Carts.Save(w, r, c); err != nil {
		// the session exists; the client can still be redirected
		logctx.FromOr(r.Context(), h.log).Error("cart_clear_failed",
			observability.F("checkout_session_id", res.SessionID),
			observability.F("error", err),
		)
	}
	writeJSON(w, http.StatusOK, createSessionResponse{ID: res.SessionID, URL: res.URL})
}

type successResponse struct {
	SessionID     string `json:"session_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Error         string `json:"error,omitempty"`
}

// handleSuccess always answers 200: the payment already went through, a failed lookup
// only loses the confirmation details.
func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeJSON(w, http.StatusOK, successResponse{})
		return
	}
	sess, err := h.deps.Success.Lookup(r.Context(), id)
	if err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("checkout_session_lookup_failed",
			observability.F("checkout_session_id", id),
			observability.F("error_kind", string(payment.KindOf(err))),
			observability.F("error", err),
		)
		writeJSON(w, http.StatusOK, successResponse{SessionID: id, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{
		SessionID:     sess.ID,
		CustomerEmail: sess.CustomerEmail,
		PaymentStatus: sess.PaymentStatus,
	})
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, payment.ErrMalformedPayload)
		return
	}

	ctx := eventpresentation.WithEventContext(r.Context(), h.log, map[string]string{
		"delivery_id": requestIDFromContext(r.Context()),
		"source":      "stripe",
	})
	res, err := h.deps.HandleWebhook.Execute(ctx, appfulfillment.WebhookInput{
		Payload:   payload,
		Signature: r.Header.Get(headerStripeSig),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body := map[string]any{"status": "success"}
	if res.Replay {
		body["replay"] = true
	}
	writeJSON(w, http.StatusOK, body)
}
