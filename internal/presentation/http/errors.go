package httppresentation

import (
	"errors"
	"net/http"

	appcheckout "github.com/delus-studio/storefront/internal/application/checkout"
	"github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/payment"
)

type insufficientStockResponse struct {
	Error     string `json:"error"`
	Remaining int    `json:"remaining"`
}

type processorErrorResponse struct {
	Error string       `json:"error"`
	Kind  payment.Kind `json:"kind"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *cart.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusBadRequest, insufficientStockResponse{
			Error:     err.Error(),
			Remaining: stockErr.Remaining,
		})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, payment.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, appcheckout.ErrEmptyCart),
		errors.Is(err, appcheckout.ErrMissingSessionID),
		errors.Is(err, catalog.ErrMissingFile),
		errors.Is(err, catalog.ErrUnsupportedFile),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, payment.ErrNetwork):
		writeProcessorError(w, http.StatusBadGateway, err)
	case errors.Is(err, payment.ErrInvalidRequest):
		writeProcessorError(w, http.StatusBadRequest, err)
	case errors.Is(err, payment.ErrRejected):
		writeProcessorError(w, http.StatusForbidden, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeProcessorError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, processorErrorResponse{Error: err.Error(), Kind: payment.KindOf(err)})
}
