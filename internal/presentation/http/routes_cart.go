package httppresentation

import (
	"net/http"
	"strconv"

	appcart "github.com/delus-studio/storefront/internal/application/cart"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"
	"github.com/spf13/cast"
)

type addToCartResponse struct {
	Message   string `json:"message"`
	CartTotal int    `json:"cart_total"`
	ImageURL  string `json:"image_url"`
}

func productIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, catalog.ErrNotFound)
		return
	}

	quantity := 1
	if raw := r.FormValue("quantity"); raw != "" {
		q, err := cast.ToIntE(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, appcart.ErrInvalidQuantity)
			return
		}
		quantity = q
	}

	c, err := h.deps.Carts.Load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	res, err := h.deps.AddToCart.Execute(r.Context(), appcart.AddToCartInput{Cart: c, ProductID: id, Quantity: quantity})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.Carts.Save(w, r, c); err != nil {
		logctx.FromOr(r.Context(), h.log).Error("cart_save_failed", observability.F("error", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, addToCartResponse{
		Message:   "Product added to cart",
		CartTotal: res.CartSize,
		ImageURL:  res.ImageURL,
	})
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Carts.Load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, appcart.ViewOf(c))
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, catalog.ErrNotFound)
		return
	}
	c, err := h.deps.Carts.Load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	appcart.Remove(c, id)
	if err := h.deps.Carts.Save(w, r, c); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
