package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/shopcore/internal/core/port"
)

// A CheckoutHandler places orders on behalf of the configured user.
type CheckoutHandler struct {
	checkouter port.Checkouter
	userID     string
}

func RegisterCheckout(
	mux *http.ServeMux, checkouter port.Checkouter, userID string,
) {
	h := CheckoutHandler{checkouter, userID}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
	mux.HandleFunc("GET /v1/orders", h.GetOrders)
}

func (h CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op, "userID", h.userID)

	o, err := h.checkouter.Checkout(r.Context(), h.userID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("checkout completed", "orderID", o.ID)
	writeJSON(w, log, http.StatusCreated, fromOrder(o))
}

func (h CheckoutHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.GetOrders"
	log := slog.With("op", op, "userID", h.userID)

	os, err := h.checkouter.Orders(r.Context(), h.userID)
	if err != nil {
		writeError(w, log, err)
		return
	}

	items := make([]Order, len(os))
	for i, o := range os {
		items[i] = fromOrder(o)
	}
	writeJSON(w, log, http.StatusOK, Orders{Items: items})
}
