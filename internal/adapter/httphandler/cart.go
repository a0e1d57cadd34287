package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/shopcore/internal/core/port"
)

type CartHandler struct {
	cart port.Cart
}

func RegisterCart(mux *http.ServeMux, cart port.Cart) {
	h := CartHandler{cart}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.ClearCart)
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PUT /v1/cart/items/{id}", h.UpdateQuantity)
	mux.HandleFunc("POST /v1/cart/items/{id}/increment", h.Increment)
	mux.HandleFunc("POST /v1/cart/items/{id}/decrement", h.Decrement)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.RemoveItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	h.writeCart(w, r, slog.With("op", op), http.StatusOK)
}

func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	log := slog.With("op", op)

	var p Product
	if err := decodeJSON(w, r, &p); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	if err := h.cart.Add(r.Context(), p.toDomain()); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("item added", "productID", p.ID)
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.UpdateQuantity"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	var q Quantity
	if err := decodeJSON(w, r, &q); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), id, q.Quantity); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Increment"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	if err := h.cart.Increment(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Decrement"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	if err := h.cart.Decrement(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.RemoveItem"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	if err := h.cart.Remove(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.ClearCart"
	log := slog.With("op", op)

	if err := h.cart.Clear(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeCart(w, r, log, http.StatusOK)
}

func (h CartHandler) writeCart(
	w http.ResponseWriter, r *http.Request, log *slog.Logger, code int,
) {
	sum := h.cart.Summary(r.Context())
	writeJSON(w, log, code, Cart{
		Items: fromCartLines(sum.Lines),
		Total: sum.Total,
		Count: sum.Count,
	})
}
