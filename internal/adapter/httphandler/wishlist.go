package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/shopcore/internal/core/port"
)

type WishlistHandler struct {
	wishlist port.Wishlist
}

func RegisterWishlist(mux *http.ServeMux, wishlist port.Wishlist) {
	h := WishlistHandler{wishlist}
	mux.HandleFunc("GET /v1/wishlist", h.GetWishlist)
	mux.HandleFunc("DELETE /v1/wishlist", h.ClearWishlist)
	mux.HandleFunc("POST /v1/wishlist/items", h.AddItem)
	mux.HandleFunc("POST /v1/wishlist/items/toggle", h.ToggleItem)
	mux.HandleFunc("GET /v1/wishlist/items/{id}", h.ContainsItem)
	mux.HandleFunc("DELETE /v1/wishlist/items/{id}", h.RemoveItem)
}

func (h WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.GetWishlist"
	h.writeWishlist(w, r, slog.With("op", op))
}

func (h WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.AddItem"
	log := slog.With("op", op)

	var p Product
	if err := decodeJSON(w, r, &p); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	if err := h.wishlist.Add(r.Context(), p.toDomain()); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeWishlist(w, r, log)
}

func (h WishlistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.ToggleItem"
	log := slog.With("op", op)

	var p Product
	if err := decodeJSON(w, r, &p); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	added, err := h.wishlist.Toggle(r.Context(), p.toDomain())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, Toggled{ID: p.ID, Added: added})
}

func (h WishlistHandler) ContainsItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.ContainsItem"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	writeJSON(w, log, http.StatusOK, Contained{
		ID:       id,
		Contains: h.wishlist.Contains(r.Context(), id),
	})
}

func (h WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.RemoveItem"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	if err := h.wishlist.Remove(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeWishlist(w, r, log)
}

func (h WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.ClearWishlist"
	log := slog.With("op", op)

	if err := h.wishlist.Clear(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	h.writeWishlist(w, r, log)
}

func (h WishlistHandler) writeWishlist(
	w http.ResponseWriter, r *http.Request, log *slog.Logger,
) {
	writeJSON(w, log, http.StatusOK, Wishlist{
		Items: fromWishlistLines(h.wishlist.List(r.Context())),
	})
}
