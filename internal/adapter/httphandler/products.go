package httphandler

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
)

type ProductsHandler struct {
	browser port.ProductBrowser
}

func RegisterProducts(mux *http.ServeMux, browser port.ProductBrowser) {
	h := ProductsHandler{browser}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
}

// GetProducts serves the filtered and sorted catalog.
//
// Query: search, min_price, max_price, color, min_rating, category, sort.
func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	c, k, err := parseBrowseQuery(r.URL.Query())
	if err != nil {
		badRequest(w, log, err.Error(), err)
		return
	}

	ps, err := h.browser.Browse(r.Context(), c, k)
	if err != nil {
		writeError(w, log, err)
		return
	}

	items := make([]Product, len(ps))
	for i, p := range ps {
		items[i] = fromProduct(p)
	}
	writeJSON(w, log, http.StatusOK, Products{Items: items, Count: len(items)})
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	id := r.PathValue("id")
	log := slog.With("op", op, "productID", id)

	p, err := h.browser.Product(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromProduct(p))
}

func (h ProductsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetCategories"
	log := slog.With("op", op)

	cats, err := h.browser.Categories(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, Categories{Items: cats})
}

// parseBrowseQuery leaves absent parameters inactive.
// A single price bound leaves the other side open.
func parseBrowseQuery(
	q url.Values,
) (c domain.FilterCriteria, k domain.SortKey, err error) {
	c.Search = q.Get("search")
	c.Color = q.Get("color")
	c.Category = q.Get("category")

	minPrice, hasMin, err := parseFloat(q, "min_price")
	if err != nil {
		return c, k, err
	}
	maxPrice, hasMax, err := parseFloat(q, "max_price")
	if err != nil {
		return c, k, err
	}
	if hasMin || hasMax {
		if !hasMax {
			maxPrice = math.MaxFloat64
		}
		c.PriceRange = &domain.PriceRange{Min: minPrice, Max: maxPrice}
	}

	rating, hasRating, err := parseFloat(q, "min_rating")
	if err != nil {
		return c, k, err
	}
	if hasRating {
		c.MinRating = &rating
	}

	k, err = domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		return c, k, err
	}
	return c, k, nil
}

func parseFloat(q url.Values, name string) (float64, bool, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf(
			"%w: %s must be a number", domain.ErrInvalidCriteria, name,
		)
	}
	return v, true, nil
}
