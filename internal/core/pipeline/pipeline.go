// Package pipeline derives the product list a shopper sees from a catalog
// snapshot, filter criteria and a sort key.
//
// Apply is pure: it never mutates the catalog and returns the same output
// for the same input, so callers recompute it whenever an input changes.
package pipeline

import (
	"slices"
	"strings"

	"github.com/niksmo/shopcore/internal/core/domain"
)

// DefaultCategories are the category chips offered by the mobile client.
var DefaultCategories = []string{
	domain.AllCategories,
	"smartphones",
	"laptops",
	"headphones",
	"smartwatches",
	"accessories",
}

type predicate func(domain.Product) bool

// Apply returns the catalog products matching every active criterion,
// ordered by k. Unknown sort keys keep the catalog order.
func Apply(
	catalog []domain.Product, c domain.FilterCriteria, k domain.SortKey,
) []domain.Product {
	preds := predicates(c)

	out := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if matchAll(p, preds) {
			out = append(out, p)
		}
	}

	sortProducts(out, k)
	return out
}

func matchAll(p domain.Product, preds []predicate) bool {
	for _, match := range preds {
		if !match(p) {
			return false
		}
	}
	return true
}

// predicates returns the active predicates, cheapest first.
func predicates(c domain.FilterCriteria) []predicate {
	var preds []predicate

	if r := c.PriceRange; r != nil {
		preds = append(preds, byPrice(*r))
	}
	if r := c.MinRating; r != nil {
		preds = append(preds, byRating(*r))
	}
	if color := normalize(c.Color); color != "" {
		preds = append(preds, byColor(color))
	}
	if cat := normalize(c.Category); cat != "" && cat != domain.AllCategories {
		preds = append(preds, byCategory(cat))
	}
	// Blank queries are inactive, others match as typed.
	if strings.TrimSpace(c.Search) != "" {
		preds = append(preds, bySearch(strings.ToLower(c.Search)))
	}
	return preds
}

func byPrice(r domain.PriceRange) predicate {
	return func(p domain.Product) bool {
		return r.Contains(p.Price)
	}
}

// byRating keeps products without a rating.
func byRating(min float64) predicate {
	return func(p domain.Product) bool {
		return p.Rating == nil || *p.Rating >= min
	}
}

// byColor keeps products without a color.
func byColor(color string) predicate {
	return func(p domain.Product) bool {
		c := normalize(p.Color)
		return c == "" || c == color
	}
}

// byCategory matches equal categories or categories containing cat,
// so "smartphones-2024" is in "smartphones".
func byCategory(cat string) predicate {
	return func(p domain.Product) bool {
		pc := normalize(p.Category)
		if pc == "" {
			return false
		}
		return pc == cat || strings.Contains(pc, cat)
	}
}

func bySearch(q string) predicate {
	return func(p domain.Product) bool {
		return containsFold(p.Name, q) ||
			containsFold(p.Description, q) ||
			containsFold(p.Category, q)
	}
}

func sortProducts(ps []domain.Product, k domain.SortKey) {
	switch k {
	case domain.SortPopularity:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return compareFloat(b.PopularityScore(), a.PopularityScore())
		})
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return compareFloat(a.Price, b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return compareFloat(b.Price, a.Price)
		})
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Categories returns the distinct non-empty categories of the catalog
// in first seen order, compared case-insensitively.
func Categories(catalog []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range catalog {
		c := strings.TrimSpace(p.Category)
		key := strings.ToLower(c)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsFold reports whether s contains the lower cased substr.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
