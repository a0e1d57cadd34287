package domain

import (
	"fmt"
	"strings"
)

// AllCategories disables the category filter.
const AllCategories = "all"

const MaxRating = 5

type (
	PriceRange struct {
		Min float64
		Max float64
	}

	// FilterCriteria holds the optional filter dimensions.
	// A zero value field does not filter.
	FilterCriteria struct {
		Search     string
		PriceRange *PriceRange
		Color      string
		MinRating  *float64
		Category   string
	}
)

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

func (c FilterCriteria) Validate() error {
	if r := c.PriceRange; r != nil {
		if r.Min < 0 || r.Max < 0 {
			return fmt.Errorf("%w: negative price bound", ErrInvalidCriteria)
		}
		if r.Min > r.Max {
			return fmt.Errorf(
				"%w: min price %v is greater than max price %v",
				ErrInvalidCriteria, r.Min, r.Max,
			)
		}
	}
	if r := c.MinRating; r != nil && (*r < 0 || *r > MaxRating) {
		return fmt.Errorf("%w: rating %v out of [0, %d]",
			ErrInvalidCriteria, *r, MaxRating)
	}
	return nil
}

type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPopularity SortKey = "popularity"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
)

// ParseSortKey accepts the sort identifiers used by the mobile client
// ("price-low", "price-high") along with the canonical ones.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortRelevance):
		return SortRelevance, nil
	case string(SortPopularity):
		return SortPopularity, nil
	case string(SortPriceAsc), "price-low":
		return SortPriceAsc, nil
	case string(SortPriceDesc), "price-high":
		return SortPriceDesc, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidCriteria, s)
}
