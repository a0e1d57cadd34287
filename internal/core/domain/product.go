package domain

type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Color       string
	Rating      *float64
	Popularity  *float64
	Image       string
}

// PopularityScore returns the popularity or 0 when the catalog has none.
func (p Product) PopularityScore() float64 {
	if p.Popularity == nil {
		return 0
	}
	return *p.Popularity
}

func (p Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 {
		return ErrInvalidProduct
	}
	return nil
}
