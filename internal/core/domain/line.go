package domain

type (
	CartLine struct {
		ID       string
		Name     string
		Price    float64
		Image    string
		Category string
		Quantity int
	}

	// A CartSummary is a consistent view of the cart at one moment.
	CartSummary struct {
		Lines []CartLine
		Total float64
		Count int
	}

	WishlistLine struct {
		ID    string
		Name  string
		Price float64
		Image string
	}
)

func NewCartLine(p Product) CartLine {
	return CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Quantity: 1,
	}
}

func NewWishlistLine(p Product) WishlistLine {
	return WishlistLine{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}
}

func (l CartLine) LineID() string { return l.ID }

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

func (l WishlistLine) LineID() string { return l.ID }
