package httphandler

import (
	"time"

	"github.com/niksmo/shopcore/internal/core/domain"
)

type (
	Product struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Price       float64  `json:"price"`
		Category    string   `json:"category,omitempty"`
		Color       string   `json:"color,omitempty"`
		Rating      *float64 `json:"rating,omitempty"`
		Popularity  *float64 `json:"popularity,omitempty"`
		Image       string   `json:"image,omitempty"`
	}

	CartLine struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Image    string  `json:"image,omitempty"`
		Category string  `json:"category,omitempty"`
		Quantity int     `json:"quantity"`
		Subtotal float64 `json:"subtotal"`
	}

	Cart struct {
		Items []CartLine `json:"items"`
		Total float64    `json:"total"`
		Count int        `json:"count"`
	}

	WishlistLine struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Image string  `json:"image,omitempty"`
	}

	Wishlist struct {
		Items []WishlistLine `json:"items"`
	}

	Quantity struct {
		Quantity int `json:"quantity"`
	}

	Toggled struct {
		ID    string `json:"id"`
		Added bool   `json:"added"`
	}

	Contained struct {
		ID       string `json:"id"`
		Contains bool   `json:"contains"`
	}

	Products struct {
		Items []Product `json:"items"`
		Count int       `json:"count"`
	}

	Categories struct {
		Items []string `json:"items"`
	}

	OrderItem struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}

	Order struct {
		ID        string      `json:"id"`
		UserID    string      `json:"user_id"`
		Items     []OrderItem `json:"items"`
		Total     float64     `json:"total"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Orders struct {
		Items []Order `json:"items"`
	}

	Error struct {
		Error string `json:"error"`
	}
)

func (p Product) toDomain() domain.Product {
	return domain.Product(p)
}

func fromProduct(p domain.Product) Product {
	return Product(p)
}

func fromCartLines(ls []domain.CartLine) []CartLine {
	out := make([]CartLine, len(ls))
	for i, l := range ls {
		out[i] = CartLine{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Image:    l.Image,
			Category: l.Category,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		}
	}
	return out
}

func fromWishlistLines(ls []domain.WishlistLine) []WishlistLine {
	out := make([]WishlistLine, len(ls))
	for i, l := range ls {
		out[i] = WishlistLine(l)
	}
	return out
}

func fromOrder(o domain.Order) Order {
	v := Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     make([]OrderItem, len(o.Items)),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
	for i, it := range o.Items {
		v.Items[i] = OrderItem(it)
	}
	return v
}
