package api

import (
	"time"

	"github.com/niksmo/shopcore/internal/core/domain"
)

type (
	product struct {
		ID          string   `json:"_id"`
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Price       float64  `json:"price"`
		Category    string   `json:"category,omitempty"`
		Color       string   `json:"color,omitempty"`
		Rating      *float64 `json:"rating,omitempty"`
		Popularity  *float64 `json:"popularity,omitempty"`
		Image       string   `json:"image,omitempty"`
	}

	orderItem struct {
		ID  string `json:"id"`
		Qty int    `json:"qty"`
	}

	orderRequest struct {
		CheckoutID string      `json:"checkoutId"`
		UserID     string      `json:"userId"`
		Items      []orderItem `json:"items"`
		Total      float64     `json:"total"`
	}

	order struct {
		ID        string      `json:"_id"`
		UserID    string      `json:"userId"`
		Items     []orderItem `json:"items"`
		Total     float64     `json:"total"`
		CreatedAt time.Time   `json:"createdAt"`
	}

	errorBody struct {
		Error string `json:"error"`
	}
)

func (p product) toDomain() domain.Product {
	return domain.Product(p)
}

func toOrderRequest(r domain.OrderRequest) orderRequest {
	v := orderRequest{
		CheckoutID: r.CheckoutID,
		UserID:     r.UserID,
		Items:      make([]orderItem, len(r.Items)),
		Total:      r.Total,
	}
	for i, it := range r.Items {
		v.Items[i] = orderItem{ID: it.ProductID, Qty: it.Quantity}
	}
	return v
}

func (o order) toDomain() domain.Order {
	v := domain.Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     make([]domain.OrderItem, len(o.Items)),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
	for i, it := range o.Items {
		v.Items[i] = domain.OrderItem{ProductID: it.ID, Quantity: it.Qty}
	}
	return v
}
