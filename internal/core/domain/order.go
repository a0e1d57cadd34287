package domain

import "time"

type (
	OrderItem struct {
		ProductID string
		Quantity  int
	}

	OrderRequest struct {
		CheckoutID string
		UserID     string
		Items      []OrderItem
		Total      float64
	}

	Order struct {
		ID        string
		UserID    string
		Items     []OrderItem
		Total     float64
		CreatedAt time.Time
	}
)

// A Purchase is one ordered product, published after a successful checkout.
type Purchase struct {
	CheckoutID string
	ProductID  string
	Quantity   int
	Price      float64
}

func NewOrderRequest(checkoutID, userID string, lines []CartLine) OrderRequest {
	req := OrderRequest{
		CheckoutID: checkoutID,
		UserID:     userID,
		Items:      make([]OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		req.Items = append(req.Items, OrderItem{ProductID: l.ID, Quantity: l.Quantity})
		req.Total += l.Subtotal()
	}
	return req
}

func (r OrderRequest) Purchases(lines []CartLine) []Purchase {
	ps := make([]Purchase, 0, len(lines))
	for _, l := range lines {
		ps = append(ps, Purchase{
			CheckoutID: r.CheckoutID,
			ProductID:  l.ID,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	return ps
}
