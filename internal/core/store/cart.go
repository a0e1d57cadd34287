package store

import (
	"context"
	"fmt"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
)

const CartKey = "cart"

var _ port.Cart = (*Cart)(nil)

// A Cart holds at most one line per product id with its quantity.
type Cart struct {
	c *collection[domain.CartLine]
}

func NewCart(s port.KeyValueStorage, opts ...Option) *Cart {
	return &Cart{
		c: newCollection[domain.CartLine]("Cart", CartKey, s, cartCodec{}, opts),
	}
}

// Initialize loads the persisted cart. Other methods call it on first use.
func (s *Cart) Initialize(ctx context.Context) error {
	return s.c.initialize(ctx)
}

// Add puts one more unit of the product into the cart.
func (s *Cart) Add(ctx context.Context, p domain.Product) error {
	const op = "Cart.Add"

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.c.mutate(ctx, func(
		lines []domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		if i, ok := s.c.position(p.ID); ok {
			lines[i].Quantity++
			return lines, true, nil
		}
		return append(lines, domain.NewCartLine(p)), true, nil
	})
}

// UpdateQuantity sets the line quantity.
//
// Quantities below 1 are rejected with [domain.ErrInvalidQuantity],
// use Remove or Decrement to drop a line.
func (s *Cart) UpdateQuantity(ctx context.Context, id string, n int) error {
	const op = "Cart.UpdateQuantity"

	if n < 1 {
		return fmt.Errorf("%s: %w: got %d", op, domain.ErrInvalidQuantity, n)
	}

	err := s.c.mutate(ctx, func(
		lines []domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		i, ok := s.c.position(id)
		if !ok {
			return nil, false, domain.ErrLineNotFound
		}
		if lines[i].Quantity == n {
			return lines, false, nil
		}
		lines[i].Quantity = n
		return lines, true, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Cart) Increment(ctx context.Context, id string) error {
	return s.step(ctx, "Cart.Increment", id, 1)
}

// Decrement removes the line when its quantity would drop to zero.
func (s *Cart) Decrement(ctx context.Context, id string) error {
	return s.step(ctx, "Cart.Decrement", id, -1)
}

func (s *Cart) step(ctx context.Context, op, id string, delta int) error {
	err := s.c.mutate(ctx, func(
		lines []domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		i, ok := s.c.position(id)
		if !ok {
			return nil, false, domain.ErrLineNotFound
		}
		n := lines[i].Quantity + delta
		if n < 1 {
			return removeAt(lines, i), true, nil
		}
		lines[i].Quantity = n
		return lines, true, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remove deletes the line, a missing line is not an error.
func (s *Cart) Remove(ctx context.Context, id string) error {
	return s.c.mutate(ctx, func(
		lines []domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		i, ok := s.c.position(id)
		if !ok {
			return lines, false, nil
		}
		return removeAt(lines, i), true, nil
	})
}

// RemoveOrdered subtracts the ordered quantities from the cart in one
// mutation. Lines or units added after the order snapshot was taken stay.
func (s *Cart) RemoveOrdered(
	ctx context.Context, ordered []domain.CartLine,
) error {
	const op = "Cart.RemoveOrdered"

	err := s.c.mutate(ctx, func(
		lines []domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		ordered := quantities(ordered)
		out := make([]domain.CartLine, 0, len(lines))
		for _, l := range lines {
			l.Quantity -= ordered[l.ID]
			if l.Quantity > 0 {
				out = append(out, l)
			}
		}
		return out, len(ordered) != 0, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func quantities(lines []domain.CartLine) map[string]int {
	m := make(map[string]int, len(lines))
	for _, l := range lines {
		m[l.ID] += l.Quantity
	}
	return m
}

// Clear empties the cart and persists the empty collection.
func (s *Cart) Clear(ctx context.Context) error {
	return s.c.mutate(ctx, func(
		[]domain.CartLine,
	) ([]domain.CartLine, bool, error) {
		return []domain.CartLine{}, true, nil
	})
}

// List returns a copy of the lines in insertion order.
func (s *Cart) List(ctx context.Context) []domain.CartLine {
	return s.c.list(ctx)
}

func (s *Cart) Total(ctx context.Context) (total float64) {
	s.c.read(ctx, func(lines []domain.CartLine) {
		for _, l := range lines {
			total += l.Subtotal()
		}
	})
	return
}

// Count returns the number of units in the cart.
func (s *Cart) Count(ctx context.Context) (n int) {
	s.c.read(ctx, func(lines []domain.CartLine) {
		for _, l := range lines {
			n += l.Quantity
		}
	})
	return
}

// Summary returns the lines with their total and unit count read
// under one lock.
func (s *Cart) Summary(ctx context.Context) (sum domain.CartSummary) {
	s.c.read(ctx, func(lines []domain.CartLine) {
		sum.Lines = make([]domain.CartLine, len(lines))
		copy(sum.Lines, lines)
		for _, l := range lines {
			sum.Total += l.Subtotal()
			sum.Count += l.Quantity
		}
	})
	return
}

// Close flushes pending writes.
func (s *Cart) Close(ctx context.Context) error {
	return s.c.close(ctx)
}
