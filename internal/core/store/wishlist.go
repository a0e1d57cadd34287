package store

import (
	"context"
	"fmt"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
)

const WishlistKey = "wishlist"

var _ port.Wishlist = (*Wishlist)(nil)

type Wishlist struct {
	c *collection[domain.WishlistLine]
}

func NewWishlist(s port.KeyValueStorage, opts ...Option) *Wishlist {
	return &Wishlist{
		c: newCollection[domain.WishlistLine](
			"Wishlist", WishlistKey, s, wishlistCodec{}, opts,
		),
	}
}

func (s *Wishlist) Initialize(ctx context.Context) error {
	return s.c.initialize(ctx)
}

// Add is a no-op for a product already in the wishlist.
func (s *Wishlist) Add(ctx context.Context, p domain.Product) error {
	const op = "Wishlist.Add"

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.c.mutate(ctx, func(
		lines []domain.WishlistLine,
	) ([]domain.WishlistLine, bool, error) {
		if _, ok := s.c.position(p.ID); ok {
			return lines, false, nil
		}
		return append(lines, domain.NewWishlistLine(p)), true, nil
	})
}

// Toggle removes a present product or adds a missing one,
// it returns whether the product is in the wishlist afterwards.
func (s *Wishlist) Toggle(ctx context.Context, p domain.Product) (bool, error) {
	const op = "Wishlist.Toggle"

	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var in bool
	err := s.c.mutate(ctx, func(
		lines []domain.WishlistLine,
	) ([]domain.WishlistLine, bool, error) {
		if i, ok := s.c.position(p.ID); ok {
			return removeAt(lines, i), true, nil
		}
		in = true
		return append(lines, domain.NewWishlistLine(p)), true, nil
	})
	return in, err
}

func (s *Wishlist) Remove(ctx context.Context, id string) error {
	return s.c.mutate(ctx, func(
		lines []domain.WishlistLine,
	) ([]domain.WishlistLine, bool, error) {
		i, ok := s.c.position(id)
		if !ok {
			return lines, false, nil
		}
		return removeAt(lines, i), true, nil
	})
}

func (s *Wishlist) Clear(ctx context.Context) error {
	return s.c.mutate(ctx, func(
		[]domain.WishlistLine,
	) ([]domain.WishlistLine, bool, error) {
		return []domain.WishlistLine{}, true, nil
	})
}

func (s *Wishlist) List(ctx context.Context) []domain.WishlistLine {
	return s.c.list(ctx)
}

func (s *Wishlist) Contains(ctx context.Context, id string) bool {
	return s.c.contains(ctx, id)
}

func (s *Wishlist) Close(ctx context.Context) error {
	return s.c.close(ctx)
}
