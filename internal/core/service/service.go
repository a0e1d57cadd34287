package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/pipeline"
	"github.com/niksmo/shopcore/internal/core/port"
)

var _ port.ProductBrowser = (*Service)(nil)
var _ port.Checkouter = (*Service)(nil)

type Option func(*Service)

// WithPurchasePublisher enables purchase events after checkout.
func WithPurchasePublisher(p port.PurchasePublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithPopularityReader fills missing catalog popularity on Browse.
func WithPopularityReader(r port.PopularityReader) Option {
	return func(s *Service) {
		s.popularity = r
	}
}

// WithBackground registers components started by [Service.Run].
func WithBackground(rs ...port.BackgroundRunner) Option {
	return func(s *Service) {
		s.background = append(s.background, rs...)
	}
}

type Service struct {
	catalog    port.CatalogClient
	orders     port.OrderClient
	cart       port.Cart
	publisher  port.PurchasePublisher
	popularity port.PopularityReader
	background []port.BackgroundRunner
	newID      func() string
}

func New(
	catalog port.CatalogClient,
	orders port.OrderClient,
	cart port.Cart,
	opts ...Option,
) *Service {
	s := &Service{
		catalog: catalog,
		orders:  orders,
		cart:    cart,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run runs the background components in separate goroutines.
//
// Blocks current goroutine while components is preparing to ready state.
func (s *Service) Run(ctx context.Context, stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(len(s.background))
	for _, r := range s.background {
		go r.Run(ctx, stopFn, &wg)
	}
	wg.Wait()
}

func (s *Service) Close() {
	for _, r := range s.background {
		if c, ok := r.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

func (s *Service) Browse(
	ctx context.Context, c domain.FilterCriteria, k domain.SortKey,
) ([]domain.Product, error) {
	const op = "Service.Browse"

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	catalog, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pipeline.Apply(s.enrich(catalog), c, k), nil
}

func (s *Service) enrich(catalog []domain.Product) []domain.Product {
	if s.popularity == nil {
		return catalog
	}
	out := make([]domain.Product, len(catalog))
	for i, p := range catalog {
		if p.Popularity == nil {
			if score, ok := s.popularity.Popularity(p.ID); ok {
				p.Popularity = &score
			}
		}
		out[i] = p
	}
	return out
}

// Categories returns the category chips for the current catalog.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	const op = "Service.Categories"

	catalog, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := slices.Clone(pipeline.DefaultCategories)
	for _, c := range pipeline.Categories(catalog) {
		known := slices.ContainsFunc(out, func(d string) bool {
			return strings.EqualFold(d, c)
		})
		if !known {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Product(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "Service.Product"

	p, err := s.catalog.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Checkout places an order for the cart content.
//
// The order is built from one cart snapshot. Once it is accepted only
// the ordered quantities leave the cart.
func (s *Service) Checkout(
	ctx context.Context, userID string,
) (domain.Order, error) {
	const op = "Service.Checkout"
	log := slog.With("op", op, "userID", userID)

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	lines := s.cart.Summary(ctx).Lines
	if len(lines) == 0 {
		return domain.Order{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	req := domain.NewOrderRequest(s.newID(), userID, lines)

	order, err := s.orders.PlaceOrder(ctx, req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("order placed", "orderID", order.ID, "checkoutID", req.CheckoutID)

	if err := s.cart.RemoveOrdered(ctx, lines); err != nil {
		log.Error("failed to remove ordered lines", "err", err)
	}

	s.publishPurchases(ctx, req.Purchases(lines))
	return order, nil
}

func (s *Service) publishPurchases(ctx context.Context, ps []domain.Purchase) {
	const op = "Service.publishPurchases"

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPurchases(ctx, ps); err != nil {
		slog.Warn("failed to publish purchases", "op", op, "err", err)
	}
}

func (s *Service) Orders(
	ctx context.Context, userID string,
) ([]domain.Order, error) {
	const op = "Service.Orders"

	os, err := s.orders.Orders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return os, nil
}
