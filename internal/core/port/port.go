package port

import (
	"context"
	"errors"
	"sync"

	"github.com/niksmo/shopcore/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// ErrKeyNotFound is returned by [KeyValueStorage.Get] for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// A KeyValueStorage is the durable storage behind collection stores.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type CatalogClient interface {
	Products(context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

type OrderClient interface {
	PlaceOrder(context.Context, domain.OrderRequest) (domain.Order, error)
	Orders(ctx context.Context, userID string) ([]domain.Order, error)
}

type PurchasePublisher interface {
	PublishPurchases(context.Context, []domain.Purchase) error
}

// A PopularityReader returns the popularity score of the product,
// ok is false when the product has no score.
type PopularityReader interface {
	Popularity(productID string) (score float64, ok bool)
}

type PopularityProcessor interface {
	runnerContextWg
	closer
}

// A BackgroundRunner is started by the service and stopped through ctx.
type BackgroundRunner interface {
	runnerContextWg
}

type ProductBrowser interface {
	Browse(
		context.Context, domain.FilterCriteria, domain.SortKey,
	) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(context.Context) ([]string, error)
}

type Checkouter interface {
	Checkout(ctx context.Context, userID string) (domain.Order, error)
	Orders(ctx context.Context, userID string) ([]domain.Order, error)
}

type Cart interface {
	Add(context.Context, domain.Product) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Increment(ctx context.Context, id string) error
	Decrement(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	RemoveOrdered(context.Context, []domain.CartLine) error
	Clear(context.Context) error
	List(context.Context) []domain.CartLine
	Total(context.Context) float64
	Count(context.Context) int
	Summary(context.Context) domain.CartSummary
}

type Wishlist interface {
	Add(context.Context, domain.Product) error
	Toggle(context.Context, domain.Product) (bool, error)
	Remove(ctx context.Context, id string) error
	Clear(context.Context) error
	List(context.Context) []domain.WishlistLine
	Contains(ctx context.Context, id string) bool
}
