package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/shopcore/internal/adapter/storage"
	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/pipeline"
	"github.com/niksmo/shopcore/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

type catalogMock struct {
	mock.Mock
}

func (m *catalogMock) Products(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *catalogMock) Product(
	ctx context.Context, id string,
) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

type ordersMock struct {
	mock.Mock
}

func (m *ordersMock) PlaceOrder(
	ctx context.Context, r domain.OrderRequest,
) (domain.Order, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *ordersMock) Orders(
	ctx context.Context, userID string,
) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]domain.Order)
	return os, args.Error(1)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishPurchases(
	ctx context.Context, ps []domain.Purchase,
) error {
	return m.Called(ctx, ps).Error(0)
}

type popularityMock struct {
	mock.Mock
}

func (m *popularityMock) Popularity(productID string) (float64, bool) {
	args := m.Called(productID)
	return args.Get(0).(float64), args.Bool(1)
}

type runnerMock struct {
	mu     sync.Mutex
	ran    bool
	closed bool
}

func (r *runnerMock) Run(
	_ context.Context, _ context.CancelFunc, wg *sync.WaitGroup,
) {
	defer wg.Done()
	r.mu.Lock()
	r.ran = true
	r.mu.Unlock()
}

func (r *runnerMock) Close() {
	r.closed = true
}

func ptr(v float64) *float64 { return &v }

func newCart(t *testing.T) *store.Cart {
	t.Helper()
	c := store.NewCart(storage.NewMemoryStorage())
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestService_Browse(t *testing.T) {
	catalog := []domain.Product{
		{ID: "p1", Name: "Phone", Price: 500, Category: "smartphones"},
		{ID: "p2", Name: "Laptop", Price: 900, Category: "laptops", Popularity: ptr(1)},
		{ID: "p3", Name: "Cheap Phone", Price: 100, Category: "smartphones"},
	}

	t.Run("EnrichesMissingPopularity", func(t *testing.T) {
		cm := new(catalogMock)
		cm.On("Products", mock.Anything).Return(catalog, nil)
		pm := new(popularityMock)
		pm.On("Popularity", "p1").Return(float64(5), true)
		pm.On("Popularity", "p3").Return(float64(0), false)

		s := New(cm, new(ordersMock), newCart(t), WithPopularityReader(pm))
		ps, err := s.Browse(t.Context(), domain.FilterCriteria{}, domain.SortPopularity)
		require.NoError(t, err)

		ids := make([]string, len(ps))
		for i, p := range ps {
			ids[i] = p.ID
		}
		assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
		assert.InDelta(t, 5.0, ps[0].PopularityScore(), 1e-9)
		assert.Nil(t, catalog[0].Popularity)
		pm.AssertNotCalled(t, "Popularity", "p2")
	})

	t.Run("AppliesPipeline", func(t *testing.T) {
		cm := new(catalogMock)
		cm.On("Products", mock.Anything).Return(catalog, nil)

		s := New(cm, new(ordersMock), newCart(t))
		ps, err := s.Browse(
			t.Context(),
			domain.FilterCriteria{Category: "smartphones"},
			domain.SortPriceAsc,
		)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "p3", ps[0].ID)
		assert.Equal(t, "p1", ps[1].ID)
	})

	t.Run("InvalidCriteria", func(t *testing.T) {
		cm := new(catalogMock)
		s := New(cm, new(ordersMock), newCart(t))
		_, err := s.Browse(t.Context(), domain.FilterCriteria{
			PriceRange: &domain.PriceRange{Min: 10, Max: 1},
		}, domain.SortRelevance)
		assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
		cm.AssertNotCalled(t, "Products", mock.Anything)
	})

	t.Run("CatalogError", func(t *testing.T) {
		cm := new(catalogMock)
		cm.On("Products", mock.Anything).Return(nil, errUpstream)
		s := New(cm, new(ordersMock), newCart(t))
		_, err := s.Browse(t.Context(), domain.FilterCriteria{}, domain.SortRelevance)
		assert.ErrorIs(t, err, errUpstream)
	})
}

func TestService_Categories(t *testing.T) {
	cm := new(catalogMock)
	cm.On("Products", mock.Anything).Return([]domain.Product{
		{ID: "p1", Category: "Laptops"},
		{ID: "p2", Category: "cameras"},
	}, nil)

	s := New(cm, new(ordersMock), newCart(t))
	cats, err := s.Categories(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.AllCategories, cats[0])
	assert.Equal(t, "cameras", cats[len(cats)-1])
	assert.Len(t, cats, len(pipeline.DefaultCategories)+1)
}

func TestService_Product(t *testing.T) {
	cm := new(catalogMock)
	cm.On("Product", mock.Anything, "p1").Return(domain.Product{ID: "p1"}, nil)
	cm.On("Product", mock.Anything, "p2").Return(domain.Product{}, errUpstream)

	s := New(cm, new(ordersMock), newCart(t))

	p, err := s.Product(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = s.Product(t.Context(), "p2")
	assert.ErrorIs(t, err, errUpstream)
}

func fillCart(t *testing.T, c *store.Cart) {
	t.Helper()
	ctx := t.Context()
	require.NoError(t, c.Add(ctx, domain.Product{ID: "p1", Name: "A", Price: 10}))
	require.NoError(t, c.Add(ctx, domain.Product{ID: "p1", Name: "A", Price: 10}))
	require.NoError(t, c.Add(ctx, domain.Product{ID: "p2", Name: "B", Price: 5}))
}

func TestService_Checkout(t *testing.T) {
	wantReq := domain.OrderRequest{
		CheckoutID: "chk-1",
		UserID:     "u1",
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		Total: 25,
	}
	wantOrder := domain.Order{ID: "o1", UserID: "u1", Items: wantReq.Items, Total: 25}
	wantPurchases := []domain.Purchase{
		{CheckoutID: "chk-1", ProductID: "p1", Quantity: 2, Price: 10},
		{CheckoutID: "chk-1", ProductID: "p2", Quantity: 1, Price: 5},
	}

	newService := func(
		t *testing.T, om *ordersMock, pub *publisherMock,
	) (*Service, *store.Cart) {
		cart := newCart(t)
		fillCart(t, cart)
		s := New(new(catalogMock), om, cart, WithPurchasePublisher(pub))
		s.newID = func() string { return "chk-1" }
		return s, cart
	}

	t.Run("Success", func(t *testing.T) {
		om := new(ordersMock)
		om.On("PlaceOrder", mock.Anything, wantReq).Return(wantOrder, nil)
		pub := new(publisherMock)
		pub.On("PublishPurchases", mock.Anything, wantPurchases).Return(nil)

		s, cart := newService(t, om, pub)
		o, err := s.Checkout(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, wantOrder, o)
		assert.Empty(t, cart.List(t.Context()))
		om.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("KeepsLinesAddedDuringOrder", func(t *testing.T) {
		var cart *store.Cart
		om := new(ordersMock)
		om.On("PlaceOrder", mock.Anything, wantReq).
			Run(func(mock.Arguments) {
				ctx := context.Background()
				require.NoError(t, cart.Add(ctx, domain.Product{ID: "p3", Name: "C", Price: 1000}))
				require.NoError(t, cart.Add(ctx, domain.Product{ID: "p1", Name: "A", Price: 10}))
			}).
			Return(wantOrder, nil)
		pub := new(publisherMock)
		pub.On("PublishPurchases", mock.Anything, wantPurchases).Return(nil)

		var s *Service
		s, cart = newService(t, om, pub)
		_, err := s.Checkout(t.Context(), "u1")
		require.NoError(t, err)

		om.AssertExpectations(t)
		assert.Equal(t, []domain.CartLine{
			{ID: "p1", Name: "A", Price: 10, Quantity: 1},
			{ID: "p3", Name: "C", Price: 1000, Quantity: 1},
		}, cart.List(t.Context()))
	})

	t.Run("OrderFailureKeepsCart", func(t *testing.T) {
		om := new(ordersMock)
		om.On("PlaceOrder", mock.Anything, wantReq).
			Return(domain.Order{}, errUpstream)
		pub := new(publisherMock)

		s, cart := newService(t, om, pub)
		_, err := s.Checkout(t.Context(), "u1")
		assert.ErrorIs(t, err, errUpstream)
		assert.Equal(t, 3, cart.Count(t.Context()))
		pub.AssertNotCalled(t, "PublishPurchases", mock.Anything, mock.Anything)
	})

	t.Run("PublishFailureIsNotFatal", func(t *testing.T) {
		om := new(ordersMock)
		om.On("PlaceOrder", mock.Anything, wantReq).Return(wantOrder, nil)
		pub := new(publisherMock)
		pub.On("PublishPurchases", mock.Anything, wantPurchases).
			Return(errors.New("broker down"))

		s, cart := newService(t, om, pub)
		o, err := s.Checkout(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
		assert.Zero(t, cart.Count(t.Context()))
	})

	t.Run("EmptyCart", func(t *testing.T) {
		om := new(ordersMock)
		s := New(new(catalogMock), om, newCart(t))
		_, err := s.Checkout(t.Context(), "u1")
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
		om.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("GeneratesCheckoutID", func(t *testing.T) {
		om := new(ordersMock)
		om.On("PlaceOrder", mock.Anything, mock.MatchedBy(
			func(r domain.OrderRequest) bool {
				_, err := uuid.Parse(r.CheckoutID)
				return err == nil
			},
		)).Return(wantOrder, nil)

		cart := newCart(t)
		fillCart(t, cart)
		s := New(new(catalogMock), om, cart)
		_, err := s.Checkout(t.Context(), "u1")
		require.NoError(t, err)
		om.AssertExpectations(t)
	})
}

func TestService_Orders(t *testing.T) {
	om := new(ordersMock)
	om.On("Orders", mock.Anything, "u1").
		Return([]domain.Order{{ID: "o1"}}, nil)
	om.On("Orders", mock.Anything, "u2").Return(nil, errUpstream)

	s := New(new(catalogMock), om, newCart(t))

	os, err := s.Orders(t.Context(), "u1")
	require.NoError(t, err)
	assert.Len(t, os, 1)

	_, err = s.Orders(t.Context(), "u2")
	assert.ErrorIs(t, err, errUpstream)
}

func TestService_RunClose(t *testing.T) {
	r1, r2 := new(runnerMock), new(runnerMock)
	s := New(new(catalogMock), new(ordersMock), newCart(t), WithBackground(r1, r2))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	s.Run(ctx, cancel)
	assert.True(t, r1.ran)
	assert.True(t, r2.ran)

	s.Close()
	assert.True(t, r1.closed)
	assert.True(t, r2.closed)
}
