package cart_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"MiniCart/internal/cart"
)

var errTransport = errors.New("connection refused")

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]cart.Product
	err      error
	calls    atomic.Int32
}

func newFakeCatalog(products ...cart.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[int64]cart.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) Product(_ context.Context, id int64) (cart.Product, error) {
	c.calls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return cart.Product{}, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return cart.Product{}, errors.New("404")
	}
	return p, nil
}

type fakeStock struct {
	mu     sync.Mutex
	amount map[int64]int
	err    error
	calls  atomic.Int32

	// gate, when set, blocks every lookup until it is closed.
	gate chan struct{}
}

func newFakeStock(amounts map[int64]int) *fakeStock {
	return &fakeStock{amount: amounts}
}

func (s *fakeStock) Stock(ctx context.Context, id int64) (cart.Stock, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return cart.Stock{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return cart.Stock{}, s.err
	}
	a, ok := s.amount[id]
	if !ok {
		return cart.Stock{}, errors.New("404")
	}
	return cart.Stock{Amount: a}, nil
}

func (s *fakeStock) set(id int64, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amount[id] = amount
}

type failingSlot struct {
	data []byte
	err  error
}

func (s *failingSlot) Load(context.Context) ([]byte, error) { return s.data, nil }

func (s *failingSlot) Save(context.Context, []byte) error { return s.err }

func shoe() cart.Product {
	return cart.Product{ID: 1, Title: "Shoe", Price: decimal.NewFromInt(100), Image: "u"}
}
