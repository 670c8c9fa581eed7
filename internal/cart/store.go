package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errMissingDeps = errors.New("cart: catalog, stock and slot are required")

type Deps struct {
	Catalog Catalog
	Stock   StockService
	Slot    Slot

	// Optional.
	Notifier Notifier
	Log      *zap.Logger
	Metrics  *Metrics
}

type UpdateAmount struct {
	ProductID int64
	Amount    int
}

// Store owns the cart. Operations on the same product are serialized; the
// commit step always applies to the latest cart, saves it and only then
// publishes it.
type Store struct {
	catalog  Catalog
	stock    StockService
	slot     Slot
	notifier Notifier
	log      *zap.Logger
	metrics  *Metrics

	locks *keyLocks

	mu      sync.Mutex
	cart    Cart
	subs    []subscriber
	nextSub uint64
	nextSeq uint64

	// Publications run in commit sequence order. mu is never held while
	// waiting on pubMu.
	pubMu     sync.Mutex
	pubTurn   *sync.Cond
	published uint64
}

type subscriber struct {
	id uint64
	fn func(Cart)
}

// New builds a store hydrated from the slot. The stored snapshot is trusted
// as-is.
func New(ctx context.Context, deps Deps) (*Store, error) {
	if deps.Catalog == nil || deps.Stock == nil || deps.Slot == nil {
		return nil, errMissingDeps
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	data, err := deps.Slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	c := Cart{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		if c == nil {
			c = Cart{}
		}
	}

	s := &Store{
		catalog:  deps.Catalog,
		stock:    deps.Stock,
		slot:     deps.Slot,
		notifier: deps.Notifier,
		log:      deps.Log,
		metrics:  deps.Metrics,
		locks:    newKeyLocks(),
		cart:     c,
	}
	s.pubTurn = sync.NewCond(&s.pubMu)
	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() Cart {
	return s.current().Clone()
}

func (s *Store) Amounts() map[int64]int {
	return s.current().Amounts()
}

// Subscribe registers fn to receive every committed cart. Calls happen in
// commit order; fn may read the store but must not mutate it.
func (s *Store) Subscribe(fn func(Cart)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) AddProduct(ctx context.Context, productID int64) (Cart, error) {
	return s.run(ctx, OpAdd, productID, func() (Cart, error) {
		if line, ok := s.current().Find(productID); ok {
			st, err := s.lookupStock(ctx, productID)
			if err != nil {
				return nil, err
			}
			if st.Amount <= line.Amount {
				return nil, &StockError{ProductID: productID, Requested: line.Amount + 1, Available: st.Amount}
			}
			return s.commit(ctx, func(c Cart) Cart {
				latest, _ := c.Find(productID)
				return c.withAmount(productID, latest.Amount+1)
			})
		}

		p, err := s.lookupProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		line := Line{
			ProductID: productID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Amount:    1,
		}
		return s.commit(ctx, func(c Cart) Cart { return c.withLine(line) })
	})
}

func (s *Store) RemoveProduct(ctx context.Context, productID int64) (Cart, error) {
	return s.run(ctx, OpRemove, productID, func() (Cart, error) {
		if _, ok := s.current().Find(productID); !ok {
			return nil, fmt.Errorf("%w: product=%d", ErrProductNotFound, productID)
		}
		return s.commit(ctx, func(c Cart) Cart { return c.without(productID) })
	})
}

// UpdateProductAmount sets a line's amount. Non-positive amounts are ignored
// without error or notification. A product that is not in the cart leaves
// the cart unchanged, but the cart is still saved and published.
func (s *Store) UpdateProductAmount(ctx context.Context, u UpdateAmount) (Cart, error) {
	if u.Amount <= 0 {
		return s.Cart(), nil
	}

	return s.run(ctx, OpUpdate, u.ProductID, func() (Cart, error) {
		st, err := s.lookupStock(ctx, u.ProductID)
		if err != nil {
			return nil, err
		}
		if st.Amount < u.Amount {
			return nil, &StockError{ProductID: u.ProductID, Requested: u.Amount, Available: st.Amount}
		}
		return s.commit(ctx, func(c Cart) Cart { return c.withAmount(u.ProductID, u.Amount) })
	})
}

func (s *Store) run(ctx context.Context, op Op, productID int64, fn func() (Cart, error)) (Cart, error) {
	unlock, err := s.locks.lock(ctx, productID)
	if err == nil {
		var c Cart
		c, err = fn()
		unlock()
		if err == nil {
			s.metrics.observeOp(op, nil)
			s.log.Debug("cart updated",
				zap.String("op", string(op)),
				zap.Int64("product_id", productID),
				zap.Int("lines", len(c)),
			)
			return c, nil
		}
	}

	s.metrics.observeOp(op, err)
	s.log.Warn("cart operation failed",
		zap.String("op", string(op)),
		zap.Int64("product_id", productID),
		zap.Error(err),
	)
	if s.notifier != nil {
		s.notifier.Error(Message(op, err))
	}
	return s.Cart(), err
}

// commit applies next to the latest cart, saves the result and publishes it.
// Nothing changes in memory when the save fails.
func (s *Store) commit(ctx context.Context, next func(Cart) Cart) (Cart, error) {
	s.mu.Lock()

	c := next(s.cart)
	data, err := json.Marshal(c)
	if err == nil {
		err = s.slot.Save(ctx, data)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.cart = c
	seq := s.nextSeq
	s.nextSeq++
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.publish(seq, c, subs)
	return c.Clone(), nil
}

// publish waits for every earlier commit to be published, then hands c to
// subs. Subscribers run without mu held, so they can read the store.
func (s *Store) publish(seq uint64, c Cart, subs []subscriber) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	for s.published != seq {
		s.pubTurn.Wait()
	}
	defer func() {
		s.published++
		s.pubTurn.Broadcast()
	}()

	for _, sub := range subs {
		sub.fn(c.Clone())
	}
}

func (s *Store) current() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Store) lookupStock(ctx context.Context, productID int64) (Stock, error) {
	defer s.metrics.observeLookup(serviceStock, time.Now())

	st, err := s.stock.Stock(ctx, productID)
	if err != nil {
		return Stock{}, fmt.Errorf("%w: %w", ErrStockLookup, err)
	}
	return st, nil
}

func (s *Store) lookupProduct(ctx context.Context, productID int64) (Product, error) {
	defer s.metrics.observeLookup(serviceCatalog, time.Now())

	p, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %w", ErrCatalogLookup, err)
	}
	return p, nil
}
