package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Seed has the shape of the JSON file the store can be loaded from.
type Seed struct {
	Products []Product `json:"products"`
	Stock    []Stock   `json:"stock"`
}

const shoeImage = "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"

func DefaultSeed() Seed {
	return Seed{
		Products: []Product{
			{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: decimal.RequireFromString("179.9"), Image: shoeImage},
			{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: decimal.RequireFromString("139.9"), Image: shoeImage},
			{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: decimal.RequireFromString("219.9"), Image: shoeImage},
			{ID: 4, Title: "Tênis de Caminhada Leve Confortável", Price: decimal.RequireFromString("179.9"), Image: shoeImage},
			{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: decimal.RequireFromString("139.9"), Image: shoeImage},
			{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: decimal.RequireFromString("219.9"), Image: shoeImage},
		},
		Stock: []Stock{
			{ID: 1, Amount: 3},
			{ID: 2, Amount: 5},
			{ID: 3, Amount: 2},
			{ID: 4, Amount: 1},
			{ID: 5, Amount: 5},
			{ID: 6, Amount: 10},
		},
	}
}

func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}

	var s Seed
	if err := json.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return s, nil
}

type MemStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	stock    map[int64]int
}

func NewMemStore(seed Seed) *MemStore {
	s := &MemStore{
		products: make(map[int64]Product, len(seed.Products)),
		stock:    make(map[int64]int, len(seed.Stock)),
	}
	for _, p := range seed.Products {
		s.products[p.ID] = p
	}
	for _, st := range seed.Stock {
		s.stock[st.ID] = st.Amount
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) Stock(ctx context.Context, id int64) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.stock[id]
	if !ok {
		return Stock{}, false, nil
	}
	return Stock{ID: id, Amount: amount}, true, nil
}

// SetStock overrides the available amount of a product.
func (s *MemStore) SetStock(id int64, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = amount
}
