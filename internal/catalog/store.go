package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrSchemaMissing = errors.New("catalog schema missing")

type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Stock(ctx context.Context, id int64) (Stock, bool, error)
}
