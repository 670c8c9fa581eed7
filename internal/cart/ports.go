package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type Stock struct {
	Amount int `json:"amount"`
}

// Catalog resolves a product id to its display record.
type Catalog interface {
	Product(ctx context.Context, productID int64) (Product, error)
}

// StockService resolves a product id to its currently available quantity.
type StockService interface {
	Stock(ctx context.Context, productID int64) (Stock, error)
}

// Slot is a single durable key holding the serialized cart.
// Load returns nil data and a nil error when nothing was saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Notifier receives human readable failure messages. It must not block.
type Notifier interface {
	Error(msg string)
}
