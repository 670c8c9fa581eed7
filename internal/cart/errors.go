package cart

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock      = errors.New("requested quantity out of stock")
	ErrProductNotFound = errors.New("product not in cart")
	ErrCatalogLookup   = errors.New("catalog lookup failed")
	ErrStockLookup     = errors.New("stock lookup failed")
	ErrPersist         = errors.New("persist cart failed")
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
)

// StockError reports a quantity that exceeds the available stock.
// It matches ErrOutOfStock with errors.Is.
type StockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: product=%d requested=%d available=%d",
		ErrOutOfStock, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrOutOfStock }

const (
	msgOutOfStock   = "requested quantity out of stock"
	msgAddFailed    = "error adding product"
	msgRemoveFailed = "error removing product"
	msgUpdateFailed = "error changing product quantity"
)

// Message returns the user facing text for a failed operation.
func Message(op Op, err error) string {
	if errors.Is(err, ErrOutOfStock) && op != OpRemove {
		return msgOutOfStock
	}
	switch op {
	case OpAdd:
		return msgAddFailed
	case OpRemove:
		return msgRemoveFailed
	default:
		return msgUpdateFailed
	}
}

// outcome is the metrics label for an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrCatalogLookup):
		return "catalog_error"
	case errors.Is(err, ErrStockLookup):
		return "stock_error"
	case errors.Is(err, ErrPersist):
		return "persist_error"
	default:
		return "error"
	}
}
