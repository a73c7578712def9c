package inventory

import (
	"context"
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

// OutOfStockError reports a rejected decrement: the guard found fewer units
// than requested and no mutation was applied.
type OutOfStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: product %s has %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// StockLevel is the low-stock query projection.
type StockLevel struct {
	ProductID string `bson:"_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Stock     int64  `bson:"stock" json:"stock"`
}

// Ledger owns the stock field on products. Decrements are conditional and
// atomic at the store level; stock can never be observed negative.
type Ledger interface {
	// DecrementStock subtracts quantity from the product's stock and returns
	// the new level. Fails with *OutOfStockError when stock < quantity,
	// leaving the document untouched.
	DecrementStock(ctx context.Context, productID string, quantity int64) (int64, error)

	// RestoreStock adds quantity back, used when a settled order is cancelled.
	RestoreStock(ctx context.Context, productID string, quantity int64) error

	// LowStock lists products with stock below threshold, ascending by stock.
	LowStock(ctx context.Context, threshold int64, limit int64) ([]StockLevel, error)
}
