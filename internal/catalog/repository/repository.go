package repository

import (
	"context"
	"errors"

	"github.com/imonsheikh/women-three-piece-server/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the catalog pass-through surface. The core only reads
// from it; product CRUD stays a plain store operation with no invariants.
type ProductRepository interface {
	GetByID(ctx context.Context, productID string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product domain.Product) (string, error)
	Delete(ctx context.Context, productID string) error
}
