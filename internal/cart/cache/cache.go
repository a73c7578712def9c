package cache

import (
	"context"
	"errors"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
)

type CartCache interface {
	Get(ctx context.Context, userEmail string) ([]domain.CartLine, error)
	Set(ctx context.Context, userEmail string, lines []domain.CartLine) error
	Delete(ctx context.Context, userEmail string) error
}

var ErrCacheMiss = errors.New("cache miss")
