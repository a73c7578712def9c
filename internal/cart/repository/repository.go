package repository

import (
	"context"
	"errors"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
)

var (
	ErrDuplicateItem  = errors.New("product already in cart")
	ErrLineNotFound   = errors.New("cart line not found")
	ErrQuantityTooLow = errors.New("quantity cannot be less than 1")
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	// AddLine inserts a new cart line, failing with ErrDuplicateItem when a
	// line for the same (userEmail, productId) already exists.
	AddLine(ctx context.Context, line domain.CartLine) (string, error)

	// AdjustQuantity applies delta (+1 or -1) to the line's quantity and
	// recomputes its total in one atomic update. The resulting quantity is
	// never allowed below 1; such calls fail with ErrQuantityTooLow and
	// mutate nothing.
	AdjustQuantity(ctx context.Context, lineID string, delta int64) (*domain.CartLine, error)

	// RemoveLine deletes one line and returns it, or nil when the id did not
	// match anything. Removing an absent line is not an error.
	RemoveLine(ctx context.Context, lineID string) (*domain.CartLine, error)

	// ClearCart deletes every line belonging to the user and reports how many
	// were removed. Clearing an empty cart is a no-op.
	ClearCart(ctx context.Context, userEmail string) (int64, error)

	// ListCart returns the user's lines in insertion order.
	ListCart(ctx context.Context, userEmail string) ([]domain.CartLine, error)
}
