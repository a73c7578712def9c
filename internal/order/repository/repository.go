package repository

import (
	"context"
	"errors"

	"github.com/imonsheikh/women-three-piece-server/internal/order/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order persistence. Orders are
// written once; only status and shortfalls change afterwards.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	InvoiceExists(ctx context.Context, invoiceNo string) (bool, error)
	AppendShortfalls(ctx context.Context, orderID string, shortfalls []domain.Shortfall) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	ListByUser(ctx context.Context, userEmail string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}
