package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	cartdomain "github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	"github.com/imonsheikh/women-three-piece-server/internal/events"
	"github.com/imonsheikh/women-three-piece-server/internal/inventory"
	"github.com/imonsheikh/women-three-piece-server/internal/order/domain"
	orderrepo "github.com/imonsheikh/women-three-piece-server/internal/order/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to settle")
	ErrInvalidTransition = errors.New("illegal order status transition")
)

// Receipt is what the caller gets back from a settled order.
type Receipt struct {
	OrderID   string `json:"orderId"`
	InvoiceNo string `json:"invoiceNo"`
}

// Carts is the slice of the cart layer settlement needs: read the lines and
// clear them once the order is durable. Wire the cart service here, not the
// bare repository, so clearing also drops the cached cart readers serve from.
type Carts interface {
	ListCart(ctx context.Context, userEmail string) ([]cartdomain.CartLine, error)
	ClearCart(ctx context.Context, userEmail string) (int64, error)
}

// Service converts carts into durable orders: validate, invoice, persist,
// decrement stock, clear the cart. The steps are individually atomic; there
// is no cross-document transaction, so each later step has a documented
// policy for failing after an earlier one committed.
type Service struct {
	carts     Carts
	orders    orderrepo.OrderRepository
	ledger    inventory.Ledger
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	carts Carts,
	orders orderrepo.OrderRepository,
	ledger inventory.Ledger,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder settles the user's cart.
//
// Once the order document is durably inserted the order stands: an
// out-of-stock line found afterwards is recorded as a shortfall for operator
// follow-up (back-order) instead of rolling back the lines already
// decremented. A failed cart clear is logged and left to heal on the next
// read-then-clear; the order is the source of truth.
func (s *Service) PlaceOrder(ctx context.Context, userEmail string) (*Receipt, error) {
	lines, err := s.carts.ListCart(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total float64
	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		total += line.LineTotal
		items[i] = domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}

	invoiceNo, err := s.newInvoiceNo(ctx)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		InvoiceNo: invoiceNo,
		UserEmail: userEmail,
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPending,
		PlacedAt:  time.Now(),
	}

	orderID, err := s.orders.Insert(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	shortfalls := s.decrementLines(ctx, orderID, items)
	if len(shortfalls) > 0 {
		if err := s.orders.AppendShortfalls(ctx, orderID, shortfalls); err != nil {
			s.logger.Error("failed to record shortfalls on order",
				"orderId", orderID, "error", err)
		}
	}

	if _, err := s.carts.ClearCart(ctx, userEmail); err != nil {
		s.logger.Warn("cart clear after settlement failed; cart is stale until next clear",
			"userEmail", userEmail, "orderId", orderID, "error", err)
	}

	s.publishOrderPlaced(ctx, orderID, order)

	return &Receipt{OrderID: orderID, InvoiceNo: invoiceNo}, nil
}

// decrementLines walks the order items through the ledger. Out-of-stock lines
// become shortfalls; a store failure on one line is logged and the rest still
// get their decrement.
func (s *Service) decrementLines(ctx context.Context, orderID string, items []domain.OrderItem) []domain.Shortfall {
	var shortfalls []domain.Shortfall
	for _, item := range items {
		_, err := s.ledger.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		var oos *inventory.OutOfStockError
		if errors.As(err, &oos) {
			shortfall := domain.Shortfall{
				ProductID: oos.ProductID,
				Requested: oos.Requested,
				Available: oos.Available,
			}
			shortfalls = append(shortfalls, shortfall)
			s.publishShortfall(ctx, orderID, shortfall)
			continue
		}

		s.logger.Error("stock decrement failed after order insert",
			"orderId", orderID, "productId", item.ProductID, "error", err)
	}
	return shortfalls
}

// UpdateStatus applies an operator-driven transition. Cancelling a pending or
// processing order restores the stock its settlement decremented; shortfall
// lines were never decremented, so their quantities are not restored.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !domain.CanTransitionTo(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}

	if status == domain.OrderStatusCancelled {
		s.restoreStock(ctx, order)
	}
	return nil
}

func (s *Service) restoreStock(ctx context.Context, order *domain.Order) {
	short := make(map[string]int64, len(order.Shortfalls))
	for _, sf := range order.Shortfalls {
		short[sf.ProductID] = sf.Requested
	}

	for _, item := range order.Items {
		quantity := item.Quantity - short[item.ProductID]
		if quantity <= 0 {
			continue
		}
		if err := s.ledger.RestoreStock(ctx, item.ProductID, quantity); err != nil {
			s.logger.Error("failed to restore stock for cancelled order",
				"orderId", order.ID, "productId", item.ProductID, "error", err)
		}
	}
}

func (s *Service) ListOrdersForUser(ctx context.Context, userEmail string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userEmail)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *Service) publishOrderPlaced(ctx context.Context, orderID string, order domain.Order) {
	err := s.publisher.PublishOrderPlaced(ctx, events.OrderPlaced{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		InvoiceNo: order.InvoiceNo,
		UserEmail: order.UserEmail,
		Total:     order.Total,
		PlacedAt:  order.PlacedAt,
	})
	if err != nil {
		s.logger.Warn("failed to publish order_placed event", "orderId", orderID, "error", err)
	}
}

func (s *Service) publishShortfall(ctx context.Context, orderID string, shortfall domain.Shortfall) {
	err := s.publisher.PublishStockShortfall(ctx, events.StockShortfall{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		ProductID: shortfall.ProductID,
		Requested: shortfall.Requested,
		Available: shortfall.Available,
	})
	if err != nil {
		s.logger.Warn("failed to publish stock_shortfall event", "orderId", orderID, "error", err)
	}
}
