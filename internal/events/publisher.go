package events

import (
	"context"
	"time"
)

// OrderPlaced is emitted once per successful settlement.
type OrderPlaced struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	InvoiceNo string    `json:"invoice_no"`
	UserEmail string    `json:"user_email"`
	Total     float64   `json:"total"`
	PlacedAt  time.Time `json:"placed_at"`
}

// StockShortfall is emitted per oversold line so operators can arrange a
// back-order; the order itself stands.
type StockShortfall struct {
	EventID   string `json:"event_id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// Publisher delivery is best-effort: settlement never fails because an event
// could not be written.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
	PublishStockShortfall(ctx context.Context, event StockShortfall) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error       { return nil }
func (NoopPublisher) PublishStockShortfall(context.Context, StockShortfall) error { return nil }
