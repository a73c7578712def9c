package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the operator-driven lifecycle:
// pending -> processing -> shipped -> delivered, with cancellation allowed
// from pending or processing only.
func CanTransitionTo(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusProcessing || to == OrderStatusCancelled
	case OrderStatusProcessing:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

// OrderItem is the settlement-time snapshot of a cart line. Later catalog
// price or name changes never touch it.
type OrderItem struct {
	ProductID   string  `bson:"productId" json:"productId"`
	ProductName string  `bson:"productName" json:"productName"`
	Quantity    int64   `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"productPrice" json:"productPrice"`
}

// Shortfall records an oversold line: the order stood, but stock could not
// cover the full quantity at settlement time.
type Shortfall struct {
	ProductID string `bson:"productId" json:"productId"`
	Requested int64  `bson:"requested" json:"requested"`
	Available int64  `bson:"available" json:"available"`
}

type Order struct {
	ID         string      `bson:"_id,omitempty" json:"_id"`
	InvoiceNo  string      `bson:"invoiceNo" json:"invoiceNo"`
	UserEmail  string      `bson:"userEmail" json:"userEmail"`
	Items      []OrderItem `bson:"items" json:"items"`
	Total      float64     `bson:"total" json:"total"`
	Status     OrderStatus `bson:"status" json:"status"`
	Shortfalls []Shortfall `bson:"shortfalls,omitempty" json:"shortfalls,omitempty"`
	PlacedAt   time.Time   `bson:"placedAt" json:"placedAt"`
}
