package analytics

import (
	"context"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/order/domain"
)

// TrendPoint is one day of the trailing sales window. Days without orders do
// not appear; the dashboard renders gaps as gaps.
type TrendPoint struct {
	Date       string  `bson:"_id" json:"date"`
	Revenue    float64 `bson:"revenue" json:"revenue"`
	OrderCount int64   `bson:"orderCount" json:"orderCount"`
}

// ProductSales is a top-sellers row, ranked by units sold across all orders.
type ProductSales struct {
	ProductID   string `bson:"_id" json:"productId"`
	ProductName string `bson:"productName" json:"productName"`
	UnitsSold   int64  `bson:"unitsSold" json:"unitsSold"`
}

// Counts mirrors the admin-home tiles.
type Counts struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

// Repository is the read-only query surface the aggregator runs on. Every
// call may see a point-in-time snapshot; no cross-query consistency is
// promised.
type Repository interface {
	// RevenueSince sums order totals with placedAt >= since. A zero since
	// means lifetime.
	RevenueSince(ctx context.Context, since time.Time) (float64, error)
	SalesTrend(ctx context.Context, since time.Time) ([]TrendPoint, error)
	TopProducts(ctx context.Context, limit int64) ([]ProductSales, error)
	RecentOrders(ctx context.Context, limit int64) ([]domain.Order, error)
	ActiveUserCount(ctx context.Context, since time.Time) (int64, error)
	Counts(ctx context.Context) (Counts, error)
}
