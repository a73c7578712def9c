package analytics

import (
	"context"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/inventory"
	"github.com/imonsheikh/women-three-piece-server/internal/order/domain"
)

const (
	DefaultLowStockThreshold = 5
	DefaultActiveUserWindow  = 300 * time.Second
)

type RevenueSummary struct {
	Today       float64 `json:"today"`
	MonthToDate float64 `json:"monthToDate"`
	Lifetime    float64 `json:"lifetime"`
}

// Service derives operator-facing views from settled orders and product
// stock. Everything here is read-only.
type Service struct {
	repo   Repository
	ledger inventory.Ledger
	now    func() time.Time
}

func NewService(repo Repository, ledger inventory.Ledger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		now:    time.Now,
	}
}

// RevenueSummary rolls up order totals against the start of the current day,
// the start of the current calendar month, and all time, in the server's
// local timezone.
func (s *Service) RevenueSummary(ctx context.Context) (*RevenueSummary, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.repo.RevenueSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	monthToDate, err := s.repo.RevenueSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	lifetime, err := s.repo.RevenueSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	return &RevenueSummary{Today: today, MonthToDate: monthToDate, Lifetime: lifetime}, nil
}

func (s *Service) SalesTrend(ctx context.Context, windowDays int) ([]TrendPoint, error) {
	since := s.now().AddDate(0, 0, -windowDays)
	return s.repo.SalesTrend(ctx, since)
}

func (s *Service) TopProducts(ctx context.Context, limit int64) ([]ProductSales, error) {
	return s.repo.TopProducts(ctx, limit)
}

func (s *Service) RecentOrders(ctx context.Context, limit int64) ([]domain.Order, error) {
	return s.repo.RecentOrders(ctx, limit)
}

func (s *Service) LowStockProducts(ctx context.Context, threshold, limit int64) ([]inventory.StockLevel, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.ledger.LowStock(ctx, threshold, limit)
}

func (s *Service) ActiveUserCount(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		window = DefaultActiveUserWindow
	}
	return s.repo.ActiveUserCount(ctx, s.now().Add(-window))
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}
