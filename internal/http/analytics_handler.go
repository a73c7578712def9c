package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/analytics"
	"github.com/imonsheikh/women-three-piece-server/internal/inventory"
	orderdomain "github.com/imonsheikh/women-three-piece-server/internal/order/domain"
)

const (
	defaultTrendWindowDays = 30
	defaultListLimit       = 10
)

type AnalyticsHandler struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewAnalyticsHandler(analytics *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

func (h *AnalyticsHandler) RevenueSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.RevenueSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to compute revenue summary", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) SalesTrend(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultTrendWindowDays)
	if days < 1 {
		respondError(w, http.StatusBadRequest, "invalid_window", "days must be at least 1")
		return
	}

	points, err := h.analytics.SalesTrend(r.Context(), days)
	if err != nil {
		h.logger.Error("failed to compute sales trend", "error", err)
		respondInternal(w)
		return
	}
	if points == nil {
		points = []analytics.TrendPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be at least 1")
		return
	}

	sales, err := h.analytics.TopProducts(r.Context(), int64(limit))
	if err != nil {
		h.logger.Error("failed to compute top products", "error", err)
		respondInternal(w)
		return
	}
	if sales == nil {
		sales = []analytics.ProductSales{}
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *AnalyticsHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be at least 1")
		return
	}

	orders, err := h.analytics.RecentOrders(r.Context(), int64(limit))
	if err != nil {
		h.logger.Error("failed to list recent orders", "error", err)
		respondInternal(w)
		return
	}
	if orders == nil {
		orders = []orderdomain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *AnalyticsHandler) LowStockProducts(w http.ResponseWriter, r *http.Request) {
	threshold := queryInt(r, "threshold", analytics.DefaultLowStockThreshold)
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 {
		respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be at least 1")
		return
	}

	levels, err := h.analytics.LowStockProducts(r.Context(), int64(threshold), int64(limit))
	if err != nil {
		h.logger.Error("failed to list low stock products", "error", err)
		respondInternal(w)
		return
	}
	if levels == nil {
		levels = []inventory.StockLevel{}
	}
	respondJSON(w, http.StatusOK, levels)
}

func (h *AnalyticsHandler) ActiveUserCount(w http.ResponseWriter, r *http.Request) {
	windowSeconds := queryInt(r, "window", int(analytics.DefaultActiveUserWindow/time.Second))

	count, err := h.analytics.ActiveUserCount(r.Context(), time.Duration(windowSeconds)*time.Second)
	if err != nil {
		h.logger.Error("failed to count active users", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *AnalyticsHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.Counts(r.Context())
	if err != nil {
		h.logger.Error("failed to compute counts", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
