package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/imonsheikh/women-three-piece-server/internal/gate"
)

type RouterDeps struct {
	Gate      *gate.Gate
	Auth      *AuthHandler
	Cart      *CartHandler
	Order     *OrderHandler
	Analytics *AnalyticsHandler
	Product   *ProductHandler

	RequestTimeout time.Duration
}

// NewRouter binds the public surface. Cart and order operations require an
// authenticated caller; everything under /admin and the operator order
// endpoints additionally require the admin role.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/jwt", deps.Auth.IssueToken)

	// Catalog browsing is open; catalog CRUD is operator-only.
	r.Get("/products", deps.Product.List)
	r.Get("/product-details/{id}", deps.Product.Get)

	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.RequireAuth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.ListCart)
			r.Post("/", deps.Cart.AddItem)
			r.Patch("/{id}/{action}", deps.Cart.AdjustQuantity)
			r.Delete("/{id}", deps.Cart.RemoveItem)
			r.Delete("/", deps.Cart.ClearCart)
		})

		r.Post("/order", deps.Order.PlaceOrder)
		r.Get("/orders", deps.Order.ListMyOrders)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.RequireAuth)
		r.Use(deps.Gate.RequireAdmin)

		r.Post("/products", deps.Product.Create)
		r.Delete("/product/{id}", deps.Product.Delete)

		r.Get("/all-orders", deps.Order.ListAllOrders)
		r.Patch("/orders/{id}", deps.Order.UpdateStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/revenue-summary", deps.Analytics.RevenueSummary)
			r.Get("/sales-trend", deps.Analytics.SalesTrend)
			r.Get("/top-products", deps.Analytics.TopProducts)
			r.Get("/recent-orders", deps.Analytics.RecentOrders)
			r.Get("/low-stock", deps.Analytics.LowStockProducts)
			r.Get("/active-users", deps.Analytics.ActiveUserCount)
			r.Get("/counts", deps.Analytics.Counts)
		})
	})

	return r
}
