package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/imonsheikh/women-three-piece-server/internal/catalog/domain"
	"github.com/imonsheikh/women-three-piece-server/internal/catalog/repository"
)

// ProductHandler is catalog pass-through: plain store operations with no
// settlement invariants behind them.
type ProductHandler struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewProductHandler(products repository.ProductRepository, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		respondInternal(w)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		h.logger.Error("failed to get product", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if product.Name == "" {
		respondError(w, http.StatusBadRequest, "missing_name", "name is required")
		return
	}
	if product.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	if product.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_stock", "stock must not be negative")
		return
	}

	id, err := h.products.Create(r.Context(), product)
	if err != nil {
		h.logger.Error("failed to create product", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"insertedId": id})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		h.logger.Error("failed to delete product", "error", err)
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deletedCount": 1})
}
