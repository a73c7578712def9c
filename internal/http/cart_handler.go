package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	cartdomain "github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	cartrepo "github.com/imonsheikh/women-three-piece-server/internal/cart/repository"
	"github.com/imonsheikh/women-three-piece-server/internal/cart/service"
	catalogrepo "github.com/imonsheikh/women-three-piece-server/internal/catalog/repository"
	"github.com/imonsheikh/women-three-piece-server/internal/gate"
)

type CartHandler struct {
	carts    *service.CartService
	products catalogrepo.ProductRepository
	logger   *slog.Logger
}

func NewCartHandler(carts *service.CartService, products catalogrepo.ProductRepository, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, products: products, logger: logger}
}

type addItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// The unit price is read from the catalog here, never trusted from the
	// client; the line keeps that price regardless of later catalog edits.
	product, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		h.logger.Error("failed to load product for cart add", "productId", req.ProductID, "error", err)
		respondInternal(w)
		return
	}

	lineID, err := h.carts.AddItem(r.Context(), id.Email, product.ID, product.Name, product.Price, req.Quantity)
	if err != nil {
		if errors.Is(err, cartrepo.ErrDuplicateItem) {
			respondError(w, http.StatusBadRequest, "duplicate_item", "product already in cart")
			return
		}
		h.logger.Error("failed to add cart item", "userEmail", id.Email, "error", err)
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"insertedId": lineID})
}

// AdjustQuantity handles PATCH /cart/{id}/{action} where action is
// "increase" or "decrease".
func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	var delta int64
	switch chi.URLParam(r, "action") {
	case "increase":
		delta = 1
	case "decrease":
		delta = -1
	default:
		respondError(w, http.StatusBadRequest, "invalid_action", "action must be increase or decrease")
		return
	}

	line, err := h.carts.AdjustQuantity(r.Context(), lineID, delta)
	if err != nil {
		switch {
		case errors.Is(err, cartrepo.ErrLineNotFound):
			respondError(w, http.StatusNotFound, "item_not_found", "item not found")
		case errors.Is(err, cartrepo.ErrQuantityTooLow):
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity cannot be less than 1")
		default:
			h.logger.Error("failed to adjust cart quantity", "lineId", lineID, "error", err)
			respondInternal(w)
		}
		return
	}

	respondJSON(w, http.StatusOK, line)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	removed, err := h.carts.RemoveItem(r.Context(), lineID)
	if err != nil {
		h.logger.Error("failed to remove cart item", "lineId", lineID, "error", err)
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"deletedCount": removed})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	removed, err := h.carts.ClearCart(r.Context(), id.Email)
	if err != nil {
		h.logger.Error("failed to clear cart", "userEmail", id.Email, "error", err)
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"deletedCount": removed})
}

func (h *CartHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lines, err := h.carts.ListCart(r.Context(), id.Email)
	if err != nil {
		h.logger.Error("failed to list cart", "userEmail", id.Email, "error", err)
		respondInternal(w)
		return
	}
	if lines == nil {
		lines = []cartdomain.CartLine{}
	}

	respondJSON(w, http.StatusOK, lines)
}
