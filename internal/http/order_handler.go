package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/imonsheikh/women-three-piece-server/internal/gate"
	orderdomain "github.com/imonsheikh/women-three-piece-server/internal/order/domain"
	orderrepo "github.com/imonsheikh/women-three-piece-server/internal/order/repository"
	"github.com/imonsheikh/women-three-piece-server/internal/settlement"
)

type OrderHandler struct {
	settlement *settlement.Service
	logger     *slog.Logger
}

func NewOrderHandler(settlement *settlement.Service, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{settlement: settlement, logger: logger}
}

// PlaceOrder settles the caller's cart into a durable order.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	receipt, err := h.settlement.PlaceOrder(r.Context(), id.Email)
	if err != nil {
		if errors.Is(err, settlement.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
			return
		}
		h.logger.Error("failed to place order", "userEmail", id.Email, "error", err)
		respondInternal(w)
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}

func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.settlement.ListOrdersForUser(r.Context(), id.Email)
	if err != nil {
		h.logger.Error("failed to list orders", "userEmail", id.Email, "error", err)
		respondInternal(w)
		return
	}
	if orders == nil {
		orders = []orderdomain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.settlement.ListAllOrders(r.Context())
	if err != nil {
		h.logger.Error("failed to list all orders", "error", err)
		respondInternal(w)
		return
	}
	if orders == nil {
		orders = []orderdomain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

type updateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req updateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.settlement.UpdateStatus(r.Context(), orderID, orderdomain.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, orderrepo.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		case errors.Is(err, settlement.ErrInvalidTransition):
			respondError(w, http.StatusBadRequest, "invalid_transition", err.Error())
		default:
			h.logger.Error("failed to update order status", "orderId", orderID, "error", err)
			respondInternal(w)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
