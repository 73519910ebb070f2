package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
	"github.com/shopfront/pricing-service/internal/service"
)

// CancelItemsRequest names the products whose lines should be cancelled
type CancelItemsRequest struct {
	ProductIDs []string `json:"productIds"`
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	log      *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkout *service.CheckoutService, orders *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		log:      log,
	}
}

// CreateOrder handles POST /api/order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.checkout.CreateOrder(r.Context(), req)
	if err != nil {
		h.log.Error("failed to create order", "error", err)

		switch {
		case errors.Is(err, service.ErrEmptyOrder):
			WriteError(w, http.StatusBadRequest, "Order must contain at least one item", h.log)
		case errors.Is(err, service.ErrInvalidQuantity):
			WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
		case errors.Is(err, service.ErrInvalidProduct):
			WriteError(w, http.StatusBadRequest, "Invalid product", h.log)
		case errors.Is(err, service.ErrInvalidCoupon):
			WriteError(w, http.StatusBadRequest, "Coupon code is not valid", h.log)
		default:
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
	h.log.Info("order created",
		"order_id", order.ID,
		"items_count", len(order.Items),
		"coupon_discount", order.CouponDiscount,
		"total", order.Total,
	)
}

// GetOrder handles GET /api/order/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}
		h.log.Error("failed to get order", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// CancelItems handles POST /api/order/{orderId}/cancel-items
func (h *OrderHandler) CancelItems(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req CancelItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if len(req.ProductIDs) == 0 {
		WriteError(w, http.StatusBadRequest, "productIds is required", h.log)
		return
	}

	order, err := h.orders.CancelItems(r.Context(), orderID, req.ProductIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
		case errors.Is(err, service.ErrNothingToCancel):
			WriteError(w, http.StatusBadRequest, "No matching active items to cancel", h.log)
		default:
			h.log.Error("failed to cancel items", "order_id", orderID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
	h.log.Info("order items cancelled",
		"order_id", orderID,
		"cancelled", len(req.ProductIDs),
		"new_total", order.Total,
	)
}
