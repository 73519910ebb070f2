package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/service"
)

// QuoteRequest represents a cart to be priced without checking out
type QuoteRequest struct {
	Items []models.OrderItem `json:"items"`
}

// QuoteResponse carries the priced lines and their cart total
type QuoteResponse struct {
	Items    []service.Quote `json:"items"`
	Subtotal float64         `json:"subtotal"`
}

// QuoteHandler handles cart pricing requests
type QuoteHandler struct {
	quotes *service.QuoteService
	log    *slog.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes *service.QuoteService, log *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		log:    log,
	}
}

// QuoteCart handles POST /api/quote
func (h *QuoteHandler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode quote request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	quotes, err := h.quotes.QuoteCart(r.Context(), req.Items)
	if err != nil {
		switch err {
		case service.ErrEmptyOrder:
			WriteError(w, http.StatusBadRequest, "Cart must contain at least one item", h.log)
		case service.ErrInvalidQuantity:
			WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
		case service.ErrInvalidProduct:
			WriteError(w, http.StatusBadRequest, "Invalid product", h.log)
		default:
			h.log.Error("failed to quote cart", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	subtotal := 0.0
	for _, q := range quotes {
		subtotal += q.LineSubtotal
	}

	WriteJSON(w, http.StatusOK, QuoteResponse{Items: quotes, Subtotal: pricing.Round2(subtotal)}, h.log)
}
