package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
	"github.com/shopfront/pricing-service/internal/service"
	"github.com/shopfront/pricing-service/pkg/logger"
)

func newQuoteHandler(offers []models.Offer) *QuoteHandler {
	products := repository.NewInMemoryProductRepository()
	quotes := service.NewQuoteService(products, &fakeOfferRepo{offers: offers})
	return NewQuoteHandler(quotes, logger.New("error"))
}

func storewideOffer(percent float64) models.Offer {
	return models.Offer{
		ID:            "storewide",
		Name:          "Storewide Sale",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: percent,
		Scope:         models.ScopeAllProducts,
		IsActive:      true,
		StartsAt:      time.Now().Add(-time.Hour),
		EndsAt:        time.Now().Add(time.Hour),
	}
}

func TestQuoteCart(t *testing.T) {
	handler := newQuoteHandler([]models.Offer{storewideOffer(10)})

	body := `{"items":[{"productId":"1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.QuoteCart(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)

	line := resp.Items[0]
	assert.Equal(t, "1", line.Product.ID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 9.00, line.Discount.DiscountAmount)
	assert.Equal(t, 80.99, line.Discount.FinalPrice)
	assert.Equal(t, 161.98, line.LineSubtotal)
	assert.Equal(t, 161.98, resp.Subtotal)
}

func TestQuoteCart_NoOffers(t *testing.T) {
	handler := newQuoteHandler(nil)

	body := `{"items":[{"productId":"1","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.QuoteCart(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	assert.Nil(t, resp.Items[0].Offer)
	assert.Equal(t, 89.99, resp.Items[0].Discount.FinalPrice)
	assert.Equal(t, 89.99, resp.Subtotal)
}

func TestQuoteCart_BadRequests(t *testing.T) {
	handler := newQuoteHandler(nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"items":`},
		{"empty cart", `{"items":[]}`},
		{"zero quantity", `{"items":[{"productId":"1","quantity":0}]}`},
		{"unknown product", `{"items":[{"productId":"999","quantity":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.QuoteCart(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
