package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/repository"
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
)

// Quote is a fully priced cart line: the winning offer (if any), its effect
// on the regular price, and the resulting line subtotal.
type Quote struct {
	Product      models.Product         `json:"product"`
	Quantity     int                    `json:"quantity"`
	Offer        *models.Offer          `json:"offer,omitempty"`
	Discount     pricing.DiscountResult `json:"discount"`
	LineSubtotal float64                `json:"lineSubtotal"`
}

// QuoteService prices products: it resolves the best active offer per
// product (including the synthetic sale-price offer) and computes the
// discounted price the rest of checkout works from.
type QuoteService struct {
	products repository.ProductRepository
	offers   repository.OfferRepository
	now      func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(products repository.ProductRepository, offers repository.OfferRepository) *QuoteService {
	return &QuoteService{
		products: products,
		offers:   offers,
		now:      time.Now,
	}
}

// QuoteProduct prices a single product at the given quantity.
func (s *QuoteService) QuoteProduct(ctx context.Context, productID string, quantity int) (*Quote, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, ErrInvalidProduct
	}

	offers, err := s.offers.GetActive(ctx, s.now())
	if err != nil {
		return nil, err
	}

	quote := s.quote(product, quantity, offers)
	return &quote, nil
}

// QuoteCart prices every line of a cart against one snapshot of the active
// offers. Lines repeating a product are consolidated into one.
func (s *QuoteService) QuoteCart(ctx context.Context, items []models.OrderItem) ([]Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	offers, err := s.offers.GetActive(ctx, s.now())
	if err != nil {
		return nil, err
	}

	quantities := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	quotes := make([]Quote, 0, len(order))
	for _, productID := range order {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, ErrInvalidProduct
		}
		quotes = append(quotes, s.quote(product, quantities[productID], offers))
	}
	return quotes, nil
}

func (s *QuoteService) quote(product *models.Product, quantity int, offers []models.Offer) Quote {
	special := pricing.SpecialOfferFor(product)
	best := pricing.SelectBestOffer(product.ID, product.CategoryID, product.RegularPrice, offers, special)
	discount := pricing.CalculateDiscount(best, product.RegularPrice)

	return Quote{
		Product:      *product,
		Quantity:     quantity,
		Offer:        best,
		Discount:     discount,
		LineSubtotal: pricing.Round2(float64(quantity) * discount.FinalPrice),
	}
}
