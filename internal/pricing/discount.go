package pricing

import (
	"math"

	"github.com/shopfront/pricing-service/internal/models"
)

// DiscountResult describes the effect of applying an offer to a price.
// All fields are non-negative, DiscountAmount and FinalPrice never exceed the
// input price, and DiscountPercentage never exceeds 100.
type DiscountResult struct {
	DiscountAmount     float64 `json:"discountAmount"`
	DiscountPercentage float64 `json:"discountPercentage"`
	FinalPrice         float64 `json:"finalPrice"`
}

// CalculateDiscount computes the discount an offer yields against a price.
// A nil offer or a non-positive price degrades to a zero discount rather than
// an error: a pricing glitch must never block checkout.
func CalculateDiscount(offer *models.Offer, price float64) DiscountResult {
	if !validAmount(price) {
		return DiscountResult{}
	}
	if offer == nil || price <= 0 {
		return DiscountResult{FinalPrice: Round2(math.Max(price, 0))}
	}

	var amount, percentage float64
	switch offer.DiscountType {
	case models.DiscountPercentage:
		percentage = math.Min(offer.DiscountValue, 100)
		amount = price * percentage / 100
	case models.DiscountFixed:
		amount = offer.DiscountValue
		percentage = amount / price * 100
	default:
		return DiscountResult{FinalPrice: Round2(price)}
	}

	if amount < 0 || !validAmount(amount) {
		amount, percentage = 0, 0
	}
	amount = math.Min(amount, price)
	percentage = math.Min(percentage, 100)

	return DiscountResult{
		DiscountAmount:     Round2(amount),
		DiscountPercentage: Round2(percentage),
		FinalPrice:         Round2(math.Max(0, price-amount)),
	}
}

// SpecialOfferFor derives the synthetic sale-price offer for a product, or
// nil when the product has no markdown. The result is scoped to the product
// itself and flagged Special so it wins ties against admin offers.
func SpecialOfferFor(p *models.Product) *models.Offer {
	if p == nil || !p.OnSale() {
		return nil
	}
	return &models.Offer{
		ID:            "sale:" + p.ID,
		Name:          "Sale price",
		DiscountType:  models.DiscountFixed,
		DiscountValue: Round2(p.RegularPrice - p.SalePrice),
		Scope:         models.ScopeSpecificProducts,
		ProductIDs:    []string{p.ID},
		IsActive:      true,
		Special:       true,
	}
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
