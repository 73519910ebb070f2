package pricing

import (
	"math"
	"strconv"

	"github.com/shopfront/pricing-service/internal/models"
)

// PriceableItem is a cart or order line handed to the allocator. UnitPrice is
// the post-offer discounted unit price, never the raw list price.
type PriceableItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// Subtotal returns quantity times discounted unit price.
func (it PriceableItem) Subtotal() float64 {
	return float64(it.Quantity) * it.UnitPrice
}

// ItemDiscount is one line's slice of a coupon discount. Proportion is the
// line subtotal divided by the cart total at allocation time.
type ItemDiscount struct {
	Amount     float64 `json:"amount"`
	Proportion float64 `json:"proportion"`
}

// AllocationResult is the outcome of splitting a coupon discount across
// lines. TotalDiscount is the sum of the per-item amounts, exact to the cent.
type AllocationResult struct {
	TotalDiscount float64                 `json:"totalDiscount"`
	ItemDiscounts map[string]ItemDiscount `json:"itemDiscounts"`
}

// AllocateCouponDiscount apportions a coupon's total discount across items
// proportionally to each item's line subtotal. The last item absorbs the
// rounding remainder so the shares always sum exactly to the coupon total;
// each share is additionally clamped to its own line subtotal.
//
// The coupon is assumed already validated for eligibility (window, minimum
// order, usage caps) by the caller; only the arithmetic split happens here.
// An empty cart or zero total degrades to a zero-discount result.
func AllocateCouponDiscount(coupon *models.Coupon, items []PriceableItem) AllocationResult {
	result := AllocationResult{ItemDiscounts: map[string]ItemDiscount{}}
	if coupon == nil || len(items) == 0 {
		return result
	}

	valid := make([]int, 0, len(items))
	cartTotal := 0.0
	for i, it := range items {
		if !priceable(it) {
			continue
		}
		valid = append(valid, i)
		cartTotal += it.Subtotal()
	}
	if cartTotal <= 0 {
		return result
	}

	total := CouponDiscount(coupon, cartTotal)

	subtotals := make([]float64, len(valid))
	for n, i := range valid {
		subtotals[n] = items[i].Subtotal()
	}
	shares := proportionalShares(total, cartTotal, subtotals)

	sum := 0.0
	for n, i := range valid {
		result.ItemDiscounts[itemKey(items[i], i)] = ItemDiscount{
			Amount:     shares[n],
			Proportion: subtotals[n] / cartTotal,
		}
		sum += shares[n]
	}

	// Report the sum of the clamped shares, not the raw coupon total, so the
	// breakdown and the total always agree.
	result.TotalDiscount = Round2(sum)
	return result
}

// proportionalShares splits total across lines in proportion to their
// subtotals. The last line absorbs the rounding remainder so the shares sum
// exactly to total; every share is clamped to [0, its line subtotal].
func proportionalShares(total, cartTotal float64, subtotals []float64) []float64 {
	shares := make([]float64, len(subtotals))
	allocated := 0.0
	for i, subtotal := range subtotals {
		var share float64
		if i == len(subtotals)-1 {
			share = Round2(total - allocated)
		} else {
			share = Round2(total * (subtotal / cartTotal))
			allocated += share
		}
		if share > subtotal {
			share = Round2(subtotal)
		}
		if share < 0 {
			share = 0
		}
		shares[i] = share
	}
	return shares
}

// CouponDiscount computes a coupon's total discount against a cart total:
// percentage capped by MaxDiscount when set, fixed capped at the cart total.
func CouponDiscount(coupon *models.Coupon, cartTotal float64) float64 {
	if coupon == nil || cartTotal <= 0 || !validAmount(cartTotal) {
		return 0
	}

	var amount float64
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		amount = cartTotal * math.Min(coupon.DiscountValue, 100) / 100
		if coupon.MaxDiscount > 0 {
			amount = math.Min(amount, coupon.MaxDiscount)
		}
	case models.DiscountFixed:
		amount = coupon.DiscountValue
	default:
		return 0
	}

	if amount < 0 || !validAmount(amount) {
		return 0
	}
	return Round2(math.Min(amount, cartTotal))
}

func priceable(it PriceableItem) bool {
	return it.Quantity >= 1 && it.UnitPrice >= 0 && validAmount(it.UnitPrice)
}

func itemKey(it PriceableItem, index int) string {
	if it.ProductID != "" {
		return it.ProductID
	}
	return "item-" + strconv.Itoa(index)
}
