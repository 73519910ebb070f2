package pricing

import "github.com/shopfront/pricing-service/internal/models"

// ReapportionPolicy controls when a coupon's benefit is concentrated onto the
// items surviving a partial cancellation, and how order totals are rebuilt.
type ReapportionPolicy struct {
	// ActiveFraction is the largest surviving share of the original item
	// count that still triggers re-apportionment. A single surviving item
	// always triggers it. The 0.5 default is inherited policy pending
	// product-owner confirmation, hence configurable.
	ActiveFraction float64
	// TaxRate applies to the post-discount subtotal when totals are rebuilt.
	TaxRate float64
}

// DefaultReapportionPolicy returns the stock policy: re-apply full benefit
// when at most half the items survive, 8% tax.
func DefaultReapportionPolicy() ReapportionPolicy {
	return ReapportionPolicy{ActiveFraction: 0.5, TaxRate: 0.08}
}

// ReapportionAfterCancellation redistributes an order's coupon discount
// across only its surviving items after a partial cancellation, so the
// benefit is not left stranded on cancelled lines.
//
// It is a no-op when the order carries no coupon discount, when nothing has
// been cancelled, when nothing survives, or when too many items survive per
// the policy. When it runs, it recomputes the coupon discount against the
// surviving subtotal, re-runs the proportional split, rewrites each surviving
// line's share/proportion/final price in place and rebuilds the order-level
// discount, tax, and total. A nil order or coupon returns the input
// unchanged.
func ReapportionAfterCancellation(order *models.Order, coupon *models.Coupon, policy ReapportionPolicy) *models.Order {
	if order == nil || coupon == nil {
		return order
	}
	if order.CouponDiscount <= 0 || len(order.Items) == 0 {
		return order
	}

	active := order.ActiveItems()
	if len(active) == 0 || len(active) == len(order.Items) {
		return order
	}

	fraction := policy.ActiveFraction
	if fraction <= 0 {
		fraction = 0.5
	}
	if len(active) > 1 && float64(len(active)) > fraction*float64(len(order.Items)) {
		return order
	}

	cartTotal := 0.0
	subtotals := make([]float64, len(active))
	for n, i := range active {
		subtotals[n] = order.Items[i].Subtotal
		cartTotal += subtotals[n]
	}
	if cartTotal <= 0 {
		return order
	}

	total := CouponDiscount(coupon, cartTotal)
	shares := proportionalShares(total, cartTotal, subtotals)

	discount := 0.0
	for n, i := range active {
		line := &order.Items[i]
		line.CouponShare = shares[n]
		line.Proportion = subtotals[n] / cartTotal
		line.FinalPrice = Round2(subtotals[n] - shares[n])
		discount += shares[n]
	}

	order.CouponDiscount = Round2(discount)
	order.Subtotal = Round2(cartTotal)
	discounted := cartTotal - order.CouponDiscount
	order.Tax = Round2(discounted * policy.TaxRate)
	order.Total = Round2(discounted + order.Tax)
	return order
}
