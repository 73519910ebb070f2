package pricing

import "github.com/shopfront/pricing-service/internal/models"

// scopeRank orders offer scopes by specificity: the most narrowly targeted
// discount wins a tie.
var scopeRank = map[models.OfferScope]int{
	models.ScopeSpecificProducts:   4,
	models.ScopeSpecificCategories: 3,
	models.ScopeAllProducts:        2,
	models.ScopeAllCategories:      1,
}

// SelectBestOffer picks the single best offer for a product from a set of
// currently-active offers, by maximum discounted amount against the regular
// price. Offers are evaluated against the regular price, not any already
// discounted price, so comparisons stay independent of each other.
//
// The caller filters offers by activity and date window before invocation.
// The optional special offer (sale-price markdown, see SpecialOfferFor) is
// always a candidate regardless of scope matching. Returns nil when no
// candidate yields a positive discount.
func SelectBestOffer(productID, categoryID string, basePrice float64, offers []models.Offer, special *models.Offer) *models.Offer {
	var best *models.Offer
	var bestAmount float64

	consider := func(o *models.Offer) {
		res := CalculateDiscount(o, basePrice)
		if res.DiscountAmount <= 0 {
			return
		}
		switch {
		case best == nil, res.DiscountAmount > bestAmount:
			best, bestAmount = o, res.DiscountAmount
		case res.DiscountAmount == bestAmount && beats(o, best):
			best = o
		}
	}

	for i := range offers {
		if offers[i].AppliesTo(productID, categoryID) {
			consider(&offers[i])
		}
	}
	if special != nil {
		consider(special)
	}

	return best
}

// beats breaks a tie at equal discount: special offers beat admin offers,
// otherwise the more specific scope wins.
func beats(a, b *models.Offer) bool {
	if a.Special != b.Special {
		return a.Special
	}
	return scopeRank[a.Scope] > scopeRank[b.Scope]
}
