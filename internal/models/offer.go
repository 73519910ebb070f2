package models

import "time"

// DiscountType identifies how a discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// OfferScope identifies which products an offer applies to
type OfferScope string

const (
	ScopeAllProducts        OfferScope = "all_products"
	ScopeSpecificProducts   OfferScope = "specific_products"
	ScopeAllCategories      OfferScope = "all_categories"
	ScopeSpecificCategories OfferScope = "specific_categories"
)

// Offer is an admin-configured discount rule, active within a date window.
// Exactly one of ProductIDs/CategoryIDs is populated, and only when Scope is
// the matching "specific" kind.
type Offer struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	Scope         OfferScope   `json:"scope"`
	ProductIDs    []string     `json:"productIds,omitempty"`
	CategoryIDs   []string     `json:"categoryIds,omitempty"`
	IsActive      bool         `json:"isActive"`
	StartsAt      time.Time    `json:"startsAt"`
	EndsAt        time.Time    `json:"endsAt"`
	// Special marks a synthetic offer derived from a product's own sale
	// price rather than an admin-configured rule. Special offers win ties
	// against admin offers of equal discount.
	Special bool `json:"special,omitempty"`
}

// AppliesTo reports whether the offer's scope covers the given product and
// category. It does not check activity or the date window; callers are
// expected to pass offers already filtered to the current instant.
func (o *Offer) AppliesTo(productID, categoryID string) bool {
	switch o.Scope {
	case ScopeAllProducts, ScopeAllCategories:
		return true
	case ScopeSpecificProducts:
		for _, id := range o.ProductIDs {
			if id == productID {
				return true
			}
		}
	case ScopeSpecificCategories:
		for _, id := range o.CategoryIDs {
			if id == categoryID {
				return true
			}
		}
	}
	return false
}
