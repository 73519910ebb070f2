package models

import "time"

// Coupon is a cart-level discount code subject to a minimum order amount and
// usage caps. MaxDiscount caps percentage coupons only; zero means no cap.
type Coupon struct {
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  float64      `json:"discountValue"`
	MaxDiscount    float64      `json:"maxDiscount,omitempty"`
	MinOrderAmount float64      `json:"minOrderAmount"`
	IsActive       bool         `json:"isActive"`
	StartsAt       time.Time    `json:"startsAt"`
	EndsAt         time.Time    `json:"endsAt"`
	// UsageLimit caps redemptions across all users; PerUserLimit caps
	// redemptions per user. Zero means unlimited.
	UsageLimit   int `json:"usageLimit,omitempty"`
	PerUserLimit int `json:"perUserLimit,omitempty"`
}
