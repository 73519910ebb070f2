package models

import "time"

// OrderItemStatus tracks the lifecycle of a single order line
type OrderItemStatus string

const (
	ItemActive    OrderItemStatus = "active"
	ItemCancelled OrderItemStatus = "cancelled"
)

// OrderRequest represents an incoming checkout request
type OrderRequest struct {
	UserID     string      `json:"userId"`
	CouponCode string      `json:"couponCode,omitempty"`
	Items      []OrderItem `json:"items"`
}

// OrderItem represents a single item in an order request
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderLine is a priced, persisted order line. UnitPrice is the post-offer
// unit price; CouponShare is this line's slice of the order-level coupon
// discount and FinalPrice is Subtotal minus that share.
type OrderLine struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unitPrice"`
	Subtotal    float64         `json:"subtotal"`
	CouponShare float64         `json:"couponShare"`
	Proportion  float64         `json:"proportion"`
	FinalPrice  float64         `json:"finalPrice"`
	Status      OrderItemStatus `json:"status"`
}

// Order represents a confirmed, priced order
type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	Items          []OrderLine `json:"items"`
	CouponCode     string      `json:"couponCode,omitempty"`
	CouponDiscount float64     `json:"couponDiscount"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Total          float64     `json:"total"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ActiveItems returns the indices of lines that have not been cancelled.
func (o *Order) ActiveItems() []int {
	active := make([]int, 0, len(o.Items))
	for i := range o.Items {
		if o.Items[i].Status != ItemCancelled {
			active = append(active, i)
		}
	}
	return active
}
