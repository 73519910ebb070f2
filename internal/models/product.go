package models

// Product represents a catalog product available for purchase
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CategoryID   string  `json:"categoryId"`
	RegularPrice float64 `json:"regularPrice"`
	// SalePrice is an optional markdown maintained on the product itself.
	// Zero means no sale price is set. A sale price below the regular price
	// competes with admin offers as a synthetic special offer.
	SalePrice float64 `json:"salePrice,omitempty"`
}

// OnSale reports whether the product carries a markdown below its regular price.
func (p *Product) OnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.RegularPrice
}
