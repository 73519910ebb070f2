package repository

import (
	"context"
	"errors"

	"github.com/shopfront/pricing-service/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	products map[string]models.Product
}

// NewInMemoryProductRepository creates a new in-memory product repository with seed data
func NewInMemoryProductRepository() *InMemoryProductRepository {
	products := map[string]models.Product{
		"1":  {ID: "1", Name: "Aviator Sunglasses", CategoryID: "eyewear", RegularPrice: 89.99},
		"2":  {ID: "2", Name: "Wayfarer Sunglasses", CategoryID: "eyewear", RegularPrice: 74.99, SalePrice: 59.99},
		"3":  {ID: "3", Name: "Leather Belt", CategoryID: "accessories", RegularPrice: 34.99},
		"4":  {ID: "4", Name: "Canvas Tote", CategoryID: "bags", RegularPrice: 24.99},
		"5":  {ID: "5", Name: "Weekender Duffel", CategoryID: "bags", RegularPrice: 119.99, SalePrice: 99.99},
		"6":  {ID: "6", Name: "Wool Scarf", CategoryID: "accessories", RegularPrice: 29.99},
		"7":  {ID: "7", Name: "Trail Running Shoes", CategoryID: "footwear", RegularPrice: 129.99},
		"8":  {ID: "8", Name: "Slip-on Sneakers", CategoryID: "footwear", RegularPrice: 64.99},
		"9":  {ID: "9", Name: "Chronograph Watch", CategoryID: "accessories", RegularPrice: 249.99, SalePrice: 199.99},
		"10": {ID: "10", Name: "Baseball Cap", CategoryID: "accessories", RegularPrice: 19.99},
	}

	return &InMemoryProductRepository{
		products: products,
	}
}

// GetAll returns all products
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}
