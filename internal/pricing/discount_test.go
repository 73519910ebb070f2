package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/pricing-service/internal/models"
)

func percentOffer(value float64) *models.Offer {
	return &models.Offer{
		ID:            "o-pct",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: value,
		Scope:         models.ScopeAllProducts,
		IsActive:      true,
	}
}

func fixedOffer(value float64) *models.Offer {
	return &models.Offer{
		ID:            "o-fixed",
		DiscountType:  models.DiscountFixed,
		DiscountValue: value,
		Scope:         models.ScopeAllProducts,
		IsActive:      true,
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name           string
		offer          *models.Offer
		price          float64
		wantAmount     float64
		wantPercentage float64
		wantFinal      float64
	}{
		{
			name:           "20 percent off 1000",
			offer:          percentOffer(20),
			price:          1000.00,
			wantAmount:     200.00,
			wantPercentage: 20.00,
			wantFinal:      800.00,
		},
		{
			name:           "fixed 150 off 1000",
			offer:          fixedOffer(150),
			price:          1000.00,
			wantAmount:     150.00,
			wantPercentage: 15.00,
			wantFinal:      850.00,
		},
		{
			name:           "fixed discount exceeding price clamps",
			offer:          fixedOffer(500),
			price:          300.00,
			wantAmount:     300.00,
			wantPercentage: 100.00,
			wantFinal:      0.00,
		},
		{
			name:           "percentage above 100 caps at 100",
			offer:          percentOffer(150),
			price:          80.00,
			wantAmount:     80.00,
			wantPercentage: 100.00,
			wantFinal:      0.00,
		},
		{
			name:           "nil offer is a zero discount",
			offer:          nil,
			price:          49.99,
			wantAmount:     0,
			wantPercentage: 0,
			wantFinal:      49.99,
		},
		{
			name:           "zero price is a zero discount",
			offer:          percentOffer(20),
			price:          0,
			wantAmount:     0,
			wantPercentage: 0,
			wantFinal:      0,
		},
		{
			name:           "negative price floors at zero",
			offer:          fixedOffer(10),
			price:          -5,
			wantAmount:     0,
			wantPercentage: 0,
			wantFinal:      0,
		},
		{
			name:           "negative discount value is ignored",
			offer:          fixedOffer(-10),
			price:          100,
			wantAmount:     0,
			wantPercentage: 0,
			wantFinal:      100,
		},
		{
			name:           "result is rounded to cents",
			offer:          percentOffer(15),
			price:          33.33,
			wantAmount:     5.00, // 4.9995 rounds half-up
			wantPercentage: 15.00,
			wantFinal:      28.33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDiscount(tt.offer, tt.price)

			assert.Equal(t, tt.wantAmount, got.DiscountAmount)
			assert.Equal(t, tt.wantPercentage, got.DiscountPercentage)
			assert.Equal(t, tt.wantFinal, got.FinalPrice)
		})
	}
}

func TestCalculateDiscount_Bounds(t *testing.T) {
	offers := []*models.Offer{
		percentOffer(0), percentOffer(7.5), percentOffer(33), percentOffer(100), percentOffer(250),
		fixedOffer(0.01), fixedOffer(9.99), fixedOffer(100), fixedOffer(10000),
	}
	prices := []float64{0.01, 0.99, 10, 33.33, 199.95, 1000}

	for _, offer := range offers {
		for _, price := range prices {
			got := CalculateDiscount(offer, price)

			assert.GreaterOrEqual(t, got.DiscountAmount, 0.0)
			assert.LessOrEqual(t, got.DiscountAmount, price)
			assert.GreaterOrEqual(t, got.FinalPrice, 0.0)
			assert.LessOrEqual(t, got.FinalPrice, price)
			assert.GreaterOrEqual(t, got.DiscountPercentage, 0.0)
			assert.LessOrEqual(t, got.DiscountPercentage, 100.0)
		}
	}
}

func TestCalculateDiscount_Pure(t *testing.T) {
	offer := percentOffer(12.5)

	first := CalculateDiscount(offer, 249.99)
	second := CalculateDiscount(offer, 249.99)

	assert.Equal(t, first, second)
}

func TestCalculateDiscount_NaNPrice(t *testing.T) {
	got := CalculateDiscount(percentOffer(20), math.NaN())

	assert.Equal(t, DiscountResult{}, got)
}

func TestSpecialOfferFor(t *testing.T) {
	t.Run("product on sale", func(t *testing.T) {
		p := &models.Product{ID: "p1", RegularPrice: 100, SalePrice: 79.99}

		offer := SpecialOfferFor(p)

		require.NotNil(t, offer)
		assert.True(t, offer.Special)
		assert.Equal(t, models.DiscountFixed, offer.DiscountType)
		assert.Equal(t, 20.01, offer.DiscountValue)
		assert.Equal(t, []string{"p1"}, offer.ProductIDs)
	})

	t.Run("no sale price", func(t *testing.T) {
		p := &models.Product{ID: "p1", RegularPrice: 100}

		assert.Nil(t, SpecialOfferFor(p))
	})

	t.Run("sale price at or above regular", func(t *testing.T) {
		p := &models.Product{ID: "p1", RegularPrice: 100, SalePrice: 100}

		assert.Nil(t, SpecialOfferFor(p))
	})

	t.Run("nil product", func(t *testing.T) {
		assert.Nil(t, SpecialOfferFor(nil))
	})
}
