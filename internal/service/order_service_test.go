package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/repository"
)

// seedOrder persists a 4-line order carrying a fixed 80 coupon split evenly.
func seedOrder(t *testing.T, orders *fakeOrderRepo) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         "ord-1",
		UserID:     "u1",
		CouponCode: "SAVE80",
		Items: []models.OrderLine{
			{ProductID: "a", Quantity: 1, UnitPrice: 200, Subtotal: 200, CouponShare: 20, Proportion: 0.25, FinalPrice: 180, Status: models.ItemActive},
			{ProductID: "b", Quantity: 1, UnitPrice: 200, Subtotal: 200, CouponShare: 20, Proportion: 0.25, FinalPrice: 180, Status: models.ItemActive},
			{ProductID: "c", Quantity: 1, UnitPrice: 200, Subtotal: 200, CouponShare: 20, Proportion: 0.25, FinalPrice: 180, Status: models.ItemActive},
			{ProductID: "d", Quantity: 1, UnitPrice: 200, Subtotal: 200, CouponShare: 20, Proportion: 0.25, FinalPrice: 180, Status: models.ItemActive},
		},
		CouponDiscount: 80,
		Subtotal:       800,
		Tax:            57.60,
		Total:          777.60,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, orders.Create(context.Background(), order))
	return order
}

func cancellationFixture(t *testing.T) (*OrderService, *fakeOrderRepo) {
	t.Helper()

	orders := newFakeOrderRepo()
	coupon := &models.Coupon{
		Code:          "SAVE80",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 80,
		IsActive:      true,
	}
	coupons := NewCouponService(newFakeCouponRepo(coupon), nil)
	return NewOrderService(orders, coupons, pricing.DefaultReapportionPolicy()), orders
}

func TestCancelItems_ReapportionsOntoSurvivor(t *testing.T) {
	svc, orders := cancellationFixture(t)
	seedOrder(t, orders)

	got, err := svc.CancelItems(context.Background(), "ord-1", []string{"b", "c", "d"})

	require.NoError(t, err)
	survivor := got.Items[0]
	assert.Equal(t, models.ItemActive, survivor.Status)
	assert.Equal(t, 80.00, survivor.CouponShare)
	assert.Equal(t, 120.00, survivor.FinalPrice)
	assert.Equal(t, 80.00, got.CouponDiscount)
	assert.Equal(t, 200.00, got.Subtotal)
	assert.Equal(t, 9.60, got.Tax)
	assert.Equal(t, 129.60, got.Total)

	// The update was persisted.
	stored, err := orders.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, 129.60, stored.Total)
}

func TestCancelItems_MinorCancellationKeepsAllocation(t *testing.T) {
	svc, orders := cancellationFixture(t)
	seedOrder(t, orders)

	got, err := svc.CancelItems(context.Background(), "ord-1", []string{"d"})

	require.NoError(t, err)
	assert.Equal(t, models.ItemCancelled, got.Items[3].Status)
	// Three of four survive: above the re-apportion threshold, shares stand.
	assert.Equal(t, 20.00, got.Items[0].CouponShare)
	assert.Equal(t, 80.00, got.CouponDiscount)
}

func TestCancelItems_FullCancellationZeroesTotals(t *testing.T) {
	svc, orders := cancellationFixture(t)
	seedOrder(t, orders)

	got, err := svc.CancelItems(context.Background(), "ord-1", []string{"a", "b", "c", "d"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, got.CouponDiscount)
	assert.Equal(t, 0.0, got.Subtotal)
	assert.Equal(t, 0.0, got.Tax)
	assert.Equal(t, 0.0, got.Total)
}

func TestCancelItems_Errors(t *testing.T) {
	svc, orders := cancellationFixture(t)
	seedOrder(t, orders)

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.CancelItems(context.Background(), "nope", []string{"a"})
		assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	})

	t.Run("no matching items", func(t *testing.T) {
		_, err := svc.CancelItems(context.Background(), "ord-1", []string{"zzz"})
		assert.ErrorIs(t, err, ErrNothingToCancel)
	})

	t.Run("already cancelled items do not count", func(t *testing.T) {
		_, err := svc.CancelItems(context.Background(), "ord-1", []string{"d"})
		require.NoError(t, err)

		_, err = svc.CancelItems(context.Background(), "ord-1", []string{"d"})
		assert.ErrorIs(t, err, ErrNothingToCancel)
	})
}
