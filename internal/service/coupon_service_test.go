package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/pricing-service/internal/cache"
	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
)

func testCoupon() *models.Coupon {
	return &models.Coupon{
		Code:           "SAVE20",
		DiscountType:   models.DiscountFixed,
		DiscountValue:  20,
		MinOrderAmount: 100,
		IsActive:       true,
		StartsAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:         time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		UsageLimit:     3,
		PerUserLimit:   1,
	}
}

func TestCouponService_Validate(t *testing.T) {
	inWindow := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		coupon     *models.Coupon
		orderTotal float64
		now        time.Time
		wantErr    error
	}{
		{
			name:       "eligible",
			coupon:     testCoupon(),
			orderTotal: 150,
			now:        inWindow,
			wantErr:    nil,
		},
		{
			name: "inactive",
			coupon: func() *models.Coupon {
				c := testCoupon()
				c.IsActive = false
				return c
			}(),
			orderTotal: 150,
			now:        inWindow,
			wantErr:    ErrCouponInactive,
		},
		{
			name:       "before window",
			coupon:     testCoupon(),
			orderTotal: 150,
			now:        time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			wantErr:    ErrCouponNotStarted,
		},
		{
			name:       "after window",
			coupon:     testCoupon(),
			orderTotal: 150,
			now:        time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			wantErr:    ErrCouponExpired,
		},
		{
			name:       "below minimum order",
			coupon:     testCoupon(),
			orderTotal: 99.99,
			now:        inWindow,
			wantErr:    ErrMinOrderNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCouponService(newFakeCouponRepo(tt.coupon), nil)

			got, err := svc.Validate(context.Background(), tt.coupon.Code, "u1", tt.orderTotal, tt.now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.coupon.Code, got.Code)
		})
	}
}

func TestCouponService_Validate_UsageCaps(t *testing.T) {
	inWindow := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("per-user cap", func(t *testing.T) {
		repo := newFakeCouponRepo(testCoupon())
		svc := NewCouponService(repo, nil)
		require.NoError(t, svc.Consume(context.Background(), "SAVE20", "u1"))

		_, err := svc.Validate(context.Background(), "SAVE20", "u1", 150, inWindow)
		assert.ErrorIs(t, err, ErrCouponUserLimit)

		// A different user is unaffected.
		_, err = svc.Validate(context.Background(), "SAVE20", "u2", 150, inWindow)
		assert.NoError(t, err)
	})

	t.Run("global cap", func(t *testing.T) {
		repo := newFakeCouponRepo(testCoupon())
		svc := NewCouponService(repo, nil)
		for _, user := range []string{"u1", "u2", "u3"} {
			require.NoError(t, svc.Consume(context.Background(), "SAVE20", user))
		}

		_, err := svc.Validate(context.Background(), "SAVE20", "u4", 150, inWindow)
		assert.ErrorIs(t, err, ErrCouponExhausted)
	})
}

func TestCouponService_Lookup_Cache(t *testing.T) {
	repo := newFakeCouponRepo(testCoupon())
	c := cache.NewCouponCache(10)
	codes, err := repo.ListCodes(context.Background())
	require.NoError(t, err)
	c.Seed(codes)

	svc := NewCouponService(repo, c)

	t.Run("prescreen rejects junk codes without a storage hit", func(t *testing.T) {
		_, err := svc.Lookup(context.Background(), "nope-definitely-not-seeded-0987654321")
		assert.ErrorIs(t, err, repository.ErrCouponNotFound)
	})

	t.Run("lookup populates the cache", func(t *testing.T) {
		got, err := svc.Lookup(context.Background(), "SAVE20")
		require.NoError(t, err)
		assert.Equal(t, "SAVE20", got.Code)

		cached, ok := c.Get("SAVE20")
		require.True(t, ok)
		assert.Equal(t, got, cached)
	})
}

func TestCouponService_Register(t *testing.T) {
	repo := newFakeCouponRepo()
	c := cache.NewCouponCache(10)
	svc := NewCouponService(repo, c)

	coupon := testCoupon()
	require.NoError(t, svc.Register(context.Background(), coupon))

	assert.True(t, c.MightExist("SAVE20"))
	got, err := svc.Lookup(context.Background(), "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, coupon, got)
}
