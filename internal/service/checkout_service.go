package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/repository"
)

// ErrInvalidCoupon wraps every coupon eligibility failure surfaced at
// checkout so handlers can treat them uniformly.
var ErrInvalidCoupon = errors.New("coupon code is not valid")

// CheckoutService turns a cart into a persisted, fully priced order: quotes
// each line post-offer, validates and apportions the coupon, computes tax
// and totals, and records coupon usage.
type CheckoutService struct {
	quotes  *QuoteService
	coupons *CouponService
	orders  repository.OrderRepository
	taxRate float64
	now     func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(quotes *QuoteService, coupons *CouponService, orders repository.OrderRepository, taxRate float64) *CheckoutService {
	return &CheckoutService{
		quotes:  quotes,
		coupons: coupons,
		orders:  orders,
		taxRate: taxRate,
		now:     time.Now,
	}
}

// CreateOrder validates and prices the request and persists the resulting order.
func (s *CheckoutService) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	quotes, err := s.quotes.QuoteCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := 0.0
	priceables := make([]pricing.PriceableItem, 0, len(quotes))
	for _, q := range quotes {
		subtotal += q.LineSubtotal
		priceables = append(priceables, pricing.PriceableItem{
			ProductID: q.Product.ID,
			Quantity:  q.Quantity,
			UnitPrice: q.Discount.FinalPrice,
		})
	}
	subtotal = pricing.Round2(subtotal)

	var coupon *models.Coupon
	if req.CouponCode != "" {
		coupon, err = s.coupons.Validate(ctx, req.CouponCode, req.UserID, subtotal, s.now())
		if err != nil {
			if errors.Is(err, repository.ErrCouponNotFound) || isEligibilityError(err) {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
			}
			return nil, err
		}
	}

	alloc := pricing.AllocateCouponDiscount(coupon, priceables)

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		CouponCode:     req.CouponCode,
		CouponDiscount: alloc.TotalDiscount,
		Subtotal:       subtotal,
		CreatedAt:      s.now().UTC(),
	}
	for _, q := range quotes {
		share := alloc.ItemDiscounts[q.Product.ID]
		order.Items = append(order.Items, models.OrderLine{
			ProductID:   q.Product.ID,
			Name:        q.Product.Name,
			Quantity:    q.Quantity,
			UnitPrice:   q.Discount.FinalPrice,
			Subtotal:    q.LineSubtotal,
			CouponShare: share.Amount,
			Proportion:  share.Proportion,
			FinalPrice:  pricing.Round2(q.LineSubtotal - share.Amount),
			Status:      models.ItemActive,
		})
	}

	discounted := subtotal - alloc.TotalDiscount
	order.Tax = pricing.Round2(discounted * s.taxRate)
	order.Total = pricing.Round2(discounted + order.Tax)

	// The usage increment holds the redemption slot under a row lock before
	// the order is written; a failed write releases the slot again so the
	// ledger never counts an order that does not exist.
	if coupon != nil {
		if err := s.coupons.Consume(ctx, coupon.Code, req.UserID); err != nil {
			return nil, fmt.Errorf("consume coupon %s: %w", coupon.Code, err)
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		persistErr := fmt.Errorf("persist order: %w", err)
		if coupon != nil {
			if relErr := s.coupons.Release(ctx, coupon.Code, req.UserID); relErr != nil {
				return nil, errors.Join(persistErr, fmt.Errorf("release coupon %s: %w", coupon.Code, relErr))
			}
		}
		return nil, persistErr
	}
	return order, nil
}

func isEligibilityError(err error) bool {
	for _, e := range []error{
		ErrCouponInactive, ErrCouponNotStarted, ErrCouponExpired,
		ErrMinOrderNotMet, ErrCouponExhausted, ErrCouponUserLimit,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
