package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/pricing"
	"github.com/shopfront/pricing-service/internal/repository"
)

var ErrNothingToCancel = errors.New("no matching active items to cancel")

// OrderService handles order retrieval and partial cancellation, including
// re-apportioning the coupon benefit across surviving items.
type OrderService struct {
	orders  repository.OrderRepository
	coupons *CouponService
	policy  pricing.ReapportionPolicy
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepository, coupons *CouponService, policy pricing.ReapportionPolicy) *OrderService {
	return &OrderService{
		orders:  orders,
		coupons: coupons,
		policy:  policy,
	}
}

// GetOrder returns an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// CancelItems marks the given products' lines as cancelled, re-apportions
// the coupon discount across the surviving lines per policy, and persists
// the updated order.
func (s *OrderService) CancelItems(ctx context.Context, orderID string, productIDs []string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	cancel := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		cancel[id] = true
	}

	cancelled := 0
	for i := range order.Items {
		line := &order.Items[i]
		if cancel[line.ProductID] && line.Status == models.ItemActive {
			line.Status = models.ItemCancelled
			cancelled++
		}
	}
	if cancelled == 0 {
		return nil, ErrNothingToCancel
	}

	if len(order.ActiveItems()) == 0 {
		// Full cancellation: nothing left to re-apportion onto.
		order.CouponDiscount = 0
		order.Subtotal = 0
		order.Tax = 0
		order.Total = 0
	} else if order.CouponCode != "" && order.CouponDiscount > 0 {
		coupon, err := s.coupons.Lookup(ctx, order.CouponCode)
		if err != nil && !errors.Is(err, repository.ErrCouponNotFound) {
			return nil, err
		}
		// A coupon deleted since checkout leaves the allocation as-is.
		pricing.ReapportionAfterCancellation(order, coupon, s.policy)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}
	return order, nil
}
