package handlers

import (
	"context"
	"time"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
)

type fakeOfferRepo struct {
	offers  []models.Offer
	created []models.Offer
}

func (f *fakeOfferRepo) GetActive(ctx context.Context, now time.Time) ([]models.Offer, error) {
	return f.offers, nil
}

func (f *fakeOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	f.created = append(f.created, *offer)
	return nil
}

type fakeCouponRepo struct {
	coupons map[string]*models.Coupon
	usage   map[string]map[string]int
}

func newFakeCouponRepo(coupons ...*models.Coupon) *fakeCouponRepo {
	f := &fakeCouponRepo{
		coupons: make(map[string]*models.Coupon),
		usage:   make(map[string]map[string]int),
	}
	for _, c := range coupons {
		f.coupons[c.Code] = c
	}
	return f
}

func (f *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, ok := f.coupons[code]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	return coupon, nil
}

func (f *fakeCouponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	f.coupons[coupon.Code] = coupon
	return nil
}

func (f *fakeCouponRepo) Usage(ctx context.Context, code, userID string) (repository.CouponUsage, error) {
	var usage repository.CouponUsage
	for user, count := range f.usage[code] {
		usage.Total += count
		if user == userID {
			usage.ByUser = count
		}
	}
	return usage, nil
}

func (f *fakeCouponRepo) ConsumeUsage(ctx context.Context, code, userID string) error {
	if f.usage[code] == nil {
		f.usage[code] = make(map[string]int)
	}
	f.usage[code][userID]++
	return nil
}

func (f *fakeCouponRepo) ReleaseUsage(ctx context.Context, code, userID string) error {
	if f.usage[code] != nil && f.usage[code][userID] > 0 {
		f.usage[code][userID]--
	}
	return nil
}

func (f *fakeCouponRepo) ListCodes(ctx context.Context) ([]string, error) {
	codes := make([]string, 0, len(f.coupons))
	for code := range f.coupons {
		codes = append(codes, code)
	}
	return codes, nil
}

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	f.orders[order.ID] = order
	return nil
}
