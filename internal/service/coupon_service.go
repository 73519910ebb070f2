package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopfront/pricing-service/internal/cache"
	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
)

var (
	ErrCouponInactive   = errors.New("coupon is not active")
	ErrCouponNotStarted = errors.New("coupon is not yet valid")
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrMinOrderNotMet   = errors.New("order total below coupon minimum")
	ErrCouponExhausted  = errors.New("coupon usage limit reached")
	ErrCouponUserLimit  = errors.New("coupon already used the maximum number of times")
)

// CouponService owns coupon eligibility. The pricing core only performs the
// arithmetic split; every business check (window, minimum order, usage caps)
// happens here before a coupon reaches the allocator.
type CouponService struct {
	repo  repository.CouponRepository
	cache *cache.CouponCache
}

// NewCouponService creates a new coupon service. The cache is optional.
func NewCouponService(repo repository.CouponRepository, c *cache.CouponCache) *CouponService {
	return &CouponService{
		repo:  repo,
		cache: c,
	}
}

// Lookup fetches a coupon, going through the cache prescreen first so junk
// codes never reach storage.
func (s *CouponService) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	if s.cache != nil {
		if !s.cache.MightExist(code) {
			return nil, repository.ErrCouponNotFound
		}
		if coupon, ok := s.cache.Get(code); ok {
			return coupon, nil
		}
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(coupon)
	}
	return coupon, nil
}

// Validate checks a coupon's eligibility against an order total at the given
// instant and returns the coupon when every check passes.
func (s *CouponService) Validate(ctx context.Context, code, userID string, orderTotal float64, now time.Time) (*models.Coupon, error) {
	coupon, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if now.Before(coupon.StartsAt) {
		return nil, ErrCouponNotStarted
	}
	if now.After(coupon.EndsAt) {
		return nil, ErrCouponExpired
	}
	if orderTotal < coupon.MinOrderAmount {
		return nil, ErrMinOrderNotMet
	}

	if coupon.UsageLimit > 0 || coupon.PerUserLimit > 0 {
		usage, err := s.repo.Usage(ctx, code, userID)
		if err != nil {
			return nil, err
		}
		if coupon.UsageLimit > 0 && usage.Total >= coupon.UsageLimit {
			return nil, ErrCouponExhausted
		}
		if coupon.PerUserLimit > 0 && usage.ByUser >= coupon.PerUserLimit {
			return nil, ErrCouponUserLimit
		}
	}

	return coupon, nil
}

// Consume records a redemption against the usage ledger.
func (s *CouponService) Consume(ctx context.Context, code, userID string) error {
	return s.repo.ConsumeUsage(ctx, code, userID)
}

// Release undoes a redemption whose checkout did not complete.
func (s *CouponService) Release(ctx context.Context, code, userID string) error {
	return s.repo.ReleaseUsage(ctx, code, userID)
}

// Codes lists every stored coupon code.
func (s *CouponService) Codes(ctx context.Context) ([]string, error) {
	return s.repo.ListCodes(ctx)
}

// Register stores a new coupon and makes it visible to the cache prescreen.
func (s *CouponService) Register(ctx context.Context, coupon *models.Coupon) error {
	if err := s.repo.Create(ctx, coupon); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Set(coupon)
	}
	return nil
}
