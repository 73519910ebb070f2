package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/shopfront/pricing-service/internal/models"
)

const falsePositiveRate = 0.01

// CouponCache holds coupons read during checkout, fronted by a bloom filter
// of known codes so lookups for codes that cannot exist skip storage
// entirely. The filter is seeded at startup and extended as coupons are
// created; false positives just fall through to storage.
type CouponCache struct {
	mu     sync.RWMutex
	store  map[string]*models.Coupon
	filter *bloom.BloomFilter
}

func NewCouponCache(expectedCodes uint) *CouponCache {
	if expectedCodes == 0 {
		expectedCodes = 1000
	}
	return &CouponCache{
		store:  make(map[string]*models.Coupon),
		filter: bloom.NewWithEstimates(expectedCodes, falsePositiveRate),
	}
}

// Seed registers known coupon codes with the prescreen filter.
func (c *CouponCache) Seed(codes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		c.filter.AddString(code)
	}
}

// MightExist reports whether a code could be a real coupon. A false result
// is definitive; a true result still needs a storage lookup.
func (c *CouponCache) MightExist(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter.TestString(code)
}

func (c *CouponCache) Get(code string) (*models.Coupon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coupon, ok := c.store[code]
	return coupon, ok
}

func (c *CouponCache) Set(coupon *models.Coupon) {
	if coupon == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[coupon.Code] = coupon
	c.filter.AddString(coupon.Code)
}
