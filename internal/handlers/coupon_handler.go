package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopfront/pricing-service/internal/repository"
	"github.com/shopfront/pricing-service/internal/service"
)

// CouponEligibilityResponse is the eligibility preview for a coupon code
type CouponEligibilityResponse struct {
	Code          string  `json:"code"`
	Eligible      bool    `json:"eligible"`
	Reason        string  `json:"reason,omitempty"`
	DiscountType  string  `json:"discountType,omitempty"`
	DiscountValue float64 `json:"discountValue,omitempty"`
}

// CouponHandler handles coupon-related HTTP requests
type CouponHandler struct {
	coupons *service.CouponService
	log     *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *service.CouponService, log *slog.Logger) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		log:     log,
	}
}

// CheckEligibility handles GET /api/coupon/{couponCode}. Optional query
// parameters userId and orderTotal feed the usage-cap and minimum-order
// checks; without them the preview only validates the code itself.
func (h *CouponHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "couponCode")
	userID := r.URL.Query().Get("userId")

	orderTotal := 0.0
	if raw := r.URL.Query().Get("orderTotal"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "orderTotal must be a non-negative number")
			return
		}
		orderTotal = v
	}

	coupon, err := h.coupons.Validate(r.Context(), code, userID, orderTotal, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			writeError(w, http.StatusNotFound, "Coupon not found")
			return
		}
		if reason, ok := eligibilityReason(err); ok {
			writeJSON(w, http.StatusOK, CouponEligibilityResponse{
				Code:     code,
				Eligible: false,
				Reason:   reason,
			})
			return
		}
		h.log.Error("failed to check coupon eligibility", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CouponEligibilityResponse{
		Code:          coupon.Code,
		Eligible:      true,
		DiscountType:  string(coupon.DiscountType),
		DiscountValue: coupon.DiscountValue,
	})
}

// eligibilityReason maps a coupon eligibility error to a client-facing reason
func eligibilityReason(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrCouponInactive):
		return "coupon is not active", true
	case errors.Is(err, service.ErrCouponNotStarted):
		return "coupon is not yet valid", true
	case errors.Is(err, service.ErrCouponExpired):
		return "coupon has expired", true
	case errors.Is(err, service.ErrMinOrderNotMet):
		return "order total below coupon minimum", true
	case errors.Is(err, service.ErrCouponExhausted):
		return "coupon usage limit reached", true
	case errors.Is(err, service.ErrCouponUserLimit):
		return "coupon already used the maximum number of times", true
	}
	return "", false
}
