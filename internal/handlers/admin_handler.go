package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/pricing-service/internal/models"
	"github.com/shopfront/pricing-service/internal/repository"
	"github.com/shopfront/pricing-service/internal/service"
)

// CreateOfferRequest is the admin payload for a new offer. Dates are RFC 3339.
type CreateOfferRequest struct {
	Name          string   `json:"name"`
	DiscountType  string   `json:"discountType"`
	DiscountValue float64  `json:"discountValue"`
	Scope         string   `json:"scope"`
	ProductIDs    []string `json:"productIds,omitempty"`
	CategoryIDs   []string `json:"categoryIds,omitempty"`
	StartsAt      string   `json:"startsAt"`
	EndsAt        string   `json:"endsAt"`
}

// CreateCouponRequest is the admin payload for a new coupon code
type CreateCouponRequest struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	MaxDiscount    float64 `json:"maxDiscount,omitempty"`
	MinOrderAmount float64 `json:"minOrderAmount,omitempty"`
	StartsAt       string  `json:"startsAt"`
	EndsAt         string  `json:"endsAt"`
	UsageLimit     int     `json:"usageLimit,omitempty"`
	PerUserLimit   int     `json:"perUserLimit,omitempty"`
}

// AdminHandler handles offer and coupon administration
type AdminHandler struct {
	offers  repository.OfferRepository
	coupons *service.CouponService
	log     *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(offers repository.OfferRepository, coupons *service.CouponService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		offers:  offers,
		coupons: coupons,
		log:     log,
	}
}

// CreateOffer handles POST /api/admin/offer
func (h *AdminHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	offer, err := req.toOffer()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.offers.Create(r.Context(), offer); err != nil {
		h.log.Error("failed to create offer", "name", req.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to create offer", h.log)
		return
	}

	h.log.Info("offer created", "offer_id", offer.ID, "scope", offer.Scope)
	WriteJSON(w, http.StatusCreated, offer, h.log)
}

// ListOffers handles GET /api/admin/offer, returning the offers active right now
func (h *AdminHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.GetActive(r.Context(), time.Now())
	if err != nil {
		h.log.Error("failed to list offers", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list offers", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, offers, h.log)
}

// ListCoupons handles GET /api/admin/coupon
func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	codes, err := h.coupons.Codes(r.Context())
	if err != nil {
		h.log.Error("failed to list coupon codes", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list coupons", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string][]string{"codes": codes}, h.log)
}

// CreateCoupon handles POST /api/admin/coupon
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	coupon, err := req.toCoupon()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.coupons.Register(r.Context(), coupon); err != nil {
		h.log.Error("failed to create coupon", "code", coupon.Code, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to create coupon", h.log)
		return
	}

	h.log.Info("coupon created", "code", coupon.Code)
	WriteJSON(w, http.StatusCreated, coupon, h.log)
}

func (r *CreateOfferRequest) toOffer() (*models.Offer, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	dt, err := parseDiscountType(r.DiscountType)
	if err != nil {
		return nil, err
	}
	if err := validateDiscountValue(dt, r.DiscountValue); err != nil {
		return nil, err
	}

	scope := models.OfferScope(r.Scope)
	switch scope {
	case models.ScopeAllProducts, models.ScopeAllCategories:
		if len(r.ProductIDs) > 0 || len(r.CategoryIDs) > 0 {
			return nil, fmt.Errorf("scope %s does not take target ids", scope)
		}
	case models.ScopeSpecificProducts:
		if len(r.ProductIDs) == 0 {
			return nil, fmt.Errorf("scope %s requires productIds", scope)
		}
	case models.ScopeSpecificCategories:
		if len(r.CategoryIDs) == 0 {
			return nil, fmt.Errorf("scope %s requires categoryIds", scope)
		}
	default:
		return nil, fmt.Errorf("unknown scope %q", r.Scope)
	}

	startsAt, endsAt, err := parseWindow(r.StartsAt, r.EndsAt)
	if err != nil {
		return nil, err
	}

	return &models.Offer{
		ID:            uuid.New().String(),
		Name:          r.Name,
		DiscountType:  dt,
		DiscountValue: r.DiscountValue,
		Scope:         scope,
		ProductIDs:    r.ProductIDs,
		CategoryIDs:   r.CategoryIDs,
		IsActive:      true,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
	}, nil
}

func (r *CreateCouponRequest) toCoupon() (*models.Coupon, error) {
	if strings.TrimSpace(r.Code) == "" {
		return nil, fmt.Errorf("code is required")
	}
	dt, err := parseDiscountType(r.DiscountType)
	if err != nil {
		return nil, err
	}
	if err := validateDiscountValue(dt, r.DiscountValue); err != nil {
		return nil, err
	}
	if r.MaxDiscount < 0 || r.MinOrderAmount < 0 {
		return nil, fmt.Errorf("maxDiscount and minOrderAmount must be non-negative")
	}
	if r.UsageLimit < 0 || r.PerUserLimit < 0 {
		return nil, fmt.Errorf("usageLimit and perUserLimit must be non-negative")
	}

	startsAt, endsAt, err := parseWindow(r.StartsAt, r.EndsAt)
	if err != nil {
		return nil, err
	}

	return &models.Coupon{
		Code:           strings.ToUpper(strings.TrimSpace(r.Code)),
		DiscountType:   dt,
		DiscountValue:  r.DiscountValue,
		MaxDiscount:    r.MaxDiscount,
		MinOrderAmount: r.MinOrderAmount,
		IsActive:       true,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		UsageLimit:     r.UsageLimit,
		PerUserLimit:   r.PerUserLimit,
	}, nil
}

func parseDiscountType(raw string) (models.DiscountType, error) {
	switch dt := models.DiscountType(raw); dt {
	case models.DiscountPercentage, models.DiscountFixed:
		return dt, nil
	default:
		return "", fmt.Errorf("unknown discount type %q", raw)
	}
}

func validateDiscountValue(dt models.DiscountType, value float64) error {
	if value <= 0 {
		return fmt.Errorf("discountValue must be positive")
	}
	if dt == models.DiscountPercentage && value > 100 {
		return fmt.Errorf("percentage discount cannot exceed 100")
	}
	return nil
}

func parseWindow(startsAt, endsAt string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("startsAt must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, endsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("endsAt must be RFC 3339")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("endsAt must be after startsAt")
	}
	return start, end, nil
}
