package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfront/pricing-service/internal/models"
)

// CouponUsage is a snapshot of a coupon's redemption counters.
type CouponUsage struct {
	Total  int
	ByUser int
}

// CouponRepository defines the interface for coupon data access and the
// usage ledger. ConsumeUsage is the only write path for redemptions and is
// concurrency-safe; ReleaseUsage undoes one redemption when the order it
// belonged to could not be persisted.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Usage(ctx context.Context, code, userID string) (CouponUsage, error)
	ConsumeUsage(ctx context.Context, code, userID string) error
	ReleaseUsage(ctx context.Context, code, userID string) error
	ListCodes(ctx context.Context) ([]string, error)
}

// PostgresCouponRepository implements CouponRepository backed by Postgres
type PostgresCouponRepository struct {
	db *sql.DB
}

func NewPostgresCouponRepository(db *sql.DB) *PostgresCouponRepository {
	return &PostgresCouponRepository{db: db}
}

func (r *PostgresCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT code, discount_type, discount_value, COALESCE(max_discount, 0),
		       min_order_amount, is_active, starts_at, ends_at,
		       COALESCE(usage_limit, 0), COALESCE(per_user_limit, 0)
		FROM coupons
		WHERE code = $1
	`
	var c models.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscount,
		&c.MinOrderAmount, &c.IsActive, &c.StartsAt, &c.EndsAt,
		&c.UsageLimit, &c.PerUserLimit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon %s: %w", code, err)
	}
	return &c, nil
}

func (r *PostgresCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	insert := `
		INSERT INTO coupons
		(code, discount_type, discount_value, max_discount, min_order_amount,
		 is_active, starts_at, ends_at, usage_limit, per_user_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, insert,
		coupon.Code, coupon.DiscountType, coupon.DiscountValue, coupon.MaxDiscount,
		coupon.MinOrderAmount, coupon.IsActive, coupon.StartsAt, coupon.EndsAt,
		coupon.UsageLimit, coupon.PerUserLimit,
	)
	if err != nil {
		return fmt.Errorf("insert coupon %s: %w", coupon.Code, err)
	}
	return nil
}

// Usage reads the redemption counters without locking.
func (r *PostgresCouponRepository) Usage(ctx context.Context, code, userID string) (CouponUsage, error) {
	var usage CouponUsage

	totalQ := `SELECT COALESCE(SUM(usage_count), 0) FROM coupon_usage WHERE coupon_code = $1`
	if err := r.db.QueryRowContext(ctx, totalQ, code).Scan(&usage.Total); err != nil {
		return usage, fmt.Errorf("coupon %s total usage: %w", code, err)
	}

	userQ := `SELECT usage_count FROM coupon_usage WHERE coupon_code = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, userQ, code, userID).Scan(&usage.ByUser)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return usage, fmt.Errorf("coupon %s user usage: %w", code, err)
	}
	return usage, nil
}

// ConsumeUsage increments the user's redemption counter inside a transaction
// holding a row lock, so concurrent checkouts cannot double-spend a cap.
func (r *PostgresCouponRepository) ConsumeUsage(ctx context.Context, code, userID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lock := `
		SELECT usage_count FROM coupon_usage
		WHERE coupon_code = $1 AND user_id = $2
		FOR UPDATE
	`
	var count int
	err = tx.QueryRowContext(ctx, lock, code, userID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		insert := `
			INSERT INTO coupon_usage (coupon_code, user_id, usage_count, last_used)
			VALUES ($1, $2, 1, NOW())
		`
		if _, err := tx.ExecContext(ctx, insert, code, userID); err != nil {
			return fmt.Errorf("insert usage: %w", err)
		}
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("lock usage: %w", err)
	}

	update := `
		UPDATE coupon_usage
		SET usage_count = usage_count + 1, last_used = NOW()
		WHERE coupon_code = $1 AND user_id = $2
	`
	if _, err := tx.ExecContext(ctx, update, code, userID); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return tx.Commit()
}

// ReleaseUsage decrements the user's redemption counter, compensating a
// ConsumeUsage whose order never made it to storage. The counter never goes
// below zero.
func (r *PostgresCouponRepository) ReleaseUsage(ctx context.Context, code, userID string) error {
	update := `
		UPDATE coupon_usage
		SET usage_count = usage_count - 1
		WHERE coupon_code = $1 AND user_id = $2 AND usage_count > 0
	`
	if _, err := r.db.ExecContext(ctx, update, code, userID); err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	return nil
}

// ListCodes returns every coupon code, used to seed the cache prescreen.
func (r *PostgresCouponRepository) ListCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM coupons`)
	if err != nil {
		return nil, fmt.Errorf("list coupon codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
