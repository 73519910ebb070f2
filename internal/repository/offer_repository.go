package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/shopfront/pricing-service/internal/models"
)

// OfferRepository defines the interface for offer data access. GetActive
// performs the activity and date-window filtering so the pricing core only
// ever sees offers valid at the given instant.
type OfferRepository interface {
	GetActive(ctx context.Context, now time.Time) ([]models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
}

// PostgresOfferRepository implements OfferRepository backed by Postgres,
// with scope target sets held in side tables.
type PostgresOfferRepository struct {
	db *sql.DB
}

func NewPostgresOfferRepository(db *sql.DB) *PostgresOfferRepository {
	return &PostgresOfferRepository{db: db}
}

// GetActive returns offers that are active and whose validity window
// contains now (starts_at <= now <= ends_at), with target sets populated.
func (r *PostgresOfferRepository) GetActive(ctx context.Context, now time.Time) ([]models.Offer, error) {
	query := `
		SELECT id, name, discount_type, discount_value, scope, starts_at, ends_at
		FROM offers
		WHERE is_active = TRUE AND starts_at <= $1 AND ends_at >= $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		o.IsActive = true
		if err := rows.Scan(&o.ID, &o.Name, &o.DiscountType, &o.DiscountValue, &o.Scope, &o.StartsAt, &o.EndsAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range offers {
		if err := r.loadTargets(ctx, &offers[i]); err != nil {
			return nil, err
		}
	}
	return offers, nil
}

func (r *PostgresOfferRepository) loadTargets(ctx context.Context, o *models.Offer) error {
	switch o.Scope {
	case models.ScopeSpecificProducts:
		ids, err := r.targetIDs(ctx, `SELECT product_id FROM offer_products WHERE offer_id = $1`, o.ID)
		if err != nil {
			return fmt.Errorf("offer %s products: %w", o.ID, err)
		}
		o.ProductIDs = ids
	case models.ScopeSpecificCategories:
		ids, err := r.targetIDs(ctx, `SELECT category_id FROM offer_categories WHERE offer_id = $1`, o.ID)
		if err != nil {
			return fmt.Errorf("offer %s categories: %w", o.ID, err)
		}
		o.CategoryIDs = ids
	}
	return nil
}

func (r *PostgresOfferRepository) targetIDs(ctx context.Context, query, offerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts an offer and its scope target set in one transaction.
func (r *PostgresOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := `
		INSERT INTO offers (id, name, discount_type, discount_value, scope, is_active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insert,
		offer.ID, offer.Name, offer.DiscountType, offer.DiscountValue,
		offer.Scope, offer.IsActive, offer.StartsAt, offer.EndsAt,
	); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("offer %s already exists: %w", offer.ID, err)
		}
		return fmt.Errorf("insert offer: %w", err)
	}

	if len(offer.ProductIDs) > 0 {
		stmt := `INSERT INTO offer_products (offer_id, product_id) VALUES ($1, $2)`
		for _, id := range offer.ProductIDs {
			if _, err := tx.ExecContext(ctx, stmt, offer.ID, id); err != nil {
				return fmt.Errorf("insert offer product %s: %w", id, err)
			}
		}
	}
	if len(offer.CategoryIDs) > 0 {
		stmt := `INSERT INTO offer_categories (offer_id, category_id) VALUES ($1, $2)`
		for _, id := range offer.CategoryIDs {
			if _, err := tx.ExecContext(ctx, stmt, offer.ID, id); err != nil {
				return fmt.Errorf("insert offer category %s: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit offer: %w", err)
	}
	return nil
}
