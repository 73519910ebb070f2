package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfront/pricing-service/internal/models"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

// PostgresOrderRepository implements OrderRepository backed by Postgres
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := `
		INSERT INTO orders (id, user_id, coupon_code, coupon_discount, subtotal, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insert,
		order.ID, order.UserID, order.CouponCode, order.CouponDiscount,
		order.Subtotal, order.Tax, order.Total, order.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := r.insertLines(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) insertLines(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	stmt := `
		INSERT INTO order_items
		(order_id, product_id, name, quantity, unit_price, subtotal,
		 coupon_share, proportion, final_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, it := range order.Items {
		if _, err := tx.ExecContext(ctx, stmt,
			order.ID, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.Subtotal,
			it.CouponShare, it.Proportion, it.FinalPrice, it.Status,
		); err != nil {
			return fmt.Errorf("insert order item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, user_id, COALESCE(coupon_code, ''), coupon_discount, subtotal, tax, total, created_at
		FROM orders
		WHERE id = $1
	`
	var o models.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.CouponCode, &o.CouponDiscount,
		&o.Subtotal, &o.Tax, &o.Total, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	itemsQ := `
		SELECT product_id, name, quantity, unit_price, subtotal,
		       coupon_share, proportion, final_price, status
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, itemsQ, id)
	if err != nil {
		return nil, fmt.Errorf("get order items %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderLine
		if err := rows.Scan(
			&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&it.CouponShare, &it.Proportion, &it.FinalPrice, &it.Status,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// Update rewrites the order totals and every line's pricing fields in one
// transaction, used after cancellation re-apportionment.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	update := `
		UPDATE orders
		SET coupon_discount = $2, subtotal = $3, tax = $4, total = $5
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, update,
		order.ID, order.CouponDiscount, order.Subtotal, order.Tax, order.Total,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	if err := r.insertLines(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order update: %w", err)
	}
	return nil
}
