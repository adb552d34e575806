package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/logger"

	"go.uber.org/zap"
)

// Repository exposes row-level primitives. The Lock* methods must run inside
// a transaction; the lock is held until it commits or rolls back.
type Repository interface {
	LockProduct(ctx context.Context, q db.DBTX, productID string) (*lockedProduct, error)
	LockVariant(ctx context.Context, q db.DBTX, productID, uom string) (int, error)
	SetProductStock(ctx context.Context, q db.DBTX, productID string, stock int) error
	SetVariantStock(ctx context.Context, q db.DBTX, productID, uom string, stock int) error
	FindByIdempotencyKey(ctx context.Context, q db.DBTX, key string) (*StockTransaction, error)
	Insert(ctx context.Context, q db.DBTX, t *StockTransaction) error
	List(ctx context.Context, productID *string, limit int) ([]*StockTransaction, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockItem, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const transactionColumns = `
	id, product_id, product_name, variant_sku, type, quantity,
	previous_stock, new_stock, clamped, reason, cost_per_unit, supplier,
	order_id, idempotency_key, created_by, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*StockTransaction, error) {
	var t StockTransaction
	err := row.Scan(
		&t.ID, &t.ProductID, &t.ProductName, &t.VariantSKU, &t.Type, &t.Quantity,
		&t.PreviousStock, &t.NewStock, &t.Clamped, &t.Reason, &t.CostPerUnit, &t.Supplier,
		&t.OrderID, &t.IdempotencyKey, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) LockProduct(ctx context.Context, q db.DBTX, productID string) (*lockedProduct, error) {
	var p lockedProduct
	err := q.QueryRowContext(ctx, `
		SELECT name, stock FROM products WHERE id = $1 FOR UPDATE
	`, productID).Scan(&p.Name, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, "lock product")
	}

	if err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM product_variants WHERE product_id = $1
	`, productID).Scan(&p.VariantCount); err != nil {
		return nil, apperror.Wrap(err, "count variants")
	}
	return &p, nil
}

func (r *repository) LockVariant(ctx context.Context, q db.DBTX, productID, uom string) (int, error) {
	var stock int
	err := q.QueryRowContext(ctx, `
		SELECT stock FROM product_variants
		WHERE product_id = $1 AND uom = $2
		FOR UPDATE
	`, productID, uom).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	if err != nil {
		return 0, apperror.Wrap(err, "lock variant")
	}
	return stock, nil
}

func (r *repository) SetProductStock(ctx context.Context, q db.DBTX, productID string, stock int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2
	`, stock, productID)
	return apperror.Wrap(err, "update product stock")
}

func (r *repository) SetVariantStock(ctx context.Context, q db.DBTX, productID, uom string, stock int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE product_variants SET stock = $1 WHERE product_id = $2 AND uom = $3
	`, stock, productID, uom)
	return apperror.Wrap(err, "update variant stock")
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, q db.DBTX, key string) (*StockTransaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM stock_transactions WHERE idempotency_key = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, "find transaction by idempotency key")
	}
	return t, nil
}

func (r *repository) Insert(ctx context.Context, q db.DBTX, t *StockTransaction) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO stock_transactions (
			id, product_id, product_name, variant_sku, type, quantity,
			previous_stock, new_stock, clamped, reason, cost_per_unit, supplier,
			order_id, idempotency_key, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at
	`,
		t.ID, t.ProductID, t.ProductName, t.VariantSKU, t.Type, t.Quantity,
		t.PreviousStock, t.NewStock, t.Clamped, t.Reason, t.CostPerUnit, t.Supplier,
		t.OrderID, t.IdempotencyKey, t.CreatedBy,
	).Scan(&t.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrIdempotencyReused.WithCause(err)
	}
	return apperror.Wrap(err, "insert stock transaction")
}

func (r *repository) List(ctx context.Context, productID *string, limit int) ([]*StockTransaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListStockTransactions"),
	)

	query := `SELECT ` + transactionColumns + ` FROM stock_transactions`
	args := []any{}
	if productID != nil && *productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, *productID)
	}
	query += fmt.Sprintf(` ORDER BY seq DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query stock transactions", zap.Error(err))
		return nil, apperror.Wrap(err, "list stock transactions")
	}
	defer rows.Close()

	out := []*StockTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperror.Wrap(err, "scan stock transaction")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LowStock reports single-unit products and individual variants whose stock
// is at or below threshold. Inactive products are skipped.
func (r *repository) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, NULL::text AS variant_sku, p.stock
		FROM products p
		WHERE p.is_active
		  AND NOT EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id)
		  AND p.stock <= $1
		UNION ALL
		SELECT p.id, p.name, v.uom, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.is_active AND v.stock <= $1
		ORDER BY 4 ASC, 2 ASC
	`, threshold)
	if err != nil {
		return nil, apperror.Wrap(err, "low stock report")
	}
	defer rows.Close()

	items := []LowStockItem{}
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.VariantSKU, &it.Stock); err != nil {
			return nil, apperror.Wrap(err, "scan low stock item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
