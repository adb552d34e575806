package analytics

import (
	"context"
	"database/sql"
	"time"

	"pantry-be/internal/apperror"
)

type Repository interface {
	Totals(ctx context.Context, from, to time.Time) (*totalsRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Totals(ctx context.Context, from, to time.Time) (*totalsRow, error) {
	var t totalsRow
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_paid),
			COALESCE(SUM(total_price) FILTER (WHERE is_paid), 0),
			COUNT(*) FILTER (WHERE channel = 'POS'),
			COALESCE(SUM(total_price) FILTER (WHERE channel = 'POS' AND is_paid), 0),
			COUNT(*) FILTER (WHERE channel = 'ONLINE'),
			COALESCE(SUM(total_price) FILTER (WHERE channel = 'ONLINE' AND is_paid), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		  AND status <> 'CANCELLED'
	`, from, to).Scan(
		&t.orders, &t.paidOrders, &t.revenue,
		&t.posOrders, &t.posRevenue,
		&t.onlineOrders, &t.onlineRevenue,
	)
	if err != nil {
		return nil, apperror.Wrap(err, "order totals")
	}
	return &t, nil
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, MAX(oi.name), SUM(oi.qty), SUM(oi.qty * oi.price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		  AND o.status <> 'CANCELLED'
		GROUP BY oi.product_id
		ORDER BY SUM(oi.qty) DESC, oi.product_id ASC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, apperror.Wrap(err, "top products")
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Qty, &p.Revenue); err != nil {
			return nil, apperror.Wrap(err, "scan top product")
		}
		out = append(out, p)
	}
	return out, apperror.Wrap(rows.Err(), "iterate top products")
}
