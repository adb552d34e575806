package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository methods taking a db.DBTX run on it when non-nil and on the
// pool otherwise.
type Repository interface {
	Insert(ctx context.Context, q db.DBTX, o *Order) error
	GetByID(ctx context.Context, q db.DBTX, id string, lock bool) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]*Order, int, error)
	UpdateStatus(ctx context.Context, q db.DBTX, o *Order) error
	MarkPaid(ctx context.Context, q db.DBTX, id, paymentRef string, paidAt time.Time) error
	SetPaymentIntent(ctx context.Context, id, intentID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(q db.DBTX) db.DBTX {
	if q == nil {
		return r.db
	}
	return q
}

const orderColumns = `
	o.id, o.order_number, o.user_id, o.channel,
	o.ship_full_name, o.ship_phone, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country,
	o.items_price, o.tax_price, o.shipping_price, o.discount_price, o.total_price,
	o.coupon_code, o.payment_method, o.payment_intent_id, o.payment_ref,
	o.is_paid, o.paid_at, o.status, o.is_delivered, o.delivered_at,
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	a := &o.ShippingAddress
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Channel,
		&a.FullName, &a.Phone, &a.Address, &a.City, &a.PostalCode, &a.Country,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.DiscountPrice, &o.TotalPrice,
		&o.CouponCode, &o.PaymentMethod, &o.PaymentIntentID, &o.PaymentRef,
		&o.IsPaid, &o.PaidAt, &o.Status, &o.IsDelivered, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) Insert(ctx context.Context, q db.DBTX, o *Order) error {
	a := o.ShippingAddress
	err := q.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, channel,
			ship_full_name, ship_phone, ship_address, ship_city, ship_postal_code, ship_country,
			items_price, tax_price, shipping_price, discount_price, total_price,
			coupon_code, payment_method, is_paid, paid_at, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING created_at
	`,
		o.ID, o.OrderNumber, o.UserID, o.Channel,
		a.FullName, a.Phone, a.Address, a.City, a.PostalCode, a.Country,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.DiscountPrice, o.TotalPrice,
		o.CouponCode, o.PaymentMethod, o.IsPaid, o.PaidAt, o.Status,
	).Scan(&o.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, "insert order")
	}

	for i, it := range o.Items {
		_, err := q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, uom, qty, price, image)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, o.ID, i, it.ProductID, it.Name, it.UOM, it.Qty, it.Price, it.Image)
		if err != nil {
			return apperror.Wrap(err, "insert order item")
		}
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, q db.DBTX, id string, lock bool) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	q = r.conn(q)
	o, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, "get order")
	}

	if err := attachItems(ctx, q, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
		zap.Int("limit", opts.Limit),
		zap.Int("page", opts.Page),
	)

	where := []string{}
	args := []any{}

	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if opts.Channel != nil {
		args = append(args, *opts.Channel)
		where = append(where, fmt.Sprintf("o.channel = $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+whereSQL, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, apperror.Wrap(err, "count orders")
	}

	query := `SELECT ` + orderColumns + ` FROM orders o` + whereSQL +
		fmt.Sprintf(` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, 0, apperror.Wrap(err, "list orders")
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, apperror.Wrap(err, "scan order")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Wrap(err, "iterate orders")
	}

	if err := attachItems(ctx, r.db, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func attachItems(ctx context.Context, q db.DBTX, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := q.QueryContext(ctx, `
		SELECT order_id, product_id, name, uom, qty, price, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		return apperror.Wrap(err, "load order items")
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.UOM, &it.Qty, &it.Price, &it.Image); err != nil {
			return apperror.Wrap(err, "scan order item")
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, q db.DBTX, o *Order) error {
	_, err := q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, is_delivered = $2, delivered_at = $3, updated_at = NOW()
		WHERE id = $4
	`, o.Status, o.IsDelivered, o.DeliveredAt, o.ID)
	return apperror.Wrap(err, "update order status")
}

func (r *repository) MarkPaid(ctx context.Context, q db.DBTX, id, paymentRef string, paidAt time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $1, payment_ref = $2, updated_at = NOW()
		WHERE id = $3
	`, paidAt, paymentRef, id)
	return apperror.Wrap(err, "mark order paid")
}

func (r *repository) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_intent_id = $1, updated_at = NOW() WHERE id = $2
	`, intentID, id)
	if err != nil {
		return apperror.Wrap(err, "set payment intent")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
