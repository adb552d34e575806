package coupon

import (
	"context"
	"database/sql"
	"errors"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]*Coupon, error)
	Delete(ctx context.Context, id string) error
	GetByCode(ctx context.Context, q db.DBTX, code string, lock bool) (*Coupon, error)
	CountUserRedemptions(ctx context.Context, q db.DBTX, couponID, userID string) (int, error)
	// IncrementUsage bumps used_count unless the global limit is reached and
	// reports whether a row was updated.
	IncrementUsage(ctx context.Context, q db.DBTX, couponID string) (bool, error)
	RecordRedemption(ctx context.Context, q db.DBTX, couponID string, userID *string, orderID string, amount float64) error
	// ReleaseRedemption deletes the redemption of orderID and gives its use
	// back. It reports how many coupons were released.
	ReleaseRedemption(ctx context.Context, q db.DBTX, orderID string) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const couponColumns = `
	id, code, discount_type, discount_value, min_order_value, usage_limit,
	usage_limit_per_user, valid_from, expires_at, used_count, is_active, created_at`

func scanCoupon(row interface{ Scan(...any) error }) (*Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinOrderValue, &c.UsageLimit,
		&c.UsageLimitPerUser, &c.ValidFrom, &c.ExpiresAt, &c.UsedCount, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Coupon) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO coupons (
			id, code, discount_type, discount_value, min_order_value, usage_limit,
			usage_limit_per_user, valid_from, expires_at, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.MinOrderValue, c.UsageLimit,
		c.UsageLimitPerUser, c.ValidFrom, c.ExpiresAt, c.IsActive,
	).Scan(&c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrCouponExists.WithCause(err)
		}
		logger.FromCtx(ctx).Error("failed to insert coupon",
			zap.String("layer", "repository"),
			zap.String("code", c.Code),
			zap.Error(err),
		)
		return apperror.Wrap(err, "create coupon")
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]*Coupon, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperror.Wrap(err, "list coupons")
	}
	defer rows.Close()

	out := []*Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, apperror.Wrap(err, "scan coupon")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, "delete coupon")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (r *repository) GetByCode(ctx context.Context, q db.DBTX, code string, lock bool) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	c, err := scanCoupon(q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, "get coupon")
	}
	return c, nil
}

func (r *repository) CountUserRedemptions(ctx context.Context, q db.DBTX, couponID, userID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2
	`, couponID, userID).Scan(&n)
	return n, apperror.Wrap(err, "count coupon redemptions")
}

func (r *repository) IncrementUsage(ctx context.Context, q db.DBTX, couponID string) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
	`, couponID)
	if err != nil {
		return false, apperror.Wrap(err, "increment coupon usage")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, "increment coupon usage")
	}
	return n == 1, nil
}

func (r *repository) RecordRedemption(ctx context.Context, q db.DBTX, couponID string, userID *string, orderID string, amount float64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO coupon_redemptions (id, coupon_id, user_id, order_id, amount)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), couponID, userID, orderID, amount)
	return apperror.Wrap(err, "record coupon redemption")
}

func (r *repository) ReleaseRedemption(ctx context.Context, q db.DBTX, orderID string) (int64, error) {
	res, err := q.ExecContext(ctx, `
		WITH released AS (
			DELETE FROM coupon_redemptions WHERE order_id = $1 RETURNING coupon_id
		)
		UPDATE coupons
		SET used_count = used_count - 1
		WHERE id IN (SELECT coupon_id FROM released) AND used_count > 0
	`, orderID)
	if err != nil {
		return 0, apperror.Wrap(err, "release coupon redemption")
	}
	n, err := res.RowsAffected()
	return n, apperror.Wrap(err, "release coupon redemption")
}
