package payment

import (
	"context"
	"database/sql"

	"pantry-be/internal/apperror"
)

type Repository interface {
	Save(ctx context.Context, p *Payment) error
	MarkCaptured(ctx context.Context, intentID, paymentRef string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, p *Payment) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (id, order_id, intent_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, p.ID, p.OrderID, p.IntentID, p.Amount, p.Currency, p.Status).Scan(&p.CreatedAt)
	return apperror.Wrap(err, "save payment")
}

func (r *repository) MarkCaptured(ctx context.Context, intentID, paymentRef string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, payment_ref = $2, captured_at = NOW()
		WHERE intent_id = $3
	`, StatusCaptured, paymentRef, intentID)
	return apperror.Wrap(err, "mark payment captured")
}
