package coupon

import (
	"context"
	"strings"
	"time"

	"pantry-be/internal/db"
	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Coupon, error)
	List(ctx context.Context) ([]*Coupon, error)
	Delete(ctx context.Context, id string) error
	// Validate checks the coupon without consuming it.
	Validate(ctx context.Context, code string, orderValue float64, userID *string) (*Quote, error)
	// RedeemTx validates and consumes one use of the coupon inside tx.
	RedeemTx(ctx context.Context, tx db.DBTX, in RedeemInput) (*Quote, error)
	// ReleaseTx returns the use consumed by a cancelled order.
	ReleaseTx(ctx context.Context, tx db.DBTX, orderID string) error
}

type service struct {
	repo Repository
	db   db.DBTX
	now  func() time.Time
}

// NewService takes the pool used for read-only validation queries.
func NewService(repo Repository, pool db.DBTX) Service {
	return &service{repo: repo, db: pool, now: time.Now}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Coupon, error) {
	input.Code = normalizeCode(input.Code)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.DiscountType == DiscountPercentage && input.DiscountValue > 100 {
		return nil, ErrPercentageTooHigh
	}
	if input.ValidFrom != nil && input.ExpiresAt != nil && !input.ExpiresAt.After(*input.ValidFrom) {
		return nil, ErrInvalidWindow
	}

	c := &Coupon{
		ID:                uuid.NewString(),
		Code:              input.Code,
		DiscountType:      input.DiscountType,
		DiscountValue:     input.DiscountValue,
		MinOrderValue:     input.MinOrderValue,
		UsageLimit:        input.UsageLimit,
		UsageLimitPerUser: input.UsageLimitPerUser,
		ValidFrom:         input.ValidFrom,
		ExpiresAt:         input.ExpiresAt,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("coupon created",
		zap.String("layer", "service"),
		zap.String("code", c.Code),
	)
	return c, nil
}

func (s *service) List(ctx context.Context) ([]*Coupon, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Validate(ctx context.Context, code string, orderValue float64, userID *string) (*Quote, error) {
	c, err := s.repo.GetByCode(ctx, s.db, normalizeCode(code), false)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, s.db, c, orderValue, userID); err != nil {
		return nil, err
	}
	return &Quote{Code: c.Code, Discount: Discount(c, orderValue)}, nil
}

func (s *service) check(ctx context.Context, q db.DBTX, c *Coupon, orderValue float64, userID *string) error {
	uses := -1
	if userID != nil && *userID != "" && c.UsageLimitPerUser != nil {
		n, err := s.repo.CountUserRedemptions(ctx, q, c.ID, *userID)
		if err != nil {
			return err
		}
		uses = n
	}
	return c.Check(orderValue, s.now(), uses)
}

func (s *service) RedeemTx(ctx context.Context, tx db.DBTX, in RedeemInput) (*Quote, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RedeemCoupon"),
		zap.String("order_id", in.OrderID),
	)

	c, err := s.repo.GetByCode(ctx, tx, normalizeCode(in.Code), true)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, tx, c, in.OrderValue, in.UserID); err != nil {
		return nil, err
	}

	ok, err := s.repo.IncrementUsage(ctx, tx, c.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUsageLimitReached
	}

	discount := Discount(c, in.OrderValue)
	if err := s.repo.RecordRedemption(ctx, tx, c.ID, in.UserID, in.OrderID, discount); err != nil {
		return nil, err
	}

	log.Info("coupon redeemed", zap.String("code", c.Code), zap.Float64("discount", discount))
	return &Quote{Code: c.Code, Discount: discount}, nil
}

func (s *service) ReleaseTx(ctx context.Context, tx db.DBTX, orderID string) error {
	n, err := s.repo.ReleaseRedemption(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromCtx(ctx).Info("coupon use released",
			zap.String("layer", "service"),
			zap.String("order_id", orderID),
		)
	}
	return nil
}
