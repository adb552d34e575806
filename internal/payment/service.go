package payment

import (
	"context"

	"pantry-be/internal/logger"
	"pantry-be/internal/order"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Currency = "INR"

type Orders interface {
	Get(ctx context.Context, id string) (*order.Order, error)
	AttachPaymentIntent(ctx context.Context, id, intentID string) error
	MarkPaid(ctx context.Context, id string, conf order.PaymentConfirmation) (*order.Order, error)
}

type Service interface {
	CreateIntent(ctx context.Context, in IntentInput) (*Intent, error)
	Verify(ctx context.Context, in VerifyInput) (*order.Order, error)
}

type service struct {
	repo    Repository
	gateway Gateway
	orders  Orders
}

func NewService(repo Repository, gateway Gateway, orders Orders) Service {
	return &service{repo: repo, gateway: gateway, orders: orders}
}

func (s *service) CreateIntent(ctx context.Context, in IntentInput) (*Intent, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Channel == order.ChannelPOS {
		return nil, ErrCounterOrder
	}
	if o.Status == order.StatusCancelled {
		return nil, order.ErrOrderCancelled
	}
	if o.IsPaid {
		return nil, order.ErrAlreadyPaid
	}
	if o.TotalPrice <= 0 {
		return nil, ErrNothingToPay
	}

	intent, err := s.gateway.CreateIntent(ctx, o.OrderNumber, o.TotalPrice, Currency)
	if err != nil {
		return nil, err
	}

	if err := s.orders.AttachPaymentIntent(ctx, o.ID, intent.ID); err != nil {
		return nil, err
	}

	p := &Payment{
		ID:       uuid.NewString(),
		OrderID:  o.ID,
		IntentID: intent.ID,
		Amount:   o.TotalPrice,
		Currency: Currency,
		Status:   StatusCreated,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("payment intent attached",
		zap.String("layer", "service"),
		zap.String("order_id", o.ID),
		zap.String("intent_id", intent.ID),
	)
	return intent, nil
}

func (s *service) Verify(ctx context.Context, in VerifyInput) (*order.Order, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	o, err := s.orders.MarkPaid(ctx, in.OrderID, order.PaymentConfirmation{
		PaymentID: in.PaymentID,
		Signature: in.Signature,
	})
	if err != nil {
		return nil, err
	}

	if o.PaymentIntentID != nil {
		// the order is the source of truth; a stale payments row is only logged
		if err := s.repo.MarkCaptured(ctx, *o.PaymentIntentID, in.PaymentID); err != nil {
			logger.FromCtx(ctx).Error("failed to mark payment captured",
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
		}
	}
	return o, nil
}
