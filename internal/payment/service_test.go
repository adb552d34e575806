package payment

import (
	"context"
	"errors"
	"testing"

	"pantry-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) MarkCaptured(ctx context.Context, intentID, paymentRef string) error {
	return m.Called(ctx, intentID, paymentRef).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, receipt string, amount float64, currency string) (*Intent, error) {
	args := m.Called(ctx, receipt, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	return m.Called(orderRef, paymentID, signature).Bool(0)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) AttachPaymentIntent(ctx context.Context, id, intentID string) error {
	return m.Called(ctx, id, intentID).Error(0)
}

func (m *MockOrders) MarkPaid(ctx context.Context, id string, conf order.PaymentConfirmation) (*order.Order, error) {
	args := m.Called(ctx, id, conf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func TestService_CreateIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, gw, orders := new(MockRepository), new(MockGateway), new(MockOrders)
		svc := NewService(repo, gw, orders)

		orders.On("Get", ctx, "o1").Return(&order.Order{
			ID: "o1", OrderNumber: "ORD-1", Channel: order.ChannelOnline, TotalPrice: 355,
		}, nil)
		gw.On("CreateIntent", ctx, "ORD-1", 355.0, Currency).Return(&Intent{ID: "order_abc", Amount: 355}, nil)
		orders.On("AttachPaymentIntent", ctx, "o1", "order_abc").Return(nil)
		repo.On("Save", ctx, mock.MatchedBy(func(p *Payment) bool {
			return p.IntentID == "order_abc" && p.Status == StatusCreated
		})).Return(nil)

		intent, err := svc.CreateIntent(ctx, IntentInput{OrderID: "o1"})
		require.NoError(t, err)
		assert.Equal(t, "order_abc", intent.ID)
		mock.AssertExpectationsForObjects(t, repo, gw, orders)
	})

	t.Run("PaidOrCounterOrders", func(t *testing.T) {
		repo, gw, orders := new(MockRepository), new(MockGateway), new(MockOrders)
		svc := NewService(repo, gw, orders)

		orders.On("Get", ctx, "paid").Return(&order.Order{ID: "paid", Channel: order.ChannelOnline, IsPaid: true, TotalPrice: 5}, nil)
		orders.On("Get", ctx, "pos").Return(&order.Order{ID: "pos", Channel: order.ChannelPOS, TotalPrice: 5}, nil)

		_, err := svc.CreateIntent(ctx, IntentInput{OrderID: "paid"})
		assert.ErrorIs(t, err, order.ErrAlreadyPaid)

		_, err = svc.CreateIntent(ctx, IntentInput{OrderID: "pos"})
		assert.ErrorIs(t, err, ErrCounterOrder)
		gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GatewayFailure", func(t *testing.T) {
		repo, gw, orders := new(MockRepository), new(MockGateway), new(MockOrders)
		svc := NewService(repo, gw, orders)

		orders.On("Get", ctx, "o1").Return(&order.Order{ID: "o1", Channel: order.ChannelOnline, TotalPrice: 10}, nil)
		gw.On("CreateIntent", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

		_, err := svc.CreateIntent(ctx, IntentInput{OrderID: "o1"})
		assert.Error(t, err)
		orders.AssertNotCalled(t, "AttachPaymentIntent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()
	intent := "order_abc"

	t.Run("MarksOrderAndPayment", func(t *testing.T) {
		repo, gw, orders := new(MockRepository), new(MockGateway), new(MockOrders)
		svc := NewService(repo, gw, orders)

		conf := order.PaymentConfirmation{PaymentID: "pay_1", Signature: "sig"}
		orders.On("MarkPaid", ctx, "o1", conf).Return(&order.Order{ID: "o1", IsPaid: true, PaymentIntentID: &intent}, nil)
		repo.On("MarkCaptured", ctx, intent, "pay_1").Return(nil)

		o, err := svc.Verify(ctx, VerifyInput{OrderID: "o1", PaymentID: "pay_1", Signature: "sig"})
		require.NoError(t, err)
		assert.True(t, o.IsPaid)
		repo.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		repo, gw, orders := new(MockRepository), new(MockGateway), new(MockOrders)
		svc := NewService(repo, gw, orders)

		orders.On("MarkPaid", ctx, "o1", mock.Anything).Return(nil, order.ErrPaymentUnverified)

		_, err := svc.Verify(ctx, VerifyInput{OrderID: "o1", PaymentID: "pay_1", Signature: "bad"})
		assert.ErrorIs(t, err, order.ErrPaymentUnverified)
		repo.AssertNotCalled(t, "MarkCaptured", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingSignature", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockGateway), new(MockOrders))

		_, err := svc.Verify(ctx, VerifyInput{OrderID: "o1", PaymentID: "pay_1"})
		assert.Error(t, err)
	})
}
