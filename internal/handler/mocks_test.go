package handler

import (
	"context"

	"pantry-be/internal/db"
	"pantry-be/internal/inventory"
	"pantry-be/internal/order"
	"pantry-be/internal/pos"
	"pantry-be/internal/product"

	"github.com/stretchr/testify/mock"
)

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) Adjust(ctx context.Context, in inventory.AdjustInput) (*inventory.AdjustResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AdjustResult), args.Error(1)
}

func (m *MockInventory) AdjustTx(ctx context.Context, tx db.DBTX, in inventory.AdjustInput) (*inventory.AdjustResult, error) {
	args := m.Called(ctx, tx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AdjustResult), args.Error(1)
}

func (m *MockInventory) List(ctx context.Context, productID *string) ([]*inventory.StockTransaction, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.StockTransaction), args.Error(1)
}

func (m *MockInventory) LowStock(ctx context.Context) ([]inventory.LowStockItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.LowStockItem), args.Error(1)
}

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) Create(ctx context.Context, in product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, in product.UpdateInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProducts) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Create(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) List(ctx context.Context, opts order.ListOptions) (*order.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ListResult), args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) BulkUpdateStatus(ctx context.Context, ids []string, status order.Status) ([]order.BulkResult, error) {
	args := m.Called(ctx, ids, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.BulkResult), args.Error(1)
}

func (m *MockOrders) MarkPaid(ctx context.Context, id string, conf order.PaymentConfirmation) (*order.Order, error) {
	args := m.Called(ctx, id, conf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) AttachPaymentIntent(ctx context.Context, id, intentID string) error {
	return m.Called(ctx, id, intentID).Error(0)
}

type MockPOS struct {
	mock.Mock
}

func (m *MockPOS) Quote(ctx context.Context, in pos.QuoteInput) (*pos.Quote, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Quote), args.Error(1)
}

func (m *MockPOS) Checkout(ctx context.Context, in pos.CheckoutInput) (*pos.CheckoutResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.CheckoutResult), args.Error(1)
}

func (m *MockPOS) Receipt(ctx context.Context, orderID string) ([]byte, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
