package pos

import (
	"context"
	"encoding/json"

	"pantry-be/internal/apperror"
	"pantry-be/internal/logger"
	"pantry-be/internal/order"
	"pantry-be/internal/product"
	"pantry-be/internal/utils"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Orders interface {
	Create(ctx context.Context, in order.CreateInput) (*order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
}

type LineInput struct {
	ProductID string `json:"productId" validate:"required"`
	UOM       string `json:"uom"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

type QuoteInput struct {
	Lines    []LineInput `json:"lines" validate:"required,min=1,dive"`
	Discount Discount    `json:"discount"`
}

type Quote struct {
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
}

type CheckoutInput struct {
	QuoteInput
	AmountCollected float64  `json:"amountCollected" validate:"gte=0"`
	PaymentMethod   string   `json:"paymentMethod" validate:"max=32"`
	Customer        Customer `json:"customer"`
}

type CheckoutResult struct {
	Order  *order.Order `json:"order"`
	Totals Totals       `json:"totals"`
	Change float64      `json:"change"`
}

type Options struct {
	TaxRate float64
	// QRSize is the receipt PNG edge in pixels.
	QRSize int
	// QRLevel is one of L, M, Q or H.
	QRLevel string
}

type Service interface {
	Quote(ctx context.Context, in QuoteInput) (*Quote, error)
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	Receipt(ctx context.Context, orderID string) ([]byte, error)
}

type service struct {
	catalog Catalog
	orders  Orders
	taxRate float64
	qrSize  int
	qrLevel qrcode.RecoveryLevel
}

func NewService(catalog Catalog, orders Orders, opts Options) Service {
	var level qrcode.RecoveryLevel
	switch opts.QRLevel {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	size := opts.QRSize
	if size <= 0 {
		size = 256
	}

	return &service{
		catalog: catalog,
		orders:  orders,
		taxRate: opts.TaxRate,
		qrSize:  size,
		qrLevel: level,
	}
}

// ring rebuilds the cart from current catalog prices.
func (s *service) ring(ctx context.Context, in QuoteInput) (*Cart, error) {
	if in.Discount.IsPercent && in.Discount.Amount > 100 {
		return nil, ErrPercentTooHigh
	}

	cart := &Cart{}
	for _, li := range in.Lines {
		p, err := s.catalog.GetByID(ctx, li.ProductID)
		if err != nil {
			return nil, err
		}
		if err := cart.AddQty(p, li.UOM, li.Qty); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *service) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	cart, err := s.ring(ctx, in)
	if err != nil {
		return nil, err
	}

	lines := cart.Lines()
	return &Quote{Lines: lines, Totals: Compute(lines, s.taxRate, in.Discount)}, nil
}

func (s *service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	cart, err := s.ring(ctx, in.QuoteInput)
	if err != nil {
		return nil, err
	}

	lines := cart.Lines()
	totals := Compute(lines, s.taxRate, in.Discount)

	o, err := s.orders.Create(ctx, BuildOrder(lines, totals, in.AmountCollected, in.PaymentMethod, in.Customer))
	if err != nil {
		return nil, err
	}

	if o.TotalPrice != totals.Total {
		log.Warn("counter quote differs from stored order",
			zap.Float64("quoted", totals.Total),
			zap.Float64("stored", o.TotalPrice),
		)
	}

	log.Info("counter sale completed",
		zap.String("order_id", o.ID),
		zap.Float64("total", o.TotalPrice),
		zap.Bool("paid", o.IsPaid),
	)
	return &CheckoutResult{
		Order:  o,
		Totals: totals,
		Change: Change(in.AmountCollected, o.TotalPrice),
	}, nil
}

// receiptData is the payload encoded into the receipt QR code.
type receiptData struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	Paid        bool    `json:"paid"`
}

// Receipt renders a QR PNG identifying a counter order.
func (s *service) Receipt(ctx context.Context, orderID string) ([]byte, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Channel != order.ChannelPOS {
		return nil, ErrNotCounterOrder
	}

	data, err := json.Marshal(receiptData{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.TotalPrice,
		Paid:        o.IsPaid,
	})
	if err != nil {
		return nil, apperror.Wrap(err, "marshal receipt data")
	}

	code, err := qrcode.New(string(data), s.qrLevel)
	if err != nil {
		return nil, apperror.Wrap(err, "create receipt qr code")
	}

	png, err := code.PNG(s.qrSize)
	if err != nil {
		return nil, apperror.Wrap(err, "render receipt qr code")
	}
	return png, nil
}
