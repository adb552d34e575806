package order

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"pantry-be/internal/apperror"
	"pantry-be/internal/coupon"
	"pantry-be/internal/db"
	"pantry-be/internal/inventory"
	"pantry-be/internal/logger"
	"pantry-be/internal/product"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type StockAdjuster interface {
	AdjustTx(ctx context.Context, tx db.DBTX, in inventory.AdjustInput) (*inventory.AdjustResult, error)
}

type CouponRedeemer interface {
	RedeemTx(ctx context.Context, tx db.DBTX, in coupon.RedeemInput) (*coupon.Quote, error)
	ReleaseTx(ctx context.Context, tx db.DBTX, orderID string) error
}

type SignatureVerifier interface {
	VerifySignature(orderRef, paymentID, signature string) bool
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status Status) ([]BulkResult, error)
	MarkPaid(ctx context.Context, id string, conf PaymentConfirmation) (*Order, error)
	AttachPaymentIntent(ctx context.Context, id, intentID string) error
}

type Deps struct {
	Repo     Repository
	Tx       db.TxManager
	Catalog  Catalog
	Stock    StockAdjuster
	Coupons  CouponRedeemer
	Verifier SignatureVerifier
	Pricing  Pricing
}

type service struct {
	Deps
	now func() time.Time
}

func NewService(deps Deps) Service {
	return &service{Deps: deps, now: time.Now}
}

func round(v float64) float64 {
	return utils.RoundMoney(v)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	channel := in.ResolveChannel()
	callerID, loggedIn := utils.GetUserIDFromContext(ctx)

	o := &Order{
		ID:              uuid.NewString(),
		Channel:         channel,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Status:          StatusPending,
	}

	switch channel {
	case ChannelPOS:
		if !utils.IsAdmin(ctx) {
			return nil, ErrPOSRequiresAdmin
		}
		o.OrderNumber = utils.GenerateOrderNumber("POS")
		o.UserID = in.UserID
	default:
		if !loggedIn {
			return nil, ErrLoginRequired
		}
		if in.Discount > 0 {
			return nil, ErrManualDiscount
		}
		o.OrderNumber = utils.GenerateOrderNumber("ORD")
		o.UserID = &callerID
	}

	items, err := s.priceItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	o.Items = items

	for _, it := range items {
		o.ItemsPrice += it.Price * float64(it.Qty)
	}
	o.ItemsPrice = round(o.ItemsPrice)
	o.TaxPrice = round(o.ItemsPrice * s.Pricing.TaxRate)
	o.ShippingPrice = s.shippingFor(channel, o.ItemsPrice)
	o.DiscountPrice = round(in.Discount)

	err = s.Tx.Execute(ctx, func(tx db.DBTX) error {
		if in.CouponCode != nil && *in.CouponCode != "" {
			quote, err := s.Coupons.RedeemTx(ctx, tx, coupon.RedeemInput{
				Code:       *in.CouponCode,
				OrderValue: o.ItemsPrice,
				UserID:     o.UserID,
				OrderID:    o.ID,
			})
			if err != nil {
				return err
			}
			o.CouponCode = &quote.Code
			o.DiscountPrice = round(o.DiscountPrice + quote.Discount)
		}

		o.TotalPrice = round(math.Max(0, o.ItemsPrice+o.TaxPrice+o.ShippingPrice-o.DiscountPrice))
		s.settleAtCounter(o, in)

		if err := s.Repo.Insert(ctx, tx, o); err != nil {
			return err
		}

		reason := fmt.Sprintf("order %s", o.OrderNumber)
		for _, it := range lockOrder(o.Items) {
			uom := it.UOM
			adj := inventory.AdjustInput{
				ProductID: it.ProductID,
				// ignored by inventory for products without variants
				VariantSKU: &uom,
				Type:       inventory.TypeSale,
				Quantity:   -it.Qty,
				Reason:     &reason,
				OrderID:    &o.ID,
			}
			if loggedIn {
				adj.CreatedBy = &callerID
			}
			if _, err := s.Stock.AdjustTx(ctx, tx, adj); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("order creation failed", zap.String("channel", string(channel)), zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("channel", string(channel)),
		zap.Float64("total", o.TotalPrice),
		zap.Bool("paid", o.IsPaid),
	)
	return o, nil
}

// priceItems snapshots name and price from the catalog. Lines repeating the
// same product and unit are merged.
func (s *service) priceItems(ctx context.Context, inputs []ItemInput) ([]Item, error) {
	items := make([]Item, 0, len(inputs))
	index := map[string]int{}

	for _, in := range inputs {
		p, err := s.Catalog.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, apperror.Validation(fmt.Sprintf("%s is not available", p.Name))
		}

		uom := in.UOM
		if !p.HasVariants() && uom == "" {
			uom = product.DefaultUOM
		}
		price, err := p.EffectivePrice(uom)
		if err != nil {
			return nil, err
		}

		key := p.ID + "\x00" + uom
		if i, ok := index[key]; ok {
			items[i].Qty += in.Qty
			continue
		}

		image := in.Image
		if p.ImageURL != nil {
			image = *p.ImageURL
		}
		index[key] = len(items)
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			UOM:       uom,
			Qty:       in.Qty,
			Price:     price,
			Image:     image,
		})
	}
	return items, nil
}

func (s *service) shippingFor(channel Channel, itemsPrice float64) float64 {
	if channel == ChannelPOS {
		return 0
	}
	if s.Pricing.FreeShippingThreshold > 0 && itemsPrice >= s.Pricing.FreeShippingThreshold {
		return 0
	}
	return round(s.Pricing.ShippingFee)
}

// settleAtCounter marks POS orders paid when the collected amount covers the
// total and hands paid orders over immediately. Online orders are never
// created paid.
func (s *service) settleAtCounter(o *Order, in CreateInput) {
	if o.Channel != ChannelPOS {
		return
	}

	paid := in.IsPaid
	if in.AmountCollected != nil {
		paid = *in.AmountCollected >= o.TotalPrice
	}
	if !paid {
		return
	}

	now := s.now()
	o.IsPaid = true
	o.PaidAt = &now
	o.Status = StatusDelivered
	o.IsDelivered = true
	o.DeliveredAt = &now
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.Repo.GetByID(ctx, nil, id, false)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func authorize(ctx context.Context, o *Order) error {
	if utils.IsAdmin(ctx) {
		return nil
	}
	callerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok || o.UserID == nil || *o.UserID != callerID {
		return ErrForbidden
	}
	return nil
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !utils.IsAdmin(ctx) {
		callerID, ok := utils.GetUserIDFromContext(ctx)
		if !ok {
			return nil, ErrLoginRequired
		}
		opts.UserID = &callerID
	}
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	orders, total, err := s.Repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: orders, Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderStatus"),
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)

	var updated *Order
	err := s.Tx.Execute(ctx, func(tx db.DBTX) error {
		o, err := s.Repo.GetByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := CheckTransition(o, status); err != nil {
			return err
		}

		o.Status = status
		if status == StatusDelivered {
			now := s.now()
			o.IsDelivered = true
			o.DeliveredAt = &now
		}
		if status == StatusCancelled {
			// coupon before stock, the same lock order as Create
			if o.CouponCode != nil {
				if err := s.Coupons.ReleaseTx(ctx, tx, o.ID); err != nil {
					return err
				}
			}
			if err := s.restock(ctx, tx, o); err != nil {
				return err
			}
		}

		if err := s.Repo.UpdateStatus(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		log.Warn("status update rejected", zap.Error(err))
		return nil, err
	}

	log.Info("order status updated")
	return updated, nil
}

// restock returns the stock of a cancelled order's lines.
func (s *service) restock(ctx context.Context, tx db.DBTX, o *Order) error {
	reason := fmt.Sprintf("order %s cancelled", o.OrderNumber)
	for _, it := range lockOrder(o.Items) {
		uom := it.UOM
		_, err := s.Stock.AdjustTx(ctx, tx, inventory.AdjustInput{
			ProductID:  it.ProductID,
			VariantSKU: &uom,
			Type:       inventory.TypeAdjustment,
			Quantity:   it.Qty,
			Reason:     &reason,
			OrderID:    &o.ID,
		})
		// products deleted since the sale have nothing to restock
		if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
			return err
		}
	}
	return nil
}

// lockOrder returns the lines sorted by product and unit. Stock rows are
// locked in this order so concurrent orders sharing products cannot
// deadlock.
func lockOrder(items []Item) []Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Or(
			strings.Compare(a.ProductID, b.ProductID),
			strings.Compare(a.UOM, b.UOM),
		)
	})
	return sorted
}

func (s *service) BulkUpdateStatus(ctx context.Context, ids []string, status Status) ([]BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrUnsupportedBulkSet
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		res := BulkResult{ID: id}
		if o, err := s.UpdateStatus(ctx, id, status); err != nil {
			res.Error = apperror.PublicMessage(err)
		} else {
			res.Status = &o.Status
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *service) MarkPaid(ctx context.Context, id string, conf PaymentConfirmation) (*Order, error) {
	if err := utils.ValidateStruct(conf); err != nil {
		return nil, err
	}

	var paid *Order
	err := s.Tx.Execute(ctx, func(tx db.DBTX) error {
		o, err := s.Repo.GetByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := authorize(ctx, o); err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return ErrOrderCancelled
		}
		if o.IsPaid {
			return ErrAlreadyPaid
		}
		if o.Channel == ChannelOnline {
			if o.PaymentIntentID == nil {
				return ErrNoPaymentIntent
			}
			if !s.Verifier.VerifySignature(*o.PaymentIntentID, conf.PaymentID, conf.Signature) {
				return ErrPaymentUnverified
			}
		}

		now := s.now()
		if err := s.Repo.MarkPaid(ctx, tx, o.ID, conf.PaymentID, now); err != nil {
			return err
		}
		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentRef = &conf.PaymentID
		paid = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order paid",
		zap.String("order_id", paid.ID),
		zap.String("payment_ref", conf.PaymentID),
	)
	return paid, nil
}

func (s *service) AttachPaymentIntent(ctx context.Context, id, intentID string) error {
	return s.Repo.SetPaymentIntent(ctx, id, intentID)
}
