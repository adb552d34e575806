package inventory

import (
	"context"
	"strings"

	"pantry-be/internal/db"
	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListLimit caps the transaction history returned by List.
const ListLimit = 100

type Options struct {
	// StrictStock rejects deductions larger than the available stock
	// instead of flooring the result at zero.
	StrictStock       bool
	LowStockThreshold int
}

type Service interface {
	// Adjust applies a signed stock delta and records it, atomically.
	Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error)
	// AdjustTx is Adjust inside a caller-owned transaction.
	AdjustTx(ctx context.Context, tx db.DBTX, in AdjustInput) (*AdjustResult, error)
	List(ctx context.Context, productID *string) ([]*StockTransaction, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}

type service struct {
	repo Repository
	txm  db.TxManager
	opts Options
}

func NewService(repo Repository, txm db.TxManager, opts Options) Service {
	return &service{repo: repo, txm: txm, opts: opts}
}

func (s *service) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := validateAdjust(in); err != nil {
		return nil, err
	}

	var res *AdjustResult
	err := s.txm.Execute(ctx, func(tx db.DBTX) error {
		var err error
		res, err = s.AdjustTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func validateAdjust(in AdjustInput) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	if in.Quantity == 0 {
		return ErrZeroQuantity
	}
	return nil
}

func (s *service) AdjustTx(ctx context.Context, tx db.DBTX, in AdjustInput) (*AdjustResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdjustStock"),
		zap.String("product_id", in.ProductID),
		zap.String("type", string(in.Type)),
		zap.Int("quantity", in.Quantity),
	)

	if err := validateAdjust(in); err != nil {
		return nil, err
	}

	product, err := s.repo.LockProduct(ctx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != nil && *in.IdempotencyKey != "" {
		prior, err := s.repo.FindByIdempotencyKey(ctx, tx, *in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			if prior.ProductID != in.ProductID {
				return nil, ErrIdempotencyReused
			}
			log.Info("idempotent replay of stock adjustment", zap.String("transaction_id", prior.ID))
			return &AdjustResult{Transaction: prior, NewStock: prior.NewStock, Replayed: true}, nil
		}
	}

	var (
		sku  *string
		prev int
	)
	if product.VariantCount > 0 {
		if in.VariantSKU == nil || strings.TrimSpace(*in.VariantSKU) == "" {
			return nil, ErrVariantSKURequired
		}
		uom := strings.TrimSpace(*in.VariantSKU)
		if prev, err = s.repo.LockVariant(ctx, tx, in.ProductID, uom); err != nil {
			return nil, err
		}
		sku = &uom
	} else {
		prev = product.Stock
	}

	next, clamped := ApplyDelta(prev, in.Quantity)
	if next > MaxStock {
		return nil, ErrStockLimit
	}
	if clamped && s.opts.StrictStock {
		return nil, ErrInsufficientStock
	}

	if sku != nil {
		err = s.repo.SetVariantStock(ctx, tx, in.ProductID, *sku, next)
	} else {
		err = s.repo.SetProductStock(ctx, tx, in.ProductID, next)
	}
	if err != nil {
		log.Error("failed to write stock", zap.Error(err))
		return nil, err
	}

	t := &StockTransaction{
		ID:             uuid.NewString(),
		ProductID:      in.ProductID,
		ProductName:    product.Name,
		VariantSKU:     sku,
		Type:           in.Type,
		Quantity:       in.Quantity,
		PreviousStock:  prev,
		NewStock:       next,
		Clamped:        clamped,
		Reason:         in.Reason,
		CostPerUnit:    in.CostPerUnit,
		Supplier:       in.Supplier,
		OrderID:        in.OrderID,
		IdempotencyKey: in.IdempotencyKey,
		CreatedBy:      in.CreatedBy,
	}
	if err := s.repo.Insert(ctx, tx, t); err != nil {
		log.Error("failed to record stock transaction", zap.Error(err))
		return nil, err
	}

	if clamped {
		log.Warn("stock deduction clamped at zero",
			zap.Int("previous_stock", prev),
			zap.String("variant_sku", utils.PtrString(sku)),
		)
	}
	log.Info("stock adjusted",
		zap.String("transaction_id", t.ID),
		zap.Int("previous_stock", prev),
		zap.Int("new_stock", next),
	)

	return &AdjustResult{Transaction: t, NewStock: next}, nil
}

func (s *service) List(ctx context.Context, productID *string) ([]*StockTransaction, error) {
	return s.repo.List(ctx, productID, ListLimit)
}

func (s *service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	return s.repo.LowStock(ctx, s.opts.LowStockThreshold)
}
