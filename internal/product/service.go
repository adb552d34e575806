package product

import (
	"context"
	"strings"

	"pantry-be/internal/db"
	"pantry-be/internal/inventory"
	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// OpeningStockReason marks the ledger entry that records stock entered on
// the product form.
const OpeningStockReason = "opening stock"

// StockRecorder writes stock through the ledger inside the caller's
// transaction.
type StockRecorder interface {
	AdjustTx(ctx context.Context, tx db.DBTX, in inventory.AdjustInput) (*inventory.AdjustResult, error)
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

type service struct {
	repo  Repository
	stock StockRecorder
}

func NewService(repo Repository, stock StockRecorder) Service {
	return &service{repo: repo, stock: stock}
}

// openingStock is stock typed on the product form for a unit that has no
// ledger history yet. uom is empty for single-SKU products.
type openingStock struct {
	uom string
	qty int
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	variants, opening, err := buildVariants(input.Variants, nil)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 && input.Stock > 0 {
		opening = append(opening, openingStock{qty: input.Stock})
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	p := &Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		Variants:    variants,
		IsActive:    active,
	}

	if err := s.repo.Create(ctx, p, s.recordOpening(ctx, p, opening)); err != nil {
		return nil, err
	}

	log.Info("product created",
		zap.String("product_id", p.ID),
		zap.Int("variants", len(p.Variants)),
	)
	return p, nil
}

// buildVariants validates unit uniqueness and carries over ids, stock and
// stored spelling of units that already exist on the product. Units are
// matched case-insensitively. New units start at zero; their typed stock is
// returned as opening balances.
func buildVariants(inputs []VariantInput, existing *Product) ([]Variant, []openingStock, error) {
	seen := make(map[string]struct{}, len(inputs))
	variants := make([]Variant, 0, len(inputs))
	var opening []openingStock

	for _, in := range inputs {
		uom := strings.TrimSpace(in.UOM)
		key := strings.ToLower(uom)
		if _, dup := seen[key]; dup {
			return nil, nil, ErrDuplicateUOM
		}
		seen[key] = struct{}{}

		if existing != nil {
			if cur, ok := existing.findVariantFold(uom); ok {
				variants = append(variants, Variant{ID: cur.ID, UOM: cur.UOM, Price: in.Price, Stock: cur.Stock})
				continue
			}
		}
		variants = append(variants, Variant{ID: uuid.NewString(), UOM: uom, Price: in.Price})
		if in.Stock > 0 {
			opening = append(opening, openingStock{uom: uom, qty: in.Stock})
		}
	}
	return variants, opening, nil
}

// recordOpening returns the hook that writes opening balances to the ledger
// once the product rows exist, or nil when there is nothing to record.
func (s *service) recordOpening(ctx context.Context, p *Product, opening []openingStock) AfterWrite {
	if len(opening) == 0 || s.stock == nil {
		return nil
	}

	var createdBy *string
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		createdBy = &id
	}

	return func(tx db.DBTX) error {
		for _, o := range opening {
			in := inventory.AdjustInput{
				ProductID: p.ID,
				Type:      inventory.TypeAdjustment,
				Quantity:  o.qty,
				Reason:    utils.StrPtr(OpeningStockReason),
				CreatedBy: createdBy,
			}
			if o.uom != "" {
				in.VariantSKU = utils.StrPtr(o.uom)
			}

			res, err := s.stock.AdjustTx(ctx, tx, in)
			if err != nil {
				return err
			}

			if o.uom == "" {
				p.Stock = res.NewStock
			} else if v, ok := p.FindVariant(o.uom); ok {
				v.Stock = res.NewStock
			}
		}
		return nil
	}
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", input.ID),
	)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.hasChanges() {
		return nil, ErrNoFieldsUpdate
	}

	p, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
		p.Slug = slug.Make(p.Name)
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.ImageURL != nil {
		p.ImageURL = input.ImageURL
	}
	if input.CategoryID != nil {
		p.CategoryID = input.CategoryID
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	var opening []openingStock
	if input.Variants != nil {
		variants, newStock, err := buildVariants(*input.Variants, p)
		if err != nil {
			return nil, err
		}
		p.Variants = variants
		opening = newStock
	}

	if err := s.repo.Update(ctx, p, s.recordOpening(ctx, p, opening)); err != nil {
		return nil, err
	}

	log.Info("product updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	} else if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Search != nil {
		trimmed := strings.TrimSpace(*opts.Search)
		opts.Search = &trimmed
	}

	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, nil
}
