package product

import (
	"strings"
	"time"
)

// DefaultUOM is the unit used for products sold without variants.
const DefaultUOM = "pcs"

// Variant is a per-unit-of-measure sub-record with its own price and stock.
type Variant struct {
	ID    string  `json:"id"`
	UOM   string  `json:"uom"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Variants    []Variant  `json:"variants"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant returns the variant keyed by uom.
func (p *Product) FindVariant(uom string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].UOM == uom {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

func (p *Product) findVariantFold(uom string) (*Variant, bool) {
	for i := range p.Variants {
		if strings.EqualFold(p.Variants[i].UOM, uom) {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// EffectiveStock is the sum of variant stock when variants exist; the
// top-level stock is only a fallback.
func (p *Product) EffectiveStock() int {
	if !p.HasVariants() {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// EffectivePrice resolves the selling price for a unit. Products without
// variants accept DefaultUOM or an empty uom.
func (p *Product) EffectivePrice(uom string) (float64, error) {
	if !p.HasVariants() {
		if uom != "" && uom != DefaultUOM {
			return 0, ErrVariantNotFound
		}
		return p.Price, nil
	}
	v, ok := p.FindVariant(uom)
	if !ok {
		return 0, ErrVariantNotFound
	}
	return v.Price, nil
}

type VariantInput struct {
	UOM   string  `json:"uom" validate:"required,max=32"`
	Price float64 `json:"price" validate:"gte=0"`
	Stock int     `json:"stock" validate:"gte=0,max=1000000"`
}

type CreateInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description *string        `json:"description"`
	ImageURL    *string        `json:"imageUrl"`
	CategoryID  *string        `json:"categoryId"`
	Price       float64        `json:"price" validate:"gte=0"`
	Stock       int            `json:"stock" validate:"gte=0,max=1000000"`
	Variants    []VariantInput `json:"variants" validate:"dive"`
	IsActive    *bool          `json:"isActive"`
}

// UpdateInput changes master data only. Stock is never written here; it
// moves exclusively through inventory adjustments.
type UpdateInput struct {
	ID          string          `json:"-" validate:"required"`
	Name        *string         `json:"name" validate:"omitempty,max=200"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	CategoryID  *string         `json:"categoryId"`
	Price       *float64        `json:"price" validate:"omitempty,gte=0"`
	IsActive    *bool           `json:"isActive"`
	Variants    *[]VariantInput `json:"variants" validate:"omitempty,dive"`
}

func (in UpdateInput) hasChanges() bool {
	return in.Name != nil ||
		in.Description != nil ||
		in.ImageURL != nil ||
		in.CategoryID != nil ||
		in.Price != nil ||
		in.IsActive != nil ||
		in.Variants != nil
}

type ListOptions struct {
	Search     *string
	CategoryID *string
	OnlyActive bool
	Limit      int
	Page       int
}

type ListResult struct {
	Items []*Product `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
