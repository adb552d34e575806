package inventory

import (
	"math"
	"time"
)

type Type string

const (
	// MaxQuantity bounds a single adjustment in either direction.
	MaxQuantity = 1_000_000
	// MaxStock is the largest stock level the stock columns can hold.
	MaxStock = math.MaxInt32
)

const (
	TypePurchase   Type = "Purchase"
	TypeAdjustment Type = "Adjustment"
	TypeSale       Type = "Sale"
)

// StockTransaction is an immutable record of one stock mutation.
type StockTransaction struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	VariantSKU     *string   `json:"variantSku"`
	Type           Type      `json:"type"`
	Quantity       int       `json:"quantity"`
	PreviousStock  int       `json:"previousStock"`
	NewStock       int       `json:"newStock"`
	Clamped        bool      `json:"clamped"`
	Reason         *string   `json:"reason,omitempty"`
	CostPerUnit    *float64  `json:"costPerUnit,omitempty"`
	Supplier       *string   `json:"supplier,omitempty"`
	OrderID        *string   `json:"orderId,omitempty"`
	IdempotencyKey *string   `json:"-"`
	CreatedBy      *string   `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AdjustInput struct {
	ProductID      string   `json:"productId" validate:"required"`
	VariantSKU     *string  `json:"variantSku"`
	Type           Type     `json:"type" validate:"required,oneof=Purchase Adjustment Sale"`
	Quantity       int      `json:"quantity" validate:"min=-1000000,max=1000000"`
	Reason         *string  `json:"reason" validate:"omitempty,max=500"`
	CostPerUnit    *float64 `json:"costPerUnit" validate:"omitempty,gte=0"`
	Supplier       *string  `json:"supplier" validate:"omitempty,max=200"`
	OrderID        *string  `json:"-"`
	IdempotencyKey *string  `json:"-"`
	CreatedBy      *string  `json:"-"`
}

type AdjustResult struct {
	Transaction *StockTransaction `json:"transaction"`
	NewStock    int               `json:"newStock"`
	// Replayed is set when an idempotency key matched an earlier adjustment
	// and nothing was applied.
	Replayed bool `json:"replayed"`
}

// LowStockItem is one product, or one variant of a product, at or under the
// low-stock threshold.
type LowStockItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	VariantSKU  *string `json:"variantSku"`
	Stock       int     `json:"stock"`
}

// lockedProduct is the product state read under a row lock.
type lockedProduct struct {
	Name         string
	Stock        int
	VariantCount int
}

// ApplyDelta adds qty to prev and floors the result at zero. clamped reports
// whether the floor was hit. prev must be non-negative; a sum past
// math.MaxInt saturates instead of wrapping.
func ApplyDelta(prev, qty int) (next int, clamped bool) {
	if qty >= 0 {
		if prev > math.MaxInt-qty {
			return math.MaxInt, false
		}
		return prev + qty, false
	}
	next = prev + qty
	if next < 0 {
		return 0, true
	}
	return next, false
}
