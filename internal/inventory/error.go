package inventory

import "pantry-be/internal/apperror"

var (
	ErrProductNotFound    = apperror.NotFound("product not found")
	ErrVariantNotFound    = apperror.NotFound("variant not found")
	ErrVariantSKURequired = apperror.Validation("variantSku is required for products with variants")
	ErrZeroQuantity       = apperror.Validation("quantity must be non-zero")
	ErrStockLimit         = apperror.Validation("adjustment would exceed the maximum stock level")
	ErrInsufficientStock  = apperror.Conflict("insufficient stock")
	ErrIdempotencyReused  = apperror.Conflict("idempotency key already used for another product")
)
