package pos

import "pantry-be/internal/apperror"

var (
	ErrVariantSelectionRequired = apperror.Validation("select a unit for this product")
	ErrProductUnavailable       = apperror.Validation("product is not available")
	ErrInvalidQty               = apperror.Validation("quantity must be positive")
	ErrLineNotFound             = apperror.NotFound("cart line not found")
	ErrPercentTooHigh           = apperror.Validation("percentage discount cannot exceed 100")
	ErrNotCounterOrder          = apperror.Validation("receipts are only issued for counter orders")
)
