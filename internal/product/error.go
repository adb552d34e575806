package product

import "pantry-be/internal/apperror"

var (
	ErrProductNotFound = apperror.NotFound("product not found")
	ErrVariantNotFound = apperror.NotFound("variant not found")
	ErrDuplicateUOM    = apperror.Validation("duplicate uom in variant list")
	ErrSlugTaken       = apperror.Conflict("a product with this name already exists")
	ErrNoFieldsUpdate  = apperror.Validation("no fields to update")
)
