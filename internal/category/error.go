package category

import "pantry-be/internal/apperror"

var (
	ErrCategoryNotFound = apperror.NotFound("category not found")
	ErrCategoryExists   = apperror.Conflict("category already exists")
)
