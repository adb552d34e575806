package user

import "pantry-be/internal/apperror"

var (
	ErrEmailExists        = apperror.Conflict("email already registered")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrUserNotFound       = apperror.NotFound("user not found")
)
