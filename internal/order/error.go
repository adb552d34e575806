package order

import "pantry-be/internal/apperror"

var (
	ErrOrderNotFound      = apperror.NotFound("order not found")
	ErrInvalidStatus      = apperror.Validation("unknown order status")
	ErrInvalidTransition  = apperror.Validation("invalid status transition")
	ErrDeliveredUnpaid    = apperror.Validation("order must be paid before it is delivered")
	ErrAlreadyPaid        = apperror.Conflict("order is already paid")
	ErrOrderCancelled     = apperror.Conflict("order is cancelled")
	ErrPaymentUnverified  = apperror.Unauthorized("payment signature verification failed")
	ErrNoPaymentIntent    = apperror.Validation("order has no payment intent")
	ErrManualDiscount     = apperror.Validation("manual discounts are only allowed at the counter")
	ErrForbidden          = apperror.Forbidden("not allowed to access this order")
	ErrLoginRequired      = apperror.Unauthorized("login required for online orders")
	ErrPOSRequiresAdmin   = apperror.Forbidden("counter sales require an admin")
	ErrUnsupportedBulkSet = apperror.Validation("ids are required")
)
