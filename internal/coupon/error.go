package coupon

import "pantry-be/internal/apperror"

var (
	ErrCouponNotFound      = apperror.NotFound("coupon not found")
	ErrCouponExists        = apperror.Conflict("coupon code already exists")
	ErrCouponInactive      = apperror.Validation("coupon is not active")
	ErrExpired             = apperror.Validation("coupon expired")
	ErrNotYetValid         = apperror.Validation("coupon not yet valid")
	ErrUsageLimitReached   = apperror.Validation("coupon usage limit reached")
	ErrMinOrderNotMet      = apperror.Validation("minimum order value not met")
	ErrPerUserLimitReached = apperror.Validation("per-user limit reached")
	ErrInvalidWindow       = apperror.Validation("expiresAt must be after validFrom")
	ErrPercentageTooHigh   = apperror.Validation("percentage discount cannot exceed 100")
)
