package payment

import "pantry-be/internal/apperror"

var (
	ErrNothingToPay = apperror.Validation("order has nothing to pay online")
	ErrCounterOrder = apperror.Validation("counter orders are settled at the till")
)
