package payment

import "time"

const (
	StatusCreated  = "CREATED"
	StatusCaptured = "CAPTURED"
)

// Payment tracks one gateway intent for an order.
type Payment struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"orderId"`
	IntentID   string     `json:"intentId"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	PaymentRef *string    `json:"paymentRef,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

type IntentInput struct {
	OrderID string `json:"orderId" validate:"required"`
}

type VerifyInput struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}
