package order

import "time"

type Channel string

const (
	ChannelOnline Channel = "ONLINE"
	ChannelPOS    Channel = "POS"
)

// CounterSaleAddress marks POS orders submitted without an explicit channel.
const CounterSaleAddress = "Counter Sale"

// PaymentCOD is collected on delivery, so it may be delivered unpaid.
const PaymentCOD = "COD"

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Item is a snapshot of a product line at order time.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UOM       string  `json:"uom"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          *string         `json:"userId,omitempty"`
	Channel         Channel         `json:"channel"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []Item          `json:"items"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	DiscountPrice   float64         `json:"discountPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	CouponCode      *string         `json:"couponCode,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentIntentID *string         `json:"paymentIntentId,omitempty"`
	PaymentRef      *string         `json:"paymentRef,omitempty"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	Status          Status          `json:"status"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}

type ItemInput struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	UOM       string  `json:"uom"`
	Qty       int     `json:"qty" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
	Image     string  `json:"image"`
}

type CreateInput struct {
	Channel         Channel         `json:"channel" validate:"omitempty,oneof=ONLINE POS"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []ItemInput     `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,max=32"`
	CouponCode      *string         `json:"couponCode"`
	// Discount is a manual amount applied at the counter.
	Discount float64 `json:"discountPrice" validate:"gte=0"`
	// AmountCollected is the cash taken at the counter; the order is paid
	// when it covers the total.
	AmountCollected *float64 `json:"amountCollected" validate:"omitempty,gte=0"`
	IsPaid          bool     `json:"isPaid"`
	UserID          *string  `json:"-"`
}

// ResolveChannel returns the explicit channel, falling back to the
// counter-sale address for payloads that predate the channel field.
func (in CreateInput) ResolveChannel() Channel {
	if in.Channel != "" {
		return in.Channel
	}
	if in.ShippingAddress.Address == CounterSaleAddress {
		return ChannelPOS
	}
	return ChannelOnline
}

type PaymentConfirmation struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature"`
}

type ListOptions struct {
	Status  *Status
	Channel *Channel
	UserID  *string
	Limit   int
	Page    int
}

type ListResult struct {
	Items []*Order `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

type BulkResult struct {
	ID     string  `json:"id"`
	Status *Status `json:"status,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Pricing holds the configured tax and shipping rules.
type Pricing struct {
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64
}
