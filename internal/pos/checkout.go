package pos

import (
	"math"

	"pantry-be/internal/order"
	"pantry-be/internal/utils"
)

// DefaultPaymentMethod is used when the cashier does not pick one.
const DefaultPaymentMethod = "Cash"

type Discount struct {
	Amount    float64 `json:"amount" validate:"gte=0"`
	IsPercent bool    `json:"isPercent"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Compute prices a cart. A percentage discount applies to the subtotal and
// the total never drops below zero. Amounts are rounded the same way order
// creation rounds them so a quote matches the stored order.
func Compute(lines []Line, taxRate float64, d Discount) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.Amount()
	}
	subtotal = utils.RoundMoney(subtotal)

	discount := d.Amount
	if d.IsPercent {
		discount = subtotal * d.Amount / 100
	}

	t := Totals{
		Subtotal: subtotal,
		Tax:      utils.RoundMoney(subtotal * taxRate),
		Discount: utils.RoundMoney(math.Max(0, discount)),
	}
	t.Total = utils.RoundMoney(math.Max(0, t.Subtotal+t.Tax-t.Discount))
	return t
}

// Change is what the cashier hands back. It is never negative.
func Change(collected, total float64) float64 {
	return utils.RoundMoney(math.Max(collected-total, 0))
}

func IsFullyPaid(collected, total float64) bool {
	return collected >= total
}

// Customer is the optional walk-in contact printed on the order.
type Customer struct {
	Name  string `json:"name" validate:"max=120"`
	Phone string `json:"phone" validate:"max=32"`
}

// BuildOrder turns a rung-up cart into a counter order submission.
func BuildOrder(lines []Line, totals Totals, collected float64, paymentMethod string, customer Customer) order.CreateInput {
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	items := make([]order.ItemInput, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.ItemInput{
			ProductID: l.ProductID,
			Name:      l.Name,
			UOM:       l.UOM,
			Qty:       l.Qty,
			Price:     l.Price,
			Image:     l.Image,
		})
	}

	return order.CreateInput{
		Channel: order.ChannelPOS,
		ShippingAddress: order.ShippingAddress{
			FullName: customer.Name,
			Phone:    customer.Phone,
			Address:  order.CounterSaleAddress,
		},
		Items:           items,
		PaymentMethod:   paymentMethod,
		Discount:        totals.Discount,
		AmountCollected: &collected,
		IsPaid:          IsFullyPaid(collected, totals.Total),
	}
}
