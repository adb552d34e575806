package coupon

import (
	"math"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID                string       `json:"id"`
	Code              string       `json:"code"`
	DiscountType      DiscountType `json:"discountType"`
	DiscountValue     float64      `json:"discountValue"`
	MinOrderValue     *float64     `json:"minOrderValue,omitempty"`
	UsageLimit        *int         `json:"usageLimit,omitempty"`
	UsageLimitPerUser *int         `json:"usageLimitPerUser,omitempty"`
	ValidFrom         *time.Time   `json:"validFrom,omitempty"`
	ExpiresAt         *time.Time   `json:"expiresAt,omitempty"`
	UsedCount         int          `json:"usedCount"`
	IsActive          bool         `json:"isActive"`
	CreatedAt         time.Time    `json:"createdAt"`
}

type CreateInput struct {
	Code              string       `json:"code" validate:"required,min=3,max=32,alphanum"`
	DiscountType      DiscountType `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue     float64      `json:"discountValue" validate:"gt=0"`
	MinOrderValue     *float64     `json:"minOrderValue" validate:"omitempty,gte=0"`
	UsageLimit        *int         `json:"usageLimit" validate:"omitempty,gt=0"`
	UsageLimitPerUser *int         `json:"usageLimitPerUser" validate:"omitempty,gt=0"`
	ValidFrom         *time.Time   `json:"validFrom"`
	ExpiresAt         *time.Time   `json:"expiresAt"`
}

type RedeemInput struct {
	Code       string
	OrderValue float64
	UserID     *string
	OrderID    string
}

// Quote is the outcome of a successful validation.
type Quote struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

// Discount returns the amount c takes off orderValue, never more than
// orderValue itself.
func Discount(c *Coupon, orderValue float64) float64 {
	if orderValue <= 0 {
		return 0
	}
	var d float64
	switch c.DiscountType {
	case DiscountPercentage:
		d = orderValue * c.DiscountValue / 100
	case DiscountFixed:
		d = c.DiscountValue
	}
	d = math.Round(d*100) / 100
	return math.Min(d, orderValue)
}

// Check reports why c cannot be applied to an order of orderValue at now,
// or nil. userUses is the number of prior redemptions by the same user; a
// negative value skips the per-user limit.
func (c *Coupon) Check(orderValue float64, now time.Time, userUses int) error {
	switch {
	case !c.IsActive:
		return ErrCouponInactive
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return ErrNotYetValid
	case c.ExpiresAt != nil && now.After(*c.ExpiresAt):
		return ErrExpired
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return ErrUsageLimitReached
	case c.MinOrderValue != nil && orderValue < *c.MinOrderValue:
		return ErrMinOrderNotMet
	case userUses >= 0 && c.UsageLimitPerUser != nil && userUses >= *c.UsageLimitPerUser:
		return ErrPerUserLimitReached
	}
	return nil
}
