package handler

import (
	"net/http"

	"pantry-be/internal/coupon"
	"pantry-be/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) CreateCoupon(c *gin.Context) {
	var in coupon.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	cp, err := h.Coupons.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *Handlers) ListCoupons(c *gin.Context) {
	list, err := h.Coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) DeleteCoupon(c *gin.Context) {
	if err := h.Coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type validateCouponRequest struct {
	Code       string  `json:"code"`
	OrderValue float64 `json:"orderValue"`
}

// ValidateCoupon handles POST /api/coupons/validate. It previews the
// discount for the caller without consuming a use.
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var userID *string
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		userID = &id
	}

	q, err := h.Coupons.Validate(ctx, req.Code, req.OrderValue, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
