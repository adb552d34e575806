// Package handler exposes the services over a gin JSON API.
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"pantry-be/internal/analytics"
	"pantry-be/internal/apperror"
	"pantry-be/internal/category"
	"pantry-be/internal/coupon"
	"pantry-be/internal/inventory"
	"pantry-be/internal/logger"
	"pantry-be/internal/order"
	"pantry-be/internal/payment"
	"pantry-be/internal/pos"
	"pantry-be/internal/product"
	"pantry-be/internal/uom"
	"pantry-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers holds the services the routes call into.
type Handlers struct {
	Users      user.Service
	Products   product.Service
	Categories category.Service
	UOMs       uom.Service
	Inventory  inventory.Service
	Orders     order.Service
	POS        pos.Service
	Coupons    coupon.Service
	Payments   payment.Service
	Analytics  analytics.Service
}

// respondError writes {"error": message} with the status of the error kind.
// Unclassified errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperror.PublicMessage(err)})
}

// bindJSON decodes the body into dst. It answers 400 and returns false on
// malformed input. Field rules are checked by the services.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
