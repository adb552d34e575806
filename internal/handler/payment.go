package handler

import (
	"net/http"

	"pantry-be/internal/payment"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var in payment.IntentInput
	if !bindJSON(c, &in) {
		return
	}

	intent, err := h.Payments.CreateIntent(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

func (h *Handlers) VerifyPayment(c *gin.Context) {
	var in payment.VerifyInput
	if !bindJSON(c, &in) {
		return
	}

	o, err := h.Payments.Verify(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
