package handler

import (
	"net/http"

	"pantry-be/internal/pos"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) QuotePOS(c *gin.Context) {
	var in pos.QuoteInput
	if !bindJSON(c, &in) {
		return
	}

	q, err := h.POS.Quote(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handlers) CheckoutPOS(c *gin.Context) {
	var in pos.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.POS.Checkout(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Receipt handles GET /api/pos/receipt/:id and answers with a PNG.
func (h *Handlers) Receipt(c *gin.Context) {
	png, err := h.POS.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
