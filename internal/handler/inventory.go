package handler

import (
	"net/http"
	"strings"

	"pantry-be/internal/inventory"
	"pantry-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets a client retry an adjustment without applying
// it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

type adjustResponse struct {
	Success     bool                        `json:"success"`
	Transaction *inventory.StockTransaction `json:"transaction"`
	NewStock    int                         `json:"newStock"`
	Replayed    bool                        `json:"replayed,omitempty"`
}

// AdjustStock handles POST /api/inventory
func (h *Handlers) AdjustStock(c *gin.Context) {
	var in inventory.AdjustInput
	if !bindJSON(c, &in) {
		return
	}

	ctx := c.Request.Context()
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		in.CreatedBy = &id
	}
	if key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)); key != "" {
		in.IdempotencyKey = &key
	}

	res, err := h.Inventory.Adjust(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, adjustResponse{
		Success:     true,
		Transaction: res.Transaction,
		NewStock:    res.NewStock,
		Replayed:    res.Replayed,
	})
}

// ListStockTransactions handles GET /api/inventory?productId=
func (h *Handlers) ListStockTransactions(c *gin.Context) {
	txs, err := h.Inventory.List(c.Request.Context(), optionalQuery(c, "productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handlers) LowStock(c *gin.Context) {
	items, err := h.Inventory.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
