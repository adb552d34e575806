package handler

import (
	"net/http"
	"strings"

	"pantry-be/internal/order"

	"github.com/gin-gonic/gin"
)

// parseStatus accepts both upper-case and title-case status names.
func parseStatus(s string) order.Status {
	return order.Status(strings.ToUpper(strings.TrimSpace(s)))
}

func (h *Handlers) CreateOrder(c *gin.Context) {
	var in order.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	o, err := h.Orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// ListOrders handles GET /api/orders. Customers only see their own orders.
func (h *Handlers) ListOrders(c *gin.Context) {
	opts := order.ListOptions{
		Limit: queryInt(c, "limit"),
		Page:  queryInt(c, "page"),
	}
	if v := c.Query("status"); v != "" {
		s := parseStatus(v)
		opts.Status = &s
	}
	if v := c.Query("channel"); v != "" {
		ch := order.Channel(strings.ToUpper(v))
		opts.Channel = &ch
	}
	opts.UserID = optionalQuery(c, "userId")

	res, err := h.Orders.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) GetOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles PUT /api/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), parseStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkUpdateOrderStatus handles POST /api/orders/status/bulk. Per-order
// failures are reported in the results, not as a request error.
func (h *Handlers) BulkUpdateOrderStatus(c *gin.Context) {
	var req bulkStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.Orders.BulkUpdateStatus(c.Request.Context(), req.IDs, parseStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
