package handler

import (
	"net/http"
	"time"

	"pantry-be/internal/apperror"

	"github.com/gin-gonic/gin"
)

// parseDay accepts RFC 3339 timestamps or plain dates.
func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

// AnalyticsSummary handles GET /api/analytics/summary?from=&to=
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	from, err := parseDay(c.Query("from"))
	if err != nil {
		respondError(c, apperror.Validation("from must be a date"))
		return
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		respondError(c, apperror.Validation("to must be a date"))
		return
	}

	sum, err := h.Analytics.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
