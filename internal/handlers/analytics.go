package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/service"
)

// AnalyticsHandler serves the daily and weekly time-usage summaries. The
// caller's identity travels in the request context.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetDaySummary handles GET /api/v1/analytics/day-summary?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetDaySummary(c *gin.Context) {
	summary, err := h.analyticsService.GetDaySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err, "day summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetWeeklySummary handles GET /api/v1/analytics/weekly?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetWeeklySummary(c *gin.Context) {
	summary, err := h.analyticsService.GetWeeklySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err, "weekly summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RecomputeWeeklySummary handles POST /api/v1/analytics/weekly/recompute?date=YYYY-MM-DD
func (h *AnalyticsHandler) RecomputeWeeklySummary(c *gin.Context) {
	summary, err := h.analyticsService.RecomputeWeeklySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err, "weekly recompute")
		return
	}

	c.JSON(http.StatusOK, summary)
}
