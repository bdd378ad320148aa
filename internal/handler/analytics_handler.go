package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiofit/class-booking-api/internal/service"
	"github.com/studiofit/class-booking-api/pkg/response"
)

// AnalyticsHandler exposes the admin dashboard snapshot.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard godoc
// @Summary Aggregate class and enrollment counts
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	snapshot, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
