package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spendwise/internal/services"
)

// DashboardHandler serves the monthly overview.
type DashboardHandler struct {
	summaryService services.SummaryServicer
	alertService   services.AlertServicer
	now            func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(summaryService services.SummaryServicer, alertService services.AlertServicer) *DashboardHandler {
	return &DashboardHandler{summaryService: summaryService, alertService: alertService, now: time.Now}
}

// DashboardResponse is the monthly overview.
type DashboardResponse struct {
	Summary *services.MonthlySummary `json:"summary"`
	Alerts  []services.Alert         `json:"alerts"`
}

// GetDashboard handles the monthly overview request.
// @Summary     Monthly dashboard
// @Description Total, per-category totals and averages, and budget alerts for a month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (defaults to the current year)"
// @Param       month query int false "Month 1-12 (defaults to the current month)"
// @Success     200 {object} DashboardResponse "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := parsePeriod(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	summary, err := h.summaryService.MonthlySummary(ctx, userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.alertService.Generate(ctx, userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{Summary: summary, Alerts: alerts})
}
