package handler

import (
	"net/http"

	"frota/internal/auth"
	"frota/internal/middleware"
	"frota/internal/service"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
	gate          *middleware.Gate
}

func NewReportHandler(reportService service.ReportService, gate *middleware.Gate) *ReportHandler {
	return &ReportHandler{reportService: reportService, gate: gate}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	reports.Use(h.gate.RequirePermission(auth.ResourceReports, auth.ActionView))
	{
		reports.GET("/rides", h.RideReport)
	}
}

// RideReport handles GET /api/reports/rides
// @Summary      Ride report
// @Description  Rides in the period with per-day totals. The period defaults to the last month.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start      query     string  false  "Start date (YYYY-MM-DD or RFC3339)"
// @Param        end        query     string  false  "End date (YYYY-MM-DD or RFC3339)"
// @Param        client_id  query     int     false  "Client filter"
// @Success      200        {object}  response.Response{data=service.RideReport}
// @Failure      400        {object}  response.Response
// @Router       /api/reports/rides [get]
func (h *ReportHandler) RideReport(c *gin.Context) {
	start, ok := queryDate(c, "start", false)
	if !ok {
		return
	}
	end, ok := queryDate(c, "end", true)
	if !ok {
		return
	}
	clientID, ok := queryUint(c, "client_id")
	if !ok {
		return
	}

	report, err := h.reportService.RideReport(c.Request.Context(), service.ReportQuery{
		Start:    start,
		End:      end,
		ClientID: clientID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
