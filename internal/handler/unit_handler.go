package handler

import (
	"net/http"

	"frota/internal/auth"
	"frota/internal/middleware"
	"frota/internal/service"
	"frota/pkg/pagination"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
)

// UnitHandler serves the fleet vehicles (units) and their driver data.
type UnitHandler struct {
	unitService service.UnitService
	gate        *middleware.Gate
}

func NewUnitHandler(unitService service.UnitService, gate *middleware.Gate) *UnitHandler {
	return &UnitHandler{unitService: unitService, gate: gate}
}

func (h *UnitHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := h.gate.RequirePermission(auth.ResourceUnits, auth.ActionView)
	edit := h.gate.RequirePermission(auth.ResourceUnits, auth.ActionEdit)

	units := router.Group("/api/units")
	{
		units.GET("", view, h.ListUnits)
		units.GET("/:id", view, h.GetUnit)
		units.POST("", edit, h.CreateUnit)
		units.PUT("/:id", edit, h.UpdateUnit)
		units.DELETE("/:id", edit, h.DeleteUnit)
	}
}

// ListUnits handles GET /api/units
// @Summary      List units
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Code, plate or driver name"
// @Param        status  query     string  false  "Active or Inactive"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/units [get]
func (h *UnitHandler) ListUnits(c *gin.Context) {
	p := pagination.Parse(c)

	units, total, err := h.unitService.ListUnits(c.Request.Context(), c.Query("search"), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, units, total, p.Page, p.Limit))
}

func (h *UnitHandler) GetUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	unit, err := h.unitService.GetUnit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// CreateUnit handles POST /api/units
// @Summary      Create unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UnitRequest  true  "Unit Payload"
// @Success      201      {object}  response.Response{data=model.Unit}
// @Failure      400      {object}  response.Response
// @Router       /api/units [post]
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	var req service.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	unit, err := h.unitService.CreateUnit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, unit))
}

func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	unit, err := h.unitService.UpdateUnit(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

func (h *UnitHandler) DeleteUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.unitService.DeleteUnit(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Unit deleted successfully"))
}
