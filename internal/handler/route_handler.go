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

type RouteHandler struct {
	routeService service.RouteService
	gate         *middleware.Gate
}

func NewRouteHandler(routeService service.RouteService, gate *middleware.Gate) *RouteHandler {
	return &RouteHandler{routeService: routeService, gate: gate}
}

func (h *RouteHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := h.gate.RequirePermission(auth.ResourceRoutes, auth.ActionView)
	edit := h.gate.RequirePermission(auth.ResourceRoutes, auth.ActionEdit)

	routes := router.Group("/api/routes")
	{
		routes.GET("", view, h.ListRoutes)
		routes.GET("/:id", view, h.GetRoute)
		routes.POST("", edit, h.CreateRoute)
		routes.PUT("/:id", edit, h.UpdateRoute)
		routes.DELETE("/:id", edit, h.DeleteRoute)
	}
}

// ListRoutes handles GET /api/routes
// @Summary      List fixed-price routes
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  query     int  false  "Only routes of this client"
// @Param        page       query     int  false  "Page number (default 1)"
// @Param        limit      query     int  false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Page}
// @Router       /api/routes [get]
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	p := pagination.Parse(c)
	clientID, ok := queryUint(c, "client_id")
	if !ok {
		return
	}

	routes, total, err := h.routeService.ListRoutes(c.Request.Context(), clientID, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, routes, total, p.Page, p.Limit))
}

func (h *RouteHandler) GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	route, err := h.routeService.GetRoute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, route))
}

// CreateRoute handles POST /api/routes
// @Summary      Create route
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RouteRequest  true  "Route Payload"
// @Success      201      {object}  response.Response{data=model.Route}
// @Failure      400      {object}  response.Response
// @Router       /api/routes [post]
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req service.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	route, err := h.routeService.CreateRoute(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, route))
}

func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	route, err := h.routeService.UpdateRoute(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, route))
}

func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.routeService.DeleteRoute(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Route deleted successfully"))
}
