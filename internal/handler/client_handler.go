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

type ClientHandler struct {
	clientService service.ClientService
	gate          *middleware.Gate
}

func NewClientHandler(clientService service.ClientService, gate *middleware.Gate) *ClientHandler {
	return &ClientHandler{clientService: clientService, gate: gate}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := h.gate.RequirePermission(auth.ResourceClients, auth.ActionView)
	edit := h.gate.RequirePermission(auth.ResourceClients, auth.ActionEdit)
	// Ride forms read these lookups, so ride viewers get them without Clients access.
	lookup := h.gate.RequirePermission(auth.ResourceRides, auth.ActionView)

	clients := router.Group("/api/clients")
	{
		clients.GET("", view, h.ListClients)
		clients.GET("/:id", view, h.GetClient)
		clients.POST("", edit, h.CreateClient)
		clients.PUT("/:id", edit, h.UpdateClient)
		clients.DELETE("/:id", edit, h.DeleteClient)

		clients.GET("/:id/requesters", lookup, h.ListRequesters)
		clients.GET("/:id/riders", lookup, h.ListRiders)
		clients.GET("/:id/cost-centers", lookup, h.ListCostCenters)
		clients.GET("/:id/routes", lookup, h.ListActiveRoutes)
	}
}

// ListClients handles GET /api/clients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Name, trade name or document"
// @Param        status  query     string  false  "Active or Inactive"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	p := pagination.Parse(c)

	clients, total, err := h.clientService.ListClients(c.Request.Context(), service.ClientListFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, clients, total, p.Page, p.Limit))
}

// GetClient returns a client with its cost centers and authorized users
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  response.Response{data=model.Client}
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// CreateClient handles POST /api/clients
// @Summary      Create client
// @Description  Creates a client together with its cost centers and authorized users. Child rows that fail are reported as warnings.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ClientRequest  true  "Client Payload"
// @Success      201      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// UpdateClient handles PUT /api/clients/:id
// @Summary      Update client
// @Description  Updates the client and reconciles its child collections against the submitted rows.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                    true  "Client ID"
// @Param        payload  body      service.ClientRequest  true  "Client Payload"
// @Success      200      {object}  response.Response{data=service.ClientResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// DeleteClient handles DELETE /api/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Client deleted successfully"))
}

func (h *ClientHandler) ListRequesters(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	users, err := h.clientService.Requesters(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

func (h *ClientHandler) ListRiders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	users, err := h.clientService.Riders(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

func (h *ClientHandler) ListCostCenters(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	centers, err := h.clientService.CostCenters(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, centers))
}

func (h *ClientHandler) ListActiveRoutes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	routes, err := h.clientService.ActiveRoutes(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, routes))
}
