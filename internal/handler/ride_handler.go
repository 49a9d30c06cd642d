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

const rideDefaultLimit = 50

type RideHandler struct {
	rideService service.RideService
	gate        *middleware.Gate
}

func NewRideHandler(rideService service.RideService, gate *middleware.Gate) *RideHandler {
	return &RideHandler{rideService: rideService, gate: gate}
}

func (h *RideHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := h.gate.RequirePermission(auth.ResourceRides, auth.ActionView)
	edit := h.gate.RequirePermission(auth.ResourceRides, auth.ActionEdit)

	rides := router.Group("/api/rides")
	{
		rides.GET("", view, h.ListRides)
		rides.GET("/:id", view, h.GetRide)
		rides.POST("", edit, h.CreateRide)
		rides.PUT("/:id", edit, h.UpdateRide)
		rides.PATCH("/:id/complete", edit, h.CompleteRide)
		rides.DELETE("/:id", edit, h.DeleteRide)
	}
}

// ListRides handles GET /api/rides
// @Summary      List rides
// @Description  Lists rides scheduled in [from, to]. Without dates the current month up to today is used.
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        from       query     string  false  "Start date (YYYY-MM-DD or RFC3339)"
// @Param        to         query     string  false  "End date (YYYY-MM-DD or RFC3339)"
// @Param        client_id  query     int     false  "Client filter"
// @Param        unit_id    query     int     false  "Unit filter"
// @Param        status     query     string  false  "Scheduled or Completed"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 50)"
// @Success      200        {object}  response.Response{data=response.Page}
// @Failure      400        {object}  response.Response
// @Router       /api/rides [get]
func (h *RideHandler) ListRides(c *gin.Context) {
	p := pagination.ParseWithDefault(c, rideDefaultLimit)
	from, ok := queryDate(c, "from", false)
	if !ok {
		return
	}
	to, ok := queryDate(c, "to", true)
	if !ok {
		return
	}
	clientID, ok := queryUint(c, "client_id")
	if !ok {
		return
	}
	unitID, ok := queryUint(c, "unit_id")
	if !ok {
		return
	}

	rides, total, err := h.rideService.ListRides(c.Request.Context(), service.RideListFilter{
		From:     from,
		To:       to,
		ClientID: clientID,
		UnitID:   unitID,
		Status:   c.Query("status"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rides, total, p.Page, p.Limit))
}

// GetRide handles GET /api/rides/:id
// @Summary      Get ride
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Ride ID"
// @Success      200  {object}  response.Response{data=service.RideResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/rides/{id} [get]
func (h *RideHandler) GetRide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ride))
}

// CreateRide handles POST /api/rides
// @Summary      Schedule a ride
// @Description  Route fares take the route's fixed price regardless of the submitted price. A ride created as Completed sends the receipt.
// @Tags         rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SaveRideRequest  true  "Ride Payload"
// @Success      201      {object}  response.Response{data=service.RideResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rides [post]
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req service.SaveRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ride))
}

// UpdateRide handles PUT /api/rides/:id
// @Summary      Update ride
// @Tags         rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                      true  "Ride ID"
// @Param        payload  body      service.SaveRideRequest  true  "Ride Payload"
// @Success      200      {object}  response.Response{data=service.RideResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/rides/{id} [put]
func (h *RideHandler) UpdateRide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.SaveRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ride))
}

// CompleteRide handles PATCH /api/rides/:id/complete. Completing twice is a no-op.
// @Summary      Mark ride completed
// @Tags         rides
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Ride ID"
// @Success      200  {object}  response.Response{data=service.RideResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/rides/{id}/complete [patch]
func (h *RideHandler) CompleteRide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.MarkCompleted(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ride))
}

func (h *RideHandler) DeleteRide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.rideService.DeleteRide(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Ride deleted successfully"))
}
