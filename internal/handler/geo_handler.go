package handler

import (
	"net/http"

	"frota/internal/middleware"
	"frota/internal/service"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
)

// GeoHandler exposes the state and city lookups used by address forms.
type GeoHandler struct {
	geoService service.GeoService
	gate       *middleware.Gate
}

func NewGeoHandler(geoService service.GeoService, gate *middleware.Gate) *GeoHandler {
	return &GeoHandler{geoService: geoService, gate: gate}
}

func (h *GeoHandler) RegisterRoutes(router *gin.RouterGroup) {
	geo := router.Group("/api/geo")
	geo.Use(h.gate.RequireSession())
	{
		geo.GET("/states", h.States)
		geo.GET("/states/:uf/cities", h.Cities)
	}
}

// States lists the federation units. An unreachable upstream yields an empty list.
// @Summary      List states
// @Tags         geo
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]geo.Place}
// @Router       /api/geo/states [get]
func (h *GeoHandler) States(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.geoService.States(c.Request.Context())))
}

// Cities lists the municipalities of a state.
// @Summary      List cities of a state
// @Tags         geo
// @Produce      json
// @Security     BearerAuth
// @Param        uf   path      string  true  "State code, e.g. SP"
// @Success      200  {object}  response.Response{data=[]geo.Place}
// @Router       /api/geo/states/{uf}/cities [get]
func (h *GeoHandler) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.geoService.Cities(c.Request.Context(), c.Param("uf"))))
}
