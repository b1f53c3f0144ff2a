package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skybook/internal/domain"
	"skybook/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights/", h.list)
	router.GET("/flights/:id/", h.get)
	router.GET("/search/", h.search)
	router.GET("/locations/from/", h.locationsFrom)
	router.GET("/locations/to/", h.locationsTo)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) search(c *gin.Context) {
	filter := domain.FlightSearch{
		FlightNumber:  c.Query("flight_number"),
		FromLocation:  c.Query("from_location"),
		ToLocation:    c.Query("to_location"),
		DepartureDate: c.Query("departure_date"),
	}

	flights, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) locationsFrom(c *gin.Context) { h.locations(c, "from") }
func (h *FlightHandler) locationsTo(c *gin.Context)   { h.locations(c, "to") }

func (h *FlightHandler) locations(c *gin.Context, direction string) {
	locations, err := h.service.Locations(c.Request.Context(), direction)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, locations)
}
