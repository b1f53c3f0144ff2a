package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skybook/internal/domain"
	"skybook/internal/repository"
	"skybook/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID    int64  `json:"flight_id"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	SeatsBooked int    `json:"seats_booked"`
	TravelClass string `json:"travel_class"`
	PaymentRef  string `json:"payment_ref"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/create/", h.create)
	router.GET("/customer-bookings/:email/", h.listByEmail)
	router.DELETE("/cancel-booking/:id/", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gender, err := domain.ParseGender(req.Gender)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	class, err := domain.ParseTravelClass(req.TravelClass)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := domain.BookingDraft{
		Gender:      gender,
		DateOfBirth: req.DateOfBirth,
		Nationality: req.Nationality,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		SeatsBooked: req.SeatsBooked,
		TravelClass: class,
	}
	confirmation := domain.PaymentConfirmation{Token: req.PaymentRef, CreatedAt: time.Now()}

	created, err := h.service.Submit(c.Request.Context(), req.FlightID, draft, confirmation)
	if err != nil {
		if errors.Is(err, repository.ErrNoAvailableSeats) {
			c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Seats unavailable"}})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) listByEmail(c *gin.Context) {
	email := c.Param("email")
	if authed, ok := c.Get(ContextEmailKey); !ok || authed != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "bookings belong to another account"})
		return
	}

	bookings, err := h.service.ListByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cancelled)
}
