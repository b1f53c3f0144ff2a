package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skybook/internal/domain"
	"skybook/internal/service/wizard"
)

// WizardUseCase is the booking wizard surface the handler drives.
type WizardUseCase interface {
	Start(ctx context.Context, flightID int64) (*wizard.Session, error)
	Get(ctx context.Context, id string) (*wizard.Session, error)
	UpdateDraft(ctx context.Context, id string, draft domain.BookingDraft) (*wizard.Session, error)
	Forward(ctx context.Context, id string) (*wizard.Session, error)
	Back(ctx context.Context, id string) (*wizard.Session, error)
	Quote(ctx context.Context, id string) (int64, error)
	Pay(ctx context.Context, id string) (*wizard.Session, error)
	Retry(ctx context.Context, id string) (*wizard.Session, error)
	Close(ctx context.Context, id string) error
}

var _ WizardUseCase = (*wizard.Service)(nil)

type WizardHandler struct {
	service WizardUseCase
}

type startWizardRequest struct {
	FlightID int64 `json:"flight_id"`
}

type updateDraftRequest struct {
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	SeatsBooked int    `json:"seats_booked"`
	TravelClass string `json:"travel_class"`
}

func NewWizardHandler(service WizardUseCase) *WizardHandler {
	return &WizardHandler{service: service}
}

func (h *WizardHandler) Register(router *gin.RouterGroup) {
	router.POST("/wizard/", h.start)
	router.GET("/wizard/:id/", h.get)
	router.PUT("/wizard/:id/draft/", h.updateDraft)
	router.POST("/wizard/:id/next/", h.forward)
	router.POST("/wizard/:id/back/", h.back)
	router.GET("/wizard/:id/quote/", h.quote)
	router.POST("/wizard/:id/pay/", h.pay)
	router.POST("/wizard/:id/retry/", h.retry)
	router.DELETE("/wizard/:id/", h.close)
}

func (h *WizardHandler) start(c *gin.Context) {
	var req startWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Start(c.Request.Context(), req.FlightID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *WizardHandler) get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) updateDraft(c *gin.Context) {
	var req updateDraftRequest
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

	session, err := h.service.UpdateDraft(c.Request.Context(), c.Param("id"), domain.BookingDraft{
		Gender:      gender,
		DateOfBirth: req.DateOfBirth,
		Nationality: req.Nationality,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		SeatsBooked: req.SeatsBooked,
		TravelClass: class,
	})
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) forward(c *gin.Context) {
	session, err := h.service.Forward(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) back(c *gin.Context) {
	session, err := h.service.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) quote(c *gin.Context) {
	total, err := h.service.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (h *WizardHandler) pay(c *gin.Context) {
	session, err := h.service.Pay(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) retry(c *gin.Context) {
	session, err := h.service.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		wizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *WizardHandler) close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func wizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrSessionStale):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
