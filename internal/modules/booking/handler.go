package booking

import (
	"net/http"

	"telecare/internal/domain"
	"telecare/internal/pkg/response"
	"telecare/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/transition", h.Transition)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request", fields)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Transition(c.Request.Context(), c.Param("id"), domain.BookingEvent(req.Event), req.Reason)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown lifecycle event")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		case ErrIllegalTransition:
			response.Error(c, http.StatusConflict, "ILLEGAL_TRANSITION", "Event is not legal from the current status")
		case ErrConcurrentUpdate:
			response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", "Booking changed concurrently, re-fetch and retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply transition")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}
