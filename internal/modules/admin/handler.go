package admin

import (
	"net/http"

	"telecare/internal/domain"
	"telecare/internal/modules/booking"
	"telecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/override", h.Override)
	rg.GET("/bookings/:id/audit", h.AuditTrail)
}

func (h *Handler) Override(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Override(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status), req.Note, req.OperatorID)
	if err != nil {
		switch err {
		case booking.ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown booking status")
		case booking.ErrNoteRequired:
			response.Error(c, http.StatusBadRequest, "NOTE_REQUIRED", "Overrides must carry an audit note")
		case booking.ErrNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		case booking.ErrConcurrentUpdate:
			response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", "Booking changed concurrently, retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply override")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AuditTrail(c *gin.Context) {
	events, err := h.service.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load audit trail")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}
