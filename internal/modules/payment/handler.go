package payment

import (
	"net/http"

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
	rg.POST("/bookings/:id/payments", h.RecordPayment)
	rg.GET("/bookings/:id/payments", h.ListPayments)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment report")
		case ErrBookingNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		case ErrDuplicateLivePayment:
			response.Error(c, http.StatusConflict, "DUPLICATE_LIVE_PAYMENT", "Booking already has a live payment")
		case ErrNoPriceSnapshot:
			response.Error(c, http.StatusConflict, "NO_PRICE_SNAPSHOT", "Booking price is not frozen yet")
		case ErrAmountMismatch:
			response.Error(c, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH", "Paid amount does not match the booking price")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) ListPayments(c *gin.Context) {
	payments, err := h.service.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrBookingNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list payments")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}
