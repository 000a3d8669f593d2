package settlement

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
	rg.GET("/bookings/:id/settlement", h.GetSettlement)
}

// GetSettlement returns the derived settlement record for a booking. The
// record is recomputed on every call; only the escrow release state is read
// from storage.
func (h *Handler) GetSettlement(c *gin.Context) {
	record, err := h.service.ComputePayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrBookingNotFound:
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking does not exist")
		case ErrMissingPriceSnapshot:
			response.Error(c, http.StatusConflict, "MISSING_PRICE_SNAPSHOT", "Booking is not confirmed yet")
		case ErrNegativeSettlement:
			response.Error(c, http.StatusUnprocessableEntity, "NEGATIVE_SETTLEMENT", "Fee schedule exceeds booking price")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute settlement")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"settlement": toResponse(record)})
}
