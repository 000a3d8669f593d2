package analytics

import (
	"net/http"
	"time"

	"telecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultWindow = 30 * 24 * time.Hour

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", h.GetAnalytics)
}

// GetAnalytics serves the snapshot for ?from=&to= (RFC 3339). The window
// defaults to the trailing thirty days.
func (h *Handler) GetAnalytics(c *gin.Context) {
	to := time.Now().UTC()
	from := to.Add(-defaultWindow)

	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be RFC 3339")
			return
		}
		to = parsed
		from = to.Add(-defaultWindow)
	}
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be RFC 3339")
			return
		}
		from = parsed
	}
	if !from.Before(to) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must precede to")
		return
	}

	snap := h.service.Aggregate(c.Request.Context(), from, to)
	response.Success(c, http.StatusOK, gin.H{"analytics": snap})
}
