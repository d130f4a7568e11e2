package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/middleware"
	"github.com/uniconnect/uniconnect-api/internal/service"
	"github.com/uniconnect/uniconnect-api/pkg/response"
)

// StatsHandler exposes complaint statistics to admins.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Complaints godoc
// @Summary Complaint statistics
// @Description Return complaint totals grouped by status and category
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/complaints [get]
func (h *StatsHandler) Complaints(c *gin.Context) {
	stats, cacheHit, err := h.service.ComplaintStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}
