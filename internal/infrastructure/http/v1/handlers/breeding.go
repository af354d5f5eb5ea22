package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain/breeding"
)

// BreedingHandler serves the diagnosis schedule endpoints.
type BreedingHandler struct {
	*BaseHandler
	service *breeding.Service
}

func NewBreedingHandler(base *BaseHandler, service *breeding.Service) *BreedingHandler {
	return &BreedingHandler{BaseHandler: base, service: service}
}

// Due handles GET /api/v1/diagnosticos?until=2026-09-15. Defaults to today.
func (h *BreedingHandler) Due(c *gin.Context) {
	upTo := time.Now()
	if raw := c.Query("until"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("until must be YYYY-MM-DD"))
			return
		}
		upTo = parsed
	}

	schedules, err := h.service.DueSchedules(c.Request.Context(), upTo)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedules, "totalCount": len(schedules)})
}

type markResultRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed empty"`
}

// MarkResult handles PATCH /api/v1/diagnosticos/:id.
func (h *BreedingHandler) MarkResult(c *gin.Context) {
	scheduleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid schedule id"))
		return
	}

	var req markResultRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.MarkResult(c.Request.Context(), scheduleID, req.Status); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
