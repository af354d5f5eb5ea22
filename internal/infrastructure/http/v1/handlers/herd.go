package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rebanho/internal/core/apperror"
	"rebanho/internal/domain/herd"
	"rebanho/internal/infrastructure/http/v1/dto"
)

// HerdHandler serves the herd master endpoints.
type HerdHandler struct {
	*BaseHandler
	service *herd.Service
}

func NewHerdHandler(base *BaseHandler, service *herd.Service) *HerdHandler {
	return &HerdHandler{BaseHandler: base, service: service}
}

// List handles GET /api/v1/animais.
func (h *HerdHandler) List(c *gin.Context) {
	var req dto.ListAnimalsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	animals, total, err := h.service.List(c.Request.Context(), req.Series, req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromAnimals(animals),
		TotalCount: total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

// Get handles GET /api/v1/animais/:id.
func (h *HerdHandler) Get(c *gin.Context) {
	animalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid animal id"))
		return
	}

	animal, err := h.service.Get(c.Request.Context(), animalID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAnimal(animal))
}
