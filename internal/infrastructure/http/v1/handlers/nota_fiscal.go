package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/core/types"
	"rebanho/internal/domain/fiscal"
	"rebanho/internal/infrastructure/http/v1/dto"
)

// NotaFiscalHandler serves the document endpoints.
type NotaFiscalHandler struct {
	*BaseHandler
	service *fiscal.Service
}

func NewNotaFiscalHandler(base *BaseHandler, service *fiscal.Service) *NotaFiscalHandler {
	return &NotaFiscalHandler{BaseHandler: base, service: service}
}

// Create handles POST /api/v1/notas-fiscais.
func (h *NotaFiscalHandler) Create(c *gin.Context) {
	var req dto.NotaFiscalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromNotaFiscal(doc))
}

// Update handles PUT /api/v1/notas-fiscais/:id.
func (h *NotaFiscalHandler) Update(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.NotaFiscalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, req.ToEntity())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromNotaFiscal(doc))
}

// Get handles GET /api/v1/notas-fiscais/:id.
func (h *NotaFiscalHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromNotaFiscal(doc))
}

// GetByNumber handles GET /api/v1/notas-fiscais/numero/:number.
func (h *NotaFiscalHandler) GetByNumber(c *gin.Context) {
	doc, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromNotaFiscal(doc))
}

// List handles GET /api/v1/notas-fiscais.
func (h *NotaFiscalHandler) List(c *gin.Context) {
	var req dto.ListNotaFiscalRequest
	if !h.BindQuery(c, &req) {
		return
	}

	docs, total, err := h.service.List(c.Request.Context(), fiscal.ListFilter{
		Direction: types.Direction(req.Direction),
		Kind:      types.ProductKind(req.Kind),
		From:      req.From,
		To:        req.To,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.NotaFiscalResponse, 0, len(docs))
	for i := range docs {
		items = append(items, dto.FromNotaFiscal(&docs[i]))
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}
