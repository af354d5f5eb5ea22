package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebanho/internal/domain/ledger"
)

// LedgerHandler exposes posted movements for inspection.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// ByDocument handles GET /api/v1/ledger/movimentos/:number.
func (h *LedgerHandler) ByDocument(c *gin.Context) {
	movements, err := h.service.MovementsForDocument(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": movements, "totalCount": len(movements)})
}
