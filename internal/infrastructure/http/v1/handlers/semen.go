package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain/semen"
	"rebanho/internal/infrastructure/http/v1/dto"
)

// SemenHandler serves the dose inventory endpoints.
type SemenHandler struct {
	*BaseHandler
	service *semen.Service
}

func NewSemenHandler(base *BaseHandler, service *semen.Service) *SemenHandler {
	return &SemenHandler{BaseHandler: base, service: service}
}

// ListLots handles GET /api/v1/semen/lotes.
func (h *SemenHandler) ListLots(c *gin.Context) {
	lots, err := h.service.AvailableLots(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromLots(lots),
		TotalCount: int64(len(lots)),
	})
}

// GetLot handles GET /api/v1/semen/lotes/:id.
func (h *SemenHandler) GetLot(c *gin.Context) {
	lotID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid lot id"))
		return
	}

	lot, err := h.service.GetLot(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLot(lot))
}

// Withdraw handles POST /api/v1/semen/saidas. The batch returns 200 with
// per-item outcomes; partial rejection is not an HTTP error.
func (h *SemenHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]semen.WithdrawalItem, 0, len(req.Items))
	for _, item := range req.Items {
		lotID, err := id.Parse(item.LotID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid lot id").WithDetail("lotId", item.LotID))
			return
		}
		items = append(items, semen.WithdrawalItem{LotID: lotID, Quantity: item.Quantity})
	}

	results, err := h.service.Withdraw(c.Request.Context(), semen.WithdrawalRequest{
		Destination:    req.Destination,
		WithdrawalDate: req.WithdrawalDate,
		DocumentNumber: req.DocumentNumber,
		Items:          items,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WithdrawalResponse{Results: results})
}

// LotWithdrawals handles GET /api/v1/semen/lotes/:id/saidas.
func (h *SemenHandler) LotWithdrawals(c *gin.Context) {
	lotID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid lot id"))
		return
	}

	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}

	withdrawals, err := h.service.Withdrawals(c.Request.Context(), lotID, page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromWithdrawals(withdrawals),
		TotalCount: int64(len(withdrawals)),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}
