package dto

import (
	"time"

	"rebanho/internal/domain/semen"
)

// LotResponse is one semen lot.
type LotResponse struct {
	ID             string    `json:"id"`
	BullName       string    `json:"bullName"`
	Supplier       string    `json:"supplier,omitempty"`
	DocumentNumber string    `json:"documentNumber,omitempty"`
	PurchaseDate   time.Time `json:"purchaseDate"`
	UnitPrice      string    `json:"unitPrice"`
	Location       string    `json:"location,omitempty"`
	TotalDoses     int       `json:"totalDoses"`
	AvailableDoses int       `json:"availableDoses"`
	UsedDoses      int       `json:"usedDoses"`
}

func FromLot(lot *semen.Lot) LotResponse {
	return LotResponse{
		ID:             lot.ID.String(),
		BullName:       lot.BullName,
		Supplier:       lot.Supplier,
		DocumentNumber: lot.DocumentNumber,
		PurchaseDate:   lot.PurchaseDate,
		UnitPrice:      lot.UnitPrice.StringFixed(2),
		Location:       lot.Location,
		TotalDoses:     lot.TotalDoses,
		AvailableDoses: lot.AvailableDoses,
		UsedDoses:      lot.UsedDoses,
	}
}

func FromLots(lots []semen.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, FromLot(&lots[i]))
	}
	return out
}

// WithdrawalRequest pulls doses from one or more lots.
type WithdrawalRequest struct {
	Destination    string                  `json:"destination,omitempty"`
	WithdrawalDate time.Time               `json:"withdrawalDate" binding:"required"`
	DocumentNumber string                  `json:"documentNumber,omitempty"`
	Items          []WithdrawalItemRequest `json:"items" binding:"required,min=1,dive"`
}

type WithdrawalItemRequest struct {
	LotID    string `json:"lotId" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// WithdrawalResponse reports the per-item outcome.
type WithdrawalResponse struct {
	Results []semen.ItemResult `json:"results"`
}

// WithdrawalHistoryResponse is one past withdrawal.
type WithdrawalHistoryResponse struct {
	ID             string    `json:"id"`
	LotID          string    `json:"lotId"`
	Quantity       int       `json:"quantity"`
	Destination    string    `json:"destination,omitempty"`
	WithdrawalDate time.Time `json:"withdrawalDate"`
	DocumentNumber string    `json:"documentNumber,omitempty"`
}

func FromWithdrawals(ws []semen.Withdrawal) []WithdrawalHistoryResponse {
	out := make([]WithdrawalHistoryResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, WithdrawalHistoryResponse{
			ID:             w.ID.String(),
			LotID:          w.LotID.String(),
			Quantity:       w.Quantity,
			Destination:    w.Destination,
			WithdrawalDate: w.WithdrawalDate,
			DocumentNumber: w.DocumentNumber,
		})
	}
	return out
}
