package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/types"
	"rebanho/internal/domain/fiscal"
)

// NotaFiscalRequest creates or replaces a document. Prices accept both
// numbers and localized strings ("1.234,56"); unparseable values count as
// zero rather than rejecting the document.
type NotaFiscalRequest struct {
	Number            string        `json:"number" binding:"required"`
	IssueDate         time.Time     `json:"issueDate" binding:"required"`
	ArrivalDate       *time.Time    `json:"arrivalDate,omitempty"`
	Direction         string        `json:"direction" binding:"required"`
	Kind              string        `json:"kind" binding:"required"`
	CounterpartyName  string        `json:"counterpartyName" binding:"required"`
	CounterpartyTaxID string        `json:"counterpartyTaxId,omitempty"`
	Tag               string        `json:"tag,omitempty"`
	IsRecipientIntake bool          `json:"isRecipientIntake,omitempty"`
	RecipientBatch    string        `json:"recipientBatch,omitempty"`
	TransferDate      *time.Time    `json:"transferDate,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	Items             []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// LineRequest is one line of the request.
type LineRequest struct {
	Kind          string           `json:"kind,omitempty"`
	Description   string           `json:"description,omitempty"`
	EarringTag    string           `json:"earringTag,omitempty"`
	Sex           string           `json:"sex,omitempty"`
	Breed         string           `json:"breed,omitempty"`
	AgeBracket    string           `json:"ageBracket,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	BatchQuantity int              `json:"batchQuantity,omitempty"`
	BullName      string           `json:"bullName,omitempty"`
	Doses         int              `json:"doses,omitempty"`
	Location      string           `json:"location,omitempty"`
	Embryos       int              `json:"embryos,omitempty"`
	UnitPrice     types.Price      `json:"unitPrice"`
}

// ToEntity converts the request into the domain document.
func (r *NotaFiscalRequest) ToEntity() *fiscal.NotaFiscal {
	doc := &fiscal.NotaFiscal{
		Number:            r.Number,
		IssueDate:         r.IssueDate,
		Direction:         types.Direction(r.Direction),
		Kind:              types.ProductKind(r.Kind),
		CounterpartyName:  r.CounterpartyName,
		CounterpartyTaxID: r.CounterpartyTaxID,
		Tag:               r.Tag,
		RecipientIntake:   r.IsRecipientIntake,
		RecipientBatch:    r.RecipientBatch,
		TransferDate:      r.TransferDate,
		Notes:             r.Notes,
	}
	if r.ArrivalDate != nil {
		doc.ArrivalDate = *r.ArrivalDate
	}
	for _, li := range r.Items {
		doc.Items = append(doc.Items, fiscal.LineItem{
			Kind:          types.ProductKind(li.Kind),
			Description:   li.Description,
			EarringTag:    li.EarringTag,
			Sex:           li.Sex,
			Breed:         li.Breed,
			AgeBracket:    li.AgeBracket,
			Weight:        li.Weight,
			BatchQuantity: li.BatchQuantity,
			BullName:      li.BullName,
			Doses:         li.Doses,
			Location:      li.Location,
			Embryos:       li.Embryos,
			UnitPrice:     li.UnitPrice,
		})
	}
	return doc
}

// NotaFiscalResponse is the full document, lines included.
type NotaFiscalResponse struct {
	ID                string         `json:"id"`
	Number            string         `json:"number"`
	IssueDate         time.Time      `json:"issueDate"`
	ArrivalDate       time.Time      `json:"arrivalDate"`
	Direction         string         `json:"direction"`
	Kind              string         `json:"kind"`
	CounterpartyName  string         `json:"counterpartyName"`
	CounterpartyTaxID string         `json:"counterpartyTaxId,omitempty"`
	Tag               string         `json:"tag,omitempty"`
	IsRecipientIntake bool           `json:"isRecipientIntake"`
	RecipientBatch    string         `json:"recipientBatch,omitempty"`
	TransferDate      *time.Time     `json:"transferDate,omitempty"`
	Total             string         `json:"total"`
	Notes             string         `json:"notes,omitempty"`
	Version           int            `json:"version"`
	ItemsCount        int            `json:"itemsCount"`
	Items             []LineResponse `json:"items,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// LineResponse is one line of the response, with its computed amount.
type LineResponse struct {
	LineNo        int              `json:"lineNo"`
	Kind          string           `json:"kind"`
	Description   string           `json:"description,omitempty"`
	EarringTag    string           `json:"earringTag,omitempty"`
	Sex           string           `json:"sex,omitempty"`
	Breed         string           `json:"breed,omitempty"`
	AgeBracket    string           `json:"ageBracket,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	BatchQuantity int              `json:"batchQuantity,omitempty"`
	BullName      string           `json:"bullName,omitempty"`
	Doses         int              `json:"doses,omitempty"`
	Location      string           `json:"location,omitempty"`
	Embryos       int              `json:"embryos,omitempty"`
	UnitPrice     string           `json:"unitPrice"`
	Amount        string           `json:"amount"`
}

// FromNotaFiscal builds the response.
func FromNotaFiscal(doc *fiscal.NotaFiscal) NotaFiscalResponse {
	resp := NotaFiscalResponse{
		ID:                doc.ID.String(),
		Number:            doc.Number,
		IssueDate:         doc.IssueDate,
		ArrivalDate:       doc.ArrivalDate,
		Direction:         string(doc.Direction),
		Kind:              string(doc.Kind),
		CounterpartyName:  doc.CounterpartyName,
		CounterpartyTaxID: doc.CounterpartyTaxID,
		Tag:               doc.Tag,
		IsRecipientIntake: doc.RecipientIntake,
		RecipientBatch:    doc.RecipientBatch,
		TransferDate:      doc.TransferDate,
		Total:             doc.Total.StringFixed(2),
		Notes:             doc.Notes,
		Version:           doc.Version,
		ItemsCount:        len(doc.Items),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
	for _, li := range doc.Items {
		resp.Items = append(resp.Items, LineResponse{
			LineNo:        li.LineNo,
			Kind:          string(li.Kind),
			Description:   li.Description,
			EarringTag:    li.EarringTag,
			Sex:           li.Sex,
			Breed:         li.Breed,
			AgeBracket:    li.AgeBracket,
			Weight:        li.Weight,
			BatchQuantity: li.BatchQuantity,
			BullName:      li.BullName,
			Doses:         li.Doses,
			Location:      li.Location,
			Embryos:       li.Embryos,
			UnitPrice:     li.UnitPrice.StringFixed(2),
			Amount:        fiscal.LineAmount(li).Round(2).StringFixed(2),
		})
	}
	return resp
}

// ListNotaFiscalRequest filters the document listing.
type ListNotaFiscalRequest struct {
	PageRequest
	Direction string     `form:"direction" binding:"omitempty,oneof=entrada saida"`
	Kind      string     `form:"kind" binding:"omitempty,oneof=animal semen embryo"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}
