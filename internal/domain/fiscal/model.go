package fiscal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/core/types"
)

// NotaFiscal is one commercial document: a purchase, sale or transfer of
// animals, semen doses or embryos. The external number comes off the paper
// document and is unique across the system.
type NotaFiscal struct {
	ID                id.ID             `json:"id" db:"id"`
	Number            string            `json:"number" db:"number"`
	IssueDate         time.Time         `json:"issueDate" db:"issue_date"`
	ArrivalDate       time.Time         `json:"arrivalDate" db:"arrival_date"`
	Direction         types.Direction   `json:"direction" db:"direction"`
	Kind              types.ProductKind `json:"kind" db:"kind"`
	CounterpartyName  string            `json:"counterpartyName" db:"counterparty_name"`
	CounterpartyTaxID string            `json:"counterpartyTaxId" db:"counterparty_tax_id"`
	Tag               string            `json:"tag" db:"tag"`
	RecipientIntake   bool              `json:"isRecipientIntake" db:"is_recipient_intake"`
	RecipientBatch    string            `json:"recipientBatch,omitempty" db:"recipient_batch"`
	TransferDate      *time.Time        `json:"transferDate,omitempty" db:"transfer_date"`
	Total             decimal.Decimal   `json:"total" db:"total"`
	Notes             string            `json:"notes" db:"notes"`
	Version           int               `json:"version" db:"version"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	Items []LineItem `json:"items" db:"-"`
}

// LineItem is one line of the document. Which fields matter depends on the
// line kind: animals carry an earring tag, semen carries bull and doses,
// embryos carry a count.
type LineItem struct {
	ID            id.ID             `json:"id" db:"id"`
	DocumentID    id.ID             `json:"-" db:"document_id"`
	LineNo        int               `json:"lineNo" db:"line_no"`
	Kind          types.ProductKind `json:"kind" db:"kind"`
	Description   string            `json:"description" db:"description"`
	EarringTag    string            `json:"earringTag,omitempty" db:"earring_tag"`
	Sex           string            `json:"sex,omitempty" db:"sex"`
	Breed         string            `json:"breed,omitempty" db:"breed"`
	AgeBracket    string            `json:"ageBracket,omitempty" db:"age_bracket"`
	Weight        *decimal.Decimal  `json:"weight,omitempty" db:"weight"`
	BatchQuantity int               `json:"batchQuantity,omitempty" db:"batch_quantity"`
	BullName      string            `json:"bullName,omitempty" db:"bull_name"`
	Doses         int               `json:"doses,omitempty" db:"doses"`
	Location      string            `json:"location,omitempty" db:"location"`
	Embryos       int               `json:"embryos,omitempty" db:"embryos"`
	UnitPrice     types.Price       `json:"unitPrice" db:"unit_price"`
}

// IsRecipientIntake reports whether the document brings in embryo
// recipients, which triggers the breeding workflow. The flag comes off
// the document itself; the batch identifier is optional and only drives
// the worklist.
func (n *NotaFiscal) IsRecipientIntake() bool {
	return n.Direction == types.DirectionInbound && n.RecipientIntake
}

// Normalize trims identifying fields and defaults the arrival date to the
// issue date when the paperwork left it blank.
func (n *NotaFiscal) Normalize() {
	n.Number = strings.TrimSpace(n.Number)
	n.CounterpartyName = strings.TrimSpace(n.CounterpartyName)
	n.CounterpartyTaxID = strings.TrimSpace(n.CounterpartyTaxID)
	n.Tag = strings.TrimSpace(n.Tag)
	n.RecipientBatch = strings.TrimSpace(n.RecipientBatch)
	if n.ArrivalDate.IsZero() {
		n.ArrivalDate = n.IssueDate
	}
	for i := range n.Items {
		n.Items[i].LineNo = i + 1
		n.Items[i].EarringTag = strings.TrimSpace(n.Items[i].EarringTag)
		n.Items[i].BullName = strings.TrimSpace(n.Items[i].BullName)
		n.Items[i].Location = strings.TrimSpace(n.Items[i].Location)
		if n.Items[i].Kind == "" {
			n.Items[i].Kind = n.Kind
		}
	}
}

// Validate checks the document before it is persisted. Returns the first
// violation as a validation error.
func (n *NotaFiscal) Validate() error {
	if n.Number == "" {
		return apperror.NewValidation("document number is required")
	}
	if n.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required")
	}
	if !n.Direction.Valid() {
		return apperror.NewValidation("direction must be entrada or saida").
			WithDetail("direction", string(n.Direction))
	}
	if !n.Kind.Valid() {
		return apperror.NewValidation("kind must be animal, semen or embryo").
			WithDetail("kind", string(n.Kind))
	}
	if n.CounterpartyName == "" {
		return apperror.NewValidation("counterparty name is required")
	}
	if len(n.Items) == 0 {
		return apperror.NewValidation("document needs at least one line item")
	}
	for i := range n.Items {
		if err := n.Items[i].validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", n.Items[i].LineNo)
			}
			return err
		}
	}
	return nil
}

func (li *LineItem) validate() error {
	if !li.Kind.Valid() {
		return apperror.NewValidation("line kind must be animal, semen or embryo")
	}
	switch li.Kind {
	case types.KindAnimal:
		if li.EarringTag == "" && li.BatchQuantity <= 0 {
			return apperror.NewValidation("animal line needs an earring tag or a batch quantity")
		}
	case types.KindSemen:
		if li.BullName == "" {
			return apperror.NewValidation("semen line needs a bull name")
		}
		if li.Doses <= 0 {
			return apperror.NewValidation("semen line needs a positive dose count")
		}
	case types.KindEmbryo:
		if li.Embryos <= 0 {
			return apperror.NewValidation("embryo line needs a positive embryo count")
		}
	}
	if li.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative")
	}
	return nil
}
