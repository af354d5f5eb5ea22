package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/id"
	"rebanho/internal/core/types"
)

// Movement is one posted accounting entry. Every relevant document is
// expanded into one or more movements; replacing a document replaces all
// of its movements at once, keyed by document number.
type Movement struct {
	ID             id.ID           `json:"id" db:"id"`
	DocumentNumber string          `json:"documentNumber" db:"document_number"`
	Direction      types.Direction `json:"direction" db:"direction"`
	MovementDate   time.Time       `json:"movementDate" db:"movement_date"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Description    string          `json:"description" db:"description"`
	Tag            string          `json:"tag" db:"tag"`
	Extras         Extras          `json:"extras" db:"data_extras"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// Extras is free-form movement metadata persisted as JSONB.
type Extras map[string]any

// DocumentInfo carries the fields a Classifier looks at. It is a projection
// of the source document, so the ledger never depends on document packages.
type DocumentInfo struct {
	Number            string
	Direction         types.Direction
	CounterpartyName  string
	CounterpartyTaxID string
	Tag               string
}

// Decision is a classifier verdict: whether the document belongs in the
// ledger and, when it does, under which tag.
type Decision struct {
	Relevant bool
	Tag      string
}
