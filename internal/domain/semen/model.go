package semen

import (
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/id"
)

// Lot is a batch of semen doses from one bull, bought on one document.
// The invariant total = available + used holds at all times; withdrawals
// move doses from available to used under a row lock.
type Lot struct {
	ID             id.ID           `json:"id" db:"id"`
	BullName       string          `json:"bullName" db:"bull_name"`
	Supplier       string          `json:"supplier" db:"supplier"`
	DocumentNumber string          `json:"documentNumber" db:"document_number"`
	PurchaseDate   time.Time       `json:"purchaseDate" db:"purchase_date"`
	UnitPrice      decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Location       string          `json:"location" db:"location"`
	TotalDoses     int             `json:"totalDoses" db:"total_doses"`
	AvailableDoses int             `json:"availableDoses" db:"available_doses"`
	UsedDoses      int             `json:"usedDoses" db:"used_doses"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// Withdrawal records doses leaving a lot.
type Withdrawal struct {
	ID             id.ID     `json:"id" db:"id"`
	LotID          id.ID     `json:"lotId" db:"lot_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	Destination    string    `json:"destination" db:"destination"`
	WithdrawalDate time.Time `json:"withdrawalDate" db:"withdrawal_date"`
	DocumentNumber string    `json:"documentNumber" db:"document_number"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// ReplenishInput creates a lot from an inbound document line.
type ReplenishInput struct {
	BullName       string
	Supplier       string
	DocumentNumber string
	PurchaseDate   time.Time
	UnitPrice      decimal.Decimal
	Location       string
	Doses          int
}

// WithdrawalRequest asks to pull doses from several lots in one go.
type WithdrawalRequest struct {
	Destination    string
	WithdrawalDate time.Time
	DocumentNumber string
	Items          []WithdrawalItem
}

type WithdrawalItem struct {
	LotID    id.ID
	Quantity int
}

// ItemResult reports the outcome of one withdrawal item. A batch never
// fails as a whole on a business rejection: each item succeeds or carries
// its own reason.
type ItemResult struct {
	LotID     id.ID  `json:"lotId"`
	Quantity  int    `json:"quantity"`
	Applied   bool   `json:"applied"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Remaining int    `json:"remaining"`
}
