package breeding

import (
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/id"
)

// EmbryoTransfer records that a recipient received an embryo on a date.
// One transfer per animal per day: the same document re-entered must not
// produce a second row.
type EmbryoTransfer struct {
	ID             id.ID     `json:"id" db:"id"`
	AnimalID       int64     `json:"animalId" db:"animal_id"`
	TransferDate   time.Time `json:"transferDate" db:"transfer_date"`
	DocumentNumber string    `json:"documentNumber" db:"document_number"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Diagnosis schedule statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusEmpty     = "empty"
)

// DiagnosisSchedule is a pending pregnancy check for one recipient.
type DiagnosisSchedule struct {
	ID               id.ID     `json:"id" db:"id"`
	AnimalID         int64     `json:"animalId" db:"animal_id"`
	InseminationDate time.Time `json:"inseminationDate" db:"insemination_date"`
	ScheduledFor     time.Time `json:"scheduledFor" db:"scheduled_for"`
	Status           string    `json:"status" db:"status"`
	DocumentNumber   string    `json:"documentNumber" db:"document_number"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// IntakeItem is one recipient arriving on an intake document.
type IntakeItem struct {
	EarringTag string
	Sex        string
	Breed      string
	AgeBracket string
	Weight     *decimal.Decimal
}

// Intake is the projection of a recipient-batch document that breeding
// cares about. TransferDate nil means the paperwork did not say when the
// embryos went in: masters are still updated but nothing gets scheduled.
type Intake struct {
	DocumentNumber string
	RecipientBatch string
	ArrivalDate    time.Time
	TransferDate   *time.Time
	Items          []IntakeItem
}

// Outcome summarizes what an intake produced.
type Outcome struct {
	AnimalsUpserted   int
	TransfersCreated  int
	SchedulesCreated  int
	DiagnosisDate     *time.Time
	WorklistRequested bool
}
