// Package reports defines the contract for printable artifacts produced
// as document side effects.
package reports

import (
	"context"
	"time"
)

// WorklistItem is one animal on a diagnosis worklist.
type WorklistItem struct {
	EarringTag string
	Sex        string
	Breed      string
	AgeBracket string
}

// WorklistInput describes the pregnancy-diagnosis worklist for one intake
// document: which recipients arrived and when the vet should check them.
type WorklistInput struct {
	DocumentNumber string
	RecipientBatch string
	ArrivalDate    time.Time
	DiagnosisDate  time.Time
	Items          []WorklistItem
}

// WorklistGenerator renders a worklist and returns the artifact location.
type WorklistGenerator interface {
	Generate(ctx context.Context, in WorklistInput) (string, error)
}
