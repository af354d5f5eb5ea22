package ledger

import (
	"context"
	"time"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/pkg/logger"
)

// Repository persists ledger movements.
type Repository interface {
	CreateMovements(ctx context.Context, movements []Movement) error
	DeleteByDocument(ctx context.Context, documentNumber string) (int64, error)
	GetByDocument(ctx context.Context, documentNumber string) ([]Movement, error)
	ListByPeriod(ctx context.Context, from, to time.Time) ([]Movement, error)
}

// Service posts movements with replace semantics: whatever was previously
// posted for a document is wiped before the new set goes in, so re-posting
// is idempotent and never double-counts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ReplaceForDocument atomically swaps the posted movements of a document.
// Passing an empty slice un-posts the document. The caller is expected to
// hold the surrounding transaction.
func (s *Service) ReplaceForDocument(ctx context.Context, documentNumber string, movements []Movement) error {
	if documentNumber == "" {
		return apperror.NewValidation("document number is required for posting")
	}
	deleted, err := s.repo.DeleteByDocument(ctx, documentNumber)
	if err != nil {
		return err
	}
	for i := range movements {
		if id.IsNil(movements[i].ID) {
			movements[i].ID = id.New()
		}
		movements[i].DocumentNumber = documentNumber
	}
	if len(movements) > 0 {
		if err := s.repo.CreateMovements(ctx, movements); err != nil {
			return err
		}
	}
	logger.Debug(ctx, "ledger movements replaced",
		"document_number", documentNumber,
		"deleted", deleted,
		"inserted", len(movements))
	return nil
}

// MovementsForDocument returns the current posted set for a document.
func (s *Service) MovementsForDocument(ctx context.Context, documentNumber string) ([]Movement, error) {
	return s.repo.GetByDocument(ctx, documentNumber)
}
