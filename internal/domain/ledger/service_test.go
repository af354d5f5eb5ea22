package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/core/types"
)

type memRepo struct {
	byDocument map[string][]Movement
}

func newMemRepo() *memRepo {
	return &memRepo{byDocument: make(map[string][]Movement)}
}

func (m *memRepo) CreateMovements(_ context.Context, movements []Movement) error {
	for _, mv := range movements {
		m.byDocument[mv.DocumentNumber] = append(m.byDocument[mv.DocumentNumber], mv)
	}
	return nil
}

func (m *memRepo) DeleteByDocument(_ context.Context, documentNumber string) (int64, error) {
	n := int64(len(m.byDocument[documentNumber]))
	delete(m.byDocument, documentNumber)
	return n, nil
}

func (m *memRepo) GetByDocument(_ context.Context, documentNumber string) ([]Movement, error) {
	return m.byDocument[documentNumber], nil
}

func (m *memRepo) ListByPeriod(_ context.Context, from, to time.Time) ([]Movement, error) {
	var out []Movement
	for _, set := range m.byDocument {
		for _, mv := range set {
			if !mv.MovementDate.Before(from) && !mv.MovementDate.After(to) {
				out = append(out, mv)
			}
		}
	}
	return out, nil
}

func TestReplaceForDocument(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := []Movement{
		{Direction: types.DirectionInbound, Amount: decimal.NewFromInt(100), Tag: "compra-gado"},
		{Direction: types.DirectionInbound, Amount: decimal.NewFromInt(250), Tag: "compra-gado"},
	}
	if err := svc.ReplaceForDocument(ctx, "NF-100", first); err != nil {
		t.Fatalf("ReplaceForDocument() error: %v", err)
	}

	stored, _ := svc.MovementsForDocument(ctx, "NF-100")
	if len(stored) != 2 {
		t.Fatalf("stored = %d movements, want 2", len(stored))
	}
	for _, mv := range stored {
		if id.IsNil(mv.ID) {
			t.Error("movement persisted without an id")
		}
		if mv.DocumentNumber != "NF-100" {
			t.Errorf("DocumentNumber = %q, want NF-100", mv.DocumentNumber)
		}
	}

	// A second post wipes the first set instead of stacking on top of it.
	second := []Movement{
		{Direction: types.DirectionInbound, Amount: decimal.NewFromInt(300), Tag: "compra-semen"},
	}
	if err := svc.ReplaceForDocument(ctx, "NF-100", second); err != nil {
		t.Fatalf("ReplaceForDocument() error: %v", err)
	}
	stored, _ = svc.MovementsForDocument(ctx, "NF-100")
	if len(stored) != 1 || !stored[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("after replace: %+v, want single 300 movement", stored)
	}
}

func TestReplaceForDocumentEmptySetUnposts(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	seed := []Movement{{Direction: types.DirectionOutbound, Amount: decimal.NewFromInt(50)}}
	if err := svc.ReplaceForDocument(ctx, "NF-200", seed); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	if err := svc.ReplaceForDocument(ctx, "NF-200", nil); err != nil {
		t.Fatalf("un-post error: %v", err)
	}
	stored, _ := svc.MovementsForDocument(ctx, "NF-200")
	if len(stored) != 0 {
		t.Errorf("stored = %d movements, want 0 after un-post", len(stored))
	}
}

func TestReplaceForDocumentRequiresNumber(t *testing.T) {
	svc := NewService(newMemRepo())
	err := svc.ReplaceForDocument(context.Background(), "", nil)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}
