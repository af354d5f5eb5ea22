package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rebanho/internal/domain/ledger"
)

const ledgerTable = "ledger_movements"

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

func NewLedgerRepo(txm *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var movementColumns = []string{
	"id", "document_number", "direction", "movement_date", "amount",
	"description", "tag", "data_extras", "created_at",
}

func (r *LedgerRepo) CreateMovements(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	q := r.builder.Insert(ledgerTable).
		Columns("id", "document_number", "direction", "movement_date",
			"amount", "description", "tag", "data_extras")
	for i := range movements {
		m := &movements[i]
		q = q.Values(m.ID, m.DocumentNumber, m.Direction, m.MovementDate,
			m.Amount, m.Description, m.Tag, m.Extras)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *LedgerRepo) DeleteByDocument(ctx context.Context, documentNumber string) (int64, error) {
	q := r.builder.Delete(ledgerTable).
		Where(squirrel.Eq{"document_number": documentNumber})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LedgerRepo) GetByDocument(ctx context.Context, documentNumber string) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"document_number": documentNumber}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *LedgerRepo) ListByPeriod(ctx context.Context, from, to time.Time) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(ledgerTable).
		Where(squirrel.GtOrEq{"movement_date": from}).
		Where(squirrel.Lt{"movement_date": to}).
		OrderBy("movement_date", "document_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

var _ ledger.Repository = (*LedgerRepo)(nil)
