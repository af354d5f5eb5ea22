package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain/semen"
)

const (
	semenLotsTable        = "semen_lots"
	semenWithdrawalsTable = "semen_withdrawals"
)

// SemenRepo implements semen.Repository.
type SemenRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

func NewSemenRepo(txm *TxManager) *SemenRepo {
	return &SemenRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var lotColumns = []string{
	"id", "bull_name", "supplier", "document_number", "purchase_date",
	"unit_price", "location", "total_doses", "available_doses", "used_doses",
	"created_at", "updated_at",
}

func (r *SemenRepo) CreateLot(ctx context.Context, lot *semen.Lot) error {
	q := r.builder.Insert(semenLotsTable).
		Columns("id", "bull_name", "supplier", "document_number", "purchase_date",
			"unit_price", "location", "total_doses", "available_doses", "used_doses").
		Values(lot.ID, lot.BullName, lot.Supplier, lot.DocumentNumber, lot.PurchaseDate,
			lot.UnitPrice, lot.Location, lot.TotalDoses, lot.AvailableDoses, lot.UsedDoses).
		Suffix("RETURNING created_at, updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&lot.CreatedAt, &lot.UpdatedAt); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *SemenRepo) GetLot(ctx context.Context, lotID id.ID) (*semen.Lot, error) {
	return r.getLot(ctx, lotID, false)
}

// GetLotForUpdate locks the lot row for the rest of the transaction.
func (r *SemenRepo) GetLotForUpdate(ctx context.Context, lotID id.ID) (*semen.Lot, error) {
	return r.getLot(ctx, lotID, true)
}

// LotsByDocument returns every lot a document opened, locked for the rest
// of the transaction so a concurrent withdrawal cannot slip in between the
// used-doses check and the delete.
func (r *SemenRepo) LotsByDocument(ctx context.Context, documentNumber string) ([]semen.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(semenLotsTable).
		Where(squirrel.Eq{"document_number": documentNumber}).
		OrderBy("created_at").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []semen.Lot
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots by document: %w", err)
	}
	return lots, nil
}

func (r *SemenRepo) DeleteLotsByDocument(ctx context.Context, documentNumber string) error {
	sql, args, err := r.builder.Delete(semenLotsTable).
		Where(squirrel.Eq{"document_number": documentNumber}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lots by document: %w", err)
	}
	return nil
}

func (r *SemenRepo) getLot(ctx context.Context, lotID id.ID, forUpdate bool) (*semen.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(semenLotsTable).
		Where(squirrel.Eq{"id": lotID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot semen.Lot
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("semen lot", lotID)
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

// ApplyWithdrawal moves doses from available to used. The quantity guard in
// the WHERE clause backs up the caller's FOR UPDATE check.
func (r *SemenRepo) ApplyWithdrawal(ctx context.Context, lotID id.ID, quantity int) error {
	sql := `
		UPDATE semen_lots
		SET available_doses = available_doses - $2,
		    used_doses      = used_doses + $2,
		    updated_at      = NOW()
		WHERE id = $1 AND available_doses >= $2
	`
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, lotID, quantity)
	if err != nil {
		return fmt.Errorf("apply withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("lot balance changed concurrently").
			WithDetail("lotId", lotID.String())
	}
	return nil
}

func (r *SemenRepo) CreateWithdrawal(ctx context.Context, w *semen.Withdrawal) error {
	q := r.builder.Insert(semenWithdrawalsTable).
		Columns("id", "lot_id", "quantity", "destination", "withdrawal_date", "document_number").
		Values(w.ID, w.LotID, w.Quantity, w.Destination, w.WithdrawalDate, w.DocumentNumber).
		Suffix("RETURNING created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&w.CreatedAt); err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (r *SemenRepo) AvailableLots(ctx context.Context) ([]semen.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(semenLotsTable).
		Where(squirrel.Gt{"available_doses": 0}).
		OrderBy("bull_name", "purchase_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []semen.Lot
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	return lots, nil
}

func (r *SemenRepo) ListWithdrawals(ctx context.Context, lotID id.ID, limit, offset int) ([]semen.Withdrawal, error) {
	q := r.builder.Select("id", "lot_id", "quantity", "destination",
		"withdrawal_date", "document_number", "created_at").
		From(semenWithdrawalsTable).
		Where(squirrel.Eq{"lot_id": lotID}).
		OrderBy("withdrawal_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var withdrawals []semen.Withdrawal
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &withdrawals, sql, args...); err != nil {
		return nil, fmt.Errorf("select withdrawals: %w", err)
	}
	return withdrawals, nil
}

var _ semen.Repository = (*SemenRepo)(nil)
