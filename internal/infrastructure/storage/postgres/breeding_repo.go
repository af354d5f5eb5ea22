package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/id"
	"rebanho/internal/domain/breeding"
)

const (
	transfersTable = "embryo_transfers"
	schedulesTable = "diagnosis_schedules"
)

// BreedingRepo implements breeding.Repository.
type BreedingRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

func NewBreedingRepo(txm *TxManager) *BreedingRepo {
	return &BreedingRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *BreedingRepo) TransferExists(ctx context.Context, animalID int64, transferDate time.Time) (bool, error) {
	sql := "SELECT EXISTS (SELECT 1 FROM embryo_transfers WHERE animal_id = $1 AND transfer_date = $2)"
	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, animalID, transferDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("check transfer: %w", err)
	}
	return exists, nil
}

func (r *BreedingRepo) CreateTransfer(ctx context.Context, t *breeding.EmbryoTransfer) error {
	q := r.builder.Insert(transfersTable).
		Columns("id", "animal_id", "transfer_date", "document_number").
		Values(t.ID, t.AnimalID, t.TransferDate, t.DocumentNumber).
		Suffix("RETURNING created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *BreedingRepo) ScheduleExists(ctx context.Context, animalID int64, inseminationDate time.Time) (bool, error) {
	sql := "SELECT EXISTS (SELECT 1 FROM diagnosis_schedules WHERE animal_id = $1 AND insemination_date = $2)"
	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, animalID, inseminationDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("check schedule: %w", err)
	}
	return exists, nil
}

func (r *BreedingRepo) CreateSchedule(ctx context.Context, s *breeding.DiagnosisSchedule) error {
	q := r.builder.Insert(schedulesTable).
		Columns("id", "animal_id", "insemination_date", "scheduled_for", "status", "document_number").
		Values(s.ID, s.AnimalID, s.InseminationDate, s.ScheduledFor, s.Status, s.DocumentNumber).
		Suffix("RETURNING created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (r *BreedingRepo) DueSchedules(ctx context.Context, upTo time.Time) ([]breeding.DiagnosisSchedule, error) {
	q := r.builder.Select("id", "animal_id", "insemination_date", "scheduled_for",
		"status", "document_number", "created_at").
		From(schedulesTable).
		Where(squirrel.Eq{"status": breeding.StatusPending}).
		Where(squirrel.LtOrEq{"scheduled_for": upTo}).
		OrderBy("scheduled_for")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var schedules []breeding.DiagnosisSchedule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &schedules, sql, args...); err != nil {
		return nil, fmt.Errorf("select schedules: %w", err)
	}
	return schedules, nil
}

func (r *BreedingRepo) UpdateScheduleStatus(ctx context.Context, scheduleID id.ID, status string) error {
	q := r.builder.Update(schedulesTable).
		Set("status", status).
		Where(squirrel.Eq{"id": scheduleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("diagnosis schedule", scheduleID)
	}
	return nil
}

var _ breeding.Repository = (*BreedingRepo)(nil)
