package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rebanho/internal/core/apperror"
	"rebanho/internal/domain/herd"
)

const animalsTable = "animals"

// HerdRepo implements herd.Repository. The animals table keeps its legacy
// serial primary key, so Insert carries the sequence-drift recovery the
// old manual loads made necessary.
type HerdRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

func NewHerdRepo(txm *TxManager) *HerdRepo {
	return &HerdRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var animalColumns = []string{
	"id", "series", "registration", "sex", "breed", "age_bracket",
	"weight", "notes", "arrival_date", "diagnosis_date",
	"created_at", "updated_at",
}

func (r *HerdRepo) GetByKey(ctx context.Context, key herd.Key) (*herd.Animal, error) {
	q := r.builder.Select(animalColumns...).
		From(animalsTable).
		Where(squirrel.Eq{"series": key.Series, "registration": key.Registration}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var animal herd.Animal
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &animal, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("animal", key.Tag())
		}
		return nil, fmt.Errorf("get animal by key: %w", err)
	}
	return &animal, nil
}

func (r *HerdRepo) GetByID(ctx context.Context, animalID int64) (*herd.Animal, error) {
	q := r.builder.Select(animalColumns...).
		From(animalsTable).
		Where(squirrel.Eq{"id": animalID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var animal herd.Animal
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &animal, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("animal", animalID)
		}
		return nil, fmt.Errorf("get animal: %w", err)
	}
	return &animal, nil
}

// Insert creates the row and lets the sequence assign the id. On a primary
// key collision the sequence is resynced to max(id)+1 and the insert is
// retried exactly once; a second collision surfaces as SEQUENCE_CONFLICT.
func (r *HerdRepo) Insert(ctx context.Context, animal *herd.Animal) error {
	err := r.insertGuarded(ctx, animal)
	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err, "animals_pkey") {
		return err
	}

	querier := r.txm.GetQuerier(ctx)
	if rsErr := ResyncSerialPK(ctx, querier, animalsTable, "id"); rsErr != nil {
		return apperror.NewSequenceConflict(animalsTable, rsErr)
	}
	if err := r.insertOnce(ctx, querier, animal); err != nil {
		if IsUniqueViolation(err, "animals_pkey") {
			return apperror.NewSequenceConflict(animalsTable, err)
		}
		return err
	}
	return nil
}

// insertGuarded runs the first insert attempt under a savepoint when a
// transaction is active. A unique violation aborts the enclosing pgx.Tx
// (every later statement fails with SQLSTATE 25P02), so the savepoint is
// rolled back before the resync-and-retry above touches the connection.
func (r *HerdRepo) insertGuarded(ctx context.Context, animal *herd.Animal) error {
	dbTx, inTx := r.txm.TxFromContext(ctx)
	if !inTx {
		return r.insertOnce(ctx, r.txm.GetQuerier(ctx), animal)
	}

	sp, err := dbTx.Begin(ctx)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if err := r.insertOnce(ctx, sp, animal); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

func (r *HerdRepo) insertOnce(ctx context.Context, querier Querier, animal *herd.Animal) error {
	q := r.builder.Insert(animalsTable).
		Columns("series", "registration", "sex", "breed", "age_bracket",
			"weight", "notes", "arrival_date", "diagnosis_date").
		Values(animal.Series, animal.Registration, animal.Sex, animal.Breed,
			animal.AgeBracket, animal.Weight, animal.Notes,
			animal.ArrivalDate, animal.DiagnosisDate).
		Suffix("RETURNING id, created_at, updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	row := querier.QueryRow(ctx, sql, args...)
	if err := row.Scan(&animal.ID, &animal.CreatedAt, &animal.UpdatedAt); err != nil {
		return fmt.Errorf("insert animal: %w", err)
	}
	return nil
}

// UpdateMerge coalesces the attributes into the row: empty strings and nil
// pointers leave the stored values untouched.
func (r *HerdRepo) UpdateMerge(ctx context.Context, animalID int64, attrs herd.Attributes) error {
	sql := `
		UPDATE animals SET
			sex            = COALESCE(NULLIF($2, ''), sex),
			breed          = COALESCE(NULLIF($3, ''), breed),
			age_bracket    = COALESCE(NULLIF($4, ''), age_bracket),
			notes          = COALESCE(NULLIF($5, ''), notes),
			weight         = COALESCE($6, weight),
			arrival_date   = COALESCE($7, arrival_date),
			diagnosis_date = COALESCE($8, diagnosis_date),
			updated_at     = NOW()
		WHERE id = $1
	`
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		animalID, attrs.Sex, attrs.Breed, attrs.AgeBracket, attrs.Notes,
		attrs.Weight, attrs.ArrivalDate, attrs.DiagnosisDate)
	if err != nil {
		return fmt.Errorf("merge animal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("animal", animalID)
	}
	return nil
}

func (r *HerdRepo) List(ctx context.Context, series string, limit, offset int) ([]herd.Animal, int64, error) {
	q := r.builder.Select(animalColumns...).From(animalsTable)
	countQ := r.builder.Select("COUNT(*)").From(animalsTable)
	if series != "" {
		q = q.Where(squirrel.Eq{"series": series})
		countQ = countQ.Where(squirrel.Eq{"series": series})
	}
	q = q.OrderBy("series", "registration").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var animals []herd.Animal
	if err := pgxscan.Select(ctx, querier, &animals, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select animals: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count animals: %w", err)
	}
	return animals, total, nil
}

var _ herd.Repository = (*HerdRepo)(nil)
