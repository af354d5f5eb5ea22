package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"rebanho/pkg/logger"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// ResyncSerialPK moves a table's serial sequence to max(id)+1. Legacy bulk
// loads wrote explicit ids without touching the sequence, so the next
// nextval can collide with an existing row. Safe to call concurrently:
// setval is atomic and a lost race just means another retry.
func ResyncSerialPK(ctx context.Context, q Querier, table, column string) error {
	sql := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)",
		table, column, column, table,
	)
	if _, err := q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("resync sequence for %s.%s: %w", table, column, err)
	}
	logger.Warn(ctx, "serial sequence resynced", "table", table, "column", column)
	return nil
}
