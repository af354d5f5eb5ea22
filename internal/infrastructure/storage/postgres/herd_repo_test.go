package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rebanho/internal/core/apperror"
	"rebanho/internal/domain/herd"
)

// txScript is the shared state behind scriptedTx: inserts fail with the
// scripted errors in order, and every call appends to events so the tests
// can assert the savepoint choreography.
type txScript struct {
	insertErrs []error
	inserts    int
	events     []string
}

// scriptedTx stands in for a live pgx.Tx. Begin hands out a child bound to
// the same script, mirroring how pgx models savepoints.
type scriptedTx struct {
	pgx.Tx
	script *txScript
}

func (t *scriptedTx) Begin(_ context.Context) (pgx.Tx, error) {
	t.script.events = append(t.script.events, "savepoint")
	return &scriptedTx{script: t.script}, nil
}

func (t *scriptedTx) Commit(_ context.Context) error {
	t.script.events = append(t.script.events, "release")
	return nil
}

func (t *scriptedTx) Rollback(_ context.Context) error {
	t.script.events = append(t.script.events, "rollback")
	return nil
}

func (t *scriptedTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "setval") {
		t.script.events = append(t.script.events, "resync")
	}
	return pgconn.CommandTag{}, nil
}

func (t *scriptedTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	t.script.events = append(t.script.events, "insert")
	idx := t.script.inserts
	t.script.inserts++
	if idx < len(t.script.insertErrs) && t.script.insertErrs[idx] != nil {
		return errRow{err: t.script.insertErrs[idx]}
	}
	return animalRow{id: 42}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type animalRow struct{ id int64 }

func (r animalRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.id
	*(dest[1].(*time.Time)) = time.Now()
	*(dest[2].(*time.Time)) = time.Now()
	return nil
}

func pkeyCollision() error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "animals_pkey"}
}

func txContext(script *txScript) context.Context {
	return context.WithValue(context.Background(), txKey{}, &scriptedTx{script: script})
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestHerdInsertInTransaction(t *testing.T) {
	repo := NewHerdRepo(&TxManager{})

	t.Run("clean insert commits its savepoint", func(t *testing.T) {
		script := &txScript{}
		animal := &herd.Animal{Series: "RPT", Registration: "101"}

		if err := repo.Insert(txContext(script), animal); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if animal.ID != 42 {
			t.Fatalf("ID = %d, want 42", animal.ID)
		}
		assertEvents(t, script.events, []string{"savepoint", "insert", "release"})
	})

	t.Run("collision rolls back the savepoint before the retry", func(t *testing.T) {
		script := &txScript{insertErrs: []error{pkeyCollision()}}
		animal := &herd.Animal{Series: "RPT", Registration: "102"}

		if err := repo.Insert(txContext(script), animal); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if animal.ID != 42 {
			t.Fatalf("ID = %d, want 42", animal.ID)
		}
		// The savepoint must be gone before setval runs: an aborted
		// transaction rejects every later statement.
		assertEvents(t, script.events, []string{"savepoint", "insert", "rollback", "resync", "insert"})
	})

	t.Run("second collision surfaces as a sequence conflict", func(t *testing.T) {
		script := &txScript{insertErrs: []error{pkeyCollision(), pkeyCollision()}}
		animal := &herd.Animal{Series: "RPT", Registration: "103"}

		err := repo.Insert(txContext(script), animal)
		if !apperror.IsCode(err, apperror.CodeSequenceConflict) {
			t.Fatalf("err = %v, want code %s", err, apperror.CodeSequenceConflict)
		}
		assertEvents(t, script.events, []string{"savepoint", "insert", "rollback", "resync", "insert"})
	})
}
