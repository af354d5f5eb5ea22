package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"rebanho/internal/core/id"
	"rebanho/internal/domain/audit"
)

// Compression markers stored alongside the payload.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// AuditSink implements audit.Sink on the sys_audit table. Payloads beyond
// the threshold are stored zstd-compressed; small ones stay as plain JSONB
// so they remain queryable.
type AuditSink struct {
	txm       *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func NewAuditSink(txm *TxManager) (*AuditSink, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditSink{
		txm:       txm,
		encoder:   encoder,
		decoder:   decoder,
		threshold: 10 * 1024,
	}, nil
}

func (s *AuditSink) Record(ctx context.Context, entry audit.Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	var compressed []byte
	algo := compressionNone
	if len(details) > s.threshold {
		compressed = s.encoder.EncodeAll(details, nil)
		details = nil
		algo = compressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, operation, description, actor,
			details, details_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.txm.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), entry.Operation, entry.Description, entry.Actor,
		details, compressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// StoredEntry is an audit row read back for inspection.
type StoredEntry struct {
	ID          id.ID
	Operation   string
	Description string
	Actor       string
	Details     json.RawMessage
	CreatedAt   time.Time
}

// History returns recent entries for an operation, newest first, with
// compressed payloads expanded.
func (s *AuditSink) History(ctx context.Context, operation string, limit int) ([]StoredEntry, error) {
	sql := `
		SELECT id, operation, description, actor,
		       details, details_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE operation = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.txm.GetQuerier(ctx).Query(ctx, sql, operation, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []StoredEntry
	for rows.Next() {
		var e StoredEntry
		var compressed []byte
		var algo string
		if err := rows.Scan(&e.ID, &e.Operation, &e.Description, &e.Actor,
			&e.Details, &compressed, &algo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if algo == compressionZstd && len(compressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit details: %w", err)
			}
			e.Details = decompressed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ audit.Sink = (*AuditSink)(nil)
