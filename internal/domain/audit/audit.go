// Package audit defines the trail contract. Domain services describe what
// happened; the infrastructure decides how the entry is stored.
package audit

import "context"

// Operation names for the trail. Keep them stable: dashboards filter on them.
const (
	OpDocumentCreated = "document.created"
	OpDocumentUpdated = "document.updated"
	OpSemenWithdrawn  = "semen.withdrawn"
	OpDiagnosisDue    = "diagnosis.due"
)

// Entry is one audit record. Details is persisted compressed, so it can
// safely carry the full document payload.
type Entry struct {
	Operation   string
	Description string
	Actor       string
	Details     map[string]any
}

// Sink records entries. Implementations must tolerate best-effort use:
// callers invoke Record after commit and only log failures.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}
