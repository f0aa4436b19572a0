package types

import "time"

// LedgerEntry is one append-only record of a completed ingestion run.
// Entries are never updated or deleted; idempotency decisions read the
// latest entry for a logical source name.
type LedgerEntry struct {
	ID          string    `json:"id"`
	SourceName  string    `json:"source_name"`
	ContentHash string    `json:"content_hash"`
	RowCount    int       `json:"row_count"`
	RunID       string    `json:"run_id"`
	IngestedAt  time.Time `json:"ingested_at"`
}
