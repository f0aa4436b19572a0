package types

// StageStatus is the outcome class of one pipeline stage. Skipping is an
// explicit result, not an exception: when an upstream stage did no work,
// downstream stages propagate the skip instead of silently recomputing.
type StageStatus string

const (
	StageProceeded StageStatus = "proceeded"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// Skip and failure reasons used by the pipeline stages.
const (
	ReasonFileUnchanged   = "file_unchanged"
	ReasonUpstreamSkipped = "upstream_skipped"
)

// StageResult is the structured outcome returned by every stage to the
// orchestration boundary.
type StageResult struct {
	Status StageStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`

	// ContentHash is the source content hash this stage observed, when the
	// stage touched a source.
	ContentHash string `json:"content_hash,omitempty"`

	// RowCount is the number of rows the stage ingested or processed.
	RowCount int `json:"row_count,omitempty"`

	// SchemaReport carries detected schema drift from ingestion.
	SchemaReport *SchemaReport `json:"schema_report,omitempty"`

	// LedgerWarning is set when the ledger append failed after a successful
	// data write. Non-fatal, but the next run may reprocess the same
	// content undetected; operators should alert on it.
	LedgerWarning string `json:"ledger_warning,omitempty"`
}

// Proceeded returns a successful stage result.
func Proceeded(hash string, rows int, report *SchemaReport) StageResult {
	return StageResult{Status: StageProceeded, ContentHash: hash, RowCount: rows, SchemaReport: report}
}

// Skipped returns a skipped stage result with the given reason.
func Skipped(reason, hash string) StageResult {
	return StageResult{Status: StageSkipped, Reason: reason, ContentHash: hash}
}

// Failed returns a failed stage result with the given reason.
func Failed(reason string) StageResult {
	return StageResult{Status: StageFailed, Reason: reason}
}
