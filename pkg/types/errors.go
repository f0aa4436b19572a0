package types

import "errors"

// Standard errors returned by the pipeline core. Callers are expected to
// test with errors.Is; wrapping with fmt.Errorf("...: %w", err) preserves
// the sentinel.
var (
	// ErrSourceUnavailable indicates the source file is missing or unreadable.
	// Fatal: nothing is written.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrIncompatibleSchema indicates a required column was removed from the
	// observed schema. Fatal: nothing is written, the ledger is untouched.
	ErrIncompatibleSchema = errors.New("incompatible schema change")

	// ErrStoreDetached is returned by store operations before Attach or
	// after Detach.
	ErrStoreDetached = errors.New("store is not attached")

	// ErrAlreadyAttached is returned by Attach on an attached store.
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Config validation errors.
var (
	ErrDataDirEmpty        = errors.New("data directory must not be empty")
	ErrChunkSizeInvalid    = errors.New("chunk size must be positive")
	ErrSampleRowsInvalid   = errors.New("sample rows must be positive")
	ErrSchemaEmpty         = errors.New("expected schema must not be empty")
	ErrRequiredNotExpected = errors.New("required column is not in the expected schema")
	ErrRunIDEmpty          = errors.New("run id must not be empty")
)
