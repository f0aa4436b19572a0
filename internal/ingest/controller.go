package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/schemacheck"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// taskIngest names the ingestion task in lineage events.
const taskIngest = "ingest_csv_to_staging"

// Controller runs the ingestion stage: hash the source, consult the
// ledger, and either skip, load, or abort.
type Controller struct {
	store   *sqlite.Store
	checker *schemacheck.Checker
	log     *lineage.Log
	config  types.Config
}

// NewController wires the stage against an attached store and a lineage
// log for the current run.
func NewController(store *sqlite.Store, log *lineage.Log, config types.Config) *Controller {
	return &Controller{
		store:   store,
		checker: schemacheck.New(config.ExpectedSchema, config.RequiredColumns),
		log:     log,
		config:  config,
	}
}

// Options control one ingestion run.
type Options struct {
	// RunID identifies the pipeline run; required.
	RunID string

	// ForceReload loads the file even when its content hash matches the
	// latest ledger entry.
	ForceReload bool
}

// Run executes the ingestion stage and reports what happened. An
// unchanged file skips without touching the database. An observed schema
// missing required columns aborts with ErrIncompatibleSchema before any
// row is written. A changed but compatible schema is adapted in flight.
func (c *Controller) Run(opts Options) (types.StageResult, error) {
	if opts.RunID == "" {
		return types.Failed("missing run id"), types.ErrRunIDEmpty
	}

	source := NewFileSource(c.config.SourcePath, c.config.ColumnMapping)

	hash, err := source.Hash()
	if err != nil {
		return types.Failed(err.Error()), err
	}

	last, err := c.store.LatestEntry(c.config.SourceName)
	if err != nil {
		return types.Failed(err.Error()), err
	}
	if last != nil && last.ContentHash == hash && !opts.ForceReload {
		return types.Skipped(types.ReasonFileUnchanged, hash), nil
	}

	observed, err := source.Sample(c.config.SampleRows)
	if err != nil {
		return types.Failed(err.Error()), err
	}

	report := c.checker.Detect(observed)
	if !report.IsCompatible {
		removed := c.checker.RequiredRemoved(report)
		err := fmt.Errorf("%w: required columns missing: %s",
			types.ErrIncompatibleSchema, strings.Join(removed, ", "))
		return types.Failed(err.Error()), err
	}

	c.log.Read(taskIngest, types.DatasetInfo{
		Name:          c.config.SourceName,
		Namespace:     "filesystem",
		SchemaVersion: observed.Fingerprint(),
		Columns:       observed.Columns(),
	})

	ingestedAt := time.Now().UTC()
	in, err := c.store.BeginIngestion(sqlite.RowTag{
		SourceFile:  c.config.SourceName,
		ContentHash: hash,
		RunID:       opts.RunID,
		IngestedAt:  ingestedAt,
	})
	if err != nil {
		return types.Failed(err.Error()), err
	}

	err = source.ForEachChunk(observed, c.config.ChunkSize, func(chunk *types.Dataset) error {
		if report.HasChanges {
			chunk = c.checker.Adapt(chunk, report)
		}
		return in.AppendChunk(chunk)
	})
	if err != nil {
		in.Rollback()
		return types.Failed(err.Error()), err
	}

	rows := in.Rows()
	warning, err := in.Commit(types.LedgerEntry{
		ID:          uuid.Must(uuid.NewV7()).String(),
		SourceName:  c.config.SourceName,
		ContentHash: hash,
		RowCount:    rows,
		RunID:       opts.RunID,
		IngestedAt:  ingestedAt,
	})
	if err != nil {
		return types.Failed(err.Error()), err
	}

	c.log.Write(taskIngest, types.DatasetInfo{
		Name:          "fare_staging",
		Namespace:     "sqlite.staging",
		SchemaVersion: c.config.ExpectedSchema.Fingerprint(),
		RowCount:      rows,
		Columns:       c.config.ExpectedSchema.Columns(),
	}, types.DatasetInfo{
		Name:      c.config.SourceName,
		Namespace: "filesystem",
	})

	result := types.Proceeded(hash, rows, report)
	result.LedgerWarning = warning
	return result, nil
}
