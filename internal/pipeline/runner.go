package pipeline

import (
	"github.com/mesh-intelligence/fareflow/internal/ingest"
	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// Runner executes the full pipeline for one run: ingestion, quality gate,
// and transform, sharing one store and one lineage log. A skip from
// ingestion propagates through the downstream stages.
type Runner struct {
	store  *sqlite.Store
	log    *lineage.Log
	config types.Config
}

// NewRunner wires the full pipeline against an attached store.
func NewRunner(store *sqlite.Store, log *lineage.Log, config types.Config) *Runner {
	return &Runner{store: store, log: log, config: config}
}

// RunReport collects the per-stage results of one pipeline run.
type RunReport struct {
	RunID      string            `json:"run_id"`
	Ingestion  types.StageResult `json:"ingestion"`
	Validation types.StageResult `json:"validation"`
	Gate       *GateReport       `json:"gate_report,omitempty"`
	Transform  types.StageResult `json:"transform"`
	Lineage    lineage.Summary   `json:"lineage"`
}

// Run executes the stages in order. The first fatal stage error stops the
// run; the report returned alongside the error carries everything that
// completed before it.
func (r *Runner) Run(opts ingest.Options) (*RunReport, error) {
	report := &RunReport{RunID: opts.RunID}

	ingestion, err := ingest.NewController(r.store, r.log, r.config).Run(opts)
	report.Ingestion = ingestion
	if err != nil {
		report.Lineage = r.log.Summary()
		return report, err
	}
	skipped := ingestion.Status == types.StageSkipped

	validation, gateReport, err := NewGate(r.store, r.log, r.config).Run(opts.RunID, skipped)
	report.Validation = validation
	report.Gate = gateReport
	if err != nil {
		report.Lineage = r.log.Summary()
		return report, err
	}

	transform, err := NewTransform(r.store, r.log, r.config).Run(opts.RunID, skipped)
	report.Transform = transform
	report.Lineage = r.log.Summary()
	return report, err
}
