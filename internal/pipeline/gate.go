// Package pipeline implements the orchestration stages that sit between
// ingestion and the analytics consumers: the quality gate and the
// transform stage. Each stage returns a structured result and propagates
// upstream skips instead of recomputing.
package pipeline

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/quality"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// taskValidate names the quality gate task in lineage events.
const taskValidate = "validate_and_repair_staging"

// Gate runs expectations over the staged batch, applies the repair pass,
// and republishes the corrected batch marked as validated. Expectation
// failures are non-fatal: they are recorded in the report and the repair
// stage still runs.
type Gate struct {
	store  *sqlite.Store
	log    *lineage.Log
	config types.Config
	suite  *quality.SuiteSpec
}

// NewGate wires the quality gate against an attached store and the lineage
// log of the current run.
func NewGate(store *sqlite.Store, log *lineage.Log, config types.Config) *Gate {
	return &Gate{store: store, log: log, config: config}
}

// WithSuite replaces the built-in flight expectation suite with a
// declarative one.
func (g *Gate) WithSuite(suite *quality.SuiteSpec) *Gate {
	g.suite = suite
	return g
}

func (g *Gate) expectations(ds *types.Dataset) *quality.Validator {
	if g.suite != nil {
		return g.suite.Apply(ds)
	}
	return quality.FlightExpectations(ds)
}

// GateReport is the structured outcome of one quality gate pass.
type GateReport struct {
	// TotalRecords is the number of staged rows the gate processed.
	TotalRecords int `json:"total_records"`

	// Initial holds the expectation results over the batch as staged.
	Initial types.ValidationSummary `json:"initial"`

	// Repairs tallies the corrections the repair pass applied.
	Repairs quality.RepairReport `json:"repairs"`

	// Final holds the expectation results after repair; this is what the
	// republished batch satisfies.
	Final types.ValidationSummary `json:"final"`

	// Issues lists the human-readable findings: failed expectations from
	// the initial pass and the corrections applied.
	Issues []string `json:"issues"`
}

// collectIssues summarizes the initial failures and the repair tallies.
func collectIssues(initial types.ValidationSummary, repairs quality.RepairReport) []string {
	issues := []string{}
	for _, r := range initial.Results {
		if r.Success {
			continue
		}
		if r.Column != "" {
			issues = append(issues, fmt.Sprintf("%s failed on column %s", r.Kind, r.Column))
		} else {
			issues = append(issues, fmt.Sprintf("%s failed", r.Kind))
		}
	}
	if repairs.MissingFilled > 0 {
		issues = append(issues, fmt.Sprintf("%d missing values filled", repairs.MissingFilled))
	}
	if repairs.NegativesCorrected > 0 {
		issues = append(issues, fmt.Sprintf("%d negative fares corrected", repairs.NegativesCorrected))
	}
	if repairs.EmptyStrings > 0 {
		issues = append(issues, fmt.Sprintf("%d empty string fields found", repairs.EmptyStrings))
	}
	if repairs.FareRecalculations > 0 {
		issues = append(issues, fmt.Sprintf("%d total fares recalculated", repairs.FareRecalculations))
	}
	return issues
}

// Run executes the gate. With upstreamSkipped set, the stage propagates
// the skip without reading the database.
func (g *Gate) Run(runID string, upstreamSkipped bool) (types.StageResult, *GateReport, error) {
	if runID == "" {
		return types.Failed("missing run id"), nil, types.ErrRunIDEmpty
	}
	if upstreamSkipped {
		return types.Skipped(types.ReasonUpstreamSkipped, ""), nil, nil
	}

	staged, err := g.store.ReadStaging(false)
	if err != nil {
		return types.Failed(err.Error()), nil, err
	}

	report := &GateReport{TotalRecords: staged.RowCount()}
	report.Initial = g.expectations(staged).Validate()

	repaired, repairs := quality.Repair(staged)
	report.Repairs = repairs
	report.Final = g.expectations(repaired).Validate()
	report.Issues = collectIssues(report.Initial, repairs)

	if err := g.store.ReplaceValidated(repaired, time.Now().UTC()); err != nil {
		return types.Failed(err.Error()), report, err
	}

	g.log.Validate(taskValidate, types.DatasetInfo{
		Name:      "fare_staging",
		Namespace: "sqlite.staging",
		RowCount:  repaired.RowCount(),
	}, map[string]any{
		"data_quality_passed":  report.Final.Success,
		"expectations_checked": report.Final.Evaluated,
		"expectations_failed":  report.Final.Failed,
		"missing_filled":       repairs.MissingFilled,
		"negatives_corrected":  repairs.NegativesCorrected,
		"fare_recalculations":  repairs.FareRecalculations,
	})

	result := types.Proceeded("", repaired.RowCount(), nil)
	return result, report, nil
}
