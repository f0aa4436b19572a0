// Package schemacheck detects structural drift between an expected
// canonical schema and the schema observed on a batch, classifies it as
// breaking or non-breaking, and adapts batches to the expected shape.
//
// Detection and adaptation are pure: every call computes a fresh report
// from its inputs, and Adapt returns a new dataset.
package schemacheck

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// widensTo is the directed type-compatibility relation. widensTo[o][e]
// means a column observed as kind o can be stored where kind e is
// expected without loss. The relation is asymmetric: text observed where
// integer is expected is a reported type change.
var widensTo = map[types.ColumnKind]map[types.ColumnKind]bool{
	types.KindInteger:   {types.KindFloat: true, types.KindText: true},
	types.KindFloat:     {types.KindText: true},
	types.KindBoolean:   {types.KindInteger: true, types.KindText: true},
	types.KindTimestamp: {types.KindText: true},
}

// kindsCompatible reports whether an observed kind may appear where the
// expected kind is declared, without being reported as a type change.
func kindsCompatible(expected, observed types.ColumnKind) bool {
	if expected == observed {
		return true
	}
	return widensTo[observed][expected]
}

// Checker compares observed schemas against one expected schema and a set
// of required columns.
type Checker struct {
	expected types.Schema
	required map[string]bool
}

// New returns a Checker for the given expected schema. Required columns
// not present in the expected schema are ignored.
func New(expected types.Schema, required []string) *Checker {
	req := make(map[string]bool, len(required))
	for _, col := range required {
		if _, ok := expected[col]; ok {
			req[col] = true
		}
	}
	return &Checker{expected: expected.Clone(), required: req}
}

// Expected returns the checker's expected schema.
func (c *Checker) Expected() types.Schema {
	return c.expected.Clone()
}

// Detect compares the observed schema against the expected one and
// returns a fresh report. The report is incompatible exactly when a
// required column is missing from the observed schema.
func (c *Checker) Detect(observed types.Schema) *types.SchemaReport {
	now := time.Now()
	report := &types.SchemaReport{
		NewColumns:     []string{},
		RemovedColumns: []string{},
		TypeChanges:    []types.TypeChange{},
		Changes:        []types.SchemaChange{},
	}

	var observedCols []string
	for col := range observed {
		observedCols = append(observedCols, col)
	}
	sort.Strings(observedCols)

	for _, col := range observedCols {
		if _, ok := c.expected[col]; !ok {
			report.NewColumns = append(report.NewColumns, col)
			report.Changes = append(report.Changes, types.SchemaChange{
				Kind:       types.SchemaChangeNewColumn,
				Column:     col,
				NewValue:   observed[col].String(),
				DetectedAt: now,
			})
		}
	}

	for _, col := range c.expected.Columns() {
		if _, ok := observed[col]; !ok {
			report.RemovedColumns = append(report.RemovedColumns, col)
			report.Changes = append(report.Changes, types.SchemaChange{
				Kind:       types.SchemaChangeRemovedColumn,
				Column:     col,
				OldValue:   c.expected[col].String(),
				DetectedAt: now,
			})
		}
	}

	for _, col := range c.expected.Columns() {
		obsKind, ok := observed[col]
		if !ok {
			continue
		}
		expKind := c.expected[col]
		if !kindsCompatible(expKind, obsKind) {
			report.TypeChanges = append(report.TypeChanges, types.TypeChange{
				Column:   col,
				Expected: expKind,
				Observed: obsKind,
			})
			report.Changes = append(report.Changes, types.SchemaChange{
				Kind:       types.SchemaChangeTypeChange,
				Column:     col,
				OldValue:   expKind.String(),
				NewValue:   obsKind.String(),
				DetectedAt: now,
			})
		}
	}

	report.HasChanges = len(report.Changes) > 0
	report.IsCompatible = true
	for _, col := range report.RemovedColumns {
		if c.required[col] {
			report.IsCompatible = false
			break
		}
	}
	return report
}

// RequiredRemoved returns the removed columns from the report that are
// required, in sorted order. Non-empty exactly when the report is
// incompatible.
func (c *Checker) RequiredRemoved(report *types.SchemaReport) []string {
	var out []string
	for _, col := range report.RemovedColumns {
		if c.required[col] {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}
