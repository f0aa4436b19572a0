// Package quality implements the declarative data-quality gate: a fluent
// expectation builder evaluated against one fixed dataset snapshot, plus a
// deterministic repair stage that runs after (and independently of) the
// expectations.
package quality

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// Float returns a pointer to v, for optional bounds.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional bounds.
func Int(v int) *int { return &v }

// Validator accumulates an ordered sequence of expectation checks against
// one dataset snapshot. Checks never mutate the dataset and do not depend
// on each other. Every Expect method records a result and returns the
// validator for chaining; Validate folds the results into a summary.
//
// Threshold policy: the conforming ratio on an empty dataset is defined as
// 0, so any value expectation with mostly > 0 fails on zero rows.
type Validator struct {
	ds      *types.Dataset
	name    string
	results []types.ExpectationResult
}

// New returns a Validator over the given dataset snapshot.
func New(ds *types.Dataset, name string) *Validator {
	return &Validator{ds: ds, name: name}
}

// Name returns the dataset name this validator reports under.
func (v *Validator) Name() string { return v.name }

// conformRatio is the fraction of conforming rows. Zero rows yield ratio 0
// by explicit policy.
func conformRatio(conforming, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(conforming) / float64(total)
}

// asFloat widens a cell value to float64 for numeric comparisons.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// columnMissing records the standard failure for an absent column.
func (v *Validator) columnMissing(kind, column string) *Validator {
	v.results = append(v.results, types.ExpectationResult{
		Kind:     kind,
		Column:   column,
		Success:  false,
		Observed: "column not found",
		Expected: fmt.Sprintf("column %q exists", column),
	})
	return v
}

// ExpectColumnToExist passes when the column is present in the dataset.
func (v *Validator) ExpectColumnToExist(column string) *Validator {
	success := v.ds.HasColumn(column)
	observed := any(column)
	if !success {
		observed = v.ds.Columns
	}
	v.results = append(v.results, types.ExpectationResult{
		Kind:     types.ExpectColumnExists,
		Column:   column,
		Success:  success,
		Observed: observed,
		Expected: column,
	})
	return v
}

// ExpectColumnValuesToNotBeNull passes when the non-null fraction of the
// column is at least mostly.
func (v *Validator) ExpectColumnValuesToNotBeNull(column string, mostly float64) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectNotNull, column)
	}

	total := v.ds.RowCount()
	nulls := 0
	for _, val := range v.ds.Column(column) {
		if val == nil {
			nulls++
		}
	}
	ratio := conformRatio(total-nulls, total)

	v.results = append(v.results, types.ExpectationResult{
		Kind:    types.ExpectNotNull,
		Column:  column,
		Success: ratio >= mostly,
		Observed: map[string]any{
			"null_count":     nulls,
			"non_null_ratio": ratio,
		},
		Expected: map[string]any{"mostly": mostly},
	})
	return v
}

// ExpectColumnValuesToBeBetween passes when the in-range fraction of the
// column is at least mostly. Nil bounds are open. Nulls and non-numeric
// values count as out of range.
func (v *Validator) ExpectColumnValuesToBeBetween(column string, min, max *float64, mostly float64) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectBetween, column)
	}

	total := v.ds.RowCount()
	inRange := 0
	for _, val := range v.ds.Column(column) {
		f, ok := asFloat(val)
		if !ok {
			continue
		}
		if min != nil && f < *min {
			continue
		}
		if max != nil && f > *max {
			continue
		}
		inRange++
	}
	ratio := conformRatio(inRange, total)

	v.results = append(v.results, types.ExpectationResult{
		Kind:    types.ExpectBetween,
		Column:  column,
		Success: ratio >= mostly,
		Observed: map[string]any{
			"out_of_range_count": total - inRange,
			"valid_ratio":        ratio,
		},
		Expected: map[string]any{"min": min, "max": max, "mostly": mostly},
	})
	return v
}

// ExpectColumnValuesToBeInSet passes when the membership fraction of the
// column is at least mostly. Nulls count as non-members.
func (v *Validator) ExpectColumnValuesToBeInSet(column string, set []any, mostly float64) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectInSet, column)
	}

	members := make(map[any]bool, len(set))
	for _, s := range set {
		members[s] = true
	}

	total := v.ds.RowCount()
	matched := 0
	var unexpected []any
	for _, val := range v.ds.Column(column) {
		if val != nil && members[val] {
			matched++
		} else if len(unexpected) < 10 {
			unexpected = append(unexpected, val)
		}
	}
	ratio := conformRatio(matched, total)

	v.results = append(v.results, types.ExpectationResult{
		Kind:    types.ExpectInSet,
		Column:  column,
		Success: ratio >= mostly,
		Observed: map[string]any{
			"unexpected_count":         total - matched,
			"unexpected_values_sample": unexpected,
			"valid_ratio":              ratio,
		},
		Expected: map[string]any{"value_set": set, "mostly": mostly},
	})
	return v
}

// ExpectColumnValuesToBeUnique passes only when the column holds zero
// duplicate values. There is no mostly tolerance.
func (v *Validator) ExpectColumnValuesToBeUnique(column string) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectUnique, column)
	}

	seen := make(map[any]bool)
	duplicates := 0
	for _, val := range v.ds.Column(column) {
		if seen[val] {
			duplicates++
		}
		seen[val] = true
	}

	v.results = append(v.results, types.ExpectationResult{
		Kind:     types.ExpectUnique,
		Column:   column,
		Success:  duplicates == 0,
		Observed: map[string]any{"duplicate_count": duplicates},
		Expected: map[string]any{"duplicates": 0},
	})
	return v
}

// ExpectColumnValuesToMatchRegex passes when the matching fraction of the
// column is at least mostly. Nulls and non-strings never match. An invalid
// pattern records a failed result rather than panicking.
func (v *Validator) ExpectColumnValuesToMatchRegex(column, pattern string, mostly float64) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectMatchesPattern, column)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		v.results = append(v.results, types.ExpectationResult{
			Kind:     types.ExpectMatchesPattern,
			Column:   column,
			Success:  false,
			Observed: fmt.Sprintf("invalid pattern: %v", err),
			Expected: map[string]any{"regex": pattern, "mostly": mostly},
		})
		return v
	}

	total := v.ds.RowCount()
	matched := 0
	for _, val := range v.ds.Column(column) {
		s, ok := val.(string)
		if ok && re.MatchString(s) {
			matched++
		}
	}
	ratio := conformRatio(matched, total)

	v.results = append(v.results, types.ExpectationResult{
		Kind:     types.ExpectMatchesPattern,
		Column:   column,
		Success:  ratio >= mostly,
		Observed: map[string]any{"valid_ratio": ratio},
		Expected: map[string]any{"regex": pattern, "mostly": mostly},
	})
	return v
}

// ExpectRowCountToBeBetween passes when the row count is at least min and,
// when max is non-nil, at most max.
func (v *Validator) ExpectRowCountToBeBetween(min int, max *int) *Validator {
	count := v.ds.RowCount()
	success := count >= min
	if max != nil && count > *max {
		success = false
	}

	v.results = append(v.results, types.ExpectationResult{
		Kind:     types.ExpectRowCountBetween,
		Success:  success,
		Observed: map[string]any{"row_count": count},
		Expected: map[string]any{"min": min, "max": max},
	})
	return v
}

// ExpectColumnMeanToBeBetween passes when the arithmetic mean of the
// column's non-null numeric values is within the bounds. A column with no
// numeric values fails.
func (v *Validator) ExpectColumnMeanToBeBetween(column string, min, max *float64) *Validator {
	if !v.ds.HasColumn(column) {
		return v.columnMissing(types.ExpectColumnMeanInside, column)
	}

	sum := 0.0
	count := 0
	for _, val := range v.ds.Column(column) {
		if f, ok := asFloat(val); ok {
			sum += f
			count++
		}
	}

	var observed any
	success := false
	if count > 0 {
		mean := sum / float64(count)
		observed = map[string]any{"mean": mean}
		success = true
		if min != nil && mean < *min {
			success = false
		}
		if max != nil && mean > *max {
			success = false
		}
	} else {
		observed = map[string]any{"mean": nil}
	}

	v.results = append(v.results, types.ExpectationResult{
		Kind:     types.ExpectColumnMeanInside,
		Column:   column,
		Success:  success,
		Observed: observed,
		Expected: map[string]any{"min": min, "max": max},
	})
	return v
}

// Validate folds all recorded results into a summary. Success is exactly
// the logical AND of the individual result successes.
func (v *Validator) Validate() types.ValidationSummary {
	succeeded := 0
	for _, r := range v.results {
		if r.Success {
			succeeded++
		}
	}

	results := make([]types.ExpectationResult, len(v.results))
	copy(results, v.results)

	return types.ValidationSummary{
		Success:   len(results)-succeeded == 0,
		Evaluated: len(results),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
		Results:   results,
		RunAt:     time.Now(),
	}
}
