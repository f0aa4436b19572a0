package types

import "time"

// Expectation kinds produced by the quality validator.
const (
	ExpectColumnExists     = "expect_column_to_exist"
	ExpectNotNull          = "expect_column_values_to_not_be_null"
	ExpectBetween          = "expect_column_values_to_be_between"
	ExpectInSet            = "expect_column_values_to_be_in_set"
	ExpectUnique           = "expect_column_values_to_be_unique"
	ExpectMatchesPattern   = "expect_column_values_to_match_regex"
	ExpectRowCountBetween  = "expect_table_row_count_to_be_between"
	ExpectColumnMeanInside = "expect_column_mean_to_be_between"
)

// ExpectationResult is the outcome of a single expectation check against a
// dataset snapshot. Immutable once produced.
type ExpectationResult struct {
	Kind     string `json:"expectation_type"`
	Column   string `json:"column,omitempty"`
	Success  bool   `json:"success"`
	Observed any    `json:"observed_value"`
	Expected any    `json:"expected_value"`
}

// ValidationSummary aggregates the ordered expectation results of one
// validation pass.
//
// Invariants: Success == (Failed == 0) and Evaluated == Succeeded + Failed.
type ValidationSummary struct {
	Success   bool                `json:"success"`
	Evaluated int                 `json:"evaluated_expectations"`
	Succeeded int                 `json:"successful_expectations"`
	Failed    int                 `json:"failed_expectations"`
	Results   []ExpectationResult `json:"results"`
	RunAt     time.Time           `json:"run_time"`
}
