package quality

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

func fareDataset(values ...any) *types.Dataset {
	ds := types.NewDataset([]string{"airline"})
	for _, v := range values {
		ds.AppendRow([]any{v})
	}
	return ds
}

func TestNotNullThresholdLaw(t *testing.T) {
	// 5 rows, 1 null: 80% non-null.
	ds := fareDataset("a", "b", "c", "d", nil)

	passing := New(ds, "t").ExpectColumnValuesToNotBeNull("airline", 0.7).Validate()
	assert.True(t, passing.Success, "80%% non-null must satisfy mostly=0.7")

	failing := New(ds, "t").ExpectColumnValuesToNotBeNull("airline", 0.9).Validate()
	assert.False(t, failing.Success, "80%% non-null must fail mostly=0.9")
}

func TestEmptyDatasetRatioIsZero(t *testing.T) {
	ds := fareDataset()

	summary := New(ds, "t").ExpectColumnValuesToNotBeNull("airline", 0.5).Validate()

	assert.False(t, summary.Success, "zero rows define the conforming ratio as 0")
	assert.Equal(t, 1, summary.Failed)
}

func TestColumnExists(t *testing.T) {
	ds := fareDataset("a")

	summary := New(ds, "t").
		ExpectColumnToExist("airline").
		ExpectColumnToExist("no_such").
		Validate()

	assert.False(t, summary.Success)
	assert.Equal(t, 2, summary.Evaluated)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestBetweenCountsNullsOutOfRange(t *testing.T) {
	ds := types.NewDataset([]string{"fare"})
	for _, v := range []any{float64(100), float64(200), nil, float64(-5)} {
		ds.AppendRow([]any{v})
	}

	// 2 of 4 rows conform: null and -5 are out of range.
	passing := New(ds, "t").ExpectColumnValuesToBeBetween("fare", Float(0), nil, 0.5).Validate()
	assert.True(t, passing.Success)

	failing := New(ds, "t").ExpectColumnValuesToBeBetween("fare", Float(0), nil, 0.75).Validate()
	assert.False(t, failing.Success)
}

func TestInSet(t *testing.T) {
	ds := fareDataset("Eid", "Hajj", "Regular", nil)

	set := []any{"Eid", "Hajj", "Winter"}
	passing := New(ds, "t").ExpectColumnValuesToBeInSet("airline", set, 0.5).Validate()
	assert.True(t, passing.Success)

	failing := New(ds, "t").ExpectColumnValuesToBeInSet("airline", set, 0.9).Validate()
	assert.False(t, failing.Success)
}

func TestUniqueHasNoTolerance(t *testing.T) {
	unique := fareDataset("a", "b", "c")
	assert.True(t, New(unique, "t").ExpectColumnValuesToBeUnique("airline").Validate().Success)

	oneDup := fareDataset("a", "b", "a")
	assert.False(t, New(oneDup, "t").ExpectColumnValuesToBeUnique("airline").Validate().Success,
		"a single duplicate fails regardless of fraction")
}

func TestMatchesPattern(t *testing.T) {
	ds := fareDataset("DAC", "CGP", "xx1", nil)

	passing := New(ds, "t").ExpectColumnValuesToMatchRegex("airline", `^[A-Z]{3}$`, 0.5).Validate()
	assert.True(t, passing.Success)

	failing := New(ds, "t").ExpectColumnValuesToMatchRegex("airline", `^[A-Z]{3}$`, 0.9).Validate()
	assert.False(t, failing.Success)

	invalid := New(ds, "t").ExpectColumnValuesToMatchRegex("airline", `([`, 1.0).Validate()
	assert.False(t, invalid.Success, "invalid pattern records a failure")
}

func TestRowCountBetween(t *testing.T) {
	ds := fareDataset("a", "b", "c")

	assert.True(t, New(ds, "t").ExpectRowCountToBeBetween(1, nil).Validate().Success)
	assert.True(t, New(ds, "t").ExpectRowCountToBeBetween(3, Int(3)).Validate().Success)
	assert.False(t, New(ds, "t").ExpectRowCountToBeBetween(4, nil).Validate().Success)
	assert.False(t, New(ds, "t").ExpectRowCountToBeBetween(0, Int(2)).Validate().Success)
}

func TestColumnMeanBetween(t *testing.T) {
	ds := types.NewDataset([]string{"fare"})
	for _, v := range []any{float64(1000), float64(3000), nil} {
		ds.AppendRow([]any{v})
	}

	// Mean of non-null values is 2000.
	assert.True(t, New(ds, "t").ExpectColumnMeanToBeBetween("fare", Float(1500), Float(2500)).Validate().Success)
	assert.False(t, New(ds, "t").ExpectColumnMeanToBeBetween("fare", Float(2500), nil).Validate().Success)

	empty := types.NewDataset([]string{"fare"})
	assert.False(t, New(empty, "t").ExpectColumnMeanToBeBetween("fare", Float(0), nil).Validate().Success,
		"no numeric values fails the mean check")
}

func TestMissingColumnFailsValueExpectations(t *testing.T) {
	ds := fareDataset("a")

	summary := New(ds, "t").
		ExpectColumnValuesToNotBeNull("ghost", 1.0).
		ExpectColumnValuesToBeBetween("ghost", Float(0), nil, 1.0).
		ExpectColumnValuesToBeInSet("ghost", []any{"a"}, 1.0).
		ExpectColumnValuesToBeUnique("ghost").
		ExpectColumnValuesToMatchRegex("ghost", `.`, 1.0).
		ExpectColumnMeanToBeBetween("ghost", nil, nil).
		Validate()

	assert.Equal(t, 6, summary.Failed)
}

// TestSummarySuccessIsConjunction checks, over randomized mixtures of
// passing and failing expectations, that the summary invariants hold:
// Success == AND of results, Evaluated == Succeeded + Failed.
func TestSummarySuccessIsConjunction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		t.Run(fmt.Sprintf("trial_%d", trial), func(t *testing.T) {
			ds := fareDataset("a", "b", "c")
			v := New(ds, "t")

			n := 1 + rng.Intn(8)
			for i := 0; i < n; i++ {
				if rng.Intn(2) == 0 {
					v.ExpectColumnToExist("airline") // passes
				} else {
					v.ExpectColumnToExist("no_such") // fails
				}
			}

			summary := v.Validate()

			require.Equal(t, n, summary.Evaluated)
			assert.Equal(t, summary.Evaluated, summary.Succeeded+summary.Failed)
			assert.Equal(t, summary.Failed == 0, summary.Success)

			conj := true
			for _, r := range summary.Results {
				conj = conj && r.Success
			}
			assert.Equal(t, conj, summary.Success)
		})
	}
}

func TestChecksDoNotMutateDataset(t *testing.T) {
	ds := fareDataset("a", nil, "c")
	before := ds.Clone()

	New(ds, "t").
		ExpectColumnToExist("airline").
		ExpectColumnValuesToNotBeNull("airline", 0.5).
		ExpectColumnValuesToBeUnique("airline").
		Validate()

	assert.Equal(t, before.Rows, ds.Rows)
}
