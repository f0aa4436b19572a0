package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

const sampleSuite = `
dataset: flight_price_data
expectations:
  - kind: expect_column_to_exist
    column: airline
  - kind: expect_column_values_to_not_be_null
    column: airline
    mostly: 0.5
  - kind: expect_column_values_to_be_between
    column: total_fare_bdt
    min: 0
    mostly: 0.99
  - kind: expect_column_values_to_be_in_set
    column: class
    values: [Economy, Business]
  - kind: expect_table_row_count_to_be_between
    min_count: 1
`

func suiteDataset() *types.Dataset {
	ds := types.NewDataset([]string{types.ColAirline, types.ColClass, types.ColTotalFare})
	ds.AppendRow([]any{"AirAstra", "Economy", 4500.0})
	ds.AppendRow([]any{"Novoair", "Business", 3900.0})
	return ds
}

func TestParseSuiteAndApply(t *testing.T) {
	spec, err := ParseSuite([]byte(sampleSuite))
	require.NoError(t, err)
	assert.Equal(t, "flight_price_data", spec.Dataset)
	require.Len(t, spec.Expectations, 5)

	summary := spec.Apply(suiteDataset()).Validate()
	assert.True(t, summary.Success)
	assert.Equal(t, 5, summary.Evaluated)
}

func TestSuiteMostlyDefaultsToOne(t *testing.T) {
	spec, err := ParseSuite([]byte(`
expectations:
  - kind: expect_column_values_to_not_be_null
    column: airline
`))
	require.NoError(t, err)

	ds := types.NewDataset([]string{types.ColAirline})
	ds.AppendRow([]any{"AirAstra"})
	ds.AppendRow([]any{nil})

	summary := spec.Apply(ds).Validate()
	assert.False(t, summary.Success, "one null fails the default mostly of 1.0")
}

func TestParseSuiteRejectsUnknownKind(t *testing.T) {
	_, err := ParseSuite([]byte(`
expectations:
  - kind: expect_values_to_be_nice
    column: airline
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestParseSuiteRejectsEmptySuite(t *testing.T) {
	_, err := ParseSuite([]byte(`dataset: x`))
	assert.Error(t, err)
}
