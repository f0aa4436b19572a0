package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

func newStore(t *testing.T) (*sqlite.Store, types.Config) {
	t.Helper()
	config := types.DefaultConfig()
	config.DataDir = t.TempDir()
	config.SourceName = "flights.csv"
	config.WorkflowID = "flight_price_pipeline"

	store := sqlite.NewStore()
	require.NoError(t, store.Attach(config))
	t.Cleanup(func() { store.Detach() })
	return store, config
}

func stageRows(t *testing.T, store *sqlite.Store, rows ...[]any) {
	t.Helper()
	ds := types.NewDataset([]string{
		types.ColAirline, types.ColSource, types.ColDestination, types.ColSeasonality,
		types.ColBaseFare, types.ColTaxSurcharge, types.ColTotalFare,
	})
	for _, row := range rows {
		ds.AppendRow(row)
	}

	in, err := store.BeginIngestion(sqlite.RowTag{
		SourceFile:  "flights.csv",
		ContentHash: "hash-1",
		RunID:       "run-1",
		IngestedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, in.AppendChunk(ds))
	_, err = in.Commit(types.LedgerEntry{
		ID: uuid.NewString(), SourceName: "flights.csv", ContentHash: "hash-1",
		RowCount: ds.RowCount(), RunID: "run-1", IngestedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestGateValidatesRepairsAndRepublishes(t *testing.T) {
	store, config := newStore(t)
	stageRows(t, store,
		[]any{"AirAstra", "DAC", "CXB", "Eid", 4000.0, 500.0, 4500.0},
		[]any{nil, "DAC", "ZYL", "Regular", 3500.0, 400.0, 3900.0},
		[]any{"US-Bangla", "CGP", "DAC", "Regular", 5000.0, 500.0, 0.0},
	)

	log := lineage.New(config.WorkflowID, "run-1")
	result, report, err := NewGate(store, log, config).Run("run-1", false)
	require.NoError(t, err)

	assert.Equal(t, types.StageProceeded, result.Status)
	assert.Equal(t, 3, result.RowCount)
	require.NotNil(t, report)

	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 1, report.Repairs.MissingFilled, "null airline filled")
	assert.Equal(t, 1, report.Repairs.FareRecalculations, "zero total recomputed")
	assert.True(t, report.Final.Success, "repaired batch passes the suite")
	assert.Contains(t, report.Issues, "1 missing values filled")
	assert.Contains(t, report.Issues, "1 total fares recalculated")

	validated, err := store.ReadStaging(true)
	require.NoError(t, err)
	require.Equal(t, 3, validated.RowCount())
	assert.Equal(t, "Unknown", validated.Rows[1][validated.ColumnIndex(types.ColAirline)])
	assert.Equal(t, 5500.0, validated.Rows[2][validated.ColumnIndex(types.ColTotalFare)])

	s := log.Summary()
	assert.Equal(t, 1, s.EventsByKind[types.EventValidate])
}

func TestGateRecordsInitialFailures(t *testing.T) {
	store, config := newStore(t)
	// Half the airlines are null, below the 0.95 mostly threshold.
	stageRows(t, store,
		[]any{nil, "DAC", "CXB", "Regular", 4000.0, 500.0, 4500.0},
		[]any{"Novoair", "DAC", "ZYL", "Regular", 3500.0, 400.0, 3900.0},
	)

	log := lineage.New(config.WorkflowID, "run-1")
	result, report, err := NewGate(store, log, config).Run("run-1", false)
	require.NoError(t, err)

	assert.Equal(t, types.StageProceeded, result.Status, "expectation failures are non-fatal")
	assert.False(t, report.Initial.Success)
	assert.Greater(t, report.Initial.Failed, 0)
	assert.True(t, report.Final.Success, "repair fills the nulls")
}

func TestGatePropagatesUpstreamSkip(t *testing.T) {
	store, config := newStore(t)
	log := lineage.New(config.WorkflowID, "run-1")

	result, report, err := NewGate(store, log, config).Run("run-1", true)
	require.NoError(t, err)

	assert.Equal(t, types.StageSkipped, result.Status)
	assert.Equal(t, types.ReasonUpstreamSkipped, result.Reason)
	assert.Nil(t, report)
	assert.Empty(t, log.Events())
}

func TestTransformDerivesRouteAndPeakSeason(t *testing.T) {
	store, config := newStore(t)
	stageRows(t, store,
		[]any{"AirAstra", "DAC", "CXB", "Eid", 4000.0, 500.0, 4500.0},
		[]any{"Novoair", "DAC", "ZYL", "Regular", 3500.0, 400.0, 3900.0},
	)

	log := lineage.New(config.WorkflowID, "run-1")
	_, _, err := NewGate(store, log, config).Run("run-1", false)
	require.NoError(t, err)

	result, err := NewTransform(store, log, config).Run("run-1", false)
	require.NoError(t, err)
	assert.Equal(t, types.StageProceeded, result.Status)
	assert.Equal(t, 2, result.RowCount)

	out, err := store.ReadAnalytics()
	require.NoError(t, err)
	require.Equal(t, 2, out.RowCount())

	routeIdx := out.ColumnIndex(types.ColRoute)
	peakIdx := out.ColumnIndex(types.ColIsPeakSeason)
	assert.Equal(t, "DAC-CXB", out.Rows[0][routeIdx])
	assert.Equal(t, int64(1), out.Rows[0][peakIdx], "Eid is a peak season")
	assert.Equal(t, "DAC-ZYL", out.Rows[1][routeIdx])
	assert.Equal(t, int64(0), out.Rows[1][peakIdx])

	s := log.Summary()
	assert.Equal(t, 1, s.EventsByKind[types.EventTransform])
	assert.Contains(t, s.DatasetsWritten, "sqlite.analytics.fare_analytics")
}

func TestTransformOnlyPublishesValidatedRows(t *testing.T) {
	store, config := newStore(t)
	stageRows(t, store,
		[]any{"AirAstra", "DAC", "CXB", "Eid", 4000.0, 500.0, 4500.0},
	)

	// The gate has not run: nothing is validated yet.
	log := lineage.New(config.WorkflowID, "run-1")
	result, err := NewTransform(store, log, config).Run("run-1", false)
	require.NoError(t, err)

	assert.Equal(t, types.StageProceeded, result.Status)
	assert.Equal(t, 0, result.RowCount)

	count, err := store.CountAnalytics()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTransformPropagatesUpstreamSkip(t *testing.T) {
	store, config := newStore(t)
	log := lineage.New(config.WorkflowID, "run-1")

	result, err := NewTransform(store, log, config).Run("run-1", true)
	require.NoError(t, err)
	assert.Equal(t, types.StageSkipped, result.Status)
	assert.Equal(t, types.ReasonUpstreamSkipped, result.Reason)
}
