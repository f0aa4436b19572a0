package lineage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

func stagingInfo(rows int) types.DatasetInfo {
	return types.DatasetInfo{Name: "fare_staging", Namespace: "sqlite.staging", RowCount: rows}
}

func TestLogAppendsInOrder(t *testing.T) {
	l := New("flight_price_pipeline", "run-1")

	l.Read("ingest", types.DatasetInfo{Name: "flights.csv", Namespace: "filesystem"})
	l.Write("ingest", stagingInfo(10))
	l.Validate("validate", stagingInfo(10), map[string]any{"data_quality_passed": true})

	events := l.Events()
	require.Len(t, events, 3)
	assert.Equal(t, types.EventRead, events[0].Kind)
	assert.Equal(t, types.EventWrite, events[1].Kind)
	assert.Equal(t, types.EventValidate, events[2].Kind)
	for _, e := range events {
		assert.Equal(t, "run-1", e.RunID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestSummaryCountsAndDeduplicates(t *testing.T) {
	l := New("wf", "run-1")

	src := types.DatasetInfo{Name: "flights.csv", Namespace: "filesystem"}
	l.Read("ingest", src)
	l.Read("ingest", src) // same dataset read twice
	l.Write("ingest", stagingInfo(5), src)
	l.Transform("transform", stagingInfo(5), types.DatasetInfo{Name: "fare_analytics", Namespace: "sqlite.analytics", RowCount: 5}, nil)
	l.Aggregate("kpis",
		types.DatasetInfo{Name: "fare_analytics", Namespace: "sqlite.analytics"},
		[]types.DatasetInfo{{Name: "kpi_avg_fare_by_airline", Namespace: "sqlite.analytics"}},
		map[string]any{"airlines": 3},
	)

	s := l.Summary()

	assert.Equal(t, 5, s.TotalEvents)
	assert.Equal(t, 2, s.EventsByKind[types.EventRead])
	assert.Equal(t, 1, s.EventsByKind[types.EventWrite])
	assert.Equal(t, 1, s.EventsByKind[types.EventTransform])
	assert.Equal(t, 0, s.EventsByKind[types.EventValidate])
	assert.Equal(t, 1, s.EventsByKind[types.EventAggregate])

	assert.Equal(t, []string{"filesystem.flights.csv", "sqlite.analytics.fare_analytics", "sqlite.staging.fare_staging"}, s.DatasetsRead)
	assert.Equal(t, []string{"sqlite.analytics.fare_analytics", "sqlite.analytics.kpi_avg_fare_by_airline", "sqlite.staging.fare_staging"}, s.DatasetsWritten)
}

func TestTransformRecordsRowChange(t *testing.T) {
	l := New("wf", "run-1")

	transforms := []types.TransformationInfo{{
		Name:          "route",
		Description:   "Concatenate source and destination codes",
		InputColumns:  []string{"source", "destination"},
		OutputColumns: []string{"route"},
		Logic:         "route = source + '-' + destination",
	}}
	e := l.Transform("transform", stagingInfo(10),
		types.DatasetInfo{Name: "fare_analytics", Namespace: "sqlite.analytics", RowCount: 8}, transforms)

	assert.Equal(t, transforms, e.Transformations)
	assert.Equal(t, -2, e.Metadata["row_change"])
}

func TestEventsReturnsCopy(t *testing.T) {
	l := New("wf", "run-1")
	l.Read("t", stagingInfo(1))

	events := l.Events()
	events[0].TaskID = "tampered"

	assert.Equal(t, "t", l.Events()[0].TaskID, "appended events are immutable")
}

func TestToJSONShape(t *testing.T) {
	l := New("wf", "run-1")
	l.Write("ingest", stagingInfo(2))

	out, err := l.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "wf", decoded["workflow_id"])
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, float64(1), decoded["total_events"])
	assert.Contains(t, decoded, "events_by_type")
	assert.Contains(t, decoded, "datasets_written")
}

func TestRegistryOneLivePerPair(t *testing.T) {
	r := NewRegistry()

	first := r.For("wf", "run-1")
	first.Read("t", stagingInfo(1))

	same := r.For("wf", "run-1")
	assert.Same(t, first, same, "same pair returns the same live log")
	assert.Equal(t, 1, same.Summary().TotalEvents)

	next := r.For("wf", "run-2")
	assert.NotSame(t, first, next, "new run id discards the previous instance")
	assert.Equal(t, 0, next.Summary().TotalEvents)

	other := r.For("other-wf", "run-2")
	assert.NotSame(t, next, other, "workflows do not share logs")
}
