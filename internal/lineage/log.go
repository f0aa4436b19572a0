// Package lineage records the audit trail of one pipeline run: an
// append-only log of read, write, transform, validate, and aggregate
// events scoped by (workflow id, run id), with a JSON export consumed by
// the orchestration layer.
package lineage

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// Log is an append-only lineage recorder for one (workflow id, run id)
// pair. Events are never edited after being appended.
type Log struct {
	workflowID string
	runID      string
	startedAt  time.Time
	events     []types.LineageEvent
}

// New returns an empty log for the given workflow and run.
func New(workflowID, runID string) *Log {
	return &Log{
		workflowID: workflowID,
		runID:      runID,
		startedAt:  time.Now(),
	}
}

// WorkflowID returns the workflow this log is scoped to.
func (l *Log) WorkflowID() string { return l.workflowID }

// RunID returns the run this log is scoped to.
func (l *Log) RunID() string { return l.runID }

// Events returns a copy of the recorded events in append order.
func (l *Log) Events() []types.LineageEvent {
	out := make([]types.LineageEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Log) append(e types.LineageEvent) types.LineageEvent {
	e.Timestamp = time.Now()
	e.RunID = l.runID
	l.events = append(l.events, e)
	return e
}

// Read records a data read from a source dataset.
func (l *Log) Read(taskID string, source types.DatasetInfo) types.LineageEvent {
	return l.append(types.LineageEvent{
		Kind:           types.EventRead,
		TaskID:         taskID,
		SourceDatasets: []types.DatasetInfo{source},
		TargetDatasets: []types.DatasetInfo{},
	})
}

// Write records a data write to a target dataset, optionally naming the
// datasets it came from.
func (l *Log) Write(taskID string, target types.DatasetInfo, sources ...types.DatasetInfo) types.LineageEvent {
	if sources == nil {
		sources = []types.DatasetInfo{}
	}
	return l.append(types.LineageEvent{
		Kind:           types.EventWrite,
		TaskID:         taskID,
		SourceDatasets: sources,
		TargetDatasets: []types.DatasetInfo{target},
	})
}

// Transform records a transformation from source to target, with one
// TransformationInfo per column-level rule applied.
func (l *Log) Transform(taskID string, source, target types.DatasetInfo, transformations []types.TransformationInfo) types.LineageEvent {
	return l.append(types.LineageEvent{
		Kind:            types.EventTransform,
		TaskID:          taskID,
		SourceDatasets:  []types.DatasetInfo{source},
		TargetDatasets:  []types.DatasetInfo{target},
		Transformations: transformations,
		Metadata: map[string]any{
			"input_row_count":  source.RowCount,
			"output_row_count": target.RowCount,
			"row_change":       target.RowCount - source.RowCount,
		},
	})
}

// Validate records a validation pass over a dataset, carrying the
// structured outcome in the event metadata.
func (l *Log) Validate(taskID string, dataset types.DatasetInfo, result map[string]any) types.LineageEvent {
	return l.append(types.LineageEvent{
		Kind:           types.EventValidate,
		TaskID:         taskID,
		SourceDatasets: []types.DatasetInfo{dataset},
		TargetDatasets: []types.DatasetInfo{},
		Metadata:       map[string]any{"validation_result": result},
	})
}

// Aggregate records an aggregation from a source dataset into one or more
// target tables.
func (l *Log) Aggregate(taskID string, source types.DatasetInfo, targets []types.DatasetInfo, metrics map[string]any) types.LineageEvent {
	return l.append(types.LineageEvent{
		Kind:           types.EventAggregate,
		TaskID:         taskID,
		SourceDatasets: []types.DatasetInfo{source},
		TargetDatasets: targets,
		Metadata:       map[string]any{"metrics": metrics},
	})
}

// Summary is the aggregate view of one log: counts per event kind and the
// deduplicated sets of datasets read and written.
type Summary struct {
	WorkflowID      string                  `json:"workflow_id"`
	RunID           string                  `json:"run_id"`
	StartedAt       time.Time               `json:"started_at"`
	TotalEvents     int                     `json:"total_events"`
	EventsByKind    map[types.EventKind]int `json:"events_by_type"`
	DatasetsRead    []string                `json:"datasets_read"`
	DatasetsWritten []string                `json:"datasets_written"`
	Events          []types.LineageEvent    `json:"events"`
}

// Summary computes the aggregate view of the log. Dataset references are
// deduplicated by "namespace.name" and returned sorted.
func (l *Log) Summary() Summary {
	byKind := make(map[types.EventKind]int, len(types.EventKinds))
	for _, k := range types.EventKinds {
		byKind[k] = 0
	}

	readSet := make(map[string]bool)
	writeSet := make(map[string]bool)
	for _, e := range l.events {
		byKind[e.Kind]++
		for _, d := range e.SourceDatasets {
			readSet[d.Ref()] = true
		}
		for _, d := range e.TargetDatasets {
			writeSet[d.Ref()] = true
		}
	}

	return Summary{
		WorkflowID:      l.workflowID,
		RunID:           l.runID,
		StartedAt:       l.startedAt,
		TotalEvents:     len(l.events),
		EventsByKind:    byKind,
		DatasetsRead:    sortedKeys(readSet),
		DatasetsWritten: sortedKeys(writeSet),
		Events:          l.Events(),
	}
}

// ToJSON serializes the log summary for audit persistence.
func (l *Log) ToJSON() (string, error) {
	data, err := json.MarshalIndent(l.Summary(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
