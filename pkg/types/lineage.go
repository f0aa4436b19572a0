package types

import "time"

// EventKind classifies a lineage event.
type EventKind string

// Lineage event kinds.
const (
	EventRead      EventKind = "read"
	EventWrite     EventKind = "write"
	EventTransform EventKind = "transform"
	EventValidate  EventKind = "validate"
	EventAggregate EventKind = "aggregate"
)

// EventKinds lists all kinds in a stable order, for summaries.
var EventKinds = []EventKind{EventRead, EventWrite, EventTransform, EventValidate, EventAggregate}

// DatasetInfo identifies a dataset touched by a lineage event.
type DatasetInfo struct {
	Name          string   `json:"name"`
	Namespace     string   `json:"namespace"`
	SchemaVersion string   `json:"schema_version,omitempty"`
	RowCount      int      `json:"row_count,omitempty"`
	Columns       []string `json:"columns,omitempty"`
}

// Ref returns the deduplication key "namespace.name".
func (d DatasetInfo) Ref() string {
	return d.Namespace + "." + d.Name
}

// TransformationInfo documents one column-level rule applied by a
// transform event, including the literal logic so the transformation is
// self-describing in the audit trail.
type TransformationInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	InputColumns  []string `json:"input_columns"`
	OutputColumns []string `json:"output_columns"`
	Logic         string   `json:"logic,omitempty"`
}

// LineageEvent is one immutable record of a read, write, transform,
// validate, or aggregate operation within a run.
type LineageEvent struct {
	Kind            EventKind            `json:"event_type"`
	Timestamp       time.Time            `json:"timestamp"`
	TaskID          string               `json:"task_id"`
	RunID           string               `json:"run_id"`
	SourceDatasets  []DatasetInfo        `json:"source_datasets"`
	TargetDatasets  []DatasetInfo        `json:"target_datasets"`
	Transformations []TransformationInfo `json:"transformations,omitempty"`
	Metadata        map[string]any       `json:"metadata,omitempty"`
}
