package types

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// ColumnKind is the canonical type of a column. Schema comparison works on
// these enumerated kinds, never on raw driver type names.
type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindText
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
)

// kindNames maps kinds to their stable string form, used in fingerprints,
// reports, and lineage metadata.
var kindNames = map[ColumnKind]string{
	KindUnknown:   "unknown",
	KindText:      "text",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
}

// String returns the stable name of the kind.
func (k ColumnKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the ColumnKind for a stable name. Unrecognized names
// map to KindUnknown.
func ParseKind(name string) ColumnKind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// Schema is a canonical schema: a mapping from column name to kind.
type Schema map[string]ColumnKind

// Columns returns the column names in sorted order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a copy of the schema.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	for c, k := range s {
		out[c] = k
	}
	return out
}

// Fingerprint returns a short stable hash over the sorted (column, kind)
// pairs. It version-tags lineage metadata; compatibility decisions never
// consult it.
func (s Schema) Fingerprint() string {
	var b strings.Builder
	for _, col := range s.Columns() {
		b.WriteString(col)
		b.WriteByte('=')
		b.WriteString(s[col].String())
		b.WriteByte(';')
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:8]
}

// Schema change kinds.
const (
	SchemaChangeNewColumn     = "new_column"
	SchemaChangeRemovedColumn = "removed_column"
	SchemaChangeTypeChange    = "type_change"
)

// SchemaChange is one detected structural difference between the expected
// and the observed schema. Immutable once produced.
type SchemaChange struct {
	Kind       string    `json:"change_type"`
	Column     string    `json:"column_name"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

// TypeChange records a column whose observed kind differs from the expected
// kind in a non-widening way.
type TypeChange struct {
	Column   string     `json:"column"`
	Expected ColumnKind `json:"expected_type"`
	Observed ColumnKind `json:"observed_type"`
}

// SchemaReport is the complete result of one schema comparison. It is
// recomputed fresh on every detection, never cached.
//
// IsCompatible is false exactly when a required column appears in
// RemovedColumns; new columns and type changes are reported but do not
// break compatibility on their own.
type SchemaReport struct {
	HasChanges     bool           `json:"has_changes"`
	IsCompatible   bool           `json:"is_compatible"`
	NewColumns     []string       `json:"new_columns"`
	RemovedColumns []string       `json:"removed_columns"`
	TypeChanges    []TypeChange   `json:"type_changes"`
	Changes        []SchemaChange `json:"changes"`
}
