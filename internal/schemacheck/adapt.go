package schemacheck

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// defaultForKind returns the sentinel default inserted for a missing
// required column. Timestamps stay absent (null).
func defaultForKind(kind types.ColumnKind) any {
	switch kind {
	case types.KindText:
		return "Unknown"
	case types.KindInteger:
		return int64(0)
	case types.KindFloat:
		return float64(0)
	case types.KindBoolean:
		return false
	default:
		return nil
	}
}

// Adapt reshapes a batch to the expected schema: missing required columns
// are inserted with type-appropriate sentinel defaults, and columns with a
// reported type change are best-effort coerced to the expected kind.
// Values that fail coercion become null; for an integer target, null
// becomes 0. The input dataset is never mutated.
func (c *Checker) Adapt(ds *types.Dataset, report *types.SchemaReport) *types.Dataset {
	out := ds.Clone()

	for _, col := range report.RemovedColumns {
		if !c.required[col] {
			continue
		}
		out = out.WithColumn(col, defaultForKind(c.expected[col]))
	}

	for _, change := range report.TypeChanges {
		idx := out.ColumnIndex(change.Column)
		if idx < 0 {
			continue
		}
		for _, row := range out.Rows {
			row[idx] = coerce(row[idx], change.Expected)
		}
	}

	return out
}

// coerce converts a single value to the target kind. Failures yield null,
// except that an integer target maps null to 0.
func coerce(v any, kind types.ColumnKind) any {
	if v == nil {
		if kind == types.KindInteger {
			return int64(0)
		}
		return nil
	}

	switch kind {
	case types.KindInteger:
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			return int64(x)
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return int64(f)
			}
			return int64(0)
		}
		return int64(0)

	case types.KindFloat:
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f
			}
			return nil
		}
		return nil

	case types.KindText:
		switch x := v.(type) {
		case string:
			return x
		case int64:
			return strconv.FormatInt(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(x)
		}
		return nil

	case types.KindBoolean:
		switch x := v.(type) {
		case bool:
			return x
		case int64:
			return x != 0
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b
			}
			return nil
		}
		return nil

	default:
		return v
	}
}
