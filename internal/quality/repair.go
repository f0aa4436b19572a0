package quality

import (
	"math"
	"strings"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// fareEpsilon is the tolerance above which a stored total fare is treated
// as mismatched against base + tax and recomputed.
const fareEpsilon = 0.01

// categoricalDefaults are the sentinel fills for missing categorical
// fields.
var categoricalDefaults = map[string]string{
	types.ColAirline:     "Unknown",
	types.ColSource:      "UNK",
	types.ColDestination: "UNK",
}

// fareColumns are the numeric fare-like fields repaired to 0 when missing
// and corrected by absolute value when negative.
var fareColumns = []string{types.ColBaseFare, types.ColTaxSurcharge, types.ColTotalFare}

// RepairReport tallies the corrections applied by one repair pass.
type RepairReport struct {
	MissingFilled      int `json:"missing_values_filled"`
	NegativesCorrected int `json:"negative_fares_corrected"`
	EmptyStrings       int `json:"empty_string_fields"`
	FareRecalculations int `json:"fare_recalculations"`
}

// Changed reports whether the pass altered any value. EmptyStrings is a
// tally only; empty strings are reported, not rewritten.
func (r RepairReport) Changed() bool {
	return r.MissingFilled > 0 || r.NegativesCorrected > 0 || r.FareRecalculations > 0
}

// Repair applies the deterministic correction pass to a batch: missing
// categorical values get fixed sentinels, missing fares become 0, negative
// fares are corrected by absolute value, and any total fare that mismatches
// base + tax by more than the epsilon is recomputed. Empty categorical
// strings are tallied but left in place.
//
// Repair is independent of expectation outcomes, never mutates its input,
// and is idempotent: repairing already-repaired data changes nothing.
func Repair(ds *types.Dataset) (*types.Dataset, RepairReport) {
	out := ds.Clone()
	var report RepairReport

	for col, sentinel := range categoricalDefaults {
		idx := out.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range out.Rows {
			if row[idx] == nil {
				row[idx] = sentinel
				report.MissingFilled++
			} else if s, ok := row[idx].(string); ok && strings.TrimSpace(s) == "" {
				report.EmptyStrings++
			}
		}
	}

	for _, col := range fareColumns {
		idx := out.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range out.Rows {
			f, ok := asFloat(row[idx])
			switch {
			case row[idx] == nil:
				row[idx] = float64(0)
				report.MissingFilled++
			case ok && f < 0:
				row[idx] = math.Abs(f)
				report.NegativesCorrected++
			}
		}
	}

	baseIdx := out.ColumnIndex(types.ColBaseFare)
	taxIdx := out.ColumnIndex(types.ColTaxSurcharge)
	totalIdx := out.ColumnIndex(types.ColTotalFare)
	if baseIdx >= 0 && taxIdx >= 0 && totalIdx >= 0 {
		for _, row := range out.Rows {
			base, okB := asFloat(row[baseIdx])
			tax, okT := asFloat(row[taxIdx])
			total, okTot := asFloat(row[totalIdx])
			if !okB || !okT || !okTot {
				continue
			}
			if math.Abs(total-(base+tax)) > fareEpsilon {
				row[totalIdx] = base + tax
				report.FareRecalculations++
			}
		}
	}

	return out, report
}
