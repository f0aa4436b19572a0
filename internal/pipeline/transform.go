package pipeline

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// taskTransform names the transform task in lineage events.
const taskTransform = "transform_staging_to_analytics"

// Transform rebuilds the analytics table from the validated batch,
// deriving the route and peak-season columns.
type Transform struct {
	store  *sqlite.Store
	log    *lineage.Log
	config types.Config
}

// NewTransform wires the transform stage against an attached store and
// the lineage log of the current run.
func NewTransform(store *sqlite.Store, log *lineage.Log, config types.Config) *Transform {
	return &Transform{store: store, log: log, config: config}
}

// Run executes the transform. Only rows the quality gate marked as
// validated are published to analytics.
func (t *Transform) Run(runID string, upstreamSkipped bool) (types.StageResult, error) {
	if runID == "" {
		return types.Failed("missing run id"), types.ErrRunIDEmpty
	}
	if upstreamSkipped {
		return types.Skipped(types.ReasonUpstreamSkipped, ""), nil
	}

	validated, err := t.store.ReadStaging(true)
	if err != nil {
		return types.Failed(err.Error()), err
	}

	peak := make(map[string]bool, len(t.config.PeakSeasons))
	for _, season := range t.config.PeakSeasons {
		peak[season] = true
	}

	out := validated.Clone()
	out = out.WithColumn(types.ColIsPeakSeason, false)
	out = out.WithColumn(types.ColRoute, nil)

	seasonIdx := out.ColumnIndex(types.ColSeasonality)
	srcIdx := out.ColumnIndex(types.ColSource)
	dstIdx := out.ColumnIndex(types.ColDestination)
	peakIdx := out.ColumnIndex(types.ColIsPeakSeason)
	routeIdx := out.ColumnIndex(types.ColRoute)
	depIdx := out.ColumnIndex(types.ColDepartureDatetime)
	arrIdx := out.ColumnIndex(types.ColArrivalDatetime)
	baseIdx := out.ColumnIndex(types.ColBaseFare)
	taxIdx := out.ColumnIndex(types.ColTaxSurcharge)
	totalIdx := out.ColumnIndex(types.ColTotalFare)

	for _, row := range out.Rows {
		if seasonIdx >= 0 {
			if season, ok := row[seasonIdx].(string); ok {
				row[peakIdx] = peak[season]
			}
		}
		src, srcOK := cellString(row, srcIdx)
		dst, dstOK := cellString(row, dstIdx)
		if srcOK && dstOK {
			row[routeIdx] = src + "-" + dst
		}
		normalizeDatetime(row, depIdx)
		normalizeDatetime(row, arrIdx)
		fillTotalFare(row, baseIdx, taxIdx, totalIdx)
	}

	if err := t.store.ReplaceAnalytics(out); err != nil {
		return types.Failed(err.Error()), err
	}

	t.log.Transform(taskTransform,
		types.DatasetInfo{Name: "fare_staging", Namespace: "sqlite.staging", RowCount: validated.RowCount()},
		types.DatasetInfo{Name: "fare_analytics", Namespace: "sqlite.analytics", RowCount: out.RowCount()},
		transformRules(t.config.PeakSeasons),
	)

	return types.Proceeded("", out.RowCount(), nil), nil
}

func cellString(row []any, idx int) (string, bool) {
	if idx < 0 {
		return "", false
	}
	s, ok := row[idx].(string)
	return s, ok
}

// datetimeLayouts are the stored datetime forms normalized to
// RFC3339Nano on the way into analytics.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func normalizeDatetime(row []any, idx int) {
	s, ok := cellString(row, idx)
	if !ok {
		return
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			row[idx] = t.Format(time.RFC3339Nano)
			return
		}
	}
	row[idx] = nil
}

// fillTotalFare sets a missing or zero total to base + tax when both
// components are present.
func fillTotalFare(row []any, baseIdx, taxIdx, totalIdx int) {
	if baseIdx < 0 || taxIdx < 0 || totalIdx < 0 {
		return
	}
	total, okTot := row[totalIdx].(float64)
	if row[totalIdx] != nil && (!okTot || total != 0) {
		return
	}
	base, okB := row[baseIdx].(float64)
	tax, okT := row[taxIdx].(float64)
	if okB && okT {
		row[totalIdx] = base + tax
	}
}

// transformRules describes the column-level derivations for lineage.
func transformRules(peakSeasons []string) []types.TransformationInfo {
	return []types.TransformationInfo{
		{
			Name:          "route",
			Description:   "Concatenate source and destination airport codes",
			InputColumns:  []string{types.ColSource, types.ColDestination},
			OutputColumns: []string{types.ColRoute},
			Logic:         "route = source + '-' + destination",
		},
		{
			Name:          "is_peak_season",
			Description:   "Flag rows whose seasonality is a peak travel season",
			InputColumns:  []string{types.ColSeasonality},
			OutputColumns: []string{types.ColIsPeakSeason},
			Logic:         fmt.Sprintf("is_peak_season = seasonality in %v", peakSeasons),
		},
		{
			Name:          "normalize_datetimes",
			Description:   "Normalize departure and arrival datetimes to RFC 3339",
			InputColumns:  []string{types.ColDepartureDatetime, types.ColArrivalDatetime},
			OutputColumns: []string{types.ColDepartureDatetime, types.ColArrivalDatetime},
			Logic:         "parse known layouts, reformat RFC 3339; unparseable becomes null",
		},
		{
			Name:          "fill_total_fare",
			Description:   "Fill missing or zero total fare from its components",
			InputColumns:  []string{types.ColBaseFare, types.ColTaxSurcharge},
			OutputColumns: []string{types.ColTotalFare},
			Logic:         "total_fare_bdt = base_fare_bdt + tax_surcharge_bdt when total is null or 0",
		},
	}
}
