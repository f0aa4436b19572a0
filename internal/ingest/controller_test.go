package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

const flightsHeader = "Airline,Source,Destination,Base Fare (BDT),Tax & Surcharge (BDT),Total Fare (BDT)"

const flightsCSV = flightsHeader + "\n" +
	"AirAstra,DAC,CXB,4000,500,4500\n" +
	"Novoair,DAC,ZYL,3500,400,3900\n" +
	"US-Bangla,CGP,DAC,3000,300,3300\n"

const flightsCSVUpdated = flightsHeader + "\n" +
	"AirAstra,DAC,CXB,4100,510,4610\n" +
	"Novoair,DAC,ZYL,3600,410,4010\n"

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFixture(t *testing.T, csvContent string) (*Controller, *sqlite.Store, *lineage.Log, types.Config) {
	t.Helper()
	dir := t.TempDir()

	config := types.DefaultConfig()
	config.DataDir = filepath.Join(dir, "data")
	config.SourcePath = writeCSV(t, dir, "flights.csv", csvContent)
	config.SourceName = "flights.csv"
	config.WorkflowID = "flight_price_pipeline"
	config.ChunkSize = 2 // force multiple chunks over the small fixture

	store := sqlite.NewStore()
	require.NoError(t, store.Attach(config))
	t.Cleanup(func() { store.Detach() })

	log := lineage.New(config.WorkflowID, "run-1")
	return NewController(store, log, config), store, log, config
}

func TestRunFirstIngestionProceeds(t *testing.T) {
	c, store, log, _ := newFixture(t, flightsCSV)

	result, err := c.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, types.StageProceeded, result.Status)
	assert.Equal(t, 3, result.RowCount)
	assert.NotEmpty(t, result.ContentHash)
	assert.Empty(t, result.LedgerWarning)
	require.NotNil(t, result.SchemaReport)
	assert.True(t, result.SchemaReport.IsCompatible)

	count, err := store.CountBySource("flights.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	entry, err := store.LatestEntry("flights.csv")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, result.ContentHash, entry.ContentHash)
	assert.Equal(t, 3, entry.RowCount)
	assert.Equal(t, "run-1", entry.RunID)

	s := log.Summary()
	assert.Equal(t, 1, s.EventsByKind[types.EventRead])
	assert.Equal(t, 1, s.EventsByKind[types.EventWrite])

	events := log.Events()
	require.Len(t, events, 2)
	write := events[1]
	require.Equal(t, types.EventWrite, write.Kind)
	require.Len(t, write.TargetDatasets, 1)
	assert.Equal(t, types.FlightSchema().Columns(), write.TargetDatasets[0].Columns)
	assert.Equal(t, 3, write.TargetDatasets[0].RowCount)
}

func TestRunUnchangedFileSkips(t *testing.T) {
	c, store, log, _ := newFixture(t, flightsCSV)

	first, err := c.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	second, err := c.Run(Options{RunID: "run-2"})
	require.NoError(t, err)

	assert.Equal(t, types.StageSkipped, second.Status)
	assert.Equal(t, types.ReasonFileUnchanged, second.Reason)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	ledger, err := store.CountLedger()
	require.NoError(t, err)
	assert.Equal(t, 1, ledger, "a skipped run appends no ledger entry")

	s := log.Summary()
	assert.Equal(t, 1, s.EventsByKind[types.EventRead], "a skipped run records no new events")
}

func TestRunForceReloadIngestsUnchangedFile(t *testing.T) {
	c, store, _, _ := newFixture(t, flightsCSV)

	_, err := c.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	result, err := c.Run(Options{RunID: "run-2", ForceReload: true})
	require.NoError(t, err)
	assert.Equal(t, types.StageProceeded, result.Status)

	ledger, err := store.CountLedger()
	require.NoError(t, err)
	assert.Equal(t, 2, ledger)

	count, err := store.CountBySource("flights.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "reload replaces rather than duplicates")
}

func TestRunChangedContentReplacesBatch(t *testing.T) {
	c, store, _, config := newFixture(t, flightsCSV)

	first, err := c.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	// A second logical source shares the staging table and must survive
	// the replacement untouched.
	partner := config
	partner.SourcePath = writeCSV(t, t.TempDir(), "partner.csv",
		flightsHeader+"\nBiman,DAC,JSR,2500,250,2750\n")
	partner.SourceName = "partner.csv"
	pc := NewController(store, lineage.New(config.WorkflowID, "run-1"), partner)
	_, err = pc.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(config.SourcePath, []byte(flightsCSVUpdated), 0o644))

	second, err := c.Run(Options{RunID: "run-2"})
	require.NoError(t, err)
	assert.Equal(t, types.StageProceeded, second.Status)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)

	stale, err := store.CountByHash(first.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, 0, stale, "rows from the previous content are gone")

	fresh, err := store.CountBySource("flights.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh)

	partnerRows, err := store.CountBySource("partner.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, partnerRows)

	entries, err := store.LedgerEntries("flights.csv")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ContentHash, entries[0].ContentHash)
}

func TestRunMissingFileFails(t *testing.T) {
	c, store, _, config := newFixture(t, flightsCSV)
	require.NoError(t, os.Remove(config.SourcePath))

	result, err := c.Run(Options{RunID: "run-1"})
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	assert.Equal(t, types.StageFailed, result.Status)

	count, err := store.CountStaging()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunIncompatibleSchemaAborts(t *testing.T) {
	// Total Fare (BDT) is required and missing from the header.
	noTotal := "Airline,Source,Destination,Base Fare (BDT),Tax & Surcharge (BDT)\n" +
		"AirAstra,DAC,CXB,4000,500\n"
	c, store, _, _ := newFixture(t, noTotal)

	result, err := c.Run(Options{RunID: "run-1"})
	assert.ErrorIs(t, err, types.ErrIncompatibleSchema)
	assert.Contains(t, err.Error(), types.ColTotalFare)
	assert.Equal(t, types.StageFailed, result.Status)

	count, err := store.CountStaging()
	require.NoError(t, err)
	assert.Equal(t, 0, count, "nothing is written on an incompatible schema")

	ledger, err := store.CountLedger()
	require.NoError(t, err)
	assert.Equal(t, 0, ledger)
}

func TestRunNewColumnIsCompatibleDrift(t *testing.T) {
	withExtra := flightsHeader + ",Baggage Allowance (kg)\n" +
		"AirAstra,DAC,CXB,4000,500,4500,20\n"
	c, store, _, _ := newFixture(t, withExtra)

	result, err := c.Run(Options{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, types.StageProceeded, result.Status)
	require.NotNil(t, result.SchemaReport)
	assert.True(t, result.SchemaReport.HasChanges)
	assert.True(t, result.SchemaReport.IsCompatible)
	assert.Contains(t, result.SchemaReport.NewColumns, "baggage_allowance_kg")

	count, err := store.CountBySource("flights.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunRequiresRunID(t *testing.T) {
	c, _, _, _ := newFixture(t, flightsCSV)

	result, err := c.Run(Options{})
	assert.ErrorIs(t, err, types.ErrRunIDEmpty)
	assert.Equal(t, types.StageFailed, result.Status)
}
