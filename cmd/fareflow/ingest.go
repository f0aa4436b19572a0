package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fareflow/internal/ingest"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the source CSV into staging",
	Long: `Hash the source file, consult the ingestion ledger, and load the file
into the staging table unless its content is unchanged since the last
run. Schema drift is detected on a sample and compatible drift is
adapted in flight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := resolveRunID()

		controller := ingest.NewController(store, runLog(runID), cfg)
		result, err := controller.Run(ingest.Options{RunID: runID, ForceReload: forceReloadFlag})
		if err != nil {
			return err
		}

		return printResult(result, describeIngest(result))
	},
}

func init() {
	ingestCmd.Flags().StringVar(&runIDFlag, "run-id", "", "run identifier (default: generated)")
	ingestCmd.Flags().BoolVar(&forceReloadFlag, "force-reload", false, "reload even when the content hash is unchanged")
}

func describeIngest(result types.StageResult) string {
	switch result.Status {
	case types.StageSkipped:
		return fmt.Sprintf("skipped: %s (hash %s)", result.Reason, result.ContentHash)
	case types.StageProceeded:
		s := fmt.Sprintf("ingested %d rows (hash %s)", result.RowCount, result.ContentHash)
		if result.SchemaReport != nil && result.SchemaReport.HasChanges {
			s += fmt.Sprintf(", schema drift: %d new, %d removed, %d type changes",
				len(result.SchemaReport.NewColumns),
				len(result.SchemaReport.RemovedColumns),
				len(result.SchemaReport.TypeChanges))
		}
		if result.LedgerWarning != "" {
			s += fmt.Sprintf(" [warning: %s]", result.LedgerWarning)
		}
		return s
	default:
		return fmt.Sprintf("failed: %s", result.Reason)
	}
}
