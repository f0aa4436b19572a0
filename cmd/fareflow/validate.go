package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fareflow/internal/pipeline"
	"github.com/mesh-intelligence/fareflow/internal/quality"
)

var suiteFlag string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and repair the staged batch",
	Long: `Run the expectation suite over the staged rows, apply the deterministic
repair pass, and republish the corrected batch marked as validated.
Exits 2 when the repaired batch still fails the suite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := resolveRunID()

		gate := pipeline.NewGate(store, runLog(runID), cfg)
		if suiteFlag != "" {
			suite, err := quality.LoadSuite(suiteFlag)
			if err != nil {
				return err
			}
			gate.WithSuite(suite)
		}
		result, report, err := gate.Run(runID, false)
		if err != nil {
			return err
		}

		text := fmt.Sprintf(
			"validated %d rows: %d/%d expectations passed, %d values filled, %d negatives corrected, %d totals recalculated",
			result.RowCount,
			report.Final.Succeeded, report.Final.Evaluated,
			report.Repairs.MissingFilled, report.Repairs.NegativesCorrected,
			report.Repairs.FareRecalculations,
		)
		if err := printResult(report, text); err != nil {
			return err
		}

		if !report.Final.Success {
			return fmt.Errorf("%w: %d of %d expectations failed",
				errQualityFailed, report.Final.Failed, report.Final.Evaluated)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&runIDFlag, "run-id", "", "run identifier (default: generated)")
	validateCmd.Flags().StringVar(&suiteFlag, "suite", "", "YAML expectation suite replacing the built-in one")
}
