package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fareflow/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Publish validated rows to the analytics table",
	Long: `Rebuild the analytics table from the validated staging rows, deriving
the route and peak-season columns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := resolveRunID()

		transform := pipeline.NewTransform(store, runLog(runID), cfg)
		result, err := transform.Run(runID, false)
		if err != nil {
			return err
		}

		return printResult(result, fmt.Sprintf("published %d rows to analytics", result.RowCount))
	},
}

func init() {
	transformCmd.Flags().StringVar(&runIDFlag, "run-id", "", "run identifier (default: generated)")
}
