package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the ingestion history of the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := store.LedgerEntries(cfg.SourceName)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return printResult(entries, fmt.Sprintf("no ingestions recorded for %s", cfg.SourceName))
		}

		if jsonFlag {
			return printResult(entries, "")
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  %6d rows  run %s\n",
				e.IngestedAt.Format("2006-01-02 15:04:05"), e.ContentHash, e.RowCount, e.RunID)
		}
		return nil
	},
}
