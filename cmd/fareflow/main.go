// Package main provides the fareflow CLI: idempotent ingestion, the data
// quality gate, and the analytics transform for the flight price
// pipeline, over a single SQLite data directory.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/fareflow/internal/lineage"
	"github.com/mesh-intelligence/fareflow/internal/sqlite"
	"github.com/mesh-intelligence/fareflow/pkg/types"
)

var (
	// Persistent flags.
	configDirFlag string
	dataDirFlag   string
	sourceFlag    string
	jsonFlag      bool

	// Per-command flags.
	runIDFlag       string
	forceReloadFlag bool
	lineageOutFlag  string

	// cfg and store are initialized on startup for data commands.
	cfg   types.Config
	store *sqlite.Store
)

// errQualityFailed marks a run whose final expectation suite did not
// pass; main maps it to exit code 2 so orchestrators can distinguish
// quality failures from operational errors.
var errQualityFailed = errors.New("data quality gate failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errQualityFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fareflow",
	Short: "Fareflow is a flight price data pipeline",
	Long: `Fareflow ingests flight price CSV exports into a SQLite staging store
with content-hash idempotency and schema drift handling, validates and
repairs the staged batch, and publishes an analytics table. Every stage
records lineage events scoped by workflow and run.`,
	PersistentPreRunE:  initStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeStore() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default: ~/.fareflow)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory holding fareflow.db")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "source CSV file")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "emit results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ledgerCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the fareflow data directory",
	Long:  `Create the data directory, the database file, and a default config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Store is already attached by PersistentPreRunE.
		fmt.Printf("fareflow initialized (data dir: %s)\n", cfg.DataDir)
		return nil
	},
}

// initStore loads config and attaches the SQLite store.
func initStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir := configDirFlag
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".fareflow")
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg, err = buildConfig(v)
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	store = sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}
	return nil
}

// closeStore detaches the store and releases the database.
func closeStore() error {
	if store != nil {
		return store.Detach()
	}
	return nil
}

// resolveRunID returns the --run-id flag or a fresh time-ordered id.
func resolveRunID() string {
	if runIDFlag != "" {
		return runIDFlag
	}
	return uuid.Must(uuid.NewV7()).String()
}

// runLog returns the lineage log for the configured workflow and run.
func runLog(runID string) *lineage.Log {
	return lineage.For(cfg.WorkflowID, runID)
}

// printResult emits a command result as JSON or a terse text line.
func printResult(v any, text string) error {
	if jsonFlag {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(text)
	return nil
}
