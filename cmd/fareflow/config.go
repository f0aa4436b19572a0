// Config loading for the fareflow CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir     = "data_dir"
	cfgKeySource      = "source"
	cfgKeySourceName  = "source_name"
	cfgKeyWorkflowID  = "workflow_id"
	cfgKeyChunkSize   = "chunk_size"
	cfgKeySampleRows  = "sample_rows"
	cfgKeyPeakSeasons = "peak_seasons"

	defaultWorkflowID = "flight_price_pipeline"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# fareflow configuration

# Workflow identity used to scope lineage runs.
workflow_id: flight_price_pipeline

# Source CSV file (overridable by --source flag)
# source: /data/flights.csv

# Logical source name recorded in the ingestion ledger.
# Defaults to the base name of the source file.
# source_name: flights.csv

# Data directory holding fareflow.db (overridable by --data-dir flag)
# data_dir:

# Ingestion tuning.
chunk_size: 10000
sample_rows: 100

# Seasonality values flagged as peak travel seasons by the transform.
peak_seasons:
  - Eid
  - Hajj
  - Winter
`

// loadConfig reads config.yaml from the config directory, creating the
// directory and a default file on first run. A missing config.yaml is not
// an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyWorkflowID, defaultWorkflowID)
	v.SetDefault(cfgKeyChunkSize, 10000)
	v.SetDefault(cfgKeySampleRows, 100)
	v.SetDefault(cfgKeyPeakSeasons, types.DefaultPeakSeasons())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// buildConfig resolves the pipeline configuration from the loaded file
// and the command-line flags. Flags win over file values.
func buildConfig(v *viper.Viper) (types.Config, error) {
	config := types.DefaultConfig()

	config.DataDir = v.GetString(cfgKeyDataDir)
	if dataDirFlag != "" {
		config.DataDir = dataDirFlag
	}
	if config.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config, fmt.Errorf("resolve home directory: %w", err)
		}
		config.DataDir = filepath.Join(home, ".fareflow")
	}

	config.SourcePath = v.GetString(cfgKeySource)
	if sourceFlag != "" {
		config.SourcePath = sourceFlag
	}

	config.SourceName = v.GetString(cfgKeySourceName)
	if config.SourceName == "" && config.SourcePath != "" {
		config.SourceName = filepath.Base(config.SourcePath)
	}

	config.WorkflowID = v.GetString(cfgKeyWorkflowID)
	config.ChunkSize = v.GetInt(cfgKeyChunkSize)
	config.SampleRows = v.GetInt(cfgKeySampleRows)
	if seasons := v.GetStringSlice(cfgKeyPeakSeasons); len(seasons) > 0 {
		config.PeakSeasons = seasons
	}

	return config, config.Validate()
}
