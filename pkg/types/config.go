package types

// Config holds everything a pipeline component needs, constructed once by
// the caller and passed into each constructor. There is no process-wide
// configuration cache; two pipelines with different Configs can coexist.
type Config struct {
	// DataDir is the directory holding the sqlite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SourcePath is the delimited source file to ingest.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// SourceName is the logical source identity used for row tagging and
	// ledger lookups. Defaults to the base name of SourcePath.
	SourceName string `json:"source_name,omitempty" yaml:"source_name,omitempty"`

	// WorkflowID scopes lineage logs together with the run id.
	WorkflowID string `json:"workflow_id" yaml:"workflow_id"`

	// ChunkSize bounds how many rows are read and inserted at a time.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// SampleRows is the size of the structural sample checked for schema
	// drift before any row is written.
	SampleRows int `json:"sample_rows" yaml:"sample_rows"`

	// ExpectedSchema is the canonical schema ingested batches are checked
	// and adapted against.
	ExpectedSchema Schema `json:"-" yaml:"-"`

	// RequiredColumns must exist in every batch; removing one is a
	// breaking change.
	RequiredColumns []string `json:"required_columns" yaml:"required_columns"`

	// ColumnMapping renames raw source header captions to canonical
	// column names.
	ColumnMapping map[string]string `json:"-" yaml:"-"`

	// PeakSeasons are the seasonality values flagged as peak during
	// transformation.
	PeakSeasons []string `json:"peak_seasons" yaml:"peak_seasons"`
}

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.ChunkSize <= 0 {
		return ErrChunkSizeInvalid
	}
	if c.SampleRows <= 0 {
		return ErrSampleRowsInvalid
	}
	if len(c.ExpectedSchema) == 0 {
		return ErrSchemaEmpty
	}
	for _, col := range c.RequiredColumns {
		if _, ok := c.ExpectedSchema[col]; !ok {
			return ErrRequiredNotExpected
		}
	}
	return nil
}
