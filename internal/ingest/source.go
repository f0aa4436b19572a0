// Package ingest implements the idempotent ingestion stage: a hashable
// CSV source, sampling-based schema observation, and the controller that
// decides between skipping, loading, or aborting a run.
package ingest

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// hashBufSize is the read buffer for content hashing.
const hashBufSize = 4096

// FileSource is a CSV file on the local filesystem. Header captions are
// translated to canonical column names through the configured mapping;
// captions outside the mapping are normalized to snake_case so drifted
// files still produce usable column names.
type FileSource struct {
	path    string
	mapping map[string]string
}

// NewFileSource returns a source for the given path. The mapping may be
// nil, in which case all captions are normalized.
func NewFileSource(path string, mapping map[string]string) *FileSource {
	return &FileSource{path: path, mapping: mapping}
}

// Path returns the source file path.
func (f *FileSource) Path() string {
	return f.path
}

// Hash streams the file through MD5 and returns the hex digest. A missing
// or unreadable file reports ErrSourceUnavailable.
func (f *FileSource) Hash() (string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrSourceUnavailable, f.path)
	}
	defer file.Close()

	h := md5.New()
	buf := make([]byte, hashBufSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", f.path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sample reads the header and up to n data rows and infers the observed
// schema. Column kinds come from value inspection; a column whose sampled
// values never parse beyond text stays text.
func (f *FileSource) Sample(n int) (types.Schema, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrSourceUnavailable, f.path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", f.path, err)
	}
	columns := f.canonicalHeader(header)

	kinds := make([]types.ColumnKind, len(columns))
	for i := range kinds {
		kinds[i] = types.KindUnknown
	}

	for read := 0; read < n; read++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", f.path, err)
		}
		for i, raw := range record {
			if i >= len(kinds) || strings.TrimSpace(raw) == "" {
				continue
			}
			kinds[i] = mergeKinds(kinds[i], observeKind(raw))
		}
	}

	schema := make(types.Schema, len(columns))
	for i, col := range columns {
		if kinds[i] == types.KindUnknown {
			kinds[i] = types.KindText
		}
		schema[col] = kinds[i]
	}
	return schema, nil
}

// ForEachChunk reads the whole file in chunks of at most size rows,
// parsing values to the kinds of the observed schema, and calls fn for
// each chunk. Iteration stops on the first error from fn.
func (f *FileSource) ForEachChunk(observed types.Schema, size int, fn func(*types.Dataset) error) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: %s", types.ErrSourceUnavailable, f.path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", f.path, err)
	}
	columns := f.canonicalHeader(header)

	chunk := types.NewDataset(columns)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", f.path, err)
		}

		row := make([]any, len(columns))
		for i := range columns {
			if i >= len(record) {
				row[i] = nil
				continue
			}
			row[i] = parseValue(record[i], observed[columns[i]])
		}
		chunk.AppendRow(row)

		if chunk.RowCount() >= size {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = types.NewDataset(columns)
		}
	}

	if chunk.RowCount() > 0 {
		return fn(chunk)
	}
	return nil
}

// canonicalHeader maps raw captions through the configured mapping,
// normalizing anything the mapping does not cover.
func (f *FileSource) canonicalHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, caption := range header {
		caption = strings.TrimSpace(caption)
		if canonical, ok := f.mapping[caption]; ok {
			columns[i] = canonical
			continue
		}
		columns[i] = normalizeCaption(caption)
	}
	return columns
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeCaption lowercases a caption and collapses runs of
// non-alphanumeric characters into single underscores.
func normalizeCaption(caption string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(caption), "_")
	return strings.Trim(s, "_")
}

// timestampLayouts are the accepted datetime forms, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// observeKind classifies one non-empty raw value.
func observeKind(raw string) types.ColumnKind {
	raw = strings.TrimSpace(raw)
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return types.KindInteger
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return types.KindFloat
	}
	switch strings.ToLower(raw) {
	case "true", "false":
		return types.KindBoolean
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return types.KindTimestamp
		}
	}
	return types.KindText
}

// mergeKinds combines the kind observed so far with a new observation.
// Integer and float merge to float; any other disagreement is text.
func mergeKinds(sofar, next types.ColumnKind) types.ColumnKind {
	if sofar == types.KindUnknown || sofar == next {
		return next
	}
	numeric := func(k types.ColumnKind) bool {
		return k == types.KindInteger || k == types.KindFloat
	}
	if numeric(sofar) && numeric(next) {
		return types.KindFloat
	}
	return types.KindText
}

// parseValue converts one raw field to the dataset representation of the
// given kind. Empty fields are null; values that fail to parse are kept
// as text for the quality gate to flag.
func parseValue(raw string, kind types.ColumnKind) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	switch kind {
	case types.KindInteger:
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	case types.KindFloat:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case types.KindBoolean:
		switch strings.ToLower(raw) {
		case "true":
			return true
		case "false":
			return false
		}
	case types.KindTimestamp:
		for _, layout := range timestampLayouts {
			if v, err := time.Parse(layout, raw); err == nil {
				return v
			}
		}
	}
	return raw
}
