package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// stagingDataColumns are the payload columns of fare_staging, in table
// order. Dataset columns outside this list (unexpected new columns kept by
// schema adaptation) are not persisted; the staging table is the expected
// shape.
var stagingDataColumns = []string{
	types.ColAirline,
	types.ColSource,
	types.ColSourceName,
	types.ColDestination,
	types.ColDestinationName,
	types.ColDepartureDatetime,
	types.ColArrivalDatetime,
	types.ColDurationHrs,
	types.ColStopovers,
	types.ColAircraftType,
	types.ColClass,
	types.ColBookingSource,
	types.ColBaseFare,
	types.ColTaxSurcharge,
	types.ColTotalFare,
	types.ColSeasonality,
	types.ColDaysBeforeDeparture,
}

// stagingTagColumns carry the provenance tag on every staged row.
var stagingTagColumns = []string{"source_file", "content_hash", "ingestion_run_id", "ingested_at"}

// RowTag is the provenance stamped onto every row of one ingestion.
type RowTag struct {
	SourceFile  string
	ContentHash string
	RunID       string
	IngestedAt  time.Time
}

// Ingestion is one in-flight tagged load: the source-tag delete, every
// chunk insert, and the ledger append share a single transaction, so a
// cancelled or crashed run leaves either the previous batch or the new
// one, never a mix.
type Ingestion struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	tag  RowTag
	rows int
	done bool
}

// BeginIngestion starts a tagged load for one logical source. Rows
// previously tagged with the same source file are deleted inside the
// transaction; rows from other sources are untouched.
func (s *Store) BeginIngestion(tag RowTag) (*Ingestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin ingestion: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM fare_staging WHERE source_file = ?", tag.SourceFile); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("replace source %q: %w", tag.SourceFile, err)
	}

	cols := append(append([]string{}, stagingDataColumns...), stagingTagColumns...)
	cols = append(cols, "is_validated")
	insertSQL := fmt.Sprintf(
		"INSERT INTO fare_staging (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	)
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare staging insert: %w", err)
	}

	return &Ingestion{tx: tx, stmt: stmt, tag: tag}, nil
}

// AppendChunk inserts one bounded-size chunk of rows, each stamped with
// the ingestion tag and is_validated = false.
func (in *Ingestion) AppendChunk(ds *types.Dataset) error {
	if in.done {
		return fmt.Errorf("ingestion already finished")
	}

	// Map each staging column to its dataset position once per chunk.
	indices := make([]int, len(stagingDataColumns))
	for i, col := range stagingDataColumns {
		indices[i] = ds.ColumnIndex(col)
	}

	ingestedAt := in.tag.IngestedAt.Format(time.RFC3339Nano)
	for _, row := range ds.Rows {
		args := make([]any, 0, len(stagingDataColumns)+len(stagingTagColumns)+1)
		for _, idx := range indices {
			if idx < 0 {
				args = append(args, nil)
				continue
			}
			args = append(args, toDBValue(row[idx]))
		}
		args = append(args, in.tag.SourceFile, in.tag.ContentHash, in.tag.RunID, ingestedAt, int64(0))

		if _, err := in.stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert staging row: %w", err)
		}
		in.rows++
	}
	return nil
}

// Rows returns the number of rows appended so far.
func (in *Ingestion) Rows() int {
	return in.rows
}

// Commit appends the ledger entry and commits the transaction. A ledger
// insert failure does not abort the load: it is logged, the data still
// commits, and the warning is returned for the stage result so operators
// can alert on the duplicate-reprocessing risk.
func (in *Ingestion) Commit(entry types.LedgerEntry) (string, error) {
	if in.done {
		return "", fmt.Errorf("ingestion already finished")
	}
	in.done = true
	defer in.stmt.Close()

	var warning string
	if err := appendLedgerEntry(in.tx, entry); err != nil {
		warning = fmt.Sprintf("ledger append failed: %v", err)
		log.Printf("fareflow: %s (source %q, hash %s)", warning, entry.SourceName, entry.ContentHash)
	}

	if err := in.tx.Commit(); err != nil {
		return "", fmt.Errorf("commit ingestion: %w", err)
	}
	return warning, nil
}

// Rollback abandons the load, restoring the previously tagged rows.
// Safe to call after Commit.
func (in *Ingestion) Rollback() {
	if in.done {
		return
	}
	in.done = true
	in.stmt.Close()
	in.tx.Rollback()
}

// stagingReadColumns is everything ReadStaging returns: payload plus tag
// plus the validation annotation, so a republished batch keeps its
// provenance.
var stagingReadColumns = append(append([]string{}, stagingDataColumns...),
	"source_file", "content_hash", "ingestion_run_id", "ingested_at", "validation_errors")

// ReadStaging returns the staged batch as a dataset, including the tag
// columns. With onlyValidated set, only rows already marked validated are
// returned.
func (s *Store) ReadStaging(onlyValidated bool) (*types.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM fare_staging", strings.Join(stagingReadColumns, ", "))
	if onlyValidated {
		query += " WHERE is_validated = 1"
	}
	query += " ORDER BY row_id"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("read staging: %w", err)
	}
	defer rows.Close()

	ds := types.NewDataset(stagingReadColumns)
	for rows.Next() {
		values := make([]any, len(stagingReadColumns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan staging row: %w", err)
		}
		ds.AppendRow(values)
	}
	return ds, rows.Err()
}

// ReplaceValidated republishes the corrected batch: the staging table is
// rewritten from the dataset with every row marked validated. The dataset
// must carry the tag columns ReadStaging returned so provenance survives
// the rewrite.
func (s *Store) ReplaceValidated(ds *types.Dataset, validatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAttached(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin republish: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fare_staging"); err != nil {
		return fmt.Errorf("clear staging: %w", err)
	}

	cols := append(append([]string{}, stagingReadColumns...), "is_validated", "validated_at")
	insertSQL := fmt.Sprintf(
		"INSERT INTO fare_staging (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	)
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("prepare republish insert: %w", err)
	}
	defer stmt.Close()

	indices := make([]int, len(stagingReadColumns))
	for i, col := range stagingReadColumns {
		indices[i] = ds.ColumnIndex(col)
	}
	at := validatedAt.Format(time.RFC3339Nano)

	for _, row := range ds.Rows {
		args := make([]any, 0, len(cols))
		for _, idx := range indices {
			if idx < 0 {
				args = append(args, nil)
				continue
			}
			args = append(args, toDBValue(row[idx]))
		}
		args = append(args, int64(1), at)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert validated row: %w", err)
		}
	}

	return tx.Commit()
}

// CountBySource returns the number of staged rows tagged with the given
// source file.
func (s *Store) CountBySource(sourceFile string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM fare_staging WHERE source_file = ?", sourceFile).Scan(&count)
	return count, err
}

// CountByHash returns the number of staged rows tagged with the given
// content hash.
func (s *Store) CountByHash(contentHash string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM fare_staging WHERE content_hash = ?", contentHash).Scan(&count)
	return count, err
}

// CountStaging returns the total number of staged rows.
func (s *Store) CountStaging() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM fare_staging").Scan(&count)
	return count, err
}
