package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

const ledgerColumns = "entry_id, source_name, content_hash, row_count, run_id, ingested_at"

// appendLedgerEntry inserts one ledger row inside the ingestion
// transaction. The ledger is append-only; entries are never updated or
// deleted.
func appendLedgerEntry(tx *sql.Tx, entry types.LedgerEntry) error {
	_, err := tx.Exec(
		"INSERT INTO ingestion_ledger ("+ledgerColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID,
		entry.SourceName,
		entry.ContentHash,
		entry.RowCount,
		entry.RunID,
		entry.IngestedAt.Format(time.RFC3339Nano),
	)
	return err
}

// LatestEntry returns the most recent ledger entry for a logical source,
// or nil when the source has never been ingested.
func (s *Store) LatestEntry(sourceName string) (*types.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	// rowid is monotonic in this append-only table and is the authority
	// on recency; RFC3339Nano strings do not sort lexicographically
	// across whole and fractional seconds.
	row := s.db.QueryRow(
		"SELECT "+ledgerColumns+" FROM ingestion_ledger WHERE source_name = ? ORDER BY rowid DESC LIMIT 1",
		sourceName,
	)
	entry, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest ledger entry for %q: %w", sourceName, err)
	}
	return entry, nil
}

// LedgerEntries returns the full history for a logical source, most
// recent first.
func (s *Store) LedgerEntries(sourceName string) ([]types.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT "+ledgerColumns+" FROM ingestion_ledger WHERE source_name = ? ORDER BY rowid DESC",
		sourceName,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger entries for %q: %w", sourceName, err)
	}
	defer rows.Close()

	var entries []types.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// CountLedger returns the total number of ledger entries.
func (s *Store) CountLedger() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ingestion_ledger").Scan(&count)
	return count, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row rowScanner) (*types.LedgerEntry, error) {
	var entry types.LedgerEntry
	var ingestedAt string
	if err := row.Scan(&entry.ID, &entry.SourceName, &entry.ContentHash, &entry.RowCount, &entry.RunID, &ingestedAt); err != nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, ingestedAt)
	if err != nil {
		return nil, fmt.Errorf("parse ingested_at %q: %w", ingestedAt, err)
	}
	entry.IngestedAt = at
	return &entry, nil
}
