package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// analyticsColumns are the payload columns of fare_analytics, in table
// order: the staging payload plus the derived transform columns.
var analyticsColumns = append(append([]string{}, stagingDataColumns...),
	types.ColIsPeakSeason, types.ColRoute)

// ReplaceAnalytics rewrites the analytics table from the transformed
// dataset. The analytics table is derived state, fully rebuilt each run.
func (s *Store) ReplaceAnalytics(ds *types.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAttached(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin analytics rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fare_analytics"); err != nil {
		return fmt.Errorf("clear analytics: %w", err)
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO fare_analytics (%s) VALUES (%s)",
		strings.Join(analyticsColumns, ", "),
		placeholders(len(analyticsColumns)),
	)
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("prepare analytics insert: %w", err)
	}
	defer stmt.Close()

	indices := make([]int, len(analyticsColumns))
	for i, col := range analyticsColumns {
		indices[i] = ds.ColumnIndex(col)
	}

	for _, row := range ds.Rows {
		args := make([]any, 0, len(analyticsColumns))
		for _, idx := range indices {
			if idx < 0 {
				args = append(args, nil)
				continue
			}
			args = append(args, toDBValue(row[idx]))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert analytics row: %w", err)
		}
	}

	return tx.Commit()
}

// ReadAnalytics returns the analytics table as a dataset.
func (s *Store) ReadAnalytics() (*types.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM fare_analytics ORDER BY row_id", strings.Join(analyticsColumns, ", "))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("read analytics: %w", err)
	}
	defer rows.Close()

	ds := types.NewDataset(analyticsColumns)
	for rows.Next() {
		values := make([]any, len(analyticsColumns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan analytics row: %w", err)
		}
		ds.AppendRow(values)
	}
	return ds, rows.Err()
}

// CountAnalytics returns the total number of analytics rows.
func (s *Store) CountAnalytics() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM fare_analytics").Scan(&count)
	return count, err
}
