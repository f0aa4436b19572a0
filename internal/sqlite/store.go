// Package sqlite implements the staging, ledger, and analytics store
// collaborators of the pipeline on a single SQLite database file.
//
// The store follows an Attach/Detach lifecycle. Unlike scratch state, the
// database persists across runs: the ingestion ledger and the tagged
// staging rows are the only state shared between runs, and idempotency
// decisions depend on them surviving process restarts.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/fareflow/pkg/types"
)

// dbFileName is the database file created inside Config.DataDir.
const dbFileName = "fareflow.db"

// Store provides staging, ledger, and analytics operations over one
// SQLite database.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates a detached store; call Attach with a Config before use.
func NewStore() *Store {
	return &Store{}
}

// Attach validates the configuration, creates the data directory if
// needed, opens the database, and applies the schema. Existing data is
// preserved. Returns ErrAlreadyAttached on a second Attach.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(config.DataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("apply indices: %w", err)
		}
	}

	s.db = db
	s.config = config
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent; after Detach all operations
// return ErrStoreDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}

// checkAttached returns ErrStoreDetached when the store is not usable.
// The caller must hold s.mu (read or write).
func (s *Store) checkAttached() error {
	if !s.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// toDBValue converts a dataset cell into a driver-friendly value.
// Timestamps become RFC3339Nano strings and booleans become integers, the
// forms the schema declares.
func toDBValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "?"
	}
	return strings.Join(ps, ", ")
}
