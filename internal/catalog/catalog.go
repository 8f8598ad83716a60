// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a local SQLite ledger of pipeline runs: when they
// ran, in which mode, what they counted, and the digests of what they wrote.
// The data tables themselves stay ephemeral; only run metadata is recorded.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/health-etl/internal/etl"
	"github.com/pdiddy/health-etl/pkg/types"
)

const dbFile = "catalog.db"

// DefaultStateDir is where the ledger lives unless configured otherwise.
const DefaultStateDir = ".health-etl"

// Run is one recorded pipeline execution.
type Run struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Mode              types.RunMode
	Status            string
	ActivityRows      int
	ObesityRows       int
	CuratedRows       int
	UnmatchedActivity int
	Artifacts         []etl.Artifact
}

// Store manages the run ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at stateDir/catalog.db, creating the
// schema if it does not exist.
func Open(cfg types.CatalogConfig) (*Store, error) {
	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = DefaultStateDir
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			activity_rows INTEGER NOT NULL,
			obesity_rows INTEGER NOT NULL,
			curated_rows INTEGER NOT NULL,
			unmatched_activity INTEGER NOT NULL,
			artifacts TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one run. Artifact metadata is stored as JSON in a single
// column; the ledger is an audit trail, not a query target.
func (s *Store) Record(ctx context.Context, run Run) error {
	artifactsJSON, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("marshaling artifacts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, mode, status,
			activity_rows, obesity_rows, curated_rows, unmatched_activity, artifacts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(run.Mode),
		run.Status,
		run.ActivityRows,
		run.ObesityRows,
		run.CuratedRows,
		run.UnmatchedActivity,
		string(artifactsJSON),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, mode, status,
			activity_rows, obesity_rows, curated_rows, unmatched_activity, artifacts
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                  Run
			started, finished  string
			mode, artifactsStr string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &mode, &r.Status,
			&r.ActivityRows, &r.ObesityRows, &r.CuratedRows, &r.UnmatchedActivity, &artifactsStr); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Mode = types.RunMode(mode)
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			r.FinishedAt = t
		}
		if artifactsStr != "" {
			if err := json.Unmarshal([]byte(artifactsStr), &r.Artifacts); err != nil {
				return nil, fmt.Errorf("parsing artifacts for run %s: %w", r.ID, err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
