// Package sqlite persists review run history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the review.RunStore interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		pull_number INTEGER NOT NULL,
		base_sha TEXT NOT NULL,
		head_sha TEXT NOT NULL,
		files_reviewed INTEGER NOT NULL,
		total_issues INTEGER NOT NULL
	);

	-- Individual issues reported during a run
	CREATE TABLE IF NOT EXISTS issues (
		issue_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		severity TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		suggestion TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_issues_run ON issues(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository, pull_number);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores one completed run and its issues in a transaction.
func (s *Store) RecordRun(ctx context.Context, rec review.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (timestamp, repository, pull_number, base_sha, head_sha, files_reviewed, total_issues)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		time.Now().Unix(),
		rec.Repository,
		rec.PullNumber,
		rec.BaseSHA,
		rec.HeadSHA,
		rec.FilesReviewed,
		rec.TotalIssues,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	for _, fr := range rec.Results {
		for _, issue := range fr.Result.Issues {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO issues (run_id, file, line, severity, category, description, suggestion)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				runID,
				fr.Path,
				issue.Line,
				issue.Severity,
				issue.Category,
				issue.Issue,
				issue.Suggestion,
			)
			if err != nil {
				return fmt.Errorf("failed to store issue for %s: %w", fr.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary is one row from the run history.
type RunSummary struct {
	RunID         int64
	Timestamp     time.Time
	Repository    string
	PullNumber    int
	FilesReviewed int
	TotalIssues   int
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, timestamp, repository, pull_number, files_reviewed, total_issues
		FROM runs
		ORDER BY timestamp DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var ts int64
		if err := rows.Scan(&run.RunID, &ts, &run.Repository, &run.PullNumber, &run.FilesReviewed, &run.TotalIssues); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
