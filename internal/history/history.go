// Package history records every selected artifact in a SQLite ledger.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS training_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	model_name    TEXT NOT NULL,
	kind          TEXT NOT NULL,
	dataset       TEXT NOT NULL,
	loss          TEXT NOT NULL,
	penalty       TEXT NOT NULL,
	failures      INTEGER NOT NULL,
	tests         INTEGER NOT NULL,
	pass_rate     TEXT NOT NULL,
	artifact_path TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_training_runs_model ON training_runs(model_name, created_at);
`

type Entry struct {
	RunID        string
	ModelName    string
	Kind         string
	Dataset      string
	Loss         string
	Penalty      string
	Failures     int
	Tests        int
	PassRate     decimal.Decimal
	ArtifactPath string
	CreatedAt    time.Time
}

type Ledger struct {
	db *sql.DB
}

func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO training_runs
			(run_id, model_name, kind, dataset, loss, penalty, failures, tests, pass_rate, artifact_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.ModelName, e.Kind, e.Dataset, e.Loss, e.Penalty,
		e.Failures, e.Tests, e.PassRate.String(), e.ArtifactPath, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty modelName
// matches every model.
func (l *Ledger) Recent(ctx context.Context, modelName string, limit int) ([]Entry, error) {
	query := `
		SELECT run_id, model_name, kind, dataset, loss, penalty, failures, tests, pass_rate, artifact_path, created_at
		FROM training_runs
		WHERE (? = '' OR model_name = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, modelName, modelName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var passRate string
		if err := rows.Scan(&e.RunID, &e.ModelName, &e.Kind, &e.Dataset, &e.Loss, &e.Penalty,
			&e.Failures, &e.Tests, &passRate, &e.ArtifactPath, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.PassRate, err = decimal.NewFromString(passRate)
		if err != nil {
			return nil, fmt.Errorf("invalid pass rate %q: %w", passRate, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
