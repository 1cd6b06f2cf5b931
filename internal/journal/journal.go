// Package journal persists a local record of every sync run: when it ran,
// how many attempts it took, what it promoted, and how it ended. The journal
// is an audit trail only; sync never reads it to make decisions.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/inkeep/agents-sub000/internal/syncer"
)

// Journal is a sqlite-backed run log.
type Journal struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the journal database under stateDir.
func Open(stateDir string) (*Journal, error) {
	dbPath := filepath.Join(stateDir, "sync_journal.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// initSchema creates the database schema.
func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		attempts INTEGER NOT NULL,
		result TEXT NOT NULL,
		promoted_files_json TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_project ON sync_runs(project_id);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Record appends one run record.
func (j *Journal) Record(ctx context.Context, rec syncer.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	filesJSON, _ := json.Marshal(rec.PromotedFiles)

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sync_runs (project_id, started_at, finished_at, attempts,
			result, promoted_files_json, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ProjectID, rec.StartedAt, rec.FinishedAt, rec.Attempts,
		rec.Result, filesJSON, rec.Error)

	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// History retrieves the most recent runs for a project, newest first.
func (j *Journal) History(ctx context.Context, projectID string, limit int) ([]syncer.RunRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx, `
		SELECT project_id, started_at, finished_at, attempts, result,
			promoted_files_json, error
		FROM sync_runs
		WHERE project_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []syncer.RunRecord
	for rows.Next() {
		var rec syncer.RunRecord
		var filesJSON, errText sql.NullString
		if err := rows.Scan(&rec.ProjectID, &rec.StartedAt, &rec.FinishedAt,
			&rec.Attempts, &rec.Result, &filesJSON, &errText); err != nil {
			continue
		}
		if filesJSON.Valid {
			json.Unmarshal([]byte(filesJSON.String), &rec.PromotedFiles)
		}
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
