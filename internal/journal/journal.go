package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/maxkimambo/subflow/internal/dag"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/logger"
)

// Journal is an append-only SQLite log of workflow events. It is an audit
// trail only; nothing in it is ever loaded back into a run.
type Journal struct {
	db *sql.DB
}

// RunSummary describes one run recorded in the journal.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Events    int
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			task_id TEXT,
			status TEXT,
			output TEXT,
			description TEXT,
			agent TEXT,
			attempt INTEGER,
			error TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON events (run_id);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
		}
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one event.
func (j *Journal) Record(e events.Event) error {
	query := `INSERT INTO events (run_id, name, task_id, status, output, description, agent, attempt, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := j.db.Exec(query,
		e.RunID,
		string(e.Name),
		string(e.TaskID),
		e.Status.String(),
		e.Output,
		e.Description,
		e.Agent,
		e.Attempt,
		e.Error,
		e.Time.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Attach records every event emitted on bus. Write failures are logged and
// never interrupt the run.
func (j *Journal) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(e events.Event) {
		if err := j.Record(e); err != nil {
			logger.Op.WithFields(map[string]interface{}{
				"run_id": e.RunID,
				"event":  string(e.Name),
			}).Warnf("Failed to journal event: %v", err)
		}
	})
}

// Events returns the events of one run in the order they were recorded.
func (j *Journal) Events(runID string) ([]events.Event, error) {
	query := `SELECT name, task_id, status, output, description, agent, attempt, error, recorded_at
		FROM events WHERE run_id = ? ORDER BY id`
	rows, err := j.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			name, taskID, status, output, description, agent, errText, recordedAt string
			attempt                                                               int
		)
		if err := rows.Scan(&name, &taskID, &status, &output, &description, &agent, &attempt, &errText, &recordedAt); err != nil {
			return nil, err
		}

		e := events.Event{
			Name:        events.Name(name),
			RunID:       runID,
			TaskID:      dag.ID(taskID),
			Output:      output,
			Description: description,
			Agent:       agent,
			Attempt:     attempt,
			Error:       errText,
		}
		if e.Status, err = dag.ParseStatus(status); err != nil {
			return nil, err
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs lists recorded runs, most recent first.
func (j *Journal) Runs(limit int) ([]RunSummary, error) {
	query := `SELECT run_id, MIN(recorded_at), COUNT(*) FROM events
		GROUP BY run_id ORDER BY MIN(id) DESC LIMIT ?`
	rows, err := j.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			summary   RunSummary
			startedAt string
		)
		if err := rows.Scan(&summary.RunID, &startedAt, &summary.Events); err != nil {
			return nil, err
		}
		if summary.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}
