package runlog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	doc_kind      TEXT NOT NULL,
	input_dir     TEXT NOT NULL,
	output_dir    TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	status        TEXT NOT NULL,
	doc_count     INTEGER NOT NULL DEFAULT 0,
	failed_count  INTEGER NOT NULL DEFAULT 0,
	error         TEXT
);
CREATE TABLE IF NOT EXISTS run_documents (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	path        TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, path)
);`

// Run statuses.
const (
	StatusRunning = "RUNNING"
	StatusOK      = "OK"
	StatusNoData  = "NO_DATA"
	StatusFailed  = "FAILED"
)

// Run is one recorded batch execution.
type Run struct {
	ID          uuid.UUID
	DocKind     string
	InputDir    string
	OutputDir   string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Status      string
	DocCount    int
	FailedCount int
	Error       string
}

// Store persists run history in a local SQLite database so batch executions
// can be audited after the fact.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the run log database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("RUNLOG_ERROR", "open run log database", err)
	}
	// SQLite writes from one connection at a time; the pool must not race it.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("RUNLOG_ERROR", "initialize run log schema", err)
	}
	logger.Debug("runlog.open", "path", path)
	return &Store{db: db, log: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records a new run in RUNNING state.
func (s *Store) StartRun(ctx context.Context, id uuid.UUID, kind, inputDir, outputDir string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, doc_kind, input_dir, output_dir, started_at, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), kind, inputDir, outputDir, time.Now().UTC(), StatusRunning)
	if err != nil {
		s.log.Error("runlog.start_failed", "run_id", id, "error", err)
		return common.NewAppError("RUNLOG_ERROR", "record run start", err)
	}
	s.log.Info("runlog.run_started", "run_id", id, "kind", kind)
	return nil
}

// FinishRun closes a run with its final status and counters.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, status string, docCount, failedCount int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, doc_count = ?, failed_count = ?, error = ?
		 WHERE id = ?`,
		time.Now().UTC(), status, docCount, failedCount, msg, id.String())
	if err != nil {
		s.log.Error("runlog.finish_failed", "run_id", id, "error", err)
		return common.NewAppError("RUNLOG_ERROR", "record run finish", err)
	}
	s.log.Info("runlog.run_finished", "run_id", id, "status", status, "docs", docCount, "failed", failedCount)
	return nil
}

// RecordDocument records the outcome of one document within a run.
func (s *Store) RecordDocument(ctx context.Context, runID uuid.UUID, path, status string, docErr error, took time.Duration) error {
	msg := ""
	if docErr != nil {
		msg = docErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_documents (run_id, path, status, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, path) DO UPDATE SET status = excluded.status,
			error = excluded.error, duration_ms = excluded.duration_ms`,
		runID.String(), path, status, msg, took.Milliseconds())
	if err != nil {
		s.log.Error("runlog.document_failed", "run_id", runID, "path", path, "error", err)
		return common.NewAppError("RUNLOG_ERROR", "record document outcome", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_kind, input_dir, output_dir, started_at, finished_at,
			status, doc_count, failed_count, COALESCE(error, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.NewAppError("RUNLOG_ERROR", "list runs", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var id string
		var finished sql.NullTime
		if err := rows.Scan(&id, &r.DocKind, &r.InputDir, &r.OutputDir, &r.StartedAt,
			&finished, &r.Status, &r.DocCount, &r.FailedCount, &r.Error); err != nil {
			return nil, common.NewAppError("RUNLOG_ERROR", "scan run", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, common.NewAppError("RUNLOG_ERROR", "parse run id", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
