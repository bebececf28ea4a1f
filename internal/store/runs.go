package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/facet/internal/catalog"
	"github.com/roach88/facet/internal/dataset"
)

// Run statuses.
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"      // finished, some records failed
	StatusInterrupted = "interrupted" // cancelled before all records ran
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string     `json:"id"`
	InDir      string     `json:"indir"`
	OutDir     string     `json:"outdir"`
	Catalog    []string   `json:"catalog"`
	Images     int        `json:"images"`
	Variants   int        `json:"variants"`
	Failed     int        `json:"failed"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, id, indir, outdir string, names []string, images int) error {
	catalogJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, indir, outdir, catalog, images, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, indir, outdir, string(catalogJSON), images, StatusRunning, s.timestamp())
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordVariant records one written file. Recording the same output path
// twice for a run is silently ignored.
func (s *Store) RecordVariant(ctx context.Context, runID string, rec dataset.ImageRecord, v catalog.Variant, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variants (run_id, source_path, severity, corruption, output_path)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, output_path) DO NOTHING
	`, runID, rec.SourcePath, v.Severity, v.Corruption, path)
	if err != nil {
		return fmt.Errorf("record variant: %w", err)
	}
	return nil
}

// FinishRun sets a run's final status and failed-record count.
func (s *Store) FinishRun(ctx context.Context, runID, status string, failed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, failed = ?, finished_at = ? WHERE id = ?
	`, status, failed, s.timestamp(), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// GetRun returns a single run with its variant count.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	rows, err := s.queryRuns(ctx, `WHERE r.id = ?`, runID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	return &rows[0], nil
}

// ListRuns returns all runs ordered by start time, then ID.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, "")
}

func (s *Store) queryRuns(ctx context.Context, where string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.indir, r.outdir, r.catalog, r.images, r.failed, r.status,
		       r.started_at, r.finished_at,
		       (SELECT COUNT(*) FROM variants v WHERE v.run_id = r.id)
		FROM runs r `+where+`
		ORDER BY r.started_at ASC, r.id ASC COLLATE BINARY
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			catalogJSON string
			startedAt   string
			finishedAt  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.InDir, &r.OutDir, &catalogJSON, &r.Images, &r.Failed,
			&r.Status, &startedAt, &finishedAt, &r.Variants); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(catalogJSON), &r.Catalog); err != nil {
			return nil, fmt.Errorf("decode run catalog: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("decode run start: %w", err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("decode run finish: %w", err)
			}
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// RunRecorder records written variants against one run. It satisfies the
// corruption grid's observer contract.
type RunRecorder struct {
	store *Store
	runID string
}

// Recorder returns a RunRecorder for runID.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// VariantWritten records the write in the ledger.
func (r *RunRecorder) VariantWritten(ctx context.Context, rec dataset.ImageRecord, v catalog.Variant, path string) error {
	return r.store.RecordVariant(ctx, r.runID, rec, v, path)
}
