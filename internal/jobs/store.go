package jobs

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"reelforge/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape; mismatched
// databases must be cleared rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the on-disk database was created by a
// different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists completed and in-flight job records for later inspection.
// A file lock on the data directory keeps concurrent processes from sharing
// one history database.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// OpenStore locks dataDir and opens (or initializes) the job history
// database inside it.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(filepath.Join(dataDir, ".reelforge.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire data directory lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "open store",
			"data directory is locked by another process", nil)
	}

	dbPath := filepath.Join(dataDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the data directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && dbErr == nil {
			dbErr = err
		}
	}
	return dbErr
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveJob inserts or replaces a job record.
func (s *Store) SaveJob(ctx context.Context, job Job) error {
	stages, err := json.Marshal(job.Stages)
	if err != nil {
		return fmt.Errorf("encode stages: %w", err)
	}
	warnings, err := json.Marshal(job.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	errorList, err := json.Marshal(job.Errors)
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, status, progress, stages, warnings, errors,
			artifact_path, artifact_kind, created_at, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			progress = excluded.progress,
			stages = excluded.stages,
			warnings = excluded.warnings,
			errors = excluded.errors,
			artifact_path = excluded.artifact_path,
			artifact_kind = excluded.artifact_kind,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at`,
		job.ID, job.Title, string(job.Status), job.Progress,
		string(stages), string(warnings), string(errorList),
		job.ArtifactPath, job.ArtifactKind,
		formatTime(job.CreatedAt), formatTimePtr(job.StartedAt), formatTimePtr(job.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob loads one job by identifier.
func (s *Store) GetJob(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, progress, stages, warnings, errors,
			artifact_path, artifact_kind, created_at, started_at, finished_at
		FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, services.Wrap(services.ErrNotFound, "jobs", "get", fmt.Sprintf("job %s", id), nil)
	}
	return job, err
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, progress, stages, warnings, errors,
			artifact_path, artifact_kind, created_at, started_at, finished_at
		FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

// ClearJobs deletes every job record and reports how many were removed.
func (s *Store) ClearJobs(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job                        Job
		status                     string
		stages, warnings, errorStr string
		createdAt                  string
		startedAt, finishedAt      sql.NullString
	)
	err := row.Scan(&job.ID, &job.Title, &status, &job.Progress,
		&stages, &warnings, &errorStr,
		&job.ArtifactPath, &job.ArtifactKind,
		&createdAt, &startedAt, &finishedAt)
	if err != nil {
		return Job{}, err
	}
	job.Status = Status(status)
	if err := json.Unmarshal([]byte(stages), &job.Stages); err != nil {
		return Job{}, fmt.Errorf("decode stages for %s: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(warnings), &job.Warnings); err != nil {
		return Job{}, fmt.Errorf("decode warnings for %s: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(errorStr), &job.Errors); err != nil {
		return Job{}, fmt.Errorf("decode errors for %s: %w", job.ID, err)
	}
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return Job{}, fmt.Errorf("decode created_at for %s: %w", job.ID, err)
	}
	if job.StartedAt, err = parseTimePtr(startedAt); err != nil {
		return Job{}, fmt.Errorf("decode started_at for %s: %w", job.ID, err)
	}
	if job.FinishedAt, err = parseTimePtr(finishedAt); err != nil {
		return Job{}, fmt.Errorf("decode finished_at for %s: %w", job.ID, err)
	}
	return job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func parseTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
