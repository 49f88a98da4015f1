package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tagres/internal/faults"
)

// ErrNotFound is returned when no run matches an identifier.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned when an identifier prefix matches several runs.
var ErrAmbiguous = errors.New("run identifier is ambiguous")

// Store persists tagging runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Recorder accumulates the entries of one run and persists them on Finish.
type Recorder struct {
	store   *Store
	run     Run
	entries []Entry
}

// Begin inserts a running run and returns a recorder for its entries.
func (s *Store) Begin(ctx context.Context, info RunInfo) (*Recorder, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		Status:    StatusRunning,
		OutputDir: info.OutputDir,
		IndexPath: info.IndexPath,
		Checksum:  info.Checksum,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status, output_dir, index_path, checksum)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		run.Status,
		run.OutputDir,
		run.IndexPath,
		run.Checksum,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Recorder{store: s, run: run}, nil
}

// ID returns the run identifier.
func (r *Recorder) ID() string {
	return r.run.ID
}

// Add buffers one tagged entry.
func (r *Recorder) Add(entry Entry) {
	r.entries = append(r.entries, entry)
}

// Finish stores the buffered entries and the final status in one transaction.
func (r *Recorder) Finish(ctx context.Context, outcome Outcome) (*Run, error) {
	run := r.run
	run.FinishedAt = r.store.now()
	run.Tagged = len(r.entries)
	run.Skipped = outcome.Skipped
	run.Status = StatusSucceeded
	if outcome.Err != nil {
		run.Status = StatusFailed
		run.ErrorKind = faults.Kind(outcome.Err)
		run.ErrorMessage = outcome.Err.Error()
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin finish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, seq, base_dir, original, tagged, fingerprint, bytes)
         VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()
	for i, entry := range r.entries {
		if _, err := stmt.ExecContext(ctx, run.ID, i, entry.BaseDir, entry.Original, entry.Tagged, entry.Fingerprint, entry.Bytes); err != nil {
			return nil, fmt.Errorf("insert entry %s: %w", entry.Original, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE runs
         SET finished_at = ?, status = ?, tagged_count = ?, skipped_count = ?,
             error_kind = ?, error_message = ?
         WHERE id = ?`,
		formatTime(run.FinishedAt),
		run.Status,
		run.Tagged,
		run.Skipped,
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		run.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	r.entries = nil
	return &run, nil
}

const runColumns = `id, started_at, finished_at, status, output_dir, index_path, checksum,
    tagged_count, skipped_count, error_kind, error_message`

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns a run and its entries. id may be a unique prefix.
func (s *Store) Get(ctx context.Context, id string) (*Run, []Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return nil, nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, err
	}
	rows.Close()

	switch len(matches) {
	case 0:
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}

	run := matches[0]
	entries, err := s.entries(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, entries, nil
}

func (s *Store) entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT base_dir, original, tagged, fingerprint, bytes FROM entries WHERE run_id = ? ORDER BY seq`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.BaseDir, &e.Original, &e.Tagged, &e.Fingerprint, &e.Bytes); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run          Run
		startedAt    string
		finishedAt   sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Status,
		&run.OutputDir,
		&run.IndexPath,
		&run.Checksum,
		&run.Tagged,
		&run.Skipped,
		&errorKind,
		&errorMessage,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

// timeLayout has fixed-width fractions so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
