package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/printops/preflightreport/internal/model"
)

// FileName is the name of the history database file inside the data directory.
const FileName = "history.db"

// ErrRunNotFound is returned when a run ID is not in the history.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores one row per generated report.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that a running batch does
	// not block a history listing.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the location of the database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	-- One row per generated report
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		job_name TEXT NOT NULL,
		document_name TEXT NOT NULL,
		profile TEXT NOT NULL,
		input_digest TEXT,
		output_path TEXT,
		warning_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		located_count INTEGER NOT NULL DEFAULT 0,
		generated_at TEXT NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document_name);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(input_digest);

	-- Issue messages of a run, in report order
	CREATE TABLE IF NOT EXISTS run_issues (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, kind, position)
	);
	`

	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// Run is one recorded report generation.
type Run struct {
	// ID is the unique run identifier.
	ID string `json:"id"`

	JobName      string `json:"job_name"`
	DocumentName string `json:"document_name"`
	Profile      string `json:"profile"`
	InputDigest  string `json:"input_digest,omitempty"`
	OutputPath   string `json:"output_path,omitempty"`

	WarningCount int `json:"warning_count"`
	ErrorCount   int `json:"error_count"`
	LocatedCount int `json:"located_count"`

	// GeneratedAt is the timestamp printed in the report footer.
	GeneratedAt time.Time `json:"generated_at"`

	// RecordedAt is when the run was written to the history.
	RecordedAt time.Time `json:"recorded_at"`

	// Warnings and Errors are only loaded by GetRun and LatestRuns.
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// generatedLayout sorts lexically in time order.
const generatedLayout = "2006-01-02T15:04:05.000000000Z"

// SaveRun records a run for the given summary and returns it with its new ID.
func (h *HistoryDB) SaveRun(ctx context.Context, s *model.Summary) (*Run, error) {
	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize summary: %w", err)
	}

	run := &Run{
		ID:           uuid.NewString(),
		JobName:      s.JobName,
		DocumentName: s.DocumentName,
		Profile:      s.Profile,
		InputDigest:  s.InputDigest,
		OutputPath:   s.OutputPath,
		WarningCount: s.WarningCount,
		ErrorCount:   s.ErrorCount,
		LocatedCount: s.LocatedCount,
		GeneratedAt:  s.GeneratedAt.UTC(),
		Warnings:     s.Warnings,
		Errors:       s.Errors,
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO runs (id, job_name, document_name, profile, input_digest, output_path,
		warning_count, error_count, located_count, generated_at, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		run.ID, run.JobName, run.DocumentName, run.Profile, run.InputDigest, run.OutputPath,
		run.WarningCount, run.ErrorCount, run.LocatedCount,
		run.GeneratedAt.Format(generatedLayout), string(summaryJSON),
	); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	issueQuery := `INSERT INTO run_issues (run_id, kind, position, message) VALUES (?, ?, ?, ?)`
	for _, kind := range model.Kinds {
		messages := s.Warnings
		if kind == model.KindError {
			messages = s.Errors
		}
		for i, msg := range messages {
			if _, err := tx.ExecContext(ctx, issueQuery, run.ID, kind.String(), i, msg); err != nil {
				return nil, fmt.Errorf("failed to save issue: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	if err := h.db.QueryRowContext(ctx, `SELECT recorded_at FROM runs WHERE id = ?`, run.ID).
		Scan(newTimestampScanner(&run.RecordedAt)); err != nil {
		return nil, fmt.Errorf("failed to read run timestamp: %w", err)
	}

	return run, nil
}

const runColumns = `id, job_name, document_name, profile, input_digest, output_path,
	warning_count, error_count, located_count, generated_at, recorded_at`

// ListRuns returns the most recent runs across all documents, newest first.
// A limit of zero or less returns every run. Issue messages are not loaded.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	runs, err := h.queryRuns(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListDocuments returns the distinct document names in the history.
func (h *HistoryDB) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT document_name FROM runs ORDER BY document_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []string
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// GetRun returns the run with the given ID including its issue messages.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*Run, error) {
	runs, err := h.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err := h.loadIssues(ctx, runs[0]); err != nil {
		return nil, err
	}
	return runs[0], nil
}

// LatestRuns returns up to n runs of a document, newest first, including
// their issue messages.
func (h *HistoryDB) LatestRuns(ctx context.Context, document string, n int) ([]*Run, error) {
	if n <= 0 {
		return []*Run{}, nil
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE document_name = ? ORDER BY seq DESC LIMIT ?`
	runs, err := h.queryRuns(ctx, query, document, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	for _, run := range runs {
		if err := h.loadIssues(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// HasDigest reports whether a run with the given input digest was recorded.
func (h *HistoryDB) HasDigest(ctx context.Context, digest string) (bool, error) {
	var count int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE input_digest = ?`, digest).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up digest: %w", err)
	}
	return count > 0, nil
}

func (h *HistoryDB) queryRuns(ctx context.Context, query string, args ...any) ([]*Run, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		var digest, output sql.NullString
		var generated string
		if err := rows.Scan(
			&run.ID, &run.JobName, &run.DocumentName, &run.Profile, &digest, &output,
			&run.WarningCount, &run.ErrorCount, &run.LocatedCount,
			&generated, newTimestampScanner(&run.RecordedAt),
		); err != nil {
			return nil, err
		}
		run.InputDigest = digest.String
		run.OutputPath = output.String
		run.GeneratedAt = parseTimestamp(generated)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (h *HistoryDB) loadIssues(ctx context.Context, run *Run) error {
	rows, err := h.db.QueryContext(ctx,
		`SELECT kind, message FROM run_issues WHERE run_id = ? ORDER BY kind, position`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, message string
		if err := rows.Scan(&kind, &message); err != nil {
			return fmt.Errorf("failed to scan issue: %w", err)
		}
		if kind == model.KindError.String() {
			run.Errors = append(run.Errors, message)
		} else {
			run.Warnings = append(run.Warnings, message)
		}
	}

	return rows.Err()
}

// timestampScanner reads a DATETIME column that the driver may return
// either as time.Time or as text.
type timestampScanner struct {
	dst *time.Time
}

func newTimestampScanner(dst *time.Time) *timestampScanner {
	return &timestampScanner{dst: dst}
}

// Scan implements sql.Scanner.
func (s *timestampScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
	case time.Time:
		*s.dst = v
	case string:
		*s.dst = parseTimestamp(v)
	case []byte:
		*s.dst = parseTimestamp(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	generatedLayout,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
