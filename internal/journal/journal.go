package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/appstrap/appstrap/internal/model"
)

// dbFileName is the journal database file inside the journal directory.
const dbFileName = "appstrap.db"

// Journal provides SQLite-based storage for installation runs. It manages
// connection pooling and provides the queries the history command needs.
//
// Design decision: We use a single database file for all instances rather
// than one file per instance. Runs of different instances are queried
// together ("what did I install this week"), and a single file simplifies
// backup and cleanup.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: a crashed
	// install must not corrupt earlier journal entries.
	EnableWAL bool
}

// DefaultOptions returns the default journal options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned; the history command uses this so it never creates an empty
// journal just to report that there is no history.
func Open(dir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string format: mode=rw prevents
	// creating new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// createTables creates the journal schema if it doesn't exist.
func (j *Journal) createTables() error {
	schema := `
	-- Runs store one row per installer invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instance TEXT NOT NULL,
		mode TEXT NOT NULL,
		environment TEXT NOT NULL,
		started DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished DATETIME,
		outcome TEXT,
		error TEXT,
		admin_email TEXT,
		admin_password_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_instance ON runs(instance);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- Run steps store one row per executed step
	CREATE TABLE IF NOT EXISTS run_steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		UNIQUE(run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_run ON run_steps(run_id);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// BeginRun records the start of a run and returns its journal id.
func (j *Journal) BeginRun(ctx context.Context, instance string, mode model.Mode, environment string) (int64, error) {
	query := `
	INSERT INTO runs (instance, mode, environment)
	VALUES (?, ?, ?)
	`

	result, err := j.db.ExecContext(ctx, query, instance, mode.String(), environment)
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}

	return result.LastInsertId()
}

// RecordStep appends one executed step to a run. seq is the step's 1-based
// position in the pipeline. Re-recording the same position updates the row,
// so a retried write cannot duplicate history.
func (j *Journal) RecordStep(ctx context.Context, runID int64, seq int, step model.StepResult) error {
	query := `
	INSERT INTO run_steps (run_id, seq, name, outcome, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, seq) DO UPDATE SET
		name = excluded.name,
		outcome = excluded.outcome,
		duration_ms = excluded.duration_ms,
		error = excluded.error
	`

	_, err := j.db.ExecContext(ctx, query,
		runID,
		seq,
		step.Name,
		step.StatusLabel,
		step.Duration.Milliseconds(),
		step.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record step: %w", err)
	}

	return nil
}

// FinishRun stamps the end of a run with its outcome. The admin password,
// when the report carries one, is stored only as a bcrypt hash; the
// cleartext never reaches the database file.
func (j *Journal) FinishRun(ctx context.Context, runID int64, report *model.InstallReport) error {
	var hash string
	if report.AdminPassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(report.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		hash = string(h)
	}

	query := `
	UPDATE runs
	SET finished = CURRENT_TIMESTAMP,
		outcome = ?,
		error = ?,
		admin_email = ?,
		admin_password_hash = ?
	WHERE id = ?
	`

	_, err := j.db.ExecContext(ctx, query,
		report.StatusLabel,
		report.ErrorMessage,
		report.AdminEmail,
		hash,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// VerifyAdminPassword checks a password against the hash stored for a run.
// Runs without a stored hash report false, never an error.
func (j *Journal) VerifyAdminPassword(ctx context.Context, runID int64, password string) (bool, error) {
	query := `
	SELECT admin_password_hash FROM runs
	WHERE id = ?
	`

	var hash sql.NullString
	err := j.db.QueryRowContext(ctx, query, runID).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load admin password hash: %w", err)
	}
	if !hash.Valid || hash.String == "" {
		return false, nil
	}

	return bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(password)) == nil, nil
}

// RunRecord is one journal entry, without its steps.
type RunRecord struct {
	// ID is the unique identifier of the run in the journal.
	ID int64

	// Instance is the installation the run provisioned.
	Instance string

	// Mode is the flow label that handled the run.
	Mode string

	// Environment is the deployment target of the run.
	Environment string

	// Started is when the run began.
	Started time.Time

	// Finished is when the run ended. Zero while the run is open, which
	// after the fact means the installer crashed or was killed.
	Finished time.Time

	// Outcome is the final run status label. Empty while the run is open.
	Outcome string

	// Error is the failure message of a failed run.
	Error string

	// AdminEmail is the administrator account the run configured.
	AdminEmail string
}

// ListRuns returns journal entries, newest first. A non-empty instance
// filters to that installation; a positive limit caps the result.
func (j *Journal) ListRuns(ctx context.Context, instance string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, instance, mode, environment, started, finished, outcome, error, admin_email
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if instance != "" {
		query += " AND instance = ?"
		args = append(args, instance)
	}

	// started has second resolution; the id breaks ties between runs
	// begun within the same second.
	query += " ORDER BY started DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetRun retrieves one journal entry by id. Returns nil when the id is
// unknown.
func (j *Journal) GetRun(ctx context.Context, runID int64) (*RunRecord, error) {
	query := `
	SELECT id, instance, mode, environment, started, finished, outcome, error, admin_email
	FROM runs
	WHERE id = ?
	`

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRun(rows)
	if err != nil {
		return nil, err
	}

	return &rec, rows.Err()
}

// scanRun reads one RunRecord from the current row.
func scanRun(rows *sql.Rows) (RunRecord, error) {
	var rec RunRecord
	var started string
	var finished, outcome, errMsg, adminEmail sql.NullString

	err := rows.Scan(
		&rec.ID,
		&rec.Instance,
		&rec.Mode,
		&rec.Environment,
		&started,
		&finished,
		&outcome,
		&errMsg,
		&adminEmail,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to scan run: %w", err)
	}

	// Parse timestamps (SQLite may return different formats depending on
	// version/configuration)
	rec.Started = parseTimestamp(started)
	if finished.Valid && finished.String != "" {
		rec.Finished = parseTimestamp(finished.String)
	}
	rec.Outcome = outcome.String
	rec.Error = errMsg.String
	rec.AdminEmail = adminEmail.String

	return rec, nil
}

// StepRecord is one executed step of a journal entry.
type StepRecord struct {
	// RunID is the journal id of the run the step belongs to.
	RunID int64

	// Seq is the step's 1-based position in the pipeline.
	Seq int

	// Name is the step name as declared in the pipeline.
	Name string

	// Outcome is the step status label.
	Outcome string

	// Duration is the step's wall time, at millisecond resolution.
	Duration time.Duration

	// Error is the failure message of a failed step.
	Error string
}

// RunSteps returns the executed steps of a run in execution order.
func (j *Journal) RunSteps(ctx context.Context, runID int64) ([]StepRecord, error) {
	query := `
	SELECT run_id, seq, name, outcome, duration_ms, error
	FROM run_steps
	WHERE run_id = ?
	ORDER BY seq
	`

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run steps: %w", err)
	}
	defer rows.Close()

	var results []StepRecord
	for rows.Next() {
		var rec StepRecord
		var durationMS int64
		var errMsg sql.NullString

		err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Name,
			&rec.Outcome,
			&durationMS,
			&errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.Error = errMsg.String
		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
