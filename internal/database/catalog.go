package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ijcnam/internal/model"
)

// FileName is the catalog file name inside the database directory.
const FileName = "ijcnam.db"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Catalog provides SQLite-based storage for downloads, observations and runs.
type Catalog struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now is replaced in tests.
	now func() time.Time
}

// Options configures Catalog behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the catalog in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Catalog, error) {
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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &Catalog{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Catalog) Path() string {
	return c.dbPath
}

// createTables creates the database schema if it doesn't exist.
// Timestamps are stored as fixed-width RFC 3339 text in UTC.
func (c *Catalog) createTables() error {
	schema := `
	-- Spreadsheets fetched by the crawler, keyed by file name
	CREATE TABLE IF NOT EXISTS downloads (
		file_name TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		page TEXT,
		sha3_256 TEXT NOT NULL,
		size INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	);

	-- Tidy observations, one row per CSV line
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		label TEXT NOT NULL,
		sub_label TEXT,
		sex TEXT,
		year TEXT NOT NULL,
		ij_type TEXT NOT NULL,
		unit TEXT NOT NULL,
		value REAL
	);

	CREATE INDEX IF NOT EXISTS idx_obs_dataset ON observations(dataset);
	CREATE INDEX IF NOT EXISTS idx_obs_year ON observations(year);

	-- One row per CLI invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		error TEXT,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// DownloadRecord represents a stored download.
type DownloadRecord struct {
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	Page      string    `json:"page,omitempty"`
	SHA3      string    `json:"sha3_256"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RecordDownload inserts or updates a download.
// Uses UPSERT so that a re-fetched file replaces its previous digest.
func (c *Catalog) RecordDownload(ctx context.Context, d model.Download) error {
	query := `
	INSERT INTO downloads (file_name, url, page, sha3_256, size, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(file_name) DO UPDATE SET
		url = excluded.url,
		page = excluded.page,
		sha3_256 = excluded.sha3_256,
		size = excluded.size,
		fetched_at = excluded.fetched_at
	`

	_, err := c.db.ExecContext(ctx, query,
		d.FileName,
		d.URL,
		d.Page,
		d.SHA3,
		d.Size,
		formatTimestamp(c.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// GetDownload retrieves a download by file name. It returns nil, nil when
// the file was never recorded.
func (c *Catalog) GetDownload(ctx context.Context, fileName string) (*DownloadRecord, error) {
	query := `
	SELECT file_name, url, page, sha3_256, size, fetched_at
	FROM downloads
	WHERE file_name = ?
	`

	var rec DownloadRecord
	var page sql.NullString
	var fetchedAt string

	err := c.db.QueryRowContext(ctx, query, fileName).Scan(
		&rec.FileName,
		&rec.URL,
		&page,
		&rec.SHA3,
		&rec.Size,
		&fetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get download: %w", err)
	}

	rec.Page = page.String
	rec.FetchedAt = parseTimestamp(fetchedAt)
	return &rec, nil
}

// ListDownloads returns every recorded download ordered by file name.
func (c *Catalog) ListDownloads(ctx context.Context) ([]DownloadRecord, error) {
	query := `
	SELECT file_name, url, page, sha3_256, size, fetched_at
	FROM downloads
	ORDER BY file_name
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	results := make([]DownloadRecord, 0)
	for rows.Next() {
		var rec DownloadRecord
		var page sql.NullString
		var fetchedAt string

		if err := rows.Scan(&rec.FileName, &rec.URL, &page, &rec.SHA3, &rec.Size, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		rec.Page = page.String
		rec.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// StoreDataset replaces every observation of d.Name with the records of d,
// in one transaction. The first identifier is stored as label, the second
// as sub_label and the Sexe identifier, if any, as sex. Missing values are
// stored as NULL.
func (c *Catalog) StoreDataset(ctx context.Context, d *model.Dataset) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM observations WHERE dataset = ?`, d.Name); err != nil {
		return fmt.Errorf("failed to clear dataset %s: %w", d.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO observations (dataset, label, sub_label, sex, year, ij_type, unit, value)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	sexIdx := d.IdentifierIndex(model.ColumnSex)
	for _, r := range d.Records {
		var sex sql.NullString
		if sexIdx >= 0 {
			sex = sql.NullString{String: r.Identifier(sexIdx), Valid: true}
		}
		var value sql.NullFloat64
		if !r.Missing {
			value = sql.NullFloat64{Float64: r.Value, Valid: true}
		}

		if _, err = stmt.ExecContext(ctx,
			d.Name,
			r.Identifier(0),
			r.Identifier(1),
			sex,
			r.Year,
			r.Type,
			r.Unit,
			value,
		); err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset %s: %w", d.Name, err)
	}
	return nil
}

// CountObservations returns the number of stored observations of a dataset.
// An empty name counts every dataset.
func (c *Catalog) CountObservations(ctx context.Context, dataset string) (int, error) {
	query := `SELECT COUNT(*) FROM observations`
	args := make([]any, 0, 1)
	if dataset != "" {
		query += ` WHERE dataset = ?`
		args = append(args, dataset)
	}

	var count int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}

// Observation is one stored row of the observations table.
type Observation struct {
	Dataset  string
	Label    string
	SubLabel string
	Sex      string
	Year     string
	Type     string
	Unit     string
	Value    float64

	// Missing is true when value is NULL.
	Missing bool
}

// QueryObservations returns the observations of a dataset in insertion
// order, optionally restricted to one year.
func (c *Catalog) QueryObservations(ctx context.Context, dataset, year string) ([]Observation, error) {
	query := `
	SELECT dataset, label, sub_label, sex, year, ij_type, unit, value
	FROM observations
	WHERE dataset = ?
	`
	args := []any{dataset}
	if year != "" {
		query += " AND year = ?"
		args = append(args, year)
	}
	query += " ORDER BY id"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	results := make([]Observation, 0)
	for rows.Next() {
		var o Observation
		var subLabel, sex sql.NullString
		var value sql.NullFloat64

		if err := rows.Scan(&o.Dataset, &o.Label, &subLabel, &sex, &o.Year, &o.Type, &o.Unit, &value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.SubLabel = subLabel.String
		o.Sex = sex.String
		o.Value = value.Float64
		o.Missing = !value.Valid
		results = append(results, o)
	}

	return results, rows.Err()
}

// Run represents one recorded CLI invocation.
type Run struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`

	// SummaryJSON is the JSON encoding of the run's model.RunReport.
	SummaryJSON string `json:"-"`
}

// StartRun records a new running run and returns its identifier.
func (c *Catalog) StartRun(ctx context.Context, kind string, startedAt time.Time) (string, error) {
	id := uuid.NewString()

	_, err := c.db.ExecContext(ctx, `
	INSERT INTO runs (id, kind, started_at, status)
	VALUES (?, ?, ?, ?)
	`, id, kind, formatTimestamp(startedAt), StatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun stores the outcome of a run: its status, error and the JSON
// encoding of report.
func (c *Catalog) FinishRun(ctx context.Context, id string, report *model.RunReport) error {
	summary, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize run report: %w", err)
	}

	status := StatusSucceeded
	if !report.Succeeded() {
		status = StatusFailed
	}
	finishedAt := report.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = c.now()
	}

	result, err := c.db.ExecContext(ctx, `
	UPDATE runs SET finished_at = ?, status = ?, error = ?, summary_json = ?
	WHERE id = ?
	`, formatTimestamp(finishedAt), status, report.Error, string(summary), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to finish run: unknown run %s", id)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, kind, started_at, finished_at, status, error, summary_json
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	results := make([]Run, 0)
	for rows.Next() {
		var r Run
		var startedAt string
		var finishedAt, errMsg, summary sql.NullString

		if err := rows.Scan(&r.ID, &r.Kind, &startedAt, &finishedAt, &r.Status, &errMsg, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			r.FinishedAt = parseTimestamp(finishedAt.String)
		}
		r.Error = errMsg.String
		r.SummaryJSON = summary.String
		results = append(results, r)
	}

	return results, rows.Err()
}

// timestampLayout has a fixed width so that stored timestamps sort
// chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp formats t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,           // Written by formatTimestamp
	time.RFC3339Nano,          // RFC3339 with optional fraction
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
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
