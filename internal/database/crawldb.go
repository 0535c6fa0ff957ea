package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for recording
// completed scans and querying past results.
//
// Design decision: We use a single database file for all scans rather
// than one file per target site. This keeps cross-scan queries (history
// listing, scan comparison) simple and makes backup a single-file copy.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "linkpatrol.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, so a single connection avoids
	// SQLITE_BUSY errors without any benefit lost.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Scans record one crawl run each
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_visited INTEGER NOT NULL,
		broken_count INTEGER NOT NULL,
		fatal TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_scans_base_url ON scans(base_url);
	CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at);

	-- Outcomes record one checked URL each, in dispatch order
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		referrer TEXT NOT NULL DEFAULT '',
		responded INTEGER NOT NULL,
		status_code INTEGER NOT NULL,
		broken INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_scan ON outcomes(scan_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_broken ON outcomes(scan_id, broken);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a completed crawl report and returns the scan ID.
// The scan row and all outcome rows are written in a single transaction
// so a half-saved scan never appears in the history.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`INSERT INTO scans (base_url, started_at, duration_ms, pages_visited, broken_count, fatal)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.BaseURL,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Duration.Milliseconds(),
		report.PagesVisited,
		report.BrokenCount(),
		report.Fatal,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (scan_id, url, referrer, responded, status_code, broken)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // read-only cleanup

	for _, o := range report.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			scanID, o.Target, o.Referrer, o.Responded, o.StatusCode, o.Broken(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	return scanID, nil
}

// ScanMetadata contains summary information about a stored scan.
// This is used for displaying scan history without loading the outcomes.
type ScanMetadata struct {
	// ID is the unique identifier of the scan in the database.
	ID int64

	// BaseURL is the crawl base URL the scan started from.
	BaseURL string

	// StartedAt is when the scan began.
	StartedAt time.Time

	// Duration is how long the scan took.
	Duration time.Duration

	// PagesVisited is the number of pages fetched and checked.
	PagesVisited int

	// BrokenCount is the number of broken links found.
	BrokenCount int

	// Fatal is the abort reason, empty for completed scans.
	Fatal string
}

// ListScans returns metadata for stored scans, newest first.
// If baseURL is non-empty, results are limited to that target.
// A limit of 0 means no limit.
func (cdb *CrawlDB) ListScans(ctx context.Context, baseURL string, limit int) ([]ScanMetadata, error) {
	query := `
	SELECT id, base_url, started_at, duration_ms, pages_visited, broken_count, fatal
	FROM scans
	`
	args := make([]any, 0, 2)

	if baseURL != "" {
		query += " WHERE base_url = ?"
		args = append(args, baseURL)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanMetadata
	for rows.Next() {
		var meta ScanMetadata
		var startedAt string
		var durationMS int64

		if err := rows.Scan(
			&meta.ID,
			&meta.BaseURL,
			&startedAt,
			&durationMS,
			&meta.PagesVisited,
			&meta.BrokenCount,
			&meta.Fatal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScan retrieves a stored scan's metadata by ID.
// Returns nil without error when the ID does not exist.
func (cdb *CrawlDB) GetScan(ctx context.Context, id int64) (*ScanMetadata, error) {
	query := `
	SELECT id, base_url, started_at, duration_ms, pages_visited, broken_count, fatal
	FROM scans
	WHERE id = ?
	`

	var meta ScanMetadata
	var startedAt string
	var durationMS int64

	err := cdb.db.QueryRowContext(ctx, query, id).Scan(
		&meta.ID,
		&meta.BaseURL,
		&startedAt,
		&durationMS,
		&meta.PagesVisited,
		&meta.BrokenCount,
		&meta.Fatal,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	meta.StartedAt = parseTimestamp(startedAt)
	meta.Duration = time.Duration(durationMS) * time.Millisecond

	return &meta, nil
}

// BrokenLinks returns the broken outcomes of a stored scan in the order
// they were recorded.
func (cdb *CrawlDB) BrokenLinks(ctx context.Context, scanID int64) ([]model.Outcome, error) {
	query := `
	SELECT url, referrer, responded, status_code
	FROM outcomes
	WHERE scan_id = ? AND broken = 1
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query broken links: %w", err)
	}
	defer rows.Close()

	var results []model.Outcome
	for rows.Next() {
		var o model.Outcome
		if err := rows.Scan(&o.Target, &o.Referrer, &o.Responded, &o.StatusCode); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		results = append(results, o)
	}

	return results, rows.Err()
}

// Outcomes returns every outcome of a stored scan in recorded order.
func (cdb *CrawlDB) Outcomes(ctx context.Context, scanID int64) ([]model.Outcome, error) {
	query := `
	SELECT url, referrer, responded, status_code
	FROM outcomes
	WHERE scan_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var results []model.Outcome
	for rows.Next() {
		var o model.Outcome
		if err := rows.Scan(&o.Target, &o.Referrer, &o.Responded, &o.StatusCode); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		results = append(results, o)
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

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
