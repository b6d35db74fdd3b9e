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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/grepscan/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "grepscan.db"

// FindingDB provides SQLite-based storage for scan reports and findings.
type FindingDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures FindingDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a FindingDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*FindingDB, error) {
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

	fdb := &FindingDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := fdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return fdb, nil
}

// Path returns the path of the database file.
func (fdb *FindingDB) Path() string {
	return fdb.dbPath
}

// Close closes the database connection.
func (fdb *FindingDB) Close() error {
	return fdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (fdb *FindingDB) createTables() error {
	schema := `
	-- Scans store complete scan reports as JSON
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		date_scanned TEXT NOT NULL,
		inputs TEXT,
		documents_scanned INTEGER DEFAULT 0,
		timed_out INTEGER DEFAULT 0,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);

	-- Findings are denormalized for queries across scans
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		detector TEXT,
		severity INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		unique_key TEXT NOT NULL,
		highlights TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_scan ON findings(scan_id);
	CREATE INDEX IF NOT EXISTS idx_findings_category ON findings(category);
	CREATE INDEX IF NOT EXISTS idx_findings_url ON findings(url);
	`

	_, err := fdb.db.ExecContext(context.Background(), schema)
	return err
}

// riskSummary builds the per-severity counts stored with a scan.
func riskSummary(report *model.Report) map[string]int {
	return map[string]int{
		"critical": report.CriticalCount,
		"high":     report.HighCount,
		"medium":   report.MediumCount,
		"low":      report.LowCount,
		"info":     report.InfoCount,
	}
}

// SaveReport stores a report and its findings in one transaction.
// On success the report's ScanID is set to the new scan's ID.
func (fdb *FindingDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	inputsJSON, err := json.Marshal(report.Inputs)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize inputs: %w", err)
	}
	riskJSON, _ := json.Marshal(riskSummary(report)) //nolint:errcheck,errchkjson // map[string]int always marshals

	tx, err := fdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO scans (date_scanned, inputs, documents_scanned, timed_out, report_json, risk_summary)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.DateScanned.UTC().Format(time.RFC3339Nano),
		string(inputsJSON),
		report.DocumentsScanned,
		report.TimedOut,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO findings (scan_id, category, detector, severity, title, url, unique_key, highlights)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range report.Findings {
		highlights, err := json.Marshal(f.Highlights)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize highlights: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			scanID,
			f.Category,
			f.Detector,
			int(f.Severity),
			f.Title,
			f.URL,
			f.UniqueKey(),
			string(highlights),
		); err != nil {
			return 0, fmt.Errorf("failed to save finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	report.ScanID = scanID
	return scanID, nil
}

// GetReport retrieves a scan report by its database ID.
// It returns nil without error when no scan has that ID.
func (fdb *FindingDB) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	var reportJSON string
	err := fdb.db.QueryRowContext(ctx, `SELECT report_json FROM scans WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ScanID = id

	return &report, nil
}

// LatestReport retrieves the most recently stored report, or nil if none exist.
func (fdb *FindingDB) LatestReport(ctx context.Context) (*model.Report, error) {
	var id int64
	err := fdb.db.QueryRowContext(ctx, `SELECT id FROM scans ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan: %w", err)
	}
	return fdb.GetReport(ctx, id)
}

// ScanMetadata contains summary information about a stored scan.
// This is used for displaying scan history without loading the full report.
type ScanMetadata struct {
	// ID is the unique identifier of the scan in the database.
	ID int64

	// DateScanned is when the scan was started.
	DateScanned time.Time

	// Inputs lists the sources of the scan.
	Inputs []string

	// DocumentsScanned is the number of documents inspected.
	DocumentsScanned int

	// TimedOut reports whether the scan stopped early.
	TimedOut bool

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int
}

// Total returns the number of findings across all severities.
func (m ScanMetadata) Total() int {
	total := 0
	for _, n := range m.RiskSummary {
		total += n
	}
	return total
}

// ListScans returns metadata for stored scans, newest first.
// A limit of zero or less returns every scan.
func (fdb *FindingDB) ListScans(ctx context.Context, limit int) ([]ScanMetadata, error) {
	query := `
	SELECT id, date_scanned, inputs, documents_scanned, timed_out, risk_summary
	FROM scans
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := fdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var results []ScanMetadata
	for rows.Next() {
		var meta ScanMetadata
		var dateScanned string
		var inputsJSON, riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &dateScanned, &inputsJSON, &meta.DocumentsScanned, &meta.TimedOut, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.DateScanned = parseTimestamp(dateScanned)

		if inputsJSON.Valid && inputsJSON.String != "" {
			if err := json.Unmarshal([]byte(inputsJSON.String), &meta.Inputs); err != nil {
				meta.Inputs = nil
			}
		}

		meta.RiskSummary = make(map[string]int)
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// FindingRecord is a stored finding together with the scan it belongs to.
type FindingRecord struct {
	ScanID     int64
	Category   string
	Detector   string
	Severity   model.Severity
	Title      string
	URL        string
	Key        string
	Highlights []string
}

// FindingsByCategory returns every stored finding of a category, newest scan first.
func (fdb *FindingDB) FindingsByCategory(ctx context.Context, category string) ([]FindingRecord, error) {
	rows, err := fdb.db.QueryContext(ctx, `
	SELECT scan_id, category, detector, severity, title, url, unique_key, highlights
	FROM findings
	WHERE category = ?
	ORDER BY scan_id DESC, id ASC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var results []FindingRecord
	for rows.Next() {
		var rec FindingRecord
		var severity int
		var detector, highlights sql.NullString

		if err := rows.Scan(&rec.ScanID, &rec.Category, &detector, &severity, &rec.Title, &rec.URL, &rec.Key, &highlights); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		rec.Detector = detector.String
		rec.Severity = model.Severity(severity)
		if highlights.Valid && highlights.String != "" && highlights.String != "null" {
			if err := json.Unmarshal([]byte(highlights.String), &rec.Highlights); err != nil {
				return nil, fmt.Errorf("failed to parse highlights: %w", err)
			}
		}

		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
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
