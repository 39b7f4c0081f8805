package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cdrscan/cdrscan/internal/model"
)

// AnalysisDB provides SQLite-based storage for analysis history.
// It stores ingested evidence files, per-subject contact links, and complete
// analysis reports.
//
// Design decision: We use a single database file per case directory rather
// than one per subject. Cross-subject queries (shared contacts, case-wide
// history) are the whole point of keeping history, and a single file keeps
// backup and hand-over simple.
type AnalysisDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AnalysisDB behavior.
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

// Open opens or creates an AnalysisDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*AnalysisDB, error) {
	dbPath := filepath.Join(dbDir, "cdrscan.db")

	// Check if we should create the database or require it to exist
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

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY during batch runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AnalysisDB{
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
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AnalysisDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AnalysisDB) createTables() error {
	schema := `
	-- Ingested files record every evidence file read, with its digest,
	-- so a report can always be matched to the exact bytes it came from.
	CREATE TABLE IF NOT EXISTS ingested_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		path TEXT NOT NULL,
		role TEXT NOT NULL,
		digest TEXT NOT NULL,
		rows INTEGER DEFAULT 0,
		ingested_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(subject, path)
	);

	CREATE INDEX IF NOT EXISTS idx_files_subject ON ingested_files(subject);
	CREATE INDEX IF NOT EXISTS idx_files_digest ON ingested_files(digest);

	-- Contact links mirror each subject's correspondent summaries.
	-- These rows are what cross-case queries mine for shared contacts.
	CREATE TABLE IF NOT EXISTS contact_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		correspondent TEXT NOT NULL,
		calls INTEGER DEFAULT 0,
		texts INTEGER DEFAULT 0,
		incoming INTEGER DEFAULT 0,
		outgoing INTEGER DEFAULT 0,
		total_duration INTEGER DEFAULT 0,
		first_seen DATETIME,
		last_seen DATETIME,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(subject, correspondent)
	);

	CREATE INDEX IF NOT EXISTS idx_links_subject ON contact_links(subject);
	CREATE INDEX IF NOT EXISTS idx_links_correspondent ON contact_links(correspondent);

	-- Analysis reports store complete results as JSON
	CREATE TABLE IF NOT EXISTS analysis_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		report_id TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		severity_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_subject ON analysis_reports(subject);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON analysis_reports(created_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete analysis report as JSON.
func (adb *AnalysisDB) SaveReport(ctx context.Context, report *model.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Severity summary kept alongside the blob so history listings don't
	// have to parse every report.
	severitySummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	if report.SimpleReport != nil {
		severitySummary["critical"] = report.SimpleReport.CriticalCount
		severitySummary["high"] = report.SimpleReport.HighCount
		severitySummary["medium"] = report.SimpleReport.MediumCount
		severitySummary["low"] = report.SimpleReport.LowCount
		severitySummary["info"] = report.SimpleReport.InfoCount
	}
	severityJSON, _ := json.Marshal(severitySummary) //nolint:errcheck,errchkjson // severitySummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO analysis_reports (subject, report_id, report_json, severity_summary)
	VALUES (?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		report.Subject,
		report.ReportID,
		string(reportJSON),
		string(severityJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis report: %w", err)
	}

	return nil
}

// LatestReport retrieves the most recent analysis report for a subject.
// It returns nil without error when the subject has no stored reports.
func (adb *AnalysisDB) LatestReport(ctx context.Context, subject string) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analysis_reports
	WHERE subject = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, subject).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ReportByID retrieves an analysis report by its report UUID.
// It returns nil without error when no report has that id.
func (adb *AnalysisDB) ReportByID(ctx context.Context, reportID string) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analysis_reports
	WHERE report_id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, reportID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// History retrieves all analysis reports for a subject, newest first.
func (adb *AnalysisDB) History(ctx context.Context, subject string) ([]*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analysis_reports
	WHERE subject = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var reports []*model.AnalysisReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.AnalysisReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying history without loading full reports.
type ReportMetadata struct {
	// ID is the row id of the report in the database.
	ID int64

	// ReportID is the report UUID.
	ReportID string

	// Subject is the analyzed subject identifier.
	Subject string

	// CreatedAt is when the report was stored.
	CreatedAt time.Time

	// SeveritySummary contains counts of findings by severity level.
	SeveritySummary map[string]int
}

// HistoryMetadata retrieves report metadata for a subject, newest first.
// This is more efficient than History when only metadata is needed.
func (adb *AnalysisDB) HistoryMetadata(ctx context.Context, subject string) ([]ReportMetadata, error) {
	query := `
	SELECT id, report_id, subject, created_at, severity_summary
	FROM analysis_reports
	WHERE subject = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var createdAt string
		var severityJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.ReportID, &meta.Subject, &createdAt, &severityJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.CreatedAt = parseTimestamp(createdAt)

		if severityJSON.Valid && severityJSON.String != "" {
			if err := json.Unmarshal([]byte(severityJSON.String), &meta.SeveritySummary); err != nil {
				meta.SeveritySummary = make(map[string]int)
			}
		} else {
			meta.SeveritySummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListSubjects returns all subjects with stored reports, sorted.
func (adb *AnalysisDB) ListSubjects(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT subject FROM analysis_reports
	ORDER BY subject
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	return subjects, rows.Err()
}

// RecordIngestedFile inserts or updates the digest record of an evidence
// file. Re-ingesting the same path updates the digest and timestamp.
func (adb *AnalysisDB) RecordIngestedFile(ctx context.Context, subject string, file model.SourceFile) error {
	query := `
	INSERT INTO ingested_files (subject, path, role, digest, rows, ingested_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(subject, path) DO UPDATE SET
		role = excluded.role,
		digest = excluded.digest,
		rows = excluded.rows,
		ingested_at = excluded.ingested_at
	`

	_, err := adb.db.ExecContext(ctx, query,
		subject,
		file.Path,
		file.Role,
		file.Digest,
		file.Rows,
		file.IngestedAt.UTC().Format(timestampFormats[0]),
	)
	if err != nil {
		return fmt.Errorf("failed to record ingested file: %w", err)
	}

	return nil
}

// IngestedFile is a stored evidence file record.
type IngestedFile struct {
	// Path is the file path as it was opened.
	Path string

	// Role says what kind of file this was (records, antennas, mapping).
	Role string

	// Digest is the SHA3-256 digest of the file contents, hex encoded.
	Digest string

	// Rows is the number of data rows in the file.
	Rows int

	// IngestedAt is when the file was last read.
	IngestedAt time.Time
}

// IngestedFiles returns the evidence files recorded for a subject.
func (adb *AnalysisDB) IngestedFiles(ctx context.Context, subject string) ([]IngestedFile, error) {
	query := `
	SELECT path, role, digest, rows, ingested_at
	FROM ingested_files
	WHERE subject = ?
	ORDER BY path
	`

	rows, err := adb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingested files: %w", err)
	}
	defer rows.Close()

	var files []IngestedFile
	for rows.Next() {
		var file IngestedFile
		var ingestedAt string

		if err := rows.Scan(&file.Path, &file.Role, &file.Digest, &file.Rows, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingested file: %w", err)
		}

		file.IngestedAt = parseTimestamp(ingestedAt)
		files = append(files, file)
	}

	return files, rows.Err()
}

// UpsertContactLinks replaces the stored contact summaries of a subject.
// Each analysis run refreshes the rows so cross-case queries always see the
// latest counts.
func (adb *AnalysisDB) UpsertContactLinks(ctx context.Context, subject string, contacts []model.ContactSummary) error {
	query := `
	INSERT INTO contact_links (subject, correspondent, calls, texts, incoming, outgoing, total_duration, first_seen, last_seen, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(subject, correspondent) DO UPDATE SET
		calls = excluded.calls,
		texts = excluded.texts,
		incoming = excluded.incoming,
		outgoing = excluded.outgoing,
		total_duration = excluded.total_duration,
		first_seen = excluded.first_seen,
		last_seen = excluded.last_seen,
		updated_at = CURRENT_TIMESTAMP
	`

	for _, contact := range contacts {
		_, err := adb.db.ExecContext(ctx, query,
			subject,
			contact.CorrespondentID,
			contact.Calls,
			contact.Texts,
			contact.Incoming,
			contact.Outgoing,
			contact.TotalDuration,
			contact.FirstSeen.UTC().Format(timestampFormats[0]),
			contact.LastSeen.UTC().Format(timestampFormats[0]),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert contact link: %w", err)
		}
	}

	return nil
}

// SharedContactHit is a correspondent a subject shares with another stored
// subject.
type SharedContactHit struct {
	// CorrespondentID identifies the shared correspondent.
	CorrespondentID string

	// OtherSubject is the other stored subject in contact with them.
	OtherSubject string

	// OtherInteractions is the other subject's interaction count with the
	// correspondent.
	OtherInteractions int
}

// SharedContactHits finds correspondents of the subject that also appear in
// the contact links of other stored subjects. This surfaces cross-case
// connections the current analysis run cannot see.
func (adb *AnalysisDB) SharedContactHits(ctx context.Context, subject string) ([]SharedContactHit, error) {
	query := `
	SELECT a.correspondent, b.subject, b.calls + b.texts
	FROM contact_links a
	JOIN contact_links b ON a.correspondent = b.correspondent AND b.subject != a.subject
	WHERE a.subject = ?
	ORDER BY a.correspondent, b.subject
	`

	rows, err := adb.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared contacts: %w", err)
	}
	defer rows.Close()

	var hits []SharedContactHit
	for rows.Next() {
		var hit SharedContactHit
		if err := rows.Scan(&hit.CorrespondentID, &hit.OtherSubject, &hit.OtherInteractions); err != nil {
			return nil, fmt.Errorf("failed to scan shared contact: %w", err)
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
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
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
