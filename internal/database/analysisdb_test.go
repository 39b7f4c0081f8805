package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*AnalysisDB, func()) {
	t.Helper()

	tmpDir := t.TempDir()

	db, err := Open(tmpDir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// testReport builds a report with a deterministic set of findings.
func testReport(subject string) *model.AnalysisReport {
	report := model.NewAnalysisReport(subject)
	report.AddFinding(model.NewFinding(
		"communication_gap",
		"Communication gap",
		"The line was silent for 9.0 days.",
		"2024-03-04 10:00:00 to 2024-03-13 10:00:00",
		subject,
	))
	report.AddFinding(model.NewFinding(
		"one_sided_relationship",
		"One-sided relationship",
		"All interactions with this correspondent are outgoing.",
		"c900",
		subject,
	))
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		dbDir := filepath.Join(tmpDir, "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		// Check that database file exists
		dbPath := filepath.Join(dbDir, "cdrscan.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		dbDir := filepath.Join(tmpDir, "nonexistent-db")

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbDir, opts)
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}

		// Verify error message is informative
		expectedMsg := "database not found"
		if !contains(err.Error(), expectedMsg) {
			t.Errorf("expected error to contain %q, got %q", expectedMsg, err.Error())
		}

		// Verify database directory was NOT created
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		dbDir := filepath.Join(tmpDir, "existing-db")

		// First create the database
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}

		// Insert a test report to verify data persists
		ctx := context.Background()
		report := testReport("alice")
		if err := db1.SaveReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		db1.Close()

		// Now open with CreateIfNotExists=false
		openOpts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}
		db2, err := Open(dbDir, openOpts)
		if err != nil {
			t.Fatalf("failed to open existing database with CreateIfNotExists=false: %v", err)
		}
		defer db2.Close()

		// Verify data persists
		retrieved, err := db2.LatestReport(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if retrieved == nil {
			t.Error("expected report to exist in database")
		}
	})

	t.Run("CreateIfNotExists=false with directory but no db file", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		dbDir := filepath.Join(tmpDir, "empty-dir")

		// Create the directory but not the database file
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbDir, opts)
		if err == nil {
			t.Fatal("expected error when directory exists but database file does not")
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

// TestSaveAndLatestReport tests report persistence and retrieval.
func TestSaveAndLatestReport(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("save and retrieve latest report", func(t *testing.T) {
		report := testReport("alice")

		if err := db.SaveReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		retrieved, err := db.LatestReport(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected report, got nil")
		}

		if retrieved.ReportID != report.ReportID {
			t.Errorf("expected report ID %q, got %q", report.ReportID, retrieved.ReportID)
		}
		if retrieved.Subject != "alice" {
			t.Errorf("expected subject alice, got %q", retrieved.Subject)
		}
		if retrieved.SimpleReport == nil {
			t.Fatal("expected simple report to survive the round trip")
		}
		if len(retrieved.SimpleReport.Findings) != 2 {
			t.Errorf("expected 2 findings, got %d", len(retrieved.SimpleReport.Findings))
		}
	})

	t.Run("returns nil for unknown subject", func(t *testing.T) {
		retrieved, err := db.LatestReport(ctx, "nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if retrieved != nil {
			t.Errorf("expected nil report, got %+v", retrieved)
		}
	})

	t.Run("latest report wins over older ones", func(t *testing.T) {
		first := testReport("bob")
		second := testReport("bob")

		if err := db.SaveReport(ctx, first); err != nil {
			t.Fatalf("failed to save first report: %v", err)
		}
		if err := db.SaveReport(ctx, second); err != nil {
			t.Fatalf("failed to save second report: %v", err)
		}

		retrieved, err := db.LatestReport(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected report, got nil")
		}
		if retrieved.ReportID != second.ReportID {
			t.Errorf("expected latest report %q, got %q", second.ReportID, retrieved.ReportID)
		}
	})
}

// TestReportByID tests retrieval by report UUID.
func TestReportByID(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	report := testReport("alice")
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	t.Run("finds report by UUID", func(t *testing.T) {
		retrieved, err := db.ReportByID(ctx, report.ReportID)
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected report, got nil")
		}
		if retrieved.ReportID != report.ReportID {
			t.Errorf("expected report ID %q, got %q", report.ReportID, retrieved.ReportID)
		}
	})

	t.Run("returns nil for unknown UUID", func(t *testing.T) {
		retrieved, err := db.ReportByID(ctx, "00000000-0000-0000-0000-000000000000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if retrieved != nil {
			t.Errorf("expected nil report, got %+v", retrieved)
		}
	})
}

// TestHistory tests per-subject report history.
func TestHistory(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := db.SaveReport(ctx, testReport("alice")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	if err := db.SaveReport(ctx, testReport("bob")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	reports, err := db.History(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	for _, report := range reports {
		if report.Subject != "alice" {
			t.Errorf("expected subject alice, got %q", report.Subject)
		}
	}
}

// TestHistoryMetadata tests the lightweight history listing.
func TestHistoryMetadata(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	report := model.NewAnalysisReport("alice")
	report.AddFinding(model.NewFinding(
		"direct_subject_contact",
		"Direct contact between case subjects",
		"alice and bob interacted 4 times.",
		"bob",
		"alice",
	))
	report.AddFinding(model.NewFinding(
		"communication_gap",
		"Communication gap",
		"The line was silent for 8.0 days.",
		"2024-03-04 10:00:00 to 2024-03-12 10:00:00",
		"alice",
	))
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	metas, err := db.HistoryMetadata(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to get history metadata: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("expected 1 metadata entry, got %d", len(metas))
	}

	meta := metas[0]
	if meta.ID == 0 {
		t.Error("expected non-zero row id")
	}
	if meta.ReportID != report.ReportID {
		t.Errorf("expected report ID %q, got %q", report.ReportID, meta.ReportID)
	}
	if meta.Subject != "alice" {
		t.Errorf("expected subject alice, got %q", meta.Subject)
	}
	if meta.CreatedAt.IsZero() {
		t.Error("expected non-zero creation time")
	}
	if meta.SeveritySummary["critical"] != 1 {
		t.Errorf("expected 1 critical finding, got %d", meta.SeveritySummary["critical"])
	}
	if meta.SeveritySummary["medium"] != 1 {
		t.Errorf("expected 1 medium finding, got %d", meta.SeveritySummary["medium"])
	}
}

// TestListSubjects tests subject enumeration.
func TestListSubjects(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("empty database lists no subjects", func(t *testing.T) {
		subjects, err := db.ListSubjects(ctx)
		if err != nil {
			t.Fatalf("failed to list subjects: %v", err)
		}
		if len(subjects) != 0 {
			t.Errorf("expected no subjects, got %v", subjects)
		}
	})

	t.Run("lists distinct subjects sorted", func(t *testing.T) {
		for _, subject := range []string{"charlie", "alice", "bob", "alice"} {
			if err := db.SaveReport(ctx, testReport(subject)); err != nil {
				t.Fatalf("failed to save report: %v", err)
			}
		}

		subjects, err := db.ListSubjects(ctx)
		if err != nil {
			t.Fatalf("failed to list subjects: %v", err)
		}

		expected := []string{"alice", "bob", "charlie"}
		if len(subjects) != len(expected) {
			t.Fatalf("expected %d subjects, got %d", len(expected), len(subjects))
		}
		for i, subject := range expected {
			if subjects[i] != subject {
				t.Errorf("expected subject %q at index %d, got %q", subject, i, subjects[i])
			}
		}
	})
}

// TestRecordIngestedFile tests evidence file tracking.
func TestRecordIngestedFile(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ingestedAt := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	t.Run("record and list evidence file", func(t *testing.T) {
		file := model.SourceFile{
			Path:       "data/alice.csv",
			Role:       "records",
			Rows:       120,
			Digest:     "abc123",
			IngestedAt: ingestedAt,
		}

		if err := db.RecordIngestedFile(ctx, "alice", file); err != nil {
			t.Fatalf("failed to record ingested file: %v", err)
		}

		files, err := db.IngestedFiles(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to list ingested files: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected 1 file, got %d", len(files))
		}

		got := files[0]
		if got.Path != file.Path {
			t.Errorf("expected path %q, got %q", file.Path, got.Path)
		}
		if got.Role != "records" {
			t.Errorf("expected role records, got %q", got.Role)
		}
		if got.Digest != "abc123" {
			t.Errorf("expected digest abc123, got %q", got.Digest)
		}
		if got.Rows != 120 {
			t.Errorf("expected 120 rows, got %d", got.Rows)
		}
		if !got.IngestedAt.Equal(ingestedAt) {
			t.Errorf("expected ingested at %v, got %v", ingestedAt, got.IngestedAt)
		}
	})

	t.Run("re-ingesting the same path updates the digest", func(t *testing.T) {
		file := model.SourceFile{
			Path:       "data/alice.csv",
			Role:       "records",
			Rows:       150,
			Digest:     "def456",
			IngestedAt: ingestedAt.Add(24 * time.Hour),
		}

		if err := db.RecordIngestedFile(ctx, "alice", file); err != nil {
			t.Fatalf("failed to record ingested file: %v", err)
		}

		files, err := db.IngestedFiles(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to list ingested files: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected upsert to keep 1 file, got %d", len(files))
		}
		if files[0].Digest != "def456" {
			t.Errorf("expected updated digest def456, got %q", files[0].Digest)
		}
		if files[0].Rows != 150 {
			t.Errorf("expected updated row count 150, got %d", files[0].Rows)
		}
	})
}

// TestContactLinks tests contact link storage and shared contact queries.
func TestContactLinks(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	firstSeen := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)

	aliceContacts := []model.ContactSummary{
		{
			CorrespondentID: "c100",
			Calls:           10,
			Texts:           5,
			Incoming:        8,
			Outgoing:        7,
			TotalDuration:   1800,
			FirstSeen:       firstSeen,
			LastSeen:        lastSeen,
		},
		{
			CorrespondentID: "c200",
			Calls:           2,
			Texts:           0,
			Incoming:        0,
			Outgoing:        2,
			TotalDuration:   90,
			FirstSeen:       firstSeen,
			LastSeen:        lastSeen,
		},
	}

	if err := db.UpsertContactLinks(ctx, "alice", aliceContacts); err != nil {
		t.Fatalf("failed to upsert contact links: %v", err)
	}

	t.Run("no hits when no other subject shares a contact", func(t *testing.T) {
		hits, err := db.SharedContactHits(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to query shared contacts: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("expected no shared contacts, got %v", hits)
		}
	})

	t.Run("finds correspondent shared with another subject", func(t *testing.T) {
		bobContacts := []model.ContactSummary{
			{
				CorrespondentID: "c100",
				Calls:           3,
				Texts:           4,
				Incoming:        5,
				Outgoing:        2,
				TotalDuration:   600,
				FirstSeen:       firstSeen,
				LastSeen:        lastSeen,
			},
		}
		if err := db.UpsertContactLinks(ctx, "bob", bobContacts); err != nil {
			t.Fatalf("failed to upsert contact links: %v", err)
		}

		hits, err := db.SharedContactHits(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to query shared contacts: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("expected 1 shared contact, got %d", len(hits))
		}

		hit := hits[0]
		if hit.CorrespondentID != "c100" {
			t.Errorf("expected correspondent c100, got %q", hit.CorrespondentID)
		}
		if hit.OtherSubject != "bob" {
			t.Errorf("expected other subject bob, got %q", hit.OtherSubject)
		}
		if hit.OtherInteractions != 7 {
			t.Errorf("expected 7 interactions, got %d", hit.OtherInteractions)
		}
	})

	t.Run("upsert replaces counts for an existing link", func(t *testing.T) {
		updated := []model.ContactSummary{
			{
				CorrespondentID: "c100",
				Calls:           12,
				Texts:           6,
				Incoming:        9,
				Outgoing:        9,
				TotalDuration:   2400,
				FirstSeen:       firstSeen,
				LastSeen:        lastSeen.Add(48 * time.Hour),
			},
		}
		if err := db.UpsertContactLinks(ctx, "bob", updated); err != nil {
			t.Fatalf("failed to upsert contact links: %v", err)
		}

		hits, err := db.SharedContactHits(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to query shared contacts: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("expected 1 shared contact, got %d", len(hits))
		}
		if hits[0].OtherInteractions != 18 {
			t.Errorf("expected 18 interactions after upsert, got %d", hits[0].OtherInteractions)
		}
	})
}

// TestParseTimestamp tests timestamp parsing across SQLite formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default format",
			input: "2024-03-04 10:30:00",
			want:  time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso 8601 with Z",
			input: "2024-03-04T10:30:00Z",
			want:  time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparseable input returns zero time",
			input: "not a timestamp",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// contains checks if s contains substr.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsAt(s, substr))
}

// containsAt checks if s contains substr at any position.
func containsAt(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
