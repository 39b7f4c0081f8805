package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cdrscan/cdrscan/internal/database"
	"github.com/cdrscan/cdrscan/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	if cmd.Use != "compare [subject-id]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	// Verify flags exist with their short options
	flagsWithShort := map[string]string{
		"list":     "l",
		"subjects": "L",
		"with":     "w",
		"since":    "s",
		"json":     "j",
		"markdown": "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	// Verify db-dir flag does NOT exist (uses XDG directory)
	if cmd.Flags().Lookup("db-dir") != nil {
		t.Error("db-dir flag should not exist")
	}
}

func TestNewCompareCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty Short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty Long description")
		}
	})

	t.Run("accepts maximum 1 argument", func(t *testing.T) {
		t.Parallel()
		// cobra.MaximumNArgs(1) is used
		if cmd.Args == nil {
			t.Error("expected Args to be set")
		}
	})
}

func TestCompareReports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		previousFindings  []model.Finding
		currentFindings   []model.Finding
		wantNewCount      int
		wantResolvedCount int
		wantUnchanged     int
		wantDirection     string
	}{
		{
			name:              "no changes when findings are identical",
			previousFindings:  []model.Finding{{Type: "communication_gap", Value: "2024-03-01", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			currentFindings:   []model.Finding{{Type: "communication_gap", Value: "2024-03-01", Severity: model.SeverityMedium, SeverityText: "MEDIUM"}},
			wantNewCount:      0,
			wantResolvedCount: 0,
			wantUnchanged:     1,
			wantDirection:     "unchanged",
		},
		{
			name:              "detects new findings",
			previousFindings:  []model.Finding{},
			currentFindings:   []model.Finding{{Type: "shared_contact", Value: "+15550001111", Severity: model.SeverityHigh, SeverityText: "HIGH"}},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     "worsened",
		},
		{
			name:              "detects resolved findings",
			previousFindings:  []model.Finding{{Type: "shared_contact", Value: "+15550001111", Severity: model.SeverityHigh, SeverityText: "HIGH"}},
			currentFindings:   []model.Finding{},
			wantNewCount:      0,
			wantResolvedCount: 1,
			wantUnchanged:     0,
			wantDirection:     "improved",
		},
		{
			name: "handles mixed changes",
			previousFindings: []model.Finding{
				{Type: "communication_gap", Value: "2024-02-10", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
				{Type: "activity_burst", Value: "2024-02-14", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			currentFindings: []model.Finding{
				{Type: "communication_gap", Value: "2024-02-10", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
				{Type: "activity_burst", Value: "2024-03-20", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			wantNewCount:      1,
			wantResolvedCount: 1,
			wantUnchanged:     1,
			wantDirection:     "unchanged",
		},
		{
			name:              "critical finding causes worsened status",
			previousFindings:  []model.Finding{},
			currentFindings:   []model.Finding{{Type: "direct_subject_contact", Value: "+15550002222", Severity: model.SeverityCritical, SeverityText: "CRITICAL"}},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     "worsened",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			previous := model.NewAnalysisReport("+15551234567")
			previous.DateAnalyzed = time.Now().Add(-24 * time.Hour)
			previous.SimpleReport = &model.SimpleReport{Findings: tt.previousFindings}
			countSeverities(previous.SimpleReport)

			current := model.NewAnalysisReport("+15551234567")
			current.SimpleReport = &model.SimpleReport{Findings: tt.currentFindings}
			countSeverities(current.SimpleReport)

			result := compareReports(previous, current)

			if len(result.NewFindings) != tt.wantNewCount {
				t.Errorf("NewFindings count: got %d, want %d", len(result.NewFindings), tt.wantNewCount)
			}
			if len(result.ResolvedFindings) != tt.wantResolvedCount {
				t.Errorf("ResolvedFindings count: got %d, want %d", len(result.ResolvedFindings), tt.wantResolvedCount)
			}
			if result.UnchangedCount != tt.wantUnchanged {
				t.Errorf("UnchangedCount: got %d, want %d", result.UnchangedCount, tt.wantUnchanged)
			}
			if result.SeverityChange.Direction != tt.wantDirection {
				t.Errorf("SeverityChange.Direction: got %q, want %q", result.SeverityChange.Direction, tt.wantDirection)
			}
		})
	}
}

// countSeverities fills the severity counters from the findings slice.
func countSeverities(sr *model.SimpleReport) {
	for _, f := range sr.Findings {
		switch f.Severity {
		case model.SeverityCritical:
			sr.CriticalCount++
		case model.SeverityHigh:
			sr.HighCount++
		case model.SeverityMedium:
			sr.MediumCount++
		case model.SeverityLow:
			sr.LowCount++
		case model.SeverityInfo:
			sr.InfoCount++
		}
	}
}

func TestCompareReportsContactChanges(t *testing.T) {
	t.Parallel()

	previous := model.NewAnalysisReport("+15551234567")
	previous.Relationships = &model.RelationshipReport{
		Contacts: []model.ContactSummary{
			{CorrespondentID: "+15550001111"},
			{CorrespondentID: "+15550002222"},
		},
	}

	current := model.NewAnalysisReport("+15551234567")
	current.Relationships = &model.RelationshipReport{
		Contacts: []model.ContactSummary{
			{CorrespondentID: "+15550002222"},
			{CorrespondentID: "+15550003333"},
		},
	}

	result := compareReports(previous, current)

	if len(result.NewContacts) != 1 || result.NewContacts[0] != "+15550003333" {
		t.Errorf("expected new contact +15550003333, got %v", result.NewContacts)
	}
	if len(result.DroppedContacts) != 1 || result.DroppedContacts[0] != "+15550001111" {
		t.Errorf("expected dropped contact +15550001111, got %v", result.DroppedContacts)
	}
}

func TestFindingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		finding model.Finding
		want    string
	}{
		{
			name:    "generates key with all fields",
			finding: model.Finding{Type: "shared_contact", Value: "+15550001111", Location: "alice, bob"},
			want:    "shared_contact|+15550001111|alice, bob",
		},
		{
			name:    "handles empty location",
			finding: model.Finding{Type: "shared_contact", Value: "+15550001111"},
			want:    "shared_contact|+15550001111|",
		},
		{
			name:    "handles empty value",
			finding: model.Finding{Type: "communication_gap", Location: "2024-03-01 .. 2024-03-12"},
			want:    "communication_gap||2024-03-01 .. 2024-03-12",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := findingKey(tt.finding)
			if got != tt.want {
				t.Errorf("findingKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateSeverityChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		previous      AnalysisMetadata
		current       AnalysisMetadata
		wantDirection string
	}{
		{
			name:          "unchanged when same",
			previous:      AnalysisMetadata{CriticalCount: 1, HighCount: 2},
			current:       AnalysisMetadata{CriticalCount: 1, HighCount: 2},
			wantDirection: "unchanged",
		},
		{
			name:          "improved when critical decreases",
			previous:      AnalysisMetadata{CriticalCount: 2},
			current:       AnalysisMetadata{CriticalCount: 1},
			wantDirection: "improved",
		},
		{
			name:          "worsened when critical increases",
			previous:      AnalysisMetadata{CriticalCount: 1},
			current:       AnalysisMetadata{CriticalCount: 2},
			wantDirection: "worsened",
		},
		{
			name:          "improved when high decreases significantly",
			previous:      AnalysisMetadata{HighCount: 10},
			current:       AnalysisMetadata{HighCount: 5},
			wantDirection: "improved",
		},
		{
			name:          "critical outweighs many info findings",
			previous:      AnalysisMetadata{InfoCount: 50},
			current:       AnalysisMetadata{CriticalCount: 1},
			wantDirection: "worsened",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			change := calculateSeverityChange(tt.previous, tt.current)
			if change.Direction != tt.wantDirection {
				t.Errorf("Direction: got %q, want %q", change.Direction, tt.wantDirection)
			}
		})
	}
}

func TestAnalysisMetadata(t *testing.T) {
	t.Parallel()

	t.Run("handles nil sections", func(t *testing.T) {
		t.Parallel()

		analysisReport := model.NewAnalysisReport("+15551234567")
		meta := analysisMetadata(analysisReport)

		if meta.TotalFindings != 0 {
			t.Errorf("expected 0 findings, got %d", meta.TotalFindings)
		}
		if meta.ActiveDays != 0 {
			t.Errorf("expected 0 active days, got %d", meta.ActiveDays)
		}
	})

	t.Run("extracts indicator counts", func(t *testing.T) {
		t.Parallel()

		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.Indicators = &model.IndicatorReport{
			ActiveDays:           21,
			NumberOfContacts:     14,
			NumberOfInteractions: 312,
		}
		analysisReport.SimpleReport = &model.SimpleReport{
			Findings:  []model.Finding{{Type: "communication_gap"}},
			HighCount: 1,
		}

		meta := analysisMetadata(analysisReport)

		if meta.TotalFindings != 1 {
			t.Errorf("expected 1 finding, got %d", meta.TotalFindings)
		}
		if meta.HighCount != 1 {
			t.Errorf("expected 1 high finding, got %d", meta.HighCount)
		}
		if meta.ActiveDays != 21 {
			t.Errorf("expected 21 active days, got %d", meta.ActiveDays)
		}
		if meta.ContactCount != 14 {
			t.Errorf("expected 14 contacts, got %d", meta.ContactCount)
		}
		if meta.InteractionCount != 312 {
			t.Errorf("expected 312 interactions, got %d", meta.InteractionCount)
		}
	})
}

func TestFormatSeveritySummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary map[string]int
		want    string
	}{
		{
			name:    "nil summary returns N/A",
			summary: nil,
			want:    "N/A",
		},
		{
			name:    "empty summary returns No findings",
			summary: map[string]int{},
			want:    "No findings",
		},
		{
			name:    "all zeros returns No findings",
			summary: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0, "info": 0},
			want:    "No findings",
		},
		{
			name:    "formats counts correctly",
			summary: map[string]int{"critical": 1, "high": 2, "medium": 3},
			want:    "C:1 H:2 M:3",
		},
		{
			name:    "skips zero counts",
			summary: map[string]int{"critical": 0, "high": 5, "medium": 0, "low": 0, "info": 10},
			want:    "H:5 I:10",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatSeveritySummary(tt.summary)
			if got != tt.want {
				t.Errorf("formatSeveritySummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		delta int
		want  string
	}{
		{name: "positive delta", delta: 5, want: "+5"},
		{name: "negative delta", delta: -3, want: "-3"},
		{name: "zero delta", delta: 0, want: "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatDelta(tt.delta)
			if got != tt.want {
				t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
			}
		})
	}
}

func TestFormatSeverityDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		direction string
		want      string
	}{
		{"improved", "IMPROVED (severity decreased)"},
		{"worsened", "WORSENED (severity increased)"},
		{"unchanged", "UNCHANGED"},
		{"unknown", "UNCHANGED"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.direction, func(t *testing.T) {
			t.Parallel()

			got := formatSeverityDirection(tt.direction)
			if got != tt.want {
				t.Errorf("formatSeverityDirection(%q) = %q, want %q", tt.direction, got, tt.want)
			}
		})
	}
}

func TestShortReportID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reportID string
		want     string
	}{
		{name: "uuid keeps first segment", reportID: "a1b2c3d4-e5f6-7890-abcd-ef1234567890", want: "a1b2c3d4"},
		{name: "no dash returns whole id", reportID: "abc123", want: "abc123"},
		{name: "empty id", reportID: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := shortReportID(tt.reportID)
			if got != tt.want {
				t.Errorf("shortReportID(%q) = %q, want %q", tt.reportID, got, tt.want)
			}
		})
	}
}

func TestShortDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		digest string
		want   string
	}{
		{name: "long digest truncated", digest: "0123456789abcdef0123456789abcdef", want: "0123456789ab"},
		{name: "short digest unchanged", digest: "abc123", want: "abc123"},
		{name: "empty digest", digest: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := shortDigest(tt.digest)
			if got != tt.want {
				t.Errorf("shortDigest(%q) = %q, want %q", tt.digest, got, tt.want)
			}
		})
	}
}

func TestOutputComparisonText(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Subject: "+15551234567",
		PreviousAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 5,
			CriticalCount: 1,
			HighCount:     2,
			MediumCount:   1,
			LowCount:      1,
			ActiveDays:    14,
		},
		CurrentAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 4,
			CriticalCount: 0,
			HighCount:     2,
			MediumCount:   1,
			LowCount:      1,
			ActiveDays:    21,
		},
		NewFindings: []model.Finding{
			{Type: "shared_contact", Value: "+15550001111", SeverityText: "HIGH", Title: "Shared Contact"},
		},
		ResolvedFindings: []model.Finding{
			{Type: "direct_subject_contact", Value: "+15550002222", SeverityText: "CRITICAL", Title: "Direct Contact Between Subjects"},
			{Type: "communication_gap", Value: "2024-02-10", SeverityText: "MEDIUM", Title: "Communication Gap"},
		},
		UnchangedCount: 2,
		SeverityChange: SeverityChange{
			Direction:     "improved",
			CriticalDelta: -1,
		},
		NewContacts: []string{"+15550003333"},
		SharedHits: []database.SharedContactHit{
			{CorrespondentID: "+15550001111", OtherSubject: "+15559990000", OtherInteractions: 7},
		},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := outputComparisonText(result)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("outputComparisonText() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	// Verify key elements are present
	expectedStrings := []string{
		"+15551234567",
		"IMPROVED",
		"Indicator Changes:",
		"New Findings (1)",
		"Resolved Findings (2)",
		"+15550001111",
		"+15550002222",
		"New Contacts (1)",
		"also contacted by +15559990000 (7 interactions)",
		"Unchanged: 2 findings",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("output missing expected string: %q", expected)
		}
	}
}

func TestOutputComparisonJSON(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Subject: "+15551234567",
		PreviousAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 2,
		},
		CurrentAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 3,
		},
		SeverityChange: SeverityChange{Direction: "worsened"},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := outputComparisonJSON(result)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("outputComparisonJSON() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	// Verify it's valid JSON with expected fields
	if !strings.Contains(output, `"subject": "+15551234567"`) {
		t.Error("JSON output missing subject field")
	}
	if !strings.Contains(output, `"direction": "worsened"`) {
		t.Error("JSON output missing severity change direction")
	}
}

func TestOutputComparisonMarkdown(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	result := &ComparisonResult{
		Subject: "+15551234567",
		PreviousAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			TotalFindings: 3,
			CriticalCount: 1,
			HighCount:     1,
			MediumCount:   1,
		},
		CurrentAnalysis: AnalysisMetadata{
			DateAnalyzed:  time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			TotalFindings: 2,
			CriticalCount: 0,
			HighCount:     1,
			MediumCount:   1,
		},
		NewFindings: []model.Finding{
			{Type: "shared_contact", Value: "+15550001111", SeverityText: "HIGH", Title: "Shared Contact", Location: "alice, bob"},
		},
		ResolvedFindings: []model.Finding{
			{Type: "direct_subject_contact", Value: "+15550002222", SeverityText: "CRITICAL", Title: "Direct Contact Between Subjects"},
		},
		UnchangedCount: 1,
		SeverityChange: SeverityChange{
			Direction:     "improved",
			CriticalDelta: -1,
		},
		DroppedContacts: []string{"+15550004444"},
		SharedHits: []database.SharedContactHit{
			{CorrespondentID: "+15550001111", OtherSubject: "+15559990000", OtherInteractions: 7},
		},
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	mdErr := outputComparisonMarkdown(result)

	w.Close()
	os.Stdout = oldStdout

	if mdErr != nil {
		t.Fatalf("outputComparisonMarkdown() error = %v", mdErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify markdown elements
	expectedStrings := []string{
		"# Analysis Comparison: +15551234567",
		"## Summary",
		"**Severity Status:**",
		"| Metric | Previous | Current | Change |",
		"| Interactions |",
		"## New Findings (1)",
		"## Resolved Findings (1)",
		"+15550001111",
		"+15550002222",
		"Location: `alice, bob`",
		"## Dropped Contacts (1)",
		"## Cross-Case Contacts (1)",
		"*1 findings unchanged*",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("markdown output missing expected string: %q\nOutput: %s", expected, output)
		}
	}
}

func TestListAnalyzedSubjectsIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test with empty database
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = listAnalyzedSubjects(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listAnalyzedSubjects() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No analyzed subjects found") {
		t.Error("expected 'No analyzed subjects found' message")
	}

	// Add some data
	analysisReport := model.NewAnalysisReport("+15551234567")
	analysisReport.SimpleReport = &model.SimpleReport{}
	if err := db.SaveReport(ctx, analysisReport); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	// Test with data
	r, w, _ = os.Pipe()
	os.Stdout = w

	err = listAnalyzedSubjects(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listAnalyzedSubjects() error = %v", err)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	output = buf.String()

	if !strings.Contains(output, "+15551234567") {
		t.Error("expected subject to be listed")
	}
	if !strings.Contains(output, "Analyzed subjects (1)") {
		t.Errorf("expected 'Analyzed subjects (1)' in output, got: %s", output)
	}
}

func TestListAnalysisHistoryIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add test data
	for i := 0; i < 3; i++ {
		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
		analysisReport.SimpleReport = &model.SimpleReport{
			CriticalCount: i,
			HighCount:     i + 1,
		}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	// Record an evidence file so the listing shows the files section
	if err := db.RecordIngestedFile(ctx, "+15551234567", model.SourceFile{
		Path:   "data/+15551234567.csv",
		Role:   "records",
		Rows:   120,
		Digest: "0123456789abcdef0123456789abcdef",
	}); err != nil {
		t.Fatalf("failed to record ingested file: %v", err)
	}

	// Test listing - capture output using pipe
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Run the function
	listErr := listAnalysisHistory(ctx, db, "+15551234567")

	// Close writer and restore stdout before reading
	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listAnalysisHistory() error = %v", listErr)
	}

	// Read captured output
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "3 analyses") {
		t.Errorf("expected '3 analyses' in output, got: %s", output)
	}
	if !strings.Contains(output, "+15551234567") {
		t.Errorf("expected subject in output, got: %s", output)
	}
	if !strings.Contains(output, "Evidence files (1)") {
		t.Errorf("expected evidence files section, got: %s", output)
	}
	if !strings.Contains(output, "0123456789ab") {
		t.Errorf("expected truncated digest in output, got: %s", output)
	}
}

func TestListAnalysisHistoryNoData(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test with empty history - capture output using pipe
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	listErr := listAnalysisHistory(ctx, db, "+15557654321")

	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listAnalysisHistory() error = %v", listErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "No analysis history found") {
		t.Errorf("expected 'No analysis history found' message, got: %s", output)
	}
}

func TestRunComparisonIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add two analysis reports
	previousReport := model.NewAnalysisReport("+15551234567")
	previousReport.DateAnalyzed = time.Now().Add(-24 * time.Hour)
	previousReport.SimpleReport = &model.SimpleReport{
		Findings: []model.Finding{
			{Type: "communication_gap", Value: "2024-02-10", SeverityText: "MEDIUM", Title: "Communication Gap"},
		},
		MediumCount: 1,
	}
	currentReport := model.NewAnalysisReport("+15551234567")
	currentReport.SimpleReport = &model.SimpleReport{
		Findings: []model.Finding{
			{Type: "communication_gap", Value: "2024-03-20", SeverityText: "MEDIUM", Title: "Communication Gap"},
		},
		MediumCount: 1,
	}

	if err := db.SaveReport(ctx, previousReport); err != nil {
		t.Fatalf("failed to save previous report: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // Ensure different timestamps
	if err := db.SaveReport(ctx, currentReport); err != nil {
		t.Fatalf("failed to save current report: %v", err)
	}

	// Test comparison - capture output using pipe
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	// Run the function
	compErr := runComparison(ctx, db, "+15551234567", "", "", false, false)

	// Close writer and restore stdout before reading
	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	// Read captured output
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify comparison output
	if !strings.Contains(output, "+15551234567") {
		t.Errorf("expected subject in output, got: %s", output)
	}
	if !strings.Contains(output, "New Findings") {
		t.Errorf("expected 'New Findings' section, got: %s", output)
	}
	if !strings.Contains(output, "Resolved Findings") {
		t.Errorf("expected 'Resolved Findings' section, got: %s", output)
	}
}

func TestRunComparisonSharedHits(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Two analyses for the compared subject
	for i := 0; i < 2; i++ {
		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
		analysisReport.SimpleReport = &model.SimpleReport{}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Both subjects are in contact with the same correspondent
	if err := db.UpsertContactLinks(ctx, "+15551234567", []model.ContactSummary{
		{CorrespondentID: "+15550001111", Calls: 3, Texts: 2},
	}); err != nil {
		t.Fatalf("failed to upsert contact links: %v", err)
	}
	if err := db.UpsertContactLinks(ctx, "+15559990000", []model.ContactSummary{
		{CorrespondentID: "+15550001111", Calls: 4, Texts: 3},
	}); err != nil {
		t.Fatalf("failed to upsert contact links: %v", err)
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "+15551234567", "", "", false, false)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "shared with other stored subjects") {
		t.Errorf("expected shared contacts section, got: %s", output)
	}
	if !strings.Contains(output, "+15550001111 also contacted by +15559990000 (7 interactions)") {
		t.Errorf("expected shared hit line, got: %s", output)
	}
}

func TestRunCompareCmdRequiresSubject(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	cmd.SetArgs([]string{})

	// Validation happens before database open, so this works without state
	err := cmd.Execute()

	if err == nil {
		t.Error("expected error when no subject provided")
	}
	if !strings.Contains(err.Error(), "subject id is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunCompareCmdInvalidSubject(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	cmd.SetArgs([]string{"bad/subject"})

	err := cmd.Execute()

	if err == nil {
		t.Error("expected error for invalid subject id")
	}
	if !strings.Contains(err.Error(), "invalid subject id") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunComparisonWithSinceDate(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add analysis reports with different dates
	oldReport := model.NewAnalysisReport("+15551234567")
	oldReport.DateAnalyzed = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	oldReport.SimpleReport = &model.SimpleReport{
		Findings: []model.Finding{
			{Type: "communication_gap", Value: "2024-12-01", SeverityText: "MEDIUM", Title: "Communication Gap"},
		},
		MediumCount: 1,
	}
	newReport := model.NewAnalysisReport("+15551234567")
	newReport.DateAnalyzed = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	newReport.SimpleReport = &model.SimpleReport{
		Findings: []model.Finding{
			{Type: "communication_gap", Value: "2025-05-01", SeverityText: "MEDIUM", Title: "Communication Gap"},
		},
		MediumCount: 1,
	}

	if err := db.SaveReport(ctx, oldReport); err != nil {
		t.Fatalf("failed to save old report: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // Ensure different timestamps
	if err := db.SaveReport(ctx, newReport); err != nil {
		t.Fatalf("failed to save new report: %v", err)
	}

	// Test comparison with --since date
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "+15551234567", "", "2025-01-01", false, false)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "+15551234567") {
		t.Errorf("expected subject in output, got: %s", output)
	}
}

func TestRunComparisonWithReportID(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add analysis reports
	for i := 0; i < 3; i++ {
		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
		analysisReport.SimpleReport = &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "communication_gap", Value: "2024-0" + string(rune('1'+i)) + "-10", SeverityText: "MEDIUM", Title: "Communication Gap"},
			},
			MediumCount: 1,
		}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Get the report id of the oldest analysis
	metadata, err := db.HistoryMetadata(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if len(metadata) < 2 {
		t.Fatalf("expected at least 2 metadata records, got %d", len(metadata))
	}
	oldReportID := metadata[len(metadata)-1].ReportID

	// Test comparison with --with
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "+15551234567", oldReportID, "", false, false)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "+15551234567") {
		t.Errorf("expected subject in output, got: %s", output)
	}
}

func TestRunComparisonWithJSONOutput(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add two analysis reports
	for i := 0; i < 2; i++ {
		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
		analysisReport.SimpleReport = &model.SimpleReport{MediumCount: i}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Test comparison with JSON output
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "+15551234567", "", "", true, false)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify it's valid JSON
	if !strings.Contains(output, `"subject": "+15551234567"`) {
		t.Errorf("expected JSON with subject field, got: %s", output)
	}
}

func TestRunComparisonWithMarkdownOutput(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add two analysis reports
	for i := 0; i < 2; i++ {
		analysisReport := model.NewAnalysisReport("+15551234567")
		analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
		analysisReport.SimpleReport = &model.SimpleReport{MediumCount: i}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Test comparison with Markdown output
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	compErr := runComparison(ctx, db, "+15551234567", "", "", false, true)

	w.Close()
	os.Stdout = oldStdout

	if compErr != nil {
		t.Fatalf("runComparison() error = %v", compErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	// Verify markdown format
	if !strings.Contains(output, "# Analysis Comparison: +15551234567") {
		t.Errorf("expected markdown header, got: %s", output)
	}
}

func TestRunComparisonErrors(t *testing.T) {
	t.Parallel()

	// Create temporary database
	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	t.Run("returns error for unknown subject", func(t *testing.T) {
		err := runComparison(ctx, db, "+15550000000", "", "", false, false)
		if err == nil {
			t.Error("expected error for unknown subject")
		}
		if !strings.Contains(err.Error(), "no analysis history found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error when only one analysis exists", func(t *testing.T) {
		analysisReport := model.NewAnalysisReport("+15551110000")
		analysisReport.SimpleReport = &model.SimpleReport{}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		err := runComparison(ctx, db, "+15551110000", "", "", false, false)
		if err == nil {
			t.Error("expected error when only one analysis exists")
		}
		if !strings.Contains(err.Error(), "at least 2 analyses are required") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error for non-existent report id", func(t *testing.T) {
		// Add two analyses first
		for i := 0; i < 2; i++ {
			analysisReport := model.NewAnalysisReport("+15552220000")
			analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
			analysisReport.SimpleReport = &model.SimpleReport{}
			if err := db.SaveReport(ctx, analysisReport); err != nil {
				t.Fatalf("failed to save report: %v", err)
			}
			time.Sleep(10 * time.Millisecond)
		}

		err := runComparison(ctx, db, "+15552220000", "ffffffff-0000-0000-0000-000000000000", "", false, false)
		if err == nil {
			t.Error("expected error for non-existent report id")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error for invalid date format", func(t *testing.T) {
		// Add two analyses first
		for i := 0; i < 2; i++ {
			analysisReport := model.NewAnalysisReport("+15553330000")
			analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
			analysisReport.SimpleReport = &model.SimpleReport{}
			if err := db.SaveReport(ctx, analysisReport); err != nil {
				t.Fatalf("failed to save report: %v", err)
			}
			time.Sleep(10 * time.Millisecond)
		}

		err := runComparison(ctx, db, "+15553330000", "", "invalid-date", false, false)
		if err == nil {
			t.Error("expected error for invalid date format")
		}
		if !strings.Contains(err.Error(), "invalid date format") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error when no analyses found since date", func(t *testing.T) {
		// Add an analysis with an old date
		analysisReport := model.NewAnalysisReport("+15554440000")
		analysisReport.DateAnalyzed = time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
		analysisReport.SimpleReport = &model.SimpleReport{}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		err := runComparison(ctx, db, "+15554440000", "", "2030-01-01", false, false)
		if err == nil {
			t.Error("expected error when no analyses found since date")
		}
		if !strings.Contains(err.Error(), "no analyses found since") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error when report id belongs to different subject", func(t *testing.T) {
		// Add analyses for two different subjects
		for _, subject := range []string{"+15555550001", "+15555550002"} {
			for i := 0; i < 2; i++ {
				analysisReport := model.NewAnalysisReport(subject)
				analysisReport.DateAnalyzed = time.Now().Add(time.Duration(-i) * time.Hour)
				analysisReport.SimpleReport = &model.SimpleReport{}
				if err := db.SaveReport(ctx, analysisReport); err != nil {
					t.Fatalf("failed to save report: %v", err)
				}
				time.Sleep(10 * time.Millisecond)
			}
		}

		// Get a report id from the second subject
		metadata, err := db.HistoryMetadata(ctx, "+15555550002")
		if err != nil {
			t.Fatalf("failed to get metadata: %v", err)
		}
		if len(metadata) == 0 {
			t.Fatal("expected at least one metadata record")
		}
		otherReportID := metadata[0].ReportID

		// Try to compare the first subject with the second subject's report id
		err = runComparison(ctx, db, "+15555550001", otherReportID, "", false, false)
		if err == nil {
			t.Error("expected error when report id belongs to different subject")
		}
		if !strings.Contains(err.Error(), "belongs to") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns error when only one analysis matches since date", func(t *testing.T) {
		// Add a single analysis with a recent date
		analysisReport := model.NewAnalysisReport("+15556660000")
		analysisReport.DateAnalyzed = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		analysisReport.SimpleReport = &model.SimpleReport{}
		if err := db.SaveReport(ctx, analysisReport); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		// Try to compare with --since when only one analysis exists
		err := runComparison(ctx, db, "+15556660000", "", "2025-01-01", false, false)
		if err == nil {
			t.Error("expected error when only one analysis matches since date")
		}
		if !strings.Contains(err.Error(), "only one analysis found since") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCompareReportsWithNilSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("handles nil SimpleReport in previous", func(t *testing.T) {
		t.Parallel()

		previous := model.NewAnalysisReport("+15551234567")
		previous.DateAnalyzed = time.Now().Add(-24 * time.Hour)
		previous.SimpleReport = nil

		current := model.NewAnalysisReport("+15551234567")
		current.SimpleReport = &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "communication_gap", Value: "2024-02-10", SeverityText: "MEDIUM"},
			},
			MediumCount: 1,
		}

		result := compareReports(previous, current)

		if result.Subject != "+15551234567" {
			t.Errorf("expected subject '+15551234567', got %q", result.Subject)
		}
		if len(result.NewFindings) != 1 {
			t.Errorf("expected 1 new finding, got %d", len(result.NewFindings))
		}
		if result.PreviousAnalysis.TotalFindings != 0 {
			t.Errorf("expected 0 previous findings, got %d", result.PreviousAnalysis.TotalFindings)
		}
	})

	t.Run("handles nil SimpleReport in current", func(t *testing.T) {
		t.Parallel()

		previous := model.NewAnalysisReport("+15551234567")
		previous.DateAnalyzed = time.Now().Add(-24 * time.Hour)
		previous.SimpleReport = &model.SimpleReport{
			Findings: []model.Finding{
				{Type: "communication_gap", Value: "2024-02-10", SeverityText: "MEDIUM"},
			},
			MediumCount: 1,
		}

		current := model.NewAnalysisReport("+15551234567")
		current.SimpleReport = nil

		result := compareReports(previous, current)

		if len(result.ResolvedFindings) != 1 {
			t.Errorf("expected 1 resolved finding, got %d", len(result.ResolvedFindings))
		}
		if result.CurrentAnalysis.TotalFindings != 0 {
			t.Errorf("expected 0 current findings, got %d", result.CurrentAnalysis.TotalFindings)
		}
	})

	t.Run("handles nil SimpleReport in both", func(t *testing.T) {
		t.Parallel()

		previous := model.NewAnalysisReport("+15551234567")
		previous.DateAnalyzed = time.Now().Add(-24 * time.Hour)
		previous.SimpleReport = nil

		current := model.NewAnalysisReport("+15551234567")
		current.SimpleReport = nil

		result := compareReports(previous, current)

		if len(result.NewFindings) != 0 {
			t.Errorf("expected 0 new findings, got %d", len(result.NewFindings))
		}
		if len(result.ResolvedFindings) != 0 {
			t.Errorf("expected 0 resolved findings, got %d", len(result.ResolvedFindings))
		}
		if result.SeverityChange.Direction != "unchanged" {
			t.Errorf("expected direction 'unchanged', got %q", result.SeverityChange.Direction)
		}
	})
}
