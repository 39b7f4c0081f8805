package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestNewAnalysisReport tests report initialization.
func TestNewAnalysisReport(t *testing.T) {
	t.Parallel()

	report := NewAnalysisReport("ego_1")

	if report.Subject != "ego_1" {
		t.Errorf("got %q, expected %q", report.Subject, "ego_1")
	}
	if report.ReportID == "" {
		t.Error("expected a non-empty report id")
	}
	if report.DateAnalyzed.IsZero() {
		t.Error("expected DateAnalyzed to be set")
	}

	other := NewAnalysisReport("ego_1")
	if other.ReportID == report.ReportID {
		t.Error("expected distinct report ids for distinct runs")
	}
}

// TestAddFinding tests finding aggregation and severity counting.
func TestAddFinding(t *testing.T) {
	t.Parallel()

	t.Run("initializes simple report", func(t *testing.T) {
		t.Parallel()

		report := NewAnalysisReport("ego_1")
		report.AddFinding(NewFinding("communication_gap", "Communication Gap", "silent period", "52.0h", ""))

		if report.SimpleReport == nil {
			t.Fatal("expected SimpleReport to be initialized")
		}
		if report.SimpleReport.Subject != "ego_1" {
			t.Errorf("got %q, expected %q", report.SimpleReport.Subject, "ego_1")
		}
		if report.SimpleReport.MediumCount != 1 {
			t.Errorf("got %d medium findings, expected 1", report.SimpleReport.MediumCount)
		}
	})

	t.Run("deduplicates by type, value, and location", func(t *testing.T) {
		t.Parallel()

		report := NewAnalysisReport("ego_1")
		f := NewFinding("shared_contact", "Shared Contact", "", "B07", "ego_2")
		report.AddFinding(f)
		report.AddFinding(f)

		if got := report.SimpleReport.TotalFindings(); got != 1 {
			t.Errorf("got %d findings, expected 1 after dedupe", got)
		}
		if report.SimpleReport.HighCount != 1 {
			t.Errorf("got %d high findings, expected 1", report.SimpleReport.HighCount)
		}

		different := NewFinding("shared_contact", "Shared Contact", "", "B07", "ego_3")
		report.AddFinding(different)
		if got := report.SimpleReport.TotalFindings(); got != 2 {
			t.Errorf("got %d findings, expected 2 for a different location", got)
		}
	})

	t.Run("counts all severities", func(t *testing.T) {
		t.Parallel()

		report := NewAnalysisReport("ego_1")
		report.AddFinding(NewFinding("direct_subject_contact", "t", "", "a", ""))
		report.AddFinding(NewFinding("colocation_meeting", "t", "", "b", ""))
		report.AddFinding(NewFinding("activity_burst", "t", "", "c", ""))
		report.AddFinding(NewFinding("duplicate_records", "t", "", "d", ""))
		report.AddFinding(NewFinding("network_not_loaded", "t", "", "e", ""))

		s := report.SimpleReport
		if s.CriticalCount != 1 || s.HighCount != 1 || s.MediumCount != 1 || s.LowCount != 1 || s.InfoCount != 1 {
			t.Errorf("unexpected severity counts: %d/%d/%d/%d/%d",
				s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.InfoCount)
		}
	})
}

// TestNewSimpleReport tests summary completion from the full report.
func TestNewSimpleReport(t *testing.T) {
	t.Parallel()

	report := NewAnalysisReport("ego_1")
	report.HasCalls = true
	report.HasTexts = true
	report.HasNetwork = true
	report.Ingest = &IngestStats{RecordCount: 1482}
	report.Error = errors.New("partial load")
	report.AddFinding(NewFinding("communication_gap", "Gap", "", "52.0h", ""))

	simple := NewSimpleReport(report)

	if simple.RecordCount != 1482 {
		t.Errorf("got %d records, expected 1482", simple.RecordCount)
	}
	if simple.Error != "partial load" {
		t.Errorf("got %q, expected %q", simple.Error, "partial load")
	}
	if simple.TotalFindings() != 1 {
		t.Errorf("got %d findings, expected the AddFinding one to survive", simple.TotalFindings())
	}

	expectedPresence := []string{"calls", "texts", "network"}
	if len(simple.DataPresent) != len(expectedPresence) {
		t.Fatalf("got %v, expected %v", simple.DataPresent, expectedPresence)
	}
	for i, p := range expectedPresence {
		if simple.DataPresent[i] != p {
			t.Errorf("got %v, expected %v", simple.DataPresent, expectedPresence)
		}
	}
}

// TestGetFindingsBySeverity tests severity filtering.
func TestGetFindingsBySeverity(t *testing.T) {
	t.Parallel()

	report := NewAnalysisReport("ego_1")
	report.AddFinding(NewFinding("direct_subject_contact", "t", "", "a", ""))
	report.AddFinding(NewFinding("shared_contact", "t", "", "b", ""))
	report.AddFinding(NewFinding("bridge_contact", "t", "", "c", ""))

	high := report.SimpleReport.GetFindingsBySeverity(SeverityHigh)
	if len(high) != 2 {
		t.Errorf("got %d high findings, expected 2", len(high))
	}

	critical := report.SimpleReport.GetFindingsBySeverity(SeverityCritical)
	if len(critical) != 1 {
		t.Errorf("got %d critical findings, expected 1", len(critical))
	}
}

// TestAnalysisReportJSONRoundTrip tests that the report serializes cleanly.
// The User field must never leak into serialized output: reports end up in
// the history database and must not embed full record sets.
func TestAnalysisReportJSONRoundTrip(t *testing.T) {
	t.Parallel()

	report := NewAnalysisReport("ego_1")
	report.User = NewUser("ego_1")
	report.Ingest = &IngestStats{RecordCount: 10}
	report.Error = errors.New("boom")
	report.ErrorMessage = report.Error.Error()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded AnalysisReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.Subject != "ego_1" {
		t.Errorf("got %q, expected %q", decoded.Subject, "ego_1")
	}
	if decoded.User != nil {
		t.Error("expected User to be excluded from JSON")
	}
	if decoded.ErrorMessage != "boom" {
		t.Errorf("got %q, expected %q", decoded.ErrorMessage, "boom")
	}
	if decoded.Ingest == nil || decoded.Ingest.RecordCount != 10 {
		t.Error("expected ingest stats to round-trip")
	}
}
