package model

import "time"

// SimpleReport is a summarized, human-readable report.
// It extracts key findings from the full analysis report for quick review.
//
// Design decision: We create a separate simplified report rather than
// just printing parts of AnalysisReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from computation
type SimpleReport struct {
	// Subject is the analyzed subject identifier.
	Subject string `json:"subject"`

	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// === Data Presence ===

	// DataPresent lists what kinds of data the export carried.
	DataPresent []string `json:"data_present,omitempty"`

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// === Record Statistics ===

	// RecordCount is the number of records analyzed.
	RecordCount int `json:"record_count"`

	// TimedOut indicates if the analysis was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the analysis failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in the simple report.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the significance level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains why this finding matters to a case.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to follow up.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (correspondent ID, gap length, etc.).
	Value string `json:"value,omitempty"`

	// Location narrows the finding down (antenna, time window, contact).
	Location string `json:"location,omitempty"`
}

// NewFinding builds a Finding of the given type, filling severity, impact,
// and recommendation from the central mapping.
func NewFinding(findingType, title, description, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}

// NewSimpleReport creates or completes the SimpleReport for an AnalysisReport.
// Findings already added through AddFinding are kept; this fills in the
// summary fields around them.
func NewSimpleReport(report *AnalysisReport) *SimpleReport {
	simple := report.SimpleReport
	if simple == nil {
		simple = &SimpleReport{
			Subject:      report.Subject,
			DateAnalyzed: report.DateAnalyzed,
			Findings:     make([]Finding, 0),
		}
	}

	simple.TimedOut = report.TimedOut
	if report.Error != nil {
		simple.Error = report.Error.Error()
	}
	if report.Ingest != nil {
		simple.RecordCount = report.Ingest.RecordCount
	}

	simple.collectDataPresence(report)

	return simple
}

// collectDataPresence extracts the list of present data kinds.
func (s *SimpleReport) collectDataPresence(report *AnalysisReport) {
	s.DataPresent = s.DataPresent[:0]
	if report.HasCalls {
		s.DataPresent = append(s.DataPresent, "calls")
	}
	if report.HasTexts {
		s.DataPresent = append(s.DataPresent, "texts")
	}
	if report.HasAntennas {
		s.DataPresent = append(s.DataPresent, "locations")
	}
	if report.HasHome {
		s.DataPresent = append(s.DataPresent, "home")
	}
	if report.HasNetwork {
		s.DataPresent = append(s.DataPresent, "network")
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
