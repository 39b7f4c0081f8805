package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cdrscan/cdrscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and severity-graded findings.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
// It generates a SimpleReport from the AnalysisReport if not already present.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	simple := report.SimpleReport
	if simple == nil {
		simple = model.NewSimpleReport(report)
	}

	var sb strings.Builder

	w.writeHeader(&sb, simple)
	w.writeSummary(&sb, simple)
	w.writeDataPresent(&sb, simple)
	w.writeKeyDates(&sb, report.KeyDates)
	w.writeFindings(&sb, simple)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSimple outputs the simple report in human-readable format.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeDataPresent(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with analysis information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CDRSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Subject:        %s\n", report.Subject))
	sb.WriteString(fmt.Sprintf("Analysis Date:  %s\n", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Records:        %d\n", report.RecordCount))

	if report.TimedOut {
		sb.WriteString("Status:         TIMED OUT (partial results)\n")
	} else if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.Error))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", report.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", report.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", report.LowCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.InfoCount))
	sb.WriteString("\n")

	total := report.TotalFindings()
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d findings\n", total))
	sb.WriteString("\n")
}

// writeDataPresent writes the data presence section.
func (w *SimpleWriter) writeDataPresent(sb *strings.Builder, report *model.SimpleReport) {
	if len(report.DataPresent) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DATA PRESENT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.DataPresent) == 0 {
		sb.WriteString("  No usable data detected\n")
	} else {
		for _, kind := range report.DataPresent {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", displayLabel(kind)))
		}
	}
	sb.WriteString("\n")
}

// writeKeyDates writes the resolved key date snapshots. Only the full
// report carries them, so WriteSimple never reaches this section.
func (w *SimpleWriter) writeKeyDates(sb *strings.Builder, keyDates []model.KeyDateReport) {
	if len(keyDates) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("KEY DATES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, kd := range keyDates {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", kd.Label, kd.At.Format("2006-01-02 15:04:05")))
		sb.WriteString(fmt.Sprintf("    Interactions: %d before, %d after\n",
			kd.InteractionsBefore, kd.InteractionsAfter))
		if kd.FirstContactAfter != "" {
			sb.WriteString(fmt.Sprintf("    First contact after: %s at %s\n",
				kd.FirstContactAfter, kd.FirstContactAt.Format("15:04:05")))
		}
		if kd.PositionConfidence != "" {
			sb.WriteString(fmt.Sprintf("    Position: %s (%s confidence)\n",
				positionText(kd.Position), kd.PositionConfidence))
		}
		if w.verbose && len(kd.ContactsBefore) > 0 {
			sb.WriteString(fmt.Sprintf("    Contacts before: %s\n", contactCountsText(kd.ContactsBefore)))
		}
		if w.verbose && len(kd.ContactsAfter) > 0 {
			sb.WriteString(fmt.Sprintf("    Contacts after: %s\n", contactCountsText(kd.ContactsAfter)))
		}
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.SimpleReport) {
	if !report.HasFindings() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	// Write findings in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		findings := report.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	// Severity header with visual indicator
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding.Title))
		if finding.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", finding.Value))
		}
		if finding.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", finding.Location))
		}
		if w.verbose && finding.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", finding.Description))
		}
		if w.verbose && finding.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("    Follow up: %s\n", finding.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by cdrscan\n")
	sb.WriteString("https://github.com/cdrscan/cdrscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// positionText renders a position for terminal output.
func positionText(p model.Position) string {
	switch {
	case p.AntennaID != "" && p.HasCoordinates:
		return fmt.Sprintf("%s (%.4f, %.4f)", p.AntennaID, p.Latitude, p.Longitude)
	case p.AntennaID != "":
		return p.AntennaID
	case p.HasCoordinates:
		return fmt.Sprintf("(%.4f, %.4f)", p.Latitude, p.Longitude)
	default:
		return "unknown"
	}
}

// contactCountsText renders a correspondent->count map sorted by id.
func contactCountsText(counts map[string]int) string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s (%d)", id, counts[id]))
	}
	return strings.Join(parts, ", ")
}
