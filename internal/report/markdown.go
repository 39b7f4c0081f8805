package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cdrscan/cdrscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for case documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxContacts caps the top-contacts table.
	maxContacts int
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		maxContacts: 10,
	}
}

// Write outputs the full report in Markdown format. On top of the summary
// sections it renders the indicator, contact, and key date tables that only
// the full report carries.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	simple := report.SimpleReport
	if simple == nil {
		simple = model.NewSimpleReport(report)
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, simple)
	w.writeSummary(md, simple)
	w.writeDataPresent(md, simple)
	w.writeIndicators(md, report.Indicators)
	w.writeContacts(md, report.Relationships)
	w.writeKeyDates(md, report.KeyDates)
	w.writeFindings(md, simple)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDataPresent(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with analysis information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("CDR Analysis Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", "`" + report.Subject + "`"},
			{"Analysis Date", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
			{"Records Analyzed", strconv.Itoa(report.RecordCount)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	// Summary table
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if there are findings
	if report.HasFindings() {
		w.writePieChart(md, report)
	}

	// Add alert based on severity
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SimpleReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(report.HighCount))
	}
	if report.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(report.MediumCount))
	}
	if report.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(report.LowCount))
	}
	if report.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(report.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Critical findings detected! %d finding(s) point at direct subject contact or coordinated activity.",
			report.CriticalCount,
		)
	case report.HighCount > 0:
		md.Warningf(
			"High significance findings detected. %d finding(s) warrant investigative follow-up.",
			report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf(
			"Medium significance findings found. %d finding(s) may be relevant to the case.",
			report.MediumCount,
		)
	case report.TotalFindings() > 0:
		md.Note("Only low significance and informational findings detected.")
	default:
		md.Tip("No significant patterns detected.")
	}
	md.PlainText("")
}

// writeDataPresent writes the data presence section.
func (w *MarkdownWriter) writeDataPresent(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Data Present")
	md.PlainText("")

	if len(report.DataPresent) == 0 {
		md.PlainText("No usable data detected.")
		md.PlainText("")
		return
	}

	labels := make([]string, len(report.DataPresent))
	for i, kind := range report.DataPresent {
		labels[i] = displayLabel(kind)
	}
	md.BulletList(labels...)
	md.PlainText("")
}

// writeIndicators writes the behavioral indicator table.
func (w *MarkdownWriter) writeIndicators(md *markdown.Markdown, ind *model.IndicatorReport) {
	if ind == nil {
		return
	}

	md.H2("Behavioral Indicators")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Indicator", "Value"},
		Rows: [][]string{
			{"Active Days", strconv.Itoa(ind.ActiveDays)},
			{"Contacts", strconv.Itoa(ind.NumberOfContacts)},
			{"Interactions", fmt.Sprintf("%d (%d in / %d out)",
				ind.NumberOfInteractions, ind.NumberOfInteractionsIn, ind.NumberOfInteractionsOut)},
			{"Mean Call Duration", fmt.Sprintf("%.0f s", ind.CallDuration.Mean)},
			{"Nocturnal Activity", formatPercent(ind.PercentNocturnal)},
			{"Initiated", formatPercent(ind.PercentInitiated)},
			{"Contact Entropy", fmt.Sprintf("%.2f", ind.EntropyOfContacts)},
			{"Pareto Contacts", formatPercent(ind.PercentParetoInteractions)},
			{"Distinct Positions", strconv.Itoa(ind.NumberOfAntennas)},
			{"Radius of Gyration", fmt.Sprintf("%.1f km", ind.RadiusOfGyration)},
			{"Time at Home", formatPercent(ind.PercentAtHome)},
		},
	})
	md.PlainText("")
}

// writeContacts writes the strongest relationships table.
func (w *MarkdownWriter) writeContacts(md *markdown.Markdown, rel *model.RelationshipReport) {
	if rel == nil || len(rel.Contacts) == 0 {
		return
	}

	md.H2("Top Contacts")
	md.PlainText("")

	contacts := rel.Contacts
	if len(contacts) > w.maxContacts {
		contacts = contacts[:w.maxContacts]
	}

	rows := make([][]string, len(contacts))
	for i, c := range contacts {
		name := c.Name
		if name == "" {
			name = "-"
		}
		rows[i] = []string{
			"`" + c.CorrespondentID + "`",
			name,
			fmt.Sprintf("%.2f", c.Strength),
			strconv.Itoa(c.Calls),
			strconv.Itoa(c.Texts),
			fmt.Sprintf("%.2f", c.Reciprocity),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Correspondent", "Name", "Strength", "Calls", "Texts", "Reciprocity"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeKeyDates writes the resolved key date table.
func (w *MarkdownWriter) writeKeyDates(md *markdown.Markdown, keyDates []model.KeyDateReport) {
	if len(keyDates) == 0 {
		return
	}

	md.H2("Key Dates")
	md.PlainText("")

	rows := make([][]string, len(keyDates))
	for i, kd := range keyDates {
		firstContact := kd.FirstContactAfter
		if firstContact == "" {
			firstContact = "-"
		}
		position := "-"
		if kd.PositionConfidence != "" {
			position = fmt.Sprintf("%s (%s)", positionText(kd.Position), kd.PositionConfidence)
		}
		rows[i] = []string{
			kd.Label,
			kd.At.Format("2006-01-02 15:04:05"),
			strconv.Itoa(kd.InteractionsBefore),
			strconv.Itoa(kd.InteractionsAfter),
			firstContact,
			position,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Label", "At", "Before", "After", "First Contact After", "Position"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.SimpleReport) {
	if !report.HasFindings() {
		md.H2("Findings")
		md.PlainText("")
		md.PlainText("No findings detected.")
		md.PlainText("")
		return
	}

	md.H2("Findings")
	md.PlainText("")

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		findings := report.GetFindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	headers := []string{"Title", "Value", "Location", "Recommendation"}

	rows := make([][]string, len(findings))
	for i, f := range findings {
		value := f.Value
		if value == "" {
			value = "-"
		}
		location := f.Location
		if location == "" {
			location = "-"
		}
		rec := f.Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			f.Title,
			truncateString(value, 50),
			truncateString(location, 40),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add detailed descriptions for all findings
	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cdrscan](https://github.com/cdrscan/cdrscan)*")
}

// formatPercent renders a 0..1 fraction as a percentage.
func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
