package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cdrscan/cdrscan/internal/config"
	"github.com/cdrscan/cdrscan/internal/database"
	"github.com/cdrscan/cdrscan/internal/model"
	"github.com/spf13/cobra"
)

// Constants for severity direction and summary messages.
const (
	severityDirectionWorsened  = "worsened"
	severityDirectionImproved  = "improved"
	severityDirectionUnchanged = "unchanged"
	noFindingsMessage          = "No findings"
)

// NewCompareCmd creates the compare command.
// This command compares analysis results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [subject-id]",
		Short: "Compare analysis results with historical data",
		Long: `Compare displays differences between the current and previous analysis results.

This command retrieves historical analysis data from the database and shows:
- New findings that appeared since the last analysis
- Resolved findings that are no longer present
- Changes in finding severity levels
- Contacts that appeared or dropped out of the subject's network
- Movement in the headline indicators (active days, contacts, interactions)
- Contacts the subject shares with other stored subjects

The comparison requires at least two analyses in the database for the
specified subject. Use 'cdrscan analyze' to run analyses and save results.

Examples:
  # Compare latest two analyses for a subject
  cdrscan compare +15551234567

  # List all analysis history for a subject
  cdrscan compare --list +15551234567

  # Compare with a specific historical analysis by report id
  cdrscan compare --with 8a6c2e9f +15551234567

  # Compare analyses since a specific date
  cdrscan compare --since "2025-01-01" +15551234567

  # Output comparison in JSON format
  cdrscan compare --json +15551234567

  # List all analyzed subjects in the database
  cdrscan compare --subjects`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List analysis history for the specified subject")
	cmd.Flags().BoolP("subjects", "L", false,
		"List all analyzed subjects in the database")

	// Comparison target flags
	cmd.Flags().StringP("with", "w", "",
		"Compare with a specific analysis by report id (use --list to see available ids)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first analysis after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --subjects flag first (requires database but no subject id)
	listSubjects, err := cmd.Flags().GetBool("subjects")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --subjects)
	// This prevents database lock issues when validation fails
	var subject string
	if !listSubjects {
		// Require a subject id for other operations
		if len(args) == 0 {
			return errors.New("subject id is required (use --subjects to see available subjects)")
		}

		// Normalize the subject id
		id, err := model.NewSubjectID(args[0])
		if err != nil {
			return fmt.Errorf("invalid subject id: %w", err)
		}
		subject = id.String()
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --subjects flag
	if listSubjects {
		return listAnalyzedSubjects(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAnalysisHistory(ctx, db, subject)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withReportID, err := cmd.Flags().GetString("with")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, subject, withReportID, sinceDate, jsonOutput, markdownOutput)
}

// listAnalyzedSubjects lists all subjects that have analysis records in the database.
func listAnalyzedSubjects(ctx context.Context, db *database.AnalysisDB) error {
	subjects, err := db.ListSubjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	if len(subjects) == 0 {
		fmt.Println("No analyzed subjects found in the database.")
		fmt.Println("\nUse 'cdrscan analyze <subject-id>' to analyze a subject.")
		return nil
	}

	fmt.Printf("Analyzed subjects (%d):\n\n", len(subjects))
	for _, subject := range subjects {
		fmt.Printf("  • %s\n", subject)
	}
	fmt.Println("\nUse 'cdrscan compare --list <subject-id>' to see analysis history for a subject.")

	return nil
}

// listAnalysisHistory lists all analysis records for a specific subject,
// followed by the evidence files recorded for it.
func listAnalysisHistory(ctx context.Context, db *database.AnalysisDB, subject string) error {
	reports, err := db.HistoryMetadata(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No analysis history found for %s\n", subject)
		fmt.Println("\nUse 'cdrscan analyze' to analyze this subject.")
		return nil
	}

	fmt.Printf("Analysis history for %s (%d analyses):\n\n", subject, len(reports))
	fmt.Printf("  %-10s  %-20s  %s\n", "Report ID", "Date", "Findings")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		fmt.Printf("  %-10s  %-20s  %s\n",
			shortReportID(meta.ReportID),
			meta.CreatedAt.Format("2006-01-02 15:04:05"),
			formatSeveritySummary(meta.SeveritySummary),
		)
	}

	// Evidence files give the chain of custody for what was analyzed
	files, err := db.IngestedFiles(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get ingested files: %w", err)
	}
	if len(files) > 0 {
		fmt.Printf("\nEvidence files (%d):\n\n", len(files))
		fmt.Printf("  %-8s  %-6s  %-14s  %s\n", "Role", "Rows", "Digest", "Path")
		fmt.Println("  " + strings.Repeat("-", 60))
		for _, file := range files {
			fmt.Printf("  %-8s  %-6d  %-14s  %s\n",
				file.Role,
				file.Rows,
				shortDigest(file.Digest),
				file.Path,
			)
		}
	}

	fmt.Println("\nUse 'cdrscan compare <subject-id>' to compare the latest two analyses.")
	fmt.Println("Use 'cdrscan compare --with <report-id> <subject-id>' to compare with a specific analysis.")

	return nil
}

// shortReportID returns the leading segment of a report UUID, enough to be
// unambiguous in a listing while staying readable.
func shortReportID(reportID string) string {
	if i := strings.IndexByte(reportID, '-'); i > 0 {
		return reportID[:i]
	}
	return reportID
}

// shortDigest truncates a hex digest for display.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

// formatSeveritySummary formats the severity summary map into a human-readable string.
func formatSeveritySummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between analysis reports.
func runComparison(ctx context.Context, db *database.AnalysisDB, subject string, withReportID, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the analysis history
	reports, err := db.History(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get analysis history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no analysis history found for %s", subject)
	}

	if len(reports) < 2 && withReportID == "" && sinceDate == "" {
		return fmt.Errorf("at least 2 analyses are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.AnalysisReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withReportID != "" {
		// Find the report with the specified id
		previousReport, err = db.ReportByID(ctx, withReportID)
		if err != nil {
			return fmt.Errorf("failed to get analysis with report id %s: %w", withReportID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("analysis with report id %s not found", withReportID)
		}
		// Validate that the report belongs to the same subject
		if previousReport.Subject != subject {
			return fmt.Errorf("report id %s belongs to %s, not %s", withReportID, previousReport.Subject, subject)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted newest first, so iterate in reverse to find
		// the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateAnalyzed.After(parsedDate) || r.DateAnalyzed.Equal(parsedDate) {
				previousReport = r
				break
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no analyses found since %s", sinceDate)
		}
		// If only one analysis matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one analysis found since %s; at least 2 analyses are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous analysis
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Contacts shared with other stored subjects come from the contact
	// links table, not from either report
	comparison.SharedHits, err = db.SharedContactHits(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get shared contact hits: %w", err)
	}

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two analysis reports.
type ComparisonResult struct {
	// Subject is the analyzed subject identifier.
	Subject string `json:"subject"`

	// PreviousAnalysis contains metadata about the previous analysis.
	PreviousAnalysis AnalysisMetadata `json:"previous_analysis"`

	// CurrentAnalysis contains metadata about the current analysis.
	CurrentAnalysis AnalysisMetadata `json:"current_analysis"`

	// NewFindings contains findings that are new in the current analysis.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous analysis but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// SeverityChange describes the overall change in finding severity.
	SeverityChange SeverityChange `json:"severity_change"`

	// NewContacts lists correspondents present now but not before.
	NewContacts []string `json:"new_contacts,omitempty"`

	// DroppedContacts lists correspondents present before but not now.
	DroppedContacts []string `json:"dropped_contacts,omitempty"`

	// SharedHits lists contacts the subject shares with other stored subjects.
	SharedHits []database.SharedContactHit `json:"shared_hits,omitempty"`
}

// AnalysisMetadata contains metadata about an analysis for comparison display.
type AnalysisMetadata struct {
	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// TotalFindings is the total number of findings in this analysis.
	TotalFindings int `json:"total_findings"`

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

	// ActiveDays is the number of distinct days with activity.
	ActiveDays int `json:"active_days"`

	// ContactCount is the number of distinct correspondents.
	ContactCount int `json:"contact_count"`

	// InteractionCount is the total number of records analyzed.
	InteractionCount int `json:"interaction_count"`
}

// SeverityChange describes the change in finding severity between analyses.
type SeverityChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two analysis reports and generates a comparison result.
func compareReports(previous, current *model.AnalysisReport) *ComparisonResult {
	result := &ComparisonResult{
		Subject: current.Subject,
	}

	// Extract metadata
	result.PreviousAnalysis = analysisMetadata(previous)
	result.CurrentAnalysis = analysisMetadata(current)

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			previousFindings[findingKey(f)] = f
		}
	}

	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			currentFindings[findingKey(f)] = f
		}
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	// Calculate severity change
	result.SeverityChange = calculateSeverityChange(result.PreviousAnalysis, result.CurrentAnalysis)

	// Contact-set changes
	result.NewContacts, result.DroppedContacts = contactChanges(previous, current)

	return result
}

// analysisMetadata extracts the comparison metadata from a report.
func analysisMetadata(report *model.AnalysisReport) AnalysisMetadata {
	meta := AnalysisMetadata{DateAnalyzed: report.DateAnalyzed}

	if report.SimpleReport != nil {
		meta.TotalFindings = len(report.SimpleReport.Findings)
		meta.CriticalCount = report.SimpleReport.CriticalCount
		meta.HighCount = report.SimpleReport.HighCount
		meta.MediumCount = report.SimpleReport.MediumCount
		meta.LowCount = report.SimpleReport.LowCount
		meta.InfoCount = report.SimpleReport.InfoCount
	}

	if report.Indicators != nil {
		meta.ActiveDays = report.Indicators.ActiveDays
		meta.ContactCount = report.Indicators.NumberOfContacts
		meta.InteractionCount = report.Indicators.NumberOfInteractions
	}

	return meta
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateSeverityChange calculates the change in severity between two analyses.
func calculateSeverityChange(previous, current AnalysisMetadata) SeverityChange {
	change := SeverityChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		change.Direction = severityDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = severityDirectionWorsened
	} else {
		change.Direction = severityDirectionUnchanged
	}

	return change
}

// contactChanges diffs the correspondent sets of two reports.
// New contacts in particular are investigation leads: someone the subject
// started talking to between the two analyses.
func contactChanges(previous, current *model.AnalysisReport) (newContacts, droppedContacts []string) {
	previousSet := contactSet(previous)
	currentSet := contactSet(current)

	for id := range currentSet {
		if !previousSet[id] {
			newContacts = append(newContacts, id)
		}
	}
	for id := range previousSet {
		if !currentSet[id] {
			droppedContacts = append(droppedContacts, id)
		}
	}

	sort.Strings(newContacts)
	sort.Strings(droppedContacts)
	return newContacts, droppedContacts
}

// contactSet collects the correspondent ids of a report's relationship section.
func contactSet(report *model.AnalysisReport) map[string]bool {
	set := make(map[string]bool)
	if report.Relationships == nil {
		return set
	}
	for _, contact := range report.Relationships.Contacts {
		set[contact.CorrespondentID] = true
	}
	return set
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Analysis Comparison: %s\n\n", result.Subject)

	// Severity change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Severity Status:** %s\n\n", formatSeverityDirection(result.SeverityChange.Direction))

	// Analysis metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousAnalysis.DateAnalyzed.Format("2006-01-02 15:04"),
		result.CurrentAnalysis.DateAnalyzed.Format("2006-01-02 15:04"))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousAnalysis.CriticalCount,
		result.CurrentAnalysis.CriticalCount,
		formatDelta(result.SeverityChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousAnalysis.HighCount,
		result.CurrentAnalysis.HighCount,
		formatDelta(result.SeverityChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousAnalysis.MediumCount,
		result.CurrentAnalysis.MediumCount,
		formatDelta(result.SeverityChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousAnalysis.LowCount,
		result.CurrentAnalysis.LowCount,
		formatDelta(result.SeverityChange.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousAnalysis.InfoCount,
		result.CurrentAnalysis.InfoCount,
		formatDelta(result.SeverityChange.InfoDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousAnalysis.TotalFindings,
		result.CurrentAnalysis.TotalFindings,
		formatDelta(result.CurrentAnalysis.TotalFindings-result.PreviousAnalysis.TotalFindings))
	fmt.Printf("| Active days | %d | %d | %s |\n",
		result.PreviousAnalysis.ActiveDays,
		result.CurrentAnalysis.ActiveDays,
		formatDelta(result.CurrentAnalysis.ActiveDays-result.PreviousAnalysis.ActiveDays))
	fmt.Printf("| Contacts | %d | %d | %s |\n",
		result.PreviousAnalysis.ContactCount,
		result.CurrentAnalysis.ContactCount,
		formatDelta(result.CurrentAnalysis.ContactCount-result.PreviousAnalysis.ContactCount))
	fmt.Printf("| Interactions | %d | %d | %s |\n",
		result.PreviousAnalysis.InteractionCount,
		result.CurrentAnalysis.InteractionCount,
		formatDelta(result.CurrentAnalysis.InteractionCount-result.PreviousAnalysis.InteractionCount))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Contact-set changes
	if len(result.NewContacts) > 0 {
		fmt.Printf("\n## New Contacts (%d)\n\n", len(result.NewContacts))
		for _, id := range result.NewContacts {
			fmt.Printf("- `%s`\n", id)
		}
	}
	if len(result.DroppedContacts) > 0 {
		fmt.Printf("\n## Dropped Contacts (%d)\n\n", len(result.DroppedContacts))
		for _, id := range result.DroppedContacts {
			fmt.Printf("- `%s`\n", id)
		}
	}

	// Cross-case hits
	if len(result.SharedHits) > 0 {
		fmt.Printf("\n## Cross-Case Contacts (%d)\n\n", len(result.SharedHits))
		for _, hit := range result.SharedHits {
			fmt.Printf("- `%s` also contacted by `%s` (%d interactions)\n",
				hit.CorrespondentID, hit.OtherSubject, hit.OtherInteractions)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Analysis Comparison: %s\n", result.Subject)
	fmt.Println(strings.Repeat("=", 60))

	// Severity change summary
	fmt.Printf("\nSeverity Status: %s\n", formatSeverityDirection(result.SeverityChange.Direction))

	// Analysis dates
	fmt.Printf("\nPrevious analysis: %s\n", result.PreviousAnalysis.DateAnalyzed.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current analysis:  %s\n", result.CurrentAnalysis.DateAnalyzed.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousAnalysis.CriticalCount, result.CurrentAnalysis.CriticalCount,
		formatDelta(result.SeverityChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousAnalysis.HighCount, result.CurrentAnalysis.HighCount,
		formatDelta(result.SeverityChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousAnalysis.MediumCount, result.CurrentAnalysis.MediumCount,
		formatDelta(result.SeverityChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousAnalysis.LowCount, result.CurrentAnalysis.LowCount,
		formatDelta(result.SeverityChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousAnalysis.InfoCount, result.CurrentAnalysis.InfoCount,
		formatDelta(result.SeverityChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousAnalysis.TotalFindings, result.CurrentAnalysis.TotalFindings,
		formatDelta(result.CurrentAnalysis.TotalFindings-result.PreviousAnalysis.TotalFindings))

	// Headline indicator movement
	fmt.Println("\nIndicator Changes:")
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Active days",
		result.PreviousAnalysis.ActiveDays, result.CurrentAnalysis.ActiveDays,
		formatDelta(result.CurrentAnalysis.ActiveDays-result.PreviousAnalysis.ActiveDays))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Contacts",
		result.PreviousAnalysis.ContactCount, result.CurrentAnalysis.ContactCount,
		formatDelta(result.CurrentAnalysis.ContactCount-result.PreviousAnalysis.ContactCount))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Interactions",
		result.PreviousAnalysis.InteractionCount, result.CurrentAnalysis.InteractionCount,
		formatDelta(result.CurrentAnalysis.InteractionCount-result.PreviousAnalysis.InteractionCount))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Contact-set changes
	if len(result.NewContacts) > 0 {
		fmt.Printf("\nNew Contacts (%d):\n", len(result.NewContacts))
		for _, id := range result.NewContacts {
			fmt.Printf("  [+] %s\n", id)
		}
	}
	if len(result.DroppedContacts) > 0 {
		fmt.Printf("\nDropped Contacts (%d):\n", len(result.DroppedContacts))
		for _, id := range result.DroppedContacts {
			fmt.Printf("  [-] %s\n", id)
		}
	}

	// Cross-case hits
	if len(result.SharedHits) > 0 {
		fmt.Printf("\nContacts shared with other stored subjects (%d):\n", len(result.SharedHits))
		for _, hit := range result.SharedHits {
			fmt.Printf("  [*] %s also contacted by %s (%d interactions)\n",
				hit.CorrespondentID, hit.OtherSubject, hit.OtherInteractions)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatSeverityDirection formats the severity change direction for display.
func formatSeverityDirection(direction string) string {
	switch direction {
	case severityDirectionImproved:
		return "IMPROVED (severity decreased)"
	case severityDirectionWorsened:
		return "WORSENED (severity increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
