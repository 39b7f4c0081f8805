package analyzer

import (
	"context"
	"fmt"

	"github.com/cdrscan/cdrscan/internal/model"
)

// QualityAnalyzer flags evidence quality issues: rejected and duplicate
// rows, missing location data, antennas without coordinates, and exports
// too short for stable indicators.
//
// Quality findings do not point at subject behavior. They tell the reviewer
// how far to trust the behavioral findings sitting next to them.
type QualityAnalyzer struct {
	// ignoredShare is the rejected-row fraction above which the export
	// quality is flagged.
	ignoredShare float64

	// minObservation is the record span below which indicators are
	// considered unstable.
	minObservationDays float64
}

// NewQualityAnalyzer creates a new QualityAnalyzer.
func NewQualityAnalyzer() *QualityAnalyzer {
	return &QualityAnalyzer{
		ignoredShare:       0.1,
		minObservationDays: 7,
	}
}

// Name returns the analyzer name.
func (a *QualityAnalyzer) Name() string {
	return "quality"
}

// Category returns the analyzer category.
func (a *QualityAnalyzer) Category() string {
	return CategoryQuality
}

// Analyze flags export quality issues.
func (a *QualityAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	if data.Report != nil && data.Report.Ingest != nil {
		findings = append(findings, a.ingestFindings(data)...)
	}

	if data.User != nil && len(data.User.Records) > 0 {
		findings = append(findings, a.locationFindings(data)...)
		findings = append(findings, a.observationFindings(data)...)
	}

	return findings, nil
}

// ingestFindings flags high rejection rates and duplicate rows.
func (a *QualityAnalyzer) ingestFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)
	ingest := data.Report.Ingest

	total := ingest.RecordCount + ingest.IgnoredRecords.All
	if total > 0 {
		share := float64(ingest.IgnoredRecords.All) / float64(total)
		if share > a.ignoredShare {
			description := fmt.Sprintf("%d of %d rows (%.0f%%) failed validation and were excluded.",
				ingest.IgnoredRecords.All, total, share*100)
			if field, count := dominantFailure(ingest.IgnoredRecords); count > 0 {
				description += fmt.Sprintf(" Most failures are invalid %s values (%d rows).", field, count)
			}

			findings = append(findings, model.NewFinding(
				"ignored_records_high",
				"High Rejected Row Share",
				description,
				fmt.Sprintf("%d rejected rows", ingest.IgnoredRecords.All),
				data.Subject,
			))
		}
	}

	if ingest.DuplicateRecords > 0 {
		findings = append(findings, model.NewFinding(
			"duplicate_records",
			"Duplicate Rows In Export",
			fmt.Sprintf("%d exact duplicate rows were found. Duplicates are kept, so counts may be inflated.",
				ingest.DuplicateRecords),
			fmt.Sprintf("%d duplicate rows", ingest.DuplicateRecords),
			data.Subject,
		))
	}

	return findings
}

// locationFindings flags records without location data and antennas that
// lack coordinates.
func (a *QualityAnalyzer) locationFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	located := false
	missingCoordinates := make(map[string]bool)
	for _, r := range data.User.Records {
		if !r.Position.Known() {
			continue
		}
		located = true
		if r.Position.AntennaID != "" && !r.Position.HasCoordinates {
			missingCoordinates[r.Position.AntennaID] = true
		}
	}

	if !located {
		findings = append(findings, model.NewFinding(
			"missing_location_data",
			"No Location Data",
			"No record carries an antenna ID or coordinates, so spatial indicators were skipped.",
			data.Subject,
			data.Subject,
		))
		return findings
	}

	if len(missingCoordinates) > 0 {
		findings = append(findings, model.NewFinding(
			"missing_antenna_coordinates",
			"Antennas Without Coordinates",
			fmt.Sprintf("%d antennas referenced by the records have no coordinates, so distance-based indicators cover only part of the activity.",
				len(missingCoordinates)),
			fmt.Sprintf("%d antennas", len(missingCoordinates)),
			data.Subject,
		))
	}

	return findings
}

// observationFindings flags exports that span too few days for stable
// indicators.
func (a *QualityAnalyzer) observationFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	start, end := data.User.DateRange()
	days := end.Sub(start).Hours() / 24
	if days < a.minObservationDays {
		findings = append(findings, model.NewFinding(
			"short_observation_period",
			"Short Observation Period",
			fmt.Sprintf("The records span only %.1f days.", days),
			fmt.Sprintf("%.1f days", days),
			data.Subject,
		))
	}

	return findings
}

// dominantFailure returns the validation field with the most rejections.
func dominantFailure(ignored model.IgnoredRecords) (string, int) {
	fields := []struct {
		name  string
		count int
	}{
		{"datetime", ignored.Datetime},
		{"interaction", ignored.Interaction},
		{"direction", ignored.Direction},
		{"correspondent_id", ignored.CorrespondentID},
		{"call_duration", ignored.CallDuration},
		{"location", ignored.Location},
	}

	best, count := "", 0
	for _, f := range fields {
		if f.count > count {
			best, count = f.name, f.count
		}
	}
	return best, count
}
