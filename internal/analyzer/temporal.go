package analyzer

import (
	"context"
	"fmt"

	"github.com/cdrscan/cdrscan/internal/model"
)

// TemporalAnalyzer flags unusual activity-over-time patterns: long silent
// periods, short windows of unusually dense activity, and lines whose
// activity is predominantly nocturnal.
//
// Design decision: We read the gaps and bursts already computed by the
// indicator step rather than recomputing them from records because:
//  1. The report is the single source of truth for what reviewers see
//  2. Thresholds for detection and for flagging are separate concerns
//  3. Analyzers stay cheap enough to re-run on stored reports
type TemporalAnalyzer struct {
	// gapHours is the minimum gap length, in hours, worth flagging.
	// Gaps shorter than this stay in the report but produce no finding.
	gapHours float64

	// extendedGapHours upgrades a gap to an extended-gap finding.
	// A month of silence on an otherwise active line usually means the
	// subject switched devices.
	extendedGapHours float64

	// nocturnalShare is the fraction of night-time interactions above
	// which the line counts as predominantly nocturnal.
	nocturnalShare float64

	// minNocturnalSample keeps tiny exports from being flagged nocturnal
	// on a handful of records.
	minNocturnalSample int
}

// NewTemporalAnalyzer creates a new TemporalAnalyzer.
func NewTemporalAnalyzer() *TemporalAnalyzer {
	return &TemporalAnalyzer{
		gapHours:           7 * 24,
		extendedGapHours:   30 * 24,
		nocturnalShare:     0.5,
		minNocturnalSample: 10,
	}
}

// Name returns the analyzer name.
func (a *TemporalAnalyzer) Name() string {
	return "temporal"
}

// Category returns the analyzer category.
func (a *TemporalAnalyzer) Category() string {
	return CategoryBehavior
}

// Analyze flags long gaps, activity bursts, and nocturnal dominance.
func (a *TemporalAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	if data.Report == nil {
		return findings, nil
	}

	if temporal := data.Report.Temporal; temporal != nil {
		findings = append(findings, a.gapFindings(temporal.Gaps, data.Subject)...)
		findings = append(findings, a.burstFindings(temporal.Bursts, data.Subject)...)
	}

	if indicators := data.Report.Indicators; indicators != nil {
		if indicators.NumberOfInteractions >= a.minNocturnalSample &&
			indicators.PercentNocturnal >= a.nocturnalShare {
			findings = append(findings, model.NewFinding(
				"nocturnal_activity",
				"Predominantly Nocturnal Activity",
				fmt.Sprintf("%.0f%% of the line's %d interactions fall between 19:00 and 07:00.",
					indicators.PercentNocturnal*100, indicators.NumberOfInteractions),
				fmt.Sprintf("%.0f%% nocturnal", indicators.PercentNocturnal*100),
				data.Subject,
			))
		}
	}

	return findings, nil
}

// gapFindings converts reportable gaps into findings.
// The gap window is used as the finding value so that distinct gaps of the
// same length survive deduplication.
func (a *TemporalAnalyzer) gapFindings(gaps []model.Gap, subject string) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, gap := range gaps {
		if gap.Hours < a.gapHours {
			continue
		}

		window := gap.Start.Format(model.DatetimeLayout) + " to " + gap.End.Format(model.DatetimeLayout)
		description := fmt.Sprintf("The line was silent for %.1f days.", gap.Hours/24)

		if gap.Hours >= a.extendedGapHours {
			findings = append(findings, model.NewFinding(
				"communication_gap_extended",
				"Extended Communication Gap",
				description,
				window,
				subject,
			))
			continue
		}

		findings = append(findings, model.NewFinding(
			"communication_gap",
			"Communication Gap",
			description,
			window,
			subject,
		))
	}

	return findings
}

// burstFindings converts detected bursts into findings.
func (a *TemporalAnalyzer) burstFindings(bursts []model.Burst, subject string) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, burst := range bursts {
		window := burst.Start.Format(model.DatetimeLayout) + " to " + burst.End.Format(model.DatetimeLayout)
		findings = append(findings, model.NewFinding(
			"activity_burst",
			"Activity Burst",
			fmt.Sprintf("%d interactions in one window, %.1fx the line's average rate.",
				burst.Count, burst.RateMultiple),
			window,
			subject,
		))
	}

	return findings
}
