package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cdrscan/cdrscan/internal/indicator"
	"github.com/cdrscan/cdrscan/internal/model"
)

// CrossSubjectAnalyzer flags links between case subjects: direct contact,
// shared and bridge correspondents, relayed communications, co-locations,
// and shared travel patterns.
//
// Design decision: The analyzer reads the case summary rather than the raw
// record sets because:
//  1. Pairwise work is done once per case, not once per subject
//  2. Findings stay consistent with the cross-subject report sections
//  3. Single-subject runs degrade to a clean no-op
//
// Travel pattern matching is the exception: it is pairwise against the
// subject only, so recomputing it here is cheaper than carrying every
// pair's matches in the case summary.
type CrossSubjectAnalyzer struct {
	// travelWindow bounds how far apart two arrivals may be to count as
	// traveling together.
	travelWindow time.Duration
}

// NewCrossSubjectAnalyzer creates a new CrossSubjectAnalyzer.
func NewCrossSubjectAnalyzer() *CrossSubjectAnalyzer {
	return &CrossSubjectAnalyzer{
		travelWindow: indicator.DefaultTravelWindow,
	}
}

// Name returns the analyzer name.
func (a *CrossSubjectAnalyzer) Name() string {
	return "cross_subject"
}

// Category returns the analyzer category.
func (a *CrossSubjectAnalyzer) Category() string {
	return CategoryNetwork
}

// Analyze flags the case links that involve the current subject.
// Without a case summary there is nothing cross-subject to do.
func (a *CrossSubjectAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	if data.Case == nil {
		return findings, nil
	}

	findings = append(findings, a.directContactFindings(data)...)
	findings = append(findings, a.sharedContactFindings(data)...)
	findings = append(findings, a.bridgeFindings(data)...)
	findings = append(findings, a.chainFindings(data)...)
	findings = append(findings, a.meetingFindings(data)...)
	findings = append(findings, a.gatheringFindings(data)...)
	findings = append(findings, a.travelFindings(data)...)

	return findings, nil
}

// directContactFindings flags other subjects the current subject
// communicates with directly.
func (a *CrossSubjectAnalyzer) directContactFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)
	matrix := data.Case.CommunicationMatrix

	for _, other := range data.Case.Subjects {
		if other == data.Subject {
			continue
		}

		toOther := matrix[data.Subject][other]
		fromOther := matrix[other][data.Subject]
		if toOther == 0 && fromOther == 0 {
			continue
		}

		findings = append(findings, model.NewFinding(
			"direct_subject_contact",
			"Direct Contact Between Subjects",
			fmt.Sprintf("%s and %s communicate directly: %d interactions initiated by %s, %d by %s.",
				data.Subject, other, toOther, data.Subject, fromOther, other),
			other,
			data.Subject,
		))
	}

	return findings
}

// sharedContactFindings flags correspondents in contact with the current
// subject and at least one other subject.
func (a *CrossSubjectAnalyzer) sharedContactFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, shared := range data.Case.SharedContacts {
		if !containsString(shared.Subjects, data.Subject) {
			continue
		}

		findings = append(findings, model.NewFinding(
			"shared_contact",
			"Shared Contact",
			fmt.Sprintf("%s is in contact with %s (%d interactions across subjects).",
				shared.CorrespondentID, strings.Join(shared.Subjects, ", "), shared.Interactions),
			shared.CorrespondentID,
			data.Subject,
		))
	}

	return findings
}

// bridgeFindings flags correspondents forming the only observable link
// between the current subject and another subject.
func (a *CrossSubjectAnalyzer) bridgeFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, bridge := range data.Case.Bridges {
		if bridge.SubjectA != data.Subject && bridge.SubjectB != data.Subject {
			continue
		}

		findings = append(findings, model.NewFinding(
			"bridge_contact",
			"Bridge Contact",
			fmt.Sprintf("%s and %s never communicate directly but both are in contact with %s.",
				bridge.SubjectA, bridge.SubjectB, bridge.CorrespondentID),
			fmt.Sprintf("%s links %s and %s", bridge.CorrespondentID, bridge.SubjectA, bridge.SubjectB),
			data.Subject,
		))
	}

	return findings
}

// chainFindings flags relayed communications involving the current subject.
func (a *CrossSubjectAnalyzer) chainFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, chain := range data.Case.Chains {
		if chain.From != data.Subject && chain.Via != data.Subject && chain.To != data.Subject {
			continue
		}

		findings = append(findings, model.NewFinding(
			"communication_chain",
			"Communication Chain",
			fmt.Sprintf("%s contacted %s at %s; %s then contacted %s at %s.",
				chain.From, chain.Via, chain.FirstHop.Format(model.DatetimeLayout),
				chain.Via, chain.To, chain.SecondHop.Format(model.DatetimeLayout)),
			fmt.Sprintf("%s -> %s -> %s at %s",
				chain.From, chain.Via, chain.To, chain.FirstHop.Format(model.DatetimeLayout)),
			data.Subject,
		))
	}

	return findings
}

// meetingFindings flags co-locations between the current subject and
// another subject.
func (a *CrossSubjectAnalyzer) meetingFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, meeting := range data.Case.Meetings {
		var other string
		switch data.Subject {
		case meeting.SubjectA:
			other = meeting.SubjectB
		case meeting.SubjectB:
			other = meeting.SubjectA
		default:
			continue
		}

		findings = append(findings, model.NewFinding(
			"colocation_meeting",
			"Co-Location Meeting",
			fmt.Sprintf("%s and %s were both at %s between %s and %s (%s confidence).",
				data.Subject, other, meeting.PositionKey,
				meeting.Start.Format(model.DatetimeLayout), meeting.End.Format(model.DatetimeLayout),
				meeting.Confidence),
			fmt.Sprintf("%s at %s on %s", other, meeting.PositionKey, meeting.Start.Format(model.DatetimeLayout)),
			data.Subject,
		))
	}

	return findings
}

// gatheringFindings flags windows where the current subject shared an
// antenna with two or more other subjects.
func (a *CrossSubjectAnalyzer) gatheringFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, gathering := range data.Case.Gatherings {
		if !containsString(gathering.Subjects, data.Subject) {
			continue
		}

		findings = append(findings, model.NewFinding(
			"multi_subject_gathering",
			"Multi-Subject Gathering",
			fmt.Sprintf("%d subjects (%s) were at %s between %s and %s.",
				len(gathering.Subjects), strings.Join(gathering.Subjects, ", "), gathering.PositionKey,
				gathering.Start.Format(model.DatetimeLayout), gathering.End.Format(model.DatetimeLayout)),
			fmt.Sprintf("%s on %s", gathering.PositionKey, gathering.Start.Format(model.DatetimeLayout)),
			data.Subject,
		))
	}

	return findings
}

// travelFindings flags transitions the current subject and another subject
// performed in the same direction within the travel window. Repeated hits
// on the same route collapse to one finding per pair and route.
func (a *CrossSubjectAnalyzer) travelFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	if data.User == nil {
		return findings
	}

	seen := make(map[string]bool)
	for _, other := range data.Users {
		if other == nil || other.ID == data.Subject {
			continue
		}

		for _, match := range indicator.TravelPatternMatches(data.User, other, a.travelWindow) {
			key := other.ID + "|" + match.From + "|" + match.To
			if seen[key] {
				continue
			}
			seen[key] = true

			findings = append(findings, model.NewFinding(
				"travel_pattern_match",
				"Shared Travel Pattern",
				fmt.Sprintf("%s and %s both moved %s -> %s within %.0f minutes (%s and %s).",
					data.Subject, other.ID, match.From, match.To, match.DeltaSeconds/60,
					match.TimeA.Format(model.DatetimeLayout), match.TimeB.Format(model.DatetimeLayout)),
				fmt.Sprintf("%s: %s -> %s", other.ID, match.From, match.To),
				data.Subject,
			))
		}
	}

	return findings
}

// containsString reports whether the slice contains the value.
func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
