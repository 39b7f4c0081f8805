package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cdrscan/cdrscan/internal/indicator"
	"github.com/cdrscan/cdrscan/internal/model"
)

// RelationshipAnalyzer flags unusual correspondent relationships: entirely
// one-sided lines, a single correspondent dominating the traffic, surges of
// first-time contacts, and frequent correspondents that go quiet.
type RelationshipAnalyzer struct {
	// minOneSidedInteractions is how many interactions a fully one-sided
	// relationship needs before it is flagged. A couple of unanswered
	// calls is normal; dozens are not.
	minOneSidedInteractions int

	// dominantShare is the fraction of total interactions above which a
	// single correspondent counts as dominant.
	dominantShare float64

	// minDominantSample keeps small exports from producing dominant-contact
	// findings on a handful of records.
	minDominantSample int

	// surgeNewContacts is how many first-time correspondents must appear
	// in one ISO week to count as a surge. The week containing the first
	// record is skipped since every contact is new then.
	surgeNewContacts int

	// ceasedMinInteractions is how frequent a correspondent must have been
	// before their disappearance is worth flagging.
	ceasedMinInteractions int

	// ceasedQuietPeriod is how long a frequent correspondent must be absent
	// before the line's last record to count as ceased.
	ceasedQuietPeriod time.Duration
}

// NewRelationshipAnalyzer creates a new RelationshipAnalyzer.
func NewRelationshipAnalyzer() *RelationshipAnalyzer {
	return &RelationshipAnalyzer{
		minOneSidedInteractions: 10,
		dominantShare:           0.5,
		minDominantSample:       10,
		surgeNewContacts:        5,
		ceasedMinInteractions:   10,
		ceasedQuietPeriod:       30 * 24 * time.Hour,
	}
}

// Name returns the analyzer name.
func (a *RelationshipAnalyzer) Name() string {
	return "relationship"
}

// Category returns the analyzer category.
func (a *RelationshipAnalyzer) Category() string {
	return CategoryBehavior
}

// Analyze flags one-sided relationships, dominant contacts, new contact
// surges, and ceased contacts.
func (a *RelationshipAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	if data.Report == nil {
		return findings, nil
	}

	if relationships := data.Report.Relationships; relationships != nil {
		findings = append(findings, a.oneSidedFindings(relationships.Contacts, data)...)
		findings = append(findings, a.dominantContactFindings(relationships.Contacts, data)...)
		findings = append(findings, a.ceasedContactFindings(relationships.Contacts, data)...)
	}

	findings = append(findings, a.surgeFindings(data)...)

	return findings, nil
}

// oneSidedFindings flags frequent correspondents whose traffic flows
// entirely in one direction.
func (a *RelationshipAnalyzer) oneSidedFindings(contacts []model.ContactSummary, data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	for _, contact := range contacts {
		total := contact.Incoming + contact.Outgoing
		if contact.Reciprocity != 0 || total < a.minOneSidedInteractions {
			continue
		}

		direction := "incoming"
		if contact.Outgoing > 0 {
			direction = "outgoing"
		}

		findings = append(findings, model.NewFinding(
			"one_sided_relationship",
			"One-Sided Relationship",
			fmt.Sprintf("All %d interactions with %s are %s.",
				total, displayName(data, contact), direction),
			contact.CorrespondentID,
			data.Subject,
		))
	}

	return findings
}

// dominantContactFindings flags a correspondent holding the majority of the
// line's traffic. Contacts are sorted by strength, but dominance is measured
// on raw interaction counts.
func (a *RelationshipAnalyzer) dominantContactFindings(contacts []model.ContactSummary, data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	indicators := data.Report.Indicators
	if indicators == nil || len(contacts) < 2 {
		return findings
	}

	total := indicators.NumberOfInteractions
	if total < a.minDominantSample {
		return findings
	}

	for _, contact := range contacts {
		share := float64(contact.Incoming+contact.Outgoing) / float64(total)
		if share <= a.dominantShare {
			continue
		}

		findings = append(findings, model.NewFinding(
			"dominant_contact",
			"Dominant Contact",
			fmt.Sprintf("%s accounts for %.0f%% of the line's %d interactions.",
				displayName(data, contact), share*100, total),
			contact.CorrespondentID,
			data.Subject,
		))
	}

	return findings
}

// surgeFindings flags ISO weeks in which many correspondents appear for the
// first time. The week of the first record is skipped because every contact
// is new by definition there.
func (a *RelationshipAnalyzer) surgeFindings(data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	if data.User == nil || len(data.User.Records) == 0 {
		return findings
	}

	firstWeek := indicator.WeekOf(data.User.Records[0].Datetime)

	newPerWeek := make(map[string]int)
	for _, first := range indicator.ContactFirstAppearance(data.User.Records) {
		newPerWeek[indicator.WeekOf(first)]++
	}

	weeks := make([]string, 0, len(newPerWeek))
	for week := range newPerWeek {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	for _, week := range weeks {
		if week == firstWeek || newPerWeek[week] < a.surgeNewContacts {
			continue
		}

		findings = append(findings, model.NewFinding(
			"new_contact_surge",
			"New Contact Surge",
			fmt.Sprintf("%d correspondents appear for the first time in week %s.",
				newPerWeek[week], week),
			week,
			data.Subject,
		))
	}

	return findings
}

// ceasedContactFindings flags frequent correspondents that disappear from
// the records while the line stays active.
func (a *RelationshipAnalyzer) ceasedContactFindings(contacts []model.ContactSummary, data *AnalysisData) []model.Finding {
	findings := make([]model.Finding, 0)

	if data.User == nil || len(data.User.Records) == 0 {
		return findings
	}

	_, lineEnd := data.User.DateRange()
	lastSeen := indicator.ContactLastAppearance(data.User.Records)

	for _, contact := range contacts {
		if contact.Incoming+contact.Outgoing < a.ceasedMinInteractions {
			continue
		}

		last, ok := lastSeen[contact.CorrespondentID]
		if !ok || lineEnd.Sub(last) < a.ceasedQuietPeriod {
			continue
		}

		findings = append(findings, model.NewFinding(
			"ceased_contact",
			"Ceased Contact",
			fmt.Sprintf("%s (%d interactions) last appears on %s, %.0f days before the line's last record.",
				displayName(data, contact), contact.Incoming+contact.Outgoing,
				last.Format(model.DatetimeLayout), lineEnd.Sub(last).Hours()/24),
			contact.CorrespondentID,
			data.Subject,
		))
	}

	return findings
}

// displayName resolves a contact to its mapped name when one exists,
// falling back to the correspondent ID.
func displayName(data *AnalysisData, contact model.ContactSummary) string {
	if contact.Name != "" {
		return contact.Name
	}
	if data.User != nil {
		return data.User.DisplayName(contact.CorrespondentID)
	}
	return contact.CorrespondentID
}
