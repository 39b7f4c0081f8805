package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisReport is the main analysis result structure.
// It contains everything computed for one subject during an analysis run.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. Section sub-structs group
// related results for easier access.
type AnalysisReport struct {
	// === Basic Information ===

	// ReportID uniquely identifies this analysis run.
	ReportID string `json:"report_id"`

	// Subject is the analyzed subject identifier.
	Subject string `json:"subject"`

	// DateAnalyzed is the timestamp when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// === Source Data ===

	// SourcePath is the path of the subject's record file.
	SourcePath string `json:"source_path,omitempty"`

	// SourceDigest is the SHA3-256 digest of the record file, recorded so a
	// report can always be matched to the exact evidence file it came from.
	SourceDigest string `json:"source_digest,omitempty"`

	// Sources lists every evidence file read during the run, including the
	// antennas, mapping, and ego-network files.
	Sources []SourceFile `json:"sources,omitempty"`

	// Ingest summarizes what was loaded and what was rejected.
	Ingest *IngestStats `json:"ingest,omitempty"`

	// === Data Presence Flags ===
	// These flags indicate which kinds of data the export actually carries.
	// Indicators that depend on absent data are skipped, not zeroed.

	// HasCalls is true if at least one call record was loaded.
	HasCalls bool `json:"has_calls"`

	// HasTexts is true if at least one text record was loaded.
	HasTexts bool `json:"has_texts"`

	// HasAntennas is true if at least one record carries location information.
	HasAntennas bool `json:"has_antennas"`

	// HasHome is true if a home position could be inferred.
	HasHome bool `json:"has_home"`

	// HasNetwork is true if network loading was requested and at least one
	// correspondent file was found.
	HasNetwork bool `json:"has_network"`

	// === Working Data ===

	// User is the loaded subject. Populated by the load step and consumed by
	// later steps.
	User *User `json:"-"` // Excluded from JSON due to size

	// === Sections ===

	// Indicators contains the behavioral indicators.
	Indicators *IndicatorReport `json:"indicators,omitempty"`

	// Network contains the ego network indicators.
	Network *NetworkReport `json:"network,omitempty"`

	// Relationships contains per-correspondent relationship scores.
	Relationships *RelationshipReport `json:"relationships,omitempty"`

	// Temporal contains activity-over-time results.
	Temporal *TemporalReport `json:"temporal,omitempty"`

	// Location contains spatial results.
	Location *LocationReport `json:"location,omitempty"`

	// KeyDates contains activity snapshots around configured dates of
	// interest, in configuration order.
	KeyDates []KeyDateReport `json:"key_dates,omitempty"`

	// SimpleReport contains the summarized findings for human-readable output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// === Analysis State ===

	// TimedOut is true if the analysis was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that were actually performed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during analysis.
	// Only set if the analysis failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// IngestStats summarizes the ingest of a subject's record file.
type IngestStats struct {
	// RecordCount is the number of valid records loaded.
	RecordCount int `json:"record_count"`

	// IgnoredRecords counts rejected rows by failing field.
	IgnoredRecords IgnoredRecords `json:"ignored_records"`

	// DuplicateRecords counts exact duplicate rows (kept, but reported).
	DuplicateRecords int `json:"duplicate_records"`

	// Start is the timestamp of the earliest record.
	Start time.Time `json:"start,omitempty"`

	// End is the timestamp of the latest record.
	End time.Time `json:"end,omitempty"`

	// AntennaCount is the number of antennas with known coordinates.
	AntennaCount int `json:"antenna_count"`

	// NetworkFilesLoaded is the number of correspondent files found.
	NetworkFilesLoaded int `json:"network_files_loaded"`

	// NetworkFilesMissing is the number of correspondents without a file.
	NetworkFilesMissing int `json:"network_files_missing"`
}

// Stats holds the summary statistics of a distribution.
// Mirrors the summary shape used throughout the indicator suite.
type Stats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// IndicatorReport contains the behavioral indicators for one subject.
type IndicatorReport struct {
	// ActiveDays is the number of distinct days with at least one record.
	ActiveDays int `json:"active_days"`

	// NumberOfContacts is the number of distinct correspondents.
	NumberOfContacts int `json:"number_of_contacts"`

	// NumberOfInteractions counts all records.
	NumberOfInteractions int `json:"number_of_interactions"`

	// NumberOfInteractionsIn counts received records.
	NumberOfInteractionsIn int `json:"number_of_interactions_in"`

	// NumberOfInteractionsOut counts initiated records.
	NumberOfInteractionsOut int `json:"number_of_interactions_out"`

	// CallDuration summarizes call lengths in seconds.
	CallDuration Stats `json:"call_duration"`

	// PercentNocturnal is the fraction of records during night hours.
	PercentNocturnal float64 `json:"percent_nocturnal"`

	// PercentInitiated is the fraction of records the subject initiated.
	PercentInitiated float64 `json:"percent_initiated"`

	// EntropyOfContacts is the Shannon entropy of interaction counts per contact.
	EntropyOfContacts float64 `json:"entropy_of_contacts"`

	// BalanceOfContacts summarizes the per-contact fraction of outgoing
	// interactions.
	BalanceOfContacts Stats `json:"balance_of_contacts"`

	// InteractionsPerContact summarizes interaction counts per contact.
	InteractionsPerContact Stats `json:"interactions_per_contact"`

	// InterEventTime summarizes seconds between consecutive records.
	InterEventTime Stats `json:"inter_event_time"`

	// PercentParetoInteractions is the fraction of contacts accounting for
	// 80% of interactions.
	PercentParetoInteractions float64 `json:"percent_pareto_interactions"`

	// NumberOfAntennas is the number of distinct positions observed.
	NumberOfAntennas int `json:"number_of_antennas"`

	// EntropyOfAntennas is the Shannon entropy of visit counts per position.
	EntropyOfAntennas float64 `json:"entropy_of_antennas"`

	// PercentAtHome is the fraction of located records at the home antenna.
	PercentAtHome float64 `json:"percent_at_home"`

	// RadiusOfGyration is the typical distance from the activity centroid, in km.
	RadiusOfGyration float64 `json:"radius_of_gyration"`

	// FrequentAntennas is the number of antennas accounting for 80% of
	// located records.
	FrequentAntennas int `json:"frequent_antennas"`

	// Weekly holds the week-by-week distribution of every scalar indicator,
	// keyed by indicator name.
	Weekly map[string]Stats `json:"weekly,omitempty"`
}

// RelationshipReport ranks the subject's correspondents.
type RelationshipReport struct {
	// Contacts is sorted by Strength, strongest first.
	Contacts []ContactSummary `json:"contacts,omitempty"`

	// FirstOfDay counts, per correspondent, the days on which they were the
	// subject's first interaction. First contacts of the day tend to be the
	// closest relationships.
	FirstOfDay map[string]int `json:"first_of_day,omitempty"`

	// LastOfDay counts, per correspondent, the days on which they were the
	// subject's last interaction.
	LastOfDay map[string]int `json:"last_of_day,omitempty"`
}

// ContactSummary aggregates one correspondent relationship.
type ContactSummary struct {
	// CorrespondentID identifies the correspondent.
	CorrespondentID string `json:"correspondent_id"`

	// Name is the display name when an identity mapping resolves the ID.
	Name string `json:"name,omitempty"`

	// Strength scores the relationship: 0.6 * normalized interaction count
	// + 0.4 * normalized total call duration, against the subject's maxima.
	Strength float64 `json:"strength"`

	// Reciprocity is min(in, out) / max(in, out). 0 means entirely one-sided.
	Reciprocity float64 `json:"reciprocity"`

	// InitiationRatio is the fraction of interactions the subject initiated.
	InitiationRatio float64 `json:"initiation_ratio"`

	// Calls is the number of call records with this correspondent.
	Calls int `json:"calls"`

	// Texts is the number of text records with this correspondent.
	Texts int `json:"texts"`

	// Incoming is the number of received interactions.
	Incoming int `json:"incoming"`

	// Outgoing is the number of initiated interactions.
	Outgoing int `json:"outgoing"`

	// TotalDuration is the summed call duration in seconds.
	TotalDuration int `json:"total_duration"`

	// FirstSeen is the first interaction with this correspondent.
	FirstSeen time.Time `json:"first_seen"`

	// LastSeen is the last interaction with this correspondent.
	LastSeen time.Time `json:"last_seen"`
}

// TemporalReport contains activity-over-time results.
type TemporalReport struct {
	// HourlyProfile counts interactions per hour of day (0-23).
	HourlyProfile [24]int `json:"hourly_profile"`

	// DailyCounts maps dates (YYYY-MM-DD) to interaction counts.
	DailyCounts map[string]int `json:"daily_counts,omitempty"`

	// Gaps lists silent periods longer than the gap threshold.
	Gaps []Gap `json:"gaps,omitempty"`

	// Bursts lists windows of unusually dense activity.
	Bursts []Burst `json:"bursts,omitempty"`

	// ContactInterEvent summarizes, per correspondent, the seconds between
	// consecutive interactions with that correspondent. Regular rhythms
	// (low std against a large mean) suggest scheduled contact.
	ContactInterEvent map[string]Stats `json:"contact_inter_event,omitempty"`
}

// Gap is a silent period between two consecutive records.
type Gap struct {
	// Start is the last record before the silence.
	Start time.Time `json:"start"`

	// End is the first record after the silence.
	End time.Time `json:"end"`

	// Hours is the gap length.
	Hours float64 `json:"hours"`
}

// Burst is a window of unusually dense activity.
type Burst struct {
	// Start is the first record of the burst.
	Start time.Time `json:"start"`

	// End is the last record of the burst.
	End time.Time `json:"end"`

	// Count is the number of records in the burst window.
	Count int `json:"count"`

	// RateMultiple is how many times the line's average rate the burst reached.
	RateMultiple float64 `json:"rate_multiple"`
}

// LocationReport contains spatial results.
type LocationReport struct {
	// Home is the inferred home position.
	Home Position `json:"home"`

	// FrequentLocations ranks positions by visit count, most visited first.
	FrequentLocations []LocationCount `json:"frequent_locations,omitempty"`

	// UnusualLocations lists positions visited at most twice.
	UnusualLocations []LocationCount `json:"unusual_locations,omitempty"`

	// Transitions lists observed movements between consecutive positions.
	Transitions []Transition `json:"transitions,omitempty"`

	// TimeAtLocations estimates hours spent per position key.
	TimeAtLocations map[string]float64 `json:"time_at_locations,omitempty"`
}

// LocationCount is a position with its visit count.
type LocationCount struct {
	// Key is the position grouping key (antenna ID or rounded coordinates).
	Key string `json:"key"`

	// Position carries coordinates when known.
	Position Position `json:"position"`

	// Visits is the number of records observed at this position.
	Visits int `json:"visits"`
}

// KeyDateReport is the activity snapshot around one configured date of
// interest: what the line did shortly before and after, who was contacted,
// and where the subject most likely was.
type KeyDateReport struct {
	// Label names the date as configured (e.g. "robbery", "arrest").
	Label string `json:"label"`

	// At is the configured moment.
	At time.Time `json:"at"`

	// InteractionsBefore counts records in the window before the moment.
	InteractionsBefore int `json:"interactions_before"`

	// InteractionsAfter counts records in the window after the moment.
	InteractionsAfter int `json:"interactions_after"`

	// ContactsBefore maps correspondent IDs to their interaction count in
	// the window before the moment.
	ContactsBefore map[string]int `json:"contacts_before,omitempty"`

	// ContactsAfter maps correspondent IDs to their interaction count in
	// the window after the moment.
	ContactsAfter map[string]int `json:"contacts_after,omitempty"`

	// FirstContactAfter is the first correspondent contacted after the
	// moment. Empty when the line stayed silent.
	FirstContactAfter string `json:"first_contact_after,omitempty"`

	// FirstContactAt is when that first contact happened.
	FirstContactAt time.Time `json:"first_contact_at,omitempty"`

	// Position is the estimated position at the moment, when a located
	// record falls inside the fix window.
	Position Position `json:"position"`

	// PositionConfidence grades the fix by how far the nearest located
	// record is from the moment: "high", "medium", or "low".
	// Empty when no fix was possible.
	PositionConfidence string `json:"position_confidence,omitempty"`
}

// Transition is a movement between two consecutive observed positions.
type Transition struct {
	// From is the position key of the earlier record.
	From string `json:"from"`

	// To is the position key of the later record.
	To string `json:"to"`

	// Count is how many times this transition was observed.
	Count int `json:"count"`

	// DistanceKm is the great-circle distance, -1 when coordinates are unknown.
	DistanceKm float64 `json:"distance_km"`
}

// NewAnalysisReport creates a new report for the given subject.
// Each report gets a fresh UUID so runs can be referenced individually
// in the history database and in compare output.
func NewAnalysisReport(subject string) *AnalysisReport {
	return &AnalysisReport{
		ReportID:     uuid.New().String(),
		Subject:      subject,
		DateAnalyzed: time.Now(),
	}
}

// AddFinding adds a finding to the simple report.
// If the simple report doesn't exist, it initializes one.
//
// Design decision: We store findings in SimpleReport rather than
// a separate findings slice because:
// 1. SimpleReport already has finding aggregation logic
// 2. Avoids duplication of findings data
// 3. Keeps the main report focused on computed results
func (r *AnalysisReport) AddFinding(finding Finding) {
	if r.SimpleReport == nil {
		r.SimpleReport = &SimpleReport{
			Subject:      r.Subject,
			DateAnalyzed: r.DateAnalyzed,
			Findings:     make([]Finding, 0),
		}
	}

	// Keep record count in sync when SimpleReport is first created via AddFinding.
	if r.SimpleReport.RecordCount == 0 && r.Ingest != nil {
		r.SimpleReport.RecordCount = r.Ingest.RecordCount
	}

	// Avoid duplicates based on type, value, and location
	for _, f := range r.SimpleReport.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.SimpleReport.Findings = append(r.SimpleReport.Findings, finding)

	// Update severity counts
	switch finding.Severity {
	case SeverityCritical:
		r.SimpleReport.CriticalCount++
	case SeverityHigh:
		r.SimpleReport.HighCount++
	case SeverityMedium:
		r.SimpleReport.MediumCount++
	case SeverityLow:
		r.SimpleReport.LowCount++
	case SeverityInfo:
		r.SimpleReport.InfoCount++
	}
}
