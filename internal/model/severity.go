package model

// Severity represents the investigative significance of a finding.
// This allows sorting findings so that the patterns most likely to matter
// to a case reviewer surface first.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates contextual findings with no standalone significance.
	// Examples: short observation periods, records without location columns.
	// These qualify other findings rather than pointing at behavior themselves.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor observations worth a note in the case file.
	// Examples: duplicate rows in the export, antennas without coordinates.
	// These mostly concern evidence quality rather than subject behavior.
	SeverityLow

	// SeverityMedium indicates behavioral patterns that warrant review.
	// Examples: communication gaps, activity bursts, one-sided relationships.
	// These are common enough to have innocent explanations but often lead somewhere.
	SeverityMedium

	// SeverityHigh indicates patterns with strong investigative value.
	// Examples: co-location meetings, shared contacts between subjects,
	// extended dark periods consistent with device swaps.
	SeverityHigh

	// SeverityCritical indicates direct links between case subjects.
	// Examples: subjects communicating with each other, multiple subjects
	// gathered at one antenna. These findings usually reshape a case.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and follow-up recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding type
// because:
// 1. It allows updating assessments without modifying analyzer code
// 2. It provides a single source of truth for significance levels
// 3. It makes it easy to generate finding documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - Direct links between case subjects
	"direct_subject_contact": {
		Severity:       SeverityCritical,
		Impact:         "Two case subjects communicate with each other directly, establishing a concrete link between them.",
		Recommendation: "Pull the full interaction history between both subjects and map it against known case events.",
	},
	"multi_subject_gathering": {
		Severity:       SeverityCritical,
		Impact:         "Three or more case subjects were observed at the same antenna in the same time window, consistent with an in-person gathering.",
		Recommendation: "Cross-reference the gathering window with surveillance, financial, and travel records.",
	},

	// HIGH - Strong investigative value
	"colocation_meeting": {
		Severity:       SeverityHigh,
		Impact:         "Two subjects were at the same antenna during overlapping activity, consistent with an in-person meeting.",
		Recommendation: "Check whether communication between the subjects stops around the meeting time; in-person contact often replaces calls.",
	},
	"travel_pattern_match": {
		Severity:       SeverityHigh,
		Impact:         "Two subjects moved through the same antennas in the same order within a short window, consistent with traveling together.",
		Recommendation: "Review vehicle records and transit data for the matched transitions.",
	},
	"shared_contact": {
		Severity:       SeverityHigh,
		Impact:         "A correspondent is in contact with multiple case subjects and may act as an intermediary between them.",
		Recommendation: "Prioritize identifying the shared correspondent; request their records if the case threshold is met.",
	},
	"bridge_contact": {
		Severity:       SeverityHigh,
		Impact:         "A correspondent is the only observable link between two subjects who never communicate directly.",
		Recommendation: "Treat the bridge correspondent as a likely go-between and examine the timing of their interactions with each subject.",
	},
	"communication_chain": {
		Severity:       SeverityHigh,
		Impact:         "A message or call propagated between subjects through an intermediary within a short window, consistent with relayed instructions.",
		Recommendation: "Reconstruct the chain timeline and check whether it repeats around known case events.",
	},
	"communication_gap_extended": {
		Severity:       SeverityHigh,
		Impact:         "The line went silent for an extended period, consistent with travel, detention, or a switch to another device.",
		Recommendation: "Check for a replacement device active during the gap and correlate the gap with border or custody records.",
	},

	// MEDIUM - Behavioral patterns worth review
	"communication_gap": {
		Severity:       SeverityMedium,
		Impact:         "The line had an unusual silent period against its normal activity pattern.",
		Recommendation: "Compare the gap with the subject's routine (weekends, shifts) before reading significance into it.",
	},
	"activity_burst": {
		Severity:       SeverityMedium,
		Impact:         "A short window held far more interactions than the line's normal rate, a pattern that often surrounds coordination events.",
		Recommendation: "Review who was contacted during the burst and whether the burst precedes a known case event.",
	},
	"one_sided_relationship": {
		Severity:       SeverityMedium,
		Impact:         "All interactions with a frequent correspondent flow in one direction, a pattern common for dispatch or instruction lines.",
		Recommendation: "Identify the correspondent and check whether other subjects show the same one-sided pattern toward them.",
	},
	"dominant_contact": {
		Severity:       SeverityMedium,
		Impact:         "A single correspondent accounts for the majority of the subject's interactions.",
		Recommendation: "Identify the dominant correspondent first; the rest of the network is usually secondary to this link.",
	},
	"new_contact_surge": {
		Severity:       SeverityMedium,
		Impact:         "Many correspondents appear for the first time in a short span, a pattern seen when a device or role changes hands.",
		Recommendation: "Check whether established contacts ceased at the same time, which would support a handover.",
	},
	"ceased_contact": {
		Severity:       SeverityMedium,
		Impact:         "A previously frequent correspondent disappears from the records while the line stays active.",
		Recommendation: "Check the correspondent's own records if available; ceased contact can mean a fallout, an arrest, or a move to another channel.",
	},
	"high_outofnetwork_ratio": {
		Severity:       SeverityMedium,
		Impact:         "Most of the subject's calls go to correspondents with no records in the case file, so the visible network misses most activity.",
		Recommendation: "Consider requesting records for the top out-of-network correspondents.",
	},
	"isolated_ego_network": {
		Severity:       SeverityMedium,
		Impact:         "The subject's contacts never talk to each other, a hub-and-spoke shape typical of coordinator or dispatcher roles.",
		Recommendation: "Look at directionality toward the hub; coordinators usually initiate.",
	},

	// LOW - Evidence quality notes
	"ignored_records_high": {
		Severity:       SeverityLow,
		Impact:         "A notable share of rows in the export failed validation and were excluded, so indicators undercount activity.",
		Recommendation: "Ask the provider to re-export the data or document the excluded share in the case file.",
	},
	"duplicate_records": {
		Severity:       SeverityLow,
		Impact:         "The export contains exact duplicate rows, which inflate frequency-based indicators.",
		Recommendation: "Confirm with the provider whether duplicates are a billing artifact before relying on interaction counts.",
	},
	"missing_antenna_coordinates": {
		Severity:       SeverityLow,
		Impact:         "Some antennas referenced by the records have no coordinates, so location indicators cover only part of the activity.",
		Recommendation: "Request an updated antennas file covering the missing IDs.",
	},
	"nocturnal_activity": {
		Severity:       SeverityLow,
		Impact:         "The majority of the subject's activity happens at night, which deviates from typical usage and affects home inference.",
		Recommendation: "Verify the export's timezone before treating night activity as behavioral.",
	},

	// INFO - Context only
	"network_not_loaded": {
		Severity:       SeverityInfo,
		Impact:         "Network indicators are unavailable because correspondent files were not loaded for this run.",
		Recommendation: "Re-run with --network (or network: true in .cdrscan) so correspondent record files are loaded.",
	},
	"empty_network": {
		Severity:       SeverityInfo,
		Impact:         "Network loading was enabled but no correspondent record file was found, so network indicators are empty.",
		Recommendation: "Verify that correspondent files are named {correspondent_id}.csv and sit in the same directory as the subject's file.",
	},
	"missing_location_data": {
		Severity:       SeverityInfo,
		Impact:         "The export carries no location columns, so spatial and co-location analysis is unavailable.",
		Recommendation: "Request an export that includes antenna_id or coordinate columns if location matters to the case.",
	},
	"short_observation_period": {
		Severity:       SeverityInfo,
		Impact:         "The records span only a few days, so behavioral indicators are unstable.",
		Recommendation: "Treat week-level indicators as provisional until a longer export is available.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess significance.",
	}
}
