package model

import "time"

// CaseSummary holds the results computed across all subjects of a
// multi-subject run. Per-subject reports stay self-contained; everything
// that needs more than one subject's records lands here.
type CaseSummary struct {
	// Subjects lists the analyzed subject IDs in input order.
	Subjects []string `json:"subjects"`

	// DateAnalyzed is when the cross-subject pass ran.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// CommunicationMatrix counts direct interactions between subjects:
	// CommunicationMatrix[a][b] is how many of a's records name b.
	CommunicationMatrix map[string]map[string]int `json:"communication_matrix,omitempty"`

	// DegreeCentrality maps each subject to the fraction of other subjects
	// they communicate with directly.
	DegreeCentrality map[string]float64 `json:"degree_centrality,omitempty"`

	// SharedContacts lists correspondents in contact with two or more subjects.
	SharedContacts []SharedContact `json:"shared_contacts,omitempty"`

	// Bridges lists correspondents that are the only observable link between
	// a pair of subjects.
	Bridges []BridgeContact `json:"bridges,omitempty"`

	// Chains lists interactions that propagated between subjects through an
	// intermediary within the chain window.
	Chains []CommunicationChain `json:"chains,omitempty"`

	// Volume aggregates per-pair traffic between subjects.
	Volume []PairVolume `json:"volume,omitempty"`

	// Timeline buckets pairwise subject activity into 24h windows.
	Timeline []TimelineBucket `json:"timeline,omitempty"`

	// Meetings lists co-location meetings detected between subject pairs.
	Meetings []Meeting `json:"meetings,omitempty"`

	// Gatherings lists windows where three or more subjects shared an antenna.
	Gatherings []Gathering `json:"gatherings,omitempty"`
}

// SharedContact is a correspondent reachable from several subjects.
type SharedContact struct {
	// CorrespondentID identifies the shared correspondent.
	CorrespondentID string `json:"correspondent_id"`

	// Subjects lists the subjects in contact with the correspondent, sorted.
	Subjects []string `json:"subjects"`

	// Interactions is the total interaction count across those subjects.
	Interactions int `json:"interactions"`
}

// BridgeContact is a correspondent forming the only link between two subjects.
type BridgeContact struct {
	// CorrespondentID identifies the bridge correspondent.
	CorrespondentID string `json:"correspondent_id"`

	// SubjectA and SubjectB are the bridged subjects, in sorted order.
	SubjectA string `json:"subject_a"`
	SubjectB string `json:"subject_b"`
}

// CommunicationChain is an A -> B -> C propagation within the chain window.
type CommunicationChain struct {
	// From initiated the first interaction.
	From string `json:"from"`

	// Via received it and contacted the next hop.
	Via string `json:"via"`

	// To is the final recipient.
	To string `json:"to"`

	// FirstHop is when From contacted Via.
	FirstHop time.Time `json:"first_hop"`

	// SecondHop is when Via contacted To.
	SecondHop time.Time `json:"second_hop"`
}

// PairVolume aggregates traffic between two subjects.
type PairVolume struct {
	// SubjectA and SubjectB are the pair, in sorted order.
	SubjectA string `json:"subject_a"`
	SubjectB string `json:"subject_b"`

	// Calls and Texts count interactions between the pair.
	Calls int `json:"calls"`
	Texts int `json:"texts"`

	// TotalDuration is the summed call duration in seconds.
	TotalDuration int `json:"total_duration"`
}

// TimelineBucket is one 24h window of pairwise subject activity.
type TimelineBucket struct {
	// Start is the beginning of the window.
	Start time.Time `json:"start"`

	// Interactions counts subject-to-subject interactions in the window.
	Interactions int `json:"interactions"`

	// ActivePairs lists the subject pairs active in the window as "a|b".
	ActivePairs []string `json:"active_pairs,omitempty"`
}

// Meeting is a detected co-location between two subjects.
type Meeting struct {
	// SubjectA and SubjectB are the co-located subjects.
	SubjectA string `json:"subject_a"`
	SubjectB string `json:"subject_b"`

	// PositionKey is where they overlapped (antenna ID or coordinates).
	PositionKey string `json:"position_key"`

	// Start and End bound the overlap window.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Confidence grades the detection: high when both lines were otherwise
	// quiet around the overlap, low when the area was busy anyway.
	Confidence string `json:"confidence"`
}

// Gathering is a window where three or more subjects shared an antenna.
type Gathering struct {
	// Subjects lists the co-located subjects, sorted.
	Subjects []string `json:"subjects"`

	// PositionKey is the shared position.
	PositionKey string `json:"position_key"`

	// Start and End bound the window.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewCaseSummary creates a CaseSummary for the given subjects.
func NewCaseSummary(subjects []string) *CaseSummary {
	return &CaseSummary{
		Subjects:            subjects,
		DateAnalyzed:        time.Now(),
		CommunicationMatrix: make(map[string]map[string]int),
		DegreeCentrality:    make(map[string]float64),
	}
}
