package model

import (
	"sort"
	"time"
)

// User holds everything loaded for one subject: their records, the antennas
// referenced by those records, and optionally the ego network built from the
// record files of their correspondents.
//
// Design decision: The network is a map from correspondent ID to *User with
// nil values for correspondents whose record file was missing. Keeping the
// missing correspondents as keys preserves the distinction between "no such
// correspondent" and "correspondent known, records unavailable", which the
// out-of-network indicators depend on.
type User struct {
	// ID is the subject identifier (the record file name without extension).
	ID string `json:"id"`

	// Records are the subject's call detail records, sorted by datetime.
	Records []Record `json:"-"` // Excluded from JSON due to size

	// Antennas maps antenna IDs to their coordinates, when an antennas file
	// was provided.
	Antennas map[string]Position `json:"-"`

	// Home is the inferred home antenna (most frequent night-time position).
	// Only meaningful when HasHome() reports true.
	Home Position `json:"home"`

	// Network maps correspondent IDs to their loaded User. A nil value means
	// the correspondent appears in the subject's records but no record file
	// exists for them.
	Network map[string]*User `json:"-"`

	// NetworkLoaded reports whether network loading was requested for this
	// user. When false, Network is empty because nobody looked, not because
	// the subject has no contacts.
	NetworkLoaded bool `json:"network_loaded"`

	// NameMap resolves correspondent IDs to display names, when an identity
	// mapping file was provided.
	NameMap map[string]string `json:"-"`

	// IgnoredRecords counts rows rejected during ingest, by failing field.
	IgnoredRecords IgnoredRecords `json:"ignored_records"`

	// DuplicateRecords counts exact duplicate rows found during ingest.
	// Duplicates are kept; carrier exports legitimately repeat rows for
	// some billing events, and dropping them silently would hide evidence.
	DuplicateRecords int `json:"duplicate_records"`
}

// IgnoredRecords counts rows rejected at ingest time, grouped by the field
// that failed validation. All is the total number of rejected rows; a row
// rejected for several fields is counted once in All and once per field.
type IgnoredRecords struct {
	All             int `json:"all"`
	Datetime        int `json:"datetime"`
	Interaction     int `json:"interaction"`
	Direction       int `json:"direction"`
	CorrespondentID int `json:"correspondent_id"`
	CallDuration    int `json:"call_duration"`
	Location        int `json:"location"`
}

// HasAny reports whether any rows were ignored.
func (i IgnoredRecords) HasAny() bool {
	return i.All > 0
}

// NewUser creates an empty User for the given subject identifier.
func NewUser(id string) *User {
	return &User{
		ID:       id,
		Antennas: make(map[string]Position),
		Network:  make(map[string]*User),
		NameMap:  make(map[string]string),
	}
}

// HasCalls reports whether the user has at least one call record.
func (u *User) HasCalls() bool {
	for _, r := range u.Records {
		if r.Interaction == InteractionCall {
			return true
		}
	}
	return false
}

// HasTexts reports whether the user has at least one text record.
func (u *User) HasTexts() bool {
	for _, r := range u.Records {
		if r.Interaction == InteractionText {
			return true
		}
	}
	return false
}

// HasAntennas reports whether any record carries location information.
func (u *User) HasAntennas() bool {
	for _, r := range u.Records {
		if r.Position.Known() {
			return true
		}
	}
	return false
}

// HasHome reports whether a home position has been inferred.
func (u *User) HasHome() bool {
	return u.Home.Known()
}

// HasNetwork reports whether the ego network is usable: network loading was
// requested and at least one correspondent file was found.
func (u *User) HasNetwork() bool {
	if !u.NetworkLoaded {
		return false
	}
	for _, correspondent := range u.Network {
		if correspondent != nil {
			return true
		}
	}
	return false
}

// Correspondents returns the sorted distinct correspondent IDs appearing in
// the user's records.
func (u *User) Correspondents() []string {
	seen := make(map[string]bool)
	for _, r := range u.Records {
		seen[r.CorrespondentID] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InNetworkCorrespondents returns the sorted correspondent IDs whose record
// files were loaded.
func (u *User) InNetworkCorrespondents() []string {
	ids := make([]string, 0, len(u.Network))
	for id, correspondent := range u.Network {
		if correspondent != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// OutOfNetworkCorrespondents returns the sorted correspondent IDs that have
// no record file.
func (u *User) OutOfNetworkCorrespondents() []string {
	var ids []string
	for id, correspondent := range u.Network {
		if correspondent == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// InNetwork reports whether the given correspondent's records were loaded.
func (u *User) InNetwork(correspondentID string) bool {
	correspondent, ok := u.Network[correspondentID]
	return ok && correspondent != nil
}

// DateRange returns the timestamps of the first and last record.
// The zero time is returned for both when the user has no records.
func (u *User) DateRange() (start, end time.Time) {
	if len(u.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	return u.Records[0].Datetime, u.Records[len(u.Records)-1].Datetime
}

// DisplayName resolves a correspondent ID to a display name using the
// identity mapping. Unmapped IDs are returned as-is.
func (u *User) DisplayName(id string) string {
	if name, ok := u.NameMap[id]; ok && name != "" {
		return name
	}
	return id
}

// CallRecords returns only the call records.
func (u *User) CallRecords() []Record {
	var calls []Record
	for _, r := range u.Records {
		if r.Interaction == InteractionCall {
			calls = append(calls, r)
		}
	}
	return calls
}

// TextRecords returns only the text records.
func (u *User) TextRecords() []Record {
	var texts []Record
	for _, r := range u.Records {
		if r.Interaction == InteractionText {
			texts = append(texts, r)
		}
	}
	return texts
}
