package indicator

import (
	"sort"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Shared indicator thresholds.
const (
	// NightStartHour is the first hour of the night window (19:00).
	NightStartHour = 19

	// NightEndHour is the first morning hour outside the night window (07:00).
	NightEndHour = 7

	// ParetoShare is the activity share used by the concentration
	// indicators: how much of the total the "top" contacts or antennas
	// must account for.
	ParetoShare = 0.8
)

// ScalarFunc computes one scalar indicator over a set of records.
type ScalarFunc func(records []model.Record) float64

// scalarIndicators registers every named scalar indicator. The registry
// exists because weekly grouping and network assortativity both need to
// evaluate "all indicators" generically rather than naming each one.
//
// Design decision: Stats-valued indicators enter the registry through their
// mean, because the registry consumers need exactly one number per
// indicator per record set.
var scalarIndicators = map[string]ScalarFunc{
	"active_days":             func(rs []model.Record) float64 { return float64(ActiveDays(rs)) },
	"number_of_contacts":      func(rs []model.Record) float64 { return float64(NumberOfContacts(rs)) },
	"number_of_contacts_in":   func(rs []model.Record) float64 { return float64(NumberOfContactsIn(rs)) },
	"number_of_contacts_out":  func(rs []model.Record) float64 { return float64(NumberOfContactsOut(rs)) },
	"number_of_interactions":  func(rs []model.Record) float64 { return float64(NumberOfInteractions(rs)) },
	"number_of_interactions_in": func(rs []model.Record) float64 {
		return float64(NumberOfInteractionsIn(rs))
	},
	"number_of_interactions_out": func(rs []model.Record) float64 {
		return float64(NumberOfInteractionsOut(rs))
	},
	"call_duration":               func(rs []model.Record) float64 { return CallDurationStats(rs).Mean },
	"percent_nocturnal":           PercentNocturnal,
	"percent_initiated":           PercentInitiated,
	"entropy_of_contacts":         EntropyOfContacts,
	"balance_of_contacts":         func(rs []model.Record) float64 { return BalanceOfContacts(rs).Mean },
	"interactions_per_contact":    func(rs []model.Record) float64 { return InteractionsPerContact(rs).Mean },
	"inter_event_time":            func(rs []model.Record) float64 { return InterEventTimes(rs).Mean },
	"percent_pareto_interactions": PercentParetoInteractions,
}

// ScalarNames returns the registered scalar indicator names, sorted.
func ScalarNames() []string {
	names := make([]string, 0, len(scalarIndicators))
	for name := range scalarIndicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scalars evaluates every registered scalar indicator over the records.
func Scalars(records []model.Record) map[string]float64 {
	values := make(map[string]float64, len(scalarIndicators))
	for name, fn := range scalarIndicators {
		values[name] = fn(records)
	}
	return values
}

// IsNight reports whether t falls in the night window.
func IsNight(t time.Time) bool {
	hour := t.Hour()
	return hour >= NightStartHour || hour < NightEndHour
}

// ActiveDays returns the number of distinct days with at least one record.
func ActiveDays(records []model.Record) int {
	days := make(map[string]bool)
	for _, r := range records {
		days[r.Datetime.Format("2006-01-02")] = true
	}
	return len(days)
}

// contactCounts tallies interactions per correspondent.
func contactCounts(records []model.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.CorrespondentID]++
	}
	return counts
}

// NumberOfContacts returns the number of distinct correspondents.
func NumberOfContacts(records []model.Record) int {
	return len(contactCounts(records))
}

// NumberOfContactsIn returns the number of distinct correspondents on
// received records.
func NumberOfContactsIn(records []model.Record) int {
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Direction == model.DirectionIn {
			seen[r.CorrespondentID] = true
		}
	}
	return len(seen)
}

// NumberOfContactsOut returns the number of distinct correspondents on
// initiated records.
func NumberOfContactsOut(records []model.Record) int {
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Direction == model.DirectionOut {
			seen[r.CorrespondentID] = true
		}
	}
	return len(seen)
}

// NumberOfInteractions counts all records.
func NumberOfInteractions(records []model.Record) int {
	return len(records)
}

// NumberOfInteractionsIn counts received records.
func NumberOfInteractionsIn(records []model.Record) int {
	var n int
	for _, r := range records {
		if r.Direction == model.DirectionIn {
			n++
		}
	}
	return n
}

// NumberOfInteractionsOut counts initiated records.
func NumberOfInteractionsOut(records []model.Record) int {
	var n int
	for _, r := range records {
		if r.Direction == model.DirectionOut {
			n++
		}
	}
	return n
}

// CallDurationStats summarizes call lengths in seconds. Texts carry no
// duration and are excluded.
func CallDurationStats(records []model.Record) model.Stats {
	var durations []float64
	for _, r := range records {
		if r.Interaction == model.InteractionCall {
			durations = append(durations, float64(r.CallDuration))
		}
	}
	return Summarize(durations)
}

// PercentNocturnal returns the fraction of records during night hours.
func PercentNocturnal(records []model.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var night int
	for _, r := range records {
		if IsNight(r.Datetime) {
			night++
		}
	}
	return float64(night) / float64(len(records))
}

// PercentInitiated returns the fraction of records the subject initiated.
func PercentInitiated(records []model.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	return float64(NumberOfInteractionsOut(records)) / float64(len(records))
}

// EntropyOfContacts returns the Shannon entropy of the per-contact
// interaction counts. High entropy means activity spread over many
// contacts; low entropy means concentration on a few.
func EntropyOfContacts(records []model.Record) float64 {
	counts := contactCounts(records)
	values := make([]int, 0, len(counts))
	for _, c := range counts {
		values = append(values, c)
	}
	return Entropy(values)
}

// BalanceOfContacts summarizes, per contact, the fraction of interactions
// the subject initiated. A mean near 1 means the subject does the calling;
// near 0, the subject gets called.
func BalanceOfContacts(records []model.Record) model.Stats {
	type split struct{ out, total int }
	splits := make(map[string]*split)
	for _, r := range records {
		s := splits[r.CorrespondentID]
		if s == nil {
			s = &split{}
			splits[r.CorrespondentID] = s
		}
		s.total++
		if r.Direction == model.DirectionOut {
			s.out++
		}
	}

	balances := make([]float64, 0, len(splits))
	for _, s := range splits {
		balances = append(balances, float64(s.out)/float64(s.total))
	}
	return Summarize(balances)
}

// InteractionsPerContact summarizes the interaction counts per contact.
func InteractionsPerContact(records []model.Record) model.Stats {
	counts := contactCounts(records)
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		values = append(values, float64(c))
	}
	return Summarize(values)
}

// InterEventTimes summarizes the seconds between consecutive records.
// Records are expected sorted by datetime, which ingest guarantees.
func InterEventTimes(records []model.Record) model.Stats {
	if len(records) < 2 {
		return model.Stats{}
	}
	deltas := make([]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		deltas = append(deltas, records[i].Datetime.Sub(records[i-1].Datetime).Seconds())
	}
	return Summarize(deltas)
}

// PercentParetoInteractions returns the fraction of contacts that together
// account for ParetoShare of all interactions. A small value means a few
// relationships dominate the line.
func PercentParetoInteractions(records []model.Record) float64 {
	counts := contactCounts(records)
	if len(counts) == 0 {
		return 0
	}

	values := make([]int, 0, len(counts))
	var total int
	for _, c := range counts {
		values = append(values, c)
		total += c
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	target := ParetoShare * float64(total)
	var cumulative, needed int
	for _, c := range values {
		cumulative += c
		needed++
		if float64(cumulative) >= target {
			break
		}
	}
	return float64(needed) / float64(len(counts))
}
