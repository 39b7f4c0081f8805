package indicator

import (
	"sort"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Default location thresholds.
const (
	// DefaultTopLocations caps the frequent-location ranking.
	DefaultTopLocations = 10

	// DefaultUnusualMaxVisits is the most visits a position can have and
	// still count as unusual.
	DefaultUnusualMaxVisits = 2

	// DefaultLocationWindow is the search window for LocationAt.
	DefaultLocationWindow = 30 * time.Minute

	// locationBin is the sampling bin behind TimeAtLocations.
	locationBin = 30 * time.Minute

	// Confidence bounds for LocationAt: how far the closest record may be
	// from the asked time.
	highConfidenceDelta   = 5 * time.Minute
	mediumConfidenceDelta = 15 * time.Minute
)

// Confidence grades shared by location and co-location results.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Visit is a stay at one position: consecutive located records at the same
// position collapsed into an arrival/departure span.
type Visit struct {
	// Position is where the stay happened.
	Position model.Position

	// Arrival and Departure are the first and last record of the stay.
	Arrival   time.Time
	Departure time.Time

	// Records is how many records back the stay.
	Records int
}

// LocationTimeline compresses the located records into chronological
// visits. Movement reconstruction reads naturally from this: each element
// is "was at X from A until D".
func LocationTimeline(records []model.Record) []Visit {
	var visits []Visit
	for _, r := range records {
		key := r.Position.Key()
		if key == "" {
			continue
		}
		if n := len(visits); n > 0 && visits[n-1].Position.Key() == key {
			visits[n-1].Departure = r.Datetime
			visits[n-1].Records++
			visits[n-1].Position = bestPosition(visits[n-1].Position, r.Position)
			continue
		}
		visits = append(visits, Visit{
			Position:  r.Position,
			Arrival:   r.Datetime,
			Departure: r.Datetime,
			Records:   1,
		})
	}
	return visits
}

// FrequentLocations ranks positions by visit count, most visited first,
// capped at top entries. Ties break to the lexically smaller key.
func FrequentLocations(records []model.Record, top int) []model.LocationCount {
	counts, positions := tallyPositions(records)
	if len(counts) == 0 {
		return nil
	}

	ranked := make([]model.LocationCount, 0, len(counts))
	for key, count := range counts {
		ranked = append(ranked, model.LocationCount{
			Key:      key,
			Position: positions[key],
			Visits:   count,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Visits != ranked[j].Visits {
			return ranked[i].Visits > ranked[j].Visits
		}
		return ranked[i].Key < ranked[j].Key
	})

	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}

// UnusualLocations lists positions visited at most maxVisits times, rarest
// first. One-off visits around key dates are worth a manual look.
func UnusualLocations(records []model.Record, maxVisits int) []model.LocationCount {
	counts, positions := tallyPositions(records)

	var unusual []model.LocationCount
	for key, count := range counts {
		if count <= maxVisits {
			unusual = append(unusual, model.LocationCount{
				Key:      key,
				Position: positions[key],
				Visits:   count,
			})
		}
	}
	sort.Slice(unusual, func(i, j int) bool {
		if unusual[i].Visits != unusual[j].Visits {
			return unusual[i].Visits < unusual[j].Visits
		}
		return unusual[i].Key < unusual[j].Key
	})
	return unusual
}

// LocationTransitions aggregates observed movements between consecutive
// positions, most traveled first. Distance is the great-circle km between
// the endpoints, -1 when either side lacks coordinates.
func LocationTransitions(records []model.Record) []model.Transition {
	visits := LocationTimeline(records)
	if len(visits) < 2 {
		return nil
	}

	transitions := make(map[string]*model.Transition)
	for i := 1; i < len(visits); i++ {
		from, to := visits[i-1].Position, visits[i].Position
		key := from.Key() + "|" + to.Key()

		t := transitions[key]
		if t == nil {
			t = &model.Transition{
				From:       from.Key(),
				To:         to.Key(),
				DistanceKm: from.DistanceKm(to),
			}
			transitions[key] = t
		}
		t.Count++
	}

	result := make([]model.Transition, 0, len(transitions))
	for _, t := range transitions {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if result[i].From != result[j].From {
			return result[i].From < result[j].From
		}
		return result[i].To < result[j].To
	})
	return result
}

// TimeAtLocations estimates hours spent per position by sampling presence
// in 30-minute bins: a position observed anywhere in a bin accounts for
// the whole bin. Crude, but robust against bursty records inflating dwell
// time.
func TimeAtLocations(records []model.Record) map[string]float64 {
	binSeconds := int64(locationBin.Seconds())
	bins := make(map[string]map[int64]bool)
	for _, r := range records {
		key := r.Position.Key()
		if key == "" {
			continue
		}
		if bins[key] == nil {
			bins[key] = make(map[int64]bool)
		}
		bins[key][r.Datetime.Unix()/binSeconds] = true
	}
	if len(bins) == 0 {
		return nil
	}

	hours := make(map[string]float64, len(bins))
	for key, set := range bins {
		hours[key] = float64(len(set)) * locationBin.Hours()
	}
	return hours
}

// LocationFix answers "where was the subject at time T".
type LocationFix struct {
	// Position is the location of the closest located record.
	Position model.Position

	// RecordTime is when that record happened.
	RecordTime time.Time

	// DeltaSeconds is how far the record is from the asked time.
	DeltaSeconds float64

	// Confidence grades the fix by DeltaSeconds: high under 5 minutes,
	// medium under 15, low otherwise.
	Confidence string

	// Correspondent and Interaction describe the record behind the fix.
	Correspondent string
	Interaction   model.Interaction
}

// LocationAt finds the located record closest to the timestamp within the
// window on either side. The second return is false when no located record
// falls inside the window.
func LocationAt(records []model.Record, at time.Time, window time.Duration) (LocationFix, bool) {
	start := at.Add(-window)
	end := at.Add(window)

	found := false
	var fix LocationFix
	for _, r := range records {
		if r.Datetime.Before(start) || r.Datetime.After(end) || !r.Position.Known() {
			continue
		}
		delta := absDuration(r.Datetime.Sub(at))
		if !found || delta.Seconds() < fix.DeltaSeconds {
			found = true
			fix = LocationFix{
				Position:      r.Position,
				RecordTime:    r.Datetime,
				DeltaSeconds:  delta.Seconds(),
				Confidence:    fixConfidence(delta),
				Correspondent: r.CorrespondentID,
				Interaction:   r.Interaction,
			}
		}
	}
	return fix, found
}

// fixConfidence grades a fix by the distance between record and asked time.
func fixConfidence(delta time.Duration) string {
	switch {
	case delta < highConfidenceDelta:
		return ConfidenceHigh
	case delta < mediumConfidenceDelta:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
