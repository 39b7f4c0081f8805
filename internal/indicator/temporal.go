package indicator

import (
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Default temporal thresholds.
const (
	// DefaultGapThreshold is the minimum silence reported as a gap.
	DefaultGapThreshold = 24 * time.Hour

	// DefaultBurstWindow is the sliding window for burst detection.
	DefaultBurstWindow = 30 * time.Minute

	// DefaultBurstRateMultiple is how many times the line's average rate a
	// window must reach to count as a burst.
	DefaultBurstRateMultiple = 3.0

	// minBurstCount keeps sparse lines from reporting every pair of close
	// records as a burst.
	minBurstCount = 3
)

// HourlyProfile counts interactions per hour of day.
func HourlyProfile(records []model.Record) [24]int {
	var profile [24]int
	for _, r := range records {
		profile[r.Datetime.Hour()]++
	}
	return profile
}

// DailyCounts maps dates (YYYY-MM-DD) to interaction counts.
func DailyCounts(records []model.Record) map[string]int {
	if len(records) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Datetime.Format("2006-01-02")]++
	}
	return counts
}

// CommunicationGaps returns the silent periods of at least threshold
// between consecutive records. Records are expected sorted by datetime.
func CommunicationGaps(records []model.Record, threshold time.Duration) []model.Gap {
	if len(records) < 2 {
		return nil
	}

	var gaps []model.Gap
	for i := 1; i < len(records); i++ {
		delta := records[i].Datetime.Sub(records[i-1].Datetime)
		if delta >= threshold {
			gaps = append(gaps, model.Gap{
				Start: records[i-1].Datetime,
				End:   records[i].Datetime,
				Hours: delta.Hours(),
			})
		}
	}
	return gaps
}

// ActivityBursts finds windows holding far more records than the line's
// average rate. The average is the expected record count per window over
// the whole observation span; a window qualifies when it reaches
// rateMultiple times that, with at least minBurstCount records. Detection
// slides record by record and skips past each burst so one dense period is
// reported once.
func ActivityBursts(records []model.Record, window time.Duration, rateMultiple float64) []model.Burst {
	if len(records) < 2 {
		return nil
	}

	span := records[len(records)-1].Datetime.Sub(records[0].Datetime)
	if span <= 0 {
		return nil
	}
	avgPerWindow := float64(len(records)) / (span.Seconds() / window.Seconds())
	threshold := avgPerWindow * rateMultiple

	var bursts []model.Burst
	for i := 0; i < len(records); {
		windowEnd := records[i].Datetime.Add(window)

		count := 0
		last := i
		for j := i; j < len(records) && records[j].Datetime.Before(windowEnd); j++ {
			count++
			last = j
		}

		if float64(count) >= threshold && count >= minBurstCount {
			bursts = append(bursts, model.Burst{
				Start:        records[i].Datetime,
				End:          records[last].Datetime,
				Count:        count,
				RateMultiple: float64(count) / avgPerWindow,
			})
			i += count
		} else {
			i++
		}
	}
	return bursts
}

// ContactInterEventTimes summarizes, per correspondent, the seconds
// between consecutive interactions with that correspondent. Contacts with
// fewer than two interactions are omitted. Records are expected sorted by
// datetime.
func ContactInterEventTimes(records []model.Record) map[string]model.Stats {
	if len(records) < 2 {
		return nil
	}

	last := make(map[string]time.Time)
	deltas := make(map[string][]float64)
	for _, r := range records {
		if prev, seen := last[r.CorrespondentID]; seen {
			deltas[r.CorrespondentID] = append(deltas[r.CorrespondentID],
				r.Datetime.Sub(prev).Seconds())
		}
		last[r.CorrespondentID] = r.Datetime
	}

	if len(deltas) == 0 {
		return nil
	}
	stats := make(map[string]model.Stats, len(deltas))
	for id, values := range deltas {
		stats[id] = Summarize(values)
	}
	return stats
}

// ContactFirstAppearance maps each correspondent to their first
// interaction. Records are expected sorted by datetime.
func ContactFirstAppearance(records []model.Record) map[string]time.Time {
	if len(records) == 0 {
		return nil
	}
	first := make(map[string]time.Time)
	for _, r := range records {
		if _, seen := first[r.CorrespondentID]; !seen {
			first[r.CorrespondentID] = r.Datetime
		}
	}
	return first
}

// ContactLastAppearance maps each correspondent to their last interaction.
// Records are expected sorted by datetime.
func ContactLastAppearance(records []model.Record) map[string]time.Time {
	if len(records) == 0 {
		return nil
	}
	last := make(map[string]time.Time)
	for _, r := range records {
		last[r.CorrespondentID] = r.Datetime
	}
	return last
}

// ActivityWindow summarizes the records surrounding one timestamp.
type ActivityWindow struct {
	// Before and After hold the records on each side of the timestamp,
	// still in chronological order.
	Before []model.Record
	After  []model.Record

	// ContactsBefore and ContactsAfter count interactions per
	// correspondent on each side.
	ContactsBefore map[string]int
	ContactsAfter  map[string]int
}

// ActivityAround collects the records within the given spans before and
// after a timestamp. Key-date reporting uses this to reconstruct what
// happened around an event.
func ActivityAround(records []model.Record, at time.Time, before, after time.Duration) ActivityWindow {
	window := ActivityWindow{
		ContactsBefore: make(map[string]int),
		ContactsAfter:  make(map[string]int),
	}
	start := at.Add(-before)
	end := at.Add(after)

	for _, r := range records {
		switch {
		case !r.Datetime.Before(start) && r.Datetime.Before(at):
			window.Before = append(window.Before, r)
			window.ContactsBefore[r.CorrespondentID]++
		case !r.Datetime.Before(at) && !r.Datetime.After(end):
			window.After = append(window.After, r)
			window.ContactsAfter[r.CorrespondentID]++
		}
	}
	return window
}

// FirstContactAfter returns the first record strictly after the timestamp.
// The second return is false when the records end before it. Records are
// expected sorted by datetime.
func FirstContactAfter(records []model.Record, at time.Time) (model.Record, bool) {
	for _, r := range records {
		if r.Datetime.After(at) {
			return r, true
		}
	}
	return model.Record{}, false
}

// absDuration returns the absolute value of d.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
