package indicator

import (
	"sort"
	"strings"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Default co-location thresholds.
const (
	// DefaultColocationWindow bounds how far apart two antenna hits can be
	// and still count as co-location.
	DefaultColocationWindow = 30 * time.Minute

	// DefaultTravelWindow bounds matching transitions for travel patterns.
	DefaultTravelWindow = 60 * time.Minute

	// DefaultGatheringMinSubjects is the minimum number of subjects at one
	// position for a gathering.
	DefaultGatheringMinSubjects = 3

	// meetingActivityWindow is how far around an overlap surrounding
	// records are counted for meeting confidence.
	meetingActivityWindow = 60 * time.Minute

	// Meeting confidence thresholds on surrounding activity: people who
	// meet in person tend to stop calling, so a quiet line around the
	// overlap supports the meeting.
	meetingQuietMax = 3
	meetingBusyMax  = 6
)

// Overlap is one co-location hit between two subjects: both observed at
// the same position within the window.
type Overlap struct {
	// PositionKey identifies the shared position.
	PositionKey string

	// Position carries coordinates when either record has them.
	Position model.Position

	// TimeA and TimeB are when each subject was observed there.
	TimeA time.Time
	TimeB time.Time

	// DeltaSeconds is the distance between the two observations.
	DeltaSeconds float64
}

// AntennaOverlaps finds every pair of records where both subjects were at
// the same position within the window, ordered by the first subject's
// time.
func AntennaOverlaps(userA, userB *model.User, window time.Duration) []Overlap {
	byKey := make(map[string][]model.Record)
	for _, r := range userB.Records {
		if key := r.Position.Key(); key != "" {
			byKey[key] = append(byKey[key], r)
		}
	}

	var overlaps []Overlap
	for _, recordA := range userA.Records {
		key := recordA.Position.Key()
		if key == "" {
			continue
		}
		for _, recordB := range byKey[key] {
			delta := absDuration(recordA.Datetime.Sub(recordB.Datetime))
			if delta > window {
				continue
			}
			overlaps = append(overlaps, Overlap{
				PositionKey:  key,
				Position:     bestPosition(recordA.Position, recordB.Position),
				TimeA:        recordA.Datetime,
				TimeB:        recordB.Datetime,
				DeltaSeconds: delta.Seconds(),
			})
		}
	}

	sort.Slice(overlaps, func(i, j int) bool {
		if !overlaps[i].TimeA.Equal(overlaps[j].TimeA) {
			return overlaps[i].TimeA.Before(overlaps[j].TimeA)
		}
		return overlaps[i].TimeB.Before(overlaps[j].TimeB)
	})
	return overlaps
}

// DetectMeetings upgrades overlaps between two subjects into probable
// in-person meetings. Confidence comes from how busy the first subject's
// line was around the overlap. Overlapping hits at the same position merge
// into one meeting, so a long meeting with several records reports once.
func DetectMeetings(userA, userB *model.User, window time.Duration) []model.Meeting {
	overlaps := AntennaOverlaps(userA, userB, window)
	if len(overlaps) == 0 {
		return nil
	}

	meetings := make([]model.Meeting, 0, len(overlaps))
	for _, o := range overlaps {
		start, end := o.TimeA, o.TimeB
		if end.Before(start) {
			start, end = end, start
		}
		activity := len(recordsAround(userA.Records, o.TimeA, meetingActivityWindow))
		meetings = append(meetings, model.Meeting{
			SubjectA:    userA.ID,
			SubjectB:    userB.ID,
			PositionKey: o.PositionKey,
			Start:       start,
			End:         end,
			Confidence:  meetingConfidence(activity),
		})
	}
	return mergeMeetings(meetings, window)
}

// recordsAround returns the records within window of a timestamp.
func recordsAround(records []model.Record, at time.Time, window time.Duration) []model.Record {
	var around []model.Record
	for _, r := range records {
		if absDuration(r.Datetime.Sub(at)) < window {
			around = append(around, r)
		}
	}
	return around
}

// meetingConfidence grades a meeting by the surrounding activity level.
func meetingConfidence(activity int) string {
	switch {
	case activity < meetingQuietMax:
		return ConfidenceHigh
	case activity < meetingBusyMax:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// mergeMeetings collapses meetings at the same position whose windows run
// into each other, keeping the highest confidence seen. Input is ordered
// by start time.
func mergeMeetings(meetings []model.Meeting, window time.Duration) []model.Meeting {
	if len(meetings) == 0 {
		return nil
	}

	merged := []model.Meeting{meetings[0]}
	for _, m := range meetings[1:] {
		last := &merged[len(merged)-1]
		if m.PositionKey == last.PositionKey && !m.Start.After(last.End.Add(window)) {
			if m.End.After(last.End) {
				last.End = m.End
			}
			if confidenceRank(m.Confidence) > confidenceRank(last.Confidence) {
				last.Confidence = m.Confidence
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// confidenceRank orders confidence grades for comparisons.
func confidenceRank(confidence string) int {
	switch confidence {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// TravelMatch is one antenna-to-antenna movement both subjects performed
// in the same direction within the window.
type TravelMatch struct {
	// From and To identify the shared transition.
	From string
	To   string

	// TimeA and TimeB are when each subject arrived at To.
	TimeA time.Time
	TimeB time.Time

	// DeltaSeconds is the distance between the two arrivals.
	DeltaSeconds float64
}

// TravelPatternMatches finds transitions both subjects performed in the
// same direction within the window. Shared ordered movement is evidence of
// traveling together rather than coincidental presence.
func TravelPatternMatches(userA, userB *model.User, window time.Duration) []TravelMatch {
	transitionsA := arrivalTransitions(userA.Records)
	transitionsB := arrivalTransitions(userB.Records)
	if len(transitionsA) == 0 || len(transitionsB) == 0 {
		return nil
	}

	var matches []TravelMatch
	for _, ta := range transitionsA {
		for _, tb := range transitionsB {
			if ta.from != tb.from || ta.to != tb.to {
				continue
			}
			delta := absDuration(ta.at.Sub(tb.at))
			if delta > window {
				continue
			}
			matches = append(matches, TravelMatch{
				From:         ta.from,
				To:           ta.to,
				TimeA:        ta.at,
				TimeB:        tb.at,
				DeltaSeconds: delta.Seconds(),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].TimeA.Equal(matches[j].TimeA) {
			return matches[i].TimeA.Before(matches[j].TimeA)
		}
		return matches[i].TimeB.Before(matches[j].TimeB)
	})
	return matches
}

// arrivalTransition is an antenna change with the arrival time at the new
// position.
type arrivalTransition struct {
	from, to string
	at       time.Time
}

// arrivalTransitions lists the position changes in a record set.
func arrivalTransitions(records []model.Record) []arrivalTransition {
	visits := LocationTimeline(records)
	if len(visits) < 2 {
		return nil
	}

	transitions := make([]arrivalTransition, 0, len(visits)-1)
	for i := 1; i < len(visits); i++ {
		transitions = append(transitions, arrivalTransition{
			from: visits[i-1].Position.Key(),
			to:   visits[i].Position.Key(),
			at:   visits[i].Arrival,
		})
	}
	return transitions
}

// Gatherings finds windows where at least minSubjects subjects hit the
// same position within the window. Duplicate detections of the same event
// (one per participating record) collapse on position, participants, and
// start minute.
func Gatherings(users []*model.User, window time.Duration, minSubjects int) []model.Gathering {
	type hit struct {
		subject string
		at      time.Time
		key     string
	}

	var hits []hit
	for _, u := range users {
		for _, r := range u.Records {
			if key := r.Position.Key(); key != "" {
				hits = append(hits, hit{subject: u.ID, at: r.Datetime, key: key})
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].at.Before(hits[j].at) })

	var gatherings []model.Gathering
	seen := make(map[string]bool)
	for i, first := range hits {
		members := map[string]bool{first.subject: true}
		start, end := first.at, first.at

		for j := i + 1; j < len(hits); j++ {
			other := hits[j]
			if other.at.Sub(first.at) > window {
				break
			}
			if other.key != first.key || members[other.subject] {
				continue
			}
			members[other.subject] = true
			end = other.at
		}
		if len(members) < minSubjects {
			continue
		}

		subjects := make([]string, 0, len(members))
		for subject := range members {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)

		dedupe := first.key + "|" + strings.Join(subjects, ",") + "|" + start.Format("2006-01-02T15:04")
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true

		gatherings = append(gatherings, model.Gathering{
			Subjects:    subjects,
			PositionKey: first.key,
			Start:       start,
			End:         end,
		})
	}
	return gatherings
}

// ProximityHit is one record observed at or near a target position.
type ProximityHit struct {
	// Record is the observation.
	Record model.Record

	// DistanceKm is the great-circle distance to the target, 0 for exact
	// antenna matches without coordinates.
	DistanceKm float64
}

// ProximityTo lists the records observed within radiusKm of a target
// position, or at the target's antenna when coordinates are missing on
// either side. A non-zero at restricts hits to the window around it.
// Answers "was the subject near this place around this time".
func ProximityTo(records []model.Record, target model.Position, radiusKm float64, at time.Time, window time.Duration) []ProximityHit {
	var hits []ProximityHit
	for _, r := range records {
		if !r.Position.Known() {
			continue
		}

		distance := r.Position.DistanceKm(target)
		switch {
		case distance >= 0:
			if distance > radiusKm {
				continue
			}
		case target.AntennaID != "" && r.Position.AntennaID == target.AntennaID:
			distance = 0
		default:
			continue
		}

		if !at.IsZero() && absDuration(r.Datetime.Sub(at)) > window {
			continue
		}
		hits = append(hits, ProximityHit{Record: r, DistanceKm: distance})
	}
	return hits
}
