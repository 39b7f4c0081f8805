package indicator

import (
	"sort"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Relationship strength weights: frequency carries most of the score,
// total call duration the rest. Recency is intentionally not part of the
// score; ceased contacts are detected separately.
const (
	strengthFrequencyWeight = 0.6
	strengthDurationWeight  = 0.4
)

// ContactSummaries aggregates every correspondent relationship and ranks
// them by strength, strongest first. Names are resolved through the user's
// identity mapping when one was loaded.
func ContactSummaries(user *model.User) []model.ContactSummary {
	if len(user.Records) == 0 {
		return nil
	}

	summaries := make(map[string]*model.ContactSummary)
	for _, r := range user.Records {
		s := summaries[r.CorrespondentID]
		if s == nil {
			s = &model.ContactSummary{
				CorrespondentID: r.CorrespondentID,
				FirstSeen:       r.Datetime,
				LastSeen:        r.Datetime,
			}
			summaries[r.CorrespondentID] = s
		}

		if r.Interaction == model.InteractionCall {
			s.Calls++
			s.TotalDuration += r.CallDuration
		} else {
			s.Texts++
		}
		if r.Direction == model.DirectionIn {
			s.Incoming++
		} else {
			s.Outgoing++
		}
		if r.Datetime.Before(s.FirstSeen) {
			s.FirstSeen = r.Datetime
		}
		if r.Datetime.After(s.LastSeen) {
			s.LastSeen = r.Datetime
		}
	}

	// Normalization maxima for the strength score.
	var maxCount, maxDuration int
	for _, s := range summaries {
		if count := s.Calls + s.Texts; count > maxCount {
			maxCount = count
		}
		if s.TotalDuration > maxDuration {
			maxDuration = s.TotalDuration
		}
	}

	contacts := make([]model.ContactSummary, 0, len(summaries))
	for _, s := range summaries {
		s.Strength = strengthScore(s.Calls+s.Texts, s.TotalDuration, maxCount, maxDuration)
		s.Reciprocity = reciprocityScore(s.Incoming, s.Outgoing)
		s.InitiationRatio = float64(s.Outgoing) / float64(s.Incoming+s.Outgoing)
		if name, ok := user.NameMap[s.CorrespondentID]; ok && name != "" {
			s.Name = name
		}
		contacts = append(contacts, *s)
	}

	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].Strength != contacts[j].Strength {
			return contacts[i].Strength > contacts[j].Strength
		}
		return contacts[i].CorrespondentID < contacts[j].CorrespondentID
	})
	return contacts
}

// strengthScore combines interaction count and call duration, each
// normalized against the subject's maxima. A zero maxDuration (text-only
// lines) leaves the duration term out.
func strengthScore(count, duration, maxCount, maxDuration int) float64 {
	if maxCount == 0 {
		return 0
	}
	score := strengthFrequencyWeight * float64(count) / float64(maxCount)
	if maxDuration > 0 {
		score += strengthDurationWeight * float64(duration) / float64(maxDuration)
	}
	return score
}

// reciprocityScore is min(in, out) / max(in, out): 1 is perfectly
// balanced, 0 entirely one-sided.
func reciprocityScore(in, out int) float64 {
	if in == 0 || out == 0 {
		return 0
	}
	if in < out {
		return float64(in) / float64(out)
	}
	return float64(out) / float64(in)
}

// FirstContactOfDay counts, per correspondent, the days on which they were
// the subject's first interaction. Records are expected sorted by
// datetime, which ingest guarantees.
func FirstContactOfDay(records []model.Record) map[string]int {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	currentDay := ""
	for _, r := range records {
		day := r.Datetime.Format("2006-01-02")
		if day != currentDay {
			counts[r.CorrespondentID]++
			currentDay = day
		}
	}
	return counts
}

// LastContactOfDay counts, per correspondent, the days on which they were
// the subject's last interaction. Records are expected sorted by datetime.
func LastContactOfDay(records []model.Record) map[string]int {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var lastID, currentDay string
	for _, r := range records {
		day := r.Datetime.Format("2006-01-02")
		if day != currentDay && currentDay != "" {
			counts[lastID]++
		}
		currentDay = day
		lastID = r.CorrespondentID
	}
	counts[lastID]++
	return counts
}
