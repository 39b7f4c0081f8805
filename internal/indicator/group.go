package indicator

import (
	"fmt"
	"sort"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Cross-subject thresholds.
const (
	// DefaultChainWindow bounds the time between the two hops of a
	// communication chain.
	DefaultChainWindow = 30 * time.Minute

	// DefaultTimelineBucket is the bucket size for the network timeline.
	DefaultTimelineBucket = 24 * time.Hour

	// DefaultMinShared is the minimum number of subjects a correspondent
	// must reach to count as a shared contact.
	DefaultMinShared = 2
)

// BuildCaseSummary computes every cross-subject result for a multi-subject
// run. The per-subject pipelines stay independent; this is the one place
// that looks across exports.
func BuildCaseSummary(users []*model.User) *model.CaseSummary {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	summary := model.NewCaseSummary(ids)
	summary.CommunicationMatrix = CommunicationMatrix(users)
	summary.DegreeCentrality = DegreeCentrality(users, summary.CommunicationMatrix)
	summary.SharedContacts = SharedContacts(users, DefaultMinShared)
	summary.Bridges = BridgeContacts(users, summary.CommunicationMatrix)
	summary.Chains = CommunicationChains(users, DefaultChainWindow)
	summary.Volume = PairVolumes(users)
	summary.Timeline = NetworkTimeline(users, DefaultTimelineBucket)
	summary.Gatherings = Gatherings(users, DefaultColocationWindow, DefaultGatheringMinSubjects)

	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			summary.Meetings = append(summary.Meetings,
				DetectMeetings(users[i], users[j], DefaultColocationWindow)...)
		}
	}
	return summary
}

// subjectSet returns the set of analyzed subject IDs.
func subjectSet(users []*model.User) map[string]bool {
	set := make(map[string]bool, len(users))
	for _, u := range users {
		set[u.ID] = true
	}
	return set
}

// CommunicationMatrix counts direct interactions between subjects: cell
// [a][b] is how many records in a's export name b. Each subject's own
// export is the evidence for their row, so both sides of a link are
// counted from their own records.
func CommunicationMatrix(users []*model.User) map[string]map[string]int {
	subjects := subjectSet(users)

	matrix := make(map[string]map[string]int, len(users))
	for _, u := range users {
		matrix[u.ID] = make(map[string]int)
		for _, r := range u.Records {
			if subjects[r.CorrespondentID] && r.CorrespondentID != u.ID {
				matrix[u.ID][r.CorrespondentID]++
			}
		}
	}
	return matrix
}

// DegreeCentrality maps each subject to the fraction of the other subjects
// they communicate with directly, per either side's evidence. 1 means
// connected to everyone; the most central subjects are candidates for the
// coordinator role.
func DegreeCentrality(users []*model.User, matrix map[string]map[string]int) map[string]float64 {
	centrality := make(map[string]float64, len(users))
	others := len(users) - 1

	for _, u := range users {
		if others == 0 {
			centrality[u.ID] = 0
			continue
		}
		var linked int
		for _, other := range users {
			if other.ID == u.ID {
				continue
			}
			if matrix[u.ID][other.ID] > 0 || matrix[other.ID][u.ID] > 0 {
				linked++
			}
		}
		centrality[u.ID] = float64(linked) / float64(others)
	}
	return centrality
}

// SharedContacts lists correspondents in contact with at least minSubjects
// subjects, ordered by reach, then interaction volume. Subjects themselves
// are excluded: direct subject links are reported through the
// communication matrix instead.
func SharedContacts(users []*model.User, minSubjects int) []model.SharedContact {
	subjects := subjectSet(users)

	type tally struct {
		subjects     map[string]bool
		interactions int
	}
	byContact := make(map[string]*tally)
	for _, u := range users {
		for _, r := range u.Records {
			if subjects[r.CorrespondentID] {
				continue
			}
			t := byContact[r.CorrespondentID]
			if t == nil {
				t = &tally{subjects: make(map[string]bool)}
				byContact[r.CorrespondentID] = t
			}
			t.subjects[u.ID] = true
			t.interactions++
		}
	}

	var shared []model.SharedContact
	for id, t := range byContact {
		if len(t.subjects) < minSubjects {
			continue
		}
		names := make([]string, 0, len(t.subjects))
		for subject := range t.subjects {
			names = append(names, subject)
		}
		sort.Strings(names)
		shared = append(shared, model.SharedContact{
			CorrespondentID: id,
			Subjects:        names,
			Interactions:    t.interactions,
		})
	}

	sort.Slice(shared, func(i, j int) bool {
		if len(shared[i].Subjects) != len(shared[j].Subjects) {
			return len(shared[i].Subjects) > len(shared[j].Subjects)
		}
		if shared[i].Interactions != shared[j].Interactions {
			return shared[i].Interactions > shared[j].Interactions
		}
		return shared[i].CorrespondentID < shared[j].CorrespondentID
	})
	return shared
}

// BridgeContacts finds correspondents forming the only observable link
// between two subjects: the pair never communicates directly, but both are
// in contact with the correspondent.
func BridgeContacts(users []*model.User, matrix map[string]map[string]int) []model.BridgeContact {
	var bridges []model.BridgeContact
	for _, shared := range SharedContacts(users, DefaultMinShared) {
		for x := 0; x < len(shared.Subjects); x++ {
			for y := x + 1; y < len(shared.Subjects); y++ {
				a, b := shared.Subjects[x], shared.Subjects[y]
				if matrix[a][b] > 0 || matrix[b][a] > 0 {
					continue
				}
				bridges = append(bridges, model.BridgeContact{
					CorrespondentID: shared.CorrespondentID,
					SubjectA:        a,
					SubjectB:        b,
				})
			}
		}
	}
	return bridges
}

// CommunicationChains detects relayed interactions: subject A contacts B,
// then B contacts someone else within the window. The middle hop must be
// an analyzed subject, since only their export evidences the second leg.
// B answering A back is skipped; return calls are routine, not relays.
func CommunicationChains(users []*model.User, window time.Duration) []model.CommunicationChain {
	type comm struct {
		from, to string
		at       time.Time
	}

	var comms []comm
	for _, u := range users {
		for _, r := range u.Records {
			if r.Direction == model.DirectionOut {
				comms = append(comms, comm{from: u.ID, to: r.CorrespondentID, at: r.Datetime})
			}
		}
	}
	sort.Slice(comms, func(i, j int) bool { return comms[i].at.Before(comms[j].at) })

	var chains []model.CommunicationChain
	for i, first := range comms {
		for j := i + 1; j < len(comms); j++ {
			second := comms[j]
			if second.at.Sub(first.at) > window {
				break
			}
			if second.from != first.to || second.to == first.from {
				continue
			}
			chains = append(chains, model.CommunicationChain{
				From:      first.from,
				Via:       first.to,
				To:        second.to,
				FirstHop:  first.at,
				SecondHop: second.at,
			})
		}
	}
	return chains
}

// PairVolumes aggregates traffic between subject pairs, busiest first.
// The same event shows up in both exports (out on one side, in on the
// other), so sightings collapse on pair, interaction type, and timestamp
// before counting.
func PairVolumes(users []*model.User) []model.PairVolume {
	subjects := subjectSet(users)

	type pairKey struct{ a, b string }
	volumes := make(map[pairKey]*model.PairVolume)
	seen := make(map[string]bool)

	for _, u := range users {
		for _, r := range u.Records {
			if !subjects[r.CorrespondentID] || r.CorrespondentID == u.ID {
				continue
			}
			a, b := u.ID, r.CorrespondentID
			if a > b {
				a, b = b, a
			}

			dedupe := fmt.Sprintf("%s|%s|%s|%d", a, b, r.Interaction, r.Datetime.Unix())
			if seen[dedupe] {
				continue
			}
			seen[dedupe] = true

			v := volumes[pairKey{a, b}]
			if v == nil {
				v = &model.PairVolume{SubjectA: a, SubjectB: b}
				volumes[pairKey{a, b}] = v
			}
			if r.Interaction == model.InteractionCall {
				v.Calls++
				v.TotalDuration += r.CallDuration
			} else {
				v.Texts++
			}
		}
	}

	result := make([]model.PairVolume, 0, len(volumes))
	for _, v := range volumes {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Calls+result[i].Texts, result[j].Calls+result[j].Texts
		if ti != tj {
			return ti > tj
		}
		if result[i].SubjectA != result[j].SubjectA {
			return result[i].SubjectA < result[j].SubjectA
		}
		return result[i].SubjectB < result[j].SubjectB
	})
	return result
}

// NetworkTimeline buckets subject-to-subject activity into fixed windows
// starting at midnight of the first interaction. Empty buckets are
// omitted. The same deduplication as PairVolumes applies.
func NetworkTimeline(users []*model.User, bucket time.Duration) []model.TimelineBucket {
	subjects := subjectSet(users)

	type comm struct {
		at   time.Time
		pair string
	}
	var comms []comm
	seen := make(map[string]bool)

	for _, u := range users {
		for _, r := range u.Records {
			if !subjects[r.CorrespondentID] || r.CorrespondentID == u.ID {
				continue
			}
			a, b := u.ID, r.CorrespondentID
			if a > b {
				a, b = b, a
			}
			dedupe := fmt.Sprintf("%s|%s|%s|%d", a, b, r.Interaction, r.Datetime.Unix())
			if seen[dedupe] {
				continue
			}
			seen[dedupe] = true
			comms = append(comms, comm{at: r.Datetime, pair: a + "|" + b})
		}
	}
	if len(comms) == 0 {
		return nil
	}
	sort.Slice(comms, func(i, j int) bool { return comms[i].at.Before(comms[j].at) })

	first := comms[0].at
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	last := comms[len(comms)-1].at

	var buckets []model.TimelineBucket
	i := 0
	for !start.After(last) {
		end := start.Add(bucket)

		var count int
		pairs := make(map[string]bool)
		for i < len(comms) && comms[i].at.Before(end) {
			count++
			pairs[comms[i].pair] = true
			i++
		}

		if count > 0 {
			active := make([]string, 0, len(pairs))
			for pair := range pairs {
				active = append(active, pair)
			}
			sort.Strings(active)
			buckets = append(buckets, model.TimelineBucket{
				Start:        start,
				Interactions: count,
				ActivePairs:  active,
			})
		}
		start = end
	}
	return buckets
}
