package indicator

import (
	"math"
	"sort"

	"github.com/cdrscan/cdrscan/internal/model"
)

// tallyPositions counts located records per position key and remembers one
// representative Position per key, preferring variants that carry
// coordinates. Records without location information are skipped.
func tallyPositions(records []model.Record) (map[string]int, map[string]model.Position) {
	counts := make(map[string]int)
	positions := make(map[string]model.Position)
	for _, r := range records {
		key := r.Position.Key()
		if key == "" {
			continue
		}
		counts[key]++
		positions[key] = bestPosition(positions[key], r.Position)
	}
	return counts, positions
}

// bestPosition prefers the variant of a position that carries coordinates.
func bestPosition(current, candidate model.Position) model.Position {
	if !current.Known() {
		return candidate
	}
	if !current.HasCoordinates && candidate.HasCoordinates {
		return candidate
	}
	return current
}

// NumberOfAntennas returns the number of distinct positions observed.
func NumberOfAntennas(records []model.Record) int {
	counts, _ := tallyPositions(records)
	return len(counts)
}

// EntropyOfAntennas returns the Shannon entropy of visit counts per
// position. Low entropy means a stationary subject.
func EntropyOfAntennas(records []model.Record) float64 {
	counts, _ := tallyPositions(records)
	values := make([]int, 0, len(counts))
	for _, c := range counts {
		values = append(values, c)
	}
	return Entropy(values)
}

// InferHome infers the home position as the most frequent night-time
// position. Ties break to the lexically smaller key so inference is
// deterministic. The second return is false when no night record carries
// location information.
func InferHome(records []model.Record) (model.Position, bool) {
	var nightRecords []model.Record
	for _, r := range records {
		if IsNight(r.Datetime) {
			nightRecords = append(nightRecords, r)
		}
	}

	counts, positions := tallyPositions(nightRecords)
	if len(counts) == 0 {
		return model.Position{}, false
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	homeKey := keys[0]
	for _, key := range keys[1:] {
		if counts[key] > counts[homeKey] {
			homeKey = key
		}
	}
	return positions[homeKey], true
}

// PercentAtHome returns the fraction of located records observed at the
// home position. Zero when home is unknown or nothing is located.
func PercentAtHome(records []model.Record, home model.Position) float64 {
	homeKey := home.Key()
	if homeKey == "" {
		return 0
	}

	var located, atHome int
	for _, r := range records {
		key := r.Position.Key()
		if key == "" {
			continue
		}
		located++
		if key == homeKey {
			atHome++
		}
	}
	if located == 0 {
		return 0
	}
	return float64(atHome) / float64(located)
}

// RadiusOfGyration returns the typical distance, in kilometers, between
// the subject's located records and their activity centroid. Only records
// with coordinates participate; zero means no coordinate data.
func RadiusOfGyration(records []model.Record) float64 {
	var coords []model.Position
	for _, r := range records {
		if r.Position.HasCoordinates {
			coords = append(coords, r.Position)
		}
	}
	if len(coords) == 0 {
		return 0
	}

	var sumLat, sumLon float64
	for _, p := range coords {
		sumLat += p.Latitude
		sumLon += p.Longitude
	}
	centroid := model.Position{
		Latitude:       sumLat / float64(len(coords)),
		Longitude:      sumLon / float64(len(coords)),
		HasCoordinates: true,
	}

	var sumSquares float64
	for _, p := range coords {
		d := p.DistanceKm(centroid)
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(coords)))
}

// FrequentAntennas returns the number of positions that together account
// for ParetoShare of the located records.
func FrequentAntennas(records []model.Record) int {
	counts, _ := tallyPositions(records)
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
	return needed
}
