package indicator

import (
	"math"
	"sort"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Summarize computes summary statistics over a distribution.
// Empty input yields all-zero statistics rather than NaN so results stay
// serializable and comparable without special cases downstream.
func Summarize(values []float64) model.Stats {
	if len(values) == 0 {
		return model.Stats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sumSquares float64
	for _, v := range sorted {
		d := v - mean
		sumSquares += d * d
	}

	return model.Stats{
		Mean:   mean,
		Std:    math.Sqrt(sumSquares / float64(len(sorted))),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// median returns the median of an already sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// Entropy computes the Shannon entropy, in nats, of a count distribution.
// Zero counts contribute nothing; an all-zero or empty distribution has
// entropy 0.
func Entropy(counts []int) float64 {
	var total int
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy
}
