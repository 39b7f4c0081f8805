package indicator

import (
	"math"
	"sort"

	"github.com/cdrscan/cdrscan/internal/model"
)

// MatrixIndex returns the matrix row/column order: the ego first, then the
// network's correspondent IDs sorted. Every matrix function aligns with
// this order.
func MatrixIndex(user *model.User) []string {
	correspondents := make([]string, 0, len(user.Network))
	for id := range user.Network {
		if id == user.ID {
			continue
		}
		correspondents = append(correspondents, id)
	}
	sort.Strings(correspondents)
	return append([]string{user.ID}, correspondents...)
}

// MatrixDirectedWeighted builds the directed interaction-count matrix.
// Cell (i, j) counts interactions initiated by i toward j according to
// i's own records. Rows of correspondents whose records were never loaded
// stay unknown: their traffic exists, we just cannot see it.
func MatrixDirectedWeighted(user *model.User) ([]string, model.Matrix) {
	index := MatrixIndex(user)
	matrix := model.NewMatrix(len(index))

	position := make(map[string]int, len(index))
	for i, id := range index {
		position[id] = i
	}

	for i, id := range index {
		rowUser := user
		if i > 0 {
			rowUser = user.Network[id]
		}
		if rowUser == nil {
			continue
		}

		// A loaded row is fully known: zero until proven otherwise.
		for j := range index {
			matrix.Set(i, j, 0)
		}
		for _, r := range rowUser.Records {
			if r.Direction != model.DirectionOut {
				continue
			}
			if j, ok := position[r.CorrespondentID]; ok {
				matrix.Add(i, j, 1)
			}
		}
	}
	return index, matrix
}

// MatrixDirectedUnweighted collapses a directed weighted matrix to 0/1.
func MatrixDirectedUnweighted(directed model.Matrix) model.Matrix {
	matrix := model.NewMatrix(len(directed))
	for i := range directed {
		for j := range directed[i] {
			v, ok := directed.Get(i, j)
			if !ok {
				continue
			}
			if v > 0 {
				matrix.Set(i, j, 1)
			} else {
				matrix.Set(i, j, 0)
			}
		}
	}
	return matrix
}

// MatrixUndirectedWeighted keeps only reciprocated pairs, with the weight
// summing both directions. One-way traffic (spam, wrong numbers) drops to
// zero here; cells where either direction is unknown stay unknown.
func MatrixUndirectedWeighted(directed model.Matrix) model.Matrix {
	matrix := model.NewMatrix(len(directed))
	for i := range directed {
		for j := range directed[i] {
			a, okA := directed.Get(i, j)
			b, okB := directed.Get(j, i)
			if !okA || !okB {
				continue
			}
			if a > 0 && b > 0 {
				matrix.Set(i, j, a+b)
			} else {
				matrix.Set(i, j, 0)
			}
		}
	}
	return matrix
}

// MatrixUndirectedUnweighted collapses an undirected weighted matrix to 0/1.
func MatrixUndirectedUnweighted(undirected model.Matrix) model.Matrix {
	return MatrixDirectedUnweighted(undirected)
}

// egoNeighbors returns the matrix indices connected to the ego (row 0).
func egoNeighbors(undirected model.Matrix) []int {
	var neighbors []int
	for j := 1; j < len(undirected); j++ {
		if v, ok := undirected.Get(0, j); ok && v > 0 {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// ClusteringCoefficientUnweighted returns the ego's clustering coefficient
// in the undirected unweighted network: 2T / k(k-1), the fraction of the
// ego's neighbor pairs that are themselves connected. Zero with fewer than
// two neighbors.
func ClusteringCoefficientUnweighted(undirected model.Matrix) float64 {
	neighbors := egoNeighbors(undirected)
	k := len(neighbors)
	if k < 2 {
		return 0
	}

	var triangles float64
	for x := 0; x < len(neighbors); x++ {
		for y := x + 1; y < len(neighbors); y++ {
			if v, ok := undirected.Get(neighbors[x], neighbors[y]); ok && v > 0 {
				triangles++
			}
		}
	}
	return 2 * triangles / float64(k*(k-1))
}

// ClusteringCoefficientWeighted returns the ego's weighted clustering
// coefficient in the Onnela form: the geometric mean of each triangle's
// weights, normalized by the largest weight in the matrix, averaged over
// the ego's neighbor pairs.
func ClusteringCoefficientWeighted(undirected model.Matrix) float64 {
	neighbors := egoNeighbors(undirected)
	k := len(neighbors)
	if k < 2 {
		return 0
	}
	maxWeight := undirected.Max()
	if maxWeight == 0 {
		return 0
	}

	var total float64
	for x := 0; x < len(neighbors); x++ {
		for y := x + 1; y < len(neighbors); y++ {
			wij, _ := undirected.Get(0, neighbors[x])
			wih, _ := undirected.Get(0, neighbors[y])
			wjh, ok := undirected.Get(neighbors[x], neighbors[y])
			if !ok {
				continue
			}
			total += math.Cbrt(wij / maxWeight * (wih / maxWeight) * (wjh / maxWeight))
		}
	}
	return 2 * total / float64(k*(k-1))
}

// AssortativityIndicators measures how much the ego resembles their loaded
// correspondents: for every registered scalar indicator, the mean squared
// difference between the ego's value and each in-network correspondent's.
// Small values mean the ego behaves like their network. Nil when no
// correspondent was loaded.
func AssortativityIndicators(user *model.User) map[string]float64 {
	var neighbors []*model.User
	for _, correspondent := range user.Network {
		if correspondent != nil && correspondent != user {
			neighbors = append(neighbors, correspondent)
		}
	}
	if len(neighbors) == 0 {
		return nil
	}

	egoValues := Scalars(user.Records)
	sums := make(map[string]float64, len(egoValues))
	for _, neighbor := range neighbors {
		for name, value := range Scalars(neighbor.Records) {
			d := egoValues[name] - value
			sums[name] += d * d
		}
	}

	assortativity := make(map[string]float64, len(sums))
	for name, sum := range sums {
		assortativity[name] = sum / float64(len(neighbors))
	}
	return assortativity
}

// PercentOutOfNetworkCalls returns the fraction of the ego's call records
// whose correspondent has no loaded record file.
func PercentOutOfNetworkCalls(user *model.User) float64 {
	var total, outside int
	for _, r := range user.Records {
		if r.Interaction != model.InteractionCall {
			continue
		}
		total++
		if !user.InNetwork(r.CorrespondentID) {
			outside++
		}
	}
	return ratio(outside, total)
}

// PercentOutOfNetworkTexts returns the fraction of the ego's text records
// whose correspondent has no loaded record file.
func PercentOutOfNetworkTexts(user *model.User) float64 {
	var total, outside int
	for _, r := range user.Records {
		if r.Interaction != model.InteractionText {
			continue
		}
		total++
		if !user.InNetwork(r.CorrespondentID) {
			outside++
		}
	}
	return ratio(outside, total)
}

// PercentOutOfNetworkContacts returns the fraction of distinct
// correspondents without a loaded record file.
func PercentOutOfNetworkContacts(user *model.User) float64 {
	correspondents := user.Correspondents()
	var outside int
	for _, id := range correspondents {
		if !user.InNetwork(id) {
			outside++
		}
	}
	return ratio(outside, len(correspondents))
}

// PercentOutOfNetworkCallDurations returns the fraction of total call
// seconds spent with correspondents without a loaded record file.
func PercentOutOfNetworkCallDurations(user *model.User) float64 {
	var total, outside int
	for _, r := range user.Records {
		if r.Interaction != model.InteractionCall {
			continue
		}
		total += r.CallDuration
		if !user.InNetwork(r.CorrespondentID) {
			outside += r.CallDuration
		}
	}
	return ratio(outside, total)
}

// ratio guards the zero denominator.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
