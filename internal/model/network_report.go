package model

// NetworkReport contains the ego network results for one subject.
// This is a sub-structure of AnalysisReport that groups everything computed
// from correspondent record files.
//
// Design decision: We group network results in a separate struct to:
// 1. Keep the main report struct more manageable
// 2. Make "network loading was off" representable as a nil section
// 3. Allow serializing the matrices separately for tools that consume them
type NetworkReport struct {
	// Loaded reports whether network loading was requested for this run.
	// When false every other field is empty and the report carries a
	// network_not_loaded finding instead.
	Loaded bool `json:"loaded"`

	// MatrixIndex is the row/column order of all matrices: the ego first,
	// then the correspondent IDs in sorted order.
	MatrixIndex []string `json:"matrix_index,omitempty"`

	// DirectedWeighted counts interactions directed from row to column,
	// according to the row user's own records. Rows of correspondents
	// without a record file are nil.
	DirectedWeighted Matrix `json:"directed_weighted,omitempty"`

	// DirectedUnweighted is DirectedWeighted with counts collapsed to 0/1.
	DirectedUnweighted Matrix `json:"directed_unweighted,omitempty"`

	// UndirectedWeighted keeps only reciprocated pairs and sums both
	// directions. One-way traffic (spam, wrong numbers) drops out here.
	UndirectedWeighted Matrix `json:"undirected_weighted,omitempty"`

	// UndirectedUnweighted is UndirectedWeighted collapsed to 0/1.
	UndirectedUnweighted Matrix `json:"undirected_unweighted,omitempty"`

	// ClusteringUnweighted is the ego's clustering coefficient in the
	// undirected unweighted network.
	ClusteringUnweighted float64 `json:"clustering_unweighted"`

	// ClusteringWeighted is the ego's clustering coefficient in the
	// undirected weighted network.
	ClusteringWeighted float64 `json:"clustering_weighted"`

	// Assortativity maps scalar indicator names to the mean squared
	// difference between the ego's value and each loaded correspondent's.
	Assortativity map[string]float64 `json:"assortativity,omitempty"`

	// PercentOutOfNetworkCalls is the fraction of the ego's call records
	// whose correspondent has no record file.
	PercentOutOfNetworkCalls float64 `json:"percent_outofnetwork_calls"`

	// PercentOutOfNetworkTexts is the equivalent fraction for texts.
	PercentOutOfNetworkTexts float64 `json:"percent_outofnetwork_texts"`

	// PercentOutOfNetworkContacts is the fraction of distinct correspondents
	// without a record file.
	PercentOutOfNetworkContacts float64 `json:"percent_outofnetwork_contacts"`

	// PercentOutOfNetworkDurations is the fraction of total call seconds
	// spent with out-of-network correspondents.
	PercentOutOfNetworkDurations float64 `json:"percent_outofnetwork_durations"`

	// InNetworkCount is the number of correspondents with a loaded file.
	InNetworkCount int `json:"in_network_count"`

	// OutOfNetworkCount is the number of correspondents without a file.
	OutOfNetworkCount int `json:"out_of_network_count"`
}

// Matrix is a square interaction matrix aligned with a MatrixIndex.
// Cells are nil when the value is unknown, which happens for every cell in
// the row of a correspondent whose own records were never loaded. JSON
// serialization turns unknown cells into null, keeping them distinct from
// genuine zero counts.
type Matrix [][]*float64

// NewMatrix creates an n by n matrix with every cell unknown.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]*float64, n)
	}
	return m
}

// Set stores a known value in cell (i, j).
func (m Matrix) Set(i, j int, v float64) {
	m[i][j] = &v
}

// Add adds v to cell (i, j), treating an unknown cell as 0.
func (m Matrix) Add(i, j int, v float64) {
	if m[i][j] == nil {
		m.Set(i, j, v)
		return
	}
	*m[i][j] += v
}

// Get returns the value of cell (i, j) and whether it is known.
func (m Matrix) Get(i, j int) (float64, bool) {
	if m[i][j] == nil {
		return 0, false
	}
	return *m[i][j], true
}

// Max returns the largest known value in the matrix, or 0 when no cell is known.
func (m Matrix) Max() float64 {
	max := 0.0
	for i := range m {
		for j := range m[i] {
			if m[i][j] != nil && *m[i][j] > max {
				max = *m[i][j]
			}
		}
	}
	return max
}

// NewNetworkReport creates a NetworkReport for a run where network loading
// was requested.
func NewNetworkReport() *NetworkReport {
	return &NetworkReport{
		Loaded:        true,
		Assortativity: make(map[string]float64),
	}
}
