package analyzer

import (
	"context"
	"fmt"

	"github.com/cdrscan/cdrscan/internal/model"
)

// NetworkAnalyzer flags ego network structure issues: missing or empty
// networks, lines whose calls mostly leave the case file, and hub-and-spoke
// networks whose contacts never talk to each other.
type NetworkAnalyzer struct {
	// outOfNetworkShare is the fraction of calls to out-of-network
	// correspondents above which coverage counts as poor.
	outOfNetworkShare float64

	// minCallSample keeps lines with a handful of calls from being flagged
	// for poor network coverage.
	minCallSample int

	// minNeighbors is how many in-network contacts an ego network needs
	// before zero clustering is meaningful. Two contacts that don't talk
	// to each other is unremarkable; five is a shape.
	minNeighbors int
}

// NewNetworkAnalyzer creates a new NetworkAnalyzer.
func NewNetworkAnalyzer() *NetworkAnalyzer {
	return &NetworkAnalyzer{
		outOfNetworkShare: 0.8,
		minCallSample:     10,
		minNeighbors:      3,
	}
}

// Name returns the analyzer name.
func (a *NetworkAnalyzer) Name() string {
	return "network"
}

// Category returns the analyzer category.
func (a *NetworkAnalyzer) Category() string {
	return CategoryNetwork
}

// Analyze flags missing networks, poor network coverage, and isolated ego
// networks.
func (a *NetworkAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	if data.User == nil {
		return findings, nil
	}

	if !data.User.NetworkLoaded {
		findings = append(findings, model.NewFinding(
			"network_not_loaded",
			"Ego Network Not Loaded",
			"Network indicators were skipped because network loading was not requested.",
			data.Subject,
			data.Subject,
		))
		return findings, nil
	}

	if !data.User.HasNetwork() {
		findings = append(findings, model.NewFinding(
			"empty_network",
			"Empty Ego Network",
			"Network loading was requested but no correspondent record file was found.",
			data.Subject,
			data.Subject,
		))
		return findings, nil
	}

	network := networkReport(data)
	if network == nil {
		return findings, nil
	}

	if calls := countCalls(data.User.Records); calls >= a.minCallSample &&
		network.PercentOutOfNetworkCalls >= a.outOfNetworkShare {
		findings = append(findings, model.NewFinding(
			"high_outofnetwork_ratio",
			"High Out-of-Network Call Share",
			fmt.Sprintf("%.0f%% of the line's %d calls go to correspondents with no records in the case file.",
				network.PercentOutOfNetworkCalls*100, calls),
			fmt.Sprintf("%.0f%% of calls", network.PercentOutOfNetworkCalls*100),
			data.Subject,
		))
	}

	if network.InNetworkCount >= a.minNeighbors && network.ClusteringUnweighted == 0 {
		findings = append(findings, model.NewFinding(
			"isolated_ego_network",
			"Isolated Ego Network",
			fmt.Sprintf("None of the subject's %d in-network contacts communicate with each other.",
				network.InNetworkCount),
			fmt.Sprintf("%d unconnected contacts", network.InNetworkCount),
			data.Subject,
		))
	}

	return findings, nil
}

// networkReport returns the computed network section, or nil when the
// pipeline skipped it.
func networkReport(data *AnalysisData) *model.NetworkReport {
	if data.Report == nil || data.Report.Network == nil || !data.Report.Network.Loaded {
		return nil
	}
	return data.Report.Network
}

// countCalls counts call records.
func countCalls(records []model.Record) int {
	calls := 0
	for _, r := range records {
		if r.Interaction == model.InteractionCall {
			calls++
		}
	}
	return calls
}
