package analyzer

import (
	"context"

	"github.com/cdrscan/cdrscan/internal/model"
)

// Analyzer category constants.
const (
	// CategoryBehavior is used by analyzers that flag behavioral patterns.
	CategoryBehavior = "behavior"
	// CategoryNetwork is used by analyzers that flag network structure and
	// links between subjects.
	CategoryNetwork = "network"
	// CategoryQuality is used by analyzers that flag evidence quality issues.
	CategoryQuality = "quality"
)

// Analyzer coordinates finding generation across multiple analyzers.
// It aggregates findings from different check groups into a unified list.
//
// Design decision: We use a coordinator pattern rather than running analyzers
// independently because:
//  1. Unified severity assessment across all findings
//  2. Deduplication of similar findings
//  3. Consistent context and cancellation handling
type Analyzer struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []CheckAnalyzer
}

// CheckAnalyzer defines the interface for individual analyzers.
// Each analyzer focuses on one group of checks.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new analyzers
//  2. Enables testing with mock analyzers
//  3. Supports different analyzer implementations for the same check group
type CheckAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Category returns the analyzer's category (behavior, network, quality).
	Category() string

	// Analyze runs the analysis on the provided data.
	// It returns findings discovered during analysis.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}

// AnalysisData contains all data available for analysis.
//
// Design decision: We pass all data in a single struct rather than
// multiple parameters because:
//  1. Not all analyzers need all data types
//  2. Adding new data types doesn't change analyzer signatures
//  3. Easier to mock in tests
type AnalysisData struct {
	// Subject is the subject identifier being analyzed.
	Subject string

	// User is the loaded subject with records and ego network.
	User *model.User

	// Report is the analysis report computed by the earlier pipeline steps.
	Report *model.AnalysisReport

	// Case holds the cross-subject results of a multi-subject run.
	// Nil on single-subject runs; the cross-subject analyzer then no-ops.
	Case *model.CaseSummary

	// Users holds every loaded subject of a multi-subject run.
	// Nil on single-subject runs.
	Users []*model.User
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		analyzers: make([]CheckAnalyzer, 0),
	}

	// Register built-in analyzers
	// Behavior analyzers
	a.Register(NewTemporalAnalyzer())
	a.Register(NewRelationshipAnalyzer())

	// Network analyzers
	a.Register(NewNetworkAnalyzer())
	a.Register(NewCrossSubjectAnalyzer())

	// Evidence quality analyzers
	a.Register(NewQualityAnalyzer())

	return a
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer CheckAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Analyze runs all registered analyzers and aggregates findings.
func (a *Analyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	var allFindings []model.Finding

	for _, analyzer := range a.analyzers {
		select {
		case <-ctx.Done():
			return allFindings, ctx.Err()
		default:
		}

		findings, err := analyzer.Analyze(ctx, data)
		if err != nil {
			// Skip the failing analyzer but keep going.
			// We want to collect as many findings as possible.
			continue
		}

		allFindings = append(allFindings, findings...)
	}

	// Deduplicate findings
	allFindings = deduplicateFindings(allFindings)

	return allFindings, nil
}

// deduplicateFindings removes duplicate findings based on title and value.
//
// Design decision: We deduplicate by title+value rather than just value because:
//  1. Same value might have different meanings in different contexts
//  2. Multiple analyzers might flag the same thing
//  3. We want to keep the most severe instance of each finding
func deduplicateFindings(findings []model.Finding) []model.Finding {
	seen := make(map[string]int) // key -> index in result
	result := make([]model.Finding, 0)

	for _, f := range findings {
		key := f.Title + "|" + f.Value
		if idx, exists := seen[key]; exists {
			// Keep the more severe finding
			if f.Severity > result[idx].Severity {
				result[idx] = f
			}
		} else {
			seen[key] = len(result)
			result = append(result, f)
		}
	}

	return result
}
