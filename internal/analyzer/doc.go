// Package analyzer turns computed indicators into ranked findings.
//
// # Purpose
//
// This package reads the analysis report built by the pipeline (and, on
// multi-subject runs, the case summary) and flags the patterns a case
// reviewer should look at first: silent periods, one-sided relationships,
// links between subjects, and weaknesses in the evidence itself.
//
// # Design Philosophy
//
// The analyzer package follows a modular analyzer pattern where each group
// of checks is implemented as a separate Analyzer. This design was chosen
// because:
//  1. Each check group reads different report sections
//  2. Enables selective analysis based on what data is present
//  3. Makes it easy to add new checks without modifying existing code
//  4. Simplifies testing of individual analysis components
//
// # Analyzer Categories
//
// Analyzers are grouped into categories based on what they flag:
//
// ## Behavior
//   - Communication gaps and extended dark periods
//   - Activity bursts against the line's normal rate
//   - Night-dominated activity
//   - One-sided and dominant relationships
//   - Contacts that surge in or cease
//
// ## Network
//   - Missing or empty ego networks
//   - High out-of-network traffic shares
//   - Hub-and-spoke ego networks with no lateral links
//   - Direct links, shared contacts, bridges, relays, meetings, and
//     gatherings between case subjects
//
// ## Quality
//   - Rejected and duplicate rows in the export
//   - Missing location columns or antenna coordinates
//   - Observation periods too short to trust
//
// # Usage
//
//	a := analyzer.NewAnalyzer()
//	findings, err := a.Analyze(ctx, data)
//
// # Severity Levels
//
// Findings carry severity from the central mapping in internal/model:
//   - Critical: direct links between case subjects
//   - High: strong investigative value (meetings, shared contacts)
//   - Medium: behavioral patterns worth review (gaps, bursts)
//   - Low: evidence quality notes (duplicates, missing coordinates)
//   - Info: context that qualifies other findings
package analyzer
