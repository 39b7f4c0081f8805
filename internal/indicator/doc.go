// Package indicator computes behavioral, relational, spatial, and network
// indicators over call detail records.
//
// # Purpose
//
// Everything in this package is a pure function over model.Record slices or
// model.User values: no I/O, no shared state, results depend only on the
// inputs. The pipeline package calls these functions and stores their
// results in the report sections; the analyzer package reads those sections
// to raise findings.
//
// # Indicator Groups
//
// Indicators are grouped by what they need as input:
//
// ## Individual (individual.go, spatial.go, grouping.go)
//   - Activity volumes, contact diversity, call duration statistics
//   - Entropy and balance of contacts, pareto concentration
//   - Antenna diversity, home attachment, radius of gyration
//   - Week-by-week distributions of every scalar indicator
//
// ## Relational (relationship.go, temporal.go, location.go)
//   - Per-correspondent strength, reciprocity, and initiation scores
//   - Communication gaps, activity bursts, hourly profiles
//   - Frequent and unusual locations, transitions, time at locations
//
// ## Multi-user (network.go, colocation.go, group.go)
//   - Ego network matrices, clustering, assortativity
//   - Co-location overlaps, travel pattern matches, meetings
//   - Cross-subject communication structure for case summaries
//
// # Missing Data
//
// Carrier exports differ in what they carry. Indicators that depend on
// absent data (locations, calls, a loaded network) return zero values or
// empty slices; callers decide whether absence is worth reporting. Functions
// never panic on empty input.
//
// # Conventions
//
// Night hours run from 19:00 to 07:00. Durations are seconds, distances are
// kilometers, and entropy is measured in nats. Thresholds follow the
// defaults used throughout: gap 24h, burst window 30min at 3x the average
// rate, co-location window 30min, travel window 60min.
package indicator
