// Package model defines the core data structures used throughout cdrscan.
//
// This package contains the following main types:
//   - Record: A single call detail record (call or text)
//   - User: A subject's records, antennas, and ego network
//   - AnalysisReport: The main analysis result structure
//   - NetworkReport: Ego network matrices and coefficients
//   - SimpleReport: A summarized, human-readable report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (ingest, indicator, analyzer, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
