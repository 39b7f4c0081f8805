// Package database provides SQLite-based storage for cdrscan.
//
// This package implements the AnalysisDB, which stores:
//   - Ingested evidence files with content digests
//   - Contact links between subjects and their correspondents
//   - Analysis reports for historical comparison
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// A single database file serves the whole case directory so shared-contact
// queries can join across every subject analyzed so far.
package database
