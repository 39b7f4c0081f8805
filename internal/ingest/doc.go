// Package ingest loads call detail record CSV files into model types.
//
// # Architecture
//
// The package is designed around the Loader type, which coordinates loading
// a subject: the subject's own record file, the optional antennas and
// identity-mapping files, and the ego network built from correspondent
// record files. Network loading uses a work queue with a visited set and
// respects depth and contact limits.
//
// Design decision: We implement our own CSV handling on encoding/csv rather
// than using a third-party loader because:
//  1. Carrier exports are plain header-driven CSV with well-known columns
//  2. Rejected rows must be counted per failing field, not just skipped
//  3. Every file needs a content digest for chain of custody
//
// # Components
//
//   - ReadRecords / ReadAntennas / ReadMapping: single-file readers
//   - Loader: subject + ego-network loading with depth and contact limits
//   - Validate*: per-check validation used by the validate command
//
// # File conventions
//
// A subject id resolves to {dataDir}/{id}.csv. The ego network is built by
// loading, for each distinct correspondent in the subject's records, the
// file named after that correspondent id in the same directory.
// Correspondents without such a file are out of network.
//
// # Usage
//
//	loader := ingest.NewLoader("data", ingest.WithNetworkDepth(1))
//	user, err := loader.LoadSubject(ctx, subjectID)
//
// # Evidence handling
//
// Rows that fail validation are counted per field and excluded from the
// loaded records, never silently dropped. Exact duplicate rows are kept but
// counted. Every file read is digested with SHA3-256 so reports can be tied
// back to the exact evidence files they were computed from.
package ingest
