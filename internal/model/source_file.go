package model

import "time"

// Source file roles.
const (
	// SourceRoleRecords marks a subject or correspondent record file.
	SourceRoleRecords = "records"
	// SourceRoleAntennas marks an antennas file.
	SourceRoleAntennas = "antennas"
	// SourceRoleMapping marks an identity mapping file.
	SourceRoleMapping = "mapping"
)

// SourceFile describes one CSV file ingested during an analysis run.
// Every loaded file is digested so reports and the history database can be
// tied back to the exact evidence files they were computed from.
type SourceFile struct {
	// Path is the file path as it was opened.
	Path string `json:"path"`

	// Role says what kind of file this was (records, antennas, mapping).
	Role string `json:"role"`

	// Rows is the number of data rows in the file, including rejected ones.
	Rows int `json:"rows"`

	// Digest is the SHA3-256 digest of the file contents, hex encoded.
	Digest string `json:"digest"`

	// IngestedAt is when the file was read.
	IngestedAt time.Time `json:"ingested_at"`
}
