package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical call detail record (CDR) export
// sizes and the behavior of the original investigation tooling where
// applicable.
const (
	// DefaultDataDir is the directory searched for per-subject record CSVs.
	// Investigation exports conventionally land in a "data" directory
	// containing one {subject_id}.csv per phone line plus optional
	// antennas.csv and _ID_MAPPING.csv files.
	DefaultDataDir = "data"

	// DefaultTimeout is the per-subject analysis deadline. Two minutes is
	// generous for a single subject; deep ego-network traversals over large
	// exports may need this increased via the --timeout flag.
	DefaultTimeout = 120 * time.Second

	// DefaultNetworkDepth of 1 loads only the subject's direct
	// correspondents. Depth 2 additionally loads the correspondents of
	// correspondents, and so on. Each level multiplies the number of CSV
	// files read, so higher depths are opt-in.
	DefaultNetworkDepth = 1

	// DefaultBatchSize of 4 concurrent subjects balances throughput with
	// memory usage. Analysis is CPU-bound, so values far above the core
	// count buy nothing; each in-flight subject also holds its full record
	// set and ego network in memory.
	DefaultBatchSize = 4

	// DefaultMaxNetworkContacts caps how many correspondent files the
	// ego-network loader will read per subject. This prevents runaway loads
	// for subjects with thousands of correspondents (call centers, service
	// numbers). Users can override this via the config file.
	DefaultMaxNetworkContacts = 500

	// AppName is the application name used for XDG directory paths.
	AppName = "cdrscan"
)

// Config holds all configuration options for cdrscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., IngestConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// DataDir is the directory containing per-subject record CSV files.
	// Every subject id is resolved to {DataDir}/{subject_id}.csv, and the
	// ego-network loader resolves correspondent files the same way.
	DataDir string

	// AntennasPath is the path to the antennas CSV file (antenna_id,
	// latitude, longitude). When empty, records keep their antenna ids but
	// location indicators that need coordinates are skipped.
	AntennasPath string

	// MappingPath is the path to the id-mapping CSV file (phone_number,
	// name). When set, reports render display names next to raw
	// correspondent ids. Unmapped ids render as-is.
	MappingPath string

	// LoadNetwork enables ego-network loading: for each correspondent in
	// the subject's records, the loader attempts to read
	// {DataDir}/{correspondent_id}.csv. Correspondents without such a file
	// are counted as out of network.
	//
	// Network indicators (clustering, assortativity, out-of-network
	// ratios) require this to be true; otherwise they report the network
	// as not loaded.
	LoadNetwork bool

	// NetworkDepth is the maximum traversal depth for ego-network loading.
	// Depth 1 loads direct correspondents only.
	NetworkDepth int

	// MaxNetworkContacts caps the number of correspondent files loaded per
	// subject. A value of 0 means use the default.
	MaxNetworkContacts int

	// Timeout is the analysis deadline for a single subject.
	// This bounds the whole per-subject pipeline, not individual steps.
	Timeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Quiet suppresses the human-readable report on stdout. File outputs
	// requested via ReportFile are still written.
	Quiet bool

	// BatchSize is the number of concurrent subject analyses when multiple
	// subjects are given. Higher values increase throughput at the cost of
	// memory.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .cdrscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SubjectConfigs holds per-subject configurations loaded from the
	// config file. This is populated by LoadConfigFile and consulted when
	// building each subject's analysis options.
	SubjectConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// When true, outputs detailed JSON with all collected data.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with MarkdownReport and CSVReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. When true, outputs GitHub Flavored Markdown with tables, alerts,
	// and pie charts. Mutually exclusive with JSONReport and CSVReport.
	MarkdownReport bool

	// CSVReport enables flattened key,value CSV output of the indicator
	// sections, the exchange format downstream spreadsheet tooling consumes.
	// Mutually exclusive with JSONReport and MarkdownReport.
	CSVReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Subjects is the list of subject ids to analyze. Each id must resolve
	// to a record CSV under DataDir.
	Subjects []string

	// DBDir is the directory path for storing the SQLite history database.
	// When set, analysis results are saved for later comparison via the
	// compare command. Defaults to the XDG data directory
	// (~/.local/share/cdrscan on Linux).
	DBDir string

	// SaveToDB indicates whether to save analysis results to the database.
	// Disabled by the --no-save flag.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DataDir:            DefaultDataDir,
		Timeout:            DefaultTimeout,
		NetworkDepth:       DefaultNetworkDepth,
		BatchSize:          DefaultBatchSize,
		MaxNetworkContacts: DefaultMaxNetworkContacts,
	}
}

// XDGDataDir returns the XDG data directory for cdrscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/cdrscan
// On macOS: ~/Library/Application Support/cdrscan
// On Windows: %LOCALAPPDATA%\cdrscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cdrscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/cdrscan
// On macOS: ~/Library/Application Support/cdrscan
// On Windows: %APPDATA%\cdrscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for cdrscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/cdrscan
// On macOS: ~/Library/Caches/cdrscan
// On Windows: %LOCALAPPDATA%\cdrscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any analysis begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one subject to analyze
	if len(c.Subjects) == 0 {
		return ErrNoSubject
	}

	// A records directory is required to resolve subject CSVs
	if c.DataDir == "" {
		return ErrNoDataDir
	}

	// Timeout must be positive; zero timeout would cancel analyses immediately
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no analysis
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Network traversal must visit at least the direct correspondents
	if c.NetworkDepth < 1 {
		return ErrInvalidNetworkDepth
	}

	// MaxNetworkContacts must be non-negative; 0 means use the default
	if c.MaxNetworkContacts < 0 {
		return ErrInvalidMaxContacts
	}

	// Report formats are mutually exclusive
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
