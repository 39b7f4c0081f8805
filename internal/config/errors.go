package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSubject is returned when no subject id is specified.
	// This error occurs when the analyze or validate command is invoked
	// without positional subject arguments.
	ErrNoSubject = errors.New("no subject specified: provide at least one subject id")

	// ErrNoDataDir is returned when the records directory is empty.
	// Subject record files cannot be resolved without it.
	ErrNoDataDir = errors.New("no data directory specified: use --data to point at the records directory")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cancel analyses immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent analyses, effectively
	// stopping the run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidNetworkDepth is returned when the network traversal depth
	// is below 1. Depth 1 is the minimum: the subject's direct
	// correspondents.
	ErrInvalidNetworkDepth = errors.New("invalid network depth: must be at least 1")

	// ErrInvalidMaxContacts is returned when the network contact cap is
	// negative. Use 0 to keep the default cap.
	ErrInvalidMaxContacts = errors.New("invalid max network contacts: must be non-negative")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown and --csv is specified. Only one output format can be used
	// at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json, --markdown and --csv cannot be combined")
)
