package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdrscan/cdrscan/internal/model"
)

// ErrSubjectNotFound is returned when a subject's record file does not exist.
var ErrSubjectNotFound = errors.New("subject record file not found")

// Loader loads a subject's records and optionally their ego network.
// It manages a queue of correspondent ids to visit and respects depth and
// contact limits.
//
// A Loader accumulates per-run state (visited ids, source files) and is not
// safe for concurrent use; batch runs create one Loader per subject.
type Loader struct {
	// dataDir is the directory containing {id}.csv record files.
	dataDir string

	// antennasPath is the optional antennas CSV file.
	antennasPath string

	// mappingPath is the optional identity mapping CSV file.
	mappingPath string

	// maxDepth limits how deep to traverse from the subject.
	// 1 means direct correspondents only, 2 adds their correspondents, etc.
	maxDepth int

	// maxContacts limits the total number of correspondent files loaded.
	// This prevents runaway loads for subjects with thousands of
	// correspondents.
	maxContacts int

	// excludePatterns are correspondent ids to skip during network loading.
	// Patterns use glob syntax (e.g., "1??", "*000") and typically name
	// service numbers and short codes.
	excludePatterns []string

	// sources records every file read during the run.
	sources []model.SourceFile

	// stats tracks network loading counters.
	stats LoaderStats
}

// LoaderStats contains ego-network loading statistics.
type LoaderStats struct {
	// FilesLoaded is the number of correspondent record files read.
	FilesLoaded int

	// FilesMissing is the number of correspondents without a record file.
	FilesMissing int

	// Excluded is the number of correspondents skipped by exclude patterns.
	Excluded int

	// CapReached reports whether the contact cap stopped loading before the
	// traversal finished.
	CapReached bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithNetworkDepth sets the maximum traversal depth.
// 1 = direct correspondents, 2 = correspondents of correspondents, etc.
func WithNetworkDepth(depth int) LoaderOption {
	return func(l *Loader) {
		l.maxDepth = depth
	}
}

// WithMaxContacts sets the maximum number of correspondent files to load.
func WithMaxContacts(maxContacts int) LoaderOption {
	return func(l *Loader) {
		l.maxContacts = maxContacts
	}
}

// WithExcludePatterns sets correspondent id patterns to skip during network
// loading. Patterns use glob syntax (e.g., "1??", "*000", "555*").
func WithExcludePatterns(patterns []string) LoaderOption {
	return func(l *Loader) {
		l.excludePatterns = patterns
	}
}

// WithAntennas sets the antennas CSV file to load coordinates from.
func WithAntennas(path string) LoaderOption {
	return func(l *Loader) {
		l.antennasPath = path
	}
}

// WithMapping sets the identity mapping CSV file to resolve display names.
func WithMapping(path string) LoaderOption {
	return func(l *Loader) {
		l.mappingPath = path
	}
}

// NewLoader creates a new Loader reading record files from dataDir.
func NewLoader(dataDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dataDir:     dataDir,
		maxDepth:    1,
		maxContacts: 500,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadSubject loads the subject's record file plus the configured antennas
// and identity mapping files. It does not load the ego network; callers that
// want one call LoadNetwork afterwards.
func (l *Loader) LoadSubject(ctx context.Context, subject model.SubjectID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dataDir, subject.FileName())
	result, err := ReadRecords(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, path)
		}
		return nil, err
	}
	l.sources = append(l.sources, result.Source)

	user := model.NewUser(subject.String())
	user.Records = result.Records
	user.IgnoredRecords = result.Ignored
	user.DuplicateRecords = result.Duplicates

	if l.antennasPath != "" {
		antennas, err := ReadAntennas(l.antennasPath)
		if err != nil {
			return nil, fmt.Errorf("load antennas: %w", err)
		}
		l.sources = append(l.sources, antennas.Source)
		user.Antennas = antennas.Antennas
		AttachAntennas(user.Records, user.Antennas)
	}

	if l.mappingPath != "" {
		mapping, err := ReadMapping(l.mappingPath)
		if err != nil {
			return nil, fmt.Errorf("load identity mapping: %w", err)
		}
		l.sources = append(l.sources, mapping.Source)
		user.NameMap = mapping.Names
	}

	return user, nil
}

// LoadNetwork loads the user's ego network from {correspondent_id}.csv files
// using a breadth-first traversal bounded by depth and contact limits.
//
// Every correspondent gets an entry in the user's Network map: the loaded
// *User when a record file exists, nil when it does not. Keeping missing
// correspondents as keys preserves the distinction between "no such
// correspondent" and "correspondent known, records unavailable", which the
// out-of-network indicators depend on.
func (l *Loader) LoadNetwork(ctx context.Context, user *model.User) error {
	user.NetworkLoaded = true

	// loaded doubles as the visited set. The subject is pre-registered so
	// mutual correspondents link back to the same object instead of
	// re-reading the subject's file.
	loaded := map[string]*model.User{user.ID: user}

	queue := make([]queueItem, 0)
	for _, id := range user.Correspondents() {
		queue = append(queue, queueItem{parent: user, id: id, depth: 1})
	}

	for len(queue) > 0 {
		// Check context
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Pop from queue
		item := queue[0]
		queue = queue[1:]

		// Already resolved ids just get linked into this parent's network.
		if correspondent, ok := loaded[item.id]; ok {
			item.parent.Network[item.id] = correspondent
			continue
		}

		if l.excluded(item.id) {
			item.parent.Network[item.id] = nil
			loaded[item.id] = nil
			l.stats.Excluded++
			continue
		}

		if l.stats.FilesLoaded >= l.maxContacts {
			item.parent.Network[item.id] = nil
			loaded[item.id] = nil
			l.stats.CapReached = true
			continue
		}

		correspondent, ok := l.loadCorrespondent(item.id, user.Antennas)
		loaded[item.id] = correspondent
		item.parent.Network[item.id] = correspondent
		if !ok {
			l.stats.FilesMissing++
			continue
		}
		l.stats.FilesLoaded++

		// Queue the correspondent's own contacts if within depth limit.
		if item.depth < l.maxDepth {
			correspondent.NetworkLoaded = true
			for _, id := range correspondent.Correspondents() {
				queue = append(queue, queueItem{parent: correspondent, id: id, depth: item.depth + 1})
			}
		}
	}

	return nil
}

// queueItem represents an item in the network traversal queue.
type queueItem struct {
	parent *model.User
	id     string
	depth  int
}

// loadCorrespondent reads one correspondent's record file. A missing or
// unreadable file returns (nil, false): the correspondent stays known but
// out of network.
func (l *Loader) loadCorrespondent(id string, antennas map[string]model.Position) (*model.User, bool) {
	// Ids that cannot be file names cannot have record files.
	subject, err := model.NewSubjectID(id)
	if err != nil {
		return nil, false
	}

	result, err := ReadRecords(filepath.Join(l.dataDir, subject.FileName()))
	if err != nil {
		return nil, false
	}
	l.sources = append(l.sources, result.Source)

	correspondent := model.NewUser(subject.String())
	correspondent.Records = result.Records
	correspondent.IgnoredRecords = result.Ignored
	correspondent.DuplicateRecords = result.Duplicates
	if len(antennas) > 0 {
		correspondent.Antennas = antennas
		AttachAntennas(correspondent.Records, antennas)
	}

	return correspondent, true
}

// excluded checks whether a correspondent id matches any exclude pattern.
func (l *Loader) excluded(id string) bool {
	for _, pattern := range l.excludePatterns {
		if matched, err := filepath.Match(pattern, id); err == nil && matched {
			return true
		}
	}
	return false
}

// Sources returns the files read so far, in load order.
func (l *Loader) Sources() []model.SourceFile {
	return l.sources
}

// Stats returns current network loading statistics.
func (l *Loader) Stats() LoaderStats {
	return l.stats
}

// Reset clears the loader's state, allowing it to be reused.
func (l *Loader) Reset() {
	l.sources = nil
	l.stats = LoaderStats{}
}
