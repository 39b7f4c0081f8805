package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/cdrscan/cdrscan/internal/analyzer"
	"github.com/cdrscan/cdrscan/internal/config"
	"github.com/cdrscan/cdrscan/internal/database"
	"github.com/cdrscan/cdrscan/internal/indicator"
	"github.com/cdrscan/cdrscan/internal/ingest"
	"github.com/cdrscan/cdrscan/internal/model"
)

// LoadStep reads the subject's record file plus the configured antennas and
// identity mapping files, and optionally the ego network.
//
// Design decision: Loading is a separate step because:
// 1. It's the foundation every other step builds on
// 2. A load failure should abort the pipeline with a clear error
// 3. Per-subject configuration (network, excludes) applies here
type LoadStep struct {
	// dataDir is the directory containing {id}.csv record files.
	dataDir string

	// antennasPath is the optional antennas CSV file.
	antennasPath string

	// mappingPath is the optional identity mapping CSV file.
	mappingPath string

	// loadNetwork enables ego-network loading.
	loadNetwork bool

	// networkDepth limits ego-network traversal depth.
	networkDepth int

	// maxContacts caps the number of correspondent files loaded.
	maxContacts int

	// subjectConfigs holds per-subject overrides from the config file.
	subjectConfigs *config.File

	// logger for structured logging.
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadAntennas sets the antennas CSV file path.
func WithLoadAntennas(path string) LoadStepOption {
	return func(s *LoadStep) {
		s.antennasPath = path
	}
}

// WithLoadMapping sets the identity mapping CSV file path.
func WithLoadMapping(path string) LoadStepOption {
	return func(s *LoadStep) {
		s.mappingPath = path
	}
}

// WithLoadNetwork enables or disables ego-network loading.
func WithLoadNetwork(enabled bool) LoadStepOption {
	return func(s *LoadStep) {
		s.loadNetwork = enabled
	}
}

// WithLoadNetworkDepth sets the ego-network traversal depth.
func WithLoadNetworkDepth(depth int) LoadStepOption {
	return func(s *LoadStep) {
		if depth > 0 {
			s.networkDepth = depth
		}
	}
}

// WithLoadMaxContacts caps the number of correspondent files loaded.
func WithLoadMaxContacts(maxContacts int) LoadStepOption {
	return func(s *LoadStep) {
		if maxContacts > 0 {
			s.maxContacts = maxContacts
		}
	}
}

// WithLoadSubjectConfigs sets per-subject configuration overrides.
func WithLoadSubjectConfigs(cf *config.File) LoadStepOption {
	return func(s *LoadStep) {
		s.subjectConfigs = cf
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step reading record files from dataDir.
func NewLoadStep(dataDir string, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		dataDir:      dataDir,
		networkDepth: config.DefaultNetworkDepth,
		maxContacts:  config.DefaultMaxNetworkContacts,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
//
// Per-subject configuration is resolved here rather than at pipeline
// construction, so one pipeline factory serves a whole batch while each
// subject still gets its own network depth and exclude patterns.
func (s *LoadStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	subject, err := model.NewSubjectID(report.Subject)
	if err != nil {
		return err
	}

	loadNetwork := s.loadNetwork
	depth := s.networkDepth
	antennasPath := s.antennasPath
	mappingPath := s.mappingPath
	var excludePatterns []string

	if s.subjectConfigs != nil {
		sc := s.subjectConfigs.GetSubjectConfig(report.Subject)
		if sc.Network {
			loadNetwork = true
		}
		if sc.Depth != 0 {
			depth = sc.Depth
		}
		if len(sc.ExcludePatterns) > 0 {
			excludePatterns = sc.ExcludePatterns
		}
		if sc.Antennas != "" {
			antennasPath = sc.Antennas
		}
		if sc.Mapping != "" {
			mappingPath = sc.Mapping
		}
	}

	loaderOpts := []ingest.LoaderOption{
		ingest.WithNetworkDepth(depth),
		ingest.WithMaxContacts(s.maxContacts),
	}
	if antennasPath != "" {
		loaderOpts = append(loaderOpts, ingest.WithAntennas(antennasPath))
	}
	if mappingPath != "" {
		loaderOpts = append(loaderOpts, ingest.WithMapping(mappingPath))
	}
	if len(excludePatterns) > 0 {
		loaderOpts = append(loaderOpts, ingest.WithExcludePatterns(excludePatterns))
	}

	// One Loader per subject; the Loader accumulates run state and is not
	// safe for concurrent use.
	loader := ingest.NewLoader(s.dataDir, loaderOpts...)

	user, err := loader.LoadSubject(ctx, subject)
	if err != nil {
		return err
	}

	if loadNetwork {
		if err := loader.LoadNetwork(ctx, user); err != nil {
			return err
		}
	}

	report.User = user
	report.Sources = loader.Sources()
	for _, source := range report.Sources {
		if source.Role == model.SourceRoleRecords {
			report.SourcePath = source.Path
			report.SourceDigest = source.Digest
			break
		}
	}

	stats := loader.Stats()
	report.Ingest = &model.IngestStats{
		NetworkFilesLoaded:  stats.FilesLoaded,
		NetworkFilesMissing: stats.FilesMissing,
	}

	s.logger.Info("subject loaded",
		"subject", report.Subject,
		"records", len(user.Records),
		"network_files", stats.FilesLoaded,
	)
	if stats.CapReached {
		s.logger.Warn("network contact cap reached, ego network is truncated",
			"subject", report.Subject,
			"max_contacts", s.maxContacts,
		)
	}

	return nil
}

// ScrubStep computes ingest statistics and data presence flags from the
// loaded records.
//
// Design decision: Scrubbing is separate from loading because it inspects
// what was loaded rather than how: the loader owns file IO, this step owns
// the data-quality accounting that later steps and analyzers read.
type ScrubStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// ScrubStepOption configures a ScrubStep.
type ScrubStepOption func(*ScrubStep)

// WithScrubLogger sets a custom logger for the scrub step.
func WithScrubLogger(logger *slog.Logger) ScrubStepOption {
	return func(s *ScrubStep) {
		s.logger = logger
	}
}

// NewScrubStep creates a new scrub step.
func NewScrubStep(opts ...ScrubStepOption) *ScrubStep {
	s := &ScrubStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScrubStep) Name() string {
	return "scrub"
}

// Do executes the scrub step.
func (s *ScrubStep) Do(_ context.Context, report *model.AnalysisReport) error {
	user := report.User
	if user == nil {
		s.logger.Debug("skipping scrub, no subject loaded")
		return nil
	}

	if report.Ingest == nil {
		report.Ingest = &model.IngestStats{}
	}
	report.Ingest.RecordCount = len(user.Records)
	report.Ingest.IgnoredRecords = user.IgnoredRecords
	report.Ingest.DuplicateRecords = user.DuplicateRecords
	report.Ingest.Start, report.Ingest.End = user.DateRange()
	report.Ingest.AntennaCount = len(user.Antennas)

	report.HasCalls = user.HasCalls()
	report.HasTexts = user.HasTexts()
	report.HasAntennas = user.HasAntennas()
	report.HasNetwork = user.HasNetwork()

	if user.IgnoredRecords.HasAny() {
		s.logger.Warn("rows were rejected during ingest",
			"subject", report.Subject,
			"rejected", user.IgnoredRecords.All,
			"loaded", len(user.Records),
		)
	}

	s.logger.Debug("scrub completed",
		"subject", report.Subject,
		"records", report.Ingest.RecordCount,
		"duplicates", report.Ingest.DuplicateRecords,
	)

	return nil
}

// IndicatorStep computes the behavioral indicator sections: scalar
// indicators with their weekly distributions, temporal patterns,
// relationship summaries, and spatial results.
type IndicatorStep struct {
	// gapThreshold is the minimum silence reported as a communication gap.
	gapThreshold time.Duration

	// topLocations caps the frequent locations ranking.
	topLocations int

	// maxUnusualVisits is the visit ceiling for unusual locations.
	maxUnusualVisits int

	// logger for structured logging.
	logger *slog.Logger
}

// IndicatorStepOption configures an IndicatorStep.
type IndicatorStepOption func(*IndicatorStep)

// WithIndicatorGapThreshold sets the communication gap threshold.
func WithIndicatorGapThreshold(d time.Duration) IndicatorStepOption {
	return func(s *IndicatorStep) {
		if d > 0 {
			s.gapThreshold = d
		}
	}
}

// WithIndicatorLogger sets a custom logger for the indicator step.
func WithIndicatorLogger(logger *slog.Logger) IndicatorStepOption {
	return func(s *IndicatorStep) {
		s.logger = logger
	}
}

// NewIndicatorStep creates a new indicator computation step.
func NewIndicatorStep(opts ...IndicatorStepOption) *IndicatorStep {
	s := &IndicatorStep{
		gapThreshold:     indicator.DefaultGapThreshold,
		topLocations:     10,
		maxUnusualVisits: 2,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *IndicatorStep) Name() string {
	return "indicators"
}

// Do executes the indicator step.
func (s *IndicatorStep) Do(_ context.Context, report *model.AnalysisReport) error {
	user := report.User
	if user == nil {
		s.logger.Debug("skipping indicators, no subject loaded")
		return nil
	}

	records := user.Records

	ind := &model.IndicatorReport{
		ActiveDays:                indicator.ActiveDays(records),
		NumberOfContacts:          indicator.NumberOfContacts(records),
		NumberOfInteractions:      indicator.NumberOfInteractions(records),
		NumberOfInteractionsIn:    indicator.NumberOfInteractionsIn(records),
		NumberOfInteractionsOut:   indicator.NumberOfInteractionsOut(records),
		CallDuration:              indicator.CallDurationStats(records),
		PercentNocturnal:          indicator.PercentNocturnal(records),
		PercentInitiated:          indicator.PercentInitiated(records),
		EntropyOfContacts:         indicator.EntropyOfContacts(records),
		BalanceOfContacts:         indicator.BalanceOfContacts(records),
		InteractionsPerContact:    indicator.InteractionsPerContact(records),
		InterEventTime:            indicator.InterEventTimes(records),
		PercentParetoInteractions: indicator.PercentParetoInteractions(records),
		NumberOfAntennas:          indicator.NumberOfAntennas(records),
		EntropyOfAntennas:         indicator.EntropyOfAntennas(records),
		RadiusOfGyration:          indicator.RadiusOfGyration(records),
		FrequentAntennas:          indicator.FrequentAntennas(records),
		Weekly:                    indicator.WeeklyStats(records),
	}

	// Home inference feeds PercentAtHome and the location section.
	if home, ok := indicator.InferHome(records); ok {
		user.Home = home
		report.HasHome = true
		ind.PercentAtHome = indicator.PercentAtHome(records, home)
	}

	report.Indicators = ind

	report.Temporal = &model.TemporalReport{
		HourlyProfile: indicator.HourlyProfile(records),
		DailyCounts:   indicator.DailyCounts(records),
		Gaps:          indicator.CommunicationGaps(records, s.gapThreshold),
		Bursts: indicator.ActivityBursts(records,
			indicator.DefaultBurstWindow, indicator.DefaultBurstRateMultiple),
		ContactInterEvent: indicator.ContactInterEventTimes(records),
	}

	report.Relationships = &model.RelationshipReport{
		Contacts:   indicator.ContactSummaries(user),
		FirstOfDay: indicator.FirstContactOfDay(records),
		LastOfDay:  indicator.LastContactOfDay(records),
	}

	// The location section only exists when at least one record carries a
	// position; the quality analyzer reports the absence.
	if user.HasAntennas() {
		report.Location = &model.LocationReport{
			Home:              user.Home,
			FrequentLocations: indicator.FrequentLocations(records, s.topLocations),
			UnusualLocations:  indicator.UnusualLocations(records, s.maxUnusualVisits),
			Transitions:       indicator.LocationTransitions(records),
			TimeAtLocations:   indicator.TimeAtLocations(records),
		}
	}

	s.logger.Debug("indicators computed",
		"subject", report.Subject,
		"contacts", ind.NumberOfContacts,
		"interactions", ind.NumberOfInteractions,
	)

	return nil
}

// NetworkStep computes the ego-network section: interaction matrices,
// clustering coefficients, assortativity, and out-of-network ratios.
//
// Design decision: Network indicators are a separate step because they
// only apply when the ego network was loaded, and they are the most
// expensive computation in the pipeline.
type NetworkStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// NetworkStepOption configures a NetworkStep.
type NetworkStepOption func(*NetworkStep)

// WithNetworkLogger sets a custom logger for the network step.
func WithNetworkLogger(logger *slog.Logger) NetworkStepOption {
	return func(s *NetworkStep) {
		s.logger = logger
	}
}

// NewNetworkStep creates a new ego-network computation step.
func NewNetworkStep(opts ...NetworkStepOption) *NetworkStep {
	s := &NetworkStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *NetworkStep) Name() string {
	return "network"
}

// Do executes the network step.
func (s *NetworkStep) Do(_ context.Context, report *model.AnalysisReport) error {
	user := report.User
	if user == nil {
		s.logger.Debug("skipping network, no subject loaded")
		return nil
	}
	if !user.NetworkLoaded {
		// The network analyzer reports the not-loaded state as a finding.
		s.logger.Debug("skipping network, ego network not loaded",
			"subject", report.Subject,
		)
		return nil
	}

	index, directed := indicator.MatrixDirectedWeighted(user)
	directedUnweighted := indicator.MatrixDirectedUnweighted(directed)
	undirected := indicator.MatrixUndirectedWeighted(directed)
	undirectedUnweighted := indicator.MatrixUndirectedUnweighted(undirected)

	report.Network = &model.NetworkReport{
		Loaded:                       true,
		MatrixIndex:                  index,
		DirectedWeighted:             directed,
		DirectedUnweighted:           directedUnweighted,
		UndirectedWeighted:           undirected,
		UndirectedUnweighted:         undirectedUnweighted,
		ClusteringUnweighted:         indicator.ClusteringCoefficientUnweighted(undirectedUnweighted),
		ClusteringWeighted:           indicator.ClusteringCoefficientWeighted(undirected),
		Assortativity:                indicator.AssortativityIndicators(user),
		PercentOutOfNetworkCalls:     indicator.PercentOutOfNetworkCalls(user),
		PercentOutOfNetworkTexts:     indicator.PercentOutOfNetworkTexts(user),
		PercentOutOfNetworkContacts:  indicator.PercentOutOfNetworkContacts(user),
		PercentOutOfNetworkDurations: indicator.PercentOutOfNetworkCallDurations(user),
		InNetworkCount:               len(user.InNetworkCorrespondents()),
		OutOfNetworkCount:            len(user.OutOfNetworkCorrespondents()),
	}

	s.logger.Debug("network indicators computed",
		"subject", report.Subject,
		"in_network", report.Network.InNetworkCount,
		"out_of_network", report.Network.OutOfNetworkCount,
	)

	return nil
}

// KeyDateStep resolves the configured key dates: for each timestamp of
// investigative interest it reports the surrounding activity, the first
// contact afterwards, and the estimated position at that moment.
type KeyDateStep struct {
	// subjectConfigs holds the per-subject key dates.
	subjectConfigs *config.File

	// activityWindow bounds the before/after activity snapshots.
	activityWindow time.Duration

	// fixWindow bounds how far a located record may be from the key date
	// and still produce a position fix.
	fixWindow time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// KeyDateStepOption configures a KeyDateStep.
type KeyDateStepOption func(*KeyDateStep)

// WithKeyDateActivityWindow sets the before/after activity window.
func WithKeyDateActivityWindow(d time.Duration) KeyDateStepOption {
	return func(s *KeyDateStep) {
		if d > 0 {
			s.activityWindow = d
		}
	}
}

// WithKeyDateFixWindow sets the position fix window.
func WithKeyDateFixWindow(d time.Duration) KeyDateStepOption {
	return func(s *KeyDateStep) {
		if d > 0 {
			s.fixWindow = d
		}
	}
}

// WithKeyDateLogger sets a custom logger for the key date step.
func WithKeyDateLogger(logger *slog.Logger) KeyDateStepOption {
	return func(s *KeyDateStep) {
		s.logger = logger
	}
}

// NewKeyDateStep creates a new key date resolution step.
//
// The default activity window of 24 hours answers "who did the line talk
// to in the day around the incident"; the fix window follows the location
// indicator default.
func NewKeyDateStep(subjectConfigs *config.File, opts ...KeyDateStepOption) *KeyDateStep {
	s := &KeyDateStep{
		subjectConfigs: subjectConfigs,
		activityWindow: 24 * time.Hour,
		fixWindow:      indicator.DefaultLocationWindow,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *KeyDateStep) Name() string {
	return "key_dates"
}

// Do executes the key date step.
func (s *KeyDateStep) Do(_ context.Context, report *model.AnalysisReport) error {
	user := report.User
	if user == nil {
		s.logger.Debug("skipping key dates, no subject loaded")
		return nil
	}
	if s.subjectConfigs == nil {
		s.logger.Debug("skipping key dates, no configuration file loaded")
		return nil
	}

	keyDates := s.subjectConfigs.GetSubjectConfig(report.Subject).KeyDates
	if len(keyDates) == 0 {
		s.logger.Debug("skipping key dates, none configured",
			"subject", report.Subject,
		)
		return nil
	}

	for _, kd := range keyDates {
		at, err := kd.Time()
		if err != nil {
			// A bad timestamp shouldn't abort the run; the remaining key
			// dates are still worth resolving.
			s.logger.Warn("invalid key date, skipping",
				"subject", report.Subject,
				"label", kd.Label,
				"datetime", kd.Datetime,
				"error", err,
			)
			continue
		}

		window := indicator.ActivityAround(user.Records, at, s.activityWindow, s.activityWindow)
		result := model.KeyDateReport{
			Label:              kd.Label,
			At:                 at,
			InteractionsBefore: len(window.Before),
			InteractionsAfter:  len(window.After),
			ContactsBefore:     window.ContactsBefore,
			ContactsAfter:      window.ContactsAfter,
		}

		if first, ok := indicator.FirstContactAfter(user.Records, at); ok {
			result.FirstContactAfter = first.CorrespondentID
			result.FirstContactAt = first.Datetime
		}

		if fix, ok := indicator.LocationAt(user.Records, at, s.fixWindow); ok {
			result.Position = fix.Position
			result.PositionConfidence = fix.Confidence
		}

		report.KeyDates = append(report.KeyDates, result)
	}

	s.logger.Debug("key dates resolved",
		"subject", report.Subject,
		"count", len(report.KeyDates),
	)

	return nil
}

// FindingsStep runs the analyzer suite over the computed report sections
// and collects graded findings.
//
// Design decision: Findings generation is a separate step because:
// 1. It operates on accumulated data from previous steps
// 2. It has its own registry (which analyzers to run)
// 3. Results are the primary investigative output
type FindingsStep struct {
	// analyzer is the main analyzer coordinator.
	analyzer *analyzer.Analyzer

	// logger for structured logging.
	logger *slog.Logger
}

// FindingsStepOption configures a FindingsStep.
type FindingsStepOption func(*FindingsStep)

// WithFindingsAnalyzer replaces the default analyzer registry.
func WithFindingsAnalyzer(a *analyzer.Analyzer) FindingsStepOption {
	return func(s *FindingsStep) {
		s.analyzer = a
	}
}

// WithFindingsLogger sets a custom logger for the findings step.
func WithFindingsLogger(logger *slog.Logger) FindingsStepOption {
	return func(s *FindingsStep) {
		s.logger = logger
	}
}

// NewFindingsStep creates a new findings generation step.
func NewFindingsStep(opts ...FindingsStepOption) *FindingsStep {
	s := &FindingsStep{
		analyzer: analyzer.NewAnalyzer(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FindingsStep) Name() string {
	return "findings"
}

// Do executes the findings step.
func (s *FindingsStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if report.User == nil {
		s.logger.Debug("skipping findings, no subject loaded")
		return nil
	}

	data := &analyzer.AnalysisData{
		Subject: report.Subject,
		User:    report.User,
		Report:  report,
	}

	findings, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		// Non-fatal: keep the findings gathered before cancellation.
		s.logger.Warn("analysis completed with error", "error", err)
	}

	for _, f := range findings {
		report.AddFinding(f)
	}

	// Fill in the summary fields around the collected findings.
	report.SimpleReport = model.NewSimpleReport(report)

	s.logger.Info("findings generated",
		"subject", report.Subject,
		"findings_count", len(findings),
	)

	return nil
}

// PersistStep saves the analysis results to the history database: the full
// report, the evidence file digests, and the contact links mined by the
// compare command.
type PersistStep struct {
	// db is the history database. A nil db disables persistence.
	db *database.AnalysisDB

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step writing to db.
// Passing a nil db turns the step into a no-op, which keeps pipeline
// assembly uniform when --no-save is given.
func NewPersistStep(db *database.AnalysisDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if s.db == nil {
		s.logger.Debug("skipping persist, no database configured")
		return nil
	}

	if err := s.db.SaveReport(ctx, report); err != nil {
		return err
	}

	for _, source := range report.Sources {
		if err := s.db.RecordIngestedFile(ctx, report.Subject, source); err != nil {
			return err
		}
	}

	if report.Relationships != nil {
		if err := s.db.UpsertContactLinks(ctx, report.Subject, report.Relationships.Contacts); err != nil {
			return err
		}
	}

	s.logger.Debug("report persisted",
		"subject", report.Subject,
		"report_id", report.ReportID,
	)

	return nil
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for a complete subject analysis.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full analysis
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The db parameter may be nil to disable persistence.
func DefaultPipeline(cfg *config.Config, db *database.AnalysisDB, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)

	loadOpts := []LoadStepOption{
		WithLoadNetwork(cfg.LoadNetwork),
		WithLoadNetworkDepth(cfg.NetworkDepth),
		WithLoadMaxContacts(cfg.MaxNetworkContacts),
	}
	if cfg.AntennasPath != "" {
		loadOpts = append(loadOpts, WithLoadAntennas(cfg.AntennasPath))
	}
	if cfg.MappingPath != "" {
		loadOpts = append(loadOpts, WithLoadMapping(cfg.MappingPath))
	}
	if cfg.SubjectConfigs != nil {
		loadOpts = append(loadOpts, WithLoadSubjectConfigs(cfg.SubjectConfigs))
	}

	// Add steps in logical order
	p.AddSteps(
		NewLoadStep(cfg.DataDir, loadOpts...),
		NewScrubStep(),
		NewIndicatorStep(),
		NewNetworkStep(),
		NewKeyDateStep(cfg.SubjectConfigs),
		NewFindingsStep(),
		NewPersistStep(db),
	)

	return p
}
