package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cdrscan/cdrscan/internal/analyzer"
	"github.com/cdrscan/cdrscan/internal/config"
	"github.com/cdrscan/cdrscan/internal/database"
	"github.com/cdrscan/cdrscan/internal/indicator"
	"github.com/cdrscan/cdrscan/internal/log"
	"github.com/cdrscan/cdrscan/internal/model"
	"github.com/cdrscan/cdrscan/internal/pipeline"
	"github.com/cdrscan/cdrscan/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [subject-id...]",
		Short: "Analyze call detail records for one or more subjects",
		Long: `Analyze runs the full analysis pipeline over a subject's call detail records.

It loads the subject's record CSV from the data directory and computes:
- Behavioral indicators (active days, contacts, call durations, entropy)
- Relationship rankings (strength, reciprocity, initiation)
- Temporal patterns (gaps, bursts, nocturnal activity)
- Location patterns when antenna data is available
- Network indicators when correspondent files are loaded (--network)

Analyzing several subjects in one run additionally computes cross-subject
links: direct contact between subjects, shared contacts, co-located
meetings, and communication chains.

Examples:
  # Analyze a single subject
  cdrscan analyze +15551234567

  # Analyze several subjects with cross-subject link detection
  cdrscan analyze +15551234567 +15559876543 +15550001111

  # Load the ego network and compute network indicators
  cdrscan analyze --network +15551234567

  # Output JSON report
  cdrscan analyze --json +15551234567

  # Use a custom configuration file
  cdrscan analyze -c mycase.yaml +15551234567

Configuration file (.cdrscan) example:
  defaults:
    network: true
    antennas: data/antennas.csv
  subjects:
    "+15551234567":
      depth: 2
      keyDates:
        - label: incident
          datetime: "2024-03-01 12:00:00"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Data location flags
	cmd.Flags().StringP("data", "d", config.DefaultDataDir,
		"Directory containing per-subject record CSV files")
	cmd.Flags().String("antennas", "",
		"Antenna coordinates CSV file (id,lat,lon)")
	cmd.Flags().String("mapping", "",
		"Correspondent id to display name mapping CSV file")

	// Network loading flags
	cmd.Flags().BoolP("network", "n", false,
		"Load correspondent record files and compute network indicators")
	cmd.Flags().Int("depth", config.DefaultNetworkDepth,
		"Maximum network loading depth (1 = direct contacts)")
	cmd.Flags().Int("max-contacts", config.DefaultMaxNetworkContacts,
		"Maximum number of correspondent files loaded per subject")

	// Analysis behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Analysis deadline per subject")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of concurrent subject analyses")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cdrscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output flattened key,value CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Suppress the human-readable report on stdout")

	// History database
	cmd.Flags().Bool("no-save", false,
		"Do not record results in the history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalysis(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.DataDir, err = cmd.Flags().GetString("data")
	if err != nil {
		return nil, err
	}

	cfg.AntennasPath, err = cmd.Flags().GetString("antennas")
	if err != nil {
		return nil, err
	}

	cfg.MappingPath, err = cmd.Flags().GetString("mapping")
	if err != nil {
		return nil, err
	}

	cfg.LoadNetwork, err = cmd.Flags().GetBool("network")
	if err != nil {
		return nil, err
	}

	cfg.NetworkDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxNetworkContacts, err = cmd.Flags().GetInt("max-contacts")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch-size")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-subject configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SubjectConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SubjectConfigs = &config.File{
			Subjects: make(map[string]config.SubjectConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Quiet, err = cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	// Save to the history database by default using XDG data directory
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (subject ids)
	cfg.Subjects = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The handler is wrapped so subscriber identifiers never reach log output.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewSecureHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runAnalysis executes the analysis.
func runAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Subjects) == 0 {
		return errors.New("no subjects provided (specify one or more subject ids as arguments)")
	}

	// Validate and normalize all subject ids before touching any data
	for i, subject := range cfg.Subjects {
		id, err := model.NewSubjectID(subject)
		if err != nil {
			return fmt.Errorf("invalid subject id %q: %w", subject, err)
		}
		cfg.Subjects[i] = id.String()
	}

	logger.Info("starting analysis",
		"subjects", len(cfg.Subjects),
		"dataDir", cfg.DataDir,
		"loadNetwork", cfg.LoadNetwork,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.AnalysisDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Run every subject through the pipeline before any output so that
	// multi-subject runs can add cross-subject findings to each report.
	reports, err := collectReports(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return errors.New("no subjects were analyzed successfully")
	}

	var caseSummary *model.CaseSummary
	if len(reports) > 1 {
		caseSummary = applyCaseAnalysis(ctx, reports, logger)
	}

	multi := len(reports) > 1
	for _, analysisReport := range reports {
		if err := outputReport(cfg, analysisReport, multi); err != nil {
			logger.Error("report failed", "subject", analysisReport.Subject, "error", err)
		}

		if err := persistReport(ctx, db, analysisReport, logger); err != nil {
			logger.Error("failed to save analysis report", "subject", analysisReport.Subject, "error", err)
		}
	}

	// The per-subject reports carry the cross-subject findings; the case
	// block below is the only place pairwise totals are shown together.
	if caseSummary != nil && !cfg.Quiet && !cfg.JSONReport && !cfg.MarkdownReport && !cfg.CSVReport {
		printCaseSummary(os.Stdout, caseSummary)
	}

	return nil
}

// collectReports runs the analysis pipeline for every subject and returns
// the reports in input order. Subjects whose pipeline fails outright are
// logged and skipped; partial failures stay in their report.
func collectReports(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]*model.AnalysisReport, error) {
	// Use batch processor for parallel analysis if multiple subjects
	if len(cfg.Subjects) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalysis(ctx, cfg, logger)
	}

	// Single subject or sequential analysis
	return runSequentialAnalysis(ctx, cfg, logger)
}

// runSequentialAnalysis analyzes subjects one at a time.
func runSequentialAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]*model.AnalysisReport, error) {
	reports := make([]*model.AnalysisReport, 0, len(cfg.Subjects))

	for _, subject := range cfg.Subjects {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		p := createPipelineForSubject(cfg, logger)
		analysisReport := model.NewAnalysisReport(subject)

		if !cfg.Quiet {
			fmt.Printf("Analyzing %s...\n", subject)
		}
		startTime := time.Now()

		// Execute the pipeline under the per-subject deadline
		subjectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := p.Execute(subjectCtx, analysisReport)
		cancel()
		if err != nil {
			logger.Error("analysis failed", "subject", subject, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", subject, err)
			continue
		}

		elapsed := time.Since(startTime)
		if !cfg.Quiet {
			fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))
		}

		reports = append(reports, analysisReport)
	}

	return reports, nil
}

// runBatchAnalysis analyzes multiple subjects concurrently using BatchProcessor.
func runBatchAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]*model.AnalysisReport, error) {
	if !cfg.Quiet {
		fmt.Printf("Starting batch analysis of %d subjects (concurrency: %d)...\n\n",
			len(cfg.Subjects), cfg.BatchSize)
	}

	startTime := time.Now()

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForSubject(cfg, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithSubjectTimeout(cfg.Timeout),
	)

	// Process with callback for streaming progress output. Reports are
	// collected by input position so output order matches the arguments.
	var mu sync.Mutex
	completed := 0
	results := make([]*model.AnalysisReport, len(cfg.Subjects))
	err := bp.ProcessBatchWithCallback(ctx, cfg.Subjects, func(analysisReport *model.AnalysisReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		results[index] = analysisReport
		completed++
		if !cfg.Quiet {
			fmt.Printf("[%d/%d] Analysis completed: %s\n", completed, len(cfg.Subjects), analysisReport.Subject)
		}
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(startTime)
	if !cfg.Quiet {
		fmt.Printf("\nBatch analysis completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	// Subjects cancelled before their pipeline started have no report
	reports := make([]*model.AnalysisReport, 0, len(results))
	for _, analysisReport := range results {
		if analysisReport != nil {
			reports = append(reports, analysisReport)
		}
	}

	return reports, nil
}

// createPipelineForSubject creates a pipeline with the given configuration.
// Persistence is deferred until after the cross-subject pass, so the
// pipeline itself never writes to the database.
func createPipelineForSubject(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.DefaultPipeline(cfg, nil,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
}

// applyCaseAnalysis computes cross-subject results and adds the resulting
// findings to each subject's report. It returns nil when fewer than two
// subjects loaded usable data.
func applyCaseAnalysis(ctx context.Context, reports []*model.AnalysisReport, logger *slog.Logger) *model.CaseSummary {
	users := make([]*model.User, 0, len(reports))
	for _, analysisReport := range reports {
		if analysisReport.User != nil {
			users = append(users, analysisReport.User)
		}
	}
	if len(users) < 2 {
		logger.Debug("skipping cross-subject analysis", "loaded_subjects", len(users))
		return nil
	}

	caseSummary := indicator.BuildCaseSummary(users)
	crossAnalyzer := analyzer.NewCrossSubjectAnalyzer()

	for _, analysisReport := range reports {
		if analysisReport.User == nil {
			continue
		}

		data := &analyzer.AnalysisData{
			Subject: analysisReport.Subject,
			User:    analysisReport.User,
			Report:  analysisReport,
			Case:    caseSummary,
			Users:   users,
		}

		findings, err := crossAnalyzer.Analyze(ctx, data)
		if err != nil {
			logger.Error("cross-subject analysis failed",
				"subject", analysisReport.Subject, "error", err)
			continue
		}

		for _, finding := range findings {
			analysisReport.AddFinding(finding)
		}

		// Rebuild the summary so severity counts include the new findings
		analysisReport.SimpleReport = model.NewSimpleReport(analysisReport)
	}

	return caseSummary
}

// outputReport outputs the analysis report in the requested format.
// On multi-subject runs with --output, each subject gets its own file
// derived from the requested path.
func outputReport(cfg *config.Config, analysisReport *model.AnalysisReport, multi bool) error {
	// Generate simple report if needed
	if analysisReport.SimpleReport == nil {
		analysisReport.SimpleReport = model.NewSimpleReport(analysisReport)
	}

	// Quiet suppresses only the human-readable stdout report; structured
	// formats and file outputs are still written.
	defaultFormat := !cfg.JSONReport && !cfg.MarkdownReport && !cfg.CSVReport
	if cfg.ReportFile == "" && cfg.Quiet && defaultFormat {
		return nil
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		reportPath := cfg.ReportFile
		if multi {
			reportPath = subjectReportPath(cfg.ReportFile, analysisReport.Subject)
		}

		// Create directories if they don't exist
		dir := filepath.Dir(reportPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports contain subscriber identifiers that should only be
		// readable by the owner
		f, err := os.OpenFile(reportPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(analysisReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(analysisReport)
		return err
	}

	// CSV output (flattened key,value indicator rows)
	if cfg.CSVReport {
		writer := report.NewCSVWriter(output)
		_, err := writer.Write(analysisReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(analysisReport)
	return err
}

// subjectReportPath derives a per-subject output path from the requested
// one by inserting the subject id before the extension.
func subjectReportPath(base, subject string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + subject + ext
}

// persistReport saves the analysis report to the history database.
// If db is nil, this function is a no-op.
func persistReport(ctx context.Context, db *database.AnalysisDB, analysisReport *model.AnalysisReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Ensure SimpleReport is generated before saving
	if analysisReport.SimpleReport == nil {
		analysisReport.SimpleReport = model.NewSimpleReport(analysisReport)
	}

	step := pipeline.NewPersistStep(db, pipeline.WithPersistLogger(logger))
	if err := step.Do(ctx, analysisReport); err != nil {
		return fmt.Errorf("failed to save analysis report: %w", err)
	}

	logger.Info("analysis report saved to database", "subject", analysisReport.Subject)
	return nil
}

// printCaseSummary writes the cross-subject totals of a multi-subject run.
func printCaseSummary(w io.Writer, caseSummary *model.CaseSummary) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "                         CASE SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Subjects:        %d (%s)\n", len(caseSummary.Subjects), strings.Join(caseSummary.Subjects, ", "))
	fmt.Fprintf(w, "Direct links:    %d subject pairs in direct contact\n", countDirectLinks(caseSummary))
	fmt.Fprintf(w, "Shared contacts: %d\n", len(caseSummary.SharedContacts))
	fmt.Fprintf(w, "Bridges:         %d\n", len(caseSummary.Bridges))
	fmt.Fprintf(w, "Chains:          %d\n", len(caseSummary.Chains))
	fmt.Fprintf(w, "Meetings:        %d\n", len(caseSummary.Meetings))
	fmt.Fprintf(w, "Gatherings:      %d\n", len(caseSummary.Gatherings))
	fmt.Fprintln(w)
}

// countDirectLinks counts unordered subject pairs with direct traffic in
// either direction.
func countDirectLinks(caseSummary *model.CaseSummary) int {
	seen := make(map[string]bool)
	count := 0
	for a, row := range caseSummary.CommunicationMatrix {
		for b, n := range row {
			if n == 0 || a == b {
				continue
			}
			key := a + "\x00" + b
			if a > b {
				key = b + "\x00" + a
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			count++
		}
	}
	return count
}
