package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdrscan/cdrscan/internal/config"
	"github.com/cdrscan/cdrscan/internal/ingest"
	"github.com/cdrscan/cdrscan/internal/model"
	"github.com/spf13/cobra"
)

// Conventional auxiliary file names looked up in the data directory when
// no explicit path is given.
const (
	conventionalAntennasFile = "antennas.csv"
	conventionalMappingFile  = "_ID_MAPPING.csv"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [subject-id...]",
		Short: "Validate record files without running an analysis",
		Long: `Validate checks that evidence files are usable before any analysis runs.

For each subject's record CSV it verifies the header, the required columns,
and the field-level rules (datetime layout, interaction and direction
enums, call duration, latitude/longitude ranges), then runs a full load
test counting the rows analysis would ignore. Antenna and id-mapping files
are checked against their own rules when present.

Without arguments every record file found in the data directory is
validated. The command exits non-zero if any check fails.

Examples:
  # Validate every record file in the data directory
  cdrscan validate

  # Validate specific subjects
  cdrscan validate +15551234567 +15559876543

  # Validate with an explicit antennas file
  cdrscan validate --antennas towers.csv +15551234567

  # List subject ids found in the data directory
  cdrscan validate --list`,
		Args: cobra.ArbitraryArgs,
		RunE: runValidateCmd,
	}

	cmd.Flags().StringP("data", "d", config.DefaultDataDir,
		"Directory containing per-subject record CSV files")
	cmd.Flags().String("antennas", "",
		"Antenna coordinates CSV file to validate")
	cmd.Flags().String("mapping", "",
		"Correspondent id mapping CSV file to validate")
	cmd.Flags().BoolP("list", "l", false,
		"List subject ids found in the data directory")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	dataDir, err := cmd.Flags().GetString("data")
	if err != nil {
		return err
	}

	antennasPath, err := cmd.Flags().GetString("antennas")
	if err != nil {
		return err
	}

	mappingPath, err := cmd.Flags().GetString("mapping")
	if err != nil {
		return err
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	if list {
		return listDataDirSubjects(dataDir)
	}

	subjects, err := resolveSubjects(dataDir, args)
	if err != nil {
		return err
	}

	results := make([]*ingest.ValidationResult, 0, len(subjects)+2)

	for _, subject := range subjects {
		path := filepath.Join(dataDir, subject.FileName())
		results = append(results, ingest.ValidateRecordsFile(path))
	}

	// Auxiliary files: explicit paths are validated as given; otherwise
	// the conventional files are checked only when they exist.
	if path := auxiliaryPath(antennasPath, dataDir, conventionalAntennasFile); path != "" {
		results = append(results, ingest.ValidateAntennasFile(path))
	}
	if path := auxiliaryPath(mappingPath, dataDir, conventionalMappingFile); path != "" {
		results = append(results, ingest.ValidateMappingFile(path))
	}

	failed := 0
	warnings := 0
	for _, result := range results {
		printValidationResult(result)
		if result.Failed() {
			failed++
		}
		warnings += result.Warnings()
	}

	if failed > 0 {
		fmt.Printf("FAIL: %d of %d files failed validation\n", failed, len(results))
		return fmt.Errorf("validation failed for %d of %d files", failed, len(results))
	}

	if warnings > 0 {
		fmt.Printf("PASS: %d files validated (%d warnings)\n", len(results), warnings)
	} else {
		fmt.Printf("PASS: %d files validated\n", len(results))
	}

	return nil
}

// listDataDirSubjects prints the subject ids found in the data directory.
func listDataDirSubjects(dataDir string) error {
	subjects, err := ingest.ListSubjects(dataDir)
	if err != nil {
		return fmt.Errorf("failed to list subjects in %s: %w", dataDir, err)
	}

	if len(subjects) == 0 {
		fmt.Printf("No record files found in %s\n", dataDir)
		return nil
	}

	fmt.Printf("Subjects in %s (%d):\n\n", dataDir, len(subjects))
	for _, subject := range subjects {
		fmt.Printf("  • %s\n", subject)
	}

	return nil
}

// resolveSubjects turns the positional arguments into subject ids, or
// discovers every subject in the data directory when none were given.
func resolveSubjects(dataDir string, args []string) ([]model.SubjectID, error) {
	if len(args) == 0 {
		found, err := ingest.ListSubjects(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list subjects in %s: %w", dataDir, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no record files found in %s", dataDir)
		}
		args = found
	}

	subjects := make([]model.SubjectID, 0, len(args))
	for _, arg := range args {
		id, err := model.NewSubjectID(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid subject id %q: %w", arg, err)
		}
		subjects = append(subjects, id)
	}

	return subjects, nil
}

// auxiliaryPath picks the path of an optional auxiliary file. An explicit
// path always wins; the conventional file is used only when it exists.
func auxiliaryPath(explicit, dataDir, conventional string) string {
	if explicit != "" {
		return explicit
	}

	path := filepath.Join(dataDir, conventional)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

// printValidationResult writes the per-check lines for one file.
func printValidationResult(result *ingest.ValidationResult) {
	fmt.Printf("Validating %s\n", result.Path)
	for _, check := range result.Checks {
		if check.Detail != "" {
			fmt.Printf("  [%s] %s: %s\n", check.Status, check.Name, check.Detail)
		} else {
			fmt.Printf("  [%s] %s\n", check.Status, check.Name)
		}
	}
	fmt.Println()
}
