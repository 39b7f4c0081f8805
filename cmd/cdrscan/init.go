package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/cdrscan.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".cdrscan"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cdrscan configuration file",
		Long: `Initialize creates a new .cdrscan configuration file in the current directory.

The generated file includes:
- Default settings shared by all subjects
- Commented examples for per-subject configurations
- Documentation for key dates, exclusion patterns, and network loading

Examples:
  # Create .cdrscan in current directory
  cdrscan init

  # Create config file at a specific path
  cdrscan init -o myconfig.yaml

  # Force overwrite existing file
  cdrscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/cdrscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure per-subject settings such as:")
	fmt.Println("  - Key dates (incidents, arrests) to analyze around")
	fmt.Println("  - Correspondent ID patterns to exclude")
	fmt.Println("  - Network loading depth per subject")

	return nil
}
