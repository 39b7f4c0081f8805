// Package main provides the entry point for the cdrscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cdrscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cdrscan",
		Short: "Social network analysis tool for call detail records",
		Long: `cdrscan analyzes call detail records (CDRs) to map the social network
around a subject phone line. It computes behavioral indicators, ranks
relationships, and flags patterns relevant to an investigation.

Record files are plain CSV exports, one file per subject, stored in a
shared data directory. Analyzing several subjects in one run enables
cross-subject link detection (direct contact, shared contacts, co-located
meetings).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
