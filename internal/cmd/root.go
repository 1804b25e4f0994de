package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dommx
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dommx",
		Short: "Maturity assessment runner",
		Long: `Dommx runs maturity assessments defined as YAML decision trees.

It loads a flow definition and per-domain decision trees and action
catalogs, walks a participant through the selected questions, resolves
prescriptive guidance for each answer, and stores results in a local
SQLite database.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewResultsCommand())

	return cmd
}
