package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/dommx/internal/config"
	"github.com/harrison/dommx/internal/models"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [data-dir]",
		Short: "Validate an assessment definition",
		Long: `Parse and validate an assessment definition, checking for:
  - Flow and orchestration files that parse and agree on domain ids
  - Domains with at least one selected question
  - Selected questions that exist in the domain decision tree
  - A maturity scale of distinct integers
  - Recognized navigation and sort settings

The data directory defaults to the one configured in .dommx/config.yaml.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.DataDir = args[0]
			}
			return validateDefinition(cfg, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	addConfigFlags(cmd)
	return cmd
}

// validateDefinition loads the graph and reports what it found.
func validateDefinition(cfg *config.Config, out io.Writer) error {
	graph, issues, err := config.LoadGraph(config.GraphOptions{
		Root:          cfg.DataDir,
		Locale:        cfg.Locale,
		DefaultLocale: cfg.DefaultLocale,
	})
	printIssues(issues, out)
	if err != nil {
		return fmt.Errorf("definition is invalid: %w", err)
	}

	errorCount := 0
	for _, issue := range issues {
		if issue.Level == models.LevelError {
			errorCount++
		}
	}

	green := color.New(color.FgGreen)
	fmt.Fprintf(out, "Domains: %d\n", len(graph.Domains))
	for i := range graph.Domains {
		dom := &graph.Domains[i]
		mandatory := 0
		for _, q := range dom.Questions {
			if q.Mandatory {
				mandatory++
			}
		}
		fmt.Fprintf(out, "  %-8s %3d question(s), %d mandatory\n", dom.Label(), len(dom.Questions), mandatory)
	}
	fmt.Fprintf(out, "Total questions: %d\n", graph.TotalQuestions())
	fmt.Fprintf(out, "Scale: %v\n", graph.Scale)
	fmt.Fprintf(out, "Navigation: %s, sort: %s\n", graph.NavigationMode, graph.SortOrder)

	if errorCount > 0 {
		return fmt.Errorf("definition loaded with %d error(s)", errorCount)
	}
	green.Fprintln(out, "Definition is valid.")
	return nil
}
