package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/dommx/internal/config"
	"github.com/harrison/dommx/internal/models"
	"github.com/harrison/dommx/internal/store"
)

// addConfigFlags registers the flags shared by every subcommand that loads
// project data.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .dommx/config.yaml)")
	cmd.Flags().String("data-dir", "", "Project data directory (overrides config)")
	cmd.Flags().String("db", "", "Path to the results database (overrides config)")
	cmd.Flags().String("locale", "", "Locale for domain documents (overrides config)")
}

// loadCommandConfig loads the configuration file and applies flag overrides.
// Without an explicit --config, the config and the default database live in
// the dommx home directory, so commands work from any subdirectory.
func loadCommandConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		home, err := config.GetDommxHome()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dommx home: %w", err)
		}
		cfg, err = config.LoadConfig(filepath.Join(home, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DBPath == config.DefaultConfig().DBPath {
			cfg.DBPath = filepath.Join(home, "results.db")
		}
	}

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("locale"); v != "" {
		cfg.Locale = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadGraphForConfig loads the assessment graph and prints any load issues.
func loadGraphForConfig(cfg *config.Config, out io.Writer) (*models.Graph, error) {
	graph, issues, err := config.LoadGraph(config.GraphOptions{
		Root:          cfg.DataDir,
		Locale:        cfg.Locale,
		DefaultLocale: cfg.DefaultLocale,
	})
	printIssues(issues, out)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment definition: %w", err)
	}
	return graph, nil
}

func printIssues(issues []config.Issue, out io.Writer) {
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	for _, issue := range issues {
		switch issue.Level {
		case models.LevelError:
			red.Fprintf(out, "error: %s\n", issue.Text)
		default:
			yellow.Fprintf(out, "warning: %s\n", issue.Text)
		}
	}
}

// openStore opens the results database and brings the schema up to date.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	return st, nil
}
