package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/dommx/internal/export"
)

// NewExportCommand creates the export command group
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored assessment results",
	}

	cmd.AddCommand(newExportCSVCommand())
	cmd.AddCommand(newExportReportCommand())
	return cmd
}

func newExportCSVCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export all stored answers as CSV",
		Long: `Export every stored answer across all users and projects as a flat
CSV file with one row per answer.

Examples:
  dommx export csv -o results.csv
  dommx export csv --db ./results.db -o /tmp/results.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("output")

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.AllResults()
			if err != nil {
				return fmt.Errorf("failed to read results: %w", err)
			}
			if err := export.WriteCSV(outPath, rows); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d answer(s) to %s\n", len(rows), outPath)
			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("output", "o", "results.csv", "Output file path")
	return cmd
}

func newExportReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <user> <project>",
		Short: "Export one assessment as an HTML report",
		Long: `Render the stored assessment of one (user, project) pair as a
standalone HTML report, including the resolved guidance for every
answered question.

Examples:
  dommx export report alice acme-rollout -o report.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("output")
			userID, projectID := args[0], args[1]

			graph, err := loadGraphForConfig(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			answers, completed, found, err := st.LoadResults(userID, projectID)
			if err != nil {
				return fmt.Errorf("failed to load results: %w", err)
			}
			if !found {
				return fmt.Errorf("no stored assessment for %s/%s", userID, projectID)
			}

			rep, err := export.BuildReport(graph, userID, projectID, answers, completed)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			if err := export.WriteHTML(outPath, rep); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote report for %s/%s to %s\n", userID, projectID, outPath)
			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("output", "o", "report.html", "Output file path")
	return cmd
}
