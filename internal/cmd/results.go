package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewResultsCommand creates the results subcommand
func NewResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored assessments",
		Long: `List every stored (user, project) assessment with its answer count,
completion status, and last update time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			assessments, err := st.ListAssessments()
			if err != nil {
				return fmt.Errorf("failed to list assessments: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(assessments) == 0 {
				fmt.Fprintln(out, "No stored assessments.")
				return nil
			}

			green := color.New(color.FgGreen)
			yellow := color.New(color.FgYellow)
			fmt.Fprintf(out, "%-20s %-20s %8s  %-11s %s\n", "USER", "PROJECT", "ANSWERS", "STATUS", "UPDATED")
			for _, a := range assessments {
				fmt.Fprintf(out, "%-20s %-20s %8d  ", a.UserID, a.ProjectID, a.AnswerCount)
				if a.Finished {
					green.Fprintf(out, "%-11s", "finished")
				} else {
					yellow.Fprintf(out, "%-11s", "in progress")
				}
				if a.UpdatedAt.IsZero() {
					fmt.Fprintln(out)
				} else {
					fmt.Fprintf(out, " %s\n", a.UpdatedAt.Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}

	addConfigFlags(cmd)
	return cmd
}
