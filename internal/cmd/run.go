package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/dommx/internal/display"
	"github.com/harrison/dommx/internal/flow"
	"github.com/harrison/dommx/internal/logger"
	"github.com/harrison/dommx/internal/models"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <user> <project>",
		Short: "Run an interactive assessment session",
		Long: `Run an interactive assessment session for a participant.

The assessment definition is loaded from the configured data directory
and previously saved answers for the (user, project) pair are restored,
resuming at the first unanswered question.

Commands inside the session:
  0..N       answer the current question with that score
  n, enter   go to the next question
  p          go to the previous question
  g D Q      jump to question Q of domain D (1-based)
  o          show progress per domain
  s          save progress
  q          quit the session
  ?          show this command list

Examples:
  dommx run alice acme-rollout
  dommx run --data-dir ./assessment --db ./results.db alice acme-rollout`,
		Args: cobra.ExactArgs(2),
		RunE: runCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	cfg, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	graph, err := loadGraphForConfig(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	userID, projectID := args[0], args[1]
	answers, completed, found, err := st.LoadResults(userID, projectID)
	if err != nil {
		return fmt.Errorf("failed to load saved results: %w", err)
	}
	if found {
		log.LogInfo(fmt.Sprintf("Restored %d saved answer(s) for %s/%s", answers.Count(), userID, projectID))
	}

	sess := flow.NewSession(userID, projectID, graph, answers, completed)
	ctrl := flow.NewController(sess, st, cfg.StaleSaveAfter)
	log.LogDebug(fmt.Sprintf("Session %s started", sess.ID))

	ui := &sessionUI{
		in:          cmd.InOrStdin(),
		out:         cmd.OutOrStdout(),
		ctrl:        ctrl,
		logoutDelay: cfg.LogoutDelay,
		sleep:       time.Sleep,
		interactive: isatty.IsTerminal(os.Stdout.Fd()),
	}
	return ui.loop()
}

// sessionUI drives one interactive assessment over a line-based terminal.
type sessionUI struct {
	in          io.Reader
	out         io.Writer
	ctrl        *flow.Controller
	logoutDelay time.Duration
	sleep       func(time.Duration)
	interactive bool
}

func (ui *sessionUI) loop() error {
	state := ui.ctrl.Render()
	ui.render(state)

	scanner := bufio.NewScanner(ui.in)
	for {
		if state.Finished {
			return ui.finish(state)
		}
		if state.Halted {
			return fmt.Errorf("assessment definition is inconsistent; run 'dommx validate' for details")
		}

		fmt.Fprint(ui.out, ui.prompt(state))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return ui.quit(state)
		}

		input := strings.TrimSpace(scanner.Text())
		action, quit, err := ui.parse(input, state)
		if err != nil {
			fmt.Fprintf(ui.out, "%s\n", err)
			continue
		}
		if quit {
			return ui.quit(state)
		}
		if action == nil {
			continue
		}

		state = ui.ctrl.Apply(action)
		ui.render(state)
	}
}

// parse maps one input line to an action. A nil action with no error means
// the line was handled locally (help, blank confirmation input).
func (ui *sessionUI) parse(input string, state flow.RenderState) (flow.Action, bool, error) {
	if state.Phase == flow.PhaseSubmitConfirm {
		switch strings.ToLower(input) {
		case "y", "yes":
			return flow.SubmitConfirm{}, false, nil
		case "c", "no", "cancel":
			return flow.SubmitCancel{}, false, nil
		case "q":
			return nil, true, nil
		default:
			return nil, false, fmt.Errorf("answer 'y' to submit or 'c' to keep working")
		}
	}

	switch strings.ToLower(input) {
	case "", "n":
		return flow.Advance{}, false, nil
	case "p":
		return flow.Retreat{}, false, nil
	case "s":
		return flow.Save{}, false, nil
	case "q":
		return nil, true, nil
	case "o":
		ui.printOverview(state)
		return nil, false, nil
	case "?", "h", "help":
		ui.printHelp()
		return nil, false, nil
	}

	if strings.HasPrefix(strings.ToLower(input), "g ") {
		fields := strings.Fields(input)
		if len(fields) != 3 {
			return nil, false, fmt.Errorf("usage: g <domain> <question>")
		}
		dom, err1 := strconv.Atoi(fields[1])
		q, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || dom < 1 || q < 1 {
			return nil, false, fmt.Errorf("usage: g <domain> <question> with 1-based numbers")
		}
		return flow.Jump{Domain: dom - 1, Question: q - 1}, false, nil
	}

	if score, err := strconv.Atoi(input); err == nil {
		return flow.AnswerSelected{QuestionID: state.Question.ID, Score: score}, false, nil
	}
	return nil, false, fmt.Errorf("unknown command %q (? for help)", input)
}

func (ui *sessionUI) render(state flow.RenderState) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	fmt.Fprintln(ui.out)
	ui.renderMessages(state.Messages)

	if state.Finished || state.Halted {
		return
	}

	if state.Phase == flow.PhaseSubmitConfirm {
		bold.Fprintln(ui.out, "All questions visited.")
		fmt.Fprintln(ui.out, "Submit the assessment? Once submitted it can no longer be changed.")
		return
	}

	sess := ui.ctrl.Session()
	display.Progress{
		Answered: sess.Answers.Count(),
		Total:    sess.Graph.TotalQuestions(),
	}.Render(ui.out)

	cyan.Fprintf(ui.out, "Domain %d/%d: %s", state.Domain.Index+1, state.Domain.Total, state.Domain.Acronym)
	if state.Domain.Name != "" {
		cyan.Fprintf(ui.out, " (%s)", state.Domain.Name)
	}
	fmt.Fprintln(ui.out)

	bold.Fprintf(ui.out, "%s", state.Question.ID)
	if state.Question.Mandatory {
		color.New(color.FgRed).Fprint(ui.out, " [mandatory]")
	}
	fmt.Fprintf(ui.out, ": %s\n", state.Question.Text)
	if state.Question.Description != "" {
		gray.Fprintf(ui.out, "%s\n", state.Question.Description)
	}
	if state.Question.Objective != "" {
		gray.Fprintf(ui.out, "Objective: %s\n", state.Question.Objective)
	}
	if state.Question.Answer != nil {
		fmt.Fprintf(ui.out, "Current answer: %d\n", *state.Question.Answer)
	}

	if state.Recommendation != nil {
		fmt.Fprintln(ui.out)
		bold.Fprintf(ui.out, "%s\n", state.Recommendation.Title)
		for _, p := range state.Recommendation.Procedures {
			fmt.Fprintf(ui.out, "  %d. %s\n", p.Number, p.Name)
			if p.Prerequisite != "" {
				gray.Fprintf(ui.out, "     Prerequisite: %s\n", p.Prerequisite)
			}
			if p.Deliverable != "" {
				gray.Fprintf(ui.out, "     Deliverable: %s\n", p.Deliverable)
			}
			for _, r := range p.Recommendations {
				fmt.Fprintf(ui.out, "     - %s\n", r)
			}
		}
	}
}

// renderMessages prints the message panel, most recent first.
func (ui *sessionUI) renderMessages(messages []models.Message) {
	if len(messages) == 0 {
		return
	}
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	for _, msg := range messages {
		switch msg.Level {
		case models.LevelError:
			red.Fprintf(ui.out, "✗ %s\n", msg.Text)
		case models.LevelWarning:
			yellow.Fprintf(ui.out, "! %s\n", msg.Text)
		default:
			green.Fprintf(ui.out, "✓ %s\n", msg.Text)
		}
	}
	fmt.Fprintln(ui.out)
}

func (ui *sessionUI) prompt(state flow.RenderState) string {
	if state.Phase == flow.PhaseSubmitConfirm {
		return "[y/c] > "
	}
	scale := make([]string, len(state.Scale))
	for i, s := range state.Scale {
		scale[i] = strconv.Itoa(s)
	}
	marker := ""
	if state.Dirty {
		marker = "*"
	}
	return fmt.Sprintf("score [%s]%s > ", strings.Join(scale, " "), marker)
}

func (ui *sessionUI) printHelp() {
	fmt.Fprintln(ui.out, `Commands:
  0..N       answer the current question with that score
  n, enter   next question
  p          previous question
  g D Q      jump to question Q of domain D (1-based)
  o          progress per domain
  s          save progress
  q          quit
  ?          this help`)
}

// printOverview shows per-domain completion with the current domain marked.
func (ui *sessionUI) printOverview(state flow.RenderState) {
	sess := ui.ctrl.Session()
	summaries := make([]display.DomainSummary, len(sess.Graph.Domains))
	for i := range sess.Graph.Domains {
		dom := &sess.Graph.Domains[i]
		answered := 0
		for _, plan := range dom.Questions {
			if sess.Answers.Has(i, plan.ID) {
				answered++
			}
		}
		summaries[i] = display.DomainSummary{
			Label:    dom.Label(),
			Answered: answered,
			Total:    len(dom.Questions),
			Current:  i == state.Position.Domain,
		}
	}
	display.RenderOverview(ui.out, summaries)
}

// quit ends the session without submitting.
func (ui *sessionUI) quit(state flow.RenderState) error {
	if state.Dirty {
		color.New(color.FgYellow).Fprintln(ui.out, "Unsaved changes were discarded. Run again and press 's' to save.")
	}
	fmt.Fprintln(ui.out, "Session closed.")
	return nil
}

// finish shows the completion screen and waits out the logout delay.
func (ui *sessionUI) finish(state flow.RenderState) error {
	color.New(color.FgGreen, color.Bold).Fprintln(ui.out, "Assessment completed.")
	if ui.interactive && ui.logoutDelay > 0 {
		fmt.Fprintf(ui.out, "Logging out in %s...\n", ui.logoutDelay)
		ui.sleep(ui.logoutDelay)
	}
	return nil
}
