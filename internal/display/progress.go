package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// barWidth is the character width of the progress bar.
const barWidth = 24

// Progress tracks how much of the assessment has been answered.
type Progress struct {
	Answered int
	Total    int
}

// Percent returns the completion percentage, rounded down.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Answered * 100 / p.Total
}

// Render writes a single-line progress bar.
func (p Progress) Render(out io.Writer) {
	filled := 0
	if p.Total > 0 {
		filled = p.Answered * barWidth / p.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	gray := color.New(color.FgHiBlack)
	gray.Fprintf(out, "[%s] %d/%d answered (%d%%)\n", bar, p.Answered, p.Total, p.Percent())
}

// DomainSummary is one row of the domain overview shown on request.
type DomainSummary struct {
	Label    string
	Answered int
	Total    int
	Current  bool
}

// RenderOverview writes one line per domain with its completion state. The
// current domain is marked with an arrow.
func RenderOverview(out io.Writer, domains []DomainSummary) {
	cyan := color.New(color.FgCyan)
	for _, d := range domains {
		marker := "  "
		if d.Current {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-10s %d/%d", marker, d.Label, d.Answered, d.Total)
		if d.Current {
			cyan.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}
}
