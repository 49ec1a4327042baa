package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/operations"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func printReport(w io.Writer, r *backup.Report) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerStyle.Render("Backup of "+r.Account))
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 60))
	_, _ = fmt.Fprintf(w, "Destination: %s\n", r.Destination)
	_, _ = fmt.Fprintf(w, "Listed: %d  Selected: %d  %s  %s  %s\n",
		r.TotalListed,
		r.TotalFiltered,
		okStyle.Render(fmt.Sprintf("Succeeded: %d", r.Succeeded)),
		errStyle.Render(fmt.Sprintf("Failed: %d", r.Failed)),
		dimStyle.Render(r.Duration.Round(time.Millisecond).String()),
	)

	failures := r.Failures()
	if len(failures) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	for _, o := range failures {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", errStyle.Render("✗"), o.Name, dimStyle.Render(o.Cause))
	}
}

func printRepositories(w io.Writer, repos []operations.ListedRepository, s backup.FilterSummary) {
	maxName := 10
	for _, r := range repos {
		if len(r.Name) > maxName {
			maxName = len(r.Name)
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		headerStyle.Render(padRight("NAME", maxName)),
		headerStyle.Render(padRight("VISIBILITY", 10)),
		headerStyle.Render(padRight("BRANCH", 12)),
		headerStyle.Render("BACKUP"),
	)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", maxName+36))

	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		status := okStyle.Render("yes")
		if !r.Selected {
			status = dimStyle.Render("no (" + r.SkipReason + ")")
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			padRight(r.Name, maxName),
			padRight(visibility, 10),
			padRight(r.DefaultBranch, 12),
			status,
		)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Total: %d listed, %d selected (%d empty, %d public, %d archived skipped)\n",
		s.Listed, s.Selected, s.Empty, s.Public, s.Archived)
}

func printVerify(w io.Writer, s *operations.VerifySummary) {
	_, _ = fmt.Fprintln(w)
	for _, r := range s.Results {
		if r.Status == operations.VerifyOK {
			_, _ = fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("✓"), r.Name, dimStyle.Render(fmt.Sprintf("%d entries", r.Entries)))
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s %s %s\n", errStyle.Render("✗"), r.Name, errStyle.Render(string(r.Status)), dimStyle.Render(fmt.Sprint(r.Err)))
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s: %d ok, %d problems\n", s.Destination, s.OK, s.Problems)
}
