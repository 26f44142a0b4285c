package commands

import (
	"fmt"
	"io"

	"github.com/doeshing/recogaize/internal/domain"
)

func renderReport(out io.Writer, report captionReport) {
	if report.Error != "" {
		fmt.Fprintf(out, "%s\n  error: %s\n", report.File, report.Error)
		return
	}
	fmt.Fprintf(out, "%s\n  %s\n", report.File, report.Caption)
}

// RenderHistory prints the session history, newest first.
func RenderHistory(out io.Writer, history []domain.CaptionResult) {
	if len(history) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "History:")
	for i, entry := range history {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, entry.Caption, entry.GeneratedAt.Local().Format(domain.DisplayTimeFormat))
	}
}
