package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/kcz17/timingsummary/stats"
)

// stdoutReporter prints the summary as one line per statistic.
type stdoutReporter struct {
	w io.Writer
}

func NewStdoutReporter(w io.Writer) *stdoutReporter {
	return &stdoutReporter{w: w}
}

func (r *stdoutReporter) Report(_ context.Context, summary *stats.Summary) error {
	lines := []string{
		fmt.Sprintf("Instances: %d", summary.Count),
		fmt.Sprintf("Min: %s", summary.Min),
		fmt.Sprintf("Max: %s", summary.Max),
		fmt.Sprintf("Average: %s", summary.Average),
	}
	for _, p := range summary.Percentiles {
		lines = append(lines, fmt.Sprintf("%s: %s", stats.FormatRank(p.Rank), stats.FormatSeconds(p.Value)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return fmt.Errorf("unable to write summary: %w", err)
		}
	}
	return nil
}
