package reporting

import (
	"context"
	"time"

	"github.com/kcz17/timingsummary/stats"
)

// timeoutReporter bounds the time spent by a reporter which talks to the
// network.
type timeoutReporter struct {
	reporter Reporter
	timeout  time.Duration
}

func NewTimeoutReporter(reporter Reporter, timeout time.Duration) *timeoutReporter {
	return &timeoutReporter{
		reporter: reporter,
		timeout:  timeout,
	}
}

func (r *timeoutReporter) Report(ctx context.Context, summary *stats.Summary) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.reporter.Report(ctx, summary)
}
