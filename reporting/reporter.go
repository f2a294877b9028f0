package reporting

import (
	"context"

	"github.com/kcz17/timingsummary/stats"
)

type Reporter interface {
	// Report publishes a finished summary.
	Report(ctx context.Context, summary *stats.Summary) error
}

// multiReporter reports to each of its reporters in order, stopping at the
// first error.
type multiReporter struct {
	reporters []Reporter
}

func NewMultiReporter(reporters ...Reporter) *multiReporter {
	return &multiReporter{reporters: reporters}
}

func (r *multiReporter) Report(ctx context.Context, summary *stats.Summary) error {
	for _, reporter := range r.reporters {
		if err := reporter.Report(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}
