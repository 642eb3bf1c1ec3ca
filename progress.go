package hikmeans

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ProgressFunc observes training progress. It is called each time a child
// subtree of an internal node at level (root = 0) is complete, with the
// completed fraction of that node's branches.
//
// Calls come from the training goroutines and may be concurrent. The
// callback may read the tree, which still reports the previous training
// until Train returns, but must not call Train or Init.
type ProgressFunc func(level int, fraction float64)

// progressInterval throttles intermediate progress log lines.
const progressInterval = 500 * time.Millisecond

type progressReporter struct {
	fn        ProgressFunc
	logger    *Logger
	verbosity int
	sometimes rate.Sometimes
}

func newProgressReporter(fn ProgressFunc, logger *Logger, verbosity int) *progressReporter {
	return &progressReporter{
		fn:        fn,
		logger:    logger,
		verbosity: verbosity,
		sometimes: rate.Sometimes{First: 1, Interval: progressInterval},
	}
}

// report is safe for concurrent use.
func (p *progressReporter) report(ctx context.Context, level, done, total int) {
	fraction := float64(done) / float64(total)
	if p.fn != nil {
		p.fn(level, fraction)
	}
	if p.verbosity <= level {
		return
	}
	if done == total {
		p.logger.LogProgress(ctx, level, fraction)
		return
	}
	p.sometimes.Do(func() {
		p.logger.LogProgress(ctx, level, fraction)
	})
}
