package scheduler

import "github.com/stratos-karas/elise/internal/simctx"

// FIFO is first-come-first-served compact allocation with no backfill.
// Grounded on realsim/scheduler/schedulers/fifo.py.
type FIFO struct {
	Options Options
}

// NewFIFO constructs a FIFO scheduler with the given options.
func NewFIFO(opts Options) *FIFO { return &FIFO{Options: opts} }

func (f *FIFO) Name() string                    { return "FIFO Scheduler" }
func (f *FIFO) BackfillEnabled() bool           { return false }
func (f *FIFO) Backfill(_ *simctx.Context) bool { return false }

// Deploy pops jobs off the head of the waiting queue in order, attempting
// an immediate compact allocation for each; it stops at the first job that
// does not fit (spec.md §4.6 FIFO).
func (f *FIFO) Deploy(ctx *simctx.Context) bool {
	deployed := false
	candidates := bounded(ctx.Cluster.WaitingQueue, f.Options.QueueDepth)
	for _, j := range candidates {
		if CompactAllocation(ctx, j, true, nil) {
			deployed = true
		} else {
			break
		}
	}
	return deployed
}
