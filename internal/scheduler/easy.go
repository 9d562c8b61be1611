package scheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/simctx"
)

// EASY is FIFO with EASY backfilling: a reservation time is computed for
// the blocked head-of-queue job, and later jobs whose wall time fits
// within that reservation are allowed to jump ahead. Grounded on
// realsim/scheduler/schedulers/easy.py.
type EASY struct {
	Options Options
}

// NewEASY constructs an EASY scheduler with the given options.
func NewEASY(opts Options) *EASY { return &EASY{Options: opts} }

func (e *EASY) Name() string          { return "EASY Scheduler" }
func (e *EASY) BackfillEnabled() bool { return true }

// Deploy behaves exactly like FIFO.Deploy.
func (e *EASY) Deploy(ctx *simctx.Context) bool {
	deployed := false
	candidates := bounded(ctx.Cluster.WaitingQueue, e.Options.QueueDepth)
	for _, j := range candidates {
		if CompactAllocation(ctx, j, true, nil) {
			deployed = true
		} else {
			break
		}
	}
	return deployed
}

// Backfill computes the blocked head job's reservation time by walking the
// execution list in earliest-completion order, accumulating idle hosts
// plus each finishing job's host count until the blocked job's footprint
// would fit; jobs within backfillDepth of the queue whose wall_time fits
// inside that reservation are allocated immediately.
func (e *EASY) Backfill(ctx *simctx.Context) bool {
	wq := ctx.Cluster.WaitingQueue
	if len(wq) <= 1 {
		return false
	}
	makespan := ctx.Cluster.Makespan
	blocked := wq[0]

	exec := append([]*job.Job(nil), ctx.Cluster.ExecutionList...)
	sort.SliceStable(exec, func(a, b int) bool {
		return (exec[a].WallTime + exec[a].StartTime - makespan) < (exec[b].WallTime + exec[b].StartTime - makespan)
	})

	aggrHosts := 0
	for _, h := range ctx.Cluster.HostsInOrder() {
		if h.State == host.Idle {
			aggrHosts++
		}
	}

	minEstimated := math.Inf(1)
	for _, xjob := range exec {
		aggrHosts += len(xjob.AssignedHosts)
		if aggrHosts >= blocked.FullSocketNodes {
			minEstimated = xjob.WallTime - (makespan - xjob.StartTime)
			break
		}
	}
	if math.IsInf(minEstimated, 1) {
		return false
	}

	deployed := false
	backfillCandidates := bounded(wq[1:], e.Options.BackfillDepth)
	for _, b := range backfillCandidates {
		if b.WallTime <= minEstimated {
			if CompactAllocation(ctx, b, false, nil) {
				deployed = true
			}
		}
	}
	return deployed
}
