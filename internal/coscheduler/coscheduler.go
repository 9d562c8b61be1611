// Package coscheduler implements the co-location-aware scheduling policies:
// the rank-based family (Random/Filler/Bester/Jungle) and the
// character-rule-based policy. Grounded on
// realsim/scheduler/coscheduler.py and realsim/scheduler/coschedulers/.
//
// Unlike FIFO/EASY/Conservative, these policies place jobs under
// half_socket_allocation so two jobs can share a host, and they score
// candidate hosts by the interference a job would suffer from its
// prospective neighbors rather than treating every suitable host as
// equally good.
package coscheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/scheduler"
	"github.com/stratos-karas/elise/internal/simctx"
)

// DefaultHostAllocCondition implements Coscheduler.host_alloc_condition: an
// idle host biases toward spread (scored at the job's max_speedup), and an
// occupied host scores as the worst heatmap pairing among its current
// residents (unknown pairings default to 1.0, not avg_speedup — this is
// the coscheduler's deliberately different null-fallback from
// interference.TargetSpeedup, see DESIGN.md).
func DefaultHostAllocCondition(ctx *simctx.Context, hostname string, j *job.Job) float64 {
	h := ctx.Cluster.Hosts[hostname]
	occupants := h.OccupantSignatures()
	if len(occupants) == 0 {
		return j.MaxSpeedup
	}
	worst := math.Inf(1)
	for _, sig := range occupants {
		name := jobNameFromSignature(sig)
		speedup, ok := ctx.Heatmap.Lookup(j.Name, name)
		if !ok {
			speedup = 1.0
		}
		if speedup < worst {
			worst = speedup
		}
	}
	return worst
}

func jobNameFromSignature(sig string) string {
	for i := len(sig) - 1; i >= 0; i-- {
		if sig[i] == ':' {
			return sig[i+1:]
		}
	}
	return sig
}

// deployHalfSocket is the shared deploy loop every rank/rules variant uses:
// take the queue-depth slice of the waiting queue, reorder it descending by
// reorder, and attempt half-socket colocation in that order, stopping at
// the first miss.
func deployHalfSocket(ctx *simctx.Context, opts scheduler.Options, reorder func(*job.Job) float64, hostCond scheduler.HostAllocCondition) bool {
	candidates := boundedCopy(ctx.Cluster.WaitingQueue, opts.QueueDepth)
	sort.SliceStable(candidates, func(a, b int) bool {
		return reorder(candidates[a]) > reorder(candidates[b])
	})

	deployed := false
	for _, j := range candidates {
		if scheduler.Allocation(ctx, j, ctx.Cluster.HalfSocketAllocation, true, hostCond) {
			deployed = true
		} else {
			break
		}
	}
	return deployed
}

// backfillHalfSocket mirrors RanksCoscheduler.backfill: a reservation time
// for the blocked head is built by walking the execution list in
// earliest-completion order, accumulating the set of suitable idle hosts
// plus each finishing job's host names until the count covers the head's
// half_socket_nodes footprint; candidates within backfillDepth of the
// queue whose wall_time fits inside that reservation are co-located.
func backfillHalfSocket(ctx *simctx.Context, opts scheduler.Options, hostCond scheduler.HostAllocCondition) bool {
	return backfillHalfSocketWith(ctx, opts, func(ctx *simctx.Context, j *job.Job) bool {
		return scheduler.Allocation(ctx, j, ctx.Cluster.HalfSocketAllocation, true, hostCond)
	})
}

// backfillHalfSocketWith is backfillHalfSocket parameterized on the
// allocation attempt itself, so callers (like Rules) that must filter out
// disqualified hosts rather than merely down-rank them can plug in their
// own allocator while reusing the shared reservation-time computation.
func backfillHalfSocketWith(ctx *simctx.Context, opts scheduler.Options, allocate func(*simctx.Context, *job.Job) bool) bool {
	wq := ctx.Cluster.WaitingQueue
	if len(wq) <= 1 {
		return false
	}
	makespan := ctx.Cluster.Makespan
	blocked := wq[0]

	suitable, _ := scheduler.FindSuitableNodes(ctx, blocked.Processes, ctx.Cluster.HalfSocketAllocation, false)
	aggrHosts := make(map[string]struct{}, len(suitable))
	for name := range suitable {
		aggrHosts[name] = struct{}{}
	}

	exec := append([]*job.Job(nil), ctx.Cluster.ExecutionList...)
	sort.SliceStable(exec, func(a, b int) bool {
		return (exec[a].WallTime + exec[a].StartTime - makespan) < (exec[b].WallTime + exec[b].StartTime - makespan)
	})

	minEstimated := math.Inf(1)
	for _, xjob := range exec {
		for _, hn := range xjob.AssignedHosts {
			aggrHosts[hn] = struct{}{}
		}
		if len(aggrHosts) >= blocked.HalfSocketNodes {
			minEstimated = xjob.WallTime - (makespan - xjob.StartTime)
			break
		}
	}
	if math.IsInf(minEstimated, 1) {
		return false
	}

	deployed := false
	for _, b := range boundedCopy(wq[1:], opts.BackfillDepth) {
		if b.WallTime <= minEstimated {
			if allocate(ctx, b) {
				deployed = true
			}
		}
	}
	return deployed
}

func boundedCopy(queue []*job.Job, depth int) []*job.Job {
	if depth <= 0 || depth >= len(queue) {
		return append([]*job.Job(nil), queue...)
	}
	return append([]*job.Job(nil), queue[:depth]...)
}
