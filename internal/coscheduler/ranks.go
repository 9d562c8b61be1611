package coscheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/scheduler"
	"github.com/stratos-karas/elise/internal/simctx"
)

// RanksThreshold is the bidirectional-average-speedup cutoff above which a
// pair of waiting jobs counts as a "good pairing" (realsim/scheduler/
// coschedulers/ranks/ranks.py: self.ranks_threshold).
const RanksThreshold = 1.0

// Ranks is the rank-based co-scheduler family: at setup it counts, for each
// waiting job, how many other waiting jobs it forms a good pairing with
// (its rank). The variants (Random/Filler/Bester/Jungle) differ only in
// their job-reorder, host-scoring and backfill hooks; the rank itself is
// tracked for diagnostic purposes the way the original tracks it (its
// deploy loop never actually gates on rank — that check is commented out
// in realsim/scheduler/coschedulers/ranks/ranks.py — so neither does this
// port).
type Ranks struct {
	Options Options
	Variant Variant

	ranks    map[int]int
	computed bool
}

// Options mirrors scheduler.Options for the colocation policies.
type Options = scheduler.Options

// Variant holds the scoring and backfill hooks a concrete ranks flavor
// overrides. A nil hook falls back to the shared default.
type Variant struct {
	VariantName         string
	WaitingQueueReorder func(ctx *simctx.Context, ranks map[int]int, j *job.Job) float64
	HostAllocCondition  scheduler.HostAllocCondition
	Backfill            func(ctx *simctx.Context, opts scheduler.Options, hostCond scheduler.HostAllocCondition) bool
	BackfillDisabled    bool
}

func newRanks(name string, v Variant) *Ranks {
	v.VariantName = name
	return &Ranks{Options: scheduler.DefaultOptions(), Variant: v}
}

// randomHostCond scores an occupied host above an idle one — the inverse of
// the shared default's spread bias — matching random.py's
// `host_alloc_condition`: `float(hosts[hostname].state != Host.IDLE)`.
func randomHostCond(ctx *simctx.Context, hostname string, j *job.Job) float64 {
	if ctx.Cluster.Hosts[hostname].State != host.Idle {
		return 1.0
	}
	return 0.0
}

// NewRandomRanks: constant job ordering; occupied hosts are preferred over
// idle ones (random.py packs into existing allocations rather than
// spreading), and random.py's backfill() unconditionally returns False, so
// Random never backfills.
func NewRandomRanks() *Ranks {
	return newRanks("Random Ranks Co-Scheduler", Variant{
		HostAllocCondition: randomHostCond,
		BackfillDisabled:   true,
	})
}

// fillerReorder is filler.py's waiting_queue_reorder: the job closest to
// covering the system's idle-core gap (factor0) is preferred, scaled by a
// job-id/queue-length factor (factor1) that favors jobs nearer the front of
// the waiting queue.
func fillerReorder(ctx *simctx.Context, _ map[int]int, j *job.Job) float64 {
	sysFreeCores := ctx.Cluster.GetIdleCores()
	var factor0 float64
	if sysFreeCores > 0 {
		diff := sysFreeCores - j.Processes
		switch {
		case diff > 0:
			factor0 = 1 - float64(diff)/float64(sysFreeCores)
		case diff == 0:
			factor0 = 1
		default:
			factor0 = -1
		}
	} else {
		factor0 = 1
	}

	factor1 := float64(j.ID+1) / float64(len(ctx.Cluster.WaitingQueue))
	return factor0 / factor1
}

// NewFillerRanks inherits Random's host condition (prefer occupied hosts)
// and disabled backfill (filler.py's FillerCoscheduler subclasses
// RandomRanksCoscheduler without overriding either), overriding only the
// waiting-queue reorder with the gap-filling factor0/factor1 formula.
func NewFillerRanks() *Ranks {
	return newRanks("Filler Ranks Co-Scheduler", Variant{
		HostAllocCondition:  randomHostCond,
		WaitingQueueReorder: fillerReorder,
		BackfillDisabled:    true,
	})
}

// NewBesterRanks: host scoring uses bester.py's coloc_condition tuple
// (points, avg_pair_speedup) collapsed to a single ordered float; job
// ordering is the base constant 1.0 (bester.py's commented-out random
// reorder never activates); backfill is Bester's own ascending-wall-time
// colocate-until-miss loop, with no reservation-time check.
func NewBesterRanks() *Ranks {
	return newRanks("Bester Ranks Co-Scheduler", Variant{
		HostAllocCondition: besterHostCond,
		Backfill:           besterBackfill,
	})
}

// NewJungleRanks: job ordering is shared; hosts are scored by
// (avg_speedup_over_residents, count_of_residents_with_speedup>=1).
func NewJungleRanks() *Ranks {
	return newRanks("Jungle Ranks Co-Scheduler", Variant{
		HostAllocCondition: jungleHostCond,
	})
}

func (r *Ranks) Name() string          { return r.Variant.VariantName }
func (r *Ranks) BackfillEnabled() bool { return true }

func (r *Ranks) hostCond() scheduler.HostAllocCondition {
	if r.Variant.HostAllocCondition != nil {
		return r.Variant.HostAllocCondition
	}
	return DefaultHostAllocCondition
}

func (r *Ranks) reorder(ctx *simctx.Context, j *job.Job) float64 {
	if r.Variant.WaitingQueueReorder != nil {
		return r.Variant.WaitingQueueReorder(ctx, r.ranks, j)
	}
	return 1.0
}

// UpdateRanks recomputes rank[job] = number of other waiting jobs whose
// bidirectional average speedup with job exceeds RanksThreshold. Grounded
// on RanksCoscheduler.update_ranks.
func (r *Ranks) UpdateRanks(ctx *simctx.Context) {
	wq := ctx.Cluster.WaitingQueue
	ranks := make(map[int]int, len(wq))
	for _, j := range wq {
		ranks[j.ID] = 0
	}
	for i, a := range wq {
		for _, b := range wq[i+1:] {
			ab, okAB := ctx.Heatmap.Lookup(a.Name, b.Name)
			ba, okBA := ctx.Heatmap.Lookup(b.Name, a.Name)
			if !okAB || !okBA {
				continue
			}
			if (ab+ba)/2 > RanksThreshold {
				ranks[a.ID]++
				ranks[b.ID]++
			}
		}
	}
	r.ranks = ranks
	r.computed = true
}

func (r *Ranks) Deploy(ctx *simctx.Context) bool {
	if !r.computed {
		r.UpdateRanks(ctx)
	}
	reorder := func(j *job.Job) float64 { return r.reorder(ctx, j) }
	return deployHalfSocket(ctx, r.Options, reorder, r.hostCond())
}

func (r *Ranks) Backfill(ctx *simctx.Context) bool {
	if r.Variant.BackfillDisabled {
		return false
	}
	if r.Variant.Backfill != nil {
		return r.Variant.Backfill(ctx, r.Options, r.hostCond())
	}
	return backfillHalfSocket(ctx, r.Options, r.hostCond())
}

// besterHostCond implements bester.py's coloc_condition, collapsing its
// (points, avg_pair_speedup) tuple ordering into a single float by scaling
// points into a range avg_pair_speedup can never cross. An empty host
// (spread) sorts highest, matching the original's (inf, inf).
func besterHostCond(ctx *simctx.Context, hostname string, j *job.Job) float64 {
	h := ctx.Cluster.Hosts[hostname]
	occupants := h.OccupantSignatures()
	if len(occupants) == 0 {
		return math.Inf(1)
	}

	var coJob *job.Job
	for _, xjob := range ctx.Cluster.ExecutionList {
		if xjob.Signature() == occupants[0] {
			coJob = xjob
			break
		}
	}
	if coJob == nil {
		return math.Inf(1)
	}

	points := 0.0
	if float64(ctx.Cluster.GetIdleCores()) > 0.25*float64(ctx.Cluster.GetUsedCores()) {
		if j.HalfSocketNodes >= coJob.HalfSocketNodes/2 {
			points++
		}
	}

	sp1, ok1 := ctx.Heatmap.Lookup(j.Name, coJob.Name)
	sp2, ok2 := ctx.Heatmap.Lookup(coJob.Name, j.Name)
	if !ok1 || !ok2 {
		return points*1e6 + j.AvgSpeedup
	}

	avgSp := (sp1 + sp2) / 2
	estimatedRemTime := (coJob.StartTime + coJob.WallTime) - ctx.Cluster.Makespan
	if estimatedRemTime != 0 && math.Abs(j.WallTime-estimatedRemTime)/estimatedRemTime < 0.2 && avgSp >= 1 {
		points++
	}

	return points*1e6 + avgSp
}

// besterBackfill is bester.py's own backfill(): no reservation-time check
// at all, just the backfill-depth candidates sorted ascending by wall time
// and colocated in that order until the first miss.
func besterBackfill(ctx *simctx.Context, opts scheduler.Options, hostCond scheduler.HostAllocCondition) bool {
	wq := ctx.Cluster.WaitingQueue
	if len(wq) <= 1 {
		return false
	}

	candidates := boundedCopy(wq[1:], opts.BackfillDepth)
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].WallTime < candidates[b].WallTime
	})

	deployed := false
	for _, b := range candidates {
		if scheduler.Allocation(ctx, b, ctx.Cluster.HalfSocketAllocation, false, hostCond) {
			deployed = true
		} else {
			break
		}
	}
	return deployed
}

func jungleHostCond(ctx *simctx.Context, hostname string, j *job.Job) float64 {
	h := ctx.Cluster.Hosts[hostname]
	occupants := h.OccupantSignatures()
	if len(occupants) == 0 {
		return j.MaxSpeedup * 1000.0
	}
	sum := 0.0
	atLeastOne := 0
	for _, sig := range occupants {
		name := jobNameFromSignature(sig)
		speedup, ok := ctx.Heatmap.Lookup(j.Name, name)
		if !ok {
			speedup = 1.0
		}
		sum += speedup
		if speedup >= 1.0 {
			atLeastOne++
		}
	}
	avg := sum / float64(len(occupants))
	return avg*1000.0 + float64(atLeastOne)
}
