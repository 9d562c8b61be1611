package scheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/simctx"
)

// Conservative is FIFO with conservative backfilling: every job in the
// waiting queue (not just the head) gets its own reservation time, built
// against a running projection of free-slot availability that accounts
// for earlier reservations in the same pass. Grounded on
// realsim/scheduler/schedulers/conservative.py, with the recursive
// Python projection (which mutates a shared execution-list copy per
// position) re-expressed as an explicit event sweep for determinism.
type Conservative struct {
	Options Options
}

// NewConservative constructs a Conservative scheduler.
func NewConservative(opts Options) *Conservative { return &Conservative{Options: opts} }

func (c *Conservative) Name() string          { return "Conservative Scheduler" }
func (c *Conservative) BackfillEnabled() bool { return true }

// Deploy behaves exactly like FIFO.Deploy.
func (c *Conservative) Deploy(ctx *simctx.Context) bool {
	deployed := false
	candidates := bounded(ctx.Cluster.WaitingQueue, c.Options.QueueDepth)
	for _, j := range candidates {
		if CompactAllocation(ctx, j, true, nil) {
			deployed = true
		} else {
			break
		}
	}
	return deployed
}

type slotEvent struct {
	time  float64
	delta int // positive: hosts freed; negative: hosts committed to a reservation
}

// Backfill builds one reservation time per waiting-queue position, sweeping
// a timeline of host-freeing events (executing jobs' projected finish
// times) and host-consuming events (earlier reservations already committed
// in this pass), then allocates any later candidate whose wall_time fits
// before every reservation ahead of it in the window.
func (c *Conservative) Backfill(ctx *simctx.Context) bool {
	wq := ctx.Cluster.WaitingQueue
	if len(wq) <= 1 {
		return false
	}
	makespan := ctx.Cluster.Makespan

	// The reservation sweep runs over the whole window (head included): the
	// head's own reservation is committed first so later positions can
	// never be granted a slot that would delay it. Only wq[1:] are actual
	// backfill candidates — the head already had its immediate Deploy
	// attempt, which is why Backfill was called at all.
	window := bounded(wq, c.Options.BackfillDepth+1)
	if len(window) <= 1 {
		return false
	}

	freeSlots := 0
	for _, h := range ctx.Cluster.HostsInOrder() {
		if h.State == host.Idle {
			freeSlots++
		}
	}

	var frees []slotEvent
	for _, xjob := range ctx.Cluster.ExecutionList {
		remaining := xjob.WallTime - (makespan - xjob.StartTime)
		frees = append(frees, slotEvent{time: remaining, delta: len(xjob.AssignedHosts)})
	}
	sort.Slice(frees, func(a, b int) bool { return frees[a].time < frees[b].time })

	var commitments []slotEvent

	// A position whose need is already covered by currently-idle hosts has
	// no limiting reservation at all — nothing it might later collide with —
	// so it reports no deadline (+Inf) rather than 0; the self-index
	// deadline check below only makes a position wait on a concrete future
	// time when resources genuinely run out.
	reserve := func(need int) float64 {
		events := append(append([]slotEvent(nil), frees...), commitments...)
		sort.Slice(events, func(a, b int) bool { return events[a].time < events[b].time })
		avail := freeSlots
		if avail >= need {
			return math.Inf(1)
		}
		for _, ev := range events {
			avail += ev.delta
			if avail >= need {
				return ev.time
			}
		}
		return math.Inf(1)
	}

	reserves := make([]float64, len(window))
	for i, blocked := range window {
		t := reserve(blocked.FullSocketNodes)
		reserves[i] = t
		if !math.IsInf(t, 1) {
			commitments = append(commitments, slotEvent{time: t, delta: -blocked.FullSocketNodes})
		}
	}

	// A candidate at position i may only run now if it is guaranteed to
	// finish before its own reservation comes due — otherwise it could
	// still be occupying cores when that reservation's job needs them.
	deployed := false
	for i, b := range window {
		if i == 0 {
			continue
		}
		if b.WallTime <= reserves[i] {
			if CompactAllocation(ctx, b, false, nil) {
				deployed = true
			}
		}
	}
	return deployed
}
