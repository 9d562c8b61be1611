package coscheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/scheduler"
	"github.com/stratos-karas/elise/internal/simctx"
)

// Rules is the character-based pairing co-scheduler: SPREAD pairs with
// ROBUST, FRAIL pairs with ROBUST, every other combination is denied
// colocation and falls back to compact allocation. Grounded on
// realsim/scheduler/coschedulers/rulebased/rules.py, with the original's
// xunit/flat-procset bookkeeping re-expressed over this repository's
// host/socket model: a candidate host is only eligible for a job if every
// current resident satisfies SatisfiesCoschedulingRules with it, so an
// ineligible host never outranks the shared worst-speedup score returned
// for a legitimately pairable one.
type Rules struct {
	Options scheduler.Options
}

// NewRules constructs a Rules co-scheduler with the given options.
func NewRules(opts scheduler.Options) *Rules { return &Rules{Options: opts} }

func (r *Rules) Name() string          { return "Rules Co-Scheduler" }
func (r *Rules) BackfillEnabled() bool { return true }

// SatisfiesCoschedulingRules reports whether two job characters are
// allowed to share a host.
func SatisfiesCoschedulingRules(a, b job.Character) bool {
	if a == job.Spread && b == job.Robust {
		return true
	}
	if a == job.Robust && b == job.Spread {
		return true
	}
	if a == job.Frail && b == job.Robust {
		return true
	}
	if a == job.Robust && b == job.Frail {
		return true
	}
	return false
}

// hostCondFor returns a HostAllocCondition that disqualifies (returns
// negative infinity) any host whose current residents would violate the
// pairing rule with j, and otherwise scores by the shared worst-speedup
// formula so rule-satisfying hosts are still ranked by interference.
func (r *Rules) hostCondFor(j *job.Job) scheduler.HostAllocCondition {
	return func(ctx *simctx.Context, hostname string, cand *job.Job) float64 {
		h := ctx.Cluster.Hosts[hostname]
		for _, sig := range h.OccupantSignatures() {
			occName := jobNameFromSignature(sig)
			occChar := occupantCharacter(ctx, occName)
			if !SatisfiesCoschedulingRules(j.Character, occChar) {
				return negInf
			}
		}
		return DefaultHostAllocCondition(ctx, hostname, cand)
	}
}

// occupantCharacter looks up a resident's character by scanning the
// execution list for a matching job name; unknown names (shouldn't occur
// in practice) are treated as Compact, the least permissive character.
func occupantCharacter(ctx *simctx.Context, name string) job.Character {
	for _, xj := range ctx.Cluster.ExecutionList {
		if xj.Name == name {
			return xj.Character
		}
	}
	return job.Compact
}

const negInf = -1e18

// ruleEligibleAllocation is scheduler.Allocation restricted to hosts the
// pairing rule actually permits: hostCond's negInf disqualification is
// enforced by filtering rather than merely down-ranking, since Allocation
// itself has no notion of a minimum acceptable score.
func ruleEligibleAllocation(ctx *simctx.Context, j *job.Job, hostCond scheduler.HostAllocCondition) bool {
	suitable, ok := scheduler.FindSuitableNodes(ctx, j.Processes, ctx.Cluster.HalfSocketAllocation, false)
	if !ok {
		return false
	}

	names := make([]string, 0, len(suitable))
	for _, h := range ctx.Cluster.HostsInOrder() {
		if _, ok := suitable[h.Name]; !ok {
			continue
		}
		if hostCond(ctx, h.Name, j) <= negInf {
			continue
		}
		names = append(names, h.Name)
	}
	if len(names) == 0 {
		return false
	}
	sort.SliceStable(names, func(a, b int) bool {
		return hostCond(ctx, names[a], j) > hostCond(ctx, names[b], j)
	})

	neededPPN := 0
	for _, n := range ctx.Cluster.HalfSocketAllocation {
		neededPPN += n
	}
	neededHosts := int(math.Ceil(float64(j.Processes) / float64(neededPPN)))
	if neededHosts > len(names) {
		return false
	}

	j.SocketConf = append([]int(nil), ctx.Cluster.HalfSocketAllocation...)
	placements := make([]simctx.Placement, 0, neededHosts)
	for _, name := range names[:neededHosts] {
		placements = append(placements, simctx.Placement{Host: name, ProcSets: suitable[name]})
	}
	ctx.Deploy(j, placements)
	return true
}

// Deploy attempts half-socket colocation for every compatible-character job
// first (disqualifying hosts that would violate the pairing rule), falling
// back to exclusive compact allocation for COMPACT jobs and for anything
// that found no rule-satisfying host.
func (r *Rules) Deploy(ctx *simctx.Context) bool {
	deployed := false
	for _, j := range boundedCopy(ctx.Cluster.WaitingQueue, r.Options.QueueDepth) {
		if j.Character == job.Compact {
			if scheduler.CompactAllocation(ctx, j, true, nil) {
				deployed = true
				continue
			}
			break
		}

		if ruleEligibleAllocation(ctx, j, r.hostCondFor(j)) {
			deployed = true
			continue
		}
		if scheduler.CompactAllocation(ctx, j, true, nil) {
			deployed = true
			continue
		}
		break
	}
	return deployed
}

// Backfill mirrors the EASY-style reservation used by the ranks family,
// scored through the rule-aware host condition of each candidate.
func (r *Rules) Backfill(ctx *simctx.Context) bool {
	wq := ctx.Cluster.WaitingQueue
	if len(wq) == 0 {
		return false
	}
	return backfillHalfSocketWith(ctx, r.Options, func(ctx *simctx.Context, j *job.Job) bool {
		return ruleEligibleAllocation(ctx, j, r.hostCondFor(j))
	})
}
