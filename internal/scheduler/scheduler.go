// Package scheduler implements resource matching and allocation, shared by
// every concrete policy, plus the FIFO/EASY/Conservative policies
// themselves. Grounded on realsim/scheduler/scheduler.py and
// realsim/scheduler/schedulers/{fifo,easy,conservative}.py.
//
// Per spec.md §9, policies are expressed as a capability set (the Policy
// interface) rather than an inheritance chain: each concrete policy
// implements its own Deploy/Backfill on top of the shared
// matching/allocation helpers in this file, passing a HostAllocCondition
// scoring hook where it ranks hosts.
package scheduler

import (
	"math"
	"sort"

	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/procset"
	"github.com/stratos-karas/elise/internal/simctx"
)

// Policy is the capability set every scheduler implements.
type Policy interface {
	Name() string
	BackfillEnabled() bool
	Deploy(ctx *simctx.Context) bool
	Backfill(ctx *simctx.Context) bool
}

// HostAllocCondition scores a host for ranking candidates during
// allocation; higher is preferred. The default (used by FIFO/EASY/
// Conservative) is a constant 1.0 — every suitable host is equally good,
// so sort.SliceStable preserves natural host order.
type HostAllocCondition func(ctx *simctx.Context, hostname string, j *job.Job) float64

// DefaultHostAllocCondition implements Scheduler.host_alloc_condition's
// base-class behavior: every host scores the same.
func DefaultHostAllocCondition(_ *simctx.Context, _ string, _ *job.Job) float64 { return 1.0 }

// Options groups the tunables every concrete policy construction shares:
// how much of the waiting queue to consider per deploy pass (0 = all of
// it) and how deep to reach for backfill candidates.
type Options struct {
	QueueDepth    int // 0 = unbounded
	BackfillDepth int // default 100, per realsim/scheduler/scheduler.py
}

// DefaultOptions mirrors Scheduler.__init__'s defaults.
func DefaultOptions() Options {
	return Options{QueueDepth: 0, BackfillDepth: 100}
}

// FindSuitableNodes iterates hosts in their natural (stable) order; for
// each host whose every socket has at least socketConf[i] free cores, it
// reserves (previews, without mutating) the first socketConf[i] cores of
// that socket. When immediate is true, it returns as soon as the
// accumulated cores cover reqCores, possibly yielding more hosts than
// strictly necessary (a placement may be trimmed later in Allocation).
// ok reports whether the aggregated cores across the returned hosts cover
// reqCores.
func FindSuitableNodes(ctx *simctx.Context, reqCores int, socketConf []int, immediate bool) (map[string][]procset.ProcSet, bool) {
	coresPerHost := 0
	for _, n := range socketConf {
		coresPerHost += n
	}

	out := make(map[string][]procset.ProcSet)
	remaining := reqCores
	for _, h := range ctx.Cluster.HostsInOrder() {
		if !h.Fits(socketConf) {
			continue
		}
		psets, ok := h.Preview(socketConf)
		if !ok {
			continue
		}
		out[h.Name] = psets
		remaining -= coresPerHost
		if immediate && remaining <= 0 {
			return out, true
		}
	}
	return out, remaining <= 0
}

// Allocation attempts to place job under socketConf: it finds suitable
// hosts, ranks them by hostCond descending, takes the first
// ceil(job.Processes / sum(socketConf)) of them, and commits the
// placement through ctx.Deploy. Returns false (no mutation) if no
// sufficient placement exists.
func Allocation(ctx *simctx.Context, j *job.Job, socketConf []int, immediate bool, hostCond HostAllocCondition) bool {
	if hostCond == nil {
		hostCond = DefaultHostAllocCondition
	}
	j.SocketConf = append([]int(nil), socketConf...)

	suitable, ok := FindSuitableNodes(ctx, j.Processes, socketConf, immediate)
	if !ok {
		return false
	}

	// Seed names from the cluster's stable host order, not a map range, so
	// that ties in hostCond (the constant-1.0 default included) resolve to
	// natural host order rather than Go's randomized map iteration.
	names := make([]string, 0, len(suitable))
	for _, h := range ctx.Cluster.HostsInOrder() {
		if _, ok := suitable[h.Name]; ok {
			names = append(names, h.Name)
		}
	}
	sort.SliceStable(names, func(a, b int) bool {
		return hostCond(ctx, names[a], j) > hostCond(ctx, names[b], j)
	})

	neededPPN := 0
	for _, n := range socketConf {
		neededPPN += n
	}
	neededHosts := int(math.Ceil(float64(j.Processes) / float64(neededPPN)))

	placements := make([]simctx.Placement, 0, neededHosts)
	for _, name := range names {
		if len(placements) == neededHosts {
			break
		}
		placements = append(placements, simctx.Placement{Host: name, ProcSets: suitable[name]})
	}

	ctx.Deploy(j, placements)
	return true
}

// CompactAllocation places job exclusively across full sockets.
func CompactAllocation(ctx *simctx.Context, j *job.Job, immediate bool, hostCond HostAllocCondition) bool {
	return Allocation(ctx, j, ctx.Cluster.FullSocketAllocation, immediate, hostCond)
}

// Pop removes and returns the head of queue.
func Pop(queue *[]*job.Job) *job.Job {
	if len(*queue) == 0 {
		return nil
	}
	j := (*queue)[0]
	*queue = (*queue)[1:]
	return j
}

// bounded returns queue[:depth], or the whole queue when depth is 0.
func bounded(queue []*job.Job, depth int) []*job.Job {
	if depth <= 0 || depth >= len(queue) {
		return append([]*job.Job(nil), queue...)
	}
	return append([]*job.Job(nil), queue[:depth]...)
}
