// Package engine implements the discrete-event compute engine: the single
// loop that admits preloaded jobs, invokes the scheduler, recomputes
// interference-driven remaining time, and advances the simulated wallclock
// to the next state transition. Grounded on realsim/compengine.py and
// realsim/simulator.py's run_sim driving loop.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/google/uuid"

	"github.com/stratos-karas/elise/internal/cluster"
	"github.com/stratos-karas/elise/internal/database"
	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/interference"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/procset"
	"github.com/stratos-karas/elise/internal/scheduler"
	"github.com/stratos-karas/elise/internal/simctx"
	"github.com/stratos-karas/elise/internal/tracelog"
)

// Sentinel errors for the fatal invariant violations spec.md §7/§8 call out
// as legitimate, diagnosable outcomes of a misconfigured workload rather
// than a simulator bug — returned to the driver, never panicked.
var (
	// ErrNoForwardProgress is returned when the next-event delta computed
	// by NextEventDelta is exactly zero.
	ErrNoForwardProgress = errors.New("engine: no forward progress (next-event delta is zero)")
	// ErrDeadlock is returned when the next-event delta is infinite while
	// either the waiting queue or the execution list is still non-empty.
	ErrDeadlock = errors.New("engine: deadlock detected (no job can advance)")
)

// Engine owns the four collaborators for one simulation run and drives the
// event loop described in spec.md §4.7. It replaces the original's mutual
// back-references (scheduler.database, logger.cluster, ...) with explicit
// ownership here and a narrow simctx.Context handed to the scheduler at
// each call (spec.md §9 "Back references").
type Engine struct {
	SimID string

	DB        *database.Database
	Cluster   *cluster.Cluster
	Scheduler scheduler.Policy
	Logger    *tracelog.Logger

	log *logrus.Entry
}

// New constructs an Engine from its four collaborators, minting a
// collision-free simulation identity the way a cluster-parallel worker
// (spec.md §5 "recommended parallelism unit is a simulation configuration")
// needs to tag its progress reports.
func New(db *database.Database, c *cluster.Cluster, sched scheduler.Policy, logger *tracelog.Logger) *Engine {
	simID := uuid.NewString()
	return &Engine{
		SimID:     simID,
		DB:        db,
		Cluster:   c,
		Scheduler: sched,
		Logger:    logger,
		log:       logrus.WithField("sim_id", simID),
	}
}

// Setup wires a simulation the way realsim/simulator.py's Simulation.__init__
// does for one (database, cluster, scheduler, logger) configuration: it runs
// the database's own setup (heatmap auto-population), constructs the
// engine, derives each job's ids/node-counts/characterization via
// SetupPreloadedJobs, and only then builds the Logger — its per-job records
// are keyed by job signature, which SetupPreloadedJobs' id assignment fixes.
// Building the logger before this point would seed it with the wrong keys.
func Setup(db *database.Database, c *cluster.Cluster, sched scheduler.Policy) *Engine {
	db.Setup()
	e := New(db, c, sched, nil)
	e.SetupPreloadedJobs()

	names := make([]string, 0, len(db.PreloadedQueue))
	wallTimes := make(map[string]float64, len(db.PreloadedQueue))
	processes := make(map[string]int, len(db.PreloadedQueue))
	for _, j := range db.PreloadedQueue {
		sig := j.Signature()
		names = append(names, sig)
		wallTimes[sig] = j.WallTime
		processes[sig] = j.Processes
	}
	e.Logger = tracelog.New(sched.Name(), names, wallTimes, processes, c.TotalCores)
	return e
}

// context builds the narrow view the scheduler receives this call: cluster
// state and heatmap to read, and a Deploy hook that routes back into the
// engine's own deploy commit logic.
func (e *Engine) context() *simctx.Context {
	return &simctx.Context{
		Cluster: e.Cluster,
		Heatmap: e.DB.Heatmap,
		Deploy:  e.deployJob,
	}
}

// SetupPreloadedJobs sorts the database's preloaded queue by submit time,
// shifts every job's submit time so the earliest becomes zero, assigns
// monotonically increasing ids, derives full/half-socket node counts, and
// characterizes each job from its heatmap row. Grounded on
// compengine.py:setup_preloaded_jobs.
func (e *Engine) SetupPreloadedJobs() {
	pq := e.DB.PreloadedQueue
	sort.SliceStable(pq, func(i, j int) bool { return pq[i].SubmitTime < pq[j].SubmitTime })

	if len(pq) == 0 {
		return
	}
	firstSubmit := pq[0].SubmitTime

	fullPPN := sum(e.Cluster.FullSocketAllocation)
	halfPPN := sum(e.Cluster.HalfSocketAllocation)

	for _, j := range pq {
		j.SubmitTime -= firstSubmit
		j.ID = e.Cluster.NextJobID
		e.Cluster.NextJobID++

		j.FullSocketNodes = ceilDiv(j.Processes, fullPPN)
		if halfPPN > 0 {
			j.HalfSocketNodes = ceilDiv(j.Processes, halfPPN)
		}

		characterize(j, e.DB.Heatmap)
	}
}

// characterize derives avg/min/max speedup from the job's heatmap row
// (null entries filtered, falling back to [1] if nothing is known) and
// assigns its Character, per spec.md §4.7.
func characterize(j *job.Job, hm database.Heatmap) {
	var speedups []float64
	for _, v := range hm[j.Name] {
		if v != nil {
			speedups = append(speedups, *v)
		}
	}
	if len(speedups) == 0 {
		speedups = []float64{1}
	}

	mean, std := meanStdDev(speedups)
	min, max := speedups[0], speedups[0]
	for _, s := range speedups {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	j.MinSpeedup, j.MaxSpeedup, j.AvgSpeedup = min, max, mean

	switch {
	case mean > 1.02:
		j.Character = job.Spread
	case mean < 0.98:
		j.Character = job.Compact
	case std > 0.07:
		j.Character = job.Frail
	default:
		j.Character = job.Robust
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

// AdmitPreloadedJobs moves every preloaded job whose submit time has
// arrived into the waiting queue, resetting its submit time to the current
// makespan (recording actual queue-entry time, per spec.md §4.7
// "Admission"). Admitting twice at the same makespan is a no-op: a job is
// only ever visited once, since it leaves the preloaded queue the first
// time its submit time is reached (the "idempotence of admission" law,
// spec.md §8).
func (e *Engine) AdmitPreloadedJobs() {
	pq := e.DB.PreloadedQueue
	i := 0
	for i < len(pq) && pq[i].SubmitTime <= e.Cluster.Makespan {
		j := pq[i]
		j.SubmitTime = e.Cluster.Makespan
		e.Cluster.WaitingQueue = append(e.Cluster.WaitingQueue, j)
		i++
	}
	e.DB.PreloadedQueue = pq[i:]
}

// CalculateJobRemTime recomputes j's target speedup from its current
// neighbors and scales its remaining time by (old/new) when the target
// differs from the job's current sim_speedup, per spec.md §4.7. Compact
// jobs (socket_conf == full_socket_allocation) are exempt: they never
// change speedup, matching the original's early return for
// `not spread_allocation`.
func (e *Engine) CalculateJobRemTime(j *job.Job) {
	if sameShape(j.SocketConf, e.Cluster.FullSocketAllocation) {
		return
	}

	neighbors := e.neighborNames(j)
	target := interference.TargetSpeedup(e.DB.Heatmap, j.Name, j.AvgSpeedup, j.MaxSpeedup, neighbors)

	if target != j.SimSpeedup {
		j.RemainingTime *= j.SimSpeedup / target
		j.SimSpeedup = target
	}
	e.Logger.LogSpeedupSample(j.Signature(), j.RemainingTime, j.SimSpeedup, neighbors)
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// neighborNames returns the distinct other job names sharing any host in
// j.AssignedHosts.
func (e *Engine) neighborNames(j *job.Job) []string {
	self := j.Signature()
	seen := map[string]struct{}{}
	var names []string
	for _, hostname := range j.AssignedHosts {
		h := e.Cluster.Hosts[hostname]
		for sig := range h.Occupants {
			if sig == self {
				continue
			}
			name := nameFromSignature(sig)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func nameFromSignature(sig string) string {
	for i := len(sig) - 1; i >= 0; i-- {
		if sig[i] == ':' {
			return sig[i+1:]
		}
	}
	return sig
}

// deployJob commits a scheduler's proposed placement: it appends each host
// to the job's assigned hosts, allocates the previewed ProcSets on that
// host, updates idle-core bookkeeping, and emits JobStart/
// JobDeployedToHost. Grounded on compengine.py:deploy_job_to_host(s).
func (e *Engine) deployJob(j *job.Job, placements []simctx.Placement) {
	e.Cluster.RemoveFromWaitingQueue(j)
	j.State = job.Executing
	j.StartTime = e.Cluster.Makespan
	sig := j.Signature()

	for _, p := range placements {
		h := e.Cluster.Hosts[p.Host]
		h.Occupants[sig] = p.ProcSets
		for s, ps := range p.ProcSets {
			h.Free[s] = h.Free[s].Difference(ps)
		}
		h.State = host.Allocated

		taken := 0
		var assigned procset.ProcSet
		for _, ps := range p.ProcSets {
			taken += ps.Size()
			assigned = assigned.Union(ps)
		}
		e.Cluster.IdleCores -= taken
		j.AssignedHosts = append(j.AssignedHosts, p.Host)

		e.Logger.LogJobStart(sig, j.SubmitTime, j.StartTime, assigned, p.Host, e.Cluster.IdleCores)
		e.Logger.LogJobDeployedToHost(sig, p.Host)
	}

	e.Cluster.ExecutionList = append(e.Cluster.ExecutionList, j)
	e.log.Debugf("job %s deployed to %d host(s)", sig, len(placements))
}

// cleanupJob releases j's held cores on every assigned host, flips hosts
// back to IDLE once they have no remaining occupants, and marks the job
// FINISHED. Grounded on compengine.py:clean_job_from_hosts.
func (e *Engine) cleanupJob(j *job.Job) {
	j.FinishTime = e.Cluster.Makespan
	j.State = job.Finished
	sig := j.Signature()

	for _, hostname := range j.AssignedHosts {
		h := e.Cluster.Hosts[hostname]
		for _, ps := range h.Occupants[sig] {
			e.Cluster.IdleCores += ps.Size()
		}
		h.Release(sig)
		e.Logger.LogJobCleanedFromHost(sig, hostname)
	}

	e.Logger.LogJobFinish(sig, j.FinishTime, e.Cluster.IdleCores)
	e.log.Debugf("job %s finished at %g", sig, j.FinishTime)
}

// NextEventDelta computes the minimum of every executing job's remaining
// time (after interference recomputation) and the time until the next
// preloaded job's submit time, per spec.md §4.7 "Next-event selection".
// The preloaded queue is kept sorted by submit time, so the scan breaks at
// the first future job.
func (e *Engine) NextEventDelta() float64 {
	minRem := math.Inf(1)
	for _, j := range e.Cluster.ExecutionList {
		e.CalculateJobRemTime(j)
		if j.RemainingTime < minRem {
			minRem = j.RemainingTime
		}
	}
	for _, j := range e.DB.PreloadedQueue {
		showup := j.SubmitTime - e.Cluster.Makespan
		if showup > 0 {
			if showup < minRem {
				minRem = showup
			}
			break
		}
	}
	return minRem
}

// Step admits newly-arrived preloaded jobs and gives the scheduler a
// deploy (and, if enabled, backfill) pass at the current makespan, then
// recomputes interference for every executing job, finds the next-event
// delta, and advances the makespan by it — decrementing every executing
// job's remaining time and cleaning up whichever reach zero. Grounded on
// compengine.py:sim_step, which performs admission and deployment before
// computing and applying the next event's delta within the same step:
// reversing that order would compute the very first step's delta against
// an empty execution list and an unadmitted preloaded queue, an immediate
// false deadlock for any workload whose first jobs all submit at t=0 (the
// common case, including spec.md's S1-S6 scenarios).
func (e *Engine) Step() error {
	e.AdmitPreloadedJobs()

	if len(e.Cluster.WaitingQueue) > 0 {
		e.Cluster.WaitingQueue[0].Age++
		e.Scheduler.Deploy(e.context())
		if e.Scheduler.BackfillEnabled() {
			e.Scheduler.Backfill(e.context())
		}
	}

	delta := e.NextEventDelta()

	if delta == 0 {
		return ErrNoForwardProgress
	}
	if math.IsInf(delta, 1) {
		if len(e.Cluster.WaitingQueue) != 0 || len(e.DB.PreloadedQueue) != 0 || len(e.Cluster.ExecutionList) != 0 {
			return fmt.Errorf("%w: waiting=%d preloaded=%d executing=%d",
				ErrDeadlock, len(e.Cluster.WaitingQueue), len(e.DB.PreloadedQueue), len(e.Cluster.ExecutionList))
		}
		return nil
	}

	e.Cluster.Makespan += delta
	e.Logger.LogCompEngineStep(delta)

	var stillExecuting []*job.Job
	for _, j := range e.Cluster.ExecutionList {
		j.RemainingTime -= delta
		if j.RemainingTime <= 1e-9 {
			e.cleanupJob(j)
		} else {
			stillExecuting = append(stillExecuting, j)
		}
	}
	e.Cluster.ExecutionList = stillExecuting

	return nil
}

// Done reports whether the simulation has no more work: every queue the
// engine moves jobs through (preloaded, waiting, executing) is empty.
func (e *Engine) Done() bool {
	return len(e.DB.PreloadedQueue) == 0 && len(e.Cluster.WaitingQueue) == 0 && len(e.Cluster.ExecutionList) == 0
}

// Run drives Step until Done, per spec.md §4.7 "Termination". It returns
// the first error Step surfaces (ErrNoForwardProgress, ErrDeadlock, or a
// wrapped invariant-check failure when checkInvariants is true).
func (e *Engine) Run(checkInvariants bool) error {
	for !e.Done() {
		if err := e.Step(); err != nil {
			return err
		}
		if checkInvariants {
			if err := e.Cluster.CheckInvariants(); err != nil {
				return fmt.Errorf("engine: invariant violated at makespan %g: %w", e.Cluster.Makespan, err)
			}
		}
	}
	return nil
}
