// Package tracelog implements the simulation's event logger: a per-job
// trace, cluster-wide checkpoints, and the pure-data derived views (Gantt,
// throughput, queue-length, unused-cores, workload export, utilization)
// listed in spec.md §4.8/§8. Grounded on realsim/logger/logger.py, with the
// plotly-rendering half dropped per spec.md §1 ("the plot emission API is
// reduced to a pure data extraction surface; a renderer is a downstream
// component").
package tracelog

import (
	"fmt"
	"sort"

	"github.com/stratos-karas/elise/internal/procset"
)

// JobRecord is the per-job trace entry described in spec.md §4.8.
type JobRecord struct {
	Submit, Start, Finish, Waiting float64
	WallTime                       float64
	Processes                      int
	AssignedProcs                  procset.ProcSet
	Hosts                          map[string]struct{}

	SpeedupTrace   []float64
	RemainingTrace []float64
	CojobTrace     [][]string
}

// Logger accumulates per-job records and cluster-wide checkpoints for one
// simulation run. It has no back-reference to the cluster/scheduler it
// observes (spec.md §9 "Back references" redesign): callers pass the
// current makespan and whatever state is needed at each Log* call.
type Logger struct {
	SchedulerName string

	Jobs map[string]*JobRecord

	Checkpoints  []float64
	UnusedCores  []int
	FinishedJobs []int

	JobLogs       []string
	ClusterLogs   []string
	CompEngLogs   []string
	SchedulerLogs []string
}

// New creates a Logger seeded with one record per job in names, the way
// realsim/logger/logger.py:setup pre-populates job_events from the
// database's preloaded queue.
func New(schedulerName string, names []string, wallTimes map[string]float64, processes map[string]int, totalCores int) *Logger {
	l := &Logger{
		SchedulerName: schedulerName,
		Jobs:          make(map[string]*JobRecord, len(names)),
		Checkpoints:   []float64{0},
		UnusedCores:   []int{totalCores},
		FinishedJobs:  []int{0},
	}
	for _, sig := range names {
		l.Jobs[sig] = &JobRecord{
			WallTime:   wallTimes[sig],
			Processes:  processes[sig],
			Hosts:      map[string]struct{}{},
		}
	}
	return l
}

// checkpoint appends or coalesces a checkpoint at makespan, mirroring
// logger.py's log(): two events sharing a makespan update the same
// checkpoint slot rather than appending a new one.
func (l *Logger) checkpoint(makespan float64, idleCores int, finished bool) {
	n := len(l.Checkpoints)
	if n > 0 && l.Checkpoints[n-1] == makespan {
		l.UnusedCores[n-1] = idleCores
		if finished {
			l.FinishedJobs[n-1]++
		}
		return
	}
	l.Checkpoints = append(l.Checkpoints, makespan)
	l.UnusedCores = append(l.UnusedCores, idleCores)
	prev := 0
	if n > 0 {
		prev = l.FinishedJobs[n-1]
	}
	if finished {
		prev++
	}
	l.FinishedJobs = append(l.FinishedJobs, prev)
}

// LogJobStart records a job's first deployment: submit/start/waiting times,
// its assigned cores, and the host it landed on. Call once per host the
// job is deployed to (assignedProcs accumulates the union across hosts).
func (l *Logger) LogJobStart(sig string, submit, start float64, assignedProcs procset.ProcSet, hostname string, idleCores int) {
	l.JobLogs = append(l.JobLogs, sig+" started")
	rec := l.Jobs[sig]
	if rec == nil {
		return
	}
	rec.Submit = submit
	rec.Start = start
	rec.Waiting = start - submit
	rec.AssignedProcs = rec.AssignedProcs.Union(assignedProcs)
	rec.Hosts[hostname] = struct{}{}
	l.checkpoint(start, idleCores, false)
}

// LogJobDeployedToHost records a per-host deployment notification.
func (l *Logger) LogJobDeployedToHost(sig, hostname string) {
	l.JobLogs = append(l.JobLogs, sig+" -> "+hostname)
}

// LogJobCleanedFromHost records a per-host release notification.
func (l *Logger) LogJobCleanedFromHost(sig, hostname string) {
	l.JobLogs = append(l.JobLogs, hostname+" -> out "+sig)
}

// LogJobFinish records a job's completion and advances the throughput
// counter.
func (l *Logger) LogJobFinish(sig string, finish float64, idleCores int) {
	l.JobLogs = append(l.JobLogs, sig+" finished")
	if rec := l.Jobs[sig]; rec != nil {
		rec.Finish = finish
	}
	l.checkpoint(finish, idleCores, true)
}

// LogSpeedupSample appends a (remaining_time, sim_speedup) sample for
// jobs whose interference profile was just recomputed — used to build a
// per-job speedup-over-time trace.
func (l *Logger) LogSpeedupSample(sig string, remaining, speedup float64, neighbors []string) {
	rec := l.Jobs[sig]
	if rec == nil {
		return
	}
	rec.RemainingTrace = append(rec.RemainingTrace, remaining)
	rec.SpeedupTrace = append(rec.SpeedupTrace, speedup)
	rec.CojobTrace = append(rec.CojobTrace, append([]string(nil), neighbors...))
}

// LogCompEngineStep records the simulated time delta the engine advanced
// by on this step.
func (l *Logger) LogCompEngineStep(delta float64) {
	l.CompEngLogs = append(l.CompEngLogs, fmt.Sprintf("advanced by %g", delta))
}

// LogScheduler records a free-form scheduler decision note.
func (l *Logger) LogScheduler(msg string) {
	l.SchedulerLogs = append(l.SchedulerLogs, msg)
}

// sortedCheckpoints returns the checkpoint indices in increasing time
// order (checkpoints are appended in non-decreasing makespan order by
// construction, so this is already sorted, but views guard against future
// callers who may not append through Log*).
func (l *Logger) sortedCheckpoints() []int {
	idx := make([]int, len(l.Checkpoints))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return l.Checkpoints[idx[a]] < l.Checkpoints[idx[b]] })
	return idx
}
