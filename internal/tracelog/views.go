package tracelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stratos-karas/elise/internal/procset"
)

// GanttJob is the per-job Gantt entry from spec.md §4.8/§6.
type GanttJob struct {
	Signature string
	Submit    float64
	Start     float64
	Finish    float64
	Waiting   float64
	Hosts     []string
	Intervals []procset.Interval
}

// Gantt returns the per-job placement trace needed to draw (or otherwise
// consume) a Gantt chart: start/finish, the contiguous core intervals held,
// and the hosts involved. Pure data — no rendering, per spec.md §1.
func (l *Logger) Gantt() map[string]GanttJob {
	out := make(map[string]GanttJob, len(l.Jobs))
	for sig, rec := range l.Jobs {
		hosts := make([]string, 0, len(rec.Hosts))
		for h := range rec.Hosts {
			hosts = append(hosts, h)
		}
		sort.Strings(hosts)
		out[sig] = GanttJob{
			Signature: sig,
			Submit:    rec.Submit,
			Start:     rec.Start,
			Finish:    rec.Finish,
			Waiting:   rec.Waiting,
			Hosts:     hosts,
			Intervals: rec.AssignedProcs.Intervals(),
		}
	}
	return out
}

// WaitingQueueGraph returns, for each checkpoint t, the count of jobs with
// submit <= t < start — i.e. admitted but not yet running.
func (l *Logger) WaitingQueueGraph() (checkpoints []float64, counts []int) {
	idx := l.sortedCheckpoints()
	for _, i := range idx {
		t := l.Checkpoints[i]
		n := 0
		for _, rec := range l.Jobs {
			if rec.Submit <= t && rec.Start > t {
				n++
			}
		}
		checkpoints = append(checkpoints, t)
		counts = append(counts, n)
	}
	return
}

// Throughput returns the cumulative finished-job count at each checkpoint.
func (l *Logger) Throughput() (checkpoints []float64, finished []int) {
	idx := l.sortedCheckpoints()
	for _, i := range idx {
		checkpoints = append(checkpoints, l.Checkpoints[i])
		finished = append(finished, l.FinishedJobs[i])
	}
	return
}

// UnusedCoresGraph returns the idle-core count at each checkpoint.
func (l *Logger) UnusedCoresGraph() (checkpoints []float64, idle []int) {
	idx := l.sortedCheckpoints()
	for _, i := range idx {
		checkpoints = append(checkpoints, l.Checkpoints[i])
		idle = append(idle, l.UnusedCores[i])
	}
	return
}

// WorkloadExport renders the Standard Workload Format subset from
// spec.md §4.8: {job#, submit, wait, run, allocated_procs, req_procs,
// req_time, status=1, name}, one row per job. Grounded on
// realsim/logger/logger.py: get_workload.
func (l *Logger) WorkloadExport() string {
	var b strings.Builder
	b.WriteString("Job Number,Submit Time,Wait Time,Run Time,Allocated Processors,Requested Processors,Requested Time,Status,Name\n")

	sigs := make([]string, 0, len(l.Jobs))
	for sig := range l.Jobs {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	for _, sig := range sigs {
		rec := l.Jobs[sig]
		idColon := strings.SplitN(sig, ":", 2)
		id, name := idColon[0], sig
		if len(idColon) == 2 {
			name = idColon[1]
		}
		fmt.Fprintf(&b, "%s,%g,%g,%g,%d,%d,%g,1,%s\n",
			id, rec.Submit, rec.Waiting, rec.Finish-rec.Start,
			rec.AssignedProcs.Size(), rec.Processes, rec.WallTime, name)
	}
	return b.String()
}

// JobUtilization is the per-job comparison against a baseline logger
// described in spec.md §4.8.
type JobUtilization struct {
	Speedup         float64
	TurnaroundRatio float64
	WaitingDelta    float64
}

// UtilizationAgainst computes, for every job present in both loggers,
// speedup = baseline.run / self.run, turnaround_ratio =
// baseline.turnaround / self.turnaround, waiting_delta = baseline.waiting -
// self.waiting. Grounded on realsim/logger/logger.py: get_jobs_utilization.
func (l *Logger) UtilizationAgainst(baseline *Logger) map[string]JobUtilization {
	out := make(map[string]JobUtilization)
	for sig, rec := range l.Jobs {
		baseRec, ok := baseline.Jobs[sig]
		if !ok {
			continue
		}
		selfRun := rec.Finish - rec.Start
		baseRun := baseRec.Finish - baseRec.Start
		selfTurnaround := rec.Finish - rec.Submit
		baseTurnaround := baseRec.Finish - baseRec.Submit

		u := JobUtilization{WaitingDelta: baseRec.Waiting - rec.Waiting}
		if selfRun != 0 {
			u.Speedup = baseRun / selfRun
		}
		if selfTurnaround != 0 {
			u.TurnaroundRatio = baseTurnaround / selfTurnaround
		}
		out[sig] = u
	}
	return out
}
