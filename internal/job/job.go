// Package job defines the Job type simulated by the engine: its resource
// demand, timing, placement, and interference profile. Grounded on
// realsim/jobs/jobs.py from the original implementation and ported in the
// idiom of the teacher's sim.Request (sim/request.go): a plain struct with
// exported fields, mutated directly by the engine rather than through
// getters/setters.
package job

import "fmt"

// Character classifies a job's sensitivity to co-location, derived once at
// setup from its heatmap row (see characterize in package engine).
type Character int

const (
	Compact Character = iota
	Spread
	Robust
	Frail
)

func (c Character) String() string {
	switch c {
	case Compact:
		return "COMPACT"
	case Spread:
		return "SPREAD"
	case Robust:
		return "ROBUST"
	case Frail:
		return "FRAIL"
	default:
		return "UNKNOWN"
	}
}

// State is the job's lifecycle stage.
type State int

const (
	Pending State = iota
	Executing
	Finished
	Failed
	Aborted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Executing:
		return "EXECUTING"
	case Finished:
		return "FINISHED"
	case Failed:
		return "FAILED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Job is one simulated parallel job.
type Job struct {
	ID   int
	Name string

	Processes       int
	FullSocketNodes int
	HalfSocketNodes int
	SocketConf      []int // the allocation shape currently applied to this job

	RemainingTime float64
	SubmitTime    float64
	WallTime      float64
	StartTime     float64
	FinishTime    float64

	AssignedHosts []string // order of host names this job is deployed on

	AvgSpeedup float64
	MinSpeedup float64
	MaxSpeedup float64
	SimSpeedup float64

	Character Character
	State     State

	// Age counts the number of simulation steps this job has spent at the
	// head of the waiting queue. Tracked for future anti-starvation
	// policies (ported from realsim/jobs/jobs.py: self.age); no policy in
	// this repository currently consumes it.
	Age int
}

// New constructs a Job with the invariants from spec.md §3 clamped the way
// the original implementation clamps them: non-positive Processes/RemainingTime
// /WallTime/SubmitTime are floored to a minimal positive value rather than
// rejected, since historic workload traces occasionally carry zero/garbage
// fields and the simulator is expected to still make progress on them.
func New(id int, name string, processes int, remainingTime, submitTime, wallTime float64) *Job {
	if processes <= 0 {
		processes = 1
	}
	if remainingTime <= 0 {
		remainingTime = 0.1
	}
	if submitTime <= 0 {
		submitTime = 0.1
	}
	if wallTime <= 0 {
		wallTime = 0.1
	}
	return &Job{
		ID:            id,
		Name:          name,
		Processes:     processes,
		RemainingTime: remainingTime,
		SubmitTime:    submitTime,
		WallTime:      wallTime,
		StartTime:     -1,
		FinishTime:    -1,
		SimSpeedup:    1,
		AvgSpeedup:    1,
		MaxSpeedup:    1,
		MinSpeedup:    1,
		Character:     Compact,
		State:         Pending,
	}
}

// Signature is the unique occupant-map key for this job: "id:name". Grounded
// on Job.get_signature() in realsim/jobs/jobs.py.
func (j *Job) Signature() string {
	return fmt.Sprintf("%d:%s", j.ID, j.Name)
}

// Clone returns a deep copy sufficient for scheduler what-if allocation
// attempts (the original's deepcopy()), so a scheduler can try a placement
// without mutating cluster state until the compute engine commits it.
func (j *Job) Clone() *Job {
	cp := *j
	cp.AssignedHosts = append([]string(nil), j.AssignedHosts...)
	cp.SocketConf = append([]int(nil), j.SocketConf...)
	return &cp
}
