package workload

import (
	"math/rand"

	"github.com/stratos-karas/elise/internal/job"
)

// newJobFromLoad stamps out a Job the way
// AbstractCustomLogsGenerator.generate_job does: remaining_time from the
// load's median, wall_time at 1.4x the median (the original's fixed
// estimate-padding factor), submit_time passed as 0, which job.New floors to
// 0.1 (callers fill it in where the format carries one).
func newJobFromLoad(id int, l Load) *job.Job {
	return job.New(id, l.Name, l.Processes, l.MedTime, 0, 1.4*l.MedTime)
}

// FromFrequency builds a job set from a {load name: occurrence count} map
// and then shuffles it, the way KeysDictGenerator does — but seeded by rng
// rather than the wall clock, so the set is reproducible. Iteration order
// over names is the caller-supplied slice, not map order, so two calls with
// the same (names, freq, rng) always agree before the shuffle.
func FromFrequency(names []string, freq map[string]int, loads Manager, rng *rand.Rand) ([]*job.Job, error) {
	var jobs []*job.Job
	idx := 0
	for _, name := range names {
		l, err := loads.Resolve(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < freq[name]; i++ {
			jobs = append(jobs, newJobFromLoad(idx, l))
			idx++
		}
	}
	rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
	return jobs, nil
}

// FromRandom draws n loads uniformly at random (with replacement) from
// names, the way RandomFromListGenerator does, seeded by rng for
// reproducibility.
func FromRandom(n int, names []string, loads Manager, rng *rand.Rand) ([]*job.Job, error) {
	jobs := make([]*job.Job, 0, n)
	for i := 0; i < n; i++ {
		name := names[rng.Intn(len(names))]
		l, err := loads.Resolve(name)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, newJobFromLoad(i, l))
	}
	return jobs, nil
}

// ShuffledRecord is one line of the shuffled-list CSV format: an id/name
// pair plus the submit and wall times that must survive the shuffle,
// mirroring ShuffleKeysListGenerator's fields[0]/[1]/[8]/[13] record shape.
type ShuffledRecord struct {
	ID         int
	Name       string
	SubmitTime float64
	WallTime   float64
}

// FromShuffledList builds a job set from records, resolves each record's
// name against loads for its processor count/remaining-time profile, then
// shuffles the jobs (name, processes, remaining time, and the wall time of
// the record each was built from) across the records' positions while
// keeping each position's original submit time fixed — exactly
// ShuffleKeysListGenerator's "shuffle then reapply
// submission_times" two-pass trick, which exists so a fixed arrival
// schedule can be tried against a randomized mix of job shapes.
func FromShuffledList(records []ShuffledRecord, loads Manager, rng *rand.Rand) ([]*job.Job, error) {
	jobs := make([]*job.Job, len(records))
	for i, rec := range records {
		l, err := loads.Resolve(rec.Name)
		if err != nil {
			return nil, err
		}
		j := newJobFromLoad(rec.ID, l)
		j.WallTime = rec.WallTime
		jobs[i] = j
	}

	submitTimes := make([]float64, len(records))
	for i, rec := range records {
		submitTimes[i] = rec.SubmitTime
	}

	rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })

	for i, j := range jobs {
		j.SubmitTime = submitTimes[i]
		if j.SubmitTime <= 0 {
			j.SubmitTime = 0.1
		}
	}
	return jobs, nil
}
