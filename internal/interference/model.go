// Package interference implements the per-pair speedup lookup and the
// worst-neighbor aggregation rule the compute engine applies when
// recomputing a co-located job's remaining time. Grounded on the
// speedup-recalculation half of realsim/compengine.py:
// calculate_job_rem_time.
package interference

import "github.com/stratos-karas/elise/internal/database"

// TargetSpeedup computes the speedup a job should apply given the set of
// distinct neighbor job names currently sharing a host with it, per
// spec.md §4.7:
//
//  1. no neighbors -> maxSpeedup
//  2. otherwise -> min over neighbors of heatmap[self][neighbor], falling
//     back to avgSpeedup when a specific pairing is unknown.
//
// This is the engine call site's heatmap-null convention: unknown pairings
// fall back to the job's own average speedup, not to 1.0 (contrast with
// the host-ranking hooks in package coscheduler, which use a 1.0 fallback —
// spec.md's Open Question on heatmap null semantics, resolved per call
// site as instructed).
func TargetSpeedup(heatmap database.Heatmap, self string, avgSpeedup, maxSpeedup float64, neighbors []string) float64 {
	if len(neighbors) == 0 {
		return maxSpeedup
	}
	worst := maxSpeedup
	for _, n := range neighbors {
		speedup, ok := heatmap.Lookup(self, n)
		if !ok {
			speedup = avgSpeedup
		}
		if speedup < worst {
			worst = speedup
		}
	}
	return worst
}
