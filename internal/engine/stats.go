package engine

import "gonum.org/v1/gonum/stat"

// meanStdDev delegates to gonum's stat.MeanStdDev for a job's heatmap-row
// characterization (spec.md §4.7 "Characterize"), rather than hand-rolling
// a Welford pass — this module already carries gonum as an indirect
// dependency via the teacher's stack, promoted to direct here.
func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
