package tracelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratos-karas/elise/internal/procset"
)

func TestCheckpointCoalescing(t *testing.T) {
	l := New("FIFO", []string{"1:A", "2:B"}, map[string]float64{"1:A": 10, "2:B": 10}, map[string]int{"1:A": 4, "2:B": 4}, 8)

	ps, _ := procset.Range(0, 3)
	l.LogJobStart("1:A", 0, 0, ps, "host0", 4)
	l.LogJobStart("2:B", 0, 0, ps, "host0", 0)

	require.Len(t, l.Checkpoints, 1, "both starts at t=0 coalesce into the seeded t=0 checkpoint")
	assert.Equal(t, float64(0), l.Checkpoints[0])
	assert.Equal(t, 0, l.UnusedCores[0])
}

func TestWorkloadExport(t *testing.T) {
	l := New("FIFO", []string{"1:A"}, map[string]float64{"1:A": 10}, map[string]int{"1:A": 4}, 4)
	ps, _ := procset.Range(0, 3)
	l.LogJobStart("1:A", 0, 0, ps, "host0", 0)
	l.LogJobFinish("1:A", 10, 4)

	out := l.WorkloadExport()
	assert.Contains(t, out, "1,0,0,10,4,4,10,1,A")
}

func TestUtilizationAgainst(t *testing.T) {
	base := New("FIFO", []string{"1:A"}, map[string]float64{"1:A": 10}, map[string]int{"1:A": 4}, 4)
	ps, _ := procset.Range(0, 3)
	base.LogJobStart("1:A", 0, 0, ps, "host0", 0)
	base.LogJobFinish("1:A", 20, 4)

	coloc := New("EASY", []string{"1:A"}, map[string]float64{"1:A": 10}, map[string]int{"1:A": 4}, 4)
	coloc.LogJobStart("1:A", 0, 0, ps, "host0", 0)
	coloc.LogJobFinish("1:A", 10, 4)

	u := coloc.UtilizationAgainst(base)["1:A"]
	assert.InDelta(t, 2.0, u.Speedup, 1e-9)
}

func TestWaitingQueueGraph(t *testing.T) {
	l := New("FIFO", []string{"1:A"}, map[string]float64{"1:A": 10}, map[string]int{"1:A": 4}, 4)
	l.Jobs["1:A"].Submit = 0
	l.Jobs["1:A"].Start = 5
	l.Checkpoints = []float64{0, 3, 5}
	l.UnusedCores = []int{4, 4, 0}
	l.FinishedJobs = []int{0, 0, 0}

	cps, counts := l.WaitingQueueGraph()
	assert.Equal(t, []float64{0, 3, 5}, cps)
	assert.Equal(t, []int{1, 1, 0}, counts)
}
