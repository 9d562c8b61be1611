package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratos-karas/elise/internal/job"
)

func f(v float64) *float64 { return &v }

func TestLookup(t *testing.T) {
	h := Heatmap{"A": {"B": f(0.5), "C": nil}}
	v, ok := h.Lookup("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)

	_, ok = h.Lookup("A", "C")
	assert.False(t, ok, "null means unknown")

	_, ok = h.Lookup("A", "Z")
	assert.False(t, ok)
}

func TestPop(t *testing.T) {
	db := New([]*job.Job{job.New(1, "A", 1, 1, 0, 1), job.New(2, "B", 1, 1, 0, 1)}, nil)
	queue := append([]*job.Job{}, db.PreloadedQueue...)
	first := db.Pop(&queue)
	assert.Equal(t, "A", first.Name)
	assert.Len(t, queue, 1)
}

type stubEngine struct{ val float64 }

func (s stubEngine) Predict(tags []string) *float64 {
	v := s.val
	return &v
}

func TestSetupPopulatesHeatmapBothDirections(t *testing.T) {
	jobs := []*job.Job{job.New(1, "A", 1, 1, 0, 1), job.New(2, "B", 1, 1, 0, 1)}
	db := New(jobs, nil)
	db.Engine = stubEngine{val: 0.75}

	db.Setup()

	ab, ok := db.Heatmap.Lookup("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 0.75, ab, 1e-9)
	ba, ok := db.Heatmap.Lookup("B", "A")
	require.True(t, ok)
	assert.InDelta(t, 0.75, ba, 1e-9)
}

func TestSetupNoOpWhenHeatmapAlreadyPopulated(t *testing.T) {
	jobs := []*job.Job{job.New(1, "A", 1, 1, 0, 1)}
	existing := Heatmap{"A": {"A": f(1.0)}}
	db := New(jobs, existing)
	db.Engine = stubEngine{val: 0.1}
	db.Setup()
	v, _ := db.Heatmap.Lookup("A", "A")
	assert.InDelta(t, 1.0, v, 1e-9, "pre-populated heatmap must not be overwritten")
}
