package interference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratos-karas/elise/internal/database"
)

func f(v float64) *float64 { return &v }

func TestTargetSpeedupNoNeighbors(t *testing.T) {
	got := TargetSpeedup(database.Heatmap{}, "A", 1.0, 1.5, nil)
	assert.InDelta(t, 1.5, got, 1e-9)
}

func TestTargetSpeedupWorstNeighborWins(t *testing.T) {
	h := database.Heatmap{"A": {"B": f(0.8), "C": f(0.4)}}
	got := TargetSpeedup(h, "A", 1.0, 1.5, []string{"B", "C"})
	assert.InDelta(t, 0.4, got, 1e-9)
}

func TestTargetSpeedupUnknownFallsBackToAvg(t *testing.T) {
	h := database.Heatmap{"A": {}}
	got := TargetSpeedup(h, "A", 0.9, 1.5, []string{"B"})
	assert.InDelta(t, 0.9, got, 1e-9)
}
