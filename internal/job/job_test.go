package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsNonPositiveFields(t *testing.T) {
	j := New(1, "A", 0, -1, 0, -5)
	assert.Equal(t, 1, j.Processes)
	assert.InDelta(t, 0.1, j.RemainingTime, 1e-9)
	assert.InDelta(t, 0.1, j.SubmitTime, 1e-9)
	assert.InDelta(t, 0.1, j.WallTime, 1e-9)
	assert.Equal(t, Pending, j.State)
}

func TestSignature(t *testing.T) {
	j := New(7, "alpha", 4, 10, 0, 10)
	assert.Equal(t, "7:alpha", j.Signature())
}

func TestCloneIsIndependent(t *testing.T) {
	j := New(1, "A", 4, 10, 0, 10)
	j.AssignedHosts = []string{"host0"}
	cp := j.Clone()
	cp.AssignedHosts[0] = "host1"
	assert.Equal(t, "host0", j.AssignedHosts[0])
	assert.Equal(t, "host1", cp.AssignedHosts[0])
}

func TestCharacterString(t *testing.T) {
	assert.Equal(t, "SPREAD", Spread.String())
	assert.Equal(t, "UNKNOWN", Character(99).String())
}
