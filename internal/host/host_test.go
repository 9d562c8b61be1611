package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	h := New("host0", []int{2, 2}, 1)
	assert.Equal(t, 4, h.IdleCores())
	assert.Equal(t, Idle, h.State)
}

func TestAllocReleaseCycle(t *testing.T) {
	h := New("host0", []int{2, 2}, 1)
	psets, err := h.Alloc([]int{2, 2}, "1:A")
	require.NoError(t, err)
	assert.Equal(t, 0, h.IdleCores())
	assert.Equal(t, Allocated, h.State)
	assert.Len(t, psets, 2)

	h.Release("1:A")
	assert.Equal(t, 4, h.IdleCores())
	assert.Equal(t, Idle, h.State)
}

func TestAllocInsufficient(t *testing.T) {
	h := New("host0", []int{2, 2}, 1)
	_, err := h.Alloc([]int{3, 2}, "1:A")
	var ierr *InsufficientError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 4, h.IdleCores(), "failed alloc must not mutate host state")
}

func TestTwoHalfSocketOccupants(t *testing.T) {
	h := New("host0", []int{4, 4}, 1)
	_, err := h.Alloc([]int{2, 2}, "1:A")
	require.NoError(t, err)
	_, err = h.Alloc([]int{2, 2}, "2:B")
	require.NoError(t, err)
	assert.Equal(t, 0, h.IdleCores())
	assert.Len(t, h.Occupants, 2)

	h.Release("1:A")
	assert.Equal(t, Allocated, h.State, "one occupant remains")
	h.Release("2:B")
	assert.Equal(t, Idle, h.State)
}

func TestFits(t *testing.T) {
	h := New("host0", []int{2, 2}, 1)
	assert.True(t, h.Fits([]int{2, 2}))
	assert.False(t, h.Fits([]int{3, 0}))
}
