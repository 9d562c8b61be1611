package procset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringRoundTrip(t *testing.T) {
	ps, err := FromString("0-3 8-8 10-12")
	require.NoError(t, err)
	assert.Equal(t, 8, ps.Size())
	assert.Equal(t, "0-3 8-8 10-12", ps.String())
}

func TestInvalidInterval(t *testing.T) {
	_, err := Range(5, 2)
	var ierr *InvalidIntervalError
	require.ErrorAs(t, err, &ierr)

	_, err = FromString("9-3")
	require.Error(t, err)
}

func TestUnionMergesAdjacent(t *testing.T) {
	a, _ := Range(0, 3)
	b, _ := Range(4, 7)
	u := a.Union(b)
	assert.Equal(t, "0-7", u.String())
}

func TestDifference(t *testing.T) {
	a, _ := Range(0, 9)
	b, _ := Range(3, 5)
	d := a.Difference(b)
	assert.Equal(t, "0-2 6-9", d.String())
	assert.Equal(t, 7, d.Size())
}

func TestIntersection(t *testing.T) {
	a, _ := Range(0, 9)
	b, _ := Range(5, 20)
	i := a.Intersection(b)
	assert.Equal(t, "5-9", i.String())
}

func TestContains(t *testing.T) {
	ps, _ := FromString("0-3 10-12")
	assert.True(t, ps.Contains(2))
	assert.True(t, ps.Contains(11))
	assert.False(t, ps.Contains(5))
	assert.False(t, ps.Contains(13))
}

func TestTakeSmallest(t *testing.T) {
	ps, _ := FromString("5-9 20-29")
	taken, ok := ps.TakeSmallest(7)
	require.True(t, ok)
	assert.Equal(t, "5-9 20-21", taken.String())

	_, ok = ps.TakeSmallest(100)
	assert.False(t, ok)
}

func TestTakeSmallestZero(t *testing.T) {
	ps, _ := Range(0, 3)
	taken, ok := ps.TakeSmallest(0)
	require.True(t, ok)
	assert.True(t, taken.Empty())
}

func TestEmptySet(t *testing.T) {
	var ps ProcSet
	assert.True(t, ps.Empty())
	assert.Equal(t, 0, ps.Size())
	assert.Equal(t, "", ps.String())
}
