package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivedAllocations(t *testing.T) {
	c, err := New(Config{Nodes: 2, SocketConf: []int{4, 4}})
	require.NoError(t, err)
	assert.Equal(t, 8, c.TotalCores)
	assert.Equal(t, 8, c.IdleCores)
	assert.Equal(t, []int{4, 4}, c.FullSocketAllocation)
	assert.Equal(t, []int{2, 2}, c.HalfSocketAllocation)
	assert.Equal(t, []int{1, 1}, c.QuarterSocketAllocation)
	assert.Equal(t, []string{"host0", "host1"}, c.HostNames)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(Config{Nodes: 0, SocketConf: []int{4}})
	require.Error(t, err)

	_, err = New(Config{Nodes: 1, SocketConf: []int{0}})
	require.Error(t, err)
}

func TestHostsContiguousNumbering(t *testing.T) {
	c, err := New(Config{Nodes: 2, SocketConf: []int{2, 2}})
	require.NoError(t, err)
	h0 := c.Hosts["host0"]
	h1 := c.Hosts["host1"]
	assert.True(t, h0.Free[0].Contains(1))
	assert.True(t, h1.Free[0].Contains(5))
}

func TestCheckInvariantsOK(t *testing.T) {
	c, err := New(Config{Nodes: 1, SocketConf: []int{2, 2}})
	require.NoError(t, err)
	require.NoError(t, c.CheckInvariants())
}
