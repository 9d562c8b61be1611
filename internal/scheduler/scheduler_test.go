package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratos-karas/elise/internal/cluster"
	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/scheduler"
	"github.com/stratos-karas/elise/internal/simctx"
)

// testDeploy is a minimal stand-in for the compute engine's commit logic:
// enough to exercise scheduler allocation decisions without pulling in the
// engine package (which itself depends on scheduler).
func testDeploy(c *cluster.Cluster) simctx.DeployFunc {
	return func(j *job.Job, placements []simctx.Placement) {
		for _, p := range placements {
			h := c.Hosts[p.Host]
			sig := j.Signature()
			h.Occupants[sig] = p.ProcSets
			for i, ps := range p.ProcSets {
				h.Free[i] = h.Free[i].Difference(ps)
			}
			h.State = host.Allocated
			taken := 0
			for _, ps := range p.ProcSets {
				taken += ps.Size()
			}
			c.IdleCores -= taken
			j.AssignedHosts = append(j.AssignedHosts, p.Host)
		}
		j.State = job.Executing
		j.StartTime = c.Makespan
		c.ExecutionList = append(c.ExecutionList, j)
		c.RemoveFromWaitingQueue(j)
	}
}

func newTestCluster(t *testing.T, nodes int, socketConf []int) *cluster.Cluster {
	t.Helper()
	c, err := cluster.New(cluster.Config{Nodes: nodes, SocketConf: socketConf})
	require.NoError(t, err)
	return c
}

func TestFIFODeploysUntilFirstMiss(t *testing.T) {
	c := newTestCluster(t, 2, []int{4, 4})
	j1 := job.New(1, "a", 8, 10, 1, 10)
	j2 := job.New(2, "b", 8, 10, 1, 10)
	j3 := job.New(3, "c", 8, 10, 1, 10)
	c.WaitingQueue = []*job.Job{j1, j2, j3}

	ctx := &simctx.Context{Cluster: c, Deploy: testDeploy(c)}
	f := scheduler.NewFIFO(scheduler.DefaultOptions())

	require.True(t, f.Deploy(ctx))
	require.Equal(t, []*job.Job{j1, j2}, c.ExecutionList)
	require.Equal(t, []*job.Job{j3}, c.WaitingQueue)
	require.Equal(t, job.Executing, j1.State)
	require.Equal(t, job.Pending, j3.State)
}

func TestEASYBackfillsShortJobAheadOfBlockedHead(t *testing.T) {
	c := newTestCluster(t, 2, []int{4, 4})
	running := job.New(1, "running", 8, 100, 1, 100)
	running.StartTime = 0
	running.AssignedHosts = []string{"host0"}
	_, err := c.Hosts["host0"].Alloc(c.FullSocketAllocation, running.Signature())
	require.NoError(t, err)
	c.ExecutionList = []*job.Job{running}
	c.IdleCores = 8 // only host1 idle

	blocked := job.New(2, "blocked", 16, 50, 1, 50) // needs both hosts, won't fit yet
	blocked.FullSocketNodes = 2
	short := job.New(3, "short", 8, 50, 1, 50) // fits on the single idle host
	c.WaitingQueue = []*job.Job{blocked, short}

	ctx := &simctx.Context{Cluster: c, Deploy: testDeploy(c)}
	e := scheduler.NewEASY(scheduler.DefaultOptions())

	require.False(t, e.Deploy(ctx))
	require.True(t, e.Backfill(ctx))
	require.Contains(t, c.ExecutionList, short)
	require.Equal(t, []*job.Job{blocked}, c.WaitingQueue)
}

func TestConservativeReservesPerPosition(t *testing.T) {
	c := newTestCluster(t, 3, []int{4, 4})
	running := job.New(1, "running", 8, 100, 1, 100)
	running.StartTime = 0
	running.AssignedHosts = []string{"host0"}
	_, err := c.Hosts["host0"].Alloc(c.FullSocketAllocation, running.Signature())
	require.NoError(t, err)
	c.ExecutionList = []*job.Job{running}
	c.IdleCores = 16 // host1, host2 idle

	blocked := job.New(2, "blocked", 24, 50, 1, 50) // needs all 3 hosts
	blocked.FullSocketNodes = 3
	fits := job.New(3, "fits", 16, 20, 1, 20) // fits on the two idle hosts right away
	fits.FullSocketNodes = 2
	c.WaitingQueue = []*job.Job{blocked, fits}

	ctx := &simctx.Context{Cluster: c, Deploy: testDeploy(c)}
	cons := scheduler.NewConservative(scheduler.DefaultOptions())

	require.False(t, cons.Deploy(ctx))
	require.True(t, cons.Backfill(ctx))
	require.Contains(t, c.ExecutionList, fits)
	require.Equal(t, []*job.Job{blocked}, c.WaitingQueue)
}

func TestConservativeNoBackfillWhenSingleJobQueued(t *testing.T) {
	c := newTestCluster(t, 1, []int{4, 4})
	j := job.New(1, "solo", 16, 10, 1, 10)
	c.WaitingQueue = []*job.Job{j}

	ctx := &simctx.Context{Cluster: c, Deploy: testDeploy(c)}
	cons := scheduler.NewConservative(scheduler.DefaultOptions())

	require.False(t, cons.Backfill(ctx))
}
