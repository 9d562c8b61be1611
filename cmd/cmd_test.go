package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPolicyKnownNames(t *testing.T) {
	for _, name := range []string{"fifo", "easy", "conservative", "ranks-random", "ranks-filler", "ranks-bester", "ranks-jungle", "rules"} {
		p, err := newPolicy(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, p.Name())
	}
}

func TestNewPolicyUnknownNameErrors(t *testing.T) {
	_, err := newPolicy("bogus")
	require.Error(t, err)
}

func writeTestFixtures(t *testing.T) (clusterPath, workloadPath string) {
	t.Helper()
	dir := t.TempDir()

	clusterPath = filepath.Join(dir, "cluster.yaml")
	require.NoError(t, os.WriteFile(clusterPath, []byte("nodes: 2\nsocket_conf: [2, 2]\n"), 0o644))

	workloadPath = filepath.Join(dir, "trace.swf")
	content := "1 0 0 10 -1 -1 -1 4 10 -1 1 1 1 1 -1 -1 -1 -1\n"
	require.NoError(t, os.WriteFile(workloadPath, []byte(content), 0o644))
	return clusterPath, workloadPath
}

func TestRunOneProducesFiniteMakespan(t *testing.T) {
	clusterPath, workloadPath := writeTestFixtures(t)

	e, err := runOne(simConfig{
		ClusterPath:    clusterPath,
		WorkloadPath:   workloadPath,
		WorkloadFormat: "swf",
		Scheduler:      "fifo",
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, e.Cluster.Makespan)
}

func TestRunOneRejectsUnknownScheduler(t *testing.T) {
	clusterPath, workloadPath := writeTestFixtures(t)
	_, err := runOne(simConfig{
		ClusterPath:    clusterPath,
		WorkloadPath:   workloadPath,
		WorkloadFormat: "swf",
		Scheduler:      "bogus",
	})
	require.Error(t, err)
}

func TestRunOneRejectsEmptyWorkload(t *testing.T) {
	clusterPath, _ := writeTestFixtures(t)
	emptyPath := filepath.Join(t.TempDir(), "empty.swf")
	require.NoError(t, os.WriteFile(emptyPath, []byte("; nothing here\n"), 0o644))

	_, err := runOne(simConfig{
		ClusterPath:    clusterPath,
		WorkloadPath:   emptyPath,
		WorkloadFormat: "swf",
		Scheduler:      "fifo",
	})
	require.Error(t, err)
}

func TestLoadClusterConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: 2\nsocket_cnf: [2, 2]\n"), 0o644))

	_, err := loadClusterConfig(path)
	require.Error(t, err)
}
