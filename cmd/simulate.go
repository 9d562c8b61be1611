package cmd

import (
	"fmt"

	"github.com/stratos-karas/elise/internal/cluster"
	"github.com/stratos-karas/elise/internal/database"
	"github.com/stratos-karas/elise/internal/engine"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/workload"
)

// loadWorkload dispatches to the importer named by format, per spec.md §6's
// "other importers... produce the same Job shape" — the CLI only needs to
// pick the right parser, everything downstream is format-agnostic.
func loadWorkload(path, format string) ([]*job.Job, error) {
	switch format {
	case "swf":
		return workload.FromSWF(path)
	case "csv":
		return workload.FromCSV(path)
	default:
		return nil, fmt.Errorf("cmd: unknown workload format %q (want swf or csv)", format)
	}
}

// simConfig is the set of inputs one simulation run needs: cluster
// topology, a workload, an optional heatmap, and a scheduling policy name.
type simConfig struct {
	ClusterPath    string
	WorkloadPath   string
	WorkloadFormat string
	HeatmapPath    string
	Scheduler      string
}

// runOne builds and runs one (database, cluster, scheduler) simulation to
// completion and returns the engine holding its final state and logger.
func runOne(cfg simConfig) (*engine.Engine, error) {
	clusterCfg, err := loadClusterConfig(cfg.ClusterPath)
	if err != nil {
		return nil, err
	}
	c, err := cluster.New(clusterCfg)
	if err != nil {
		return nil, fmt.Errorf("cmd: building cluster: %w", err)
	}

	jobs, err := loadWorkload(cfg.WorkloadPath, cfg.WorkloadFormat)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("cmd: workload %s is empty", cfg.WorkloadPath)
	}

	var heatmap database.Heatmap
	if cfg.HeatmapPath != "" {
		heatmap, err = database.LoadHeatmapJSON(cfg.HeatmapPath)
		if err != nil {
			return nil, err
		}
	}
	db := database.New(jobs, heatmap)

	policy, err := newPolicy(cfg.Scheduler)
	if err != nil {
		return nil, err
	}

	e := engine.Setup(db, c, policy)
	if err := e.Run(true); err != nil {
		return nil, fmt.Errorf("cmd: simulation %s failed: %w", e.SimID, err)
	}
	return e, nil
}
