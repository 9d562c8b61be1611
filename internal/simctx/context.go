// Package simctx defines the narrow context value the compute engine hands
// to the scheduler at each deploy/backfill call, replacing the
// scheduler<->cluster<->logger<->database<->compengine reference cycle the
// original implementation carries (spec.md §9 "Back references"
// redesign). A scheduler reads cluster/heatmap state through Context and
// proposes placements through Deploy; it never mutates a Host directly —
// only the compute engine does that, on the other side of Deploy.
package simctx

import (
	"github.com/stratos-karas/elise/internal/cluster"
	"github.com/stratos-karas/elise/internal/database"
	"github.com/stratos-karas/elise/internal/job"
	"github.com/stratos-karas/elise/internal/procset"
)

// Placement is one host's contribution to a job's allocation: the ProcSets
// (one per socket) the job will hold there.
type Placement struct {
	Host     string
	ProcSets []procset.ProcSet
}

// DeployFunc commits a proposed placement for j, mutating cluster/host
// state on the engine's behalf. Implemented by the compute engine.
type DeployFunc func(j *job.Job, placements []Placement)

// Context is the read/propose surface a scheduler gets at each invocation.
type Context struct {
	Cluster *cluster.Cluster
	Heatmap database.Heatmap
	Deploy  DeployFunc
}
