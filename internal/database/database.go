// Package database holds the preloaded job queue and the interference
// heatmap for a simulation. Grounded on realsim/database.py.
package database

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stratos-karas/elise/internal/job"
)

// Heatmap is speedup[A][B]: the speedup A experiences when co-running with
// B; A's remaining time is divided by it, so 1 means no effect and a value
// below 1 is a slowdown. nil entries mean "unknown" — call sites decide their
// own fallback (spec.md's Open Question: the convention differs between
// the interference-recomputation call site, which falls back to
// avg_speedup, and host-ranking hooks, which fall back to 1.0).
type Heatmap map[string]map[string]*float64

// Lookup returns heatmap[a][b] and whether it was present and non-null.
func (h Heatmap) Lookup(a, b string) (float64, bool) {
	row, ok := h[a]
	if !ok {
		return 0, false
	}
	v, ok := row[b]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// LoadHeatmapJSON parses the JSON object form {A: {B: number|null}} from
// spec.md §6.
func LoadHeatmapJSON(path string) (Heatmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("database: reading heatmap file: %w", err)
	}
	var h Heatmap
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("database: parsing heatmap JSON: %w", err)
	}
	return h, nil
}

// InferenceEngine predicts a co-location speedup from a concatenated
// feature-tag slice. Ported from the Protocol in realsim/database.py;
// implementations are supplied by the caller (a trained model, a lookup
// table, or — in tests — a deterministic stub). Out of scope for the core:
// this interface is the full contract the simulator requires of it.
type InferenceEngine interface {
	Predict(tags []string) *float64
}

// Database is the preloaded job queue plus the (possibly engine-populated)
// heatmap for one simulation run.
type Database struct {
	PreloadedQueue []*job.Job
	Heatmap        Heatmap
	Engine         InferenceEngine

	// Tags holds each job's feature tag, used only when Engine is set and
	// the heatmap must be auto-populated at Setup.
	Tags map[string][]string
}

// New constructs a Database from a preloaded job set (cloned, so the
// caller's slice may be reused/mutated afterward) and an optional heatmap.
func New(jobs []*job.Job, heatmap Heatmap) *Database {
	cloned := make([]*job.Job, len(jobs))
	for i, j := range jobs {
		cloned[i] = j.Clone()
	}
	if heatmap == nil {
		heatmap = Heatmap{}
	}
	return &Database{PreloadedQueue: cloned, Heatmap: heatmap, Tags: map[string][]string{}}
}

// Pop removes and returns the head of queue.
func (db *Database) Pop(queue *[]*job.Job) *job.Job {
	if len(*queue) == 0 {
		return nil
	}
	j := (*queue)[0]
	*queue = (*queue)[1:]
	return j
}

// Setup populates the heatmap from the attached inference engine when the
// heatmap is empty, mirroring realsim/database.py: init_heatmap. For every
// unordered pair of distinct preloaded jobs, the engine is invoked once per
// direction with the concatenation of both jobs' feature tags.
func (db *Database) Setup() {
	if db.Engine == nil || len(db.Heatmap) != 0 {
		return
	}
	db.Heatmap = Heatmap{}
	for _, j := range db.PreloadedQueue {
		db.Heatmap[j.Name] = map[string]*float64{}
	}
	for i, j := range db.PreloadedQueue {
		for _, co := range db.PreloadedQueue[i+1:] {
			tag := append(append([]string{}, db.Tags[j.Name]...), db.Tags[co.Name]...)
			db.Heatmap[j.Name][co.Name] = db.Engine.Predict(tag)

			coTag := append(append([]string{}, db.Tags[co.Name]...), db.Tags[j.Name]...)
			db.Heatmap[co.Name][j.Name] = db.Engine.Predict(coTag)
		}
	}
}
