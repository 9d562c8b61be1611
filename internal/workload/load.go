// Package workload builds preloaded job sets for the simulator: a Standard
// Workload Format importer, a CSV importer, and the "custom logs" family
// (frequency-dict, shuffled-list, random-from-list) ported from
// realsim/generators/{swf,keysdict,shufflekeyslist,randomfromlist}.py. Every
// importer here produces the same Job shape, as spec.md §6 requires.
package workload

import "fmt"

// Load is a named reference workload profile: a canned job shape an
// importer stamps out, analogous to the original's api.loader.Load.
type Load struct {
	Name      string
	Processes int
	MedTime   float64  // median run time, seconds
	Tag       []string // feature tag handed to an InferenceEngine
}

// Manager resolves a load name to its profile. Grounded on
// realsim/generators/__init__.py's LoadManager callable contract.
type Manager map[string]Load

// Resolve looks up name, returning an error if the manager has no such load
// — the Go analogue of the original's uncatchable KeyError.
func (m Manager) Resolve(name string) (Load, error) {
	l, ok := m[name]
	if !ok {
		return Load{}, fmt.Errorf("workload: unknown load %q", name)
	}
	return l, nil
}
