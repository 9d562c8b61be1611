// Package host implements the per-node resource model: socket procsets,
// occupancy state, and the alloc/release primitive the compute engine uses
// to hand out and reclaim cores. Grounded on realsim/cluster/host.py.
package host

import (
	"fmt"
	"sort"

	"github.com/stratos-karas/elise/internal/procset"
)

// State is the host's coarse availability.
type State int

const (
	Idle State = iota
	Allocated
	Down
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Allocated:
		return "ALLOCATED"
	case Down:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// InsufficientError is returned by Alloc when a socket lacks enough free
// cores to satisfy the requested shape.
type InsufficientError struct {
	Socket    int
	Requested int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("host: socket %d needs %d cores, only %d free", e.Socket, e.Requested, e.Available)
}

// Host models one cluster node: a fixed per-socket core layout, the
// currently free cores per socket, and the set of jobs resident on it.
type Host struct {
	Name       string
	SocketConf []int // core count per socket, fixed at construction
	Free       []procset.ProcSet
	State      State

	// Occupants maps a job signature to the ProcSets it holds, one entry
	// per socket index (mirrors the per-socket layout of SocketConf).
	Occupants map[string][]procset.ProcSet
}

// New lays out a host's sockets starting at firstCoreID, following the
// same contiguous numbering scheme as realsim/cluster/host.py (sockets are
// concatenated ranges of the cluster-wide core ID space).
func New(name string, socketConf []int, firstCoreID int) *Host {
	free := make([]procset.ProcSet, len(socketConf))
	cursor := firstCoreID
	for i, n := range socketConf {
		ps, _ := procset.Range(cursor, cursor+n-1)
		free[i] = ps
		cursor += n
	}
	return &Host{
		Name:       name,
		SocketConf: append([]int(nil), socketConf...),
		Free:       free,
		State:      Idle,
		Occupants:  make(map[string][]procset.ProcSet),
	}
}

// IdleCores returns the number of free cores across all sockets.
func (h *Host) IdleCores() int {
	n := 0
	for _, ps := range h.Free {
		n += ps.Size()
	}
	return n
}

// UsedCores returns the number of allocated cores across all sockets.
func (h *Host) UsedCores() int {
	total := 0
	for _, n := range h.SocketConf {
		total += n
	}
	return total - h.IdleCores()
}

// Fits reports whether socketConf can currently be satisfied on this host
// without mutating it — socketConf[i] free cores available on socket i for
// every socket named.
func (h *Host) Fits(socketConf []int) bool {
	for i, need := range socketConf {
		if i >= len(h.Free) || h.Free[i].Size() < need {
			return false
		}
	}
	return true
}

// Preview returns, per socket, the socketConf[i] smallest free cores on
// that socket — the allocation Alloc would commit, without mutating host
// state. Used by the scheduler to build a candidate placement before the
// compute engine deploys it.
func (h *Host) Preview(socketConf []int) ([]procset.ProcSet, bool) {
	out := make([]procset.ProcSet, len(socketConf))
	for i, need := range socketConf {
		if i >= len(h.Free) {
			return nil, false
		}
		taken, ok := h.Free[i].TakeSmallest(need)
		if !ok {
			return nil, false
		}
		out[i] = taken
	}
	return out, true
}

// Alloc takes the k=socketConf[i] smallest free cores from socket i for
// every socket and commits them to jobSig's occupancy, transitioning IDLE
// -> ALLOCATED on the first occupant. Fails with InsufficientError (and
// commits nothing) if any socket cannot satisfy its share.
func (h *Host) Alloc(socketConf []int, jobSig string) ([]procset.ProcSet, error) {
	psets, ok := h.Preview(socketConf)
	if !ok {
		for i, need := range socketConf {
			if i >= len(h.Free) || h.Free[i].Size() < need {
				avail := 0
				if i < len(h.Free) {
					avail = h.Free[i].Size()
				}
				return nil, &InsufficientError{Socket: i, Requested: need, Available: avail}
			}
		}
		return nil, &InsufficientError{}
	}
	for i, taken := range psets {
		h.Free[i] = h.Free[i].Difference(taken)
	}
	h.Occupants[jobSig] = psets
	h.State = Allocated
	return psets, nil
}

// Release returns jobSig's held cores to the free sets and flips the host
// back to IDLE once no occupants remain. Releasing an unknown signature is
// a no-op.
func (h *Host) Release(jobSig string) {
	psets, ok := h.Occupants[jobSig]
	if !ok {
		return
	}
	for i, pset := range psets {
		h.Free[i] = h.Free[i].Union(pset)
	}
	delete(h.Occupants, jobSig)
	if len(h.Occupants) == 0 {
		h.State = Idle
	}
}

// OccupantSignatures returns the job signatures currently resident on this
// host, sorted by signature so the order is stable across calls (map
// iteration is not stable in Go) — callers that need the "other than me"
// neighbor set should filter the result.
func (h *Host) OccupantSignatures() []string {
	out := make([]string, 0, len(h.Occupants))
	for sig := range h.Occupants {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}
