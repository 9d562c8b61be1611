// Package cluster models the collection of hosts, the waiting/execution
// queues, and the simulated wallclock cursor. Grounded on
// realsim/cluster/cluster.py.
package cluster

import (
	"fmt"
	"math"

	"github.com/stratos-karas/elise/internal/host"
	"github.com/stratos-karas/elise/internal/job"
)

// Config is the external cluster description: {nodes, socket_conf} per
// spec.md §6. Nodes must be >= 1 and every socket_conf entry >= 1.
type Config struct {
	Nodes      int   `yaml:"nodes" json:"nodes"`
	SocketConf []int `yaml:"socket_conf" json:"socket_conf"`
}

// Validate checks the invariants spec.md §6 requires of a cluster config.
func (c Config) Validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("cluster: nodes must be >= 1, got %d", c.Nodes)
	}
	if len(c.SocketConf) == 0 {
		return fmt.Errorf("cluster: socket_conf must not be empty")
	}
	for i, n := range c.SocketConf {
		if n < 1 {
			return fmt.Errorf("cluster: socket_conf[%d] must be >= 1, got %d", i, n)
		}
	}
	return nil
}

// Cluster is the collection of hosts plus the two job queues the compute
// engine moves jobs through.
type Cluster struct {
	SocketConf []int
	HostNames  []string // stable iteration order: host0, host1, ...
	Hosts      map[string]*host.Host

	TotalCores int
	IdleCores  int

	WaitingQueue  []*job.Job
	ExecutionList []*job.Job
	QueueSize     int // set to math.MaxInt (unbounded); admission does not consult it
	Makespan      float64
	NextJobID     int

	FullSocketAllocation    []int
	HalfSocketAllocation    []int
	QuarterSocketAllocation []int
}

// New builds a cluster of cfg.Nodes hosts, each laid out per cfg.SocketConf,
// with contiguous core numbering across hosts (host0 gets cores
// [1..coresPerNode], host1 the next block, and so on — matching
// realsim/cluster/cluster.py's `i * cores_per_node + 1` offset).
func New(cfg Config) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	coresPerNode := 0
	for _, n := range cfg.SocketConf {
		coresPerNode += n
	}

	c := &Cluster{
		SocketConf: append([]int(nil), cfg.SocketConf...),
		Hosts:      make(map[string]*host.Host, cfg.Nodes),
		TotalCores: coresPerNode * cfg.Nodes,
		QueueSize:  math.MaxInt,
	}
	c.IdleCores = c.TotalCores

	for i := 0; i < cfg.Nodes; i++ {
		name := fmt.Sprintf("host%d", i)
		c.HostNames = append(c.HostNames, name)
		c.Hosts[name] = host.New(name, cfg.SocketConf, i*coresPerNode+1)
	}

	c.FullSocketAllocation = append([]int(nil), cfg.SocketConf...)
	c.HalfSocketAllocation = divideEach(cfg.SocketConf, 2)
	c.QuarterSocketAllocation = divideEach(cfg.SocketConf, 4)

	return c, nil
}

func divideEach(conf []int, by int) []int {
	out := make([]int, len(conf))
	for i, n := range conf {
		out[i] = n / by
	}
	return out
}

// GetIdleCores returns the cluster-wide count of free cores.
func (c *Cluster) GetIdleCores() int { return c.IdleCores }

// GetUsedCores returns the cluster-wide count of allocated cores.
func (c *Cluster) GetUsedCores() int { return c.TotalCores - c.IdleCores }

// HostsInOrder iterates hosts in their stable (host0, host1, ...) order,
// the order find_suitable_nodes and allocation scans in.
func (c *Cluster) HostsInOrder() []*host.Host {
	out := make([]*host.Host, len(c.HostNames))
	for i, name := range c.HostNames {
		out[i] = c.Hosts[name]
	}
	return out
}

// RemoveFromWaitingQueue removes j from the waiting queue by identity.
func (c *Cluster) RemoveFromWaitingQueue(j *job.Job) {
	for i, q := range c.WaitingQueue {
		if q == j {
			c.WaitingQueue = append(c.WaitingQueue[:i], c.WaitingQueue[i+1:]...)
			return
		}
	}
}

// CheckInvariants validates spec.md §8's per-step structural invariants
// (1), (2) and (5). It is intended to run after every compute-engine step
// in debug/test builds; a violation indicates a simulator bug rather than
// a bad workload, so the caller should treat it as fatal.
func (c *Cluster) CheckInvariants() error {
	freeTotal := 0
	for _, h := range c.Hosts {
		for _, ps := range h.Free {
			freeTotal += ps.Size()
		}
		if h.State.String() == "IDLE" && len(h.Occupants) != 0 {
			return fmt.Errorf("cluster: host %s is IDLE but has occupants", h.Name)
		}
		if len(h.Occupants) != 0 && h.State.String() != "ALLOCATED" {
			return fmt.Errorf("cluster: host %s has occupants but state %s", h.Name, h.State)
		}
	}
	if freeTotal != c.IdleCores {
		return fmt.Errorf("cluster: idle_cores drift: tracked=%d actual=%d", c.IdleCores, freeTotal)
	}
	for _, j := range c.ExecutionList {
		if j.State != job.Executing {
			return fmt.Errorf("cluster: job %s in execution list with state %s", j.Signature(), j.State)
		}
		if len(j.AssignedHosts) == 0 {
			return fmt.Errorf("cluster: executing job %s has no assigned hosts", j.Signature())
		}
	}
	return nil
}
