// Package procset implements a set of integer processor (core) IDs as a
// sorted list of disjoint, half-open intervals [lo, hi). It is the building
// block for host socket free-lists and job allocations: every core-counting
// operation in the simulator (idle_cores, socket occupancy, job footprint)
// goes through a ProcSet rather than a bitmap, so it stays cheap even at
// cluster scale where core IDs can run into the tens of thousands.
package procset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Interval is a half-open range of core IDs [Lo, Hi).
type Interval struct {
	Lo, Hi int
}

// Len returns the number of cores in the interval.
func (iv Interval) Len() int { return iv.Hi - iv.Lo }

// InvalidIntervalError is returned when an interval's bounds are inverted.
type InvalidIntervalError struct {
	Lo, Hi int
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("procset: invalid interval [%d, %d)", e.Lo, e.Hi)
}

// ProcSet is an immutable-by-convention sorted set of disjoint intervals.
// The zero value is the empty set.
type ProcSet struct {
	intervals []Interval
}

// New builds a ProcSet from closed-range pairs (lo, hi inclusive), the same
// convention the scheduler uses when describing a socket's core range.
// Fails with InvalidIntervalError if lo > hi for any pair.
func New(pairs ...[2]int) (ProcSet, error) {
	var ps ProcSet
	for _, p := range pairs {
		if p[0] > p[1] {
			return ProcSet{}, &InvalidIntervalError{p[0], p[1]}
		}
		ps.intervals = append(ps.intervals, Interval{Lo: p[0], Hi: p[1] + 1})
	}
	return normalize(ps.intervals), nil
}

// Range is a convenience constructor for a single closed range [lo, hi].
func Range(lo, hi int) (ProcSet, error) {
	return New([2]int{lo, hi})
}

// FromString parses the "a-b c-d" wire format (space-separated closed
// ranges, single cores written as "a-a" or bare "a").
func FromString(s string) (ProcSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProcSet{}, nil
	}
	var pairs [][2]int
	for _, tok := range strings.Fields(s) {
		parts := strings.SplitN(tok, "-", 2)
		lo, err := strconv.Atoi(parts[0])
		if err != nil {
			return ProcSet{}, fmt.Errorf("procset: invalid token %q: %w", tok, err)
		}
		hi := lo
		if len(parts) == 2 {
			hi, err = strconv.Atoi(parts[1])
			if err != nil {
				return ProcSet{}, fmt.Errorf("procset: invalid token %q: %w", tok, err)
			}
		}
		if lo > hi {
			return ProcSet{}, &InvalidIntervalError{lo, hi}
		}
		pairs = append(pairs, [2]int{lo, hi})
	}
	return New(pairs...)
}

// String renders the set back into the "a-b c-d" wire format. Single-core
// intervals are rendered as "a-a" to keep the format homogeneous and
// round-trippable through FromString.
func (ps ProcSet) String() string {
	parts := make([]string, 0, len(ps.intervals))
	for _, iv := range ps.intervals {
		parts = append(parts, fmt.Sprintf("%d-%d", iv.Lo, iv.Hi-1))
	}
	return strings.Join(parts, " ")
}

// Size returns the total number of cores held by the set.
func (ps ProcSet) Size() int {
	n := 0
	for _, iv := range ps.intervals {
		n += iv.Len()
	}
	return n
}

// Empty reports whether the set holds no cores.
func (ps ProcSet) Empty() bool { return len(ps.intervals) == 0 }

// Contains reports whether core id is a member of the set.
func (ps ProcSet) Contains(id int) bool {
	i := sort.Search(len(ps.intervals), func(i int) bool { return ps.intervals[i].Hi > id })
	return i < len(ps.intervals) && ps.intervals[i].Lo <= id
}

// Intervals returns the disjoint, sorted intervals backing the set. The
// returned slice must be treated as read-only by callers.
func (ps ProcSet) Intervals() []Interval {
	return ps.intervals
}

// normalize sorts and merges overlapping/adjacent intervals, producing the
// canonical disjoint form every other operation assumes as input.
func normalize(intervals []Interval) ProcSet {
	filtered := intervals[:0:0]
	for _, iv := range intervals {
		if iv.Lo < iv.Hi {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return ProcSet{}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Lo < filtered[j].Lo })
	merged := make([]Interval, 0, len(filtered))
	cur := filtered[0]
	for _, iv := range filtered[1:] {
		if iv.Lo <= cur.Hi {
			if iv.Hi > cur.Hi {
				cur.Hi = iv.Hi
			}
			continue
		}
		merged = append(merged, cur)
		cur = iv
	}
	merged = append(merged, cur)
	return ProcSet{intervals: merged}
}

// Union returns the set of cores present in either ps or other.
func (ps ProcSet) Union(other ProcSet) ProcSet {
	combined := append(append([]Interval{}, ps.intervals...), other.intervals...)
	return normalize(combined)
}

// Difference returns the cores in ps that are not in other.
func (ps ProcSet) Difference(other ProcSet) ProcSet {
	var out []Interval
	j := 0
	for _, a := range ps.intervals {
		lo := a.Lo
		for j < len(other.intervals) && other.intervals[j].Hi <= lo {
			j++
		}
		k := j
		for k < len(other.intervals) && other.intervals[k].Lo < a.Hi {
			b := other.intervals[k]
			if b.Lo > lo {
				out = append(out, Interval{Lo: lo, Hi: b.Lo})
			}
			if b.Hi > lo {
				lo = b.Hi
			}
			if b.Hi >= a.Hi {
				break
			}
			k++
		}
		if lo < a.Hi {
			out = append(out, Interval{Lo: lo, Hi: a.Hi})
		}
	}
	return normalize(out)
}

// Intersection returns the cores present in both ps and other.
func (ps ProcSet) Intersection(other ProcSet) ProcSet {
	var out []Interval
	i, j := 0, 0
	for i < len(ps.intervals) && j < len(other.intervals) {
		a, b := ps.intervals[i], other.intervals[j]
		lo := max(a.Lo, b.Lo)
		hi := min(a.Hi, b.Hi)
		if lo < hi {
			out = append(out, Interval{Lo: lo, Hi: hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return normalize(out)
}

// TakeSmallest returns a new ProcSet holding the k smallest-numbered cores
// in ps. If ps holds fewer than k cores, ok is false and the returned set
// holds whatever was available — callers (Host.Alloc) treat that as a
// failed allocation attempt.
func (ps ProcSet) TakeSmallest(k int) (taken ProcSet, ok bool) {
	if k <= 0 {
		return ProcSet{}, true
	}
	var out []Interval
	remaining := k
	for _, iv := range ps.intervals {
		if remaining <= 0 {
			break
		}
		n := iv.Len()
		if n > remaining {
			n = remaining
		}
		out = append(out, Interval{Lo: iv.Lo, Hi: iv.Lo + n})
		remaining -= n
	}
	return normalize(out), remaining == 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
