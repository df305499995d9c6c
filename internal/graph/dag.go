// Package graph builds a directed acyclic graph out of a task table's
// finish-to-start predecessor relationships and exposes a topological
// order over it. Implemented as an id-indexed adjacency list; no pointer
// cycles.
package graph

import (
	"errors"

	"github.com/cpmforge/scheduler/internal/task"
)

// ErrCycle is returned by TopoOrder when the predecessor relationships
// contain a cycle.
var ErrCycle = errors.New("graph: cycle detected in schedule DAG")

// DAG is a node-per-task-id, edge-per-tolerated-predecessor directed
// graph. Predecessor references to ids absent from the task table are
// silently ignored.
type DAG struct {
	Nodes []int32
	// Predecessors maps a task id to the ids of its direct predecessors
	// (edges p -> t, keyed by t).
	Predecessors map[int32][]int32
	// Successors maps a task id to the ids of its direct successors
	// (keyed by p).
	Successors map[int32][]int32
	Duration   map[int32]int64
}

// Build constructs a DAG from the task table: one node per task id, and an
// edge p -> t for every p in t.Predecessors that names a task present in
// ts.
func Build(ts []*task.Task) *DAG {
	d := &DAG{
		Nodes:        make([]int32, 0, len(ts)),
		Predecessors: make(map[int32][]int32, len(ts)),
		Successors:   make(map[int32][]int32, len(ts)),
		Duration:     make(map[int32]int64, len(ts)),
	}
	exists := make(map[int32]bool, len(ts))
	for _, t := range ts {
		exists[t.ID] = true
	}
	for _, t := range ts {
		d.Nodes = append(d.Nodes, t.ID)
		d.Duration[t.ID] = t.DurationDays
		for _, p := range t.Predecessors {
			if !exists[p] {
				continue
			}
			d.Predecessors[t.ID] = append(d.Predecessors[t.ID], p)
			d.Successors[p] = append(d.Successors[p], t.ID)
		}
	}
	return d
}

// TopoOrder returns the DAG's nodes in topological order (Kahn's
// algorithm): every predecessor appears before its successors. Returns
// ErrCycle if the predecessor relationships are not acyclic.
func (d *DAG) TopoOrder() ([]int32, error) {
	inDegree := make(map[int32]int, len(d.Nodes))
	for _, n := range d.Nodes {
		inDegree[n] = len(d.Predecessors[n])
	}

	queue := make([]int32, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]int32, 0, len(d.Nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, succ := range d.Successors[n] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(d.Nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

// ReverseTopoOrder returns TopoOrder reversed, for the backward pass.
func (d *DAG) ReverseTopoOrder() ([]int32, error) {
	order, err := d.TopoOrder()
	if err != nil {
		return nil, err
	}
	reversed := make([]int32, len(order))
	for i, n := range order {
		reversed[len(order)-1-i] = n
	}
	return reversed, nil
}
