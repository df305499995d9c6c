package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/task"
)

func diamond() []*task.Task {
	t1 := task.New(1, "T1", 2)
	t2 := task.New(2, "T2", 3)
	t2.Predecessors = []int32{1}
	t3 := task.New(3, "T3", 1)
	t3.Predecessors = []int32{1}
	t4 := task.New(4, "T4", 2)
	t4.Predecessors = []int32{2, 3}
	return []*task.Task{t1, t2, t3, t4}
}

func TestBuildIgnoresUnknownPredecessors(t *testing.T) {
	tk := task.New(1, "T1", 1)
	tk.Predecessors = []int32{99}
	d := Build([]*task.Task{tk})
	assert.Empty(t, d.Predecessors[1])
}

func TestTopoOrderRespectsDependencies(t *testing.T) {
	d := Build(diamond())
	order, err := d.TopoOrder()
	require.NoError(t, err)

	pos := make(map[int32]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[int32(1)], pos[int32(2)])
	assert.Less(t, pos[int32(1)], pos[int32(3)])
	assert.Less(t, pos[int32(2)], pos[int32(4)])
	assert.Less(t, pos[int32(3)], pos[int32(4)])
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	t1 := task.New(1, "T1", 1)
	t1.Predecessors = []int32{2}
	t2 := task.New(2, "T2", 1)
	t2.Predecessors = []int32{1}
	d := Build([]*task.Task{t1, t2})

	_, err := d.TopoOrder()
	assert.ErrorIs(t, err, ErrCycle)
}

func TestReverseTopoOrderIsExactReverse(t *testing.T) {
	d := Build(diamond())
	forward, err := d.TopoOrder()
	require.NoError(t, err)
	backward, err := d.ReverseTopoOrder()
	require.NoError(t, err)

	require.Len(t, backward, len(forward))
	for i, id := range forward {
		assert.Equal(t, id, backward[len(backward)-1-i])
	}
}
