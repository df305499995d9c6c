package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/graph"
	"github.com/cpmforge/scheduler/internal/task"
)

func diamondTasks() []*task.Task {
	t1 := task.New(1, "T1", 2)
	t2 := task.New(2, "T2", 3)
	t2.Predecessors = []int32{1}
	t3 := task.New(3, "T3", 1)
	t3.Predecessors = []int32{1}
	t4 := task.New(4, "T4", 2)
	t4.Predecessors = []int32{2, 3}
	return []*task.Task{t1, t2, t3, t4}
}

func TestDiamondForwardPass(t *testing.T) {
	cal := calendar.NewWithYearRange(2025, 2025)
	d := graph.Build(diamondTasks())
	start := calendar.NewDate(2025, time.January, 6)

	spans, err := ForwardPass(d, cal, start)
	require.NoError(t, err)

	assertSpan(t, spans[1], 2025, time.January, 6, 2025, time.January, 8)
	assertSpan(t, spans[2], 2025, time.January, 9, 2025, time.January, 14)
	assertSpan(t, spans[3], 2025, time.January, 9, 2025, time.January, 10)
	assertSpan(t, spans[4], 2025, time.January, 15, 2025, time.January, 17)
}

func TestDiamondBackwardPass(t *testing.T) {
	cal := calendar.NewWithYearRange(2025, 2025)
	d := graph.Build(diamondTasks())
	start := calendar.NewDate(2025, time.January, 6)

	early, err := ForwardPass(d, cal, start)
	require.NoError(t, err)

	end := calendar.NewDate(2025, time.January, 17)
	late, err := BackwardPass(d, cal, end, early)
	require.NoError(t, err)

	assertSpan(t, late[4], 2025, time.January, 15, 2025, time.January, 17)
	assertSpan(t, late[2], 2025, time.January, 9, 2025, time.January, 14)
	assert.True(t, late[3].Finish.After(calendar.NewDate(2025, time.January, 10)) ||
		late[3].Finish == calendar.NewDate(2025, time.January, 10))
}

func TestZeroDurationTaskHasEqualStartFinish(t *testing.T) {
	cal := calendar.NewWithYearRange(2025, 2025)
	tk := task.New(1, "T1", 0)
	d := graph.Build([]*task.Task{tk})
	spans, err := ForwardPass(d, cal, calendar.NewDate(2025, time.January, 6))
	require.NoError(t, err)
	assert.Equal(t, spans[1].Start, spans[1].Finish)
}

func TestCycleRejectsForwardPass(t *testing.T) {
	t1 := task.New(1, "T1", 1)
	t1.Predecessors = []int32{2}
	t2 := task.New(2, "T2", 1)
	t2.Predecessors = []int32{1}
	d := graph.Build([]*task.Task{t1, t2})

	cal := calendar.NewWithYearRange(2025, 2025)
	_, err := ForwardPass(d, cal, calendar.NewDate(2025, time.January, 6))
	assert.ErrorIs(t, err, graph.ErrCycle)
}

func assertSpan(t *testing.T, got Span, y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) {
	t.Helper()
	assert.Equal(t, calendar.NewDate(y1, m1, d1), got.Start)
	assert.Equal(t, calendar.NewDate(y2, m2, d2), got.Finish)
}
