package schedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/calendar"
)

func newDiamondSchedule(t *testing.T) *Schedule {
	t.Helper()
	md := ProjectMetadata{
		Name:      "Diamond",
		StartDate: calendar.NewDate(2025, time.January, 6),
		EndDate:   calendar.NewDate(2025, time.January, 17),
	}
	s := NewWithMetadata(md)
	require.NoError(t, s.UpsertTaskRecord(taskWith(1, "T1", 2, nil)))
	require.NoError(t, s.UpsertTaskRecord(taskWith(2, "T2", 3, []int32{1})))
	require.NoError(t, s.UpsertTaskRecord(taskWith(3, "T3", 1, []int32{1})))
	require.NoError(t, s.UpsertTaskRecord(taskWith(4, "T4", 2, []int32{2, 3})))
	return s
}

func TestDiamondRefresh(t *testing.T) {
	s := newDiamondSchedule(t)
	summary, err := s.Refresh()
	require.NoError(t, err)

	t1, _ := s.FindTask(1)
	t2, _ := s.FindTask(2)
	t4, _ := s.FindTask(4)

	assert.Equal(t, calendar.NewDate(2025, time.January, 6), *t1.EarlyStart)
	assert.Equal(t, calendar.NewDate(2025, time.January, 8), *t1.EarlyFinish)
	assert.Equal(t, calendar.NewDate(2025, time.January, 15), *t4.EarlyStart)
	assert.Equal(t, calendar.NewDate(2025, time.January, 17), *t4.EarlyFinish)

	assert.True(t, *t2.IsCritical)
	assert.Equal(t, []int32{1, 2, 4}, summary.CriticalPath)
	assert.Equal(t, 3, summary.CriticalCount)
}

func TestHorizonBreachRejectsRefresh(t *testing.T) {
	md := ProjectMetadata{
		StartDate: calendar.NewDate(2025, time.January, 1),
		EndDate:   calendar.NewDate(2025, time.January, 15),
	}
	s := NewWithMetadata(md)
	require.NoError(t, s.UpsertTaskRecord(taskWith(1, "T1", 40, nil)))

	_, err := s.Refresh()
	require.Error(t, err)
	var metaErr *MetadataError
	require.True(t, errors.As(err, &metaErr))
	assert.Equal(t, EndPrecedesScheduleFinish, metaErr.Kind)
}

func TestVarianceFromActuals(t *testing.T) {
	s := newDiamondSchedule(t)
	baseline := calendar.NewDate(2025, time.January, 8)
	actual := calendar.NewDate(2025, time.January, 10)
	tsk, _ := s.FindTask(1)
	tsk.BaselineFinish = &baseline
	tsk.ActualFinish = &actual
	require.NoError(t, s.UpsertTaskRecord(tsk))

	_, err := s.Refresh()
	require.NoError(t, err)

	updated, _ := s.FindTask(1)
	require.NotNil(t, updated.ScheduleVarianceDays)
	assert.EqualValues(t, 2, *updated.ScheduleVarianceDays)
}

func TestDeleteTaskStripsPredecessorsAndSuccessors(t *testing.T) {
	s := newDiamondSchedule(t)
	_, err := s.Refresh()
	require.NoError(t, err)

	removed, err := s.DeleteTask(1)
	require.NoError(t, err)
	assert.True(t, removed)

	t2, _ := s.FindTask(2)
	assert.NotContains(t, t2.Predecessors, int32(1))

	again, err := s.DeleteTask(1)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestApplyRationaleTemplate(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertTask(1, "T1", 1, nil))
	require.NoError(t, s.ApplyRationaleTemplate(1, "fifty_fifty"))

	tsk, _ := s.FindTask(1)
	assert.EqualValues(t, "pre_defined_rationale", tsk.ProgressMeasurement)
	require.Len(t, tsk.PreDefinedRationale, 2)
	var total float64
	for _, item := range tsk.PreDefinedRationale {
		total += item.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestSetMetadataRegeneratesDefaultCalendar(t *testing.T) {
	s := New()
	assert.False(t, s.CalendarIsCustom())
	newMd := ProjectMetadata{
		StartDate: calendar.NewDate(2030, time.January, 1),
		EndDate:   calendar.NewDate(2030, time.December, 31),
	}
	require.NoError(t, s.SetMetadata(newMd))
	assert.False(t, s.Calendar().IsAvailable(calendar.NewDate(2030, time.January, 1))) // New Year, only in the regenerated 2030 calendar
	assert.True(t, s.Calendar().IsAvailable(calendar.NewDate(2030, time.January, 2)))
}

func TestRefreshLeavesLeafTaskSuccessorsEmptyNotNil(t *testing.T) {
	s := newDiamondSchedule(t)
	_, err := s.Refresh()
	require.NoError(t, err)

	t4, _ := s.FindTask(4)
	require.NotNil(t, t4.Successors)
	assert.Empty(t, t4.Successors)

	data, err := json.Marshal(t4)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"successors":[]`)
}

func TestRefreshWrapsCycleAsComputationError(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertTaskRecord(taskWith(1, "T1", 1, []int32{2})))
	require.NoError(t, s.UpsertTaskRecord(taskWith(2, "T2", 1, []int32{1})))

	_, err := s.Refresh()
	require.Error(t, err)
	var metaErr *MetadataError
	require.True(t, errors.As(err, &metaErr))
	assert.Equal(t, Computation, metaErr.Kind)
}

func TestSetMetadataRejectsStartAfterEnd(t *testing.T) {
	s := New()
	err := s.SetMetadata(ProjectMetadata{
		StartDate: calendar.NewDate(2025, time.December, 31),
		EndDate:   calendar.NewDate(2025, time.January, 1),
	})
	var metaErr *MetadataError
	require.True(t, errors.As(err, &metaErr))
	assert.Equal(t, StartAfterEnd, metaErr.Kind)
}
