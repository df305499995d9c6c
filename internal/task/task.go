// Package task defines the scheduling engine's record types: Task, its
// progress-measurement variants, rationale items, and resource
// allocations.
package task

import "github.com/cpmforge/scheduler/internal/calendar"

// Task is a single schedulable unit of work. Derived fields
// (Successors, EarlyStart/Finish, LateStart/Finish, TotalFloat,
// IsCritical, ScheduleVarianceDays) are regenerated entirely by
// Schedule.Refresh and should not be mutated directly by callers other
// than a persistence loader restoring a prior snapshot.
type Task struct {
	ID            int32   `json:"id"`
	Name          string  `json:"name"`
	DurationDays  int64   `json:"duration_days"`
	Predecessors  []int32 `json:"predecessors"`

	EarlyStart  *calendar.Date `json:"early_start"`
	EarlyFinish *calendar.Date `json:"early_finish"`
	LateStart   *calendar.Date `json:"late_start"`
	LateFinish  *calendar.Date `json:"late_finish"`

	BaselineStart  *calendar.Date `json:"baseline_start"`
	BaselineFinish *calendar.Date `json:"baseline_finish"`
	ActualStart    *calendar.Date `json:"actual_start"`
	ActualFinish   *calendar.Date `json:"actual_finish"`

	PercentComplete     *float64            `json:"percent_complete"`
	ProgressMeasurement ProgressMeasurement `json:"progress_measurement"`
	PreDefinedRationale []RationaleItem     `json:"pre_defined_rationale"`

	ScheduleVarianceDays *int64 `json:"schedule_variance_days"`
	TotalFloat           *int64 `json:"total_float"`
	IsCritical           *bool  `json:"is_critical"`

	Successors []int32 `json:"successors"`
	ParentID   *int32  `json:"parent_id"`

	WBSCode          string   `json:"wbs_code"`
	TaskNotes        string   `json:"task_notes"`
	TaskAttachments  []string `json:"task_attachments"`

	ResourceAllocations []ResourceAllocation `json:"resource_allocations"`
}

// New builds a minimal task with the given id, name, and duration: no
// predecessors, PercentComplete progress measurement, non-nil empty
// slices, and every optional field unset.
func New(id int32, name string, durationDays int64) *Task {
	return &Task{
		ID:                  id,
		Name:                name,
		DurationDays:        durationDays,
		Predecessors:        []int32{},
		Successors:          []int32{},
		ProgressMeasurement: PercentComplete,
		PreDefinedRationale: []RationaleItem{},
		TaskAttachments:     []string{},
		ResourceAllocations: []ResourceAllocation{},
	}
}

// Clone returns a deep-enough copy of t: slices and the pointed-to option
// values are copied so mutating the clone never aliases t.
func (t *Task) Clone() *Task {
	c := *t
	c.Predecessors = cloneInt32Slice(t.Predecessors)
	c.Successors = cloneInt32Slice(t.Successors)
	c.PreDefinedRationale = cloneRationaleSlice(t.PreDefinedRationale)
	c.TaskAttachments = cloneStringSlice(t.TaskAttachments)
	c.ResourceAllocations = cloneResourceSlice(t.ResourceAllocations)
	c.EarlyStart = cloneDate(t.EarlyStart)
	c.EarlyFinish = cloneDate(t.EarlyFinish)
	c.LateStart = cloneDate(t.LateStart)
	c.LateFinish = cloneDate(t.LateFinish)
	c.BaselineStart = cloneDate(t.BaselineStart)
	c.BaselineFinish = cloneDate(t.BaselineFinish)
	c.ActualStart = cloneDate(t.ActualStart)
	c.ActualFinish = cloneDate(t.ActualFinish)
	if t.PercentComplete != nil {
		v := *t.PercentComplete
		c.PercentComplete = &v
	}
	if t.ParentID != nil {
		v := *t.ParentID
		c.ParentID = &v
	}
	if t.ScheduleVarianceDays != nil {
		v := *t.ScheduleVarianceDays
		c.ScheduleVarianceDays = &v
	}
	if t.TotalFloat != nil {
		v := *t.TotalFloat
		c.TotalFloat = &v
	}
	if t.IsCritical != nil {
		v := *t.IsCritical
		c.IsCritical = &v
	}
	return &c
}

func cloneDate(d *calendar.Date) *calendar.Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// cloneInt32Slice, cloneStringSlice, cloneRationaleSlice, and
// cloneResourceSlice preserve the nil-vs-non-nil-empty distinction of the
// source slice: a nil append(nil, src...) would otherwise collapse a
// non-nil empty slice to nil, and the Task JSON tags have no omitempty,
// so that distinction is what separates a serialized "[]" from "null".
func cloneInt32Slice(src []int32) []int32 {
	if src == nil {
		return nil
	}
	out := make([]int32, len(src))
	copy(out, src)
	return out
}

func cloneStringSlice(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func cloneRationaleSlice(src []RationaleItem) []RationaleItem {
	if src == nil {
		return nil
	}
	out := make([]RationaleItem, len(src))
	copy(out, src)
	return out
}

func cloneResourceSlice(src []ResourceAllocation) []ResourceAllocation {
	if src == nil {
		return nil
	}
	out := make([]ResourceAllocation, len(src))
	copy(out, src)
	return out
}
