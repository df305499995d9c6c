package schedule

import "github.com/cpmforge/scheduler/internal/task"

func taskWith(id int32, name string, duration int64, predecessors []int32) *task.Task {
	t := task.New(id, name, duration)
	if predecessors != nil {
		t.Predecessors = predecessors
	}
	return t
}
