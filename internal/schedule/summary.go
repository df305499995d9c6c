package schedule

import "github.com/cpmforge/scheduler/internal/calendar"

// RefreshSummary reports the outcome of a Refresh call: how many tasks
// exist, how many are on the critical path, and a rollup of progress
// variance direction.
type RefreshSummary struct {
	TaskCount             int            `json:"task_count"`
	CriticalCount         int            `json:"critical_count"`
	CriticalPath          []int32        `json:"critical_path"`
	LatestFinish          *calendar.Date `json:"latest_finish"`
	PositiveVarianceCount int            `json:"positive_variance_count"`
	NegativeVarianceCount int            `json:"negative_variance_count"`
	OnTrackVarianceCount  int            `json:"on_track_variance_count"`
}
