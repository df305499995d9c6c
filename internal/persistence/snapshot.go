package persistence

import (
	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
	"github.com/cpmforge/scheduler/internal/validation"
)

// Snapshot is the shared shape behind both the JSON and CSV adapters: a
// schedule's metadata, its calendar (optional — old snapshots omit it),
// the calendar_is_custom flag, and the task table.
type Snapshot struct {
	Metadata         schedule.ProjectMetadata
	Calendar         *calendar.Config
	CalendarIsCustom bool
	HasCalendar      bool
	Tasks            []*task.Task
}

// FromSchedule captures s's current state as a Snapshot.
func FromSchedule(s *schedule.Schedule) Snapshot {
	cfg := s.Calendar().ToConfig()
	return Snapshot{
		Metadata:         s.Metadata(),
		Calendar:         &cfg,
		CalendarIsCustom: s.CalendarIsCustom(),
		HasCalendar:      true,
		Tasks:            s.Tasks(),
	}
}

// IntoSchedule reconstructs a Schedule from snap. When Calendar is absent
// (old snapshots) the calendar is re-synthesized from the metadata's year
// range and calendar_is_custom defaults to false. The full task
// collection is validated before any task becomes observable.
func IntoSchedule(snap Snapshot) (*schedule.Schedule, error) {
	var (
		cal    *calendar.Calendar
		custom bool
		err    error
	)
	if snap.HasCalendar && snap.Calendar != nil {
		cal, err = calendar.FromConfig(*snap.Calendar)
		if err != nil {
			return nil, wrap(InvalidData, "invalid calendar in snapshot", err)
		}
		custom = snap.CalendarIsCustom
	} else {
		y0 := snap.Metadata.StartDate.Time().Year()
		y1 := snap.Metadata.EndDate.Time().Year()
		cal = calendar.NewWithYearRange(y0, y1)
		custom = false
	}

	if err := validation.ValidateTaskCollection(snap.Tasks); err != nil {
		return nil, wrap(InvalidData, "snapshot failed task collection validation", err)
	}

	s := schedule.NewRaw(snap.Metadata, cal, custom)
	for _, t := range snap.Tasks {
		if err := s.UpsertTaskRecord(t); err != nil {
			return nil, wrap(InvalidData, "failed to load task into schedule", err)
		}
	}
	return s, nil
}
