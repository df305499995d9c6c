package persistence

import (
	"encoding/json"
	"os"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
)

type jsonWire struct {
	Metadata         schedule.ProjectMetadata `json:"metadata"`
	Calendar         *calendar.Config         `json:"calendar,omitempty"`
	CalendarIsCustom *bool                    `json:"calendar_is_custom,omitempty"`
	Tasks            []*task.Task             `json:"tasks"`
}

func (snap Snapshot) toJSONWire() jsonWire {
	wire := jsonWire{Metadata: snap.Metadata, Tasks: snap.Tasks}
	if snap.HasCalendar {
		wire.Calendar = snap.Calendar
		custom := snap.CalendarIsCustom
		wire.CalendarIsCustom = &custom
	}
	if wire.Tasks == nil {
		wire.Tasks = []*task.Task{}
	}
	return wire
}

func fromJSONWire(wire jsonWire) Snapshot {
	snap := Snapshot{Metadata: wire.Metadata, Tasks: wire.Tasks}
	if wire.Calendar != nil {
		snap.Calendar = wire.Calendar
		snap.HasCalendar = true
		if wire.CalendarIsCustom != nil {
			snap.CalendarIsCustom = *wire.CalendarIsCustom
		}
	}
	return snap
}

// SaveScheduleToJSON writes s's snapshot to path as bit-exact JSON
// (component C8 / SPEC_FULL §6.1).
func SaveScheduleToJSON(s *schedule.Schedule, path string) error {
	data, err := MarshalScheduleJSON(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return wrap(IO, "failed to write JSON snapshot", err)
	}
	return nil
}

// MarshalScheduleJSON renders s's snapshot as indented JSON.
func MarshalScheduleJSON(s *schedule.Schedule) ([]byte, error) {
	data, err := json.MarshalIndent(FromSchedule(s).toJSONWire(), "", "  ")
	if err != nil {
		return nil, wrap(Serialization, "failed to marshal schedule", err)
	}
	return data, nil
}

// LoadScheduleFromJSON reads and validates a snapshot from path, building
// a fresh Schedule.
func LoadScheduleFromJSON(path string) (*schedule.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(IO, "failed to read JSON snapshot", err)
	}
	return UnmarshalScheduleJSON(data)
}

// UnmarshalScheduleJSON parses raw JSON bytes into a Schedule.
func UnmarshalScheduleJSON(data []byte) (*schedule.Schedule, error) {
	var wire jsonWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, wrap(Serialization, "failed to unmarshal schedule", err)
	}
	return IntoSchedule(fromJSONWire(wire))
}
