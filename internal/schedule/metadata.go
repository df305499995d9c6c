package schedule

import (
	"fmt"
	"time"

	"github.com/cpmforge/scheduler/internal/calendar"
)

// ProjectMetadata describes the project a Schedule tracks: its name,
// description, and horizon. Invariant: StartDate <= EndDate.
type ProjectMetadata struct {
	Name        string        `json:"project_name"`
	Description string        `json:"project_description"`
	StartDate   calendar.Date `json:"project_start_date"`
	EndDate     calendar.Date `json:"project_end_date"`
}

// DefaultMetadata returns the default project: "New Project", "No
// description", spanning calendar year 2025.
func DefaultMetadata() ProjectMetadata {
	return ProjectMetadata{
		Name:        "New Project",
		Description: "No description",
		StartDate:   calendar.NewDate(2025, time.January, 1),
		EndDate:     calendar.NewDate(2025, time.December, 31),
	}
}

func (m ProjectMetadata) yearRange() (int, int) {
	return m.StartDate.Time().Year(), m.EndDate.Time().Year()
}

// MetadataErrorKind distinguishes the taxonomy of metadata validation
// failures.
type MetadataErrorKind int

const (
	// StartAfterEnd means the metadata's start_date is later than its end_date.
	StartAfterEnd MetadataErrorKind = iota
	// EndPrecedesScheduleFinish means the requested project_end would be
	// earlier than a finish the schedule has already computed.
	EndPrecedesScheduleFinish
	// Computation wraps a propagated compute failure (e.g. a cycle
	// surfaced while validating against an in-flight refresh).
	Computation
)

// MetadataError reports why a metadata mutation was rejected.
type MetadataError struct {
	Kind           MetadataErrorKind
	ProjectEnd     calendar.Date
	RequiredFinish calendar.Date
	Msg            string
}

func (e *MetadataError) Error() string {
	switch e.Kind {
	case StartAfterEnd:
		return "metadata start_date is after end_date"
	case EndPrecedesScheduleFinish:
		return fmt.Sprintf("project_end %s precedes required schedule finish %s", e.ProjectEnd, e.RequiredFinish)
	case Computation:
		return fmt.Sprintf("computation error: %s", e.Msg)
	default:
		return "unknown metadata error"
	}
}
