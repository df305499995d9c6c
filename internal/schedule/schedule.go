// Package schedule implements the Schedule engine (component C7): the
// task table, calendar, and metadata, plus the upsert/delete operations
// and the refresh pipeline that regenerates every derived field.
package schedule

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/cpmforge/scheduler/internal/calc"
	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/graph"
	"github.com/cpmforge/scheduler/internal/task"
	"github.com/cpmforge/scheduler/internal/task/rationale"
	"github.com/cpmforge/scheduler/internal/validation"
)

// Schedule owns a task table, a working calendar, and project metadata.
// It is single-threaded and synchronous; callers needing concurrent
// access must wrap a Schedule in their own shared-exclusion primitive
// (see internal/httpapi).
type Schedule struct {
	tasks            map[int32]*task.Task
	order            []int32
	metadata         ProjectMetadata
	calendar         *calendar.Calendar
	calendarIsCustom bool
	logger           *slog.Logger
}

// New builds a Schedule with default metadata and a default calendar
// synthesized for that metadata's year range.
func New() *Schedule {
	return NewWithMetadata(DefaultMetadata())
}

// NewWithMetadata builds a Schedule with the given metadata and a default
// calendar synthesized for its year range.
func NewWithMetadata(md ProjectMetadata) *Schedule {
	y0, y1 := md.yearRange()
	return &Schedule{
		tasks:    make(map[int32]*task.Task),
		metadata: md,
		calendar: calendar.NewWithYearRange(y0, y1),
	}
}

// NewWithYearRange builds a Schedule with default metadata and a default
// calendar explicitly synthesized for [y0, y1], which may differ from the
// metadata's own year range.
func NewWithYearRange(y0, y1 int) *Schedule {
	return &Schedule{
		tasks:    make(map[int32]*task.Task),
		metadata: DefaultMetadata(),
		calendar: calendar.NewWithYearRange(y0, y1),
	}
}

// NewWithMetadataAndCalendar builds a Schedule with explicit metadata and
// a caller-supplied calendar; calendar_is_custom is set immediately.
func NewWithMetadataAndCalendar(md ProjectMetadata, cal *calendar.Calendar) *Schedule {
	return &Schedule{
		tasks:            make(map[int32]*task.Task),
		metadata:         md,
		calendar:         cal,
		calendarIsCustom: true,
	}
}

// NewRaw builds a Schedule from already-known parts, used by persistence
// loaders reconstructing a prior snapshot where calendar_is_custom must be
// set precisely rather than inferred.
func NewRaw(md ProjectMetadata, cal *calendar.Calendar, calendarIsCustom bool) *Schedule {
	return &Schedule{
		tasks:            make(map[int32]*task.Task),
		metadata:         md,
		calendar:         cal,
		calendarIsCustom: calendarIsCustom,
	}
}

// SetLogger attaches a structured logger the engine uses to record
// refresh lifecycle events. A nil logger (the default) disables logging
// entirely; the core never requires one to function.
func (s *Schedule) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *Schedule) logf(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

// Metadata returns the current project metadata.
func (s *Schedule) Metadata() ProjectMetadata { return s.metadata }

// Calendar returns the current working calendar.
func (s *Schedule) Calendar() *calendar.Calendar { return s.calendar }

// CalendarIsCustom reports whether the calendar was explicitly set by a
// caller rather than synthesized from metadata.
func (s *Schedule) CalendarIsCustom() bool { return s.calendarIsCustom }

// SetMetadata validates and commits new project metadata. If the
// calendar is not custom, it is regenerated from the new metadata's year
// range.
func (s *Schedule) SetMetadata(md ProjectMetadata) error {
	if md.StartDate.After(md.EndDate) {
		return &MetadataError{Kind: StartAfterEnd}
	}
	if finish, ok := s.latestEarlyFinish(); ok && finish.After(md.EndDate) {
		return &MetadataError{Kind: EndPrecedesScheduleFinish, ProjectEnd: md.EndDate, RequiredFinish: finish}
	}
	s.metadata = md
	if !s.calendarIsCustom {
		y0, y1 := md.yearRange()
		s.calendar = calendar.NewWithYearRange(y0, y1)
	}
	return nil
}

// SetCalendar replaces the working calendar and marks it custom. If the
// schedule already has tasks, this triggers a full Refresh.
func (s *Schedule) SetCalendar(cal *calendar.Calendar) error {
	s.calendar = cal
	s.calendarIsCustom = true
	if len(s.order) > 0 {
		_, err := s.Refresh()
		return err
	}
	return nil
}

// ResetCalendarToDefault synthesizes the default calendar from the
// current metadata's year range and clears the custom flag. Refreshes if
// the schedule has tasks.
func (s *Schedule) ResetCalendarToDefault() error {
	y0, y1 := s.metadata.yearRange()
	s.calendar = calendar.NewWithYearRange(y0, y1)
	s.calendarIsCustom = false
	if len(s.order) > 0 {
		_, err := s.Refresh()
		return err
	}
	return nil
}

// UpsertTask creates or updates a task by id. If predecessors is nil, an
// existing task's predecessors are left unchanged; if the task is new and
// predecessors is nil, it gets none. Negative duration is rejected.
// Triggers a full Refresh on success.
func (s *Schedule) UpsertTask(id int32, name string, duration int64, predecessors []int32) error {
	if duration < 0 {
		return fmt.Errorf("schedule: task %d has negative duration %d", id, duration)
	}
	if existing, ok := s.tasks[id]; ok {
		existing.Name = name
		existing.DurationDays = duration
		if predecessors != nil {
			existing.Predecessors = append([]int32(nil), predecessors...)
		}
	} else {
		t := task.New(id, name, duration)
		if predecessors != nil {
			t.Predecessors = append([]int32(nil), predecessors...)
		}
		s.tasks[id] = t
		s.order = append(s.order, id)
	}
	_, err := s.Refresh()
	return err
}

// UpsertTaskRecord validates t and stores it verbatim, replacing every
// user-settable and derived field for t.ID. Derived fields carried on t
// overwrite the stored values — this is how a persistence loader restores
// a prior snapshot without forcing an immediate recompute.
func (s *Schedule) UpsertTaskRecord(t *task.Task) error {
	if err := validation.ValidateTask(t); err != nil {
		return err
	}
	stored := t.Clone()
	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = stored
	return nil
}

// DeleteTask removes a task, strips its id from every remaining task's
// predecessors and successors, and triggers a full Refresh. Returns true
// if a task was removed.
func (s *Schedule) DeleteTask(id int32) (bool, error) {
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for _, t := range s.tasks {
		t.Predecessors = removeInt32(t.Predecessors, id)
		t.Successors = removeInt32(t.Successors, id)
	}
	if _, err := s.Refresh(); err != nil {
		return true, err
	}
	return true, nil
}

// FindTask returns a defensive copy of the task with the given id.
func (s *Schedule) FindTask(id int32) (*task.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Tasks returns defensive copies of every task, in insertion order.
func (s *Schedule) Tasks() []*task.Task {
	out := make([]*task.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// ApplyRationaleTemplate sets task id's progress measurement to
// PreDefinedRationale and populates its rationale items from the named
// template, validating the result before committing it.
func (s *Schedule) ApplyRationaleTemplate(id int32, templateName string) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("schedule: task %d not found", id)
	}
	items, err := rationale.Apply(templateName)
	if err != nil {
		return err
	}
	candidate := t.Clone()
	candidate.ProgressMeasurement = task.PreDefinedRationale
	candidate.PreDefinedRationale = items
	if err := validation.ValidateTask(candidate); err != nil {
		return err
	}
	s.tasks[id] = candidate
	return nil
}

func removeInt32(ids []int32, target int32) []int32 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *Schedule) latestEarlyFinish() (calendar.Date, bool) {
	var (
		max calendar.Date
		any bool
	)
	for _, t := range s.tasks {
		if t.EarlyFinish == nil {
			continue
		}
		if !any || t.EarlyFinish.After(max) {
			max = *t.EarlyFinish
			any = true
		}
	}
	return max, any
}

// Refresh recomputes every derived field: early/late dates, total float,
// criticality, schedule variance, and successors, then builds a
// RefreshSummary. See SPEC_FULL.md §4.6 for the eight-step pipeline.
func (s *Schedule) Refresh() (*RefreshSummary, error) {
	if s.metadata.StartDate.After(s.metadata.EndDate) {
		return nil, &MetadataError{Kind: StartAfterEnd}
	}

	orderedTasks := make([]*task.Task, 0, len(s.order))
	for _, id := range s.order {
		orderedTasks = append(orderedTasks, s.tasks[id])
	}

	dag := graph.Build(orderedTasks)

	early, err := calc.ForwardPass(dag, s.calendar, s.metadata.StartDate)
	if err != nil {
		return nil, &MetadataError{Kind: Computation, Msg: err.Error()}
	}
	for id, span := range early {
		start, finish := span.Start, span.Finish
		s.tasks[id].EarlyStart = &start
		s.tasks[id].EarlyFinish = &finish
	}

	if finish, ok := s.latestEarlyFinish(); ok && finish.After(s.metadata.EndDate) {
		s.logf("refresh horizon breach", "required_finish", finish.String(), "project_end", s.metadata.EndDate.String())
		return nil, &MetadataError{Kind: EndPrecedesScheduleFinish, ProjectEnd: s.metadata.EndDate, RequiredFinish: finish}
	}

	late, err := calc.BackwardPass(dag, s.calendar, s.metadata.EndDate, early)
	if err != nil {
		return nil, &MetadataError{Kind: Computation, Msg: err.Error()}
	}
	for id, span := range late {
		start, finish := span.Start, span.Finish
		s.tasks[id].LateStart = &start
		s.tasks[id].LateFinish = &finish
	}

	for _, id := range s.order {
		t := s.tasks[id]
		if t.LateStart == nil || t.EarlyStart == nil {
			continue
		}
		totalFloat := int64(*t.LateStart) - int64(*t.EarlyStart)
		isCritical := totalFloat == 0
		t.TotalFloat = &totalFloat
		t.IsCritical = &isCritical
	}

	for _, id := range s.order {
		t := s.tasks[id]
		t.ScheduleVarianceDays = s.varianceDays(t)
	}

	s.regenerateSuccessors()

	summary := s.buildSummary()
	s.logf("refresh complete", "task_count", summary.TaskCount, "critical_count", summary.CriticalCount)
	return summary, nil
}

func (s *Schedule) varianceDays(t *task.Task) *int64 {
	if t.BaselineFinish != nil && t.ActualFinish != nil {
		return s.signedWorkingDayDiff(*t.BaselineFinish, *t.ActualFinish)
	}
	if t.BaselineStart != nil && t.ActualStart != nil {
		return s.signedWorkingDayDiff(*t.BaselineStart, *t.ActualStart)
	}
	return nil
}

// signedWorkingDayDiff computes the signed working-day difference
// actual - baseline: positive if actual is later, negative if earlier,
// zero if equal. Magnitude is CountAvailableDays(earlier, later) - 1.
func (s *Schedule) signedWorkingDayDiff(baseline, actual calendar.Date) *int64 {
	if baseline == actual {
		var zero int64
		return &zero
	}
	earlier, later, sign := baseline, actual, int64(1)
	if actual.Before(baseline) {
		earlier, later, sign = actual, baseline, -1
	}
	diff := sign * (s.calendar.CountAvailableDays(earlier, later) - 1)
	return &diff
}

func (s *Schedule) regenerateSuccessors() {
	successors := make(map[int32][]int32, len(s.order))
	for _, id := range s.order {
		for _, p := range s.tasks[id].Predecessors {
			successors[p] = append(successors[p], id)
		}
	}
	for _, id := range s.order {
		list := successors[id]
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		list = dedupeSorted(list)
		if list == nil {
			list = []int32{}
		}
		s.tasks[id].Successors = list
	}
}

func dedupeSorted(ids []int32) []int32 {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

func (s *Schedule) buildSummary() *RefreshSummary {
	summary := &RefreshSummary{TaskCount: len(s.order)}

	type criticalEntry struct {
		id int32
		es calendar.Date
	}
	var critical []criticalEntry

	var latest *calendar.Date
	for _, id := range s.order {
		t := s.tasks[id]
		if t.IsCritical != nil && *t.IsCritical {
			summary.CriticalCount++
			var es calendar.Date
			if t.EarlyStart != nil {
				es = *t.EarlyStart
			}
			critical = append(critical, criticalEntry{id: id, es: es})
		}
		if t.EarlyFinish != nil && (latest == nil || t.EarlyFinish.After(*latest)) {
			finish := *t.EarlyFinish
			latest = &finish
		}
		if t.ScheduleVarianceDays != nil {
			switch {
			case *t.ScheduleVarianceDays > 0:
				summary.PositiveVarianceCount++
			case *t.ScheduleVarianceDays < 0:
				summary.NegativeVarianceCount++
			default:
				summary.OnTrackVarianceCount++
			}
		}
	}

	sort.Slice(critical, func(i, j int) bool {
		if critical[i].es != critical[j].es {
			return critical[i].es.Before(critical[j].es)
		}
		return critical[i].id < critical[j].id
	})
	summary.CriticalPath = make([]int32, len(critical))
	for i, c := range critical {
		summary.CriticalPath[i] = c.id
	}
	summary.LatestFinish = latest
	return summary
}
