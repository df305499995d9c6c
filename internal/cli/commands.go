package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/persistence"
	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
)

func (r *REPL) cmdNew(_ []string) error {
	r.sched = schedule.NewWithMetadata(schedule.DefaultMetadata())
	okColor.Fprintln(r.out, "started a new empty schedule")
	return nil
}

func (r *REPL) cmdAdd(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: add <id> <name> <duration> [preds_csv]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	duration, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[2], err)
	}
	var preds []int32
	if len(args) >= 4 {
		preds, err = parseCSVInt32(args[3])
		if err != nil {
			return err
		}
	}
	if err := r.sched.UpsertTask(id, name, duration, preds); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d upserted\n", id)
	return nil
}

func (r *REPL) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	deleted, err := r.sched.DeleteTask(id)
	if err != nil {
		return err
	}
	if !deleted {
		warnColor.Fprintf(r.out, "task %d not found\n", id)
		return nil
	}
	okColor.Fprintf(r.out, "task %d deleted\n", id)
	return nil
}

type dateSetter func(t *task.Task, d calendar.Date)

func setBaselineStart(t *task.Task, d calendar.Date)  { t.BaselineStart = &d }
func setBaselineFinish(t *task.Task, d calendar.Date) { t.BaselineFinish = &d }
func setActualStart(t *task.Task, d calendar.Date)    { t.ActualStart = &d }
func setActualFinish(t *task.Task, d calendar.Date)   { t.ActualFinish = &d }

func (r *REPL) cmdSetDate(args []string, set dateSetter) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: <cmd> <id> <YYYY-MM-DD>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	d, err := calendar.ParseDate(args[1])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", args[1], err)
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	set(t, d)
	if err := r.sched.UpsertTaskRecord(t); err != nil {
		return err
	}
	if _, err := r.sched.Refresh(); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d updated\n", id)
	return nil
}

func (r *REPL) cmdPct(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pct <id> <0..1>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	pct, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid percent_complete %q: %w", args[1], err)
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.PercentComplete = &pct
	if err := r.sched.UpsertTaskRecord(t); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d percent_complete set to %.4f\n", id, pct)
	return nil
}

func (r *REPL) cmdVar(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: var <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	if t.ScheduleVarianceDays == nil {
		fmt.Fprintf(r.out, "task %d has no variance yet (run compute)\n", id)
		return nil
	}
	v := *t.ScheduleVarianceDays
	switch {
	case v > 0:
		warnColor.Fprintf(r.out, "task %d is %d working day(s) behind baseline\n", id, v)
	case v < 0:
		okColor.Fprintf(r.out, "task %d is %d working day(s) ahead of baseline\n", id, -v)
	default:
		fmt.Fprintf(r.out, "task %d is on baseline\n", id)
	}
	return nil
}

func (r *REPL) cmdParent(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: parent <id> <parent_id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	parentID, err := parseID(args[1])
	if err != nil {
		return err
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.ParentID = &parentID
	if err := r.sched.UpsertTaskRecord(t); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d parent set to %d\n", id, parentID)
	return nil
}

func (r *REPL) cmdWBS(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: wbs <id> <code>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.WBSCode = args[1]
	if err := r.sched.UpsertTaskRecord(t); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d wbs_code set to %s\n", id, args[1])
	return nil
}

func (r *REPL) cmdNotes(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: notes <id> <text>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.TaskNotes = strings.Join(args[1:], " ")
	if err := r.sched.UpsertTaskRecord(t); err != nil {
		return err
	}
	okColor.Fprintf(r.out, "task %d notes updated\n", id)
	return nil
}

func (r *REPL) cmdSucc(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: succ <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, ok := r.sched.FindTask(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	if len(t.Successors) == 0 {
		fmt.Fprintf(r.out, "task %d has no successors\n", id)
		return nil
	}
	fmt.Fprintf(r.out, "task %d successors: %v\n", id, t.Successors)
	return nil
}

func (r *REPL) cmdRationale(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rationale templates | rationale template <id> <name>")
	}
	switch args[0] {
	case "templates":
		return r.renderRationaleTemplates()
	case "template":
		if len(args) != 3 {
			return fmt.Errorf("usage: rationale template <id> <name>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := r.sched.ApplyRationaleTemplate(id, args[2]); err != nil {
			return err
		}
		okColor.Fprintf(r.out, "task %d rationale template set to %s\n", id, args[2])
		return nil
	default:
		return fmt.Errorf("unknown rationale subcommand %q", args[0])
	}
}

func (r *REPL) cmdMeta(args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	md := r.sched.Metadata()
	switch args[0] {
	case "show":
		fmt.Fprintf(r.out, "name: %s\ndescription: %s\nstart: %s\nend: %s\n",
			md.Name, md.Description, md.StartDate, md.EndDate)
	case "name":
		if len(args) < 2 {
			return fmt.Errorf("usage: meta name <text>")
		}
		md.Name = strings.Join(args[1:], " ")
		return r.commitMetadata(md)
	case "desc":
		if len(args) < 2 {
			return fmt.Errorf("usage: meta desc <text>")
		}
		md.Description = strings.Join(args[1:], " ")
		return r.commitMetadata(md)
	case "dates":
		if len(args) != 3 {
			return fmt.Errorf("usage: meta dates <start YYYY-MM-DD> <end YYYY-MM-DD>")
		}
		start, err := calendar.ParseDate(args[1])
		if err != nil {
			return err
		}
		end, err := calendar.ParseDate(args[2])
		if err != nil {
			return err
		}
		md.StartDate, md.EndDate = start, end
		return r.commitMetadata(md)
	default:
		return fmt.Errorf("unknown meta subcommand %q", args[0])
	}
	return nil
}

func (r *REPL) commitMetadata(md schedule.ProjectMetadata) error {
	if err := r.sched.SetMetadata(md); err != nil {
		return err
	}
	// Always refresh after a metadata change, matching the HTTP PUT
	// /metadata handler: a new date range can change the calendar and
	// must surface a horizon breach immediately, not on the next
	// unrelated compute.
	if _, err := r.sched.Refresh(); err != nil {
		return err
	}
	okColor.Fprintln(r.out, "metadata updated")
	return nil
}

func (r *REPL) cmdCalendar(args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "show":
		cal := r.sched.Calendar()
		fmt.Fprintf(r.out, "working days: %v\ncustom: %v\nholidays: %d\n",
			cal.WorkingDays(), r.sched.CalendarIsCustom(), len(cal.Holidays()))
	case "default":
		if err := r.sched.ResetCalendarToDefault(); err != nil {
			return err
		}
		okColor.Fprintln(r.out, "calendar reset to default")
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: calendar set <path>")
		}
		data, err := readFile(args[1])
		if err != nil {
			return err
		}
		cfg, err := parseCalendarConfigJSON(data)
		if err != nil {
			return err
		}
		cal, err := calendar.FromConfig(cfg)
		if err != nil {
			return err
		}
		if err := r.sched.SetCalendar(cal); err != nil {
			return err
		}
		okColor.Fprintln(r.out, "calendar loaded")
	case "save":
		if len(args) != 2 {
			return fmt.Errorf("usage: calendar save <path>")
		}
		cfg := r.sched.Calendar().ToConfig()
		data, err := marshalCalendarConfigJSON(cfg)
		if err != nil {
			return err
		}
		if err := writeFile(args[1], data); err != nil {
			return err
		}
		okColor.Fprintf(r.out, "calendar written to %s\n", args[1])
	default:
		return fmt.Errorf("unknown calendar subcommand %q", args[0])
	}
	return nil
}

func (r *REPL) cmdSave(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: save json|csv <path>")
	}
	switch args[0] {
	case "json":
		if err := persistence.SaveScheduleToJSON(r.sched, args[1]); err != nil {
			return err
		}
	case "csv":
		if err := persistence.SaveScheduleToCSV(r.sched, args[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown save format %q (want json|csv)", args[0])
	}
	okColor.Fprintf(r.out, "saved to %s\n", args[1])
	return nil
}

func (r *REPL) cmdLoad(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: load json|csv <path>")
	}
	var (
		loaded *schedule.Schedule
		err    error
	)
	switch args[0] {
	case "json":
		loaded, err = persistence.LoadScheduleFromJSON(args[1])
	case "csv":
		loaded, err = persistence.LoadScheduleFromCSV(args[1])
	default:
		return fmt.Errorf("unknown load format %q (want json|csv)", args[0])
	}
	if err != nil {
		return err
	}
	r.sched = loaded
	okColor.Fprintf(r.out, "loaded from %s\n", args[1])
	return nil
}

func (r *REPL) cmdCompute() error {
	summary, err := r.sched.Refresh()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "refreshed: %d tasks, %d critical\n", summary.TaskCount, summary.CriticalCount)
	return nil
}

func parseID(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return int32(v), nil
}

func parseCSVInt32(s string) ([]int32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
