package persistence

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
)

const metadataRowName = "__metadata__"

var csvHeader = []string{
	"name", "id", "task_name", "duration_days", "predecessors", "successors",
	"early_start", "early_finish", "late_start", "late_finish",
	"baseline_start", "baseline_finish", "actual_start", "actual_finish",
	"percent_complete", "progress_measurement", "pre_defined_rationale",
	"total_float", "is_critical", "schedule_variance_days",
	"parent_id", "wbs_code", "task_notes", "task_attachments",
	"resource_allocations", "metadata_json", "calendar_json", "calendar_is_custom",
}

// SaveScheduleToCSV writes s's snapshot as a CSV file per SPEC_FULL §6.2:
// a metadata row followed by one row per task.
func SaveScheduleToCSV(s *schedule.Schedule, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrap(IO, "failed to create CSV snapshot", err)
	}
	defer f.Close()
	if err := WriteScheduleCSV(s, f); err != nil {
		return err
	}
	return nil
}

// WriteScheduleCSV renders s's snapshot as CSV to w.
func WriteScheduleCSV(s *schedule.Schedule, w io.Writer) error {
	snap := FromSchedule(s)
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return wrap(CSV, "failed to write CSV header", err)
	}

	metaJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return wrap(Serialization, "failed to marshal metadata", err)
	}
	calJSON := []byte("null")
	if snap.HasCalendar && snap.Calendar != nil {
		calJSON, err = json.Marshal(snap.Calendar)
		if err != nil {
			return wrap(Serialization, "failed to marshal calendar", err)
		}
	}
	metaRow := make([]string, len(csvHeader))
	metaRow[0] = metadataRowName
	metaRow[25] = string(metaJSON)
	metaRow[26] = string(calJSON)
	metaRow[27] = strconv.FormatBool(snap.CalendarIsCustom)
	if err := writer.Write(metaRow); err != nil {
		return wrap(CSV, "failed to write CSV metadata row", err)
	}

	for _, t := range snap.Tasks {
		row, err := taskToRow(t)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return wrap(CSV, "failed to write CSV task row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return wrap(CSV, "failed to flush CSV writer", err)
	}
	return nil
}

func taskToRow(t *task.Task) ([]string, error) {
	rationaleJSON, err := json.Marshal(t.PreDefinedRationale)
	if err != nil {
		return nil, wrap(Serialization, "failed to marshal pre_defined_rationale", err)
	}
	resourcesJSON, err := json.Marshal(t.ResourceAllocations)
	if err != nil {
		return nil, wrap(Serialization, "failed to marshal resource_allocations", err)
	}
	row := make([]string, len(csvHeader))
	row[0] = strconv.FormatInt(int64(t.ID), 10)
	row[1] = strconv.FormatInt(int64(t.ID), 10)
	row[2] = t.Name
	row[3] = strconv.FormatInt(t.DurationDays, 10)
	row[4] = joinInt32(t.Predecessors, ",")
	row[5] = joinInt32(t.Successors, ",")
	row[6] = dateOrEmpty(t.EarlyStart)
	row[7] = dateOrEmpty(t.EarlyFinish)
	row[8] = dateOrEmpty(t.LateStart)
	row[9] = dateOrEmpty(t.LateFinish)
	row[10] = dateOrEmpty(t.BaselineStart)
	row[11] = dateOrEmpty(t.BaselineFinish)
	row[12] = dateOrEmpty(t.ActualStart)
	row[13] = dateOrEmpty(t.ActualFinish)
	row[14] = floatOrEmpty(t.PercentComplete)
	row[15] = string(t.ProgressMeasurement)
	row[16] = string(rationaleJSON)
	row[17] = int64OrEmpty(t.TotalFloat)
	row[18] = boolOrEmpty(t.IsCritical)
	row[19] = int64OrEmpty(t.ScheduleVarianceDays)
	row[20] = int32PtrOrEmpty(t.ParentID)
	row[21] = t.WBSCode
	row[22] = t.TaskNotes
	row[23] = strings.Join(t.TaskAttachments, ";")
	row[24] = string(resourcesJSON)
	return row, nil
}

// LoadScheduleFromCSV reads and validates a snapshot from path, building a
// fresh Schedule.
func LoadScheduleFromCSV(path string) (*schedule.Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrap(IO, "failed to open CSV snapshot", err)
	}
	defer f.Close()
	return ReadScheduleCSV(f)
}

// ReadScheduleCSV parses a CSV snapshot from r into a Schedule.
func ReadScheduleCSV(r io.Reader) (*schedule.Schedule, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, wrap(CSV, "failed to read CSV records", err)
	}
	if len(records) < 2 {
		return nil, wrap(CSV, "CSV snapshot has no data rows", nil)
	}
	rows := records[1:] // skip header

	var metaRow []string
	var taskRows [][]string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if row[0] == metadataRowName {
			if metaRow != nil {
				return nil, wrap(CSV, "CSV snapshot has multiple metadata rows", nil)
			}
			metaRow = row
			continue
		}
		taskRows = append(taskRows, row)
	}
	if len(taskRows) == 0 {
		return nil, wrap(CSV, "CSV snapshot has no task rows", nil)
	}

	var snap Snapshot
	if metaRow == nil {
		// No metadata row at all: fall back to default metadata rather
		// than failing outright, matching load_schedule_from_csv's
		// Schedule::new() fallback.
		snap = Snapshot{Metadata: schedule.DefaultMetadata()}
	} else {
		snap, err = metaRowToSnapshot(metaRow)
		if err != nil {
			return nil, err
		}
	}
	for i, row := range taskRows {
		t, err := rowToTask(row)
		if err != nil {
			return nil, wrap(CSV, fmt.Sprintf("invalid task row #%d", i), err)
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	return IntoSchedule(snap)
}

func metaRowToSnapshot(row []string) (Snapshot, error) {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	var md schedule.ProjectMetadata
	if err := json.Unmarshal([]byte(get(25)), &md); err != nil {
		return Snapshot{}, wrap(Serialization, "failed to unmarshal metadata_json", err)
	}
	snap := Snapshot{Metadata: md}

	calRaw := get(26)
	if calRaw != "" && calRaw != "null" {
		var cfg calendar.Config
		if err := json.Unmarshal([]byte(calRaw), &cfg); err != nil {
			return Snapshot{}, wrap(Serialization, "failed to unmarshal calendar_json", err)
		}
		snap.Calendar = &cfg
		snap.HasCalendar = true
	}
	// Tolerant parse: anything other than "true" (case-insensitive,
	// surrounding spaces ignored) is false, never a hard error, per the CSV
	// round-trip tolerance note.
	snap.CalendarIsCustom = strings.EqualFold(strings.TrimSpace(get(27)), "true")
	return snap, nil
}

func rowToTask(row []string) (*task.Task, error) {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	id, err := strconv.ParseInt(get(1), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", get(1), err)
	}
	duration, err := strconv.ParseInt(get(3), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration_days %q: %w", get(3), err)
	}
	preds, err := parseInt32List(get(4))
	if err != nil {
		return nil, fmt.Errorf("invalid predecessors %q: %w", get(4), err)
	}
	succs, err := parseInt32List(get(5))
	if err != nil {
		return nil, fmt.Errorf("invalid successors %q: %w", get(5), err)
	}

	t := task.New(int32(id), get(2), duration)
	t.Predecessors = preds
	t.Successors = succs

	if t.EarlyStart, err = parseDateOrEmpty(get(6)); err != nil {
		return nil, err
	}
	if t.EarlyFinish, err = parseDateOrEmpty(get(7)); err != nil {
		return nil, err
	}
	if t.LateStart, err = parseDateOrEmpty(get(8)); err != nil {
		return nil, err
	}
	if t.LateFinish, err = parseDateOrEmpty(get(9)); err != nil {
		return nil, err
	}
	if t.BaselineStart, err = parseDateOrEmpty(get(10)); err != nil {
		return nil, err
	}
	if t.BaselineFinish, err = parseDateOrEmpty(get(11)); err != nil {
		return nil, err
	}
	if t.ActualStart, err = parseDateOrEmpty(get(12)); err != nil {
		return nil, err
	}
	if t.ActualFinish, err = parseDateOrEmpty(get(13)); err != nil {
		return nil, err
	}
	if t.PercentComplete, err = parseFloatOrEmpty(get(14)); err != nil {
		return nil, err
	}
	if pm := get(15); pm != "" {
		t.ProgressMeasurement = task.ProgressMeasurement(pm)
	}
	if err := json.Unmarshal([]byte(orEmptyArray(get(16))), &t.PreDefinedRationale); err != nil {
		return nil, fmt.Errorf("invalid pre_defined_rationale: %w", err)
	}
	if t.TotalFloat, err = parseInt64Ptr(get(17)); err != nil {
		return nil, err
	}
	if t.IsCritical, err = parseBoolPtr(get(18)); err != nil {
		return nil, err
	}
	if t.ScheduleVarianceDays, err = parseInt64Ptr(get(19)); err != nil {
		return nil, err
	}
	if t.ParentID, err = parseInt32Ptr(get(20)); err != nil {
		return nil, err
	}
	t.WBSCode = get(21)
	t.TaskNotes = get(22)
	if attach := get(23); attach != "" {
		t.TaskAttachments = strings.Split(attach, ";")
	}
	if err := json.Unmarshal([]byte(orEmptyArray(get(24))), &t.ResourceAllocations); err != nil {
		return nil, fmt.Errorf("invalid resource_allocations: %w", err)
	}
	return t, nil
}

func orEmptyArray(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}

func joinInt32(vs []int32, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, sep)
}

func parseInt32List(s string) ([]int32, error) {
	if strings.TrimSpace(s) == "" {
		return []int32{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, int32(v))
	}
	return out, nil
}

func dateOrEmpty(d *calendar.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func parseDateOrEmpty(s string) (*calendar.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &d, nil
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseFloatOrEmpty(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid percent_complete %q: %w", s, err)
	}
	return &v, nil
}

func int64OrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func parseInt64Ptr(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return &v, nil
}

func boolOrEmpty(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func parseBoolPtr(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q: %w", s, err)
	}
	return &v, nil
}

func int32PtrOrEmpty(v *int32) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

func parseInt32Ptr(s string) (*int32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid parent_id %q: %w", s, err)
	}
	r := int32(v)
	return &r, nil
}
