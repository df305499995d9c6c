package persistence

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
)

func sampleSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	md := schedule.ProjectMetadata{
		Name:        "Bridge retrofit",
		Description: "Q1 structural work",
		StartDate:   calendar.NewDate(2025, 1, 6),
		EndDate:     calendar.NewDate(2025, 2, 1),
	}
	s := schedule.NewWithMetadata(md)
	require.NoError(t, s.UpsertTask(1, "Survey", 2, nil))
	require.NoError(t, s.UpsertTask(2, "Design", 3, []int32{1}))
	require.NoError(t, s.UpsertTask(3, "Permits", 1, []int32{1}))
	require.NoError(t, s.UpsertTask(4, "Build", 2, []int32{2, 3}))
	return s
}

func TestJSONRoundTrip(t *testing.T) {
	s := sampleSchedule(t)
	data, err := MarshalScheduleJSON(s)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte(`"project_name"`)))

	loaded, err := UnmarshalScheduleJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s.Metadata(), loaded.Metadata())
	assert.Len(t, loaded.Tasks(), 4)

	got, ok := loaded.FindTask(4)
	require.True(t, ok)
	require.NotNil(t, got.EarlyFinish)
	want, _ := s.FindTask(4)
	assert.Equal(t, want.EarlyFinish.String(), got.EarlyFinish.String())
}

func TestJSONRoundTripPreservesCustomCalendar(t *testing.T) {
	s := sampleSchedule(t)
	require.NoError(t, s.SetCalendar(customNoFridayCalendar(t)))
	require.NoError(t, s.UpsertTask(5, "Inspect", 1, []int32{4}))

	data, err := MarshalScheduleJSON(s)
	require.NoError(t, err)
	loaded, err := UnmarshalScheduleJSON(data)
	require.NoError(t, err)
	assert.True(t, loaded.CalendarIsCustom())
	assert.False(t, loaded.Calendar().IsAvailable(calendar.NewDate(2025, 1, 10))) // Friday
}

func TestCSVRoundTrip(t *testing.T) {
	s := sampleSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(s, &buf))
	assert.True(t, strings.Contains(buf.String(), "__metadata__"))

	loaded, err := ReadScheduleCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Metadata(), loaded.Metadata())
	assert.Len(t, loaded.Tasks(), 4)
}

func TestCSVRejectsMultipleMetadataRows(t *testing.T) {
	s := sampleSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(s, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	doubled := append(append([]string{}, lines...), lines[1])
	_, err := ReadScheduleCSV(strings.NewReader(strings.Join(doubled, "\n")))
	assert.Error(t, err)
}

func TestCSVRejectsNoTaskRows(t *testing.T) {
	s := schedule.NewWithMetadata(schedule.DefaultMetadata())
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(s, &buf))
	_, err := ReadScheduleCSV(&buf)
	assert.Error(t, err)
}

func TestCSVMissingMetadataRowFallsBackToDefault(t *testing.T) {
	s := sampleSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(s, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	var withoutMeta []string
	for _, line := range lines {
		if strings.HasPrefix(line, "__metadata__,") {
			continue
		}
		withoutMeta = append(withoutMeta, line)
	}

	loaded, err := ReadScheduleCSV(strings.NewReader(strings.Join(withoutMeta, "\n")))
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultMetadata(), loaded.Metadata())
	assert.Len(t, loaded.Tasks(), 4)
}

func TestCSVTolerantCalendarIsCustomParsing(t *testing.T) {
	s := sampleSchedule(t)
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(s, &buf))
	mangled := strings.Replace(buf.String(), ",false\n", ",not-a-bool\n", 1)

	loaded, err := ReadScheduleCSV(strings.NewReader(mangled))
	require.NoError(t, err)
	assert.False(t, loaded.CalendarIsCustom())
}

func customNoFridayCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal := calendar.NewWithYearRange(2025, 2025)
	require.NoError(t, cal.SetWorkingDays([]time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	}))
	return cal
}
