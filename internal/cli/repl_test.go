package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/schedule"
)

func runREPL(t *testing.T, script string) (*REPL, string) {
	t.Helper()
	sched := schedule.NewWithMetadata(schedule.DefaultMetadata())
	var out bytes.Buffer
	repl := New(sched, strings.NewReader(script), &out, nil)
	require.NoError(t, repl.Run())
	return repl, out.String()
}

func TestAddShowCompute(t *testing.T) {
	_, out := runREPL(t, "add 1 Survey 2\nadd 2 Design 3 1\nshow\ncompute\nquit\n")
	assert.Contains(t, out, "upserted")
	assert.Contains(t, out, "refreshed: 2 tasks")
}

func TestDeleteUnknownTaskWarns(t *testing.T) {
	_, out := runREPL(t, "delete 99\nquit\n")
	assert.Contains(t, out, "not found")
}

func TestUnknownCommandReportsError(t *testing.T) {
	_, out := runREPL(t, "bogus\nquit\n")
	assert.Contains(t, out, "unknown command")
}

func TestMetaNameUpdatesMetadata(t *testing.T) {
	repl, out := runREPL(t, "meta name Bridge Retrofit\nmeta show\nquit\n")
	assert.Contains(t, out, "metadata updated")
	assert.Equal(t, "Bridge Retrofit", repl.sched.Metadata().Name)
}

func TestMetaDatesRefreshesAndSurfacesHorizonBreach(t *testing.T) {
	_, out := runREPL(t, "add 1 Survey 40\nmeta dates 2025-01-06 2025-01-10\nquit\n")
	assert.Contains(t, out, "error:")
}

func TestRationaleTemplatesList(t *testing.T) {
	_, out := runREPL(t, "rationale templates\nquit\n")
	assert.Contains(t, out, "fifty_fifty")
}

func TestCritWithNoTasksReportsEmpty(t *testing.T) {
	_, out := runREPL(t, "crit\nquit\n")
	assert.Contains(t, out, "no critical tasks")
}
