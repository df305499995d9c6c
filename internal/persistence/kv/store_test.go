package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.db")
	store, err := Open(DefaultConnectionConfig(path))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadWithNoSnapshotReturnsNil(t *testing.T) {
	store := openTestStore(t)
	sched, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := openTestStore(t)
	md := schedule.ProjectMetadata{
		Name:        "Retrofit",
		Description: "KV round trip",
		StartDate:   calendar.NewDate(2025, 1, 6),
		EndDate:     calendar.NewDate(2025, 2, 1),
	}
	sched := schedule.NewWithMetadata(md)
	require.NoError(t, sched.UpsertTask(1, "Survey", 2, nil))
	require.NoError(t, sched.UpsertTask(2, "Build", 3, []int32{1}))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sched))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, md, loaded.Metadata())
	assert.Len(t, loaded.Tasks(), 2)

	got, ok := loaded.FindTask(2)
	require.True(t, ok)
	require.NotNil(t, got.EarlyFinish)
}

func TestSaveOverwritesPriorSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := schedule.NewWithMetadata(schedule.DefaultMetadata())
	require.NoError(t, first.UpsertTask(1, "First", 1, nil))
	require.NoError(t, store.Save(ctx, first))

	second := schedule.NewWithMetadata(schedule.DefaultMetadata())
	require.NoError(t, second.UpsertTask(9, "Second", 1, nil))
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Tasks(), 1)
	assert.Equal(t, int32(9), loaded.Tasks()[0].ID)
}
