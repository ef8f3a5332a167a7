package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	gs := state.NewGameState("Lâm Phong", "sqlite-test")
	gs.Stats.Silver = 777
	require.NoError(t, s.SaveRun(ctx, gs))

	loaded, err := s.LoadRun(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, 777, loaded.Stats.Silver)

	// Overwrite is an upsert, not a duplicate row.
	gs.Stats.Silver = 888
	require.NoError(t, s.SaveRun(ctx, gs))
	loaded, err = s.LoadRun(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, 888, loaded.Stats.Silver)

	require.NoError(t, s.DeleteRun(ctx, gs.ID))
	gone, err := s.LoadRun(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSQLiteStore_NarrativeLogOrderAndTrim(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	gs := state.NewGameState("Test", "sqlite-log")

	for i := 1; i <= MaxNarrativeEntries+5; i++ {
		require.NoError(t, s.AppendNarrative(ctx, gs.ID, fmt.Sprintf("turn %d", i)))
	}

	recent, err := s.RecentNarratives(ctx, gs.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		fmt.Sprintf("turn %d", MaxNarrativeEntries+3),
		fmt.Sprintf("turn %d", MaxNarrativeEntries+4),
		fmt.Sprintf("turn %d", MaxNarrativeEntries+5),
	}, recent, "oldest first within the window")

	all, err := s.RecentNarratives(ctx, gs.ID, 1000)
	require.NoError(t, err)
	assert.Len(t, all, MaxNarrativeEntries)
	assert.Equal(t, "turn 6", all[0])
}

func TestSQLiteStore_NarrativeIsolatedPerRun(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	a := state.NewGameState("A", "run-a")
	b := state.NewGameState("B", "run-b")

	require.NoError(t, s.AppendNarrative(ctx, a.ID, "a1"))
	require.NoError(t, s.AppendNarrative(ctx, b.ID, "b1"))

	got, err := s.RecentNarratives(ctx, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, got)
}
