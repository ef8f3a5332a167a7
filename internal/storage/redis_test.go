package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreFromClient(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestRedis(t)

	gs := state.NewGameState("Lâm Phong", "redis-test")
	require.NoError(t, s.SaveRun(ctx, gs))

	loaded, err := s.LoadRun(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, gs.WorldSeed, loaded.WorldSeed)
	assert.Equal(t, gs.SpiritRoot, loaded.SpiritRoot)

	require.NoError(t, s.DeleteRun(ctx, gs.ID))
	gone, err := s.LoadRun(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "missing run loads as nil, nil")
}

func TestRedisStore_LoadMissing(t *testing.T) {
	s := newTestRedis(t)
	gs, err := s.LoadRun(context.Background(), state.NewGameState("x", "y").ID)
	require.NoError(t, err)
	assert.Nil(t, gs)
}

func TestRedisStore_NarrativeLog(t *testing.T) {
	ctx := context.Background()
	s := newTestRedis(t)
	gs := state.NewGameState("Test", "log-test")

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.AppendNarrative(ctx, gs.ID, fmt.Sprintf("turn %d", i)))
	}

	recent, err := s.RecentNarratives(ctx, gs.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"turn 3", "turn 4", "turn 5"}, recent, "oldest first")

	all, err := s.RecentNarratives(ctx, gs.ID, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRedisStore_NarrativeTrim(t *testing.T) {
	ctx := context.Background()
	s := newTestRedis(t)
	gs := state.NewGameState("Test", "trim-test")

	for i := 1; i <= MaxNarrativeEntries+10; i++ {
		require.NoError(t, s.AppendNarrative(ctx, gs.ID, fmt.Sprintf("turn %d", i)))
	}

	all, err := s.RecentNarratives(ctx, gs.ID, MaxNarrativeEntries*2)
	require.NoError(t, err)
	require.Len(t, all, MaxNarrativeEntries)
	assert.Equal(t, "turn 11", all[0], "oldest entries trimmed away")
	assert.Equal(t, fmt.Sprintf("turn %d", MaxNarrativeEntries+10), all[len(all)-1])
}

func TestRedisStore_DeleteClearsNarrative(t *testing.T) {
	ctx := context.Background()
	s := newTestRedis(t)
	gs := state.NewGameState("Test", "del-test")

	require.NoError(t, s.SaveRun(ctx, gs))
	require.NoError(t, s.AppendNarrative(ctx, gs.ID, "entry"))
	require.NoError(t, s.DeleteRun(ctx, gs.ID))

	recent, err := s.RecentNarratives(ctx, gs.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
