package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// RedisStore implements Storage on Redis. Runs are JSON blobs under
// run:<uuid>; narrative logs are capped lists under narrative:<uuid>.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects using a redis URL (redis://host:port/db).
func NewRedisStore(url string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// NewRedisStoreFromClient wraps an existing client; used by tests.
func NewRedisStoreFromClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func runKey(id uuid.UUID) string       { return "run:" + id.String() }
func narrativeKey(id uuid.UUID) string { return "narrative:" + id.String() }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveRun(ctx context.Context, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := s.client.Set(ctx, runKey(gs.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadRun(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	data, err := s.client.Get(ctx, runKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &gs, nil
}

func (s *RedisStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, runKey(id), narrativeKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendNarrative(ctx context.Context, runID uuid.UUID, entry string) error {
	key := narrativeKey(runID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, entry)
	pipe.LTrim(ctx, key, int64(-MaxNarrativeEntries), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append narrative: %w", err)
	}
	return nil
}

func (s *RedisStore) RecentNarratives(ctx context.Context, runID uuid.UUID, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	entries, err := s.client.LRange(ctx, narrativeKey(runID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative log: %w", err)
	}
	return entries, nil
}
