// Package storage persists run state and the rolling narrative log, and
// serves the YAML content tables (scenes, activities, loot).
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// MaxNarrativeEntries bounds the per-run narrative log.
const MaxNarrativeEntries = 20

// Storage persists runs and their narrative logs. LoadRun returns (nil, nil)
// when the run does not exist; callers map that to a 404.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveRun(ctx context.Context, gs *state.GameState) error
	LoadRun(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error

	// AppendNarrative appends one entry to the run's narrative log,
	// trimming to MaxNarrativeEntries. RecentNarratives returns up to n
	// entries, oldest first.
	AppendNarrative(ctx context.Context, runID uuid.UUID, entry string) error
	RecentNarratives(ctx context.Context, runID uuid.UUID, n int) ([]string, error)
}

// ContentProvider serves authored content tables. Implementations load once
// and serve from memory; content is immutable at runtime.
type ContentProvider interface {
	ListScenes() []*scene.Template
	GetScene(id string) *scene.Template
	ListActivities() []*scene.Activity
	GetLootTable(id string) *loot.Table
}
