package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Error fields force the
// corresponding operation to fail.
type MockStorage struct {
	mu         sync.Mutex
	runs       map[uuid.UUID]*state.GameState
	narratives map[uuid.UUID][]string

	SaveErr   error
	LoadErr   error
	DeleteErr error
	AppendErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		runs:       make(map[uuid.UUID]*state.GameState),
		narratives: make(map[uuid.UUID][]string),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveRun(ctx context.Context, gs *state.GameState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp, err := gs.DeepCopy()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[gs.ID] = cp
	return nil
}

func (m *MockStorage) LoadRun(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	gs, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return gs.DeepCopy()
}

func (m *MockStorage) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
	delete(m.narratives, id)
	return nil
}

func (m *MockStorage) AppendNarrative(ctx context.Context, runID uuid.UUID, entry string) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	log := append(m.narratives[runID], entry)
	if len(log) > MaxNarrativeEntries {
		log = log[len(log)-MaxNarrativeEntries:]
	}
	m.narratives[runID] = log
	return nil
}

func (m *MockStorage) RecentNarratives(ctx context.Context, runID uuid.UUID, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := m.narratives[runID]
	if n <= 0 || len(log) == 0 {
		return nil, nil
	}
	if n > len(log) {
		n = len(log)
	}
	out := make([]string, n)
	copy(out, log[len(log)-n:])
	return out, nil
}

// MockContent is an in-memory ContentProvider for tests.
type MockContent struct {
	Scenes     []*scene.Template
	Activities []*scene.Activity
	LootTables map[string]*loot.Table
}

func (m *MockContent) ListScenes() []*scene.Template { return m.Scenes }

func (m *MockContent) GetScene(id string) *scene.Template {
	for _, t := range m.Scenes {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *MockContent) ListActivities() []*scene.Activity { return m.Activities }

func (m *MockContent) GetLootTable(id string) *loot.Table { return m.LootTables[id] }
