package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmnguyen-dev/tutien-engine/internal/services"
	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
	"github.com/hmnguyen-dev/tutien-engine/internal/turn"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(storage.NewMockStorage(), &services.MockNarrator{}, discard())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["storage"])
}

func TestRunsHandler_Create(t *testing.T) {
	store := storage.NewMockStorage()
	h := NewRunsHandler(store, discard())

	body, _ := json.Marshal(CreateRunRequest{Name: "Lâm Phong", WorldSeed: "api-test"})
	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var gs state.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gs))
	assert.Equal(t, "Lâm Phong", gs.Name)
	assert.NotEmpty(t, gs.SpiritRoot.Elements)

	saved, err := store.LoadRun(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestRunsHandler_CreateRequiresName(t *testing.T) {
	h := NewRunsHandler(storage.NewMockStorage(), discard())

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsHandler_ReadAndDelete(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMockStorage()
	gs := state.NewGameState("Test", "read-test")
	require.NoError(t, store.SaveRun(ctx, gs))
	h := NewRunsHandler(store, discard())

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+gs.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/runs/"+gs.ID.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/runs/"+gs.ID.String(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunsHandler_InvalidID(t *testing.T) {
	h := NewRunsHandler(storage.NewMockStorage(), discard())

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newTurnHandler(t *testing.T) (*TurnHandler, *state.GameState) {
	t.Helper()
	store := storage.NewMockStorage()
	gs := state.NewGameState("Test", "turn-api")
	require.NoError(t, store.SaveRun(context.Background(), gs))

	content := &storage.MockContent{
		Scenes: []*scene.Template{
			{ID: "village_day", Name: "Ngày Thường", Weight: 1, Prompt: "A quiet day."},
		},
	}
	processor := turn.NewTurnProcessor(store, content, &services.MockNarrator{}, "PG13", discard())
	return NewTurnHandler(processor, discard()), gs
}

func TestTurnHandler_ProcessTurn(t *testing.T) {
	h, gs := newTurnHandler(t)

	body, _ := json.Marshal(turn.TurnRequest{RunID: gs.ID})
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result turn.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TurnNo)
	assert.NotEmpty(t, result.Narrative)
	assert.NotEmpty(t, result.Choices)
}

func TestTurnHandler_RunNotFound(t *testing.T) {
	h, _ := newTurnHandler(t)

	body, _ := json.Marshal(turn.TurnRequest{RunID: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTurnHandler_MissingRunID(t *testing.T) {
	h, _ := newTurnHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivitiesHandler(t *testing.T) {
	content := &storage.MockContent{
		Activities: []*scene.Activity{
			{ID: "meditate", Name: "Đả Tọa", Weight: 1, StaminaCost: 15, TimeSegments: 2, CultivationExp: 20},
		},
	}
	h := NewActivitiesHandler(content, discard())

	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var activities []*scene.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "meditate", activities[0].ID)
}

func TestScenesHandler(t *testing.T) {
	content := &storage.MockContent{
		Scenes: []*scene.Template{
			{ID: "village_day", Name: "Ngày Thường", Weight: 1, Prompt: "secret prompt"},
			{ID: "ambush", Name: "Mai Phục", Weight: 1, Prompt: "secret", Combat: true},
		},
	}
	h := NewScenesHandler(content, discard())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenes", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summaries []SceneSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.True(t, summaries[1].Combat)
	assert.NotContains(t, w.Body.String(), "secret", "narrator prompts are not exposed")
}
