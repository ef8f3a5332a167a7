package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// CreateRunRequest starts a new run. An empty WorldSeed gets a random one.
type CreateRunRequest struct {
	Name      string `json:"name"`
	WorldSeed string `json:"world_seed,omitempty"`
}

// RunsHandler manages run lifecycle.
// Routes:
// POST /v1/runs          - Create a new run
// GET /v1/runs/{id}      - Read a run
// DELETE /v1/runs/{id}   - Delete a run
type RunsHandler struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewRunsHandler(store storage.Storage, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{store: store, logger: logger}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/runs"), "/")

	var runID uuid.UUID
	if path != "" {
		var err error
		runID, err = uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid run ID", "id", path, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid run ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		if runID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Run ID is required for GET requests")
			return
		}
		h.handleRead(w, r, runID)
	case http.MethodDelete:
		if runID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Run ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, runID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *RunsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Character name is required")
		return
	}
	if req.WorldSeed == "" {
		req.WorldSeed = uuid.NewString()
	}

	gs := state.NewGameState(req.Name, req.WorldSeed)
	if err := h.store.SaveRun(r.Context(), gs); err != nil {
		h.logger.Error("Failed to save new run", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create run")
		return
	}

	h.logger.Info("Run created", "run_id", gs.ID, "name", gs.Name,
		"spirit_root", gs.SpiritRoot.Grade)
	writeJSON(w, h.logger, http.StatusCreated, gs)
}

func (h *RunsHandler) handleRead(w http.ResponseWriter, r *http.Request, runID uuid.UUID) {
	gs, err := h.store.LoadRun(r.Context(), runID)
	if err != nil {
		h.logger.Error("Failed to load run", "run_id", runID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load run")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Run not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *RunsHandler) handleDelete(w http.ResponseWriter, r *http.Request, runID uuid.UUID) {
	if err := h.store.DeleteRun(r.Context(), runID); err != nil {
		h.logger.Error("Failed to delete run", "run_id", runID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
