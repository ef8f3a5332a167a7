package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/internal/turn"
)

// TurnHandler processes one game turn.
// Routes:
// POST /v1/turn
type TurnHandler struct {
	processor *turn.TurnProcessor
	logger    *slog.Logger
}

func NewTurnHandler(processor *turn.TurnProcessor, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{processor: processor, logger: logger}
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req turn.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RunID == uuid.Nil {
		writeError(w, h.logger, http.StatusBadRequest, "run_id is required")
		return
	}

	result, err := h.processor.ProcessTurn(r.Context(), req)
	if err != nil {
		if errors.Is(err, turn.ErrRunNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Run not found")
			return
		}
		h.logger.Error("Failed to process turn", "run_id", req.RunID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to process turn")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
