package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
)

// SceneSummary is the public listing shape; narrator prompts stay private.
type SceneSummary struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	NameEN       string             `json:"name_en,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	Combat       bool               `json:"combat,omitempty"`
	Requirements scene.Requirements `json:"requirements,omitempty"`
}

// ScenesHandler lists the available scene templates.
// Routes:
// GET /v1/scenes
type ScenesHandler struct {
	content storage.ContentProvider
	logger  *slog.Logger
}

func NewScenesHandler(content storage.ContentProvider, logger *slog.Logger) *ScenesHandler {
	return &ScenesHandler{content: content, logger: logger}
}

func (h *ScenesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	templates := h.content.ListScenes()
	summaries := make([]SceneSummary, len(templates))
	for i, t := range templates {
		summaries[i] = SceneSummary{
			ID:           t.ID,
			Name:         t.Name,
			NameEN:       t.NameEN,
			Tags:         t.Tags,
			Combat:       t.Combat,
			Requirements: t.Requirements,
		}
	}
	writeJSON(w, h.logger, http.StatusOK, summaries)
}

// ActivitiesHandler lists the downtime activities. Activities carry no
// narrator prompt, so they are served as-is.
// Routes:
// GET /v1/activities
type ActivitiesHandler struct {
	content storage.ContentProvider
	logger  *slog.Logger
}

func NewActivitiesHandler(content storage.ContentProvider, logger *slog.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{content: content, logger: logger}
}

func (h *ActivitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.content.ListActivities())
}
