// Package turn orchestrates one game turn: load state, apply the choice
// cost, select a scene, invoke the narrator, validate and apply its
// proposal, check breakthroughs, and persist.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/internal/services"
	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
	"github.com/hmnguyen-dev/tutien-engine/pkg/combat"
	"github.com/hmnguyen-dev/tutien-engine/pkg/cultivation"
	"github.com/hmnguyen-dev/tutien-engine/pkg/engine"
	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
	"github.com/hmnguyen-dev/tutien-engine/pkg/textfilter"
)

// ErrRunNotFound is returned when the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// Bounds for orchestration bookkeeping.
const (
	recentNarrativeCount = 5
	recentSceneWindow    = 5
	summaryInterval      = 10
	summaryMaxChars      = 1000
)

// Save statuses reported in TurnResult.
const (
	SaveStatusSaved   = "saved"
	SaveStatusWarning = "warning"
)

// TurnRequest is one player action. ChoiceID empty means "open a new scene".
// Cost is the resource price of the chosen option, echoed from the previous
// turn's choices; it is applied through the bounded mutators.
type TurnRequest struct {
	RunID      uuid.UUID      `json:"run_id"`
	ChoiceID   string         `json:"choice_id,omitempty"`
	ChoiceText string         `json:"choice_text,omitempty"`
	Cost       narrative.Cost `json:"cost,omitempty"`
	Locale     string         `json:"locale,omitempty"`

	// ActivityID runs a downtime activity instead of a narrative choice.
	ActivityID string `json:"activity_id,omitempty"`
}

// TurnResult is the computed outcome of one turn.
type TurnResult struct {
	Narrative  string             `json:"narrative"`
	Choices    []narrative.Choice `json:"choices"`
	State      *state.GameState   `json:"state"`
	Events     []state.GameEvent  `json:"events,omitempty"`
	TurnNo     int                `json:"turn_no"`
	SaveStatus string             `json:"save_status"`
}

// TurnProcessor wires storage, content and the narrator into the turn
// pipeline.
type TurnProcessor struct {
	store    storage.Storage
	content  storage.ContentProvider
	narrator services.NarratorService
	logger   *slog.Logger

	filter *textfilter.ProfanityFilter
}

// NewTurnProcessor creates the processor. contentRating gates the profanity
// filter on narrator prose.
func NewTurnProcessor(store storage.Storage, content storage.ContentProvider, narrator services.NarratorService, contentRating string, logger *slog.Logger) *TurnProcessor {
	tp := &TurnProcessor{
		store:    store,
		content:  content,
		narrator: narrator,
		logger:   logger,
	}
	if textfilter.ShouldFilterContent(contentRating) {
		tp.filter = textfilter.NewProfanityFilter()
	}
	return tp
}

// ProcessTurn runs the full pipeline for one request. Narrator failures
// degrade to the fallback proposal; persistence failures degrade to a
// save-warning event. Only a missing run or a storage read failure aborts.
func (tp *TurnProcessor) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	gs, err := tp.store.LoadRun(ctx, req.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if gs == nil {
		return nil, ErrRunNotFound
	}

	if state.Migrate(gs) {
		tp.logger.Info("migrated run to current schema", "run_id", gs.ID, "version", gs.SchemaVersion)
	}

	turnNo := gs.TurnCount + 1
	r := rng.NewTurn(gs.WorldSeed, turnNo)
	log := tp.logger.With("run_id", gs.ID.String(), "turn", turnNo)

	recent, err := tp.store.RecentNarratives(ctx, gs.ID, recentNarrativeCount)
	if err != nil {
		log.Warn("failed to read narrative log, continuing without context", "error", err)
		recent = nil
	}

	var events []state.GameEvent

	// Real-time stamina regen lands before any cost is charged.
	gs.RegenStamina(time.Now())
	tp.applyChoiceCost(gs, req.Cost)

	var activityNote string
	if req.ActivityID != "" {
		activityNote = tp.applyActivity(gs, req.ActivityID, log)
	}

	prompt := narrative.TurnPrompt{
		RunID:      gs.ID,
		TurnNo:     turnNo,
		Locale:     req.Locale,
		ChoiceText: req.ChoiceText,
		Summary:    gs.NarrativeSummary,
		Recent:     recent,
		State:      gs,
	}

	if activityNote != "" {
		prompt.ScenePrompt = activityNote
	}

	var currentScene *scene.Template
	if req.ActivityID == "" && (req.ChoiceID == "" || gs.TurnCount == 0) {
		currentScene = tp.selectScene(gs, r)
		if currentScene != nil {
			prompt.SceneID = currentScene.ID
			prompt.ScenePrompt = currentScene.Prompt
		}
	}

	if currentScene != nil && currentScene.Combat {
		combatEvents := tp.resolveCombat(gs, r, &prompt)
		events = append(events, combatEvents...)
	}

	proposal := tp.generate(ctx, prompt, log)

	// Only deltas are taken from the proposal. Events in the turn result
	// come from the engine and the breakthrough checks; narrator-proposed
	// events are dropped so a mechanical outcome always has the state
	// change behind it.
	worker := engine.NewDeltaWorker(gs, proposal.ProposedDeltas, log).
		WithRNG(r).
		WithLootTables(func(id string) *loot.Table { return tp.content.GetLootTable(id) })
	events = append(events, worker.Apply()...)

	events = append(events, tp.checkBreakthroughs(gs)...)

	narrativeText := proposal.Narrative
	if tp.filter != nil {
		narrativeText = tp.filter.FilterText(narrativeText)
	}

	if turnNo%summaryInterval == 0 {
		gs.NarrativeSummary = rollSummary(gs.NarrativeSummary, append(recent, narrativeText))
	}

	gs.TurnCount = turnNo

	saveStatus := SaveStatusSaved
	if err := tp.store.SaveRun(ctx, gs); err != nil {
		log.Error("failed to persist turn", "error", err)
		saveStatus = SaveStatusWarning
		events = append(events, state.NewEvent(state.EventStatusEffect,
			"effect", "save_warning",
			"detail", "turn computed but not persisted"))
	} else if err := tp.store.AppendNarrative(ctx, gs.ID, narrativeText); err != nil {
		log.Warn("failed to append narrative log", "error", err)
	}

	return &TurnResult{
		Narrative:  narrativeText,
		Choices:    proposal.Choices,
		State:      gs,
		Events:     events,
		TurnNo:     turnNo,
		SaveStatus: saveStatus,
	}, nil
}

// applyChoiceCost charges the echoed choice cost through the bounded
// mutators. Costs are trusted input from our own previous proposal, but the
// mutators still floor every pool at zero.
func (tp *TurnProcessor) applyChoiceCost(gs *state.GameState, cost narrative.Cost) {
	if cost.Zero() {
		return
	}
	gs.Stats.AddStamina(-cost.Stamina)
	gs.Stats.AddQi(-cost.Qi)
	gs.Stats.AddSilver(-cost.Silver)
	gs.Stats.AddSpiritStones(-cost.SpiritStones)
	if cost.TimeSegments > 0 {
		gs.AdvanceTime(cost.TimeSegments)
	}
}

// applyActivity charges a downtime activity and banks its yields. The dual
// cultivation path goes through the exp_split ratio here; only narrator
// deltas use the fixed split. Returns a prompt note describing what was done,
// or "" when the activity was unknown or ineligible.
func (tp *TurnProcessor) applyActivity(gs *state.GameState, id string, log *slog.Logger) string {
	var act *scene.Activity
	for _, a := range tp.content.ListActivities() {
		if a.ID == id {
			act = a
			break
		}
	}
	if act == nil {
		log.Warn("unknown activity requested", "activity", id)
		return ""
	}
	if !act.Eligible(gs) {
		log.Warn("activity not eligible, skipping", "activity", id)
		return ""
	}

	gs.Stats.AddStamina(-act.StaminaCost)
	if act.TimeSegments > 0 {
		gs.AdvanceTime(act.TimeSegments)
	}
	if act.CultivationExp > 0 {
		gain := cultivation.ExpGain(gs, act.CultivationExp)
		switch gs.Progress.CultivationPath {
		case state.PathDual:
			cultivation.ApplyDualCultivationExp(gs, gain)
		case state.PathBody:
			gs.Progress.BodyExp += gain
		default:
			gs.Progress.CultivationExp += gain
		}
	}
	if act.BodyExp > 0 {
		gs.Progress.BodyExp += act.BodyExp
	}
	if act.Silver > 0 {
		gs.Stats.AddSilver(act.Silver)
	}

	return fmt.Sprintf("The player spent %d time segment(s) on a downtime activity: %s (%s). Narrate it briefly.",
		act.TimeSegments, act.Name, act.NameEN)
}

// selectScene draws a new scene with the recent-scene variety heuristic and
// records it in the bounded RecentScenes window.
func (tp *TurnProcessor) selectScene(gs *state.GameState, r *rng.RNG) *scene.Template {
	sel := scene.Select(r, tp.content.ListScenes(), gs, gs.RecentScenes)
	if sel == nil {
		return nil
	}
	gs.RecentScenes = append(gs.RecentScenes, sel.ID)
	if len(gs.RecentScenes) > recentSceneWindow {
		gs.RecentScenes = gs.RecentScenes[len(gs.RecentScenes)-recentSceneWindow:]
	}
	return sel
}

// resolveCombat runs an auto-resolved encounter for a combat scene and
// feeds the outcome into the narrator prompt.
func (tp *TurnProcessor) resolveCombat(gs *state.GameState, r *rng.RNG, prompt *narrative.TurnPrompt) []state.GameEvent {
	enemy := combat.GenerateEnemy(gs, r)
	result := combat.AutoResolve(gs, enemy, r)

	outcome := "defeated"
	if result.Victory {
		outcome = "victorious"
	}
	prompt.ScenePrompt += fmt.Sprintf(
		"\nCombat already resolved: the player fought %s (%s) for %d rounds and was %s, dealing %d and taking %d damage. Narrate this fight.",
		enemy.Name, enemy.NameEN, result.Rounds, outcome, result.DamageDealt, result.DamageTaken)

	return []state.GameEvent{state.NewEvent(state.EventCombat,
		"enemy_id", result.EnemyID,
		"enemy_name", result.EnemyName,
		"victory", result.Victory,
		"rounds", result.Rounds,
		"damage_dealt", result.DamageDealt,
		"damage_taken", result.DamageTaken,
	)}
}

// generate invokes the narrator and falls back to the deterministic
// proposal on any error or malformed shape.
func (tp *TurnProcessor) generate(ctx context.Context, prompt narrative.TurnPrompt, log *slog.Logger) *narrative.Proposal {
	proposal, err := tp.narrator.GenerateTurn(ctx, prompt)
	if err == nil {
		err = proposal.Validate()
	}
	if err != nil {
		log.Warn("narrator failed, using fallback proposal", "error", err)
		return services.Fallback(prompt)
	}
	return proposal
}

// checkBreakthroughs performs the qi check then the body check, emitting an
// event for each breakthrough that lands.
func (tp *TurnProcessor) checkBreakthroughs(gs *state.GameState) []state.GameEvent {
	var events []state.GameEvent
	if cultivation.CanBreakthrough(gs) {
		if reward, ok := cultivation.PerformBreakthrough(gs); ok {
			events = append(events, state.NewEvent(state.EventBreakthrough,
				"realm", string(gs.Progress.Realm),
				"stage", gs.Progress.RealmStage,
				"hp_max_gain", reward.HPMax,
				"qi_max_gain", reward.QiMax,
			))
		}
	}
	if cultivation.CanBodyBreakthrough(gs) {
		if reward, ok := cultivation.PerformBodyBreakthrough(gs); ok {
			events = append(events, state.NewEvent(state.EventBodyBreakthrough,
				"body_realm", string(gs.Progress.BodyRealm),
				"body_stage", gs.Progress.BodyStage,
				"hp_max_gain", reward.HPMax,
			))
		}
	}
	return events
}

// rollSummary folds the latest narratives into the rolling summary, capped
// at summaryMaxChars runes with the newest content kept.
func rollSummary(previous string, latest []string) string {
	s := previous
	for _, entry := range latest {
		if entry == "" {
			continue
		}
		if s != "" {
			s += " "
		}
		s += entry
	}
	runes := []rune(s)
	if len(runes) > summaryMaxChars {
		runes = runes[len(runes)-summaryMaxChars:]
	}
	return string(runes)
}
