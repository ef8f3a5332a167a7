// Package engine applies narrator-proposed deltas to game state. Proposals
// are untrusted: every delta is parsed, validated and clamped independently,
// and a bad one is logged and skipped without aborting the batch.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/hmnguyen-dev/tutien-engine/pkg/cultivation"
	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Per-turn clamp ceilings. The narrator can request anything; these bound
// what actually lands.
const (
	MaxStatDelta           = 100
	MaxAttrDelta           = 5
	MaxKarmaDelta          = 20
	MaxExpBase             = 100
	MaxSilverGain          = 1000
	MaxSpiritStoneGain     = 100
	MaxSkillExpGain        = 50
	MaxSectStandingDelta   = 50  // contribution/reputation per delta
	MaxMissionContribution = 100 // mission base, before the rank multiplier
	dualQiShare            = 70  // fixed qi share of the dual path
)

// LootTableFunc resolves a loot table ID to its table, nil when unknown.
type LootTableFunc func(id string) *loot.Table

// DeltaWorker applies one batch of proposed deltas to a game state.
type DeltaWorker struct {
	gs     *state.GameState
	deltas []state.ProposedDelta
	logger *slog.Logger
	r      *rng.RNG
	tables LootTableFunc
}

// NewDeltaWorker creates a worker for the batch. The logger is required;
// pass slog.Default() if nothing better is wired.
func NewDeltaWorker(gs *state.GameState, deltas []state.ProposedDelta, logger *slog.Logger) *DeltaWorker {
	return &DeltaWorker{gs: gs, deltas: deltas, logger: logger}
}

// WithRNG sets the turn RNG used by loot generation.
// Returns the DeltaWorker for method chaining.
func (dw *DeltaWorker) WithRNG(r *rng.RNG) *DeltaWorker {
	dw.r = r
	return dw
}

// WithLootTables sets the loot table lookup.
// Returns the DeltaWorker for method chaining.
func (dw *DeltaWorker) WithLootTables(fn LootTableFunc) *DeltaWorker {
	dw.tables = fn
	return dw
}

// Apply processes every delta in order and returns the events produced.
// Each delta is isolated: a parse error, validation failure or panic skips
// that delta only, and mutations from earlier deltas stand.
func (dw *DeltaWorker) Apply() []state.GameEvent {
	var events []state.GameEvent
	for i, pd := range dw.deltas {
		evs, err := dw.applyOne(pd)
		if err != nil {
			dw.logger.Warn("skipping proposed delta",
				"index", i,
				"field", pd.Field,
				"error", err)
			continue
		}
		events = append(events, evs...)
	}
	dw.gs.Stats.ClampAll()
	return events
}

func (dw *DeltaWorker) applyOne(pd state.ProposedDelta) (events []state.GameEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = fmt.Errorf("panic applying delta: %v", r)
		}
	}()

	d, err := state.ParseDelta(pd)
	if err != nil {
		return nil, err
	}

	switch d := d.(type) {
	case state.StatDelta:
		dw.applyStat(d)
	case state.AttributeDelta:
		dw.applyAttribute(d)
	case state.KarmaDelta:
		dw.applyKarma(d)
	case state.ProgressDelta:
		return dw.applyProgress(d)
	case state.InventoryDelta:
		return dw.applyInventory(d)
	case state.SkillDelta:
		return dw.applySkill(d)
	case state.TechniqueDelta:
		return nil, dw.applyTechnique(d)
	case state.SectDelta:
		return dw.applySect(d)
	case state.LocationDelta:
		dw.gs.Location = d.Value
	case state.UnknownDelta:
		dw.logger.Debug("ignoring unknown delta field", "field", d.Field)
	}
	return nil, nil
}

// applyStat resolves set/multiply to an equivalent add against the current
// value, clamps the magnitude, then applies through the bounded mutators.
func (dw *DeltaWorker) applyStat(d state.StatDelta) {
	s := &dw.gs.Stats

	current := map[string]int{
		"hp": s.HP, "qi": s.Qi, "stamina": s.Stamina,
		"hp_max": s.HPMax, "qi_max": s.QiMax, "stamina_max": s.StaminaMax,
	}[d.Stat]

	var delta int
	switch d.Op {
	case state.OpSet:
		delta = d.Value - current
	case state.OpMultiply:
		delta = int(float64(current)*d.Factor) - current
	case state.OpSubtract:
		delta = -d.Value
	default:
		delta = d.Value
	}

	if delta > MaxStatDelta {
		delta = MaxStatDelta
	} else if delta < -MaxStatDelta {
		delta = -MaxStatDelta
	}

	switch d.Stat {
	case "hp":
		s.AddHP(delta)
	case "qi":
		s.AddQi(delta)
	case "stamina":
		s.AddStamina(delta)
	case "hp_max":
		s.HPMax += delta
	case "qi_max":
		s.QiMax += delta
	case "stamina_max":
		s.StaminaMax += delta
	}
	s.ClampAll()
}

// applyAttribute clamps the change to [0, MaxAttrDelta]: attributes never
// decrease from a proposal, and rise at most 5 per delta.
func (dw *DeltaWorker) applyAttribute(d state.AttributeDelta) {
	v := d.Value
	if v < 0 {
		v = 0
	}
	if v > MaxAttrDelta {
		v = MaxAttrDelta
	}
	if v == 0 {
		return
	}
	dw.gs.Attributes.Add(d.Attr, v)
}

func (dw *DeltaWorker) applyKarma(d state.KarmaDelta) {
	v := d.Value
	if v > MaxKarmaDelta {
		v = MaxKarmaDelta
	} else if v < -MaxKarmaDelta {
		v = -MaxKarmaDelta
	}
	dw.gs.Karma += v
}

func (dw *DeltaWorker) applyProgress(d state.ProgressDelta) ([]state.GameEvent, error) {
	gs := dw.gs
	switch d.Field {
	case "cultivation_exp":
		base := d.Value
		if base <= 0 {
			return nil, nil
		}
		if base > MaxExpBase {
			base = MaxExpBase
		}
		gain := cultivation.ExpGain(gs, base)
		if gs.Progress.CultivationPath == state.PathDual {
			// The dual path splits at a fixed 70/30 here; the explicit
			// dual-cultivation action honors the configurable ExpSplit.
			qi := gain * dualQiShare / 100
			gs.Progress.CultivationExp += qi
			gs.Progress.BodyExp += gain - qi
		} else if gs.Progress.CultivationPath == state.PathBody {
			gs.Progress.BodyExp += gain
		} else {
			gs.Progress.CultivationExp += gain
		}
	case "body_exp":
		base := d.Value
		if base <= 0 {
			return nil, nil
		}
		if base > MaxExpBase {
			base = MaxExpBase
		}
		gs.Progress.BodyExp += base
	case "cultivation_path":
		gs.Progress.CultivationPath = d.Path
	}
	return nil, nil
}

func (dw *DeltaWorker) applyInventory(d state.InventoryDelta) ([]state.GameEvent, error) {
	gs := dw.gs
	switch d.Action {
	case "add_item":
		if state.IsAbilityType(d.Item.Type) {
			return nil, fmt.Errorf("item %s has ability type %s; skills and techniques are not inventory", d.Item.ID, d.Item.Type)
		}
		gs.AddItem(*d.Item)
	case "remove_item":
		qty := d.Item.Quantity
		if qty <= 0 {
			qty = 1
		}
		gs.RemoveItem(d.Item.ID, d.Item.Type, qty)
	case "silver":
		v := d.Amount
		if v > MaxSilverGain {
			v = MaxSilverGain
		}
		gs.Stats.AddSilver(v)
	case "spirit_stones":
		v := d.Amount
		if v > MaxSpiritStoneGain {
			v = MaxSpiritStoneGain
		}
		gs.Stats.AddSpiritStones(v)
	case "loot":
		return dw.applyLoot(d.TableID)
	}
	return nil, nil
}

func (dw *DeltaWorker) applyLoot(tableID string) ([]state.GameEvent, error) {
	if dw.tables == nil {
		return nil, fmt.Errorf("loot delta for table %s: no loot tables wired", tableID)
	}
	if dw.r == nil {
		return nil, fmt.Errorf("loot delta for table %s: no rng wired", tableID)
	}
	tbl := dw.tables(tableID)
	if tbl == nil {
		return nil, fmt.Errorf("unknown loot table %s", tableID)
	}
	yield, err := loot.Generate(tbl, dw.r)
	if err != nil {
		return nil, err
	}
	loot.MergeIntoState(dw.gs, yield)

	itemIDs := make([]string, len(yield.Items))
	for i, it := range yield.Items {
		itemIDs[i] = it.ID
	}
	return []state.GameEvent{state.NewEvent(state.EventLoot,
		"table", tableID,
		"silver", yield.Silver,
		"spirit_stones", yield.SpiritStones,
		"items", itemIDs,
	)}, nil
}

func (dw *DeltaWorker) applySkill(d state.SkillDelta) ([]state.GameEvent, error) {
	gs := dw.gs
	switch d.Action {
	case "add":
		if gs.HasSkill(d.Skill.ID) {
			return nil, fmt.Errorf("skill %s already known", d.Skill.ID)
		}
		gs.AddSkill(*d.Skill)
	case "gain_exp":
		sk := gs.SkillByID(d.SkillID)
		if sk == nil {
			return nil, fmt.Errorf("skill %s not in active list", d.SkillID)
		}
		exp := d.Exp
		if exp > MaxSkillExpGain {
			exp = MaxSkillExpGain
		}
		if levels := sk.GainExp(exp); levels > 0 {
			return []state.GameEvent{state.NewEvent(state.EventSkillLevelUp,
				"skill_id", sk.ID,
				"skill_name", sk.Name,
				"level", sk.Level,
				"levels_gained", levels,
			)}, nil
		}
	}
	return nil, nil
}

func (dw *DeltaWorker) applyTechnique(d state.TechniqueDelta) error {
	if dw.gs.HasTechnique(d.Technique.ID) {
		return fmt.Errorf("technique %s already known", d.Technique.ID)
	}
	dw.gs.AddTechnique(*d.Technique)
	return nil
}

// clampStanding bounds a sect contribution or reputation increment.
func clampStanding(v int) int {
	if v > MaxSectStandingDelta {
		return MaxSectStandingDelta
	}
	if v < -MaxSectStandingDelta {
		return -MaxSectStandingDelta
	}
	return v
}

func (dw *DeltaWorker) applySect(d state.SectDelta) ([]state.GameEvent, error) {
	gs := dw.gs
	switch d.Action {
	case "join":
		if gs.SectMembership != nil {
			return nil, fmt.Errorf("already a member of %s", gs.SectMembership.SectName)
		}
		m := *d.Membership
		m.JoinedTurn = gs.TurnCount + 1
		gs.JoinSect(m)
		return []state.GameEvent{state.NewEvent(state.EventSectJoin,
			"sect_id", m.SectID,
			"sect_name", m.SectName,
			"rank", string(gs.SectMembership.Rank),
		)}, nil
	case "leave":
		if gs.SectMembership == nil {
			return nil, fmt.Errorf("not in a sect")
		}
		name := gs.SectMembership.SectName
		gs.LeaveSect()
		return []state.GameEvent{state.NewEvent(state.EventSectExpulsion,
			"sect_name", name,
		)}, nil
	case "promote":
		if gs.SectMembership == nil {
			return nil, fmt.Errorf("cannot promote: not in a sect")
		}
		gs.SectMembership.Rank = d.Rank
		gs.SectMembership.Benefits = state.BenefitsForRank(d.Rank)
		return []state.GameEvent{state.NewEvent(state.EventSectPromotion,
			"sect_name", gs.SectMembership.SectName,
			"rank", string(d.Rank),
		)}, nil
	case "contribution":
		if gs.SectMembership == nil {
			return nil, fmt.Errorf("cannot add contribution: not in a sect")
		}
		gs.SectMembership.Contribution += clampStanding(d.Amount)
		if gs.SectMembership.Contribution < 0 {
			gs.SectMembership.Contribution = 0
		}
	case "reputation":
		if gs.SectMembership == nil {
			return nil, fmt.Errorf("cannot add reputation: not in a sect")
		}
		gs.SectMembership.Reputation += clampStanding(d.Amount)
	case "mission":
		if gs.SectMembership == nil {
			return nil, fmt.Errorf("cannot complete mission: not in a sect")
		}
		base := d.Amount
		if base < 0 {
			base = 0
		} else if base > MaxMissionContribution {
			base = MaxMissionContribution
		}
		reward := int(float64(base) * gs.SectMembership.Benefits.MissionReward)
		gs.SectMembership.Contribution += reward
		return []state.GameEvent{state.NewEvent(state.EventSectMission,
			"mission_id", d.MissionID,
			"contribution", reward,
		)}, nil
	}
	return nil, nil
}
