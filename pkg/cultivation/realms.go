// Package cultivation implements the progression ladders: required-exp
// tables, exp-gain multipliers, and the breakthrough state machines for the
// qi and body paths.
package cultivation

import (
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Per-realm required-exp tables. Stages 1-9 index entries 0-8; stage 0 of
// the entry realm uses the single realm-entry threshold.
var qiStageExp = map[state.Realm][]int{
	state.RealmMortal:      {100},
	state.RealmQiRefining:  {100, 200, 300, 450, 600, 800, 1000, 1300, 1600},
	state.RealmFoundation:  {2000, 2600, 3200, 4000, 5000, 6200, 7600, 9200, 11000},
	state.RealmGoldenCore:  {12000, 15000, 18000, 22000, 26000, 31000, 37000, 44000, 52000},
	state.RealmNascentSoul: {60000, 72000, 86000, 102000, 120000, 140000, 165000, 195000, 230000},
}

var bodyStageExp = map[state.BodyRealm][]int{
	state.BodyRealmMortal:    {100},
	state.BodyRealmTempering: {120, 240, 380, 540, 720, 940, 1200, 1500, 1850},
	state.BodyRealmIron:      {2400, 3100, 3900, 4800, 5900, 7200, 8700, 10400, 12300},
	state.BodyRealmJade:      {14000, 17500, 21500, 26000, 31000, 37000, 44000, 52000, 61000},
	state.BodyRealmSaint:     {70000, 84000, 100000, 118000, 138000, 161000, 187000, 216000, 248000},
}

// Reward is the stat/attribute bundle granted by a breakthrough.
type Reward struct {
	HPMax       int
	QiMax       int
	StaminaMax  int
	Strength    int
	Agility     int
	Intellect   int
	MaxLifespan int
}

// Realm-entry rewards, applied when crossing into the realm.
var qiRealmEntryReward = map[state.Realm]Reward{
	state.RealmQiRefining:  {HPMax: 50, QiMax: 100, MaxLifespan: 20},
	state.RealmFoundation:  {HPMax: 150, QiMax: 300, Intellect: 2, MaxLifespan: 50},
	state.RealmGoldenCore:  {HPMax: 400, QiMax: 800, Intellect: 4, MaxLifespan: 120},
	state.RealmNascentSoul: {HPMax: 1000, QiMax: 2000, Intellect: 8, MaxLifespan: 300},
}

// Per-stage rewards within a realm.
var qiStageReward = map[state.Realm]Reward{
	state.RealmQiRefining:  {HPMax: 10, QiMax: 20},
	state.RealmFoundation:  {HPMax: 30, QiMax: 60, Intellect: 1},
	state.RealmGoldenCore:  {HPMax: 80, QiMax: 160, Intellect: 1},
	state.RealmNascentSoul: {HPMax: 200, QiMax: 400, Intellect: 2},
}

// Body rewards are HP/strength/stamina flavored instead of qi flavored.
var bodyRealmEntryReward = map[state.BodyRealm]Reward{
	state.BodyRealmTempering: {HPMax: 80, StaminaMax: 40, Strength: 2, MaxLifespan: 10},
	state.BodyRealmIron:      {HPMax: 220, StaminaMax: 100, Strength: 4, MaxLifespan: 30},
	state.BodyRealmJade:      {HPMax: 550, StaminaMax: 220, Strength: 8, MaxLifespan: 80},
	state.BodyRealmSaint:     {HPMax: 1300, StaminaMax: 500, Strength: 16, MaxLifespan: 200},
}

var bodyStageReward = map[state.BodyRealm]Reward{
	state.BodyRealmTempering: {HPMax: 15, StaminaMax: 8, Strength: 1},
	state.BodyRealmIron:      {HPMax: 45, StaminaMax: 18, Strength: 1},
	state.BodyRealmJade:      {HPMax: 110, StaminaMax: 40, Strength: 2},
	state.BodyRealmSaint:     {HPMax: 260, StaminaMax: 90, Strength: 3},
}

// MaxStage is the top minor stage of every non-entry realm.
const MaxStage = 9

// RequiredExp returns the cultivation exp needed to break through from the
// given realm and stage. Returns 0 and false past the top of the ladder or
// for an unknown realm.
func RequiredExp(realm state.Realm, stage int) (int, bool) {
	table, ok := qiStageExp[realm]
	if !ok {
		return 0, false
	}
	if realm == state.RealmMortal {
		// Entry realm: a single threshold at stage 0.
		return table[0], true
	}
	if stage < 1 || stage > MaxStage {
		return 0, false
	}
	if stage == MaxStage && state.RealmIndex(realm) == len(state.Realms)-1 {
		// Top of the ladder.
		return 0, false
	}
	return table[stage-1], true
}

// RequiredBodyExp mirrors RequiredExp for the body ladder.
func RequiredBodyExp(realm state.BodyRealm, stage int) (int, bool) {
	table, ok := bodyStageExp[realm]
	if !ok {
		return 0, false
	}
	if realm == state.BodyRealmMortal {
		return table[0], true
	}
	if stage < 1 || stage > MaxStage {
		return 0, false
	}
	if stage == MaxStage && state.BodyRealmIndex(realm) == len(state.BodyRealms)-1 {
		return 0, false
	}
	return table[stage-1], true
}

// CanBreakthrough reports whether accumulated qi cultivation exp meets the
// current stage requirement.
func CanBreakthrough(gs *state.GameState) bool {
	req, ok := RequiredExp(gs.Progress.Realm, gs.Progress.RealmStage)
	if !ok {
		return false
	}
	return gs.Progress.CultivationExp >= req
}

// CanBodyBreakthrough reports whether accumulated body exp meets the current
// body-stage requirement.
func CanBodyBreakthrough(gs *state.GameState) bool {
	req, ok := RequiredBodyExp(gs.Progress.BodyRealm, gs.Progress.BodyStage)
	if !ok {
		return false
	}
	return gs.Progress.BodyExp >= req
}

// PerformBreakthrough advances the qi ladder by one step: stage+1 within a
// realm, or entry into the next realm at stage 1 when the top stage is
// passed. Exp resets to zero and HP/Qi refill to the new max. Returns the
// reward applied and false when no breakthrough is possible.
func PerformBreakthrough(gs *state.GameState) (Reward, bool) {
	if !CanBreakthrough(gs) {
		return Reward{}, false
	}
	p := &gs.Progress

	var reward Reward
	if p.Realm == state.RealmMortal || p.RealmStage >= MaxStage {
		// Realm transition.
		idx := state.RealmIndex(p.Realm)
		if idx < 0 || idx+1 >= len(state.Realms) {
			return Reward{}, false
		}
		next := state.Realms[idx+1]
		reward = qiRealmEntryReward[next]
		p.Realm = next
		p.RealmStage = 1
	} else {
		reward = qiStageReward[p.Realm]
		p.RealmStage++
	}

	p.CultivationExp = 0
	applyReward(gs, reward)
	gs.Stats.HP = gs.Stats.HPMax
	gs.Stats.Qi = gs.Stats.QiMax
	return reward, true
}

// PerformBodyBreakthrough mirrors PerformBreakthrough on the body ladder.
func PerformBodyBreakthrough(gs *state.GameState) (Reward, bool) {
	if !CanBodyBreakthrough(gs) {
		return Reward{}, false
	}
	p := &gs.Progress

	var reward Reward
	if p.BodyRealm == state.BodyRealmMortal || p.BodyStage >= MaxStage {
		idx := state.BodyRealmIndex(p.BodyRealm)
		if idx < 0 || idx+1 >= len(state.BodyRealms) {
			return Reward{}, false
		}
		next := state.BodyRealms[idx+1]
		reward = bodyRealmEntryReward[next]
		p.BodyRealm = next
		p.BodyStage = 1
	} else {
		reward = bodyStageReward[p.BodyRealm]
		p.BodyStage++
	}

	p.BodyExp = 0
	applyReward(gs, reward)
	gs.Stats.HP = gs.Stats.HPMax
	gs.Stats.Qi = gs.Stats.QiMax
	return reward, true
}

func applyReward(gs *state.GameState, r Reward) {
	gs.Stats.HPMax += r.HPMax
	gs.Stats.QiMax += r.QiMax
	gs.Stats.StaminaMax += r.StaminaMax
	gs.Attributes.Strength += r.Strength
	gs.Attributes.Agility += r.Agility
	gs.Attributes.Intelligence += r.Intellect
	if r.MaxLifespan > 0 {
		gs.Calendar.MaxLifespan += r.MaxLifespan
		gs.Calendar.RefreshLifespanTier()
	}
}
