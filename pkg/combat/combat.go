package combat

import (
	"fmt"
	"math"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Action is a player combat action for one round.
type Action string

const (
	ActionAttack   Action = "attack"
	ActionDefend   Action = "defend"
	ActionQiAttack Action = "qi_attack"
	ActionSkill    Action = "skill"
)

// Tuning constants for the resolution formulas.
const (
	baseHitChance   = 0.85
	maxHitChance    = 0.99
	maxDodgeChance  = 0.40
	maxCritChance   = 0.50
	qiAttackCost    = 10
	MaxRounds       = 20
	autoQiThreshold = 20
)

// RoundResult records one resolved round for the combat log.
type RoundResult struct {
	Round        int    `json:"round"`
	Action       Action `json:"action"`
	SkillID      string `json:"skill_id,omitempty"`
	PlayerDamage int    `json:"player_damage"` // dealt by the player
	PlayerMissed bool   `json:"player_missed"`
	PlayerCrit   bool   `json:"player_crit"`
	EnemyDamage  int    `json:"enemy_damage"` // dealt by the enemy
	EnemyMissed  bool   `json:"enemy_missed"`
	PlayerDodged bool   `json:"player_dodged"`
	SkillLevelUp bool   `json:"skill_level_up,omitempty"`
}

// Result is the outcome of a resolved encounter.
type Result struct {
	Victory     bool          `json:"victory"`
	Rounds      int           `json:"rounds"`
	DamageDealt int           `json:"damage_dealt"`
	DamageTaken int           `json:"damage_taken"`
	EnemyID     string        `json:"enemy_id"`
	EnemyName   string        `json:"enemy_name"`
	Log         []RoundResult `json:"log,omitempty"`
}

// Encounter tracks mutable per-combat state: the enemy, round counter and
// skill cooldowns. The player side reads and writes the game state directly.
type Encounter struct {
	gs        *state.GameState
	enemy     *Enemy
	r         *rng.RNG
	round     int
	cooldowns map[string]int // skill ID -> rounds until usable
}

// NewEncounter starts an encounter against the enemy.
func NewEncounter(gs *state.GameState, enemy *Enemy, r *rng.RNG) *Encounter {
	return &Encounter{
		gs:        gs,
		enemy:     enemy,
		r:         r,
		cooldowns: make(map[string]int),
	}
}

// Over reports whether either side has fallen or the round cap was hit.
func (e *Encounter) Over() bool {
	return e.gs.Stats.HP <= 0 || e.enemy.HP <= 0 || e.round >= MaxRounds
}

// Enemy returns the encounter's enemy.
func (e *Encounter) Enemy() *Enemy { return e.enemy }

// ResolveRound resolves one round: the player acts, then the enemy swings
// back if still standing. skillID is only consulted for ActionSkill.
func (e *Encounter) ResolveRound(action Action, skillID string) (*RoundResult, error) {
	if e.Over() {
		return nil, fmt.Errorf("encounter is already over")
	}
	e.round++
	for id, cd := range e.cooldowns {
		if cd > 0 {
			e.cooldowns[id] = cd - 1
		}
	}

	res := &RoundResult{Round: e.round, Action: action, SkillID: skillID}

	switch action {
	case ActionAttack:
		e.playerStrike(res, false, 1.0)
	case ActionQiAttack:
		if e.gs.Stats.Qi < qiAttackCost {
			// Not enough qi: degrade to a normal attack.
			res.Action = ActionAttack
			e.playerStrike(res, false, 1.0)
		} else {
			e.gs.Stats.AddQi(-qiAttackCost)
			e.playerStrike(res, true, 1.0)
		}
	case ActionSkill:
		if err := e.playerSkill(res, skillID); err != nil {
			return nil, err
		}
	case ActionDefend:
		// No strike; the defend bonus applies to the enemy's swing below.
	default:
		return nil, fmt.Errorf("unknown combat action %q", action)
	}

	if e.enemy.HP > 0 {
		e.enemyStrike(res, action == ActionDefend)
	}
	return res, nil
}

func (e *Encounter) playerStrike(res *RoundResult, qi bool, multiplier float64) {
	attrs := &e.gs.Attributes

	// Dodge check on the defender happens before the attacker's accuracy.
	dodge := dodgeChance(e.enemy.Agility, e.enemy.Perception, e.enemy.Luck)
	if e.r.Chance(dodge) {
		res.PlayerMissed = true
		return
	}

	hit := hitChance(attrs.Perception)
	if !e.r.Chance(hit) {
		res.PlayerMissed = true
		return
	}

	var effAtk int
	var critChance, critMult float64
	if qi {
		effAtk = attrs.Intelligence*2 + attrs.Strength/2
		critChance = critChanceFor(attrs.Intelligence, attrs.Luck)
		critMult = 1.8 + float64(attrs.Intelligence)*0.005
	} else {
		effAtk = attrs.Strength + e.gs.EquipmentBonus("attack")
		critChance = critChanceFor(attrs.Strength, attrs.Luck)
		critMult = 1.5 + float64(attrs.Luck)*0.005
	}

	effDef := e.enemy.Defense + e.enemy.Agility/4

	crit := e.r.Chance(critChance)
	mult := 1.0
	if crit {
		mult = critMult
	}
	res.PlayerCrit = crit

	variance := e.r.IntRange(0, 5)
	dmg := damage(effAtk, effDef, mult*multiplier, variance)
	e.enemy.HP -= dmg
	res.PlayerDamage = dmg
}

func (e *Encounter) playerSkill(res *RoundResult, skillID string) error {
	sk := e.gs.SkillByID(skillID)
	if sk == nil {
		return fmt.Errorf("skill %s not learned", skillID)
	}
	if cd := e.cooldowns[sk.ID]; cd > 0 {
		return fmt.Errorf("skill %s on cooldown for %d more rounds", skillID, cd)
	}
	if e.gs.Stats.Qi < sk.QiCost {
		return fmt.Errorf("insufficient qi for %s: need %d", skillID, sk.QiCost)
	}

	e.gs.Stats.AddQi(-sk.QiCost)
	e.cooldowns[sk.ID] = sk.Cooldown

	e.playerStrike(res, !isPhysicalSkill(sk), sk.DamageMultiplier)

	// Using a skill grants it exp; it can level up mid-fight.
	if levels := sk.GainExp(10); levels > 0 {
		res.SkillLevelUp = true
	}
	return nil
}

// Attack and movement skills strike with the physical formula; support and
// defense skills channel qi.
func isPhysicalSkill(sk *state.Skill) bool {
	return sk.Type == state.SkillTypeAttack || sk.Type == state.SkillTypeMovement
}

func (e *Encounter) enemyStrike(res *RoundResult, defending bool) {
	attrs := &e.gs.Attributes

	// Player dodge: AGI/PER/LUCK derived, capped.
	dodge := dodgeChance(attrs.Agility, attrs.Perception, attrs.Luck)
	if e.r.Chance(dodge) {
		res.PlayerDodged = true
		return
	}

	hit := hitChance(e.enemy.Perception)
	if !e.r.Chance(hit) {
		res.EnemyMissed = true
		return
	}

	effDef := 2 + attrs.Agility/4 + e.gs.EquipmentBonus("defense")
	if defending {
		effDef += 5
	}

	crit := e.r.Chance(critChanceFor(e.enemy.Attack, e.enemy.Luck))
	mult := 1.0
	if crit {
		mult = 1.5
	}

	variance := e.r.IntRange(0, 5)
	dmg := damage(e.enemy.Attack, effDef, mult, variance)
	e.gs.Stats.AddHP(-dmg)
	res.EnemyDamage = dmg
}

// damage is the shared formula: floor(max(1, atk-def) x critMult + variance).
func damage(effAtk, effDef int, critMult float64, variance int) int {
	base := effAtk - effDef
	if base < 1 {
		base = 1
	}
	return int(math.Floor(float64(base)*critMult)) + variance
}

func hitChance(perception int) float64 {
	c := baseHitChance + float64(perception)*0.005
	if c > maxHitChance {
		c = maxHitChance
	}
	return c
}

func dodgeChance(agility, perception, luck int) float64 {
	c := float64(agility)*0.01 + float64(perception)*0.005 + float64(luck)*0.005
	if c > maxDodgeChance {
		c = maxDodgeChance
	}
	return c
}

func critChanceFor(primary, luck int) float64 {
	c := float64(primary)*0.005 + float64(luck)*0.01
	if c > maxCritChance {
		c = maxCritChance
	}
	return c
}

// AutoResolve runs rounds until one side falls or the round cap is hit,
// choosing qi-attack opportunistically when qi is above the threshold and a
// 50% chance passes, otherwise a normal attack.
func AutoResolve(gs *state.GameState, enemy *Enemy, r *rng.RNG) *Result {
	e := NewEncounter(gs, enemy, r)
	result := &Result{EnemyID: enemy.ID, EnemyName: enemy.Name}

	for !e.Over() {
		action := ActionAttack
		if gs.Stats.Qi >= autoQiThreshold && r.Chance(0.5) {
			action = ActionQiAttack
		}
		round, err := e.ResolveRound(action, "")
		if err != nil {
			break
		}
		result.Rounds = round.Round
		result.DamageDealt += round.PlayerDamage
		result.DamageTaken += round.EnemyDamage
		result.Log = append(result.Log, *round)
	}

	result.Victory = enemy.HP <= 0 && gs.Stats.HP > 0
	return result
}
