// Package combat implements deterministic multi-round combat resolution.
// All randomness flows through the turn RNG, so a full encounter replays
// identically for a given turn seed.
package combat

import (
	"fmt"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Enemy is an ephemeral combat-only entity, constructed fresh per encounter
// and never persisted beyond the resolution that created it.
type Enemy struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en,omitempty"`

	HP      int `json:"hp"`
	HPMax   int `json:"hp_max"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`

	Agility    int `json:"agility"`
	Perception int `json:"perception"`
	Luck       int `json:"luck"`

	// Tier scales rewards; roughly the player's realm index at generation.
	Tier int `json:"tier"`
}

var enemyArchetypes = []struct {
	id     string
	name   string
	nameEN string
	hp     int
	attack int
	def    int
	agi    int
}{
	{"wild_beast", "Dã Thú", "Wild Beast", 60, 8, 2, 8},
	{"rogue_cultivator", "Tán Tu", "Rogue Cultivator", 90, 12, 5, 12},
	{"demonic_wolf", "Yêu Lang", "Demonic Wolf", 75, 14, 3, 16},
	{"bandit", "Sơn Tặc", "Mountain Bandit", 80, 10, 6, 10},
	{"corpse_puppet", "Thi Khôi", "Corpse Puppet", 130, 9, 10, 4},
}

// GenerateEnemy rolls a fresh enemy scaled to the player's realm. The draw
// order (archetype, then each stat) is fixed so generation is reproducible.
func GenerateEnemy(gs *state.GameState, r *rng.RNG) *Enemy {
	tier := state.RealmIndex(gs.Progress.Realm)
	if tier < 0 {
		tier = 0
	}
	arch := enemyArchetypes[r.IntRange(0, len(enemyArchetypes)-1)]

	// Realm tier scales stats multiplicatively; the variance rolls keep
	// encounters from being identical within a tier.
	scale := 1 + tier
	hp := arch.hp*scale + r.IntRange(0, 20*scale)
	return &Enemy{
		ID:         fmt.Sprintf("%s_t%d", arch.id, tier),
		Name:       arch.name,
		NameEN:     arch.nameEN,
		HP:         hp,
		HPMax:      hp,
		Attack:     arch.attack*scale + r.IntRange(0, 4*scale),
		Defense:    arch.def*scale + r.IntRange(0, 2*scale),
		Agility:    arch.agi + r.IntRange(0, 4),
		Perception: 8 + r.IntRange(0, 4),
		Luck:       5 + r.IntRange(0, 5),
		Tier:       tier,
	}
}
