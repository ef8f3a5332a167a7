// Package loot implements weighted-table loot generation and gear
// enhancement. Both draw exclusively from the turn RNG, so outcomes are
// reproducible for a given turn seed.
package loot

import (
	"fmt"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Entry is one weighted candidate in a loot table.
type Entry struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	NameEN string         `json:"name_en,omitempty" yaml:"name_en,omitempty"`
	Type   state.ItemType `json:"type" yaml:"type"`
	Rarity string         `json:"rarity,omitempty" yaml:"rarity,omitempty"`
	Weight int            `json:"weight" yaml:"weight"`
}

// Table is a static loot table, loaded from the content directory.
type Table struct {
	ID      string  `json:"id" yaml:"id"`
	Entries []Entry `json:"entries" yaml:"entries"`

	SilverRange       Range   `json:"silver_range" yaml:"silver_range"`
	SpiritStoneChance float64 `json:"spirit_stone_chance" yaml:"spirit_stone_chance"`
	SpiritStoneRange  Range   `json:"spirit_stone_range" yaml:"spirit_stone_range"`
}

// Yield is the result of one loot generation.
type Yield struct {
	Silver       int          `json:"silver"`
	SpiritStones int          `json:"spirit_stones"`
	Items        []state.Item `json:"items"`
}

// Generate rolls a yield from the table: silver uniform in range, spirit
// stones by chance then uniform in range, then 1-3 entries by cumulative
// weight. Generated items default to quantity 1; the caller stacks them
// into inventory by (id, type).
func Generate(tbl *Table, r *rng.RNG) (Yield, error) {
	if tbl == nil {
		return Yield{}, fmt.Errorf("nil loot table")
	}

	var y Yield
	if tbl.SilverRange.Max > 0 {
		y.Silver = r.IntRange(tbl.SilverRange.Min, tbl.SilverRange.Max)
	}
	if tbl.SpiritStoneChance > 0 && r.Chance(tbl.SpiritStoneChance) {
		y.SpiritStones = r.IntRange(tbl.SpiritStoneRange.Min, tbl.SpiritStoneRange.Max)
	}

	if len(tbl.Entries) == 0 {
		return y, nil
	}

	weights := make([]int, len(tbl.Entries))
	for i, e := range tbl.Entries {
		weights[i] = e.Weight
	}

	drops := r.IntRange(1, 3)
	for i := 0; i < drops; i++ {
		idx := r.WeightedIndex(weights)
		if idx < 0 {
			break
		}
		e := tbl.Entries[idx]
		y.Items = append(y.Items, state.Item{
			ID:       e.ID,
			Name:     e.Name,
			NameEN:   e.NameEN,
			Type:     e.Type,
			Rarity:   e.Rarity,
			Quantity: 1,
		})
	}
	return y, nil
}

// MergeIntoState stacks a yield into the game state's inventory and
// currency pools.
func MergeIntoState(gs *state.GameState, y Yield) {
	gs.Stats.AddSilver(y.Silver)
	gs.Stats.AddSpiritStones(y.SpiritStones)
	for _, it := range y.Items {
		gs.AddItem(it)
	}
}

// Validate checks table integrity: at least one entry with positive weight
// and sane ranges. Used by the content validator CLI.
func (t *Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("loot table missing id")
	}
	positive := false
	for i, e := range t.Entries {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("loot table %s: entry %d missing id or name", t.ID, i)
		}
		if e.Weight < 0 {
			return fmt.Errorf("loot table %s: entry %s has negative weight", t.ID, e.ID)
		}
		if e.Weight > 0 {
			positive = true
		}
	}
	if len(t.Entries) > 0 && !positive {
		return fmt.Errorf("loot table %s: no entry with positive weight", t.ID)
	}
	if t.SilverRange.Min < 0 || t.SilverRange.Max < t.SilverRange.Min {
		return fmt.Errorf("loot table %s: invalid silver range", t.ID)
	}
	if t.SpiritStoneChance < 0 || t.SpiritStoneChance > 1 {
		return fmt.Errorf("loot table %s: spirit stone chance out of [0,1]", t.ID)
	}
	return nil
}
