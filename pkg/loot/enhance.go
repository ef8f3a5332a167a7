package loot

import (
	"fmt"
	"math"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Enhancement material item IDs, escalating rarity.
const (
	MaterialCommonStone    = "enh_stone_common"
	MaterialRefinedStone   = "enh_stone_refined"
	MaterialSuperiorStone  = "enh_stone_superior"
	MaterialPristineStone  = "enh_stone_pristine"
	MaterialCelestialStone = "enh_stone_celestial"
)

// LevelConfig defines the cost and odds of enhancing gear to a level.
type LevelConfig struct {
	SilverCost  int
	SuccessRate float64
	MaterialID  string
	MaterialQty int
}

// enhanceLevels maps target level (1..10) to its config. Success rate is
// monotonically decreasing from 1.00 at level 1 to 0.35 at level 10.
var enhanceLevels = map[int]LevelConfig{
	1:  {SilverCost: 100, SuccessRate: 1.00, MaterialID: MaterialCommonStone, MaterialQty: 1},
	2:  {SilverCost: 200, SuccessRate: 0.95, MaterialID: MaterialCommonStone, MaterialQty: 1},
	3:  {SilverCost: 400, SuccessRate: 0.90, MaterialID: MaterialCommonStone, MaterialQty: 2},
	4:  {SilverCost: 700, SuccessRate: 0.80, MaterialID: MaterialRefinedStone, MaterialQty: 2},
	5:  {SilverCost: 1100, SuccessRate: 0.70, MaterialID: MaterialRefinedStone, MaterialQty: 3},
	6:  {SilverCost: 1600, SuccessRate: 0.60, MaterialID: MaterialSuperiorStone, MaterialQty: 3},
	7:  {SilverCost: 2200, SuccessRate: 0.55, MaterialID: MaterialSuperiorStone, MaterialQty: 4},
	8:  {SilverCost: 3000, SuccessRate: 0.48, MaterialID: MaterialPristineStone, MaterialQty: 4},
	9:  {SilverCost: 4000, SuccessRate: 0.40, MaterialID: MaterialPristineStone, MaterialQty: 5},
	10: {SilverCost: 5200, SuccessRate: 0.35, MaterialID: MaterialCelestialStone, MaterialQty: 5},
}

// EnhanceConfig returns the config for enhancing to the target level.
func EnhanceConfig(targetLevel int) (LevelConfig, bool) {
	cfg, ok := enhanceLevels[targetLevel]
	return cfg, ok
}

// EnhanceResult reports the outcome of an enhancement attempt.
type EnhanceResult struct {
	Success      bool   `json:"success"`
	NewLevel     int    `json:"new_level"`
	SilverSpent  int    `json:"silver_spent"`
	MaterialID   string `json:"material_id"`
	MaterialUsed int    `json:"material_used"`
}

// Enhance attempts to raise an item's enhancement level by one. Costs are
// verified up front, then fully deducted before the success roll; a failed
// roll keeps the costs spent with no refund. Because equipment slots
// reference the owned inventory entry, success needs no second copy to sync.
func Enhance(gs *state.GameState, itemID string, r *rng.RNG) (*EnhanceResult, error) {
	item := gs.ItemByID(itemID)
	if item == nil {
		return nil, fmt.Errorf("item %s not in inventory", itemID)
	}
	target := item.EnhancementLevel + 1
	if target > state.MaxEnhancementLevel {
		return nil, fmt.Errorf("item %s is already at max enhancement level", itemID)
	}
	cfg, ok := EnhanceConfig(target)
	if !ok {
		return nil, fmt.Errorf("no enhancement config for level %d", target)
	}

	if gs.Stats.Silver < cfg.SilverCost {
		return nil, fmt.Errorf("insufficient silver: need %d, have %d", cfg.SilverCost, gs.Stats.Silver)
	}
	mat := gs.FindItem(cfg.MaterialID, state.ItemTypeMaterial)
	if mat == nil || mat.Quantity < cfg.MaterialQty {
		return nil, fmt.Errorf("insufficient material %s: need %d", cfg.MaterialID, cfg.MaterialQty)
	}

	// Costs are spent before the roll and never refunded.
	gs.Stats.AddSilver(-cfg.SilverCost)
	gs.RemoveItem(cfg.MaterialID, state.ItemTypeMaterial, cfg.MaterialQty)

	// Material removal can shift the inventory slice; re-resolve the item.
	item = gs.ItemByID(itemID)
	if item == nil {
		return nil, fmt.Errorf("item %s lost during cost deduction", itemID)
	}

	res := &EnhanceResult{
		NewLevel:     item.EnhancementLevel,
		SilverSpent:  cfg.SilverCost,
		MaterialID:   cfg.MaterialID,
		MaterialUsed: cfg.MaterialQty,
	}

	if !r.Chance(cfg.SuccessRate) {
		return res, nil
	}

	item.EnhancementLevel = target
	res.Success = true
	res.NewLevel = target
	recomputeBonusStats(item)
	return res, nil
}

// recomputeBonusStats derives bonus stats from base stats at the current
// enhancement level: round(base x (1 + 0.10 x L)).
func recomputeBonusStats(item *state.Item) {
	if len(item.BaseStats) == 0 {
		return
	}
	if item.BonusStats == nil {
		item.BonusStats = make(map[string]int, len(item.BaseStats))
	}
	for stat, base := range item.BaseStats {
		item.BonusStats[stat] = BonusStat(base, item.EnhancementLevel)
	}
}

// BonusStat computes the derived stat bonus for a base stat at an
// enhancement level.
func BonusStat(base, level int) int {
	return int(math.Round(float64(base) * (1 + 0.10*float64(level))))
}
