package state

import "time"

// Migrate upgrades an older save in place to the current schema. Migrations
// are additive and idempotent: missing optional fields get defaults, nothing
// is ever removed. The orchestrator runs this once at the load boundary,
// never interleaved with turn logic. Returns true when anything changed.
func Migrate(gs *GameState) bool {
	changed := false

	if gs.SchemaVersion < 1 {
		// v1 introduced the explicit cultivation path and body ladder.
		if gs.Progress.CultivationPath == "" {
			gs.Progress.CultivationPath = PathQi
			changed = true
		}
		if gs.Progress.BodyRealm == "" {
			gs.Progress.BodyRealm = BodyRealmMortal
			changed = true
		}
		gs.SchemaVersion = 1
		changed = true
	}

	if gs.SchemaVersion < 2 {
		// v2 introduced slot->ID equipment references and the exp split.
		if gs.Equipment == nil {
			gs.Equipment = make(map[EquipSlot]string)
			changed = true
		}
		if gs.Progress.ExpSplit == 0 {
			gs.Progress.ExpSplit = 70
			changed = true
		}
		gs.SchemaVersion = 2
		changed = true
	}

	if gs.SchemaVersion < 3 {
		// v3 introduced the calendar lifespan tier and stamina regen anchor.
		if gs.Calendar.MaxLifespan == 0 {
			gs.Calendar.MaxLifespan = 80
			changed = true
		}
		if gs.Calendar.Lifespan == "" {
			gs.Calendar.RefreshLifespanTier()
			changed = true
		}
		if gs.StaminaRegenAt.IsZero() {
			gs.StaminaRegenAt = time.Now()
			changed = true
		}
		gs.SchemaVersion = 3
		changed = true
	}

	// Invariant repair is safe to run on every load.
	gs.NormalizeInventory()
	gs.Stats.ClampAll()

	return changed
}
