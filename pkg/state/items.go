package state

// ItemType categorizes inventory entries. Skill manuals and cultivation
// techniques are not inventory items; deltas that try to add them as items
// are rejected by the engine and must arrive as skills.add / techniques.add.
type ItemType string

const (
	ItemTypeWeapon     ItemType = "weapon"
	ItemTypeArmor      ItemType = "armor"
	ItemTypeAccessory  ItemType = "accessory"
	ItemTypePill       ItemType = "pill"
	ItemTypeMaterial   ItemType = "material"
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeMisc       ItemType = "misc"

	// Ability categories, valid on deltas but never stored in inventory.
	ItemTypeSkill     ItemType = "skill"
	ItemTypeTechnique ItemType = "technique"
)

// EquipSlot is an equipment slot. Equipped gear is a slot -> item-ID
// reference into the inventory; the item payload is never duplicated.
type EquipSlot string

const (
	SlotWeapon    EquipSlot = "weapon"
	SlotArmor     EquipSlot = "armor"
	SlotAccessory EquipSlot = "accessory"
)

// MaxEnhancementLevel is the enhancement ceiling for equippable gear.
const MaxEnhancementLevel = 10

// Item is one inventory entry. The inventory is a multiset keyed by
// (ID, Type): stacking merges quantities, and an entry whose quantity drops
// to zero is removed rather than retained.
type Item struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	NameEN string   `json:"name_en,omitempty"`
	Type   ItemType `json:"type"`

	Quantity int    `json:"quantity"`
	Rarity   string `json:"rarity,omitempty"`

	// EnhancementLevel (0..10) drives BonusStats for equippable gear.
	EnhancementLevel int            `json:"enhancement_level,omitempty"`
	BaseStats        map[string]int `json:"base_stats,omitempty"`
	BonusStats       map[string]int `json:"bonus_stats,omitempty"`

	Description string `json:"description,omitempty"`
}

// IsAbilityType reports whether t is a skill or technique category.
func IsAbilityType(t ItemType) bool {
	return t == ItemTypeSkill || t == ItemTypeTechnique
}

// FindItem returns a pointer to the inventory entry matching (id, type),
// or nil if absent.
func (gs *GameState) FindItem(id string, typ ItemType) *Item {
	for i := range gs.Inventory {
		if gs.Inventory[i].ID == id && gs.Inventory[i].Type == typ {
			return &gs.Inventory[i]
		}
	}
	return nil
}

// ItemByID returns a pointer to the first inventory entry with the given ID,
// regardless of type.
func (gs *GameState) ItemByID(id string) *Item {
	for i := range gs.Inventory {
		if gs.Inventory[i].ID == id {
			return &gs.Inventory[i]
		}
	}
	return nil
}

// AddItem stacks the item into an existing (ID, Type) entry or appends it.
// Quantity defaults to 1 when unset or negative.
func (gs *GameState) AddItem(item Item) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if existing := gs.FindItem(item.ID, item.Type); existing != nil {
		existing.Quantity += item.Quantity
		return
	}
	gs.Inventory = append(gs.Inventory, item)
}

// RemoveItem decrements quantity on the (id, type) entry, removing the entry
// when its quantity reaches zero. Removing more than present clears the
// stack. Returns false when no matching entry exists.
func (gs *GameState) RemoveItem(id string, typ ItemType, qty int) bool {
	if qty <= 0 {
		qty = 1
	}
	for i := range gs.Inventory {
		it := &gs.Inventory[i]
		if it.ID != id || it.Type != typ {
			continue
		}
		it.Quantity -= qty
		if it.Quantity <= 0 {
			gs.unequipItem(it.ID)
			gs.Inventory = append(gs.Inventory[:i], gs.Inventory[i+1:]...)
		}
		return true
	}
	return false
}

// NormalizeInventory drops entries with non-positive quantity. Migrations
// and delta application call this to uphold the quantity >= 1 invariant.
func (gs *GameState) NormalizeInventory() {
	out := gs.Inventory[:0]
	for _, it := range gs.Inventory {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	gs.Inventory = out
}

// Equip points the slot at the item ID. The item remains in inventory; the
// slot holds only a reference.
func (gs *GameState) Equip(slot EquipSlot, itemID string) bool {
	if gs.ItemByID(itemID) == nil {
		return false
	}
	if gs.Equipment == nil {
		gs.Equipment = make(map[EquipSlot]string)
	}
	gs.Equipment[slot] = itemID
	return true
}

// EquippedItem resolves the slot reference to the owned inventory entry.
func (gs *GameState) EquippedItem(slot EquipSlot) *Item {
	id, ok := gs.Equipment[slot]
	if !ok || id == "" {
		return nil
	}
	return gs.ItemByID(id)
}

// EquipmentBonus sums the named bonus stat across all equipped items.
func (gs *GameState) EquipmentBonus(stat string) int {
	total := 0
	for slot := range gs.Equipment {
		if it := gs.EquippedItem(slot); it != nil {
			total += it.BonusStats[stat]
		}
	}
	return total
}

func (gs *GameState) unequipItem(itemID string) {
	for slot, id := range gs.Equipment {
		if id == itemID {
			delete(gs.Equipment, slot)
		}
	}
}
