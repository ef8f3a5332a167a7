package state

// EventType tags a discrete game event emitted during turn resolution.
type EventType string

const (
	EventCombat           EventType = "combat"
	EventLoot             EventType = "loot"
	EventBreakthrough     EventType = "breakthrough"
	EventBodyBreakthrough EventType = "body_breakthrough"
	EventSectJoin         EventType = "sect_join"
	EventSectPromotion    EventType = "sect_promotion"
	EventSectExpulsion    EventType = "sect_expulsion"
	EventSectMission      EventType = "sect_mission"
	EventSkillLevelUp     EventType = "skill_level_up"
	EventStatusEffect     EventType = "status_effect"
)

// GameEvent is one discrete event produced by turn resolution. Data is a
// tagged union keyed by Type; consumers must switch on Type before reading.
type GameEvent struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEvent builds a GameEvent from key/value pairs. Odd trailing keys are
// dropped.
func NewEvent(t EventType, kv ...any) GameEvent {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		data[key] = kv[i+1]
	}
	return GameEvent{Type: t, Data: data}
}
