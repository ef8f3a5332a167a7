// Package state holds the persisted game-state aggregate for a cultivation
// run, plus the mutators and delta types that change it. A GameState is owned
// by exactly one run and mutated by exactly one turn at a time.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
)

// SchemaVersion is the current game-state schema. Saves with a lower version
// are migrated in place on load (see Migrate).
const SchemaVersion = 3

// Element is one of the five Wu-Xing elements a spirit root or technique
// can carry.
type Element string

const (
	ElementMetal Element = "kim"
	ElementWood  Element = "mộc"
	ElementWater Element = "thủy"
	ElementFire  Element = "hỏa"
	ElementEarth Element = "thổ"
)

// Elements lists the five elements in generating-cycle order.
var Elements = []Element{ElementMetal, ElementWater, ElementWood, ElementFire, ElementEarth}

// Realm is a major tier of the qi-cultivation ladder.
type Realm string

const (
	RealmMortal      Realm = "PhàmNhân"
	RealmQiRefining  Realm = "LuyệnKhí"
	RealmFoundation  Realm = "TrúcCơ"
	RealmGoldenCore  Realm = "KimĐan"
	RealmNascentSoul Realm = "NguyênAnh"
)

// Realms lists the qi realms in ascending order.
var Realms = []Realm{RealmMortal, RealmQiRefining, RealmFoundation, RealmGoldenCore, RealmNascentSoul}

// BodyRealm is a major tier of the parallel physical-cultivation ladder.
type BodyRealm string

const (
	BodyRealmMortal    BodyRealm = "PhàmThân"
	BodyRealmTempering BodyRealm = "LuyệnThể"
	BodyRealmIron      BodyRealm = "CươngThân"
	BodyRealmJade      BodyRealm = "NgọcThân"
	BodyRealmSaint     BodyRealm = "ThánhThân"
)

// BodyRealms lists the body realms in ascending order.
var BodyRealms = []BodyRealm{BodyRealmMortal, BodyRealmTempering, BodyRealmIron, BodyRealmJade, BodyRealmSaint}

// SpiritRootGrade is the rarity tier of a character's spirit root.
type SpiritRootGrade string

const (
	GradeCommon   SpiritRootGrade = "phàm căn"
	GradeSpirit   SpiritRootGrade = "linh căn"
	GradeEarth    SpiritRootGrade = "địa căn"
	GradeHeavenly SpiritRootGrade = "thiên căn"
)

// SpiritRoot is a character's innate elemental affinity.
type SpiritRoot struct {
	Elements []Element       `json:"elements"`
	Grade    SpiritRootGrade `json:"grade"`
}

// CultivationPath selects how cultivation exp is allocated.
const (
	PathQi   = "qi"
	PathBody = "body"
	PathDual = "dual"
)

// CultivationProgress tracks position on the qi ladder and, optionally, the
// parallel body ladder. Exp counters reset to zero on every stage or realm
// transition; they are never carried over.
type CultivationProgress struct {
	Realm           Realm  `json:"realm"`
	RealmStage      int    `json:"realm_stage"`
	CultivationExp  int    `json:"cultivation_exp"`
	CultivationPath string `json:"cultivation_path,omitempty"`

	// ExpSplit is the qi share (0-100) used by the explicit dual-cultivation
	// action. The turn-delta handler uses a fixed 70/30 split instead; see
	// engine.applyCultivationExp.
	ExpSplit int `json:"exp_split,omitempty"`

	BodyRealm BodyRealm `json:"body_realm,omitempty"`
	BodyStage int       `json:"body_stage,omitempty"`
	BodyExp   int       `json:"body_exp,omitempty"`
}

// Stats are the bounded combat and resource pools. Current values are always
// clamped to [0, max]; currency to [0, inf).
type Stats struct {
	HP           int `json:"hp"`
	HPMax        int `json:"hp_max"`
	Qi           int `json:"qi"`
	QiMax        int `json:"qi_max"`
	Stamina      int `json:"stamina"`
	StaminaMax   int `json:"stamina_max"`
	Silver       int `json:"silver"`
	SpiritStones int `json:"spirit_stones"`
}

// Attributes are the five core character attributes.
type Attributes struct {
	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
	Perception   int `json:"perception"`
	Luck         int `json:"luck"`
}

// Get returns an attribute by its snake_case name.
func (a *Attributes) Get(name string) (int, bool) {
	switch name {
	case "strength":
		return a.Strength, true
	case "agility":
		return a.Agility, true
	case "intelligence":
		return a.Intelligence, true
	case "perception":
		return a.Perception, true
	case "luck":
		return a.Luck, true
	}
	return 0, false
}

// Add adds delta to the named attribute. Returns false for an unknown name.
func (a *Attributes) Add(name string, delta int) bool {
	switch name {
	case "strength":
		a.Strength += delta
	case "agility":
		a.Agility += delta
	case "intelligence":
		a.Intelligence += delta
	case "perception":
		a.Perception += delta
	case "luck":
		a.Luck += delta
	default:
		return false
	}
	return true
}

// LifespanTier classifies remaining lifespan urgency.
type LifespanTier string

const (
	LifespanSafe     LifespanTier = "safe"
	LifespanWarning  LifespanTier = "warning"
	LifespanCritical LifespanTier = "critical"
)

// Calendar is the in-game clock: 4 segments per day, 30 days per month,
// 12 months per year.
type Calendar struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Day     int `json:"day"`
	Segment int `json:"segment"` // 0..3

	Age         int          `json:"age"`
	MaxLifespan int          `json:"max_lifespan"`
	Lifespan    LifespanTier `json:"lifespan_tier"`
}

// GameState is the root aggregate for one cultivation run. It is persisted
// as a single JSON blob and mutated only through the turn pipeline.
type GameState struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name,omitempty"`
	WorldSeed     string    `json:"world_seed"`
	SchemaVersion int       `json:"schema_version"`

	// TurnCount strictly increases by 1 per committed turn and is the only
	// legitimate source of the current turn number for RNG seeding.
	TurnCount int `json:"turn_count"`

	Stats      Stats               `json:"stats"`
	Attributes Attributes          `json:"attrs"`
	Progress   CultivationProgress `json:"progress"`
	SpiritRoot SpiritRoot          `json:"spirit_root"`

	Inventory []Item               `json:"inventory,omitempty"`
	Equipment map[EquipSlot]string `json:"equipment,omitempty"` // slot -> item ID

	Skills         []Skill     `json:"skills,omitempty"`
	SkillQueue     []Skill     `json:"skill_queue,omitempty"`
	Techniques     []Technique `json:"techniques,omitempty"`
	TechniqueQueue []Technique `json:"technique_queue,omitempty"`

	Karma          int             `json:"karma"`
	SectMembership *SectMembership `json:"sect_membership,omitempty"`
	// Legacy string mirrors of SectMembership, kept in sync by the sect
	// delta handlers for older clients.
	SectName   string `json:"sect,omitempty"`
	SectNameEN string `json:"sect_en,omitempty"`

	Location string   `json:"location,omitempty"`
	Calendar Calendar `json:"calendar"`

	NarrativeSummary string   `json:"narrative_summary,omitempty"`
	RecentScenes     []string `json:"recent_scenes,omitempty"`

	// StaminaRegenAt is the wall-clock anchor for real-time stamina regen,
	// independent of the in-game calendar.
	StaminaRegenAt time.Time `json:"stamina_regen_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates the initial state for a fresh run. The spirit root is
// rolled deterministically from the world seed so character creation itself
// is replayable.
func NewGameState(name, worldSeed string) *GameState {
	r := rng.New(worldSeed + "-creation")

	grades := []SpiritRootGrade{GradeCommon, GradeSpirit, GradeEarth, GradeHeavenly}
	gradeIdx := r.WeightedIndex([]int{55, 30, 12, 3})

	elements := make([]Element, 0, 2)
	first := Elements[r.IntRange(0, len(Elements)-1)]
	elements = append(elements, first)
	if r.Chance(0.4) {
		second := Elements[r.IntRange(0, len(Elements)-1)]
		if second != first {
			elements = append(elements, second)
		}
	}

	now := time.Now()
	return &GameState{
		ID:            uuid.New(),
		Name:          name,
		WorldSeed:     worldSeed,
		SchemaVersion: SchemaVersion,
		Stats: Stats{
			HP: 100, HPMax: 100,
			Qi: 50, QiMax: 50,
			Stamina: 100, StaminaMax: 100,
			Silver: 100,
		},
		Attributes: Attributes{
			Strength:     10,
			Agility:      10,
			Intelligence: 10,
			Perception:   10,
			Luck:         10,
		},
		Progress: CultivationProgress{
			Realm:           RealmMortal,
			RealmStage:      0,
			CultivationPath: PathQi,
			ExpSplit:        70,
			BodyRealm:       BodyRealmMortal,
		},
		SpiritRoot: SpiritRoot{
			Elements: elements,
			Grade:    grades[gradeIdx],
		},
		Equipment: make(map[EquipSlot]string),
		Calendar: Calendar{
			Year: 1, Month: 1, Day: 1, Segment: 0,
			Age: 16, MaxLifespan: 80, Lifespan: LifespanSafe,
		},
		StaminaRegenAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DeepCopy returns an independent copy of the game state via JSON round-trip.
func (gs *GameState) DeepCopy() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &out, nil
}

// RealmIndex returns the position of a realm in the ascending realm order,
// or -1 for an unknown realm.
func RealmIndex(r Realm) int {
	for i, v := range Realms {
		if v == r {
			return i
		}
	}
	return -1
}

// BodyRealmIndex returns the position of a body realm in ascending order,
// or -1 for an unknown realm.
func BodyRealmIndex(r BodyRealm) int {
	for i, v := range BodyRealms {
		if v == r {
			return i
		}
	}
	return -1
}
