package state

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DeltaOp is the arithmetic operation a proposed delta requests.
type DeltaOp string

const (
	OpAdd      DeltaOp = "add"
	OpSubtract DeltaOp = "subtract"
	OpSet      DeltaOp = "set"
	OpMultiply DeltaOp = "multiply"
)

// ProposedDelta is a single free-form state mutation proposed by the
// narrative generator. It is untrusted input: it is parsed once at the
// boundary into a typed Delta and must never be applied without the
// engine's field-specific validation and clamping. ProposedDeltas are
// ephemeral; only their effects persist.
type ProposedDelta struct {
	Field string  `json:"field"`
	Op    DeltaOp `json:"operation"`
	Value any     `json:"value"`
}

// Delta is the typed form of a ProposedDelta, one variant per namespace.
// Unknown namespaces parse to UnknownDelta, preserving the contract that an
// unrecognized field is a no-op rather than a fault.
type Delta interface {
	deltaKind() string
}

// StatDelta mutates one of the bounded stat pools. Multiply carries its
// operand in Factor so fractional factors like 1.5 survive parsing.
type StatDelta struct {
	Stat   string // hp, qi, stamina, hp_max, qi_max, stamina_max
	Op     DeltaOp
	Value  int
	Factor float64 // for OpMultiply
}

// AttributeDelta mutates a core attribute.
type AttributeDelta struct {
	Attr  string
	Value int
}

// KarmaDelta shifts karma.
type KarmaDelta struct {
	Value int
}

// ProgressDelta mutates cultivation progress.
type ProgressDelta struct {
	Field string // cultivation_exp, body_exp, cultivation_path
	Value int
	Path  string // for cultivation_path
}

// InventoryDelta mutates inventory or currency.
type InventoryDelta struct {
	Action  string // add_item, remove_item, silver, spirit_stones, loot
	Item    *Item
	Amount  int
	TableID string // for loot
}

// SkillDelta adds a skill or grants skill exp.
type SkillDelta struct {
	Action  string // add, gain_exp
	Skill   *Skill
	SkillID string
	Exp     int
}

// TechniqueDelta adds a cultivation technique.
type TechniqueDelta struct {
	Action    string // add
	Technique *Technique
}

// SectDelta mutates sect affiliation or standing.
type SectDelta struct {
	Action     string // join, leave, promote, contribution, reputation, mission
	Membership *SectMembership
	Rank       SectRank
	Amount     int
	MissionID  string
}

// LocationDelta sets the current location.
type LocationDelta struct {
	Value string
}

// UnknownDelta records an unrecognized namespace or sub-field. Applying it
// is a no-op.
type UnknownDelta struct {
	Field string
}

func (StatDelta) deltaKind() string      { return "stat" }
func (AttributeDelta) deltaKind() string { return "attribute" }
func (KarmaDelta) deltaKind() string     { return "karma" }
func (ProgressDelta) deltaKind() string  { return "progress" }
func (InventoryDelta) deltaKind() string { return "inventory" }
func (SkillDelta) deltaKind() string     { return "skill" }
func (TechniqueDelta) deltaKind() string { return "technique" }
func (SectDelta) deltaKind() string      { return "sect" }
func (LocationDelta) deltaKind() string  { return "location" }
func (UnknownDelta) deltaKind() string   { return "unknown" }

// ParseDelta validates a proposed delta and converts it to its typed form.
// A recognized namespace with malformed content returns an error (the engine
// logs and skips it); an unrecognized namespace returns UnknownDelta with a
// nil error.
func ParseDelta(pd ProposedDelta) (Delta, error) {
	namespace, sub, _ := strings.Cut(strings.TrimSpace(pd.Field), ".")

	switch namespace {
	case "stats":
		return parseStatDelta(pd, sub)
	case "attrs", "attributes":
		return parseAttributeDelta(pd, sub)
	case "karma":
		v, err := deltaInt(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("karma delta: %w", err)
		}
		if pd.Op == OpSubtract {
			v = -v
		}
		return KarmaDelta{Value: v}, nil
	case "progress":
		return parseProgressDelta(pd, sub)
	case "inventory":
		return parseInventoryDelta(pd, sub)
	case "skills":
		return parseSkillDelta(pd, sub)
	case "techniques":
		return parseTechniqueDelta(pd, sub)
	case "sect":
		return parseSectDelta(pd, sub)
	case "location":
		s, err := deltaString(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("location delta: %w", err)
		}
		return LocationDelta{Value: s}, nil
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
}

func parseStatDelta(pd ProposedDelta, sub string) (Delta, error) {
	switch sub {
	case "hp", "qi", "stamina", "hp_max", "qi_max", "stamina_max":
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
	op := pd.Op
	if op == "" {
		op = OpAdd
	}
	if op == OpMultiply {
		f, err := deltaFloat(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("stat delta %s: %w", sub, err)
		}
		return StatDelta{Stat: sub, Op: op, Factor: f}, nil
	}
	v, err := deltaInt(pd.Value)
	if err != nil {
		return nil, fmt.Errorf("stat delta %s: %w", sub, err)
	}
	return StatDelta{Stat: sub, Op: op, Value: v}, nil
}

func parseAttributeDelta(pd ProposedDelta, sub string) (Delta, error) {
	var probe Attributes
	if _, ok := probe.Get(sub); !ok {
		return UnknownDelta{Field: pd.Field}, nil
	}
	v, err := deltaInt(pd.Value)
	if err != nil {
		return nil, fmt.Errorf("attribute delta %s: %w", sub, err)
	}
	if pd.Op == OpSubtract {
		v = -v
	}
	return AttributeDelta{Attr: sub, Value: v}, nil
}

func parseProgressDelta(pd ProposedDelta, sub string) (Delta, error) {
	switch sub {
	case "cultivation_exp", "body_exp":
		v, err := deltaInt(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("progress delta %s: %w", sub, err)
		}
		return ProgressDelta{Field: sub, Value: v}, nil
	case "cultivation_path":
		s, err := deltaString(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("progress delta %s: %w", sub, err)
		}
		switch s {
		case PathQi, PathBody, PathDual:
		default:
			return nil, fmt.Errorf("progress delta: invalid cultivation path %q", s)
		}
		return ProgressDelta{Field: sub, Path: s}, nil
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
}

func parseInventoryDelta(pd ProposedDelta, sub string) (Delta, error) {
	switch sub {
	case "add_item", "remove_item":
		item, err := decodeValue[Item](pd.Value)
		if err != nil {
			return nil, fmt.Errorf("inventory %s: %w", sub, err)
		}
		if item.ID == "" || item.Name == "" {
			return nil, fmt.Errorf("inventory %s: item requires id and name", sub)
		}
		if item.Type == "" {
			item.Type = ItemTypeMisc
		}
		return InventoryDelta{Action: sub, Item: item}, nil
	case "silver", "spirit_stones":
		v, err := deltaInt(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("inventory %s: %w", sub, err)
		}
		if pd.Op == OpSubtract {
			v = -v
		}
		return InventoryDelta{Action: sub, Amount: v}, nil
	case "loot":
		id, err := deltaString(pd.Value)
		if err != nil || id == "" {
			return nil, fmt.Errorf("inventory loot: value must be a loot table id")
		}
		return InventoryDelta{Action: sub, TableID: id}, nil
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
}

func parseSkillDelta(pd ProposedDelta, sub string) (Delta, error) {
	switch sub {
	case "add":
		sk, err := decodeValue[Skill](pd.Value)
		if err != nil {
			return nil, fmt.Errorf("skills.add: %w", err)
		}
		if sk.ID == "" || sk.Name == "" || sk.Type == "" {
			return nil, fmt.Errorf("skills.add: skill requires id, name and type")
		}
		applySkillDefaults(sk)
		return SkillDelta{Action: sub, Skill: sk}, nil
	case "gain_exp":
		m, err := decodeValue[struct {
			ID  string `json:"id"`
			Exp int    `json:"exp"`
		}](pd.Value)
		if err != nil {
			return nil, fmt.Errorf("skills.gain_exp: %w", err)
		}
		if m.ID == "" {
			return nil, fmt.Errorf("skills.gain_exp: requires skill id")
		}
		return SkillDelta{Action: sub, SkillID: m.ID, Exp: m.Exp}, nil
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
}

func parseTechniqueDelta(pd ProposedDelta, sub string) (Delta, error) {
	if sub != "add" {
		return UnknownDelta{Field: pd.Field}, nil
	}
	tq, err := decodeValue[Technique](pd.Value)
	if err != nil {
		return nil, fmt.Errorf("techniques.add: %w", err)
	}
	if tq.ID == "" || tq.Name == "" || tq.Grade == "" {
		return nil, fmt.Errorf("techniques.add: technique requires id, name and grade")
	}
	applyTechniqueDefaults(tq)
	return TechniqueDelta{Action: sub, Technique: tq}, nil
}

func parseSectDelta(pd ProposedDelta, sub string) (Delta, error) {
	switch sub {
	case "join":
		m, err := decodeValue[SectMembership](pd.Value)
		if err != nil {
			return nil, fmt.Errorf("sect.join: %w", err)
		}
		if m.SectID == "" || m.SectName == "" {
			return nil, fmt.Errorf("sect.join: requires sect_id and sect_name")
		}
		return SectDelta{Action: sub, Membership: m}, nil
	case "leave":
		return SectDelta{Action: sub}, nil
	case "promote":
		s, err := deltaString(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("sect.promote: %w", err)
		}
		rank := SectRank(s)
		if !ValidSectRank(rank) {
			return nil, fmt.Errorf("sect.promote: unknown rank %q", s)
		}
		return SectDelta{Action: sub, Rank: rank}, nil
	case "contribution", "reputation":
		v, err := deltaInt(pd.Value)
		if err != nil {
			return nil, fmt.Errorf("sect.%s: %w", sub, err)
		}
		if pd.Op == OpSubtract {
			v = -v
		}
		return SectDelta{Action: sub, Amount: v}, nil
	case "mission":
		m, err := decodeValue[struct {
			ID           string `json:"id"`
			Contribution int    `json:"contribution"`
		}](pd.Value)
		if err != nil {
			return nil, fmt.Errorf("sect.mission: %w", err)
		}
		return SectDelta{Action: sub, MissionID: m.ID, Amount: m.Contribution}, nil
	default:
		return UnknownDelta{Field: pd.Field}, nil
	}
}

func applySkillDefaults(sk *Skill) {
	if sk.Level <= 0 {
		sk.Level = 1
	}
	if sk.MaxLevel <= 0 {
		sk.MaxLevel = DefaultSkillMaxLvl
	}
	if sk.MaxExp <= 0 {
		sk.MaxExp = SkillExpPerLevel
	}
	if sk.DamageMultiplier <= 0 {
		sk.DamageMultiplier = 1.0
	}
	if sk.QiCost < 0 {
		sk.QiCost = 0
	}
}

func applyTechniqueDefaults(tq *Technique) {
	if tq.Slot == "" {
		tq.Slot = TechniqueSlotSupport
	}
	if tq.SpeedBonus <= 0 {
		tq.SpeedBonus = DefaultSpeedBonus(tq.Grade)
	}
}

// deltaInt coerces a proposed value to an int. JSON numbers arrive as
// float64; fractional values are truncated toward zero.
func deltaInt(v any) (int, error) {
	f, err := deltaFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// deltaFloat coerces a proposed value to a float64.
func deltaFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("value is not a finite number")
		}
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func deltaString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return strings.TrimSpace(s), nil
}

// decodeValue converts a generic JSON value (typically map[string]any) into
// a concrete struct via a marshal round-trip.
func decodeValue[T any](v any) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid value shape: %w", err)
	}
	return &out, nil
}
