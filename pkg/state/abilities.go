package state

// Active/queue caps for learned abilities. Overflow is redirected to the
// corresponding queue, never dropped.
const (
	MaxSkills          = 6
	MaxTechniques      = 5
	MaxPerAbilityType  = 2
	SkillExpPerLevel   = 100
	DefaultSkillMaxLvl = 10
)

// SkillType categorizes active combat skills.
type SkillType string

const (
	SkillTypeAttack   SkillType = "attack"
	SkillTypeDefense  SkillType = "defense"
	SkillTypeSupport  SkillType = "support"
	SkillTypeMovement SkillType = "movement"
)

// Skill is an active combat ability with independent leveling. Leveling is
// monotonic: Level only increases, capped at MaxLevel, and the damage
// multiplier is recomputed on every level-up rather than stored separately.
type Skill struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	NameEN string    `json:"name_en,omitempty"`
	Type   SkillType `json:"type"`

	Level    int `json:"level"`
	MaxLevel int `json:"max_level"`
	Exp      int `json:"exp"`
	MaxExp   int `json:"max_exp"`

	QiCost   int `json:"qi_cost"`
	Cooldown int `json:"cooldown"` // rounds between uses

	DamageMultiplier float64 `json:"damage_multiplier"`

	Description string `json:"description,omitempty"`
}

// GainExp grants exp to the skill and applies as many level-ups as the total
// allows. Each level-up raises the damage multiplier by 5% and the next
// threshold by the per-level step. Returns the number of levels gained.
func (s *Skill) GainExp(exp int) int {
	if exp <= 0 || s.Level >= s.MaxLevel {
		return 0
	}
	s.Exp += exp
	levels := 0
	for s.Exp >= s.MaxExp && s.Level < s.MaxLevel {
		s.Exp -= s.MaxExp
		s.Level++
		levels++
		s.DamageMultiplier *= 1.05
		s.MaxExp += SkillExpPerLevel
	}
	if s.Level >= s.MaxLevel {
		s.Exp = 0
	}
	return levels
}

// TechniqueGrade ranks cultivation techniques.
type TechniqueGrade string

const (
	TechniqueGradeYellow TechniqueGrade = "hoàng giai"
	TechniqueGradeMystic TechniqueGrade = "huyền giai"
	TechniqueGradeEarth  TechniqueGrade = "địa giai"
	TechniqueGradeHeaven TechniqueGrade = "thiên giai"
)

// TechniqueSlot distinguishes the single main technique from supports.
type TechniqueSlot string

const (
	TechniqueSlotMain    TechniqueSlot = "main"
	TechniqueSlotSupport TechniqueSlot = "support"
)

// Technique is a passive cultivation-speed modifier. Its grade sets a base
// speed bonus and its elements interact with the spirit root.
type Technique struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	NameEN string         `json:"name_en,omitempty"`
	Grade  TechniqueGrade `json:"grade"`
	Slot   TechniqueSlot  `json:"slot"`

	Elements []Element `json:"elements,omitempty"`

	// SpeedBonus is the grade-derived cultivation speed bonus in percent.
	SpeedBonus float64 `json:"speed_bonus"`

	Description string `json:"description,omitempty"`
}

// DefaultSpeedBonus returns the grade-based speed bonus percentage used when
// a proposed technique omits one.
func DefaultSpeedBonus(g TechniqueGrade) float64 {
	switch g {
	case TechniqueGradeYellow:
		return 10
	case TechniqueGradeMystic:
		return 20
	case TechniqueGradeEarth:
		return 35
	case TechniqueGradeHeaven:
		return 50
	default:
		return 10
	}
}

// HasSkill reports whether a skill with the ID exists in the active list or
// the queue.
func (gs *GameState) HasSkill(id string) bool {
	for _, s := range gs.Skills {
		if s.ID == id {
			return true
		}
	}
	for _, s := range gs.SkillQueue {
		if s.ID == id {
			return true
		}
	}
	return false
}

// HasTechnique reports whether a technique with the ID exists in the active
// list or the queue.
func (gs *GameState) HasTechnique(id string) bool {
	for _, t := range gs.Techniques {
		if t.ID == id {
			return true
		}
	}
	for _, t := range gs.TechniqueQueue {
		if t.ID == id {
			return true
		}
	}
	return false
}

// SkillByID returns a pointer to the active skill with the ID, or nil.
func (gs *GameState) SkillByID(id string) *Skill {
	for i := range gs.Skills {
		if gs.Skills[i].ID == id {
			return &gs.Skills[i]
		}
	}
	return nil
}

// AddSkill places the skill in the active list when under both the global
// cap and the per-type cap, otherwise appends it to the queue. Returns true
// when the skill went active.
func (gs *GameState) AddSkill(s Skill) bool {
	if len(gs.Skills) < MaxSkills && gs.countSkillType(s.Type) < MaxPerAbilityType {
		gs.Skills = append(gs.Skills, s)
		return true
	}
	gs.SkillQueue = append(gs.SkillQueue, s)
	return false
}

// AddTechnique places the technique in the active list when under both caps,
// otherwise appends it to the queue. Returns true when it went active.
func (gs *GameState) AddTechnique(t Technique) bool {
	if len(gs.Techniques) < MaxTechniques && gs.countTechniqueSlot(t.Slot) < MaxPerAbilityType {
		gs.Techniques = append(gs.Techniques, t)
		return true
	}
	gs.TechniqueQueue = append(gs.TechniqueQueue, t)
	return false
}

func (gs *GameState) countSkillType(t SkillType) int {
	n := 0
	for _, s := range gs.Skills {
		if s.Type == t {
			n++
		}
	}
	return n
}

func (gs *GameState) countTechniqueSlot(slot TechniqueSlot) int {
	n := 0
	for _, t := range gs.Techniques {
		if t.Slot == slot {
			n++
		}
	}
	return n
}
