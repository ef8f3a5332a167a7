// Package scene holds the narrative scene and activity templates and the
// weighted, eligibility-filtered selection used to open new turns.
package scene

import (
	"fmt"

	"github.com/hmnguyen-dev/tutien-engine/pkg/rng"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Requirements are the declarative eligibility fields a content author can
// put on a template. Zero values mean "no requirement".
type Requirements struct {
	MinRealm     state.Realm     `yaml:"min_realm,omitempty" json:"min_realm,omitempty"`
	MinStage     int             `yaml:"min_stage,omitempty" json:"min_stage,omitempty"`
	MinBodyRealm state.BodyRealm `yaml:"min_body_realm,omitempty" json:"min_body_realm,omitempty"`
	LocationTag  string          `yaml:"location_tag,omitempty" json:"location_tag,omitempty"`
	RequireSect  bool            `yaml:"require_sect,omitempty" json:"require_sect,omitempty"`
}

// Met reports whether the game state satisfies every declared requirement.
func (rq Requirements) Met(gs *state.GameState) bool {
	if rq.MinRealm != "" {
		want := state.RealmIndex(rq.MinRealm)
		have := state.RealmIndex(gs.Progress.Realm)
		if want < 0 || have < want {
			return false
		}
		if have == want && gs.Progress.RealmStage < rq.MinStage {
			return false
		}
	} else if rq.MinStage > 0 && gs.Progress.RealmStage < rq.MinStage {
		return false
	}
	if rq.MinBodyRealm != "" {
		want := state.BodyRealmIndex(rq.MinBodyRealm)
		if want < 0 || state.BodyRealmIndex(gs.Progress.BodyRealm) < want {
			return false
		}
	}
	if rq.LocationTag != "" && gs.Location != rq.LocationTag {
		return false
	}
	if rq.RequireSect && gs.SectMembership == nil {
		return false
	}
	return true
}

// Template is a scene template. The prompt text and loot table hook are
// consumed by the narrator prompt builder; Requirements gate selection.
type Template struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	NameEN string   `yaml:"name_en,omitempty" json:"name_en,omitempty"`
	Weight int      `yaml:"weight" json:"weight"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	Requirements Requirements `yaml:"requirements,omitempty" json:"requirements,omitempty"`

	// Prompt seeds the narrator with the scene's framing.
	Prompt string `yaml:"prompt" json:"prompt"`

	// LootTableID names the loot table a loot delta in this scene draws
	// from when the proposal leaves the table unspecified.
	LootTableID string `yaml:"loot_table,omitempty" json:"loot_table,omitempty"`

	// Combat marks scenes that should generate an enemy encounter.
	Combat bool `yaml:"combat,omitempty" json:"combat,omitempty"`
}

// Eligible reports whether the template may be offered for the state.
func (t *Template) Eligible(gs *state.GameState) bool {
	return t.Requirements.Met(gs)
}

// Validate checks authoring integrity for cmd/validate.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("scene template missing id")
	}
	if t.Name == "" {
		return fmt.Errorf("scene %s missing name", t.ID)
	}
	if t.Weight <= 0 {
		return fmt.Errorf("scene %s has non-positive weight %d", t.ID, t.Weight)
	}
	if t.Prompt == "" {
		return fmt.Errorf("scene %s missing prompt", t.ID)
	}
	if t.Requirements.MinRealm != "" && state.RealmIndex(t.Requirements.MinRealm) < 0 {
		return fmt.Errorf("scene %s has unknown min_realm %q", t.ID, t.Requirements.MinRealm)
	}
	if t.Requirements.MinBodyRealm != "" && state.BodyRealmIndex(t.Requirements.MinBodyRealm) < 0 {
		return fmt.Errorf("scene %s has unknown min_body_realm %q", t.ID, t.Requirements.MinBodyRealm)
	}
	return nil
}

// Activity is a repeatable downtime option (cultivate, train the body, work
// odd jobs). Activities share the scene requirement model but carry explicit
// resource effects instead of a narrator prompt.
type Activity struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	NameEN string `yaml:"name_en,omitempty" json:"name_en,omitempty"`
	Weight int    `yaml:"weight" json:"weight"`

	Requirements Requirements `yaml:"requirements,omitempty" json:"requirements,omitempty"`

	StaminaCost  int `yaml:"stamina_cost" json:"stamina_cost"`
	TimeSegments int `yaml:"time_segments" json:"time_segments"`

	// Base exp or silver yields, before multipliers.
	CultivationExp int `yaml:"cultivation_exp,omitempty" json:"cultivation_exp,omitempty"`
	BodyExp        int `yaml:"body_exp,omitempty" json:"body_exp,omitempty"`
	Silver         int `yaml:"silver,omitempty" json:"silver,omitempty"`
}

// Eligible reports whether the activity may be offered for the state.
// Stamina is checked here so exhausted characters are not shown options
// they cannot take.
func (a *Activity) Eligible(gs *state.GameState) bool {
	if gs.Stats.Stamina < a.StaminaCost {
		return false
	}
	return a.Requirements.Met(gs)
}

// Validate checks authoring integrity for cmd/validate.
func (a *Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("activity missing id")
	}
	if a.Name == "" {
		return fmt.Errorf("activity %s missing name", a.ID)
	}
	if a.Weight <= 0 {
		return fmt.Errorf("activity %s has non-positive weight %d", a.ID, a.Weight)
	}
	if a.TimeSegments <= 0 {
		return fmt.Errorf("activity %s must take at least one time segment", a.ID)
	}
	return nil
}

// Select picks a scene template for the state. Ineligible templates are
// filtered first; recently used templates are then dropped, but only when
// more than two fresh candidates remain, so small content sets never
// starve. The final draw is weighted. Returns nil when nothing is eligible.
func Select(r *rng.RNG, templates []*Template, gs *state.GameState, recent []string) *Template {
	eligible := make([]*Template, 0, len(templates))
	for _, t := range templates {
		if t.Eligible(gs) {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	if len(recent) > 0 {
		seen := make(map[string]bool, len(recent))
		for _, id := range recent {
			seen[id] = true
		}
		fresh := eligible[:0:0]
		for _, t := range eligible {
			if !seen[t.ID] {
				fresh = append(fresh, t)
			}
		}
		if len(fresh) > 2 {
			eligible = fresh
		}
	}

	weights := make([]int, len(eligible))
	for i, t := range eligible {
		weights[i] = t.Weight
	}
	idx := r.WeightedIndex(weights)
	if idx < 0 {
		return nil
	}
	return eligible[idx]
}

// SelectActivity applies the same filter-then-weighted-draw to activities.
func SelectActivity(r *rng.RNG, activities []*Activity, gs *state.GameState) *Activity {
	eligible := make([]*Activity, 0, len(activities))
	for _, a := range activities {
		if a.Eligible(gs) {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	weights := make([]int, len(eligible))
	for i, a := range eligible {
		weights[i] = a.Weight
	}
	idx := r.WeightedIndex(weights)
	if idx < 0 {
		return nil
	}
	return eligible[idx]
}
