package cultivation

import (
	"math"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Spirit-root grade multipliers by ascending rarity.
var gradeMultiplier = map[state.SpiritRootGrade]float64{
	state.GradeCommon:   1.0,
	state.GradeSpirit:   1.2,
	state.GradeEarth:    1.5,
	state.GradeHeavenly: 2.0,
}

// GradeMultiplier returns the cultivation multiplier for a spirit-root
// grade. Unknown grades count as common.
func GradeMultiplier(g state.SpiritRootGrade) float64 {
	if m, ok := gradeMultiplier[g]; ok {
		return m
	}
	return 1.0
}

// Wu-Xing generating cycle: each element generates the next.
var generates = map[state.Element]state.Element{
	state.ElementMetal: state.ElementWater,
	state.ElementWater: state.ElementWood,
	state.ElementWood:  state.ElementFire,
	state.ElementFire:  state.ElementEarth,
	state.ElementEarth: state.ElementMetal,
}

// Wu-Xing overcoming cycle: each element overcomes its target.
var overcomes = map[state.Element]state.Element{
	state.ElementMetal: state.ElementWood,
	state.ElementWood:  state.ElementEarth,
	state.ElementEarth: state.ElementWater,
	state.ElementWater: state.ElementFire,
	state.ElementFire:  state.ElementMetal,
}

// Pairwise compatibility scores.
const (
	compatPerfect       = 0.30
	compatMatch         = 0.30
	compatRootGenerates = 0.15
	compatTechGenerates = 0.10
	compatTechOvercomes = -0.20
	compatRootOvercomes = -0.10

	// A technique with no declared elements is treated as universal
	// affinity. Strictly better than many element-matched techniques;
	// intentional, see the power-imbalance test.
	compatUniversal = 0.20
)

// ElementCompatibility scores a technique's elements against the spirit
// root. A perfect match (every technique element present in the root) scores
// the full bonus; otherwise the mean over all (technique, root) element
// pairs is used.
func ElementCompatibility(techElems, rootElems []state.Element) float64 {
	if len(techElems) == 0 {
		return compatUniversal
	}
	if len(rootElems) == 0 {
		return 0
	}

	perfect := true
	for _, te := range techElems {
		found := false
		for _, re := range rootElems {
			if te == re {
				found = true
				break
			}
		}
		if !found {
			perfect = false
			break
		}
	}
	if perfect {
		return compatPerfect
	}

	var sum float64
	pairs := 0
	for _, te := range techElems {
		for _, re := range rootElems {
			sum += pairScore(te, re)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

func pairScore(tech, root state.Element) float64 {
	switch {
	case tech == root:
		return compatMatch
	case generates[root] == tech:
		return compatRootGenerates
	case generates[tech] == root:
		return compatTechGenerates
	case overcomes[tech] == root:
		return compatTechOvercomes
	case overcomes[root] == tech:
		return compatRootOvercomes
	default:
		return 0
	}
}

// TechniqueBonus computes a single technique's cultivation contribution:
// grade speed bonus plus element compatibility against the spirit root.
func TechniqueBonus(t *state.Technique, root state.SpiritRoot) float64 {
	return t.SpeedBonus/100.0 + ElementCompatibility(t.Elements, root.Elements)
}

// CombinedTechniqueBonus is the full technique multiplier:
// 1 + best main-technique bonus + min(0.5, sum of support bonuses x 0.5).
func CombinedTechniqueBonus(gs *state.GameState) float64 {
	var bestMain, supportSum float64
	for i := range gs.Techniques {
		t := &gs.Techniques[i]
		bonus := TechniqueBonus(t, gs.SpiritRoot)
		switch t.Slot {
		case state.TechniqueSlotMain:
			if bonus > bestMain {
				bestMain = bonus
			}
		case state.TechniqueSlotSupport:
			supportSum += bonus
		}
	}
	support := supportSum * 0.5
	if support > 0.5 {
		support = 0.5
	}
	return 1.0 + bestMain + support
}

// ExpGain converts a base exp amount into the final gain:
// floor(base x gradeMultiplier x techniqueBonus x sectBonus).
func ExpGain(gs *state.GameState, base int) int {
	if base <= 0 {
		return 0
	}
	gain := float64(base) *
		GradeMultiplier(gs.SpiritRoot.Grade) *
		CombinedTechniqueBonus(gs) *
		gs.SectCultivationBonus()
	return int(math.Floor(gain))
}

// ApplyDualCultivationExp splits exp between the qi and body pools using the
// configurable exp_split ratio. This is the explicit dual-cultivation action
// path; the turn-delta handler uses a fixed 70/30 split instead.
func ApplyDualCultivationExp(gs *state.GameState, exp int) (qiExp, bodyExp int) {
	if exp <= 0 {
		return 0, 0
	}
	split := gs.Progress.ExpSplit
	if split <= 0 || split > 100 {
		split = 70
	}
	qiExp = exp * split / 100
	bodyExp = exp - qiExp
	gs.Progress.CultivationExp += qiExp
	gs.Progress.BodyExp += bodyExp
	return qiExp, bodyExp
}
