package cultivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

func baseState() *state.GameState {
	gs := state.NewGameState("Test", "cult-test")
	gs.SpiritRoot = state.SpiritRoot{
		Elements: []state.Element{state.ElementFire},
		Grade:    state.GradeCommon,
	}
	gs.Techniques = nil
	gs.SectMembership = nil
	return gs
}

func TestRequiredExp(t *testing.T) {
	req, ok := RequiredExp(state.RealmMortal, 0)
	require.True(t, ok)
	assert.Equal(t, 100, req, "documented realm-entry threshold")

	req, ok = RequiredExp(state.RealmQiRefining, 1)
	require.True(t, ok)
	assert.Equal(t, 100, req)

	req, ok = RequiredExp(state.RealmQiRefining, 9)
	require.True(t, ok)
	assert.Equal(t, 1600, req)

	_, ok = RequiredExp(state.RealmNascentSoul, 9)
	assert.False(t, ok, "top of the ladder has no further requirement")

	_, ok = RequiredExp(state.Realm("bogus"), 1)
	assert.False(t, ok)
}

func TestBreakthrough_MortalToQiRefining(t *testing.T) {
	gs := baseState()
	gs.Progress.Realm = state.RealmMortal
	gs.Progress.RealmStage = 0
	gs.Progress.CultivationExp = 100

	require.True(t, CanBreakthrough(gs))

	hpMaxBefore := gs.Stats.HPMax
	qiMaxBefore := gs.Stats.QiMax

	reward, ok := PerformBreakthrough(gs)
	require.True(t, ok)

	assert.Equal(t, state.RealmQiRefining, gs.Progress.Realm)
	assert.Equal(t, 1, gs.Progress.RealmStage)
	assert.Equal(t, 0, gs.Progress.CultivationExp, "exp resets on transition")
	assert.Equal(t, 50, reward.HPMax)
	assert.Equal(t, 100, reward.QiMax)
	assert.Equal(t, hpMaxBefore+50, gs.Stats.HPMax)
	assert.Equal(t, qiMaxBefore+100, gs.Stats.QiMax)
	assert.Equal(t, gs.Stats.HPMax, gs.Stats.HP, "HP refilled on breakthrough")
	assert.Equal(t, gs.Stats.QiMax, gs.Stats.Qi, "Qi refilled on breakthrough")
}

func TestBreakthrough_InsufficientExp(t *testing.T) {
	gs := baseState()
	gs.Progress.CultivationExp = 99

	assert.False(t, CanBreakthrough(gs))
	_, ok := PerformBreakthrough(gs)
	assert.False(t, ok)
	assert.Equal(t, state.RealmMortal, gs.Progress.Realm)
}

func TestBreakthrough_StageWithinRealm(t *testing.T) {
	gs := baseState()
	gs.Progress.Realm = state.RealmQiRefining
	gs.Progress.RealmStage = 3
	gs.Progress.CultivationExp = 450

	_, ok := PerformBreakthrough(gs)
	require.True(t, ok)
	assert.Equal(t, state.RealmQiRefining, gs.Progress.Realm)
	assert.Equal(t, 4, gs.Progress.RealmStage)
	assert.Equal(t, 0, gs.Progress.CultivationExp)
}

func TestBreakthrough_TopStageEntersNextRealm(t *testing.T) {
	gs := baseState()
	gs.Progress.Realm = state.RealmQiRefining
	gs.Progress.RealmStage = 9
	gs.Progress.CultivationExp = 1600

	_, ok := PerformBreakthrough(gs)
	require.True(t, ok)
	// Exceeding the top stage triggers a realm change, never stage 10.
	assert.Equal(t, state.RealmFoundation, gs.Progress.Realm)
	assert.Equal(t, 1, gs.Progress.RealmStage)
}

func TestBodyBreakthrough_Independent(t *testing.T) {
	gs := baseState()
	gs.Progress.BodyRealm = state.BodyRealmMortal
	gs.Progress.BodyExp = 100
	gs.Progress.CultivationExp = 0

	strBefore := gs.Attributes.Strength
	_, ok := PerformBodyBreakthrough(gs)
	require.True(t, ok)

	assert.Equal(t, state.BodyRealmTempering, gs.Progress.BodyRealm)
	assert.Equal(t, 1, gs.Progress.BodyStage)
	assert.Equal(t, 0, gs.Progress.BodyExp)
	assert.Greater(t, gs.Attributes.Strength, strBefore)
	// Qi ladder untouched.
	assert.Equal(t, state.RealmMortal, gs.Progress.Realm)
}

func TestGradeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, GradeMultiplier(state.GradeCommon))
	assert.Equal(t, 1.2, GradeMultiplier(state.GradeSpirit))
	assert.Equal(t, 1.5, GradeMultiplier(state.GradeEarth))
	assert.Equal(t, 2.0, GradeMultiplier(state.GradeHeavenly))
	assert.Equal(t, 1.0, GradeMultiplier(state.SpiritRootGrade("bogus")))
}

func TestElementCompatibility(t *testing.T) {
	fire := []state.Element{state.ElementFire}
	wood := []state.Element{state.ElementWood}
	water := []state.Element{state.ElementWater}

	// Direct match is a perfect match for single elements.
	assert.InDelta(t, 0.30, ElementCompatibility(fire, fire), 1e-9)

	// Root wood generates technique fire.
	assert.InDelta(t, 0.15, ElementCompatibility(fire, wood), 1e-9)

	// Technique wood generates root fire.
	assert.InDelta(t, 0.10, ElementCompatibility(wood, fire), 1e-9)

	// Technique water overcomes root fire.
	assert.InDelta(t, -0.20, ElementCompatibility(water, fire), 1e-9)

	// Root water overcomes technique fire.
	assert.InDelta(t, -0.10, ElementCompatibility(fire, water), 1e-9)

	// Multi-element techniques average across all pairs.
	mixed := ElementCompatibility(
		[]state.Element{state.ElementFire, state.ElementWater},
		[]state.Element{state.ElementFire},
	)
	// Pairs: (fire,fire)=0.30, (water,fire)=-0.20 -> mean 0.05.
	assert.InDelta(t, 0.05, mixed, 1e-9)
}

func TestElementCompatibility_UniversalBonus(t *testing.T) {
	// Zero declared elements grant a flat +0.20, strictly better than many
	// element-matched techniques (+0.10..0.15 typical). Preserved as-is;
	// flagged as a possible power imbalance.
	root := []state.Element{state.ElementFire}
	assert.InDelta(t, 0.20, ElementCompatibility(nil, root), 1e-9)
	assert.Greater(t,
		ElementCompatibility(nil, root),
		ElementCompatibility([]state.Element{state.ElementWood}, root))
}

func TestCombinedTechniqueBonus(t *testing.T) {
	gs := baseState()

	// No techniques: neutral multiplier.
	assert.InDelta(t, 1.0, CombinedTechniqueBonus(gs), 1e-9)

	gs.Techniques = []state.Technique{
		{ID: "m1", Name: "m1", Grade: state.TechniqueGradeMystic, Slot: state.TechniqueSlotMain,
			SpeedBonus: 20, Elements: []state.Element{state.ElementFire}},
		{ID: "m2", Name: "m2", Grade: state.TechniqueGradeYellow, Slot: state.TechniqueSlotMain,
			SpeedBonus: 10},
		{ID: "s1", Name: "s1", Grade: state.TechniqueGradeYellow, Slot: state.TechniqueSlotSupport,
			SpeedBonus: 10, Elements: []state.Element{state.ElementFire}},
	}

	// m1: 0.20 + 0.30 = 0.50; m2: 0.10 + 0.20 (universal) = 0.30 -> best 0.50.
	// s1: 0.10 + 0.30 = 0.40 -> support contribution 0.20.
	assert.InDelta(t, 1.0+0.50+0.20, CombinedTechniqueBonus(gs), 1e-9)
}

func TestCombinedTechniqueBonus_SupportCap(t *testing.T) {
	gs := baseState()
	for i := 0; i < 5; i++ {
		gs.Techniques = append(gs.Techniques, state.Technique{
			ID: "s", Name: "s", Grade: state.TechniqueGradeHeaven,
			Slot: state.TechniqueSlotSupport, SpeedBonus: 50,
			Elements: []state.Element{state.ElementFire},
		})
	}
	// Each support: 0.50 + 0.30 = 0.80; sum x 0.5 = 2.0, capped at 0.5.
	assert.InDelta(t, 1.5, CombinedTechniqueBonus(gs), 1e-9)
}

func TestExpGain(t *testing.T) {
	gs := baseState()
	gs.SpiritRoot.Grade = state.GradeSpirit // x1.2

	// floor(100 x 1.2 x 1.0 x 1.0) = 120
	assert.Equal(t, 120, ExpGain(gs, 100))
	assert.Equal(t, 0, ExpGain(gs, 0))
	assert.Equal(t, 0, ExpGain(gs, -50))
}

func TestExpGain_WithSect(t *testing.T) {
	gs := baseState()
	gs.JoinSect(state.SectMembership{
		SectID: "thanh-van", SectName: "Thanh Vân Tông",
		Rank: state.RankInnerDisciple, // +10% cultivation
	})

	// floor(100 x 1.0 x 1.0 x 1.10) = 110
	assert.Equal(t, 110, ExpGain(gs, 100))
}

func TestApplyDualCultivationExp_UsesExpSplit(t *testing.T) {
	gs := baseState()
	gs.Progress.ExpSplit = 60

	qi, body := ApplyDualCultivationExp(gs, 100)
	assert.Equal(t, 60, qi)
	assert.Equal(t, 40, body)
	assert.Equal(t, 60, gs.Progress.CultivationExp)
	assert.Equal(t, 40, gs.Progress.BodyExp)

	// Out-of-range split falls back to 70/30.
	gs2 := baseState()
	gs2.Progress.ExpSplit = 150
	qi, body = ApplyDualCultivationExp(gs2, 100)
	assert.Equal(t, 70, qi)
	assert.Equal(t, 30, body)
}
