package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatMutators_Clamp(t *testing.T) {
	s := Stats{HP: 50, HPMax: 100, Qi: 20, QiMax: 40, Stamina: 80, StaminaMax: 100}

	s.AddHP(500)
	assert.Equal(t, 100, s.HP, "HP clamps to max")
	s.AddHP(-9999)
	assert.Equal(t, 0, s.HP, "HP clamps to zero")

	s.AddQi(-100)
	assert.Equal(t, 0, s.Qi)
	s.AddQi(41)
	assert.Equal(t, 40, s.Qi)

	s.AddStamina(100)
	assert.Equal(t, 100, s.Stamina)
}

func TestStatMutators_Idempotent(t *testing.T) {
	a := Stats{HP: 60, HPMax: 100}
	b := Stats{HP: 60, HPMax: 100}
	a.AddHP(-10)
	b.AddHP(-10)
	assert.Equal(t, a.HP, b.HP)
}

func TestCurrencyMutators(t *testing.T) {
	s := Stats{Silver: 100, SpiritStones: 5}

	s.AddSilver(-300)
	assert.Equal(t, 0, s.Silver, "silver floors at zero")
	s.AddSilver(1000000)
	assert.Equal(t, 1000000, s.Silver, "no upper bound on currency")

	s.AddSpiritStones(-10)
	assert.Equal(t, 0, s.SpiritStones)
}

func TestAdvanceTime(t *testing.T) {
	gs := NewGameState("Test", "time-1")

	years := gs.AdvanceTime(3)
	assert.Equal(t, 0, years)
	assert.Equal(t, 3, gs.Calendar.Segment)
	assert.Equal(t, 1, gs.Calendar.Day)

	years = gs.AdvanceTime(1)
	assert.Equal(t, 0, years)
	assert.Equal(t, 0, gs.Calendar.Segment)
	assert.Equal(t, 2, gs.Calendar.Day)

	// A full month: 30 days x 4 segments.
	gs.AdvanceTime(30 * 4)
	assert.Equal(t, 2, gs.Calendar.Month)
	assert.Equal(t, 2, gs.Calendar.Day)
}

func TestAdvanceTime_YearBoundaryAges(t *testing.T) {
	gs := NewGameState("Test", "time-2")
	startAge := gs.Calendar.Age

	years := gs.AdvanceTime(SegmentsPerDay * DaysPerMonth * MonthsPerYear)
	assert.Equal(t, 1, years)
	assert.Equal(t, 2, gs.Calendar.Year)
	assert.Equal(t, startAge+1, gs.Calendar.Age)
}

func TestLifespanTier(t *testing.T) {
	tests := []struct {
		name string
		age  int
		max  int
		want LifespanTier
	}{
		{"young", 16, 80, LifespanSafe},
		{"just safe", 59, 80, LifespanSafe},
		{"warning edge", 60, 80, LifespanWarning},
		{"deep warning", 74, 80, LifespanWarning},
		{"critical edge", 75, 80, LifespanCritical},
		{"past lifespan", 85, 80, LifespanCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Calendar{Age: tt.age, MaxLifespan: tt.max}
			c.RefreshLifespanTier()
			assert.Equal(t, tt.want, c.Lifespan)
		})
	}
}

func TestRegenStamina(t *testing.T) {
	gs := NewGameState("Test", "regen-1")
	gs.Stats.Stamina = 50
	anchor := time.Now().Add(-10 * time.Minute)
	gs.StaminaRegenAt = anchor

	restored := gs.RegenStamina(anchor.Add(10 * time.Minute))
	assert.Equal(t, 10, restored)
	assert.Equal(t, 60, gs.Stats.Stamina)

	// Immediately again: no whole minute elapsed, no double-apply.
	restored = gs.RegenStamina(anchor.Add(10*time.Minute + 30*time.Second))
	assert.Equal(t, 0, restored)
	assert.Equal(t, 60, gs.Stats.Stamina)
}

func TestRegenStamina_CapsAtMax(t *testing.T) {
	gs := NewGameState("Test", "regen-2")
	gs.Stats.Stamina = 95
	anchor := time.Now().Add(-60 * time.Minute)
	gs.StaminaRegenAt = anchor

	restored := gs.RegenStamina(time.Now())
	assert.Equal(t, 5, restored)
	assert.Equal(t, gs.Stats.StaminaMax, gs.Stats.Stamina)
}
