package state

import "time"

// Stat and resource mutators. Each clamps rather than rejects: a violating
// write lands on the nearest bound. All are idempotent given the same delta
// against the same starting value.

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AddHP applies a bounded HP delta, clamping to [0, HPMax].
func (s *Stats) AddHP(delta int) {
	s.HP = clamp(s.HP+delta, 0, s.HPMax)
}

// AddQi applies a bounded qi delta, clamping to [0, QiMax].
func (s *Stats) AddQi(delta int) {
	s.Qi = clamp(s.Qi+delta, 0, s.QiMax)
}

// AddStamina applies a bounded stamina delta, clamping to [0, StaminaMax].
func (s *Stats) AddStamina(delta int) {
	s.Stamina = clamp(s.Stamina+delta, 0, s.StaminaMax)
}

// AddSilver applies a currency delta, clamping at zero.
func (s *Stats) AddSilver(delta int) {
	s.Silver += delta
	if s.Silver < 0 {
		s.Silver = 0
	}
}

// AddSpiritStones applies a spirit-stone delta, clamping at zero.
func (s *Stats) AddSpiritStones(delta int) {
	s.SpiritStones += delta
	if s.SpiritStones < 0 {
		s.SpiritStones = 0
	}
}

// ClampAll re-applies every bound. Used after max-value changes such as
// breakthroughs or migrations.
func (s *Stats) ClampAll() {
	s.HP = clamp(s.HP, 0, s.HPMax)
	s.Qi = clamp(s.Qi, 0, s.QiMax)
	s.Stamina = clamp(s.Stamina, 0, s.StaminaMax)
	if s.Silver < 0 {
		s.Silver = 0
	}
	if s.SpiritStones < 0 {
		s.SpiritStones = 0
	}
}

// Calendar constants: 4 segments per day, 30 days per month, 12 months per
// year.
const (
	SegmentsPerDay = 4
	DaysPerMonth   = 30
	MonthsPerYear  = 12
)

// AdvanceTime steps the calendar forward by the given number of segments.
// Crossing a year boundary increments age and recomputes the lifespan tier.
// Returns the number of years crossed.
func (gs *GameState) AdvanceTime(segments int) int {
	if segments <= 0 {
		return 0
	}
	c := &gs.Calendar
	years := 0
	c.Segment += segments
	for c.Segment >= SegmentsPerDay {
		c.Segment -= SegmentsPerDay
		c.Day++
		if c.Day > DaysPerMonth {
			c.Day = 1
			c.Month++
			if c.Month > MonthsPerYear {
				c.Month = 1
				c.Year++
				c.Age++
				years++
			}
		}
	}
	if years > 0 {
		c.RefreshLifespanTier()
	}
	return years
}

// RefreshLifespanTier recomputes the urgency tier from remaining lifespan:
// more than 20 years is safe, 6-20 warning, 5 or fewer critical.
func (c *Calendar) RefreshLifespanTier() {
	remaining := c.MaxLifespan - c.Age
	switch {
	case remaining <= 5:
		c.Lifespan = LifespanCritical
	case remaining <= 20:
		c.Lifespan = LifespanWarning
	default:
		c.Lifespan = LifespanSafe
	}
}

// RegenStamina applies real-time stamina regeneration: one point per elapsed
// wall-clock minute since the stored anchor, capped at max. The anchor
// advances only by whole minutes consumed so partial minutes are not lost.
// This side channel is independent of AdvanceTime and the two never
// double-apply. Returns the points restored.
func (gs *GameState) RegenStamina(now time.Time) int {
	if gs.StaminaRegenAt.IsZero() {
		gs.StaminaRegenAt = now
		return 0
	}
	minutes := int(now.Sub(gs.StaminaRegenAt) / time.Minute)
	if minutes <= 0 {
		return 0
	}
	missing := gs.Stats.StaminaMax - gs.Stats.Stamina
	if missing <= 0 {
		gs.StaminaRegenAt = now
		return 0
	}
	restored := minutes
	if restored > missing {
		restored = missing
	}
	gs.Stats.AddStamina(restored)
	gs.StaminaRegenAt = gs.StaminaRegenAt.Add(time.Duration(minutes) * time.Minute)
	return restored
}
