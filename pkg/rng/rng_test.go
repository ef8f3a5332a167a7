package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_GoldenSequence(t *testing.T) {
	// Two RNGs built from the same seed string must produce identical
	// sequences across every draw type.
	a := New("world-abc-turn-7")
	b := New("world-abc-turn-7")

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64(), "float draw %d diverged", i)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.IntRange(1, 100), b.IntRange(1, 100), "int draw %d diverged", i)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Chance(0.5), b.Chance(0.5), "chance draw %d diverged", i)
	}
	weights := []int{10, 30, 60}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.WeightedIndex(weights), b.WeightedIndex(weights), "weighted draw %d diverged", i)
	}
}

func TestRNG_DifferentSeedsDiverge(t *testing.T) {
	a := New("seed-one")
	b := New("seed-two")

	same := true
	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should not produce identical sequences")
}

func TestTurnSeed(t *testing.T) {
	assert.Equal(t, "abc-turn-12", TurnSeed("abc", 12))

	a := NewTurn("abc", 12)
	b := New("abc-turn-12")
	assert.Equal(t, a.Float64(), b.Float64())
}

func TestIntRange(t *testing.T) {
	r := New("range-test")

	for i := 0; i < 1000; i++ {
		v := r.IntRange(5, 10)
		require.GreaterOrEqual(t, v, 5)
		require.LessOrEqual(t, v, 10)
	}

	// Single-value range.
	assert.Equal(t, 3, r.IntRange(3, 3))

	// Swapped bounds still work.
	v := r.IntRange(10, 5)
	assert.GreaterOrEqual(t, v, 5)
	assert.LessOrEqual(t, v, 10)
}

func TestChance_Extremes(t *testing.T) {
	r := New("chance-test")
	for i := 0; i < 50; i++ {
		assert.False(t, r.Chance(0))
		assert.False(t, r.Chance(-1))
		assert.True(t, r.Chance(1))
		assert.True(t, r.Chance(2))
	}
}

func TestWeightedIndex(t *testing.T) {
	r := New("weights-test")

	assert.Equal(t, -1, r.WeightedIndex(nil))
	assert.Equal(t, -1, r.WeightedIndex([]int{0, 0}))
	assert.Equal(t, 0, r.WeightedIndex([]int{5}))

	// Zero-weight entries are never selected.
	for i := 0; i < 500; i++ {
		idx := r.WeightedIndex([]int{0, 7, 0})
		require.Equal(t, 1, idx)
	}
}

func TestWeightedIndex_Distribution(t *testing.T) {
	// A 1:99 weight split drawn many times should land on the heavy entry in
	// a proportion statistically consistent with 99%.
	r := New("distribution-test")
	weights := []int{1, 99}

	heavy := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		if r.WeightedIndex(weights) == 1 {
			heavy++
		}
	}

	ratio := float64(heavy) / draws
	assert.InDelta(t, 0.99, ratio, 0.01, "heavy entry drawn %d/%d times", heavy, draws)
}
