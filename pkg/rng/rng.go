// Package rng provides the deterministic random source used by turn
// resolution. Every RNG is constructed from an opaque seed string; two RNGs
// built from the same string produce identical draw sequences, which is what
// makes loot, combat and enhancement outcomes replayable for a given turn.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// RNG is a seeded pseudo-random generator. It is stateful and scoped to a
// single turn; never share one across turns or goroutines.
type RNG struct {
	seed string
	src  *rand.Rand
}

// New creates an RNG from a seed string. The string is hashed with SHA-256
// and the first 8 bytes become the math/rand source seed.
func New(seed string) *RNG {
	h := sha256.Sum256([]byte(seed))
	s := int64(binary.LittleEndian.Uint64(h[:8]))
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(s)),
	}
}

// TurnSeed derives the canonical seed string for a turn. Replaying a turn
// with the same world seed and turn number reproduces identical outcomes.
func TurnSeed(worldSeed string, turnNo int) string {
	return fmt.Sprintf("%s-turn-%d", worldSeed, turnNo)
}

// NewTurn is shorthand for New(TurnSeed(worldSeed, turnNo)).
func NewTurn(worldSeed string, turnNo int) *RNG {
	return New(TurnSeed(worldSeed, turnNo))
}

// Seed returns the seed string the RNG was constructed from.
func (r *RNG) Seed() string {
	return r.seed
}

// Float64 returns a uniform draw in [0, 1).
func (r *RNG) Float64() float64 {
	return r.src.Float64()
}

// IntRange returns a uniform integer in [min, max], inclusive on both ends.
// If max < min the bounds are swapped.
func (r *RNG) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + r.src.Intn(max-min+1)
}

// Chance returns true with probability p. p <= 0 is never, p >= 1 is always.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.src.Float64() < p
}

// WeightedIndex picks an index from weights by cumulative-weight selection.
// The roll lands in [0, totalWeight); each weight is subtracted in turn and
// the last index is the fallback for rounding. Non-positive weights are
// treated as zero. Returns -1 for an empty or all-zero slice.
func (r *RNG) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := r.src.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle randomizes the order of n elements using the swap function.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.src.Shuffle(n, swap)
}
