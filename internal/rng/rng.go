// Package rng provides the deterministic random source used by turn resolution.
// A run is identified by a seed string; each turn draws from its own stream so a
// saved game resumes with the same outcomes it would have had.
package rng

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

type Source struct {
	r *rand.Rand
}

// ForTurn returns the stream for one turn of the run named by seed.
func ForTurn(seed string, turn int) *Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return &Source{r: rand.New(rand.NewPCG(h.Sum64(), uint64(turn)))}
}

// WeeklySeed names the shared seed for the ISO week containing t.
func WeeklySeed(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (s *Source) Float64() float64 { return s.r.Float64() }

// IntN returns a value in [0, n). n <= 0 yields 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// Range returns a value in [lo, hi].
func (s *Source) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}
