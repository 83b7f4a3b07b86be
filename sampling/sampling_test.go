package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}

	c := NewRand(8)
	same := true
	a = NewRand(7)
	for i := 0; i < 10; i++ {
		if a.Float64() != c.Float64() {
			same = false
		}
	}
	assert.False(t, same, "different seeds should produce different sequences")
}

func TestSampleOne_Frequencies(t *testing.T) {
	rng := NewRand(1)
	pv := []float64{0.2, 0.0, 0.5, 0.3}
	counts := make([]int, len(pv))
	n := 100000
	for i := 0; i < n; i++ {
		counts[SampleOne(rng, pv)]++
	}

	assert.Zero(t, counts[1], "zero-probability action sampled")
	for i, p := range pv {
		assert.InDelta(t, p, float64(counts[i])/float64(n), 0.01)
	}
}

func TestSampleOne_Degenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 2, SampleOne(rng, []float64{0, 0, 1}))
	}
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

func TestSampleOne_RoundingError(t *testing.T) {
	// Probabilities that sum to slightly less than 1.
	pv := []float64{0.3333333, 0.3333333, 0.3333333, 0}
	assert.Equal(t, 2, SampleOne(constRand(0.9999999999), pv))
}

func TestSampleOne_PanicsOnBadDistribution(t *testing.T) {
	assert.Panics(t, func() {
		SampleOne(constRand(0.9), []float64{0.2, 0.2})
	})
}
