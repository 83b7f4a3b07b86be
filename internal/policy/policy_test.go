package policy

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestRegretMatching_IsDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 1000; trial++ {
		n := 1 + rng.Intn(8)
		regretSum := make([]float64, n)
		for i := range regretSum {
			regretSum[i] = 10 * rng.NormFloat64()
		}

		p := FromSums(regretSum, make([]float64, n))
		strat := p.Strategy()
		for _, x := range strat {
			assert.GreaterOrEqual(t, x, 0.0)
		}
		assert.InDelta(t, 1.0, floats.Sum(strat), 1e-9, "regrets: %v", regretSum)
	}
}

func TestRegretMatching_NonPositiveIsUniform(t *testing.T) {
	for _, regretSum := range [][]float64{
		{0, 0, 0},
		{-1, -2, -0.5},
		{0, -3, 0},
	} {
		p := FromSums(regretSum, make([]float64, len(regretSum)))
		for _, x := range p.Strategy() {
			assert.Equal(t, 1.0/3, x)
		}
	}
}

func TestRegretMatching_Proportional(t *testing.T) {
	p := FromSums([]float64{1.0, 0.0}, []float64{0, 0})
	assert.Equal(t, []float64{1.0, 0.0}, p.Strategy())

	p = FromSums([]float64{3.0, -5.0, 1.0}, []float64{0, 0, 0})
	assert.InDeltaSlice(t, []float64{0.75, 0, 0.25}, p.Strategy(), 1e-12)
}

func TestAverageStrategy(t *testing.T) {
	p := New(2)
	assert.Equal(t, []float64{0.5, 0.5}, p.AverageStrategy())

	p.AddStrategyWeight(1.0) // uniform strategy
	p.AddRegret(1.0, []float64{2.0, -1.0})
	p.RegretMatching()
	p.AddStrategyWeight(2.0) // all weight on action 0
	assert.InDeltaSlice(t, []float64{2.5 / 3, 0.5 / 3}, p.AverageStrategy(), 1e-12)

	// Repeated queries are identical and do not alias internal state.
	first := p.AverageStrategy()
	first[0] = -1
	assert.InDeltaSlice(t, []float64{2.5 / 3, 0.5 / 3}, p.AverageStrategy(), 1e-12)
}

func TestDiscount(t *testing.T) {
	p := FromSums([]float64{4, -2, 0}, []float64{1, 2, 3})
	p.Discount(0.5, 0, 0.1)
	assert.Equal(t, []float64{2, 0, 0}, p.RegretSum())
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, p.StrategySum(), 1e-12)
}

func TestNew_PanicsWithoutActions(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}

func TestGobRoundTrip(t *testing.T) {
	p := FromSums([]float64{1, -1, 2}, []float64{0.5, 0.25, 0.25})

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(p))

	var loaded Policy
	require.NoError(t, gob.NewDecoder(&buf).Decode(&loaded))
	assert.Equal(t, p.RegretSum(), loaded.RegretSum())
	assert.Equal(t, p.StrategySum(), loaded.StrategySum())
	assert.Equal(t, p.Strategy(), loaded.Strategy())
}
