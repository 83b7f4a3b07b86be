// Package sampling provides the random number generation used by the
// Monte Carlo solvers.
package sampling

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/frand"
)

const tol = 1e-3

// Rand is the source of randomness used for sampling.
// *frand.RNG and *math/rand.Rand both implement it.
type Rand interface {
	// Float64 returns a uniform random number in [0, 1).
	Float64() float64
}

// NewRand returns a deterministic RNG seeded with the given value.
// Two RNGs created with the same seed produce the same sequence.
func NewRand(seed uint64) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return frand.NewCustom(key[:], 1024, 12)
}

// SampleOne returns the first index i of pv where sum(pv[:i+1]) > x,
// with x drawn uniformly from [0, 1).
func SampleOne(rng Rand, pv []float64) int {
	x := rng.Float64()
	var cumProb float64
	for i, p := range pv {
		cumProb += p
		if cumProb > x {
			return i
		}
	}

	if cumProb < 1.0-tol { // Leave room for floating point error.
		panic(fmt.Errorf("probability distribution does not sum to 1! x=%v, pv=%v", x, pv))
	}

	// Rounding error: return the last action with non-zero probability.
	for i := len(pv) - 1; i > 0; i-- {
		if pv[i] > 0 {
			return i
		}
	}

	return 0
}
