package cfr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountParams_Vanilla(t *testing.T) {
	params := DiscountParams{}
	assert.True(t, params.IsVanilla())
	pos, neg, sum := params.GetDiscountFactors(10)
	assert.Equal(t, 1.0, pos)
	assert.Equal(t, 1.0, neg)
	assert.Equal(t, 1.0, sum)
}

func TestDiscountParams_CFRPlus(t *testing.T) {
	params := DiscountParams{UseRegretMatchingPlus: true, LinearWeighting: true}
	assert.False(t, params.IsVanilla())
	pos, neg, sum := params.GetDiscountFactors(3)
	assert.Equal(t, 1.0, pos)
	assert.Equal(t, 0.0, neg)
	assert.InDelta(t, 0.75, sum, 1e-12)
}

func TestDiscountParams_Discounted(t *testing.T) {
	params := DiscountParams{DiscountAlpha: 1.5, DiscountBeta: 0.5, DiscountGamma: 2.0}
	pos, neg, sum := params.GetDiscountFactors(4)
	assert.InDelta(t, 8.0/9.0, pos, 1e-12)
	assert.InDelta(t, 2.0/3.0, neg, 1e-12)
	assert.InDelta(t, 16.0/25.0, sum, 1e-12)
}
