package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regretlab/go-cfr"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "kuhn", c.Game)
	assert.Equal(t, "cfr", c.Solver)
	assert.Equal(t, 10000, c.Iterations)
	assert.Equal(t, 10*time.Second, c.ReportInterval)
	assert.True(t, c.Discount.Params().IsVanilla())
	assert.Equal(t, []uint64{1}, c.RunSeeds())
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfr.yaml")
	contents := `
game: leduc
solver: mccfr
iterations: 500
seeds: 3
report_interval: 1m
discount:
  alpha: 1.5
  beta: 0.5
  gamma: 2
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	t.Setenv("CFR_ITERATIONS", "700")
	t.Setenv("CFR_SEED", "10")

	c, err := Load(path, map[string]interface{}{"game": "dudo"})
	require.NoError(t, err)

	assert.Equal(t, "dudo", c.Game)
	assert.Equal(t, "mccfr", c.Solver)
	assert.Equal(t, 700, c.Iterations)
	assert.Equal(t, time.Minute, c.ReportInterval)
	assert.Equal(t, []uint64{10, 11, 12}, c.RunSeeds())
	assert.Equal(t, cfr.DiscountParams{DiscountAlpha: 1.5, DiscountBeta: 0.5, DiscountGamma: 2}, c.Discount.Params())
}

func TestLoad_CFRPlusDefaults(t *testing.T) {
	c, err := Load("", map[string]interface{}{"solver": "cfr+"})
	require.NoError(t, err)
	assert.Equal(t, cfr.DiscountParams{UseRegretMatchingPlus: true, LinearWeighting: true}, c.Discount.Params())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load("", map[string]interface{}{"game": "chess"})
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{"solver": "deep"})
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{"iterations": 0})
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{"iterations": 0, "duration": "1s"})
	assert.NoError(t, err)

	_, err = Load("", map[string]interface{}{"resume": "checkpoint", "seeds": 2})
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
