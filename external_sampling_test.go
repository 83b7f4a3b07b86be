package cfr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/eval"
	"github.com/regretlab/go-cfr/kuhn"
	"github.com/regretlab/go-cfr/sampling"
)

func newKuhnMCCFR(seed uint64) *cfr.ExternalSampling[kuhn.State, kuhn.InfoSet, kuhn.Action] {
	return cfr.NewExternalSampling[kuhn.State, kuhn.InfoSet, kuhn.Action](
		kuhn.New(), cfr.DiscountParams{}, sampling.NewRand(seed))
}

func TestExternalSampling_KuhnConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long MCCFR run in short mode")
	}

	solver := newKuhnMCCFR(1)
	result := cfr.Train(solver, cfr.TrainOptions{Iterations: 100000})
	t.Logf("Average game value: %.4f", result.AverageValue)
	assert.Equal(t, 12, solver.NumInfoSets())

	exploitability := eval.Exploitability[kuhn.State, kuhn.InfoSet, kuhn.Action](kuhn.New(), solver)
	t.Logf("Exploitability after %d epochs: %.6f", solver.Iter(), exploitability)
	assert.Less(t, exploitability, 0.05)

	ev := eval.ExpectedValue[kuhn.State, kuhn.InfoSet, kuhn.Action](
		kuhn.New(), [2]cfr.Strategy[kuhn.InfoSet]{solver, solver})
	assert.InDelta(t, -1.0/18, ev[0], 0.05)
}

func TestExternalSampling_Deterministic(t *testing.T) {
	a := newKuhnMCCFR(42)
	b := newKuhnMCCFR(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.TrainOneEpoch(), b.TrainOneEpoch())
	}

	assert.Equal(t, a.Profile().Entries, b.Profile().Entries)
	assert.Equal(t, a.TouchedNodes(), b.TouchedNodes())
}

func TestExternalSampling_OneEpoch(t *testing.T) {
	solver := newKuhnMCCFR(7)
	ev := solver.TrainOneEpoch()
	assert.LessOrEqual(t, ev, 2.0)
	assert.GreaterOrEqual(t, ev, -2.0)
	assert.Equal(t, 1, solver.Iter())

	// Each traversal samples one deal, and visits every action of the
	// traverser: at most 2 chance/root nodes plus the 9 nodes below a deal.
	assert.LessOrEqual(t, solver.TouchedNodes(), int64(2*10))
	assert.Greater(t, solver.NumInfoSets(), 0)
}

func TestExternalSampling_OnlyOpponentNodesAccumulateStrategy(t *testing.T) {
	solver := newKuhnMCCFR(3)
	solver.TrainOneEpoch()

	solver.VisitNodes(func(node *cfr.InfoSetNode[kuhn.InfoSet, kuhn.Action]) {
		total := node.StrategySum()[0] + node.StrategySum()[1]
		// Strategy weight is only ever added in units of one full
		// distribution, once per opponent visit.
		assert.InDelta(t, float64(int(total+0.5)), total, 1e-9, node.InfoSet().String())
	})
}
