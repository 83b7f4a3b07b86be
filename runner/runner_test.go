package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/kuhn"
	"github.com/regretlab/go-cfr/sampling"
)

func newKuhnMCCFR(seed uint64) Solver[kuhn.InfoSet] {
	return cfr.NewExternalSampling[kuhn.State, kuhn.InfoSet, kuhn.Action](
		kuhn.New(), cfr.DiscountParams{}, sampling.NewRand(seed))
}

func TestRun_MCCFRMatchesEquilibriumValue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MCCFR runs in short mode")
	}

	summary, err := Run[kuhn.State, kuhn.InfoSet, kuhn.Action](context.Background(), kuhn.New(), newKuhnMCCFR, Options{
		Seeds:       []uint64{1, 2, 3, 4},
		Parallelism: 2,
		Train:       cfr.TrainOptions{Iterations: 50000},
	})
	require.NoError(t, err)
	require.Len(t, summary.Results, 4)

	for i, r := range summary.Results {
		assert.Equal(t, uint64(i+1), r.Seed)
		assert.Equal(t, 50000, r.Epoch)
		assert.Equal(t, 12, r.Profile.Len())
		t.Logf("[seed %d] value %.4f, exploitability %.4f", r.Seed, r.Value, r.Exploitability)
	}

	t.Logf("Value: %.4f ± %.4f", summary.MeanValue, summary.StdDevValue)
	assert.InDelta(t, -1.0/18, summary.MeanValue, 0.03)
	assert.Less(t, summary.MeanExploitability, 0.05)
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	summary, err := Run[kuhn.State, kuhn.InfoSet, kuhn.Action](context.Background(), kuhn.New(), newKuhnMCCFR, Options{
		Seeds: []uint64{1, 2, 1},
		Train: cfr.TrainOptions{Iterations: 200},
	})
	require.NoError(t, err)

	a, b, c := summary.Results[0], summary.Results[1], summary.Results[2]
	assert.Equal(t, a.Profile.Entries, c.Profile.Entries)
	assert.NotEqual(t, a.Profile.Entries, b.Profile.Entries)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run[kuhn.State, kuhn.InfoSet, kuhn.Action](ctx, kuhn.New(), newKuhnMCCFR, Options{
		Seeds: []uint64{1},
		Train: cfr.TrainOptions{Iterations: 10},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type cancellingSolver struct {
	Solver[kuhn.InfoSet]
	after  int
	cancel context.CancelFunc
}

func (s *cancellingSolver) TrainOneEpoch() float64 {
	v := s.Solver.TrainOneEpoch()
	if s.Iter() == s.after {
		s.cancel()
	}

	return v
}

func TestRun_CancelledWhileTraining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var solvers []*cancellingSolver
	newSolver := func(seed uint64) Solver[kuhn.InfoSet] {
		s := &cancellingSolver{Solver: newKuhnMCCFR(seed), after: 10, cancel: cancel}
		solvers = append(solvers, s)
		return s
	}

	_, err := Run[kuhn.State, kuhn.InfoSet, kuhn.Action](ctx, kuhn.New(), newSolver, Options{
		Seeds:       []uint64{1},
		Parallelism: 1,
		Train:       cfr.TrainOptions{Iterations: 100000000},
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, solvers, 1)
	assert.Equal(t, 10, solvers[0].Iter())
}

func TestMeanStdDev(t *testing.T) {
	mean, std := meanStdDev([]float64{1})
	assert.Equal(t, 1.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = meanStdDev([]float64{1, 3})
	assert.InDelta(t, 2.0, mean, 1e-12)
	assert.InDelta(t, 1.4142135623730951, std, 1e-12)
}
