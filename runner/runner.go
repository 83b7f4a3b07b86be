// Package runner trains several independently seeded solvers in parallel
// and summarizes their results.
package runner

import (
	"context"
	"math"
	"time"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/eval"
)

// Solver is a trainer whose average strategy can be queried and exported.
type Solver[I cfr.InfoSet] interface {
	cfr.Solver
	cfr.Strategy[I]
	Profile() *cfr.Profile
}

// Result is the outcome of the training run for a single seed.
type Result struct {
	Seed uint64
	cfr.TrainResult
	// Value is the expected value for player 0 of the trained average
	// strategy profile.
	Value          float64
	Exploitability float64
	Profile        *cfr.Profile
}

// Summary aggregates the results of all runs.
type Summary struct {
	Results              []Result
	MeanValue            float64
	StdDevValue          float64
	MeanExploitability   float64
	StdDevExploitability float64
}

// Options control a batch of training runs.
type Options struct {
	Seeds []uint64
	// Parallelism is the maximum number of concurrent runs.
	// Zero or negative means one run per seed at once.
	Parallelism int
	Train       cfr.TrainOptions
}

// Run trains one solver per seed, with newSolver constructing the solver
// for each seed. Each solver is only ever used by a single goroutine.
// When ctx is cancelled, runs in progress stop after their current epoch,
// runs that have not started are skipped, and the context error is returned.
func Run[S comparable, I cfr.InfoSet, A cfr.Action](
	ctx context.Context,
	game cfr.Game[S, I, A],
	newSolver func(seed uint64) Solver[I],
	opts Options,
) (*Summary, error) {
	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	results := make([]Result, len(opts.Seeds))
	for i, seed := range opts.Seeds {
		i, seed := i, seed // per-iteration copies; module targets go 1.21 loop semantics
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			train := opts.Train
			train.Context = ctx
			result := runOne(game, newSolver(seed), seed, train)
			if result.Interrupted {
				return ctx.Err()
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(results), nil
}

func runOne[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], solver Solver[I], seed uint64, opts cfr.TrainOptions) Result {
	start := time.Now()
	trainResult := cfr.Train(solver, opts)
	if trainResult.Interrupted {
		return Result{Seed: seed, TrainResult: trainResult}
	}

	value := eval.ExpectedValue(game, [2]cfr.Strategy[I]{solver, solver})[0]
	exploitability := eval.Exploitability(game, cfr.Strategy[I](solver))
	glog.Infof("[seed %d] %d epochs in %v: value %.6f, exploitability %.6f",
		seed, trainResult.Epoch, time.Since(start), value, exploitability)

	return Result{
		Seed:           seed,
		TrainResult:    trainResult,
		Value:          value,
		Exploitability: exploitability,
		Profile:        solver.Profile(),
	}
}

func summarize(results []Result) *Summary {
	values := lo.Map(results, func(r Result, _ int) float64 { return r.Value })
	exploitabilities := lo.Map(results, func(r Result, _ int) float64 { return r.Exploitability })

	s := &Summary{Results: results}
	s.MeanValue, s.StdDevValue = meanStdDev(values)
	s.MeanExploitability, s.StdDevExploitability = meanStdDev(exploitabilities)
	return s
}

func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], 0
	}

	return stat.MeanStdDev(x, nil)
}
