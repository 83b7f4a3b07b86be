// Command cfr trains a strategy profile for one of the bundled games and
// reports its exploitability.
package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/config"
	"github.com/regretlab/go-cfr/dudo"
	"github.com/regretlab/go-cfr/eval"
	"github.com/regretlab/go-cfr/kuhn"
	"github.com/regretlab/go-cfr/ldbstore"
	"github.com/regretlab/go-cfr/leduc"
	"github.com/regretlab/go-cfr/progress"
	"github.com/regretlab/go-cfr/runner"
	"github.com/regretlab/go-cfr/sampling"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	pprofAddr  = flag.String("pprof", "", "If set, serve pprof on this address")

	// Explicitly set flags override the configuration file.
	_ = flag.String("game", "kuhn", "Game to solve: kuhn, leduc or dudo")
	_ = flag.String("solver", "cfr", "Solver: cfr, cfr+ or mccfr")
	_ = flag.Int("iterations", 10000, "Number of training epochs")
	_ = flag.Duration("duration", 0, "Maximum training time")
	_ = flag.Uint64("seed", 1, "Random seed of the first run")
	_ = flag.Int("seeds", 1, "Number of independently seeded runs")
	_ = flag.Int("parallelism", 0, "Maximum number of concurrent runs")
	_ = flag.Duration("report_interval", 0, "Time between progress reports")
	_ = flag.String("progress_log", "", "CSV file to log exploitability to")
	_ = flag.String("output", "", "Where to save the average strategy: *.gob, *.yaml or a LevelDB directory")
	_ = flag.String("resume", "", "LevelDB directory with a checkpoint to continue training from")
)

var configFlags = map[string]bool{
	"game": true, "solver": true, "iterations": true, "duration": true,
	"seed": true, "seeds": true, "parallelism": true, "report_interval": true,
	"progress_log": true, "output": true, "resume": true,
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *pprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				glog.Errorf("Error serving pprof on %s: %v", *pprofAddr, err)
			}
		}()
	}

	overrides := make(map[string]interface{})
	flag.Visit(func(f *flag.Flag) {
		if configFlags[f.Name] {
			overrides[f.Name] = f.Value.(flag.Getter).Get()
		}
	})

	c, err := config.Load(*configPath, overrides)
	if err != nil {
		glog.Exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch c.Game {
	case "kuhn":
		err = run[kuhn.State, kuhn.InfoSet, kuhn.Action](ctx, kuhn.New(), c)
	case "leduc":
		err = run[leduc.State, leduc.InfoSet, leduc.Action](ctx, leduc.New(), c)
	case "dudo":
		err = run[dudo.State, dudo.InfoSet, dudo.Action](ctx, dudo.New(), c)
	}

	if err != nil {
		glog.Exit(err)
	}
}

type solver[I cfr.InfoSet, A cfr.Action] interface {
	runner.Solver[I]
	VisitNodes(func(*cfr.InfoSetNode[I, A]))
	Resume(cfr.Checkpoint) error
}

func newSolver[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], c *config.Config, seed uint64) solver[I, A] {
	params := c.Discount.Params()
	if c.Solver == "mccfr" {
		return cfr.NewExternalSampling(game, params, sampling.NewRand(seed))
	}

	return cfr.NewVanilla(game, params)
}

func run[S comparable, I cfr.InfoSet, A cfr.Action](ctx context.Context, game cfr.Game[S, I, A], c *config.Config) error {
	trainOpts := cfr.TrainOptions{
		Iterations:     c.Iterations,
		Duration:       c.Duration,
		ReportInterval: c.ReportInterval,
		Context:        ctx,
	}

	if c.Seeds > 1 {
		return runSeeds(ctx, game, c, trainOpts)
	}

	s := newSolver(game, c, c.Seed)
	var checkpoint *ldbstore.Store
	if c.Resume != "" {
		var err error
		checkpoint, err = ldbstore.Open(c.Resume, nil)
		if err != nil {
			return err
		}
		defer checkpoint.Close()

		if err := s.Resume(checkpoint); err != nil {
			return err
		}

		glog.Infof("Resuming from epoch %d of %s", s.Iter(), c.Resume)
	}

	if c.ProgressLog != "" {
		f, err := os.Create(c.ProgressLog)
		if err != nil {
			return errors.Wrap(err, "creating progress log")
		}
		defer f.Close()

		w := progress.NewCSVWriter(f)
		trainOpts.Report = func(p cfr.Progress) {
			exploitability := eval.Exploitability(game, cfr.Strategy[I](s))
			glog.Infof("[epoch %d] exploitability: %.6f", p.Epoch, exploitability)
			err := w.Write(progress.Record{
				Epoch:          p.Epoch,
				Elapsed:        p.Elapsed,
				Exploitability: exploitability,
			})
			if err != nil {
				glog.Errorf("Error writing progress log: %v", err)
			}
		}
	}

	if result := cfr.Train(s, trainOpts); result.Interrupted {
		glog.Warningf("Training stopped at epoch %d, saving the strategy trained so far", result.Epoch)
	}

	// Release the checkpoint so that -output may name the same directory.
	if checkpoint != nil {
		if err := checkpoint.Close(); err != nil {
			return errors.Wrap(err, "closing checkpoint")
		}
	}

	value := eval.ExpectedValue(game, [2]cfr.Strategy[I]{s, s})
	glog.Infof("Expected value of the average strategy: %.6f", value[0])
	glog.Infof("Exploitability: %.6f", eval.Exploitability(game, cfr.Strategy[I](s)))

	profile := s.Profile()
	if c.Output != "" {
		if err := save(c.Output, profile, s.Iter(), s.VisitNodes); err != nil {
			return err
		}
	}

	_, err := profile.WriteTo(os.Stdout)
	return err
}

func runSeeds[S comparable, I cfr.InfoSet, A cfr.Action](ctx context.Context, game cfr.Game[S, I, A], c *config.Config, trainOpts cfr.TrainOptions) error {
	summary, err := runner.Run(ctx, game, func(seed uint64) runner.Solver[I] {
		return newSolver(game, c, seed)
	}, runner.Options{
		Seeds:       c.RunSeeds(),
		Parallelism: c.Parallelism,
		Train:       trainOpts,
	})
	if err != nil {
		return err
	}

	glog.Infof("Value over %d runs: %.6f ± %.6f", len(summary.Results), summary.MeanValue, summary.StdDevValue)
	glog.Infof("Exploitability over %d runs: %.6f ± %.6f",
		len(summary.Results), summary.MeanExploitability, summary.StdDevExploitability)

	best := lo.MinBy(summary.Results, func(a, b runner.Result) bool {
		return a.Exploitability < b.Exploitability
	})
	glog.Infof("Least exploitable run: seed %d (%.6f)", best.Seed, best.Exploitability)

	if c.Output != "" {
		if err := save[I, A](c.Output, best.Profile, 0, nil); err != nil {
			return err
		}
	}

	_, err = best.Profile.WriteTo(os.Stdout)
	return err
}

// save writes the profile to path. A path ending in .gob or .yaml is
// written as a single file; anything else is taken to be a LevelDB
// directory, which also receives the regret and strategy sums of the
// nodes if visit is non-nil, as a checkpoint of epoch iter that -resume
// can continue from.
func save[I cfr.InfoSet, A cfr.Action](path string, profile *cfr.Profile, iter int, visit func(func(*cfr.InfoSetNode[I, A]))) error {
	glog.Infof("Saving strategy profile to %s", path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gob":
		return writeFile(path, func(f *os.File) error { return cfr.SaveProfile(f, profile) })
	case ".yaml", ".yml":
		return writeFile(path, func(f *os.File) error { return cfr.WriteProfileYAML(f, profile) })
	}

	store, err := ldbstore.Open(path, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteProfile(profile); err != nil {
		return err
	}

	if visit != nil {
		return ldbstore.WriteCheckpoint(store, iter, visit)
	}

	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "closing %s", path)
}
