package cfr

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Solver is implemented by the trainers in this package.
type Solver interface {
	// TrainOneEpoch runs one iteration and returns the value of the game
	// for player 0 observed during it.
	TrainOneEpoch() float64
	// Iter returns the number of completed epochs.
	Iter() int
	// NumInfoSets returns the number of information sets visited so far.
	NumInfoSets() int
	// TouchedNodes returns the number of game-tree nodes visited so far.
	TouchedNodes() int64
}

var (
	_ Solver = (*Vanilla[int, PlayerID, PlayerID])(nil)
	_ Solver = (*ExternalSampling[int, PlayerID, PlayerID])(nil)
)

// TrainOptions control how long Train runs and how often it reports.
type TrainOptions struct {
	// Iterations is the maximum number of epochs to run. Zero means no limit.
	Iterations int
	// Duration is the maximum wall-clock time to train. Zero means no limit.
	Duration time.Duration
	// ReportInterval is the wall-clock time between calls to Report.
	// Zero reports only once, when training finishes.
	ReportInterval time.Duration
	// Report, if non-nil, is called periodically with the training progress.
	Report func(Progress)
	// Context, if non-nil, stops training once it is done. It is checked
	// between epochs, so the current epoch always runs to completion.
	Context context.Context
}

// Progress is a snapshot of a training run.
type Progress struct {
	Epoch        int
	Elapsed      time.Duration
	AverageValue float64
	NumInfoSets  int
	TouchedNodes int64
}

// TrainResult summarizes a completed training run.
type TrainResult struct {
	Progress
	// Interrupted is true if training stopped because Context was done.
	Interrupted bool
}

// Train runs epochs of solver until the iteration or duration limit in
// opts is reached. At least one limit must be set.
func Train(solver Solver, opts TrainOptions) TrainResult {
	if opts.Iterations <= 0 && opts.Duration <= 0 {
		panic("cfr.Train: one of Iterations or Duration must be positive")
	}

	start := time.Now()
	lastReport := start
	var sumValue float64
	var epochs int
	progress := func() Progress {
		avg := 0.0
		if epochs > 0 {
			avg = sumValue / float64(epochs)
		}

		return Progress{
			Epoch:        solver.Iter(),
			Elapsed:      time.Since(start),
			AverageValue: avg,
			NumInfoSets:  solver.NumInfoSets(),
			TouchedNodes: solver.TouchedNodes(),
		}
	}

	interrupted := false
	for {
		if opts.Iterations > 0 && epochs >= opts.Iterations {
			break
		}
		if opts.Duration > 0 && time.Since(start) >= opts.Duration {
			break
		}
		if opts.Context != nil && opts.Context.Err() != nil {
			glog.Infof("Training interrupted: %v", opts.Context.Err())
			interrupted = true
			break
		}

		sumValue += solver.TrainOneEpoch()
		epochs++

		if opts.ReportInterval > 0 && time.Since(lastReport) >= opts.ReportInterval {
			p := progress()
			glog.Infof("[epoch %d] %v elapsed, average game value: %.6f, %d infosets, %d nodes touched",
				p.Epoch, p.Elapsed, p.AverageValue, p.NumInfoSets, p.TouchedNodes)
			if opts.Report != nil {
				opts.Report(p)
			}
			lastReport = time.Now()
		}
	}

	p := progress()
	glog.Infof("Finished %d epochs in %v, average game value: %.6f", epochs, p.Elapsed, p.AverageValue)
	if opts.Report != nil {
		opts.Report(p)
	}

	return TrainResult{Progress: p, Interrupted: interrupted}
}
