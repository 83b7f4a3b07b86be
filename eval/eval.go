// Package eval computes best responses, expected values and the
// exploitability of strategy profiles.
package eval

import (
	"fmt"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"

	"github.com/regretlab/go-cfr"
)

const negativeTol = 1e-9

// BestResponseResult is a pure best response together with its value.
type BestResponseResult[I cfr.InfoSet] struct {
	// Strategy is one-hot at the chosen action of every information set
	// of the responder.
	Strategy cfr.Table[I]
	// Value is the expected value for the responder when playing Strategy
	// against the fixed strategy of the opponent.
	Value float64
}

// Exploitability returns the average of the best response values of both
// players against the given strategy. It is zero exactly when the strategy
// is a Nash equilibrium.
//
// Information sets that strategy does not know are played uniformly.
func Exploitability[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], strategy cfr.Strategy[I]) float64 {
	br0 := BestResponseValue(game, strategy, cfr.Player(0))
	br1 := BestResponseValue(game, strategy, cfr.Player(1))
	exploitability := (br0 + br1) / 2
	glog.V(1).Infof("Best response values: p0 = %.6f, p1 = %.6f, exploitability = %.6f",
		br0, br1, exploitability)
	if exploitability < -negativeTol {
		panic(fmt.Errorf("negative exploitability %v (best response values %v, %v)",
			exploitability, br0, br1))
	}

	return exploitability
}

// BestResponseValue returns the expected value for responder of playing a
// best response against strategy.
func BestResponseValue[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], strategy cfr.Strategy[I], responder cfr.PlayerID) float64 {
	return BestResponse(game, strategy, responder).Value
}

// BestResponse computes a pure best response for responder against the
// fixed strategy of the opponent. Ties between actions are broken in favor
// of the first action in enumeration order.
func BestResponse[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], strategy cfr.Strategy[I], responder cfr.PlayerID) BestResponseResult[I] {
	br := newBestResponder(game, strategy, responder.Index())
	root := game.NewRoot()
	br.accumulateReach(root, 1.0)

	table := make(cfr.Table[I], len(br.reach.infoSets))
	for _, infoSet := range br.reach.infoSets {
		utils := br.actionUtilities(infoSet)
		pure := make([]float64, len(utils))
		pure[floats.MaxIdx(utils)] = 1.0
		table[infoSet] = pure
	}

	if br.fallbacks > 0 {
		glog.V(1).Infof("%d opponent info sets were not found in the strategy, played uniformly", br.fallbacks)
	}

	var strategies [2]strategyFunc[I]
	strategies[br.responder] = strictStrategy[I](table)
	strategies[1-br.responder] = br.opponentStrategy
	value := expectedValue(game, root, strategies)[br.responder]
	if glog.V(2) {
		glog.Infof("Best response for %v: value %.6f (tree walk %.6f), %d info sets",
			responder, value, br.value(root), len(table))
	}

	return BestResponseResult[I]{
		Strategy: table,
		Value:    value,
	}
}

// ExpectedValue returns the expected payouts when player i plays strategies[i].
// Information sets that a strategy does not know are played uniformly.
func ExpectedValue[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], strategies [2]cfr.Strategy[I]) [2]float64 {
	var fns [2]strategyFunc[I]
	for i, s := range strategies {
		fns[i] = safeStrategy(s)
	}

	return expectedValue(game, game.NewRoot(), fns)
}

// strategyFunc returns the action probabilities at an information set
// with n legal actions.
type strategyFunc[I cfr.InfoSet] func(infoSet I, n int) []float64

func safeStrategy[I cfr.InfoSet](s cfr.Strategy[I]) strategyFunc[I] {
	return func(infoSet I, n int) []float64 {
		return cfr.SafeGetStrategy(s, infoSet, n)
	}
}

func strictStrategy[I cfr.InfoSet](s cfr.Strategy[I]) strategyFunc[I] {
	return func(infoSet I, n int) []float64 {
		p, ok := s.GetStrategy(infoSet)
		if !ok {
			panic(fmt.Errorf("no strategy for info set %v", infoSet))
		}

		if len(p) != n {
			panic(fmt.Errorf("strategy for %v has %d actions, expected %d", infoSet, len(p), n))
		}

		return p
	}
}

func expectedValue[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], state S, strategies [2]strategyFunc[I]) [2]float64 {
	if game.IsTerminal(state) {
		return game.Payouts(state)
	}

	var ev [2]float64
	player := game.Player(state)
	if player.IsChance() {
		for _, outcome := range game.ChanceActions(state) {
			childEV := expectedValue(game, game.WithAction(state, outcome.Action), strategies)
			ev[0] += outcome.Probability * childEV[0]
			ev[1] += outcome.Probability * childEV[1]
		}

		return ev
	}

	actions := game.LegalActions(state)
	strategy := strategies[player.Index()](game.InfoSet(state), len(actions))
	for i, action := range actions {
		if strategy[i] == 0 {
			continue
		}

		childEV := expectedValue(game, game.WithAction(state, action), strategies)
		ev[0] += strategy[i] * childEV[0]
		ev[1] += strategy[i] * childEV[1]
	}

	return ev
}
