package eval

import (
	"gonum.org/v1/gonum/floats"

	"github.com/regretlab/go-cfr"
)

type bestResponder[S comparable, I cfr.InfoSet, A cfr.Action] struct {
	game      cfr.Game[S, I, A]
	strategy  cfr.Strategy[I]
	responder int

	reach       *reachProbabilities[S, I]
	actionUtils map[I][]float64
	values      map[S]float64
	fallbacks   int
}

func newBestResponder[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], strategy cfr.Strategy[I], responder int) *bestResponder[S, I, A] {
	return &bestResponder[S, I, A]{
		game:        game,
		strategy:    strategy,
		responder:   responder,
		reach:       newReachProbabilities[S, I](),
		actionUtils: make(map[I][]float64),
		values:      make(map[S]float64),
	}
}

func (br *bestResponder[S, I, A]) opponentStrategy(infoSet I, n int) []float64 {
	if _, ok := br.strategy.GetStrategy(infoSet); !ok {
		br.fallbacks++
	}

	return cfr.SafeGetStrategy(br.strategy, infoSet, n)
}

// accumulateReach walks the full tree and records, for every information
// set of the responder, the reach probability of each of its states.
func (br *bestResponder[S, I, A]) accumulateReach(state S, p float64) {
	if br.game.IsTerminal(state) {
		return
	}

	player := br.game.Player(state)
	if player.IsChance() {
		for _, outcome := range br.game.ChanceActions(state) {
			br.accumulateReach(br.game.WithAction(state, outcome.Action), p*outcome.Probability)
		}

		return
	}

	actions := br.game.LegalActions(state)
	if player.Index() == br.responder {
		br.reach.add(br.game.InfoSet(state), state, p)
		for _, action := range actions {
			br.accumulateReach(br.game.WithAction(state, action), p)
		}

		return
	}

	strategy := br.opponentStrategy(br.game.InfoSet(state), len(actions))
	for i, action := range actions {
		br.accumulateReach(br.game.WithAction(state, action), p*strategy[i])
	}
}

// actionUtilities returns the utility to the responder of each action at
// the given information set, summed over its states weighted by reach.
func (br *bestResponder[S, I, A]) actionUtilities(infoSet I) []float64 {
	if utils, ok := br.actionUtils[infoSet]; ok {
		return utils
	}

	set := br.reach.get(infoSet)
	actions := br.game.LegalActions(set.states[0])
	utils := make([]float64, len(actions))
	for j, state := range set.states {
		for i, action := range actions {
			utils[i] += set.probs[j] * br.value(br.game.WithAction(state, action))
		}
	}

	br.actionUtils[infoSet] = utils
	return utils
}

// value returns the utility to the responder at state when playing a best
// response from there on.
func (br *bestResponder[S, I, A]) value(state S) float64 {
	if v, ok := br.values[state]; ok {
		return v
	}

	v := br.computeValue(state)
	br.values[state] = v
	return v
}

func (br *bestResponder[S, I, A]) computeValue(state S) float64 {
	if br.game.IsTerminal(state) {
		return br.game.Payouts(state)[br.responder]
	}

	player := br.game.Player(state)
	if player.IsChance() {
		var v float64
		for _, outcome := range br.game.ChanceActions(state) {
			v += outcome.Probability * br.value(br.game.WithAction(state, outcome.Action))
		}

		return v
	}

	actions := br.game.LegalActions(state)
	if player.Index() == br.responder {
		utils := br.actionUtilities(br.game.InfoSet(state))
		best := floats.MaxIdx(utils)
		return br.value(br.game.WithAction(state, actions[best]))
	}

	strategy := cfr.SafeGetStrategy(br.strategy, br.game.InfoSet(state), len(actions))
	var v float64
	for i, action := range actions {
		v += strategy[i] * br.value(br.game.WithAction(state, action))
	}

	return v
}
