package cfr

import (
	"gonum.org/v1/gonum/floats"
)

// Vanilla implements exact CFR: every epoch walks the full game tree and
// updates every reachable information set.
type Vanilla[S comparable, I InfoSet, A Action] struct {
	game    Game[S, I, A]
	params  DiscountParams
	nodes   *nodeTable[I, A]
	scratch *vectorPool

	iter    int
	touched int64
}

// NewVanilla returns an exact CFR trainer for the given game. Zero params
// yields plain CFR.
func NewVanilla[S comparable, I InfoSet, A Action](game Game[S, I, A], params DiscountParams) *Vanilla[S, I, A] {
	return &Vanilla[S, I, A]{
		game:    game,
		params:  params,
		nodes:   newNodeTable[I, A](),
		scratch: &vectorPool{},
	}
}

// TrainOneEpoch runs one iteration of CFR from the root and returns the
// value of the game for player 0 under the current strategy profile.
func (v *Vanilla[S, I, A]) TrainOneEpoch() float64 {
	root := v.game.NewRoot()
	ev := v.runHelper(root, [2]float64{1.0, 1.0})
	v.iter++
	v.nodes.discount(v.params, v.iter)
	return ev[0]
}

func (v *Vanilla[S, I, A]) runHelper(state S, reach [2]float64) [2]float64 {
	v.touched++

	if v.game.IsTerminal(state) {
		return v.game.Payouts(state)
	}

	if v.game.Player(state).IsChance() {
		return v.handleChanceNode(state, reach)
	}

	return v.handlePlayerNode(state, reach)
}

func (v *Vanilla[S, I, A]) handleChanceNode(state S, reach [2]float64) [2]float64 {
	var ev [2]float64
	for _, outcome := range v.game.ChanceActions(state) {
		child := v.game.WithAction(state, outcome.Action)
		p := outcome.Probability
		childEV := v.runHelper(child, [2]float64{reach[0] * p, reach[1] * p})
		ev[0] += p * childEV[0]
		ev[1] += p * childEV[1]
	}

	return ev
}

func (v *Vanilla[S, I, A]) handlePlayerNode(state S, reach [2]float64) [2]float64 {
	player := v.game.Player(state).Index()
	opponent := 1 - player
	actions := v.game.LegalActions(state)
	idx := v.nodes.lookup(v.game.InfoSet(state), func() []A { return actions })
	v.nodes.checkActions(idx, len(actions))

	node := v.nodes.at(idx)
	node.policy.RegretMatching()
	node.policy.AddStrategyWeight(reach[player])
	strategy := v.scratch.get(len(actions))
	defer v.scratch.put(strategy)
	copy(strategy, node.policy.Strategy())

	actionUtils := v.scratch.get(len(actions))
	defer v.scratch.put(actionUtils)
	var ev [2]float64
	for i, action := range actions {
		childReach := reach
		childReach[player] *= strategy[i]
		childEV := v.runHelper(v.game.WithAction(state, action), childReach)
		actionUtils[i] = childEV[player]
		ev[0] += strategy[i] * childEV[0]
		ev[1] += strategy[i] * childEV[1]
	}

	// The arena may have grown during recursion.
	node = v.nodes.at(idx)
	floats.AddConst(-ev[player], actionUtils)
	node.policy.AddRegret(reach[opponent], actionUtils)
	return ev
}

// GetStrategy implements Strategy with the average strategy of each
// information set visited so far.
func (v *Vanilla[S, I, A]) GetStrategy(infoSet I) ([]float64, bool) {
	return v.nodes.averageStrategy(infoSet)
}

// Resume continues training from cp: information sets start from the sums
// saved in cp as they are visited, and the epoch count continues from the
// checkpoint. It must be called before the first epoch.
func (v *Vanilla[S, I, A]) Resume(cp Checkpoint) error {
	iter, err := v.nodes.resume(cp)
	if err != nil {
		return err
	}

	v.iter = iter
	return nil
}

// Iter returns the number of completed epochs.
func (v *Vanilla[S, I, A]) Iter() int {
	return v.iter
}

// NumInfoSets returns the number of information sets visited so far.
func (v *Vanilla[S, I, A]) NumInfoSets() int {
	return v.nodes.len()
}

// TouchedNodes returns the total number of game-tree nodes visited by all
// epochs so far.
func (v *Vanilla[S, I, A]) TouchedNodes() int64 {
	return v.touched
}

// VisitNodes calls visitor on every information set node, in the order
// they were first visited.
func (v *Vanilla[S, I, A]) VisitNodes(visitor func(node *InfoSetNode[I, A])) {
	v.nodes.visit(visitor)
}

// Profile returns a snapshot of the average strategy of every information
// set visited so far.
func (v *Vanilla[S, I, A]) Profile() *Profile {
	return v.nodes.profile(v.iter)
}
