package cfr

import (
	"gonum.org/v1/gonum/floats"

	"github.com/regretlab/go-cfr/sampling"
)

// ExternalSampling implements external-sampling Monte Carlo CFR: chance and
// opponent actions are sampled, while all actions of the traversing player
// are explored.
type ExternalSampling[S comparable, I InfoSet, A Action] struct {
	game    Game[S, I, A]
	params  DiscountParams
	rng     sampling.Rand
	nodes   *nodeTable[I, A]
	scratch *vectorPool

	iter    int
	touched int64
}

// NewExternalSampling returns an external-sampling MCCFR trainer that draws
// all randomness from rng.
func NewExternalSampling[S comparable, I InfoSet, A Action](game Game[S, I, A], params DiscountParams, rng sampling.Rand) *ExternalSampling[S, I, A] {
	return &ExternalSampling[S, I, A]{
		game:    game,
		params:  params,
		rng:     rng,
		nodes:   newNodeTable[I, A](),
		scratch: &vectorPool{},
	}
}

// TrainOneEpoch runs one traversal with each player as the traverser and
// returns the sampled value of the game for player 0.
func (c *ExternalSampling[S, I, A]) TrainOneEpoch() float64 {
	ev := c.sample(c.game.NewRoot(), 0)
	c.sample(c.game.NewRoot(), 1)
	c.iter++
	c.nodes.discount(c.params, c.iter)
	return ev
}

func (c *ExternalSampling[S, I, A]) sample(state S, traverser int) float64 {
	c.touched++

	if c.game.IsTerminal(state) {
		return c.game.Payouts(state)[traverser]
	}

	player := c.game.Player(state)
	if player.IsChance() {
		return c.handleChanceNode(state, traverser)
	}

	if player.Index() == traverser {
		return c.handleTraversingPlayerNode(state, traverser)
	}

	return c.handleSampledPlayerNode(state, traverser)
}

func (c *ExternalSampling[S, I, A]) handleChanceNode(state S, traverser int) float64 {
	outcomes := c.game.ChanceActions(state)
	probs := c.scratch.get(len(outcomes))
	for i, outcome := range outcomes {
		probs[i] = outcome.Probability
	}

	selected := sampling.SampleOne(c.rng, probs)
	c.scratch.put(probs)
	// Sampling probabilities cancel out in the calculation of counterfactual value.
	return c.sample(c.game.WithAction(state, outcomes[selected].Action), traverser)
}

func (c *ExternalSampling[S, I, A]) lookupNode(state S) (int, []A) {
	actions := c.game.LegalActions(state)
	idx := c.nodes.lookup(c.game.InfoSet(state), func() []A { return actions })
	c.nodes.checkActions(idx, len(actions))
	c.nodes.at(idx).policy.RegretMatching()
	return idx, actions
}

func (c *ExternalSampling[S, I, A]) handleTraversingPlayerNode(state S, traverser int) float64 {
	idx, actions := c.lookupNode(state)
	strategy := c.scratch.get(len(actions))
	defer c.scratch.put(strategy)
	copy(strategy, c.nodes.at(idx).policy.Strategy())

	regrets := c.scratch.get(len(actions))
	defer c.scratch.put(regrets)
	for i, action := range actions {
		regrets[i] = c.sample(c.game.WithAction(state, action), traverser)
	}

	cfValue := floats.Dot(strategy, regrets)
	floats.AddConst(-cfValue, regrets)
	c.nodes.at(idx).policy.AddRegret(1.0, regrets)
	return cfValue
}

// Sample one opponent action according to the current strategy, and
// accumulate the average strategy for this node.
func (c *ExternalSampling[S, I, A]) handleSampledPlayerNode(state S, traverser int) float64 {
	idx, actions := c.lookupNode(state)
	node := c.nodes.at(idx)
	node.policy.AddStrategyWeight(1.0)
	selected := sampling.SampleOne(c.rng, node.policy.Strategy())
	return c.sample(c.game.WithAction(state, actions[selected]), traverser)
}

// GetStrategy implements Strategy with the average strategy of each
// information set visited so far.
func (c *ExternalSampling[S, I, A]) GetStrategy(infoSet I) ([]float64, bool) {
	return c.nodes.averageStrategy(infoSet)
}

// Resume continues training from cp: information sets start from the sums
// saved in cp as they are visited, and the epoch count continues from the
// checkpoint. It must be called before the first epoch.
func (c *ExternalSampling[S, I, A]) Resume(cp Checkpoint) error {
	iter, err := c.nodes.resume(cp)
	if err != nil {
		return err
	}

	c.iter = iter
	return nil
}

// Iter returns the number of completed epochs.
func (c *ExternalSampling[S, I, A]) Iter() int {
	return c.iter
}

// NumInfoSets returns the number of information sets visited so far.
func (c *ExternalSampling[S, I, A]) NumInfoSets() int {
	return c.nodes.len()
}

// TouchedNodes returns the total number of game-tree nodes visited by all
// epochs so far.
func (c *ExternalSampling[S, I, A]) TouchedNodes() int64 {
	return c.touched
}

// VisitNodes calls visitor on every information set node, in the order
// they were first visited.
func (c *ExternalSampling[S, I, A]) VisitNodes(visitor func(node *InfoSetNode[I, A])) {
	c.nodes.visit(visitor)
}

// Profile returns a snapshot of the average strategy of every information
// set visited so far.
func (c *ExternalSampling[S, I, A]) Profile() *Profile {
	return c.nodes.profile(c.iter)
}
