package cfr

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/regretlab/go-cfr/internal/policy"
)

// InfoSetNode accumulates the regrets and strategy weights of a single
// information set over the course of training.
type InfoSetNode[I InfoSet, A Action] struct {
	infoSet I
	actions []A
	policy  *policy.Policy
}

func newInfoSetNode[I InfoSet, A Action](infoSet I, actions []A) InfoSetNode[I, A] {
	if len(actions) == 0 {
		panic(fmt.Errorf("no legal actions at decision node with info set %v", infoSet))
	}

	return InfoSetNode[I, A]{
		infoSet: infoSet,
		actions: append([]A(nil), actions...),
		policy:  policy.New(len(actions)),
	}
}

// InfoSet returns the information set of this node.
func (n *InfoSetNode[I, A]) InfoSet() I {
	return n.infoSet
}

// Actions returns the actions available at this node, in the order used
// by all strategy vectors of the node.
func (n *InfoSetNode[I, A]) Actions() []A {
	return n.actions
}

// AverageStrategy returns the average strategy over all iterations.
func (n *InfoSetNode[I, A]) AverageStrategy() []float64 {
	return n.policy.AverageStrategy()
}

// RegretSum returns a copy of the accumulated regrets of this node.
func (n *InfoSetNode[I, A]) RegretSum() []float64 {
	return n.policy.RegretSum()
}

// StrategySum returns a copy of the accumulated strategy weights of this node.
func (n *InfoSetNode[I, A]) StrategySum() []float64 {
	return n.policy.StrategySum()
}

// String implements fmt.Stringer.
func (n *InfoSetNode[I, A]) String() string {
	return formatStrategy(n.infoSet.String(), actionNames(n.actions), n.AverageStrategy())
}

// nodeTable stores InfoSetNodes in an arena indexed by InfoSet.
//
// Pointers returned by at are only valid until the next call to lookup,
// which may grow the arena. Traversals hold indices across recursive calls
// and re-fetch the node afterwards.
type nodeTable[I InfoSet, A Action] struct {
	nodes []InfoSetNode[I, A]
	index map[I]int

	// If set, new nodes start from the sums saved in the checkpoint.
	checkpoint Checkpoint
}

// Checkpoint holds the accumulated regrets and strategy weights of a
// previous training run, keyed by InfoSet key.
type Checkpoint interface {
	// CheckpointIterations returns the number of epochs that had been
	// completed when the checkpoint was written.
	CheckpointIterations() (int, error)
	// NodeSums returns the sums saved for the given InfoSet key, or
	// ok == false if the info set was never visited.
	NodeSums(key string) (regretSum, strategySum []float64, ok bool, err error)
}

func newNodeTable[I InfoSet, A Action]() *nodeTable[I, A] {
	return &nodeTable[I, A]{
		index: make(map[I]int),
	}
}

// lookup returns the index of the node for the given info set, creating it
// with the given legal actions if this is the first visit.
func (t *nodeTable[I, A]) lookup(infoSet I, legalActions func() []A) int {
	if i, ok := t.index[infoSet]; ok {
		return i
	}

	i := len(t.nodes)
	node := newInfoSetNode(infoSet, legalActions())
	if t.checkpoint != nil {
		t.restore(&node)
	}

	t.nodes = append(t.nodes, node)
	t.index[infoSet] = i
	if len(t.nodes)%100000 == 0 {
		glog.V(2).Infof("%d infosets", len(t.nodes))
	}

	return i
}

// resume makes nodes created from now on start from the sums saved in cp,
// and returns the number of epochs cp had completed. The table must be empty.
func (t *nodeTable[I, A]) resume(cp Checkpoint) (int, error) {
	if len(t.nodes) > 0 {
		return 0, errors.Errorf("cannot resume after %d info sets were visited", len(t.nodes))
	}

	iter, err := cp.CheckpointIterations()
	if err != nil {
		return 0, errors.Wrap(err, "reading checkpoint")
	}

	t.checkpoint = cp
	return iter, nil
}

func (t *nodeTable[I, A]) restore(node *InfoSetNode[I, A]) {
	key := node.infoSet.String()
	regretSum, strategySum, ok, err := t.checkpoint.NodeSums(key)
	if err != nil {
		panic(errors.Wrapf(err, "restoring %s", key))
	}

	if !ok {
		return
	}

	if len(regretSum) != len(node.actions) || len(strategySum) != len(node.actions) {
		panic(fmt.Errorf("checkpoint for %s has %d regrets and %d strategy weights but node has n_actions=%d",
			key, len(regretSum), len(strategySum), len(node.actions)))
	}

	node.policy = policy.FromSums(regretSum, strategySum)
}

func (t *nodeTable[I, A]) at(i int) *InfoSetNode[I, A] {
	return &t.nodes[i]
}

func (t *nodeTable[I, A]) get(infoSet I) (*InfoSetNode[I, A], bool) {
	i, ok := t.index[infoSet]
	if !ok {
		return nil, false
	}

	return &t.nodes[i], true
}

func (t *nodeTable[I, A]) len() int {
	return len(t.nodes)
}

// checkActions panics if the node was created with a different number of
// actions than the game now reports for the same info set.
func (t *nodeTable[I, A]) checkActions(i int, nActions int) {
	n := &t.nodes[i]
	if len(n.actions) != nActions {
		panic(fmt.Errorf("policy has n_actions=%v but node has n_actions=%v: %v",
			len(n.actions), nActions, n.infoSet))
	}
}

func (t *nodeTable[I, A]) discount(params DiscountParams, iter int) {
	if params.IsVanilla() {
		return
	}

	discountPos, discountNeg, discountSum := params.GetDiscountFactors(iter)
	glog.V(1).Infof("Discounting %d policies", len(t.nodes))
	for i := range t.nodes {
		t.nodes[i].policy.Discount(discountPos, discountNeg, discountSum)
	}
}

func (t *nodeTable[I, A]) averageStrategy(infoSet I) ([]float64, bool) {
	n, ok := t.get(infoSet)
	if !ok {
		return nil, false
	}

	return n.AverageStrategy(), true
}

func (t *nodeTable[I, A]) visit(visitor func(node *InfoSetNode[I, A])) {
	for i := range t.nodes {
		visitor(&t.nodes[i])
	}
}

func (t *nodeTable[I, A]) profile(iter int) *Profile {
	entries := make([]ProfileEntry, 0, len(t.nodes))
	for i := range t.nodes {
		n := &t.nodes[i]
		entries = append(entries, ProfileEntry{
			InfoSet:  n.infoSet.String(),
			Actions:  actionNames(n.actions),
			Strategy: n.AverageStrategy(),
		})
	}

	return NewProfile(iter, entries)
}

func actionNames[A Action](actions []A) []string {
	return lo.Map(actions, func(a A, _ int) string {
		return a.String()
	})
}
