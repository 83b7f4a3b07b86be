package eval

import (
	"fmt"

	"github.com/regretlab/go-cfr"
)

// reachSet holds the concrete states of one information set together with
// their accumulated reach probabilities, in the order they were first seen.
type reachSet[S comparable] struct {
	states []S
	probs  []float64
	index  map[S]int
}

func (r *reachSet[S]) add(state S, p float64) {
	if i, ok := r.index[state]; ok {
		r.probs[i] += p
		return
	}

	r.index[state] = len(r.states)
	r.states = append(r.states, state)
	r.probs = append(r.probs, p)
}

// reachProbabilities maps each information set of the best responder to
// the states it contains, weighted by the probability that the opponent
// and chance reach them. The responder's own contribution is fixed at 1.
type reachProbabilities[S comparable, I cfr.InfoSet] struct {
	infoSets []I
	sets     map[I]*reachSet[S]
}

func newReachProbabilities[S comparable, I cfr.InfoSet]() *reachProbabilities[S, I] {
	return &reachProbabilities[S, I]{
		sets: make(map[I]*reachSet[S]),
	}
}

func (r *reachProbabilities[S, I]) add(infoSet I, state S, p float64) {
	set, ok := r.sets[infoSet]
	if !ok {
		set = &reachSet[S]{index: make(map[S]int)}
		r.sets[infoSet] = set
		r.infoSets = append(r.infoSets, infoSet)
	}

	set.add(state, p)
}

func (r *reachProbabilities[S, I]) get(infoSet I) *reachSet[S] {
	set, ok := r.sets[infoSet]
	if !ok {
		panic(fmt.Errorf("no reach probabilities for info set %v", infoSet))
	}

	return set
}
