package cfr

import (
	"fmt"
)

// PlayerID identifies whose turn it is at a node of the game tree.
type PlayerID int

// Chance is the PlayerID of nodes where nature acts.
const Chance PlayerID = -1

// Player returns the PlayerID of the ith player. Only two-player games are
// supported, so i must be 0 or 1.
func Player(i int) PlayerID {
	if i != 0 && i != 1 {
		panic(fmt.Errorf("invalid player index: %d", i))
	}

	return PlayerID(i)
}

// IsChance returns true if p is the chance player.
func (p PlayerID) IsChance() bool {
	return p == Chance
}

// Index returns the index of this player (0 or 1).
// It panics if called on Chance.
func (p PlayerID) Index() int {
	if p != 0 && p != 1 {
		panic(fmt.Errorf("player %v has no index", p))
	}

	return int(p)
}

// Opponent returns the other player.
// It panics if called on Chance.
func (p PlayerID) Opponent() PlayerID {
	return PlayerID(1 - p.Index())
}

// String implements fmt.Stringer.
func (p PlayerID) String() string {
	if p == Chance {
		return "chance"
	}

	return fmt.Sprintf("p%d", int(p))
}

// InfoSet is the observable game history from the point of view of the
// acting player. Two states that the acting player cannot tell apart
// must map to equal InfoSets.
//
// String is used as the canonical key of the InfoSet: it must be unique
// per InfoSet, and is used to sort strategy dumps and to look up
// strategies that were persisted by key.
type InfoSet interface {
	comparable
	fmt.Stringer
}

// Action is a move in the game, including the outcomes of chance nodes.
type Action interface {
	comparable
	fmt.Stringer
}

// ChanceOutcome is one possible action at a chance node together with
// the probability that it is chosen.
type ChanceOutcome[A Action] struct {
	Action      A
	Probability float64
}

// Game defines an extensive-form game for two players.
//
// States are immutable values: WithAction must return a new state and leave
// its argument untouched. States must be comparable so that many of them
// can be held in maps at once.
type Game[S comparable, I InfoSet, A Action] interface {
	// NewRoot returns the initial state of the game.
	NewRoot() S
	// IsTerminal returns true if the game is over at the given state.
	IsTerminal(state S) bool
	// Payouts returns the utility of each player at a terminal state.
	// Payouts must sum to zero.
	Payouts(state S) [2]float64
	// Player returns the player to act, or Chance.
	Player(state S) PlayerID
	// InfoSet returns the information set of the acting player.
	// It may only be called at non-terminal, non-chance states.
	InfoSet(state S) I
	// LegalActions returns the actions available to the acting player.
	// It must be non-empty at every non-terminal, non-chance state.
	LegalActions(state S) []A
	// ChanceActions returns the outcomes of a chance node.
	// Probabilities must sum to 1.
	ChanceActions(state S) []ChanceOutcome[A]
	// WithAction returns the state that results from playing the given action.
	WithAction(state S, action A) S
}
