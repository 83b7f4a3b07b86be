// Package kuhn implements Kuhn Poker,
// adapted from: https://justinsermeno.com/posts/cfr/.
//
// Each player antes 1 and is dealt one card from {J, Q, K}. Player 0 acts
// first and may pass or bet 1. A bet may be called (bet) or folded (pass),
// and after pass-bet player 0 gets the same choice.
package kuhn

import (
	"fmt"

	"github.com/regretlab/go-cfr"
)

type Card int

const (
	Jack Card = iota
	Queen
	King
)

var cardStr = [...]string{
	"J",
	"Q",
	"K",
}

func (c Card) String() string {
	return cardStr[c]
}

type ActionType byte

const (
	Deal ActionType = 'd'
	Pass ActionType = 'p'
	Bet  ActionType = 'b'
)

// Action is either a player's choice, or the deal of both private cards.
type Action struct {
	Type ActionType
	// Cards dealt to player 0 and player 1, for Deal actions.
	Cards [2]Card
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a.Type {
	case Pass:
		return "Pass"
	case Bet:
		return "Bet"
	case Deal:
		return fmt.Sprintf("Deal(%s,%s)", a.Cards[0], a.Cards[1])
	}

	return fmt.Sprintf("Action(%c)", a.Type)
}

var (
	PassAction = Action{Type: Pass}
	BetAction  = Action{Type: Bet}
)

// State is a node of the Kuhn Poker game tree.
type State struct {
	dealt   bool
	cards   [2]Card
	history string
}

// NewState returns the state after the given deal and betting history,
// e.g. NewState(King, Queen, "pb").
func NewState(p0Card, p1Card Card, history string) State {
	return State{
		dealt:   true,
		cards:   [2]Card{p0Card, p1Card},
		history: history,
	}
}

// String implements fmt.Stringer.
func (s State) String() string {
	if !s.dealt {
		return "Chance to deal."
	}

	return fmt.Sprintf("History: %3s [Cards: P0 - %s, P1 - %s]",
		s.history, s.cards[0], s.cards[1])
}

// InfoSet is what the acting player knows: their own card and the betting.
type InfoSet struct {
	Player  cfr.PlayerID
	Card    Card
	History string
}

// String implements fmt.Stringer.
func (is InfoSet) String() string {
	return is.Card.String() + "-" + is.History
}

// Game implements cfr.Game for Kuhn Poker.
type Game struct{}

var _ cfr.Game[State, InfoSet, Action] = Game{}

// New returns the Kuhn Poker game.
func New() Game {
	return Game{}
}

// NewRoot implements cfr.Game.
func (Game) NewRoot() State {
	return State{}
}

// IsTerminal implements cfr.Game.
func (Game) IsTerminal(s State) bool {
	switch s.history {
	case "pp", "bp", "bb", "pbp", "pbb":
		return true
	}

	return false
}

// Payouts implements cfr.Game.
func (g Game) Payouts(s State) [2]float64 {
	winner := 0
	if s.cards[1] > s.cards[0] {
		winner = 1
	}

	var amount float64
	switch s.history {
	case "bp":
		// Player 1 folded.
		return [2]float64{1.0, -1.0}
	case "pbp":
		// Player 0 folded.
		return [2]float64{-1.0, 1.0}
	case "pp":
		// Showdown with no bets.
		amount = 1.0
	case "bb", "pbb":
		// Showdown with 1 bet.
		amount = 2.0
	default:
		panic(fmt.Errorf("payouts requested for non-terminal state: %v", s))
	}

	var payouts [2]float64
	payouts[winner] = amount
	payouts[1-winner] = -amount
	return payouts
}

// Player implements cfr.Game.
func (Game) Player(s State) cfr.PlayerID {
	if !s.dealt {
		return cfr.Chance
	}

	return cfr.Player(len(s.history) % 2)
}

// InfoSet implements cfr.Game.
func (g Game) InfoSet(s State) InfoSet {
	player := g.Player(s)
	return InfoSet{
		Player:  player,
		Card:    s.cards[player.Index()],
		History: s.history,
	}
}

// LegalActions implements cfr.Game.
func (Game) LegalActions(s State) []Action {
	return []Action{PassAction, BetAction}
}

// ChanceActions implements cfr.Game.
func (Game) ChanceActions(s State) []cfr.ChanceOutcome[Action] {
	var result []cfr.ChanceOutcome[Action]
	for _, c0 := range []Card{Jack, Queen, King} {
		for _, c1 := range []Card{Jack, Queen, King} {
			if c0 == c1 {
				continue // Both players can't be dealt the same card.
			}

			result = append(result, cfr.ChanceOutcome[Action]{
				Action:      Action{Type: Deal, Cards: [2]Card{c0, c1}},
				Probability: 1.0 / 6,
			})
		}
	}

	return result
}

// WithAction implements cfr.Game.
func (Game) WithAction(s State, a Action) State {
	child := s
	if a.Type == Deal {
		if s.dealt {
			panic(fmt.Errorf("cards have already been dealt: %v", s))
		}

		child.dealt = true
		child.cards = a.Cards
		return child
	}

	child.history += string([]byte{byte(a.Type)})
	return child
}
