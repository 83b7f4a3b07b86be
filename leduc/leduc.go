// Package leduc implements Leduc Hold'em.
//
// The deck has two cards of each rank J, Q, K. Each player antes 1 and is
// dealt one private card; one community card is revealed after the first
// betting round. Raises are 2 in the first round and 4 in the second, with
// at most two raises per round. Player 0 acts first in each round. At the
// showdown a pair with the community card beats any unpaired hand, and
// otherwise the higher private card wins.
package leduc

import (
	"fmt"
	"strings"

	"github.com/regretlab/go-cfr"
)

type Rank int

const (
	Jack Rank = iota
	Queen
	King
)

const maxRaises = 2

var rankStr = [...]string{"J", "Q", "K"}

func (r Rank) String() string {
	return rankStr[r]
}

// Deck is the Leduc deck, two cards of each rank.
var Deck = []Rank{Jack, Jack, Queen, Queen, King, King}

type ActionType byte

const (
	Deal  ActionType = 'd'
	Check ActionType = 'k'
	Raise ActionType = 'r'
	Call  ActionType = 'c'
	Fold  ActionType = 'f'
)

var actionNames = map[ActionType]string{
	Check: "Check",
	Raise: "Raise",
	Call:  "Call",
	Fold:  "Fold",
}

// Action is either a betting action, or the deal of both private cards
// and the community card.
type Action struct {
	Type      ActionType
	Hole      [2]Rank
	Community Rank
}

// String implements fmt.Stringer.
func (a Action) String() string {
	if a.Type == Deal {
		return fmt.Sprintf("Deal(%s,%s|%s)", a.Hole[0], a.Hole[1], a.Community)
	}

	return actionNames[a.Type]
}

var bettingActions = []Action{{Type: Check}, {Type: Raise}, {Type: Call}, {Type: Fold}}

type Round int

const (
	Preflop Round = iota
	Flop
	Showdown
	Folded
)

func (r Round) raiseAmount() int {
	switch r {
	case Preflop:
		return 2
	case Flop:
		return 4
	}

	panic(fmt.Errorf("no raises in round %d", r))
}

// State is a node of the Leduc game tree.
type State struct {
	dealt      bool
	player     cfr.PlayerID
	round      Round
	folder     int
	hole       [2]Rank
	community  Rank
	bets       [2]int
	raiseCount int
	// Betting actions so far, with rounds separated by '/'.
	history string
}

// String implements fmt.Stringer.
func (s State) String() string {
	if !s.dealt {
		return "Chance to deal."
	}

	return fmt.Sprintf("%v to act. History: %s [Cards: P0 - %s, P1 - %s, Board - %s] Bets: %v",
		s.player, s.history, s.hole[0], s.hole[1], s.community, s.bets)
}

// InfoSet is what the acting player knows: their private card, the
// community card once revealed, and the betting.
type InfoSet struct {
	Player       cfr.PlayerID
	Round        Round
	Hole         Rank
	Community    Rank
	HasCommunity bool
	History      string
}

// String implements fmt.Stringer.
func (is InfoSet) String() string {
	var sb strings.Builder
	sb.WriteString(is.Player.String())
	sb.WriteString("(")
	sb.WriteString(is.Hole.String())
	sb.WriteString(")")
	if is.HasCommunity {
		sb.WriteString(" ")
		sb.WriteString(is.Community.String())
	}
	sb.WriteString(": ")
	sb.WriteString(is.History)
	return sb.String()
}

// Game implements cfr.Game for Leduc Hold'em.
type Game struct {
	deals []cfr.ChanceOutcome[Action]
}

var _ cfr.Game[State, InfoSet, Action] = (*Game)(nil)

// New returns the Leduc Hold'em game.
func New() *Game {
	return &Game{deals: enumerateDeals()}
}

// enumerateDeals merges the ordered draws of three cards from the deck
// into one outcome per distinct assignment of ranks.
func enumerateDeals() []cfr.ChanceOutcome[Action] {
	var deals []cfr.ChanceOutcome[Action]
	index := make(map[Action]int)
	n := 0
	for i, h0 := range Deck {
		for j, h1 := range Deck {
			if j == i {
				continue
			}

			for k, c := range Deck {
				if k == i || k == j {
					continue
				}

				n++
				deal := Action{Type: Deal, Hole: [2]Rank{h0, h1}, Community: c}
				if idx, ok := index[deal]; ok {
					deals[idx].Probability++
					continue
				}

				index[deal] = len(deals)
				deals = append(deals, cfr.ChanceOutcome[Action]{Action: deal, Probability: 1})
			}
		}
	}

	for i := range deals {
		deals[i].Probability /= float64(n)
	}

	return deals
}

// NewRoot implements cfr.Game.
func (g *Game) NewRoot() State {
	return State{
		player: cfr.Chance,
		round:  Preflop,
		bets:   [2]int{1, 1},
	}
}

// IsTerminal implements cfr.Game.
func (g *Game) IsTerminal(s State) bool {
	return s.round == Showdown || s.round == Folded
}

// Payouts implements cfr.Game.
func (g *Game) Payouts(s State) [2]float64 {
	var winner int
	switch s.round {
	case Folded:
		winner = 1 - s.folder
	case Showdown:
		p0 := handRank(s.hole[0], s.community)
		p1 := handRank(s.hole[1], s.community)
		if p0 == p1 {
			return [2]float64{0, 0}
		} else if p0 > p1 {
			winner = 0
		} else {
			winner = 1
		}
	default:
		panic(fmt.Errorf("payouts requested for non-terminal state: %v", s))
	}

	loser := 1 - winner
	var payouts [2]float64
	payouts[winner] = float64(s.bets[loser])
	payouts[loser] = -float64(s.bets[loser])
	return payouts
}

// handRank orders the two-card hands: pairs first, then by the higher and
// the lower rank.
func handRank(hole, community Rank) int {
	hi, lo := hole, community
	if lo > hi {
		hi, lo = lo, hi
	}

	rank := 0
	if hi == lo {
		rank = 1
	}

	return rank<<4 | int(hi)<<2 | int(lo)
}

// Player implements cfr.Game.
func (g *Game) Player(s State) cfr.PlayerID {
	return s.player
}

// InfoSet implements cfr.Game.
func (g *Game) InfoSet(s State) InfoSet {
	p := s.player.Index()
	is := InfoSet{
		Player:  s.player,
		Round:   s.round,
		Hole:    s.hole[p],
		History: s.history,
	}

	// The community card is hidden until the flop.
	if s.round != Preflop {
		is.Community = s.community
		is.HasCommunity = true
	}

	return is
}

func (s *State) isLegal(a Action) bool {
	p := s.player.Index()
	o := 1 - p
	switch a.Type {
	case Check:
		return s.bets[p] == s.bets[o]
	case Raise:
		return s.raiseCount < maxRaises
	case Call, Fold:
		return s.bets[p] < s.bets[o]
	}

	return false
}

// LegalActions implements cfr.Game.
func (g *Game) LegalActions(s State) []Action {
	result := make([]Action, 0, len(bettingActions))
	for _, a := range bettingActions {
		if s.isLegal(a) {
			result = append(result, a)
		}
	}

	return result
}

// ChanceActions implements cfr.Game.
func (g *Game) ChanceActions(s State) []cfr.ChanceOutcome[Action] {
	if s.dealt {
		panic(fmt.Errorf("cards have already been dealt: %v", s))
	}

	return g.deals
}

// WithAction implements cfr.Game.
func (g *Game) WithAction(s State, a Action) State {
	child := s
	if a.Type == Deal {
		if s.dealt {
			panic(fmt.Errorf("cards have already been dealt: %v", s))
		}

		child.dealt = true
		child.hole = a.Hole
		child.community = a.Community
		child.player = cfr.Player(0)
		return child
	}

	if !s.isLegal(a) {
		panic(fmt.Errorf("illegal action %v at %v", a, s))
	}

	p := s.player.Index()
	o := 1 - p
	endRound := false
	switch a.Type {
	case Check:
		endRound = p == 1
	case Raise:
		child.raiseCount++
		child.bets[p] = s.bets[o] + s.round.raiseAmount()
	case Call:
		child.bets[p] = s.bets[o]
		endRound = true
	case Fold:
		child.round = Folded
		child.folder = p
	}

	child.history += string([]byte{byte(a.Type)})
	if endRound {
		child.round++
		child.raiseCount = 0
		child.player = cfr.Player(0)
		if child.round == Flop {
			child.history += "/"
		}
	} else {
		child.player = s.player.Opponent()
	}

	return child
}
