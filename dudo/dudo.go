// Package dudo implements Dudo (Perudo) with one six-sided die per player.
//
// Players alternately claim that at least count dice show rank, where ones
// are wild for every other rank. Each claim must be higher than the last:
// a claim on ones counts double. Instead of claiming, a player may call
// "dudo" to challenge the last claim. The player whose claim (or challenge)
// was wrong loses a die, and since each player starts with a single die
// the game ends with the first challenge.
package dudo

import (
	"fmt"
	"strings"

	"github.com/regretlab/go-cfr"
)

const (
	numRanks      = 6
	dicePerPlayer = 1
	maxCount      = 2 * dicePerPlayer
)

// Claim is a claim that at least Count dice show Rank. Ranks are 0-based:
// rank 0 is a one.
type Claim struct {
	Count int
	Rank  int
}

func (c Claim) normalizedCount() int {
	if c.Rank == 0 {
		return 2 * c.Count
	}

	return c.Count
}

// Less reports whether c is a lower claim than other.
func (c Claim) Less(other Claim) bool {
	if n, m := c.normalizedCount(), other.normalizedCount(); n != m {
		return n < m
	}

	return c.Rank < other.Rank
}

// String implements fmt.Stringer.
func (c Claim) String() string {
	return fmt.Sprintf("%dx%d", c.Count, c.Rank+1)
}

// index packs the claim into a single byte for use in histories.
func (c Claim) index() byte {
	return byte((c.Count-1)*numRanks + c.Rank)
}

func claimFromIndex(b byte) Claim {
	return Claim{Count: int(b)/numRanks + 1, Rank: int(b) % numRanks}
}

type ActionType byte

const (
	Roll ActionType = iota
	MakeClaim
	Dudo
)

// Action is a claim, a challenge, or the roll of both dice.
type Action struct {
	Type  ActionType
	Claim Claim
	// Faces rolled by player 0 and player 1, for Roll actions.
	Dice [2]int
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a.Type {
	case Roll:
		return fmt.Sprintf("Roll(%d,%d)", a.Dice[0]+1, a.Dice[1]+1)
	case MakeClaim:
		return a.Claim.String()
	case Dudo:
		return "Dudo"
	}

	return fmt.Sprintf("Action(%d)", a.Type)
}

var DudoAction = Action{Type: Dudo}

// ClaimAction returns the action of claiming count dice of the given rank.
func ClaimAction(count, rank int) Action {
	return Action{Type: MakeClaim, Claim: Claim{Count: count, Rank: rank}}
}

// State is a node of the Dudo game tree.
type State struct {
	rolled bool
	player cfr.PlayerID
	dice   [2]int
	// Claims so far, packed with Claim.index.
	claims    string
	diceCount [2]int
}

// String implements fmt.Stringer.
func (s State) String() string {
	if !s.rolled {
		return "Chance to roll."
	}

	return fmt.Sprintf("%v to act. Claims: [%s] [Dice: P0 - %d, P1 - %d] Dice left: %v",
		s.player, formatClaims(s.claims), s.dice[0]+1, s.dice[1]+1, s.diceCount)
}

func formatClaims(claims string) string {
	parts := make([]string, len(claims))
	for i := 0; i < len(claims); i++ {
		parts[i] = claimFromIndex(claims[i]).String()
	}

	return strings.Join(parts, ",")
}

func (s State) lastClaim() (Claim, bool) {
	if len(s.claims) == 0 {
		return Claim{}, false
	}

	return claimFromIndex(s.claims[len(s.claims)-1]), true
}

// countDice returns the number of dice that count towards a claim of rank.
func (s State) countDice(rank int) int {
	total := 0
	for _, d := range s.dice {
		if d == rank || d == 0 {
			total++
		}
	}

	return total
}

// InfoSet is what the acting player knows: their own die and the claims.
type InfoSet struct {
	Player cfr.PlayerID
	Die    int
	Claims string
}

// String implements fmt.Stringer.
func (is InfoSet) String() string {
	return fmt.Sprintf("%v %d: [%s]", is.Player, is.Die+1, formatClaims(is.Claims))
}

// Game implements cfr.Game for Dudo.
type Game struct{}

var _ cfr.Game[State, InfoSet, Action] = Game{}

// New returns the Dudo game.
func New() Game {
	return Game{}
}

// NewRoot implements cfr.Game.
func (Game) NewRoot() State {
	return State{
		player:    cfr.Chance,
		diceCount: [2]int{dicePerPlayer, dicePerPlayer},
	}
}

// IsTerminal implements cfr.Game.
func (Game) IsTerminal(s State) bool {
	return s.diceCount[0] == 0 || s.diceCount[1] == 0
}

// Payouts implements cfr.Game.
func (g Game) Payouts(s State) [2]float64 {
	if !g.IsTerminal(s) {
		panic(fmt.Errorf("payouts requested for non-terminal state: %v", s))
	}

	if s.diceCount[0] == 0 {
		return [2]float64{-1.0, 1.0}
	}

	return [2]float64{1.0, -1.0}
}

// Player implements cfr.Game.
func (Game) Player(s State) cfr.PlayerID {
	return s.player
}

// InfoSet implements cfr.Game.
func (Game) InfoSet(s State) InfoSet {
	return InfoSet{
		Player: s.player,
		Die:    s.dice[s.player.Index()],
		Claims: s.claims,
	}
}

// LegalActions implements cfr.Game.
func (Game) LegalActions(s State) []Action {
	var result []Action
	last, ok := s.lastClaim()
	rankStart, count := 0, 0
	if ok {
		result = append(result, DudoAction)
		rankStart = last.Rank + 1
		count = last.normalizedCount()
	}

	countMax := s.diceCount[0] + s.diceCount[1]

	// Same count, higher rank.
	if count > 0 && count <= countMax {
		for rank := rankStart; rank < numRanks; rank++ {
			result = append(result, ClaimAction(count, rank))
		}
	}

	// Ones, which count double.
	for c := count/2 + 1; c <= countMax; c++ {
		result = append(result, ClaimAction(c, 0))
	}

	// Higher count of any other rank.
	for rank := 1; rank < numRanks; rank++ {
		for c := count + 1; c <= countMax; c++ {
			result = append(result, ClaimAction(c, rank))
		}
	}

	return result
}

// ChanceActions implements cfr.Game.
func (Game) ChanceActions(s State) []cfr.ChanceOutcome[Action] {
	if s.rolled {
		panic(fmt.Errorf("dice have already been rolled: %v", s))
	}

	result := make([]cfr.ChanceOutcome[Action], 0, numRanks*numRanks)
	for d0 := 0; d0 < numRanks; d0++ {
		for d1 := 0; d1 < numRanks; d1++ {
			result = append(result, cfr.ChanceOutcome[Action]{
				Action:      Action{Type: Roll, Dice: [2]int{d0, d1}},
				Probability: 1.0 / (numRanks * numRanks),
			})
		}
	}

	return result
}

// WithAction implements cfr.Game.
func (Game) WithAction(s State, a Action) State {
	child := s
	switch a.Type {
	case Roll:
		if s.rolled {
			panic(fmt.Errorf("dice have already been rolled: %v", s))
		}

		child.rolled = true
		child.dice = a.Dice
		child.player = cfr.Player(0)
	case MakeClaim:
		if last, ok := s.lastClaim(); ok && !last.Less(a.Claim) {
			panic(fmt.Errorf("claim %v does not raise %v", a.Claim, last))
		}

		child.claims += string([]byte{a.Claim.index()})
		child.player = s.player.Opponent()
	case Dudo:
		child.challenge()
	}

	return child
}

// challenge resolves a dudo called by the acting player. The loser loses
// one die, or as many as the claim was off by.
func (s *State) challenge() {
	claim, ok := s.lastClaim()
	if !ok {
		panic(fmt.Errorf("dudo called without a claim: %v", s))
	}

	challenger := s.player.Index()
	challenged := 1 - challenger
	actual := s.countDice(claim.Rank)
	var loser, diff int
	switch {
	case actual == claim.Count:
		loser, diff = challenger, 1
	case actual > claim.Count:
		loser, diff = challenger, actual-claim.Count
	default:
		loser, diff = challenged, claim.Count-actual
	}

	s.diceCount[loser] = max(0, s.diceCount[loser]-diff)
	s.claims = ""
	s.player = cfr.Player(1 - loser)
}
