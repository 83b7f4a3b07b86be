// Package tree provides exhaustive walks over the game tree of a cfr.Game.
package tree

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/regretlab/go-cfr"
)

const probTol = 1e-9

// Visit calls visitor on every state of the game tree rooted at root,
// in depth-first order.
func Visit[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], root S, visitor func(state S)) {
	visitor(root)
	if game.IsTerminal(root) {
		return
	}

	for _, child := range children(game, root) {
		Visit(game, child, visitor)
	}
}

func children[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], state S) []S {
	var result []S
	if game.Player(state).IsChance() {
		for _, outcome := range game.ChanceActions(state) {
			result = append(result, game.WithAction(state, outcome.Action))
		}
	} else {
		for _, action := range game.LegalActions(state) {
			result = append(result, game.WithAction(state, action))
		}
	}

	return result
}

func isDecisionNode[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], state S) bool {
	return !game.IsTerminal(state) && !game.Player(state).IsChance()
}

// VisitInfoSets calls visitor once for every distinct information set.
func VisitInfoSets[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], visitor func(player cfr.PlayerID, infoSet I)) {
	seen := make(map[I]struct{})
	Visit(game, game.NewRoot(), func(state S) {
		if isDecisionNode(game, state) {
			infoSet := game.InfoSet(state)
			if _, ok := seen[infoSet]; ok {
				return
			}

			visitor(game.Player(state), infoSet)
			seen[infoSet] = struct{}{}
		}
	})
}

func CountTerminalNodes[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A]) int {
	total := 0
	Visit(game, game.NewRoot(), func(state S) {
		if game.IsTerminal(state) {
			total++
		}
	})

	return total
}

func CountNodes[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A]) int {
	total := 0
	Visit(game, game.NewRoot(), func(state S) { total++ })
	return total
}

func CountInfoSets[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A]) int {
	total := 0
	VisitInfoSets(game, func(player cfr.PlayerID, infoSet I) { total++ })
	return total
}

// MaxDepth returns the number of edges on the longest path from the root
// to a terminal state.
func MaxDepth[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A]) int {
	return maxDepth(game, game.NewRoot())
}

func maxDepth[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A], state S) int {
	if game.IsTerminal(state) {
		return 0
	}

	depth := 0
	for _, child := range children(game, state) {
		if d := maxDepth(game, child) + 1; d > depth {
			depth = d
		}
	}

	return depth
}

// Validate walks the full game tree and checks the contract of cfr.Game:
// payouts sum to zero, chance probabilities are non-negative and sum to 1,
// decision nodes have legal actions, every state of an information set
// belongs to the same player and has the same actions, and every action
// leads to a new state.
func Validate[S comparable, I cfr.InfoSet, A cfr.Action](game cfr.Game[S, I, A]) error {
	v := &validator[S, I, A]{
		game:    game,
		actions: make(map[I][]A),
		players: make(map[I]cfr.PlayerID),
		keys:    make(map[string]I),
	}

	return v.validate(game.NewRoot(), nil)
}

type validator[S comparable, I cfr.InfoSet, A cfr.Action] struct {
	game    cfr.Game[S, I, A]
	actions map[I][]A
	players map[I]cfr.PlayerID
	keys    map[string]I
}

func (v *validator[S, I, A]) validate(state S, history []string) error {
	fail := func(format string, args ...interface{}) error {
		return errors.Wrapf(fmt.Errorf(format, args...), "after %v", history)
	}

	if v.game.IsTerminal(state) {
		payouts := v.game.Payouts(state)
		if math.Abs(payouts[0]+payouts[1]) > probTol {
			return fail("payouts %v do not sum to zero", payouts)
		}

		return nil
	}

	if v.game.Player(state).IsChance() {
		outcomes := v.game.ChanceActions(state)
		if len(outcomes) == 0 {
			return fail("chance node has no outcomes")
		}

		var total float64
		for _, outcome := range outcomes {
			if outcome.Probability < 0 {
				return fail("chance outcome %v has negative probability %v", outcome.Action, outcome.Probability)
			}

			total += outcome.Probability
		}

		if math.Abs(total-1.0) > probTol {
			return fail("chance probabilities sum to %v", total)
		}

		for _, outcome := range outcomes {
			if err := v.validateChild(state, outcome.Action, history); err != nil {
				return err
			}
		}

		return nil
	}

	player := v.game.Player(state)
	infoSet := v.game.InfoSet(state)
	actions := v.game.LegalActions(state)
	if len(actions) == 0 {
		return fail("no legal actions at %v", infoSet)
	}

	if prev, ok := v.actions[infoSet]; ok {
		if !equalActions(prev, actions) {
			return fail("info set %v has actions %v and %v", infoSet, prev, actions)
		}

		if v.players[infoSet] != player {
			return fail("info set %v is shared by %v and %v", infoSet, v.players[infoSet], player)
		}
	} else {
		key := infoSet.String()
		if other, ok := v.keys[key]; ok {
			return fail("info sets %#v and %#v have the same key %q", other, infoSet, key)
		}

		v.keys[key] = infoSet
		v.actions[infoSet] = actions
		v.players[infoSet] = player
	}

	for _, action := range actions {
		if err := v.validateChild(state, action, history); err != nil {
			return err
		}
	}

	return nil
}

func (v *validator[S, I, A]) validateChild(state S, action A, history []string) error {
	child := v.game.WithAction(state, action)
	if child == state {
		return errors.Errorf("WithAction(%v) did not advance the game after %v", action, history)
	}

	return v.validate(child, append(history[:len(history):len(history)], action.String()))
}

func equalActions[A cfr.Action](a, b []A) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
