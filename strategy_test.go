package cfr_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/kuhn"
)

func TestSafeGetStrategy(t *testing.T) {
	known := kuhn.InfoSet{Player: cfr.Player(1), Card: kuhn.Queen, History: "b"}
	unknown := kuhn.InfoSet{Player: cfr.Player(1), Card: kuhn.King, History: "b"}
	table := cfr.Table[kuhn.InfoSet]{known: {1.0, 0.0}}

	assert.Equal(t, []float64{1.0, 0.0}, cfr.SafeGetStrategy[kuhn.InfoSet](table, known, 2))
	assert.Equal(t, []float64{0.5, 0.5}, cfr.SafeGetStrategy[kuhn.InfoSet](table, unknown, 2))
	assert.Panics(t, func() { cfr.SafeGetStrategy[kuhn.InfoSet](table, known, 3) })

	_, ok := table.GetStrategy(unknown)
	assert.False(t, ok)
}

func TestProfile_Lookup(t *testing.T) {
	solver := newKuhnVanilla()
	for i := 0; i < 50; i++ {
		solver.TrainOneEpoch()
	}

	profile := solver.Profile()
	assert.Equal(t, 50, profile.Iterations)
	assert.Equal(t, 12, profile.Len())

	byKey := cfr.ByKey[kuhn.InfoSet]{Source: profile}
	solver.VisitNodes(func(node *cfr.InfoSetNode[kuhn.InfoSet, kuhn.Action]) {
		got, ok := byKey.GetStrategy(node.InfoSet())
		require.True(t, ok)
		assert.Equal(t, node.AverageStrategy(), got)
	})

	_, ok := profile.Lookup("not an info set")
	assert.False(t, ok)
}

func TestProfile_WriteTo(t *testing.T) {
	profile := cfr.NewProfile(1, []cfr.ProfileEntry{
		{InfoSet: "Q-b", Actions: []string{"Pass", "Bet"}, Strategy: []float64{1.0, 0.0}},
		{InfoSet: "J-", Actions: []string{"Pass", "Bet"}, Strategy: []float64{2.0 / 3, 1.0 / 3}},
	})

	var buf bytes.Buffer
	n, err := profile.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"J- avg strategy [Pass: 0.667, Bet: 0.333]",
		"Q-b avg strategy [Pass: 1.000, Bet: 0.000]",
	}, lines)
}
