package ldbstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/eval"
	"github.com/regretlab/go-cfr/kuhn"
)

func trainKuhn(nIter int) *cfr.Vanilla[kuhn.State, kuhn.InfoSet, kuhn.Action] {
	solver := cfr.NewVanilla[kuhn.State, kuhn.InfoSet, kuhn.Action](kuhn.New(), cfr.DiscountParams{})
	for i := 0; i < nIter; i++ {
		solver.TrainOneEpoch()
	}

	return solver
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), &opt.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Profile(t *testing.T) {
	store := openStore(t)
	solver := trainKuhn(1000)
	profile := solver.Profile()
	require.NoError(t, store.WriteProfile(profile))

	loaded, err := store.ReadProfile()
	require.NoError(t, err)
	assert.Equal(t, profile.Iterations, loaded.Iterations)
	assert.Equal(t, profile.Entries, loaded.Entries)

	solver.VisitNodes(func(node *cfr.InfoSetNode[kuhn.InfoSet, kuhn.Action]) {
		strat, ok := store.Lookup(node.InfoSet().String())
		require.True(t, ok)
		assert.Equal(t, node.AverageStrategy(), strat)
		t.Logf("%6s: pass=%.2f bet=%.2f", node.InfoSet(), strat[0], strat[1])
	})

	_, ok := store.Lookup("not an info set")
	assert.False(t, ok)
}

func TestStore_Exploitability(t *testing.T) {
	store := openStore(t)
	solver := trainKuhn(1000)
	require.NoError(t, store.WriteProfile(solver.Profile()))

	game := kuhn.New()
	want := eval.Exploitability[kuhn.State, kuhn.InfoSet, kuhn.Action](game, solver)
	got := eval.Exploitability[kuhn.State, kuhn.InfoSet, kuhn.Action](game, cfr.ByKey[kuhn.InfoSet]{Source: store})
	assert.InDelta(t, want, got, 1e-12)
}

func TestStore_OverwriteProfile(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.WriteProfile(trainKuhn(10).Profile()))

	smaller := cfr.NewProfile(3, []cfr.ProfileEntry{
		{InfoSet: "K-", Actions: []string{"Pass", "Bet"}, Strategy: []float64{0.25, 0.75}},
	})
	require.NoError(t, store.WriteProfile(smaller))

	loaded, err := store.ReadProfile()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Iterations)
	assert.Equal(t, smaller.Entries, loaded.Entries)
}

func TestStore_Checkpoint(t *testing.T) {
	store := openStore(t)
	solver := trainKuhn(100)
	require.NoError(t, WriteCheckpoint(store, solver.Iter(), solver.VisitNodes))
	iter, err := store.CheckpointIterations()
	require.NoError(t, err)
	assert.Equal(t, 100, iter)

	n := 0
	solver.VisitNodes(func(node *cfr.InfoSetNode[kuhn.InfoSet, kuhn.Action]) {
		n++
		regretSum, strategySum, ok, err := store.NodeSums(node.InfoSet().String())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, node.RegretSum(), regretSum)
		assert.Equal(t, node.StrategySum(), strategySum)
	})
	assert.Equal(t, 12, n)

	_, _, ok, err := store.NodeSums("not an info set")
	assert.NoError(t, err)
	assert.False(t, ok)

	// A new checkpoint replaces the old one entirely.
	empty := trainKuhn(0)
	require.NoError(t, WriteCheckpoint(store, empty.Iter(), empty.VisitNodes))
	_, _, ok, err = store.NodeSums("Q-b")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NoCheckpoint(t *testing.T) {
	store := openStore(t)
	_, err := store.CheckpointIterations()
	assert.Error(t, err)

	solver := trainKuhn(0)
	assert.Error(t, solver.Resume(store))
}

func TestStore_ResumeFromCheckpoint(t *testing.T) {
	params := cfr.DiscountParams{UseRegretMatchingPlus: true, LinearWeighting: true}
	newSolver := func() *cfr.Vanilla[kuhn.State, kuhn.InfoSet, kuhn.Action] {
		return cfr.NewVanilla[kuhn.State, kuhn.InfoSet, kuhn.Action](kuhn.New(), params)
	}

	continuous := newSolver()
	for i := 0; i < 200; i++ {
		continuous.TrainOneEpoch()
	}

	first := newSolver()
	for i := 0; i < 100; i++ {
		first.TrainOneEpoch()
	}

	store := openStore(t)
	require.NoError(t, WriteCheckpoint(store, first.Iter(), first.VisitNodes))

	resumed := newSolver()
	require.NoError(t, resumed.Resume(store))
	assert.Equal(t, 100, resumed.Iter())
	for i := 0; i < 100; i++ {
		resumed.TrainOneEpoch()
	}

	assert.Equal(t, 200, resumed.Iter())
	want, got := continuous.Profile(), resumed.Profile()
	require.Equal(t, want.Len(), got.Len())
	for i, e := range want.Entries {
		assert.Equal(t, e.InfoSet, got.Entries[i].InfoSet)
		assert.InDeltaSlice(t, e.Strategy, got.Entries[i].Strategy, 1e-12, e.InfoSet)
	}
}

func BenchmarkLookup(b *testing.B) {
	store, err := Open(b.TempDir(), &opt.Options{})
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()

	if err := store.WriteProfile(trainKuhn(100).Profile()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Lookup("Q-b")
	}
}
