package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo(2)

	a := newTestGame(t, nil)
	a.State.ID = "a"
	b := newTestGame(t, nil)
	b.State.ID = "b"
	c := newTestGame(t, nil)
	c.State.ID = "c"

	require.NoError(t, repo.Create(ctx, a))
	require.Error(t, repo.Create(ctx, a), "duplicate id")
	require.NoError(t, repo.Create(ctx, b))
	require.ErrorIs(t, repo.Create(ctx, c), ErrTooManyGames)

	require.NoError(t, repo.With(ctx, "a", func(g *Game) error {
		return g.SelectAction("fundraise", false)
	}))
	require.NoError(t, repo.With(ctx, "b", func(g *Game) error {
		g.State.Over = true
		return nil
	}))
	require.NoError(t, repo.Create(ctx, c), "finished games are evicted when full")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)

	err = repo.With(ctx, "b", func(*Game) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.ErrorIs(t, repo.Delete(ctx, "a"), ErrNotFound)
}

func TestSaveStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSaveStore(dir)
	require.NoError(t, err)

	g := newTestGame(t, nil)
	require.NoError(t, g.SelectAction("fundraise", false))
	_, err = g.EndTurn()
	require.NoError(t, err)
	require.NoError(t, store.Save("slot1", g))

	loaded, err := store.Load("slot1", Options{Clock: FixedClock(testNow)})
	require.NoError(t, err)
	assert.Equal(t, g.State.Money, loaded.State.Money)
	assert.Equal(t, g.State.Turn, loaded.State.Turn)
	assert.Equal(t, g.State.Staff, loaded.State.Staff)
	assert.Equal(t, g.State.Messages, loaded.State.Messages)

	// Both continue identically from the restored seed and turn.
	repA, err := g.EndTurn()
	require.NoError(t, err)
	repB, err := loaded.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, repA.MoneyDelta, repB.MoneyDelta)
	assert.Equal(t, repA.DoomDelta, repB.DoomDelta)
}

func TestSaveStore_Errors(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSaveStore(dir)
	require.NoError(t, err)

	_, err = store.Load("missing", Options{})
	require.ErrorIs(t, err, ErrNotFound)

	for _, slot := range []string{"", "../escape", ".hidden", "bad slot!", "a:b", "x*y", "sauvegardé"} {
		require.ErrorIs(t, store.Save(slot, newTestGame(t, nil)), ErrBadSlot, slot)
	}
	require.NoError(t, store.Save("slot_1-b", newTestGame(t, nil)))
	require.NoError(t, store.Delete("slot_1-b"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	_, err = store.Load("broken", Options{})
	require.Error(t, err)

	require.NoError(t, store.Delete("missing"))

	require.NoError(t, store.Save("b", newTestGame(t, nil)))
	require.NoError(t, store.Save("a", newTestGame(t, nil)))
	slots, err := store.Slots()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "broken"}, slots)
}
