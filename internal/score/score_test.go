package score

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pdoom/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func entry(id, seed string, turns, doom int, outcome game.Outcome, offset int) Entry {
	return Entry{
		ID:            id,
		Player:        "tester",
		Seed:          seed,
		TurnsSurvived: turns,
		FinalDoom:     doom,
		Outcome:       outcome,
		Won:           outcome.Won(),
		PlayedAt:      base.Add(time.Duration(offset) * time.Minute),
	}
}

func TestBetter(t *testing.T) {
	long := entry("a", "s", 20, 90, game.OutcomeDoom, 0)
	short := entry("b", "s", 10, 10, game.OutcomeSurvived, 0)
	assert.True(t, Better(long, short), "turns dominate")

	win := entry("c", "s", 10, 50, game.OutcomeSurvived, 0)
	loss := entry("d", "s", 10, 20, game.OutcomeDoom, 0)
	assert.True(t, Better(win, loss), "wins beat losses on equal turns")

	calm := entry("e", "s", 10, 30, game.OutcomeDoom, 0)
	assert.True(t, Better(calm, loss) == false && Better(loss, calm), "lower doom wins")

	early := entry("f", "s", 10, 20, game.OutcomeDoom, -5)
	assert.True(t, Better(early, loss))
}

func TestFromGame(t *testing.T) {
	g, err := game.New(game.Options{ID: "g", Seed: "seed-1", Clock: game.FixedClock(base)})
	require.NoError(t, err)
	g.State.Turn = 8
	g.State.Over = true
	g.State.Outcome = game.OutcomeOpponentAGI

	e := FromGame(g, "Ada", base)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "seed-1", e.Seed)
	assert.Equal(t, 7, e.TurnsSurvived)
	assert.Equal(t, 2, e.Staff)
	assert.False(t, e.Won)
	assert.Equal(t, "Ada", e.Player)
}

func TestFileRepo_KeepsTopPerSeed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r, err := NewFileRepo(dir, 3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Add(ctx, entry(string(rune('a'+i)), "s1", i+1, 50, game.OutcomeDoom, i)))
	}
	require.NoError(t, r.Add(ctx, entry("other", "s2", 1, 50, game.OutcomeDoom, 0)))

	got, err := r.Top(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{got[0].TurnsSurvived, got[1].TurnsSurvived, got[2].TurnsSurvived})

	assert.False(t, r.Qualifies(entry("low", "s1", 2, 50, game.OutcomeDoom, 9)))
	assert.True(t, r.Qualifies(entry("new-seed", "s3", 0, 100, game.OutcomeDoom, 9)))

	reopened, err := NewFileRepo(dir, 3)
	require.NoError(t, err)
	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFileRepo_CorruptFileFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	r, err := NewFileRepo(dir, 0)
	require.Error(t, err)
	require.NotNil(t, r)

	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	require.NoError(t, r.Add(context.Background(), entry("x", "s", 1, 1, game.OutcomeDoom, 0)))
}

func TestSQLiteRepo(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRepo(filepath.Join(t.TempDir(), "nested", DBFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	empty, err := r.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Runs)

	require.NoError(t, r.Add(ctx, entry("1", "s1", 12, 40, game.OutcomeDoom, 0)))
	require.NoError(t, r.Add(ctx, entry("2", "s1", 12, 60, game.OutcomeSurvived, 1)))
	require.NoError(t, r.Add(ctx, entry("3", "s2", 30, 10, game.OutcomeAligned, 2)))
	require.Error(t, r.Add(ctx, entry("3", "s2", 30, 10, game.OutcomeAligned, 2)), "ids are unique")

	top, err := r.Top(ctx, "s1", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "2", top[0].ID, "win ranks first on equal turns")
	assert.True(t, top[0].Won)
	assert.Equal(t, base.Add(time.Minute), top[0].PlayedAt)

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)

	sum, err := r.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Runs)
	assert.Equal(t, 2, sum.Wins)
	assert.Equal(t, 30, sum.BestTurns)
	assert.Equal(t, 2, sum.Seeds)
	assert.InDelta(t, 18.0, sum.AvgTurns, 0.001)
	assert.Equal(t, 1, sum.Outcomes["doom"])
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemoryRepo(), NewMemoryRepo()
	m := Multi{a, b}
	require.NoError(t, m.Add(ctx, entry("1", "s", 3, 3, game.OutcomeDoom, 0)))

	fromB, err := b.All(ctx)
	require.NoError(t, err)
	assert.Len(t, fromB, 1)

	got, err := m.Top(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
