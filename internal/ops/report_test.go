package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdoom/internal/game"
	"pdoom/internal/player"
	"pdoom/internal/score"
)

func seedHistory(t *testing.T, dir string) {
	t.Helper()
	repo, err := score.NewSQLiteRepo(filepath.Join(dir, score.DBFileName))
	require.NoError(t, err)
	defer repo.Close()

	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	runs := []score.Entry{
		{ID: "a", Player: "Ada", Seed: "2026-W43", TurnsSurvived: 30, FinalDoom: 40, Outcome: game.OutcomeSurvived, Won: true, PlayedAt: at},
		{ID: "b", Player: "Ada", Seed: "2026-W43", TurnsSurvived: 12, FinalDoom: 100, Outcome: game.OutcomeDoom, PlayedAt: at},
		{ID: "c", Player: "Bo", Seed: "custom", TurnsSurvived: 8, FinalDoom: 60, Outcome: game.OutcomeNoStaff, PlayedAt: at},
	}
	for _, e := range runs {
		require.NoError(t, repo.Add(context.Background(), e))
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	seedHistory(t, dir)
	players, err := player.NewFileRepo(dir)
	require.NoError(t, err)
	_, err = players.SetPlayerName("Ada")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(context.Background(), &buf, dir, 1))
	out := buf.String()

	assert.Contains(t, out, "director:   Ada")
	assert.Contains(t, out, "runs:       3 across 2 seeds")
	assert.Contains(t, out, "best run:   30 turns")
	assert.Contains(t, out, "seed 2026-W43")
	assert.Contains(t, out, "seed custom")
	assert.Contains(t, out, "1st")
	assert.NotContains(t, out, "2nd", "one run per seed")
}

func TestWriteReport_EmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(context.Background(), &buf, t.TempDir(), 5))
	assert.Contains(t, buf.String(), "runs:       0")
	assert.NotContains(t, buf.String(), "outcomes:")
}

func TestVerifyDataDir(t *testing.T) {
	dir := t.TempDir()
	seedHistory(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "saves"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{"playerName":"Ada"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saves", "broken.json"), []byte(`{"turn":`), 0o644))

	problems, err := VerifyDataDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "saves/broken.json", problems[0].Path)
	assert.Contains(t, problems[0].String(), "saves/broken.json: ")

	_, err = VerifyDataDir(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
}
