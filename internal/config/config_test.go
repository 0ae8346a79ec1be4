package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PartialBalanceKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pdoom_config.yml", `
version: "2"
balance:
  starting_money: 250
  max_turns: 40
server:
  addr: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2", cfg.Version)
	assert.Equal(t, 250, cfg.Balance.StartingMoney)
	assert.Equal(t, 40, cfg.Balance.MaxTurns)
	assert.Equal(t, Default().StaffMaintenance, cfg.Balance.StaffMaintenance)
	assert.Equal(t, Default().APPerAdmin, cfg.Balance.APPerAdmin)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoad_DifficultyPresetWhenBalanceOmitted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.yml", "difficulty: Hard\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hard", cfg.Difficulty)
	assert.Equal(t, Hard(), cfg.Balance)
}

func TestLoad_ZeroRandomEventsSurvives(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.yml", `
difficulty: hard
balance:
  max_random_events_per_turn: 0
  starting_money: 90
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Balance.MaxRandomEventsPerTurn)
	assert.Equal(t, 90, cfg.Balance.StartingMoney)
	assert.Equal(t, Hard().StaffMaintenance, cfg.Balance.StaffMaintenance, "omitted keys come from the preset")

	bal := cfg.Balance
	bal.ApplyDefaults()
	assert.Zero(t, bal.MaxRandomEventsPerTurn)

	bal.MaxRandomEventsPerTurn = -2
	bal.ApplyDefaults()
	assert.Zero(t, bal.MaxRandomEventsPerTurn)
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file is silent", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg.Balance)
	})

	t.Run("corrupt file falls back with error", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yml", "balance: [unterminated\n")
		cfg, err := LoadOrDefault(path)
		require.Error(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, Default(), cfg.Balance)
	})
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DIFFICULTY", "casual")
	t.Setenv("PDOOM_STARTING_MONEY", "500")
	t.Setenv("PDOOM_MAX_TURNS", "not-a-number")

	b := FromEnv(Default())
	assert.Equal(t, 500, b.StartingMoney)
	assert.Equal(t, Casual().StartingDoom, b.StartingDoom)
	assert.Equal(t, 0, b.MaxTurns)
}

func TestPresetsDiffer(t *testing.T) {
	assert.Greater(t, Casual().StartingMoney, Default().StartingMoney)
	assert.Less(t, Hard().StartingMoney, Default().StartingMoney)
	assert.Equal(t, Default(), Preset("unknown"))
}
