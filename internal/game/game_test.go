package game

import (
	"testing"
	"time"

	"pdoom/internal/config"
	"pdoom/internal/staff"
	"pdoom/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// newTestGame builds a game with no rival labs and no random events so arithmetic is exact.
// Milestones stay active.
func newTestGame(t *testing.T, mutate func(b *config.Balance)) *Game {
	t.Helper()
	bal := config.Default()
	if mutate != nil {
		mutate(&bal)
	}
	g, err := New(Options{ID: "g1", Seed: "test-seed", Balance: &bal, Clock: FixedClock(testNow)})
	require.NoError(t, err)
	g.State.Opponents = nil
	g.State.Balance.MaxRandomEventsPerTurn = 0
	return g
}

func TestNew_StartingState(t *testing.T) {
	g := newTestGame(t, nil)
	s := g.State

	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 100, s.Money)
	assert.Equal(t, 25, s.Doom)
	assert.Equal(t, 100, s.MaxDoom)
	assert.Equal(t, 2, s.Staff.Len())
	assert.Equal(t, 3, s.ActionPoints)
	assert.Equal(t, 3, s.MaxActionPoints)
	assert.Equal(t, testNow, s.StartedAt)
	assert.NotEmpty(t, s.Messages)
}

func TestNew_DefaultsToWeeklySeed(t *testing.T) {
	g, err := New(Options{ID: "g", Clock: FixedClock(testNow)})
	require.NoError(t, err)
	assert.Equal(t, "2026-W43", g.State.Seed)
	assert.Len(t, g.State.Opponents, 3)
}

func TestSelectAction(t *testing.T) {
	t.Run("spends AP and commits money", func(t *testing.T) {
		g := newTestGame(t, nil)
		require.NoError(t, g.SelectAction("safety_research", false))
		assert.Equal(t, 2, g.State.ActionPoints)
		assert.Equal(t, 100, g.State.Money, "money is paid at end of turn")
		assert.Equal(t, 60, g.Available())
		require.Len(t, g.State.Selected, 1)
	})

	t.Run("unknown action", func(t *testing.T) {
		g := newTestGame(t, nil)
		err := g.SelectAction("build_rocket", false)
		require.ErrorIs(t, err, ErrUnknownAction)
		assert.Contains(t, g.State.Messages[len(g.State.Messages)-1], "Cannot select action")
	})

	t.Run("not enough AP", func(t *testing.T) {
		g := newTestGame(t, nil)
		for i := 0; i < 3; i++ {
			require.NoError(t, g.SelectAction("fundraise", false))
		}
		require.ErrorIs(t, g.SelectAction("hire_staff", false), ErrNotEnoughAP)
	})

	t.Run("committed money counts", func(t *testing.T) {
		g := newTestGame(t, nil)
		require.NoError(t, g.SelectAction("hire_researcher", false))
		require.ErrorIs(t, g.SelectAction("hire_researcher", false), ErrInsufficientFunds)
		assert.Equal(t, 2, g.State.ActionPoints, "rejected selection keeps AP")
	})

	t.Run("manager hire locked until milestone", func(t *testing.T) {
		g := newTestGame(t, nil)
		require.ErrorIs(t, g.SelectAction("hire_manager", false), ErrActionUnavailable)
	})

	t.Run("lobbying needs reputation", func(t *testing.T) {
		g := newTestGame(t, nil)
		require.ErrorIs(t, g.SelectAction("lobby_government", false), ErrActionUnavailable)
		g.State.Reputation = 30
		require.NoError(t, g.SelectAction("lobby_government", false))
		assert.Equal(t, 1, g.State.ActionPoints)
	})

	t.Run("delegation needs admin staff", func(t *testing.T) {
		g := newTestGame(t, nil)
		require.ErrorIs(t, g.SelectAction("fundraise", true), ErrCannotDelegate)

		g.State.Staff.Hire(staff.RoleAdmin, 1)
		require.NoError(t, g.SelectAction("fundraise", true))
		assert.Equal(t, 3, g.State.ActionPoints, "delegated fundraising costs no AP")
		require.ErrorIs(t, g.SelectAction("hire_staff", true), ErrCannotDelegate)
	})

	t.Run("blocked while popup pending", func(t *testing.T) {
		g := newTestGame(t, nil)
		g.State.Pending = []EventInstance{{ID: "funding_crisis-1", EventID: "funding_crisis", Turn: 1}}
		require.ErrorIs(t, g.SelectAction("fundraise", false), ErrEventPending)
	})
}

func TestUnselectAction_RefundsAP(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.SelectAction("hire_staff", false))
	assert.Equal(t, 2, g.State.ActionPoints)

	require.NoError(t, g.UnselectAction(0))
	assert.Equal(t, 3, g.State.ActionPoints)
	assert.Empty(t, g.State.Selected)
	require.ErrorIs(t, g.UnselectAction(0), ErrBadSelection)
}

func TestBuyUpgrade(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.BuyUpgrade(UpgradeComfyChairs))
	assert.Equal(t, 85, g.State.Money)
	assert.Equal(t, 15, g.State.SpendThisTurn)
	assert.Equal(t, 3, g.State.ActionPoints, "upgrades cost no AP")

	require.ErrorIs(t, g.BuyUpgrade(UpgradeComfyChairs), ErrUpgradeOwned)
	require.ErrorIs(t, g.BuyUpgrade("jetpack"), ErrUnknownUpgrade)
	require.ErrorIs(t, g.BuyUpgrade(UpgradeBetterComputers), ErrInsufficientFunds)

	views := g.Upgrades()
	require.Len(t, views, 5)
	for _, v := range views {
		if v.ID == UpgradeComfyChairs {
			assert.True(t, v.Owned)
		}
	}
}

func TestActions_CatalogView(t *testing.T) {
	g := newTestGame(t, nil)
	views := g.Actions()
	require.Len(t, views, len(ActionOrder()))
	assert.Equal(t, "grow_community", views[0].ID)

	byID := map[string]ActionView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.True(t, byID["fundraise"].Delegatable)
	assert.Equal(t, 0.6, byID["fundraise"].DelegateEffectiveness)
	assert.False(t, byID["hire_manager"].Available)
	assert.Equal(t, 2, byID["espionage"].APCost)
}

func TestTelemetryRecorded(t *testing.T) {
	tel := telemetry.NewMemoryRepository()
	bal := config.Default()
	g, err := New(Options{ID: "t", Seed: "s", Balance: &bal, Clock: FixedClock(testNow), Telemetry: tel})
	require.NoError(t, err)

	require.NoError(t, g.SelectAction("fundraise", false))
	_, err = g.EndTurn()
	require.NoError(t, err)

	events, err := tel.GetEvents(time.Time{}, []telemetry.EventType{
		telemetry.EventGameStarted, telemetry.EventActionResolved, telemetry.EventTurnEnded,
	})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
