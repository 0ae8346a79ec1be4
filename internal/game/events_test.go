package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPending(g *Game, eventID string) string {
	inst := EventInstance{ID: eventID + "-1", EventID: eventID, Turn: g.State.Turn}
	g.State.Pending = append(g.State.Pending, inst)
	return inst.ID
}

func TestCatalogTriggersCompile(t *testing.T) {
	set, err := compiledTriggers()
	require.NoError(t, err)
	assert.Equal(t, len(EventIDs()), set.Len())

	for _, def := range catalogEvents() {
		if def.Kind == KindPopup {
			require.NotEmpty(t, def.Options, def.ID)
			require.Less(t, def.DefaultOption, len(def.Options), def.ID)
		} else {
			require.NotNil(t, def.Effect, def.ID)
		}
	}
}

func TestResolveEvent(t *testing.T) {
	g := newTestGame(t, nil)
	id := withPending(g, "funding_crisis")

	_, err := g.EndTurn()
	require.ErrorIs(t, err, ErrEventPending)

	require.ErrorIs(t, g.ResolveEvent(id, 5), ErrBadSelection)
	require.ErrorIs(t, g.ResolveEvent("nope", 0), ErrUnknownEvent)

	require.NoError(t, g.ResolveEvent(id, 0))
	assert.Equal(t, 180, g.State.Money)
	assert.Equal(t, 17, g.State.Reputation)
	assert.Empty(t, g.State.Pending)

	_, err = g.EndTurn()
	require.NoError(t, err)
}

func TestDeferEvent(t *testing.T) {
	t.Run("needs the alert system", func(t *testing.T) {
		g := newTestGame(t, nil)
		id := withPending(g, "funding_crisis")
		require.ErrorIs(t, g.DeferEvent(id), ErrCannotDefer)
		assert.Len(t, g.State.Pending, 1)
	})

	t.Run("some events cannot wait", func(t *testing.T) {
		g := newTestGame(t, nil)
		g.State.Upgrades[UpgradeEventAlertSystem] = true
		id := withPending(g, "whistleblower")
		require.ErrorIs(t, g.DeferEvent(id), ErrCannotDefer)
	})

	t.Run("deferred event expires with default option", func(t *testing.T) {
		g := newTestGame(t, nil)
		g.State.Money = 500
		g.State.Upgrades[UpgradeEventAlertSystem] = true
		id := withPending(g, "funding_crisis")

		require.NoError(t, g.DeferEvent(id))
		assert.Empty(t, g.State.Pending)
		require.Len(t, g.State.Deferred, 1)
		assert.Equal(t, 3, g.State.Deferred[0].ExpiresIn)
		require.NoError(t, g.SelectAction("fundraise", false), "deferred events do not block")
		require.NoError(t, g.UnselectAction(0))

		for i := 0; i < 2; i++ {
			_, err := g.EndTurn()
			require.NoError(t, err)
			require.Len(t, g.State.Deferred, 1)
		}
		staffBefore := g.State.Staff.Len()
		_, err := g.EndTurn()
		require.NoError(t, err)
		assert.Empty(t, g.State.Deferred)
		assert.Equal(t, staffBefore-1, g.State.Staff.Len(), "cut costs lets one employee go")
	})

	t.Run("deferred event can still be resolved", func(t *testing.T) {
		g := newTestGame(t, nil)
		g.State.Upgrades[UpgradeEventAlertSystem] = true
		id := withPending(g, "safety_conference")
		require.NoError(t, g.DeferEvent(id))
		require.NoError(t, g.ResolveEvent(id, 1))
		assert.Empty(t, g.State.Deferred)
	})
}

func TestPendingEventViews(t *testing.T) {
	g := newTestGame(t, nil)
	withPending(g, "staff_burnout")

	views := g.PendingEvents()
	require.Len(t, views, 1)
	assert.Equal(t, "Staff Burnout", views[0].Name)
	assert.Len(t, views[0].Options, 2)
	assert.False(t, views[0].Deferrable)

	g.State.Upgrades[UpgradeEventAlertSystem] = true
	assert.True(t, g.PendingEvents()[0].Deferrable)
}

func TestRandomEvents_RespectBudget(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Balance.MaxRandomEventsPerTurn = 1
	g.State.Money = 100000
	g.State.Compute = 1000

	for i := 0; i < 40 && !g.State.Over; i++ {
		for _, inst := range g.State.Pending {
			require.NoError(t, g.ResolveEvent(inst.ID, 1))
		}
		rep, err := g.EndTurn()
		require.NoError(t, err)

		random := 0
		for _, id := range rep.EventsFired {
			if g.events[id].Kind != KindMilestone {
				random++
			}
		}
		assert.LessOrEqual(t, random, 1)
		assert.LessOrEqual(t, len(g.State.Pending), 1)
	}
}

func TestRestore_DropsUnknownEvents(t *testing.T) {
	g := newTestGame(t, nil)
	st := g.State
	st.Pending = []EventInstance{{ID: "gone-1", EventID: "gone", Turn: 1}}
	st.Deferred = []EventInstance{
		{ID: "vanished-1", EventID: "vanished", Turn: 1, ExpiresIn: 1},
		{ID: "funding_crisis-1", EventID: "funding_crisis", Turn: 1, ExpiresIn: 3},
	}

	restored, err := Restore(st, Options{Clock: FixedClock(testNow)})
	require.NoError(t, err)
	assert.Empty(t, restored.State.Pending)
	require.Len(t, restored.State.Deferred, 1)
	assert.Equal(t, "funding_crisis", restored.State.Deferred[0].EventID)
	assert.Contains(t, restored.State.Messages[len(restored.State.Messages)-1], "vanished")

	restored.State.Deferred = append(restored.State.Deferred, EventInstance{ID: "late-1", EventID: "late", ExpiresIn: 1})
	assert.Equal(t, "late", restored.DeferredEvents()[1].Name)
	require.NotPanics(t, func() {
		_, err = restored.EndTurn()
	})
	require.NoError(t, err)
	require.Len(t, restored.State.Deferred, 1)
	assert.Equal(t, 2, restored.State.Deferred[0].ExpiresIn)
}
