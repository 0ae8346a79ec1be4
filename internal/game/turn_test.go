package game

import (
	"math"
	"testing"

	"pdoom/internal/config"
	"pdoom/internal/opponent"
	"pdoom/internal/staff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndTurn_BasicArithmetic(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.SelectAction("buy_compute", false))

	rep, err := g.EndTurn()
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Turn)
	assert.Equal(t, []string{"buy_compute"}, rep.ActionsResolved)
	assert.Equal(t, 30, rep.Maintenance)
	assert.Equal(t, 2, rep.ComputeUsed)
	assert.Equal(t, 6, rep.ResearchGained)

	s := g.State
	assert.Equal(t, 100-40-30, s.Money)
	assert.Equal(t, -70, rep.MoneyDelta)
	assert.Equal(t, 10+10-2, s.Compute)
	assert.Equal(t, 6, s.Research)
	assert.Equal(t, 26, s.Doom, "base doom per turn")
	assert.Equal(t, 1, rep.DoomDelta)
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, 3, s.ActionPoints)
	assert.Empty(t, s.Selected)
	assert.Zero(t, s.SpendThisTurn)
	assert.NotEmpty(t, rep.Messages)
}

func TestEndTurn_AdminsRaiseActionPoints(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 500
	require.NoError(t, g.SelectAction("hire_admin", false))
	require.NoError(t, g.SelectAction("hire_admin", false))
	_, err := g.EndTurn()
	require.NoError(t, err)

	assert.Equal(t, 2, g.State.Staff.Count(staff.RoleAdmin))
	assert.Equal(t, 4, g.State.MaxActionPoints)
	assert.Equal(t, 4, g.State.ActionPoints)
}

func TestEndTurn_UnpaidStaffQuit(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 10
	g.State.Staff.Hire(staff.RoleGeneralist, 1)
	g.State.Staff.Hire(staff.RoleResearcher, 1)

	rep, err := g.EndTurn()
	require.NoError(t, err)

	// 4 staff cost 60, deficit 50, ceil(50/15) = 4.
	assert.Equal(t, 4, rep.StaffLost)
	assert.Equal(t, 10, rep.Maintenance)
	assert.Equal(t, 0, g.State.Money)
	assert.True(t, rep.Over)
	assert.Equal(t, OutcomeNoStaff, rep.Outcome)
}

func TestEndTurn_PartialShortfall(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 20

	rep, err := g.EndTurn()
	require.NoError(t, err)

	assert.Equal(t, 1, rep.StaffLost)
	assert.Equal(t, 1, g.State.Staff.Len())
	assert.False(t, rep.Over)
}

func TestEndTurn_PapersPublish(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Research = 97
	before := g.State.Reputation

	rep, err := g.EndTurn()
	require.NoError(t, err)

	assert.Equal(t, 1, rep.PapersPublished)
	assert.Equal(t, 1, g.State.Papers)
	assert.Equal(t, 3, g.State.Research)
	// paper reputation plus the first-paper milestone bonus
	assert.Equal(t, before+2+1, g.State.Reputation)
	// base doom +1, paper -1
	assert.Equal(t, 25, g.State.Doom)
	assert.True(t, g.State.Milestones[MilestoneFirstPaper])
}

func TestEndTurn_BetterComputersBoostResearch(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Upgrades[UpgradeBetterComputers] = true
	g.State.Staff.Hire(staff.RoleResearcher, 1)
	g.State.Staff.Hire(staff.RoleResearcher, 1)

	rep, err := g.EndTurn()
	require.NoError(t, err)
	// (3 + 3 + 6 + 6) * 1.25 = 22.5 -> 23
	assert.Equal(t, 23, rep.ResearchGained)
}

func TestEndTurn_ManagerMilestoneAndUnmanagedStaff(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 1000
	for g.State.Staff.Len() < 12 {
		g.State.Staff.Hire(staff.RoleGeneralist, 1)
	}
	g.State.Compute = 100

	rep, err := g.EndTurn()
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Unmanaged)
	assert.Equal(t, 9, rep.ComputeUsed)
	assert.Contains(t, rep.EventsFired, MilestoneManagerUnlock)
	assert.True(t, g.State.Milestones[MilestoneManagerUnlock])

	require.NoError(t, g.SelectAction("hire_manager", false))
	rep, err = g.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Unmanaged)
	assert.Equal(t, 12, rep.ComputeUsed)
	assert.NotContains(t, rep.EventsFired, MilestoneManagerUnlock, "milestone fires once")
}

func TestEndTurn_BoardOversightAndAudit(t *testing.T) {
	g := newTestGame(t, func(b *config.Balance) {
		b.AuditThreshold = 2
	})
	g.State.Money = 2000

	spend := func() {
		require.NoError(t, g.SelectAction("hire_researcher", false))
		require.NoError(t, g.SelectAction("hire_researcher", false))
		require.NoError(t, g.SelectAction("hire_staff", false))
	}

	spend()
	rep, err := g.EndTurn()
	require.NoError(t, err)
	assert.Contains(t, rep.EventsFired, MilestoneBoardOversight)
	assert.Equal(t, 2, g.State.BoardMembers)
	assert.Equal(t, 0, g.State.AuditRisk)

	spend()
	_, err = g.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, g.State.AuditRisk)

	spend()
	moneyBefore := g.State.Money
	repBefore := g.State.Reputation
	rep, err = g.EndTurn()
	require.NoError(t, err)
	assert.Contains(t, rep.EventsFired, MilestoneAudit)
	assert.Equal(t, 0, g.State.AuditRisk)
	assert.Equal(t, repBefore-5, g.State.Reputation)
	assert.Less(t, g.State.Money, moneyBefore-220-50+1)
}

func TestEndTurn_AccountingSoftwarePreventsOversight(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 2000
	require.NoError(t, g.BuyUpgrade(UpgradeAccountingSoftware))
	require.NoError(t, g.SelectAction("hire_researcher", false))
	require.NoError(t, g.SelectAction("hire_researcher", false))

	rep, err := g.EndTurn()
	require.NoError(t, err)
	assert.NotContains(t, rep.EventsFired, MilestoneBoardOversight)
	assert.Zero(t, g.State.BoardMembers)
}

func TestEndTurn_DelegationReducesEffect(t *testing.T) {
	personal := newTestGame(t, nil)
	require.NoError(t, personal.SelectAction("fundraise", false))
	_, err := personal.EndTurn()
	require.NoError(t, err)

	delegated := newTestGame(t, nil)
	delegated.State.Staff.Hire(staff.RoleAdmin, 0)
	require.NoError(t, delegated.SelectAction("fundraise", true))
	_, err = delegated.EndTurn()
	require.NoError(t, err)

	raisedPersonal := personal.State.Money - 100 + 30
	raisedDelegated := delegated.State.Money - 100 + 45
	assert.Equal(t, int(math.Round(float64(raisedPersonal)*0.6)), raisedDelegated)
}

func TestEndTurn_OpponentsAddDoomAndGetDiscovered(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Opponents = []opponent.Opponent{
		{ID: "fast", Name: "Fast Lab", Researchers: 40, Compute: 100, Progress: 49.9},
	}

	rep, err := g.EndTurn()
	require.NoError(t, err)

	assert.True(t, g.State.Opponents[0].Discovered)
	assert.Greater(t, rep.DoomDelta, 1)
}

func TestEndTurn_Outcomes(t *testing.T) {
	cases := []struct {
		name  string
		setup func(g *Game)
		want  Outcome
	}{
		{"doom maxed", func(g *Game) { g.State.Doom = 99 }, OutcomeDoom},
		{"rival finished", func(g *Game) {
			g.State.Opponents = []opponent.Opponent{{ID: "x", Name: "X", Progress: 100}}
		}, OutcomeOpponentAGI},
		{"reputation gone", func(g *Game) { g.State.Reputation = 0 }, OutcomeReputation},
		{"doom solved", func(g *Game) {
			g.State.Doom = 0
			g.State.Balance.BaseDoomPerTurn = 0
		}, OutcomeAligned},
		{"survived run", func(g *Game) { g.State.Balance.MaxTurns = 1 }, OutcomeSurvived},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, nil)
			tc.setup(g)
			rep, err := g.EndTurn()
			require.NoError(t, err)
			assert.True(t, rep.Over)
			assert.Equal(t, tc.want, rep.Outcome)
			assert.Equal(t, tc.want.Won(), g.State.Outcome.Won())

			_, err = g.EndTurn()
			require.ErrorIs(t, err, ErrGameOver)
			require.ErrorIs(t, g.SelectAction("fundraise", false), ErrGameOver)
		})
	}
}

func TestEndTurn_DeterministicForSeed(t *testing.T) {
	play := func() State {
		g, err := New(Options{ID: "d", Seed: "same", Clock: FixedClock(testNow)})
		require.NoError(t, err)
		for i := 0; i < 6 && !g.State.Over; i++ {
			for _, inst := range g.State.Pending {
				require.NoError(t, g.ResolveEvent(inst.ID, 0))
			}
			_ = g.SelectAction("fundraise", false)
			_ = g.SelectAction("safety_research", false)
			_, err := g.EndTurn()
			require.NoError(t, err)
		}
		return g.State
	}
	a, b := play(), play()
	assert.Equal(t, a.Money, b.Money)
	assert.Equal(t, a.Doom, b.Doom)
	assert.Equal(t, a.Messages, b.Messages)
	assert.Equal(t, a.Opponents, b.Opponents)
}

func knownStats(ops []opponent.Opponent) int {
	n := 0
	for _, o := range ops {
		for _, s := range opponent.Stats {
			if o.Known[s] {
				n++
			}
		}
	}
	return n
}

func TestEndTurn_ScoutAndEspionage(t *testing.T) {
	g := newTestGame(t, nil)
	g.State.Money = 500
	g.State.Opponents = []opponent.Opponent{
		{ID: "quiet", Name: "Quiet Lab"},
		{ID: "hidden", Name: "Hidden Lab"},
	}

	require.ErrorIs(t, g.SelectAction("espionage", false), ErrActionUnavailable)

	require.NoError(t, g.SelectAction("scout_opponent", false))
	_, err := g.EndTurn()
	require.NoError(t, err)
	assert.Len(t, g.discovered(), 1, "first scout finds a lab")
	assert.Zero(t, knownStats(g.State.Opponents))

	require.NoError(t, g.SelectAction("scout_opponent", false))
	_, err = g.EndTurn()
	require.NoError(t, err)
	require.Empty(t, g.undiscovered())
	assert.Zero(t, knownStats(g.State.Opponents))

	require.NoError(t, g.SelectAction("scout_opponent", false))
	_, err = g.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, knownStats(g.State.Opponents), "scouting known labs reveals one stat")

	require.NoError(t, g.SelectAction("espionage", false))
	_, err = g.EndTurn()
	require.NoError(t, err)
	assert.True(t, g.State.Opponents[0].FullyKnown())
	assert.NotNil(t, g.State.Opponents[0].View().Progress)
}

func TestEspionage_CaughtCostsReputation(t *testing.T) {
	caught := func(secure bool) int {
		g := newTestGame(t, nil)
		g.State.Opponents = []opponent.Opponent{{ID: "quiet", Name: "Quiet Lab", Discovered: true}}
		g.State.Upgrades[UpgradeSecureCloud] = secure
		spy := g.actions["espionage"]
		n := 0
		for i := 0; i < 400; i++ {
			g.State.Reputation = 50
			spy.Downside(g, 1)
			if g.State.Reputation == 47 {
				n++
			}
		}
		return n
	}
	plain, secure := caught(false), caught(true)
	assert.InDelta(t, 100, plain, 40, "about a quarter of attempts are caught")
	assert.InDelta(t, 48, secure, 30, "secure cloud roughly halves the risk")
	assert.Less(t, secure, plain)
}
