package game

import (
	"math"

	"pdoom/internal/opponent"
	"pdoom/internal/rng"
	"pdoom/internal/staff"
	"pdoom/internal/telemetry"
)

// EndTurn resolves the current turn:
//  1. apply selected actions
//  2. pay maintenance
//  3. update productivity and compute use
//  4. advance opponents and accumulate doom
//  5. fire deferred, milestone and random events
//  6. check win and lose conditions
func (g *Game) EndTurn() (TurnReport, error) {
	const what = "end turn"
	if g.State.Over {
		return TurnReport{}, g.reject(what, ErrGameOver)
	}
	if len(g.State.Pending) > 0 {
		return TurnReport{}, g.reject(what, ErrEventPending)
	}

	g.rnd = rng.ForTurn(g.State.Seed, g.State.Turn)
	g.turnMessages = nil
	before := g.State
	rep := TurnReport{GameID: g.State.ID, Turn: g.State.Turn}

	rep.ActionsResolved = g.resolveSelected()
	rep.Maintenance, rep.StaffLost = g.payMaintenance()
	rep.Unmanaged, rep.ComputeUsed, rep.ResearchGained, rep.PapersPublished = g.runProductivity()
	g.advanceOpponents()

	fired, err := g.fireEvents()
	if err != nil {
		return TurnReport{}, err
	}
	rep.EventsFired = fired

	if outcome := g.checkOutcome(); outcome != OutcomeNone {
		g.State.Over = true
		g.State.Outcome = outcome
		g.State.Pending = nil
		g.logf("Game over after %d turns: %s", g.State.Turn, outcome.Describe())
		g.record(telemetry.EventGameOver, telemetry.EventMetadata{
			"outcome": string(outcome),
			"won":     outcome.Won(),
			"turns":   g.State.Turn,
		})
	}

	g.State.Turn++
	g.State.SpendThisTurn = 0
	g.refreshActionPoints()
	g.State.Staff.Layout(8, 1)
	if !g.State.Over {
		g.logf("Turn %d begins.", g.State.Turn)
	}

	rep.MoneyDelta = g.State.Money - before.Money
	rep.DoomDelta = g.State.Doom - before.Doom
	rep.ReputationDelta = g.State.Reputation - before.Reputation
	rep.Pending = append([]EventInstance(nil), g.State.Pending...)
	rep.Messages = append([]string(nil), g.turnMessages...)
	rep.Over = g.State.Over
	rep.Outcome = g.State.Outcome

	g.record(telemetry.EventTurnEnded, telemetry.EventMetadata{"doom": g.State.Doom, "money": g.State.Money})
	g.touch()
	g.rnd = nil
	return rep, nil
}

// payMaintenance charges salaries. Staff the lab cannot pay walk out.
func (g *Game) payMaintenance() (paid, lost int) {
	bal := g.State.Balance
	managers := g.State.Staff.Count(staff.RoleManager)
	employees := g.State.Staff.Len() - managers
	cost := employees*bal.StaffMaintenance + managers*bal.ManagerMaintenance

	if g.State.Upgrades[UpgradeAccountingSoftware] && g.State.AuditRisk > 0 {
		g.State.AuditRisk--
	}

	if cost <= g.State.Money {
		g.State.Money -= cost
		return cost, 0
	}

	paid = g.State.Money
	deficit := cost - g.State.Money
	g.State.Money = 0
	quit := 1
	if bal.StaffMaintenance > 0 {
		quit = int(math.Ceil(float64(deficit) / float64(bal.StaffMaintenance)))
	}
	gone := g.State.Staff.Quit(quit)
	if len(gone) > 0 {
		g.logf("Payroll fell $%dk short. %d staff quit.", deficit, len(gone))
		g.record(telemetry.EventStaffQuit, telemetry.EventMetadata{"count": len(gone), "reason": "unpaid"})
	}
	return paid, len(gone)
}

// runProductivity assigns managers, hands out compute and turns productive hours into
// research and papers.
func (g *Game) runProductivity() (unmanaged, used, gained, papers int) {
	bal := g.State.Balance
	roster := &g.State.Staff

	unmanaged = roster.AssignManagers(bal.ManagerSpan, bal.FoundingSpan)
	if unmanaged > 0 {
		g.logf("%d employees have no manager and got nothing done.", unmanaged)
	}

	used = roster.AllocateCompute(g.State.Compute)
	g.State.Compute -= used
	if idle := len(roster.Employees()) - unmanaged - used; idle > 0 {
		g.logf("%d employees sat idle without compute.", idle)
	}

	for _, b := range roster.Productive() {
		if b.Role == staff.RoleResearcher {
			gained += bal.ResearchPerResearcher
		} else {
			gained += bal.ResearchPerEmployee
		}
	}
	if g.State.Upgrades[UpgradeBetterComputers] {
		gained = int(math.Round(float64(gained) * 1.25))
	}
	g.State.Research += gained

	for bal.ResearchPerPaper > 0 && g.State.Research >= bal.ResearchPerPaper {
		g.State.Research -= bal.ResearchPerPaper
		g.State.Papers++
		papers++
		g.addReputation(bal.PaperReputation)
		g.addDoom(-bal.PaperDoomReduction)
		g.logf("Published safety paper #%d.", g.State.Papers)
		g.record(telemetry.EventPaperPublished, telemetry.EventMetadata{"papers": g.State.Papers})
	}
	return unmanaged, used, gained, papers
}

// advanceOpponents runs every lab's turn and adds the resulting doom.
func (g *Game) advanceOpponents() {
	bal := g.State.Balance
	costs := opponent.Costs{Hire: bal.OpponentHireCost, Compute: bal.OpponentComputeCost}

	total := 0.0
	for i := range g.State.Opponents {
		o := &g.State.Opponents[i]
		total += o.Step(g.rand(), costs)
		if o.Progress >= 50 && !o.Discovered {
			g.discover(o, "public announcements")
		}
	}
	g.addDoom(bal.BaseDoomPerTurn + int(math.Round(total*bal.DoomPerOpponentProgress)))
}

// checkOutcome reports how the game ended, if it did. Losses take precedence.
func (g *Game) checkOutcome() Outcome {
	s := g.State
	switch {
	case s.Doom >= s.MaxDoom:
		return OutcomeDoom
	case g.opponentFinished():
		return OutcomeOpponentAGI
	case s.Staff.Len() == 0:
		return OutcomeNoStaff
	case s.Reputation <= 0:
		return OutcomeReputation
	case s.Doom <= 0:
		return OutcomeAligned
	case s.Balance.MaxTurns > 0 && s.Turn >= s.Balance.MaxTurns:
		return OutcomeSurvived
	}
	return OutcomeNone
}

func (g *Game) opponentFinished() bool {
	for _, o := range g.State.Opponents {
		if o.Progress >= 100 {
			return true
		}
	}
	return false
}
