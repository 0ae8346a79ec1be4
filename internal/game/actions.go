package game

import (
	"fmt"

	"pdoom/internal/opponent"
	"pdoom/internal/staff"
	"pdoom/internal/telemetry"
)

// Effect applies an action's consequences. eff is 1.0 when the player acts personally
// and the delegation effectiveness otherwise.
type Effect func(g *Game, eff float64)

// Delegation lets admin staff run an action for a different AP cost at reduced effect.
type Delegation struct {
	APCost        int
	Effectiveness float64
}

type Action struct {
	ID          string
	Name        string
	Description string
	Cost        int
	APCost      int
	Delegate    *Delegation
	Available   func(g *Game) bool
	Upside      Effect
	Downside    Effect
}

// ActionView is the catalog entry a front end renders.
type ActionView struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	Cost                  int     `json:"cost"`
	APCost                int     `json:"ap_cost"`
	Delegatable           bool    `json:"delegatable"`
	DelegateAPCost        int     `json:"delegate_ap_cost,omitempty"`
	DelegateEffectiveness float64 `json:"delegate_effectiveness,omitempty"`
	Available             bool    `json:"available"`
}

func catalogActions() []Action {
	return []Action{
		{
			ID:          "grow_community",
			Name:        "Grow Community",
			Description: "Run meetups and outreach. Builds reputation and sometimes attracts a volunteer.",
			Cost:        25,
			APCost:      1,
			Upside: func(g *Game, eff float64) {
				gain := scaled(g.rand().Range(3, 5), eff)
				g.addReputation(gain)
				g.logf("Community outreach raised reputation by %d.", gain)
			},
			Downside: func(g *Game, _ float64) {
				if g.rand().Chance(0.2) {
					g.hire(staff.RoleGeneralist)
					g.logf("A volunteer from the community joined the lab.")
				}
			},
		},
		{
			ID:          "fundraise",
			Name:        "Fundraise",
			Description: "Pitch donors. Better reputation raises more.",
			Cost:        0,
			APCost:      1,
			Delegate:    &Delegation{APCost: 0, Effectiveness: 0.6},
			Upside: func(g *Game, eff float64) {
				raised := scaled(g.rand().Range(40, 70)+g.State.Reputation/2, eff)
				g.addMoney(raised)
				g.logf("Fundraising brought in $%dk.", raised)
			},
		},
		{
			ID:          "hire_staff",
			Name:        "Hire Staff",
			Description: "Hire a generalist employee.",
			Cost:        60,
			APCost:      1,
			Upside:      hireEffect(staff.RoleGeneralist, "a new employee"),
		},
		{
			ID:          "hire_researcher",
			Name:        "Hire Researcher",
			Description: "Hire a safety researcher. Produces research twice as fast.",
			Cost:        80,
			APCost:      1,
			Upside:      hireEffect(staff.RoleResearcher, "a safety researcher"),
		},
		{
			ID:          "hire_admin",
			Name:        "Hire Admin",
			Description: "Hire administrative staff. Raises action points and enables delegation.",
			Cost:        70,
			APCost:      1,
			Upside:      hireEffect(staff.RoleAdmin, "an administrator"),
		},
		{
			ID:          "hire_manager",
			Name:        "Hire Manager",
			Description: "Hire a manager who can look after up to nine employees.",
			Cost:        90,
			APCost:      1,
			Available: func(g *Game) bool {
				return g.State.Milestones[MilestoneManagerUnlock]
			},
			Upside: hireEffect(staff.RoleManager, "a manager"),
		},
		{
			ID:          "buy_compute",
			Name:        "Buy Compute",
			Description: "Rent GPU time. Each productive employee uses one unit per turn.",
			Cost:        40,
			APCost:      1,
			Delegate:    &Delegation{APCost: 0, Effectiveness: 0.75},
			Upside: func(g *Game, eff float64) {
				units := scaled(10, eff)
				g.State.Compute += units
				g.logf("Bought %d units of compute.", units)
			},
		},
		{
			ID:          "safety_research",
			Name:        "Safety Research",
			Description: "Fund an alignment research sprint. Lowers doom.",
			Cost:        40,
			APCost:      1,
			Delegate:    &Delegation{APCost: 1, Effectiveness: 0.7},
			Upside: func(g *Game, eff float64) {
				cut := scaled(g.rand().Range(2, 6), eff)
				g.addDoom(-cut)
				g.addReputation(1)
				g.State.Research += 10
				g.logf("Safety research reduced p(Doom) by %d.", cut)
			},
		},
		{
			ID:          "governance_research",
			Name:        "Governance Research",
			Description: "Study policy levers. Lowers doom and builds standing.",
			Cost:        45,
			APCost:      1,
			Delegate:    &Delegation{APCost: 1, Effectiveness: 0.7},
			Upside: func(g *Game, eff float64) {
				cut := scaled(g.rand().Range(1, 3), eff)
				rep := g.rand().Range(1, 2)
				g.addDoom(-cut)
				g.addReputation(rep)
				g.logf("Governance research reduced p(Doom) by %d.", cut)
			},
		},
		{
			ID:          "scout_opponent",
			Name:        "Scout Opponent",
			Description: "Investigate the field. Finds hidden labs, then their numbers.",
			Cost:        30,
			APCost:      1,
			Delegate:    &Delegation{APCost: 0, Effectiveness: 1},
			Upside: func(g *Game, _ float64) {
				g.scout()
			},
		},
		{
			ID:          "espionage",
			Name:        "Espionage",
			Description: "Learn everything about a known lab. Risky if you are caught.",
			Cost:        30,
			APCost:      2,
			Available: func(g *Game) bool {
				return len(g.discovered()) > 0
			},
			Upside: func(g *Game, _ float64) {
				idx := g.discovered()
				if len(idx) == 0 {
					g.logf("There is nobody to spy on yet.")
					return
				}
				target := idx[0]
				for _, i := range idx {
					if !g.State.Opponents[i].FullyKnown() {
						target = i
						break
					}
				}
				o := &g.State.Opponents[target]
				o.RevealAll()
				g.logf("Espionage exposed everything about %s.", o.Name)
			},
			Downside: func(g *Game, _ float64) {
				risk := 0.25
				if g.State.Upgrades[UpgradeSecureCloud] {
					risk = 0.12
				}
				if g.rand().Chance(risk) {
					g.addReputation(-3)
					g.logf("Your espionage was discovered. Reputation fell by 3.")
				}
			},
		},
		{
			ID:          "lobby_government",
			Name:        "Lobby Government",
			Description: "Push for regulation that slows every rival lab.",
			Cost:        60,
			APCost:      2,
			Available: func(g *Game) bool {
				return g.State.Reputation >= 25
			},
			Upside: func(g *Game, _ float64) {
				cut := g.rand().Range(1, 3)
				g.addDoom(-cut)
				for i := range g.State.Opponents {
					o := &g.State.Opponents[i]
					o.Budget = max(0, o.Budget-20)
				}
				g.logf("Lobbying passed new rules. p(Doom) fell by %d and rival budgets shrank.", cut)
			},
		},
	}
}

func hireEffect(role staff.Role, label string) Effect {
	return func(g *Game, _ float64) {
		b := g.hire(role)
		g.logf("Hired %s (#%d).", label, b.ID)
	}
}

// scout discovers a hidden lab if one exists, otherwise reveals a stat of a known one.
func (g *Game) scout() {
	if hidden := g.undiscovered(); len(hidden) > 0 {
		i := hidden[g.rand().IntN(len(hidden))]
		g.discover(&g.State.Opponents[i], "scouting")
		return
	}
	var candidates []int
	for _, i := range g.discovered() {
		if !g.State.Opponents[i].FullyKnown() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		g.logf("Scouting turned up nothing new.")
		return
	}
	o := &g.State.Opponents[candidates[g.rand().IntN(len(candidates))]]
	if stat, ok := o.RevealStat(); ok {
		g.logf("Scouts learned %s's %s: %s.", o.Name, stat, statValue(*o, stat))
	}
}

func statValue(o opponent.Opponent, s opponent.Stat) string {
	switch s {
	case opponent.StatBudget:
		return fmt.Sprintf("$%dk", o.Budget)
	case opponent.StatResearchers:
		return fmt.Sprint(o.Researchers)
	case opponent.StatLobbyists:
		return fmt.Sprint(o.Lobbyists)
	case opponent.StatCompute:
		return fmt.Sprint(o.Compute)
	case opponent.StatProgress:
		return fmt.Sprintf("%.0f%%", o.Progress)
	default:
		return "?"
	}
}

func indexActions(list []Action) map[string]Action {
	m := make(map[string]Action, len(list))
	for _, a := range list {
		m[a.ID] = a
	}
	return m
}

// ActionOrder is the catalog order front ends display.
func ActionOrder() []string {
	list := catalogActions()
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return ids
}

func (g *Game) isAvailable(a Action) bool {
	return a.Available == nil || a.Available(g)
}

func (g *Game) canDelegate(a Action) bool {
	return a.Delegate != nil && g.State.Staff.Count(staff.RoleAdmin) > 0
}

func (g *Game) Actions() []ActionView {
	out := make([]ActionView, 0, len(g.actions))
	for _, id := range ActionOrder() {
		a := g.actions[id]
		v := ActionView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Cost:        a.Cost,
			APCost:      a.APCost,
			Delegatable: a.Delegate != nil,
			Available:   g.isAvailable(a),
		}
		if a.Delegate != nil {
			v.DelegateAPCost = a.Delegate.APCost
			v.DelegateEffectiveness = a.Delegate.Effectiveness
		}
		out = append(out, v)
	}
	return out
}

// SelectAction queues an action for this turn and spends its AP immediately.
func (g *Game) SelectAction(id string, delegate bool) error {
	const what = "select action"
	if g.State.Over {
		return g.reject(what, ErrGameOver)
	}
	if len(g.State.Pending) > 0 {
		return g.reject(what, ErrEventPending)
	}
	a, ok := g.actions[id]
	if !ok {
		return g.reject(what, fmt.Errorf("%w %q", ErrUnknownAction, id))
	}
	if !g.isAvailable(a) {
		return g.reject(what, fmt.Errorf("%s: %w", a.Name, ErrActionUnavailable))
	}

	ap := a.APCost
	if delegate {
		if !g.canDelegate(a) {
			return g.reject(what, fmt.Errorf("%s: %w", a.Name, ErrCannotDelegate))
		}
		ap = a.Delegate.APCost
	}
	if g.State.ActionPoints < ap {
		return g.reject(what, fmt.Errorf("%s needs %d AP: %w", a.Name, ap, ErrNotEnoughAP))
	}
	if g.Available() < a.Cost {
		return g.reject(what, fmt.Errorf("%s costs $%dk: %w", a.Name, a.Cost, ErrInsufficientFunds))
	}

	g.State.ActionPoints -= ap
	g.State.Selected = append(g.State.Selected, Selection{
		ActionID:  a.ID,
		Delegated: delegate,
		APCost:    ap,
		Cost:      a.Cost,
	})
	if delegate {
		g.logf("Delegated %s.", a.Name)
	} else {
		g.logf("Selected %s.", a.Name)
	}
	g.record(telemetry.EventActionSelected, telemetry.EventMetadata{"action": a.ID, "delegated": delegate})
	g.touch()
	return nil
}

// UnselectAction removes a queued action and refunds its AP.
func (g *Game) UnselectAction(index int) error {
	const what = "undo action"
	if g.State.Over {
		return g.reject(what, ErrGameOver)
	}
	if index < 0 || index >= len(g.State.Selected) {
		return g.reject(what, ErrBadSelection)
	}
	sel := g.State.Selected[index]
	g.State.Selected = append(g.State.Selected[:index], g.State.Selected[index+1:]...)
	g.State.ActionPoints += sel.APCost
	g.logf("Cancelled %s.", g.actions[sel.ActionID].Name)
	g.touch()
	return nil
}

// resolveSelected pays for and applies every queued action in order.
func (g *Game) resolveSelected() []string {
	var done []string
	for _, sel := range g.State.Selected {
		a, ok := g.actions[sel.ActionID]
		if !ok {
			continue
		}
		if g.State.Money < sel.Cost {
			g.logf("Could not afford %s this turn.", a.Name)
			continue
		}
		g.State.Money -= sel.Cost
		g.State.SpendThisTurn += sel.Cost

		eff := 1.0
		if sel.Delegated && a.Delegate != nil {
			eff = a.Delegate.Effectiveness
		}
		if a.Upside != nil {
			a.Upside(g, eff)
		}
		if a.Downside != nil {
			a.Downside(g, eff)
		}
		done = append(done, a.ID)
		g.record(telemetry.EventActionResolved, telemetry.EventMetadata{"action": a.ID, "delegated": sel.Delegated})
	}
	g.State.Selected = nil
	return done
}
