package game

import (
	"fmt"
	"sync"

	"pdoom/internal/staff"
	"pdoom/internal/telemetry"
	"pdoom/internal/trigger"
)

type EventKind string

const (
	KindInstant   EventKind = "instant"
	KindPopup     EventKind = "popup"
	KindMilestone EventKind = "milestone"
)

const (
	MilestoneManagerUnlock  = "manager_unlock"
	MilestoneBoardOversight = "board_oversight"
	MilestoneAudit          = "audit"
	MilestoneFirstPaper     = "first_paper"
	MilestoneDoomWarning    = "doom_warning"
)

// Option is one choice offered by a popup event.
type Option struct {
	Label  string
	Effect func(g *Game)
}

// EventDef describes an event. Trigger is an expression over trigger.Env.
// Instant and milestone events run Effect; popups wait for one of Options.
type EventDef struct {
	ID            string
	Name          string
	Description   string
	Kind          EventKind
	Trigger       string
	Once          bool
	Cooldown      int
	Deferrable    bool
	Effect        func(g *Game)
	Options       []Option
	DefaultOption int
}

// EventView describes a pending or deferred event for display.
type EventView struct {
	Instance    EventInstance `json:"instance"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Options     []string      `json:"options"`
	Deferrable  bool          `json:"deferrable"`
}

func catalogEvents() []EventDef {
	return []EventDef{
		{
			ID:          MilestoneManagerUnlock,
			Name:        "Growing Pains",
			Description: "The founders cannot keep track of everyone any more. Managers are now available for hire.",
			Kind:        KindMilestone,
			Trigger:     "Staff >= ManagerUnlockStaff",
			Once:        true,
			Effect: func(g *Game) {
				g.logf("Milestone: your lab is big enough to need managers. Hire Manager is now available.")
			},
		},
		{
			ID:          MilestoneBoardOversight,
			Name:        "Board Oversight",
			Description: "Heavy spending without proper accounting draws the board's attention.",
			Kind:        KindMilestone,
			Trigger:     `SpendThisTurn > BoardSpendThreshold && !HasUpgrade("accounting_software")`,
			Effect: func(g *Game) {
				if g.State.BoardMembers == 0 {
					g.State.BoardMembers = g.State.Balance.BoardSeats
					g.logf("Milestone: spending $%dk in one turn got the board involved. %d board members now watch your books.",
						g.State.SpendThisTurn, g.State.BoardMembers)
					return
				}
				g.State.AuditRisk++
				g.logf("The board is unhappy with this turn's spending. Audit risk is now %d.", g.State.AuditRisk)
			},
		},
		{
			ID:          MilestoneAudit,
			Name:        "Audit",
			Description: "The board orders an audit of your finances.",
			Kind:        KindMilestone,
			Trigger:     "BoardMembers > 0 && AuditRisk >= AuditThreshold",
			Effect: func(g *Game) {
				bal := g.State.Balance
				fine := min(g.State.Money, bal.AuditFine)
				g.addMoney(-fine)
				g.addReputation(-bal.AuditReputationHit)
				g.State.AuditRisk = 0
				g.logf("The board audited the lab: fined $%dk and reputation fell by %d.", fine, bal.AuditReputationHit)
			},
		},
		{
			ID:      MilestoneFirstPaper,
			Name:    "First Publication",
			Kind:    KindMilestone,
			Trigger: "Papers >= 1",
			Once:    true,
			Effect: func(g *Game) {
				g.addReputation(1)
				g.logf("Milestone: your first safety paper is out. The field takes notice.")
			},
		},
		{
			ID:      MilestoneDoomWarning,
			Name:    "Point of No Return",
			Kind:    KindMilestone,
			Trigger: "Doom >= 75",
			Once:    true,
			Effect: func(g *Game) {
				g.logf("Warning: p(Doom) has passed 75%%. Time is running out.")
			},
		},
		{
			ID:          "lab_breakthrough",
			Name:        "Lab Breakthrough",
			Description: "A researcher has a eureka moment.",
			Kind:        KindInstant,
			Trigger:     "Turn >= 3 && Researchers > 0 && Roll < 0.08",
			Cooldown:    5,
			Effect: func(g *Game) {
				g.State.Research += 40
				g.logf("Breakthrough! Your researchers made a leap forward (+40 research).")
			},
		},
		{
			ID:            "funding_crisis",
			Name:          "Funding Crisis",
			Description:   "A major donor pulled out and the bank account looks thin.",
			Kind:          KindPopup,
			Trigger:       "Turn >= 4 && Money < 60 && Roll < 0.25",
			Cooldown:      6,
			Deferrable:    true,
			DefaultOption: 1,
			Options: []Option{
				{Label: "Take an emergency loan (+$80k, -3 reputation)", Effect: func(g *Game) {
					g.addMoney(80)
					g.addReputation(-3)
					g.logf("You took an emergency loan.")
				}},
				{Label: "Cut costs (lose an employee, +$20k)", Effect: func(g *Game) {
					if gone := g.State.Staff.Quit(1); len(gone) > 0 {
						g.logf("You let an employee go to save money.")
					}
					g.addMoney(20)
				}},
			},
		},
		{
			ID:            "staff_burnout",
			Name:          "Staff Burnout",
			Description:   "Long hours are taking their toll on the team.",
			Kind:          KindPopup,
			Trigger:       `Staff >= 5 && Roll < (HasUpgrade("comfy_chairs") ? 0.04 : 0.10)`,
			Cooldown:      4,
			Deferrable:    true,
			DefaultOption: 1,
			Options: []Option{
				{Label: "Pay for a team retreat (-$30k, +1 reputation)", Effect: func(g *Game) {
					g.addMoney(-30)
					g.addReputation(1)
					g.logf("The team came back from the retreat refreshed.")
				}},
				{Label: "Push through (a researcher may quit)", Effect: func(g *Game) {
					if b, ok := g.State.Staff.QuitRole(staff.RoleResearcher); ok {
						g.logf("Researcher #%d quit from burnout.", b.ID)
						return
					}
					if gone := g.State.Staff.Quit(1); len(gone) > 0 {
						g.logf("An exhausted employee quit.")
					}
				}},
			},
		},
		{
			ID:          "media_scandal",
			Name:        "Media Scandal",
			Description: "A tabloid runs an unflattering story about the lab.",
			Kind:        KindInstant,
			Trigger:     "Reputation > 15 && Roll < 0.05",
			Cooldown:    6,
			Effect: func(g *Game) {
				g.addReputation(-5)
				g.logf("A media scandal cost you 5 reputation.")
			},
		},
		{
			ID:            "safety_conference",
			Name:          "Safety Conference",
			Description:   "Organisers invite your lab to sponsor a safety conference.",
			Kind:          KindPopup,
			Trigger:       "Papers >= 1 && Roll < 0.10",
			Cooldown:      8,
			Deferrable:    true,
			DefaultOption: 1,
			Options: []Option{
				{Label: "Sponsor it (-$30k, +5 reputation, -2 doom)", Effect: func(g *Game) {
					if g.State.Money < 30 {
						g.logf("You could not afford to sponsor the conference.")
						return
					}
					g.addMoney(-30)
					g.addReputation(5)
					g.addDoom(-2)
					g.logf("The conference was a success.")
				}},
				{Label: "Decline", Effect: func(g *Game) {
					g.logf("You declined the conference invitation.")
				}},
			},
		},
		{
			ID:          "opponent_leak",
			Name:        "Industry Leak",
			Description: "A leaked memo reveals a lab you had not heard of.",
			Kind:        KindInstant,
			Trigger:     "Turn >= 2 && UndiscoveredOpponents > 0 && Roll < 0.07",
			Cooldown:    3,
			Effect: func(g *Game) {
				hidden := g.undiscovered()
				if len(hidden) == 0 {
					return
				}
				g.discover(&g.State.Opponents[hidden[g.rand().IntN(len(hidden))]], "a leak")
			},
		},
		{
			ID:          "compute_glut",
			Name:        "Compute Glut",
			Description: "A cloud provider overbuilt and is giving away capacity.",
			Kind:        KindInstant,
			Trigger:     "Turn >= 5 && Roll < 0.06",
			Cooldown:    6,
			Effect: func(g *Game) {
				g.State.Compute += 20
				g.logf("Free compute! +20 units.")
			},
		},
		{
			ID:          "capabilities_race",
			Name:        "Capabilities Race",
			Description: "Rivals announce a new frontier model.",
			Kind:        KindInstant,
			Trigger:     "OpponentMaxProgress >= 50 && Roll < 0.10",
			Cooldown:    5,
			Effect: func(g *Game) {
				g.addDoom(3)
				g.logf("A rival announced a frontier model. p(Doom) rose by 3.")
			},
		},
		{
			ID:            "whistleblower",
			Name:          "Whistleblower",
			Description:   "An insider at a rival lab offers you evidence of reckless practices.",
			Kind:          KindPopup,
			Trigger:       "Doom >= 60 && Reputation >= 20 && Roll < 0.06",
			Cooldown:      10,
			DefaultOption: 1,
			Options: []Option{
				{Label: "Go public (-4 reputation, -5 doom)", Effect: func(g *Game) {
					g.addReputation(-4)
					g.addDoom(-5)
					g.logf("You went public. Regulators are paying attention.")
				}},
				{Label: "Stay quiet (+2 doom)", Effect: func(g *Game) {
					g.addDoom(2)
					g.logf("You kept quiet and the rival pressed on.")
				}},
			},
		},
	}
}

func indexEvents(list []EventDef) map[string]EventDef {
	m := make(map[string]EventDef, len(list))
	for _, e := range list {
		m[e.ID] = e
	}
	return m
}

// compiledTriggers compiles every catalog trigger once per process.
var compiledTriggers = sync.OnceValues(func() (*trigger.Set, error) {
	set := trigger.NewSet()
	for _, e := range catalogEvents() {
		if err := set.Add(e.ID, e.Trigger); err != nil {
			return nil, err
		}
	}
	return set, nil
})

// EventIDs lists catalog events in evaluation order.
func EventIDs() []string {
	list := catalogEvents()
	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	return ids
}

// knownEvents drops saved instances of events the catalog no longer has.
func (g *Game) knownEvents(list []EventInstance) []EventInstance {
	kept := list[:0]
	for _, inst := range list {
		if _, ok := g.events[inst.EventID]; !ok {
			g.logf("Dropped saved event %q: it no longer exists.", inst.EventID)
			continue
		}
		kept = append(kept, inst)
	}
	return kept
}

func (g *Game) view(inst EventInstance) EventView {
	def, ok := g.events[inst.EventID]
	if !ok {
		return EventView{Instance: inst, Name: inst.EventID}
	}
	v := EventView{
		Instance:    inst,
		Name:        def.Name,
		Description: def.Description,
		Deferrable:  def.Deferrable && g.State.Upgrades[UpgradeEventAlertSystem],
	}
	for _, o := range def.Options {
		v.Options = append(v.Options, o.Label)
	}
	return v
}

func (g *Game) PendingEvents() []EventView {
	out := make([]EventView, 0, len(g.State.Pending))
	for _, inst := range g.State.Pending {
		out = append(out, g.view(inst))
	}
	return out
}

func (g *Game) DeferredEvents() []EventView {
	out := make([]EventView, 0, len(g.State.Deferred))
	for _, inst := range g.State.Deferred {
		out = append(out, g.view(inst))
	}
	return out
}

// fireEvents runs deferred expiry, milestones, then random events. It returns the ids fired.
func (g *Game) fireEvents() ([]string, error) {
	var fired []string

	g.expireDeferred()

	randomBudget := g.State.Balance.MaxRandomEventsPerTurn
	for _, id := range EventIDs() {
		def, ok := g.events[id]
		if !ok {
			continue
		}
		if def.Once && g.State.Milestones[id] {
			continue
		}
		if last, ok := g.State.LastFired[id]; ok && def.Cooldown > 0 && g.State.Turn-last < def.Cooldown {
			continue
		}
		if def.Kind != KindMilestone && randomBudget <= 0 {
			continue
		}

		env := g.env()
		env.Roll = g.rand().Float64()
		hit, err := g.triggers.Eval(id, env)
		if err != nil {
			return fired, fmt.Errorf("event %s: %w", id, err)
		}
		if !hit {
			continue
		}

		g.State.LastFired[id] = g.State.Turn
		fired = append(fired, id)
		switch def.Kind {
		case KindMilestone:
			g.State.Milestones[id] = true
			def.Effect(g)
			g.record(telemetry.EventMilestoneReached, telemetry.EventMetadata{"milestone": id})
			continue
		case KindPopup:
			g.State.Pending = append(g.State.Pending, EventInstance{
				ID:      fmt.Sprintf("%s-%d", id, g.State.Turn),
				EventID: id,
				Turn:    g.State.Turn,
			})
			g.logf("Event: %s. A decision is needed.", def.Name)
		default:
			g.logf("Event: %s.", def.Name)
			def.Effect(g)
		}
		randomBudget--
		g.record(telemetry.EventEventFired, telemetry.EventMetadata{"event": id, "kind": string(def.Kind)})
	}
	return fired, nil
}

func (g *Game) expireDeferred() {
	kept := g.State.Deferred[:0]
	for _, inst := range g.State.Deferred {
		inst.ExpiresIn--
		if inst.ExpiresIn > 0 {
			kept = append(kept, inst)
			continue
		}
		def, ok := g.events[inst.EventID]
		if !ok || def.DefaultOption < 0 || def.DefaultOption >= len(def.Options) {
			g.logf("Dropped deferred event %q: it has no default option.", inst.EventID)
			continue
		}
		g.logf("%s could not wait any longer: %s.", def.Name, def.Options[def.DefaultOption].Label)
		def.Options[def.DefaultOption].Effect(g)
		g.record(telemetry.EventEventResolved, telemetry.EventMetadata{"event": inst.EventID, "option": def.DefaultOption, "expired": true})
	}
	g.State.Deferred = kept
}

func findInstance(list []EventInstance, id string) int {
	for i, inst := range list {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// ResolveEvent applies the chosen option of a pending or deferred popup.
func (g *Game) ResolveEvent(instanceID string, option int) error {
	const what = "resolve event"
	if g.State.Over {
		return g.reject(what, ErrGameOver)
	}

	list := &g.State.Pending
	i := findInstance(*list, instanceID)
	if i < 0 {
		list = &g.State.Deferred
		i = findInstance(*list, instanceID)
	}
	if i < 0 {
		return g.reject(what, fmt.Errorf("%w %q", ErrUnknownEvent, instanceID))
	}

	inst := (*list)[i]
	def := g.events[inst.EventID]
	if option < 0 || option >= len(def.Options) {
		return g.reject(what, fmt.Errorf("option %d: %w", option, ErrBadSelection))
	}

	*list = append((*list)[:i], (*list)[i+1:]...)
	g.logf("%s: %s.", def.Name, def.Options[option].Label)
	def.Options[option].Effect(g)
	g.record(telemetry.EventEventResolved, telemetry.EventMetadata{"event": inst.EventID, "option": option})
	g.touch()
	return nil
}

// DeferEvent postpones a pending popup. It needs the event alert system upgrade and
// resolves itself with the default option after DeferTurns turns.
func (g *Game) DeferEvent(instanceID string) error {
	const what = "defer event"
	if g.State.Over {
		return g.reject(what, ErrGameOver)
	}
	i := findInstance(g.State.Pending, instanceID)
	if i < 0 {
		return g.reject(what, fmt.Errorf("%w %q", ErrUnknownEvent, instanceID))
	}
	inst := g.State.Pending[i]
	def := g.events[inst.EventID]
	if !g.State.Upgrades[UpgradeEventAlertSystem] {
		return g.reject(what, fmt.Errorf("%s needs the event alert system: %w", def.Name, ErrCannotDefer))
	}
	if !def.Deferrable {
		return g.reject(what, fmt.Errorf("%s: %w", def.Name, ErrCannotDefer))
	}

	g.State.Pending = append(g.State.Pending[:i], g.State.Pending[i+1:]...)
	inst.ExpiresIn = g.State.Balance.DeferTurns
	g.State.Deferred = append(g.State.Deferred, inst)
	g.logf("Deferred %s for up to %d turns.", def.Name, inst.ExpiresIn)
	g.touch()
	return nil
}
