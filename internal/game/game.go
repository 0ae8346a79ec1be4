package game

import (
	"fmt"
	"math"
	"strings"

	"pdoom/internal/config"
	"pdoom/internal/opponent"
	"pdoom/internal/rng"
	"pdoom/internal/staff"
	"pdoom/internal/telemetry"
	"pdoom/internal/trigger"
)

// Game drives one run. It is not safe for concurrent use; callers serialise access.
type Game struct {
	State State

	actions   map[string]Action
	upgrades  map[string]Upgrade
	events    map[string]EventDef
	triggers  *trigger.Set
	clock     Clock
	telemetry telemetry.Repository

	rnd          *rng.Source
	turnMessages []string
}

type Options struct {
	ID        string
	Seed      string
	Balance   *config.Balance
	Clock     Clock
	Telemetry telemetry.Repository
}

// New starts a fresh run from the balance in opts.
func New(opts Options) (*Game, error) {
	bal := config.Default()
	if opts.Balance != nil {
		bal = *opts.Balance
		bal.ApplyDefaults()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	seed := strings.TrimSpace(opts.Seed)
	if seed == "" {
		seed = rng.WeeklySeed(opts.Clock.Now())
	}

	now := opts.Clock.Now()
	st := State{
		ID:         opts.ID,
		Seed:       seed,
		Turn:       1,
		Money:      bal.StartingMoney,
		Reputation: bal.StartingReputation,
		Doom:       bal.StartingDoom,
		MaxDoom:    bal.MaxDoom,
		Compute:    bal.StartingCompute,
		Opponents:  opponent.Defaults(),
		Upgrades:   map[string]bool{},
		Milestones: map[string]bool{},
		LastFired:  map[string]int{},
		Balance:    bal,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	for i := 0; i < bal.StartingStaff; i++ {
		st.Staff.Hire(staff.RoleGeneralist, 0)
	}

	g, err := build(st, opts)
	if err != nil {
		return nil, err
	}
	g.refreshActionPoints()
	g.State.Staff.AssignManagers(bal.ManagerSpan, bal.FoundingSpan)
	g.State.Staff.Layout(8, 1)
	g.logf("Turn 1. Your lab opens its doors with $%dk and %d staff.", st.Money, st.Staff.Len())
	g.record(telemetry.EventGameStarted, telemetry.EventMetadata{"game": st.ID, "seed": st.Seed})
	return g, nil
}

// Restore resumes a run from saved state.
func Restore(st State, opts Options) (*Game, error) {
	if st.Balance == (config.Balance{}) {
		st.Balance = config.Default()
	}
	if st.Upgrades == nil {
		st.Upgrades = map[string]bool{}
	}
	if st.Milestones == nil {
		st.Milestones = map[string]bool{}
	}
	if st.LastFired == nil {
		st.LastFired = map[string]int{}
	}
	if st.MaxDoom <= 0 {
		st.MaxDoom = st.Balance.MaxDoom
	}
	if st.Turn <= 0 {
		st.Turn = 1
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	g, err := build(st, opts)
	if err != nil {
		return nil, err
	}
	g.State.Pending = g.knownEvents(g.State.Pending)
	g.State.Deferred = g.knownEvents(g.State.Deferred)
	return g, nil
}

func build(st State, opts Options) (*Game, error) {
	triggers, err := compiledTriggers()
	if err != nil {
		return nil, err
	}
	return &Game{
		State:     st,
		actions:   indexActions(catalogActions()),
		upgrades:  indexUpgrades(catalogUpgrades()),
		events:    indexEvents(catalogEvents()),
		triggers:  triggers,
		clock:     opts.Clock,
		telemetry: opts.Telemetry,
	}, nil
}

func (g *Game) Balance() config.Balance { return g.State.Balance }

func (g *Game) rand() *rng.Source {
	if g.rnd == nil {
		g.rnd = rng.ForTurn(g.State.Seed, g.State.Turn)
	}
	return g.rnd
}

// logf appends a line to the in-game message log.
func (g *Game) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.State.Messages = append(g.State.Messages, msg)
	g.turnMessages = append(g.turnMessages, msg)
	if limit := g.State.Balance.MessageLogLimit; limit > 0 && len(g.State.Messages) > limit {
		g.State.Messages = append([]string(nil), g.State.Messages[len(g.State.Messages)-limit:]...)
	}
}

// reject logs a failed command for the player and returns err wrapped with context.
func (g *Game) reject(what string, err error) error {
	g.logf("Cannot %s: %v.", what, err)
	return fmt.Errorf("%s: %w", what, err)
}

func (g *Game) record(et telemetry.EventType, md telemetry.EventMetadata) {
	if g.telemetry == nil {
		return
	}
	if md == nil {
		md = telemetry.EventMetadata{}
	}
	md["game"] = g.State.ID
	md["turn"] = g.State.Turn
	_ = g.telemetry.RecordEvent(et, md)
}

func (g *Game) touch() {
	g.State.UpdatedAt = g.clock.Now()
}

// committed is the money already promised to selected actions.
func (g *Game) committed() int {
	total := 0
	for _, s := range g.State.Selected {
		total += s.Cost
	}
	return total
}

// Available is money not yet committed to selected actions.
func (g *Game) Available() int {
	return g.State.Money - g.committed()
}

func (g *Game) refreshActionPoints() {
	bal := g.State.Balance
	admins := g.State.Staff.Count(staff.RoleAdmin)
	g.State.MaxActionPoints = bal.BaseActionPoints + int(math.Floor(float64(admins)*bal.APPerAdmin))
	g.State.ActionPoints = g.State.MaxActionPoints
}

func (g *Game) addMoney(n int) {
	g.State.Money += n
	if g.State.Money < 0 {
		g.State.Money = 0
	}
}

func (g *Game) addDoom(n int) {
	g.State.Doom = clamp(g.State.Doom+n, 0, g.State.MaxDoom)
}

func (g *Game) addReputation(n int) {
	g.State.Reputation = clamp(g.State.Reputation+n, 0, 100)
}

func (g *Game) hire(role staff.Role) staff.Blob {
	return g.State.Staff.Hire(role, g.State.Turn)
}

func (g *Game) discover(o *opponent.Opponent, how string) {
	if o.Discover() {
		g.logf("Discovered %s (%s).", o.Name, how)
		g.record(telemetry.EventOpponentDiscovered, telemetry.EventMetadata{"opponent": o.ID, "how": how})
	}
}

func (g *Game) undiscovered() []int {
	var idx []int
	for i, o := range g.State.Opponents {
		if !o.Discovered {
			idx = append(idx, i)
		}
	}
	return idx
}

func (g *Game) discovered() []int {
	var idx []int
	for i, o := range g.State.Opponents {
		if o.Discovered {
			idx = append(idx, i)
		}
	}
	return idx
}

// env snapshots the state for trigger evaluation.
func (g *Game) env() trigger.Env {
	s := g.State
	maxProgress := 0.0
	for _, o := range s.Opponents {
		maxProgress = math.Max(maxProgress, o.Progress)
	}
	unmanaged := 0
	for _, b := range s.Staff.Blobs {
		if !b.IsManager() && !b.Managed {
			unmanaged++
		}
	}
	return trigger.Env{
		Turn:                  s.Turn,
		Money:                 s.Money,
		Reputation:            s.Reputation,
		Doom:                  s.Doom,
		Compute:               s.Compute,
		Research:              s.Research,
		Papers:                s.Papers,
		Staff:                 s.Staff.Len(),
		Researchers:           s.Staff.Count(staff.RoleResearcher),
		Admins:                s.Staff.Count(staff.RoleAdmin),
		Managers:              s.Staff.Count(staff.RoleManager),
		Unmanaged:             unmanaged,
		BoardMembers:          s.BoardMembers,
		AuditRisk:             s.AuditRisk,
		SpendThisTurn:         s.SpendThisTurn,
		OpponentMaxProgress:   maxProgress,
		UndiscoveredOpponents: len(g.undiscovered()),
		ManagerUnlockStaff:    s.Balance.ManagerUnlockStaff,
		BoardSpendThreshold:   s.Balance.BoardSpendThreshold,
		AuditThreshold:        s.Balance.AuditThreshold,
		Upgrades:              s.Upgrades,
		Milestones:            s.Milestones,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func scaled(n int, eff float64) int {
	return int(math.Round(float64(n) * eff))
}
