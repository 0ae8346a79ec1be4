package game

import (
	"time"

	"pdoom/internal/config"
	"pdoom/internal/opponent"
	"pdoom/internal/staff"
)

type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeDoom        Outcome = "doom"
	OutcomeOpponentAGI Outcome = "opponent_agi"
	OutcomeNoStaff     Outcome = "no_staff"
	OutcomeReputation  Outcome = "reputation"
	OutcomeAligned     Outcome = "aligned"
	OutcomeSurvived    Outcome = "survived"
)

func (o Outcome) Won() bool {
	return o == OutcomeAligned || o == OutcomeSurvived
}

func (o Outcome) Describe() string {
	switch o {
	case OutcomeDoom:
		return "p(Doom) reached its maximum. Misaligned AI has taken over."
	case OutcomeOpponentAGI:
		return "A rival lab deployed unaligned AGI first."
	case OutcomeNoStaff:
		return "Everyone has left the lab."
	case OutcomeReputation:
		return "The lab's reputation collapsed and nobody will work with you."
	case OutcomeAligned:
		return "p(Doom) reached zero. Humanity is safe, for now."
	case OutcomeSurvived:
		return "You kept the world intact until the end of the run."
	default:
		return ""
	}
}

// Selection is an action queued for this turn. AP is already spent; money is paid
// when the turn resolves.
type Selection struct {
	ActionID  string `json:"action_id"`
	Delegated bool   `json:"delegated"`
	APCost    int    `json:"ap_cost"`
	Cost      int    `json:"cost"`
}

// EventInstance is a popup event waiting for a decision.
type EventInstance struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Turn      int    `json:"turn"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// State is the serialisable part of a game. Everything else is derived from code.
type State struct {
	ID   string `json:"id"`
	Seed string `json:"seed"`
	Turn int    `json:"turn"`

	Money           int `json:"money"`
	Reputation      int `json:"reputation"`
	Doom            int `json:"doom"`
	MaxDoom         int `json:"max_doom"`
	Compute         int `json:"compute"`
	Research        int `json:"research"`
	Papers          int `json:"papers"`
	ActionPoints    int `json:"action_points"`
	MaxActionPoints int `json:"max_action_points"`

	Staff     staff.Roster        `json:"staff"`
	Opponents []opponent.Opponent `json:"opponents"`
	Selected  []Selection         `json:"selected"`
	Upgrades  map[string]bool     `json:"upgrades"`

	Pending    []EventInstance `json:"pending"`
	Deferred   []EventInstance `json:"deferred"`
	Milestones map[string]bool `json:"milestones"`
	LastFired  map[string]int  `json:"last_fired"`

	BoardMembers  int `json:"board_members"`
	AuditRisk     int `json:"audit_risk"`
	SpendThisTurn int `json:"spend_this_turn"`

	Messages []string `json:"messages"`
	Over     bool     `json:"over"`
	Outcome  Outcome  `json:"outcome,omitempty"`

	Balance   config.Balance `json:"balance"`
	StartedAt time.Time      `json:"started_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TurnsSurvived is the number of fully resolved turns.
func (s State) TurnsSurvived() int {
	if s.Turn <= 1 {
		return 0
	}
	return s.Turn - 1
}

// TurnReport summarises one call to EndTurn.
type TurnReport struct {
	GameID          string          `json:"game_id"`
	Turn            int             `json:"turn"`
	MoneyDelta      int             `json:"money_delta"`
	DoomDelta       int             `json:"doom_delta"`
	ReputationDelta int             `json:"reputation_delta"`
	ResearchGained  int             `json:"research_gained"`
	PapersPublished int             `json:"papers_published"`
	Maintenance     int             `json:"maintenance"`
	StaffLost       int             `json:"staff_lost"`
	ComputeUsed     int             `json:"compute_used"`
	Unmanaged       int             `json:"unmanaged"`
	ActionsResolved []string        `json:"actions_resolved"`
	EventsFired     []string        `json:"events_fired"`
	Pending         []EventInstance `json:"pending"`
	Messages        []string        `json:"messages"`
	Over            bool            `json:"over"`
	Outcome         Outcome         `json:"outcome,omitempty"`
}
