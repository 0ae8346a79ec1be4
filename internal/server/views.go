package server

import (
	"pdoom/internal/game"
	"pdoom/internal/opponent"
	"pdoom/internal/staff"
)

// messageTail is how many log lines a game view carries.
const messageTail = 20

// GameView is what clients see of a game. Opponent stats the player has not
// scouted are omitted.
type GameView struct {
	ID              string             `json:"id"`
	Seed            string             `json:"seed"`
	Turn            int                `json:"turn"`
	Money           int                `json:"money"`
	Available       int                `json:"available"`
	Reputation      int                `json:"reputation"`
	Doom            int                `json:"doom"`
	MaxDoom         int                `json:"max_doom"`
	Compute         int                `json:"compute"`
	Research        int                `json:"research"`
	Papers          int                `json:"papers"`
	ActionPoints    int                `json:"action_points"`
	MaxActionPoints int                `json:"max_action_points"`
	Staff           StaffView          `json:"staff"`
	Opponents       []opponent.View    `json:"opponents"`
	Selected        []game.Selection   `json:"selected"`
	Actions         []game.ActionView  `json:"actions"`
	Upgrades        []game.UpgradeView `json:"upgrades"`
	Pending         []game.EventView   `json:"pending"`
	Deferred        []game.EventView   `json:"deferred"`
	Milestones      map[string]bool    `json:"milestones"`
	BoardMembers    int                `json:"board_members"`
	AuditRisk       int                `json:"audit_risk"`
	Messages        []string           `json:"messages"`
	Over            bool               `json:"over"`
	Outcome         game.Outcome       `json:"outcome,omitempty"`
	OutcomeText     string             `json:"outcome_text,omitempty"`
}

type StaffView struct {
	Total       int          `json:"total"`
	Generalists int          `json:"generalists"`
	Researchers int          `json:"researchers"`
	Admins      int          `json:"admins"`
	Managers    int          `json:"managers"`
	Blobs       []staff.Blob `json:"blobs"`
}

func ViewOf(g *game.Game) GameView {
	s := g.State
	v := GameView{
		ID:              s.ID,
		Seed:            s.Seed,
		Turn:            s.Turn,
		Money:           s.Money,
		Available:       g.Available(),
		Reputation:      s.Reputation,
		Doom:            s.Doom,
		MaxDoom:         s.MaxDoom,
		Compute:         s.Compute,
		Research:        s.Research,
		Papers:          s.Papers,
		ActionPoints:    s.ActionPoints,
		MaxActionPoints: s.MaxActionPoints,
		Staff: StaffView{
			Total:       s.Staff.Len(),
			Generalists: s.Staff.Count(staff.RoleGeneralist),
			Researchers: s.Staff.Count(staff.RoleResearcher),
			Admins:      s.Staff.Count(staff.RoleAdmin),
			Managers:    s.Staff.Count(staff.RoleManager),
			Blobs:       append([]staff.Blob(nil), s.Staff.Blobs...),
		},
		Selected:     append([]game.Selection{}, s.Selected...),
		Actions:      g.Actions(),
		Upgrades:     g.Upgrades(),
		Pending:      g.PendingEvents(),
		Deferred:     g.DeferredEvents(),
		Milestones:   s.Milestones,
		BoardMembers: s.BoardMembers,
		AuditRisk:    s.AuditRisk,
		Over:         s.Over,
		Outcome:      s.Outcome,
		OutcomeText:  s.Outcome.Describe(),
	}
	for _, o := range s.Opponents {
		v.Opponents = append(v.Opponents, o.View())
	}
	msgs := s.Messages
	if len(msgs) > messageTail {
		msgs = msgs[len(msgs)-messageTail:]
	}
	v.Messages = append([]string{}, msgs...)
	return v
}
