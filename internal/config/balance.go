package config

// Balance holds gameplay balance configuration. Money is in thousands of dollars.
type Balance struct {
	// Starting position
	StartingMoney      int `yaml:"starting_money" json:"starting_money"`
	StartingStaff      int `yaml:"starting_staff" json:"starting_staff"`
	StartingReputation int `yaml:"starting_reputation" json:"starting_reputation"`
	StartingDoom       int `yaml:"starting_doom" json:"starting_doom"`
	StartingCompute    int `yaml:"starting_compute" json:"starting_compute"`
	MaxDoom            int `yaml:"max_doom" json:"max_doom"`

	// Action points
	BaseActionPoints int     `yaml:"base_action_points" json:"base_action_points"`
	APPerAdmin       float64 `yaml:"ap_per_admin" json:"ap_per_admin"`

	// Upkeep
	StaffMaintenance   int `yaml:"staff_maintenance" json:"staff_maintenance"`
	ManagerMaintenance int `yaml:"manager_maintenance" json:"manager_maintenance"`

	// Research output
	ResearchPerEmployee   int `yaml:"research_per_employee" json:"research_per_employee"`
	ResearchPerResearcher int `yaml:"research_per_researcher" json:"research_per_researcher"`
	ResearchPerPaper      int `yaml:"research_per_paper" json:"research_per_paper"`
	PaperReputation       int `yaml:"paper_reputation" json:"paper_reputation"`
	PaperDoomReduction    int `yaml:"paper_doom_reduction" json:"paper_doom_reduction"`

	// Doom pressure
	BaseDoomPerTurn         int     `yaml:"base_doom_per_turn" json:"base_doom_per_turn"`
	DoomPerOpponentProgress float64 `yaml:"doom_per_opponent_progress" json:"doom_per_opponent_progress"`
	OpponentHireCost        int     `yaml:"opponent_hire_cost" json:"opponent_hire_cost"`
	OpponentComputeCost     int     `yaml:"opponent_compute_cost" json:"opponent_compute_cost"`

	// Management
	ManagerSpan        int `yaml:"manager_span" json:"manager_span"`
	FoundingSpan       int `yaml:"founding_span" json:"founding_span"`
	ManagerUnlockStaff int `yaml:"manager_unlock_staff" json:"manager_unlock_staff"`

	// Board oversight
	BoardSpendThreshold int `yaml:"board_spend_threshold" json:"board_spend_threshold"`
	BoardSeats          int `yaml:"board_seats" json:"board_seats"`
	AuditThreshold      int `yaml:"audit_threshold" json:"audit_threshold"`
	AuditFine           int `yaml:"audit_fine" json:"audit_fine"`
	AuditReputationHit  int `yaml:"audit_reputation_hit" json:"audit_reputation_hit"`

	// Events and session
	MaxRandomEventsPerTurn int `yaml:"max_random_events_per_turn" json:"max_random_events_per_turn"`
	DeferTurns             int `yaml:"defer_turns" json:"defer_turns"`
	MaxTurns               int `yaml:"max_turns" json:"max_turns"`
	MessageLogLimit        int `yaml:"message_log_limit" json:"message_log_limit"`
}

// Default returns the default balance configuration
func Default() Balance {
	return Balance{
		StartingMoney:           100,
		StartingStaff:           2,
		StartingReputation:      20,
		StartingDoom:            25,
		StartingCompute:         10,
		MaxDoom:                 100,
		BaseActionPoints:        3,
		APPerAdmin:              0.5,
		StaffMaintenance:        15,
		ManagerMaintenance:      25,
		ResearchPerEmployee:     3,
		ResearchPerResearcher:   6,
		ResearchPerPaper:        100,
		PaperReputation:         2,
		PaperDoomReduction:      1,
		BaseDoomPerTurn:         1,
		DoomPerOpponentProgress: 0.25,
		OpponentHireCost:        50,
		OpponentComputeCost:     30,
		ManagerSpan:             9,
		FoundingSpan:            9,
		ManagerUnlockStaff:      9,
		BoardSpendThreshold:     150,
		BoardSeats:              2,
		AuditThreshold:          3,
		AuditFine:               50,
		AuditReputationHit:      5,
		MaxRandomEventsPerTurn:  1,
		DeferTurns:              3,
		MaxTurns:                0,
		MessageLogLimit:         200,
	}
}

// Casual returns easier balance for casual difficulty
func Casual() Balance {
	cfg := Default()
	cfg.StartingMoney = 150
	cfg.StartingDoom = 20
	cfg.StaffMaintenance = 12
	cfg.DoomPerOpponentProgress = 0.15
	cfg.BoardSpendThreshold = 200
	return cfg
}

// Hard returns harder balance for experienced players
func Hard() Balance {
	cfg := Default()
	cfg.StartingMoney = 80
	cfg.StartingDoom = 35
	cfg.StaffMaintenance = 18
	cfg.DoomPerOpponentProgress = 0.35
	cfg.BoardSpendThreshold = 120
	cfg.AuditThreshold = 2
	return cfg
}

// Preset resolves a difficulty name. Unknown names yield the default balance.
func Preset(name string) Balance {
	switch name {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	default:
		return Default()
	}
}

// ApplyDefaults fills zero-valued fields from the default balance. Fields where zero is a
// meaningful setting (MaxTurns, StartingCompute, MaxRandomEventsPerTurn) are left alone.
func (b *Balance) ApplyDefaults() {
	d := Default()
	fillInt(&b.StartingMoney, d.StartingMoney)
	fillInt(&b.StartingStaff, d.StartingStaff)
	fillInt(&b.StartingReputation, d.StartingReputation)
	fillInt(&b.StartingDoom, d.StartingDoom)
	fillInt(&b.MaxDoom, d.MaxDoom)
	fillInt(&b.BaseActionPoints, d.BaseActionPoints)
	if b.APPerAdmin == 0 {
		b.APPerAdmin = d.APPerAdmin
	}
	fillInt(&b.StaffMaintenance, d.StaffMaintenance)
	fillInt(&b.ManagerMaintenance, d.ManagerMaintenance)
	fillInt(&b.ResearchPerEmployee, d.ResearchPerEmployee)
	fillInt(&b.ResearchPerResearcher, d.ResearchPerResearcher)
	fillInt(&b.ResearchPerPaper, d.ResearchPerPaper)
	fillInt(&b.PaperReputation, d.PaperReputation)
	fillInt(&b.PaperDoomReduction, d.PaperDoomReduction)
	fillInt(&b.BaseDoomPerTurn, d.BaseDoomPerTurn)
	if b.DoomPerOpponentProgress == 0 {
		b.DoomPerOpponentProgress = d.DoomPerOpponentProgress
	}
	fillInt(&b.OpponentHireCost, d.OpponentHireCost)
	fillInt(&b.OpponentComputeCost, d.OpponentComputeCost)
	fillInt(&b.ManagerSpan, d.ManagerSpan)
	fillInt(&b.FoundingSpan, d.FoundingSpan)
	fillInt(&b.ManagerUnlockStaff, d.ManagerUnlockStaff)
	fillInt(&b.BoardSpendThreshold, d.BoardSpendThreshold)
	fillInt(&b.BoardSeats, d.BoardSeats)
	fillInt(&b.AuditThreshold, d.AuditThreshold)
	fillInt(&b.AuditFine, d.AuditFine)
	fillInt(&b.AuditReputationHit, d.AuditReputationHit)
	if b.MaxRandomEventsPerTurn < 0 {
		b.MaxRandomEventsPerTurn = 0
	}
	fillInt(&b.DeferTurns, d.DeferTurns)
	fillInt(&b.MessageLogLimit, d.MessageLogLimit)
}

func fillInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
