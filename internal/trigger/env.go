package trigger

// Env is the snapshot a trigger expression is evaluated against. Fields and methods
// are visible to expressions by name, e.g. `Money < 60 && Roll < 0.25`.
type Env struct {
	Turn          int
	Money         int
	Reputation    int
	Doom          int
	Compute       int
	Research      int
	Papers        int
	Staff         int
	Researchers   int
	Admins        int
	Managers      int
	Unmanaged     int
	BoardMembers  int
	AuditRisk     int
	SpendThisTurn int

	OpponentMaxProgress   float64
	UndiscoveredOpponents int

	// Thresholds from balance so expressions do not hard-code numbers.
	ManagerUnlockStaff  int
	BoardSpendThreshold int
	AuditThreshold      int

	// Roll is a fresh uniform draw in [0, 1) for each evaluation.
	Roll float64

	Upgrades   map[string]bool
	Milestones map[string]bool
}

func (e Env) HasUpgrade(id string) bool { return e.Upgrades[id] }

func (e Env) Milestone(id string) bool { return e.Milestones[id] }
