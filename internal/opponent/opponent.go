package opponent

import "math"

type Stat string

const (
	StatBudget      Stat = "budget"
	StatResearchers Stat = "researchers"
	StatLobbyists   Stat = "lobbyists"
	StatCompute     Stat = "compute"
	StatProgress    Stat = "progress"
)

// Stats lists every stat in reveal order.
var Stats = []Stat{StatBudget, StatResearchers, StatLobbyists, StatCompute, StatProgress}

// Opponent is a rival lab racing towards AGI.
type Opponent struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Budget      int     `json:"budget"`
	Income      int     `json:"income"`
	Aggression  float64 `json:"aggression"`
	Researchers int     `json:"researchers"`
	Lobbyists   int     `json:"lobbyists"`
	Compute     int     `json:"compute"`
	Progress    float64 `json:"progress"`

	Discovered bool          `json:"discovered"`
	Known      map[Stat]bool `json:"known,omitempty"`
}

// Rand is the randomness an opponent needs to take its turn.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type Costs struct {
	Hire    int
	Compute int
}

func (o *Opponent) Discover() bool {
	if o.Discovered {
		return false
	}
	o.Discovered = true
	return true
}

// RevealStat reveals the first unknown stat. It returns the stat and false when every
// stat is already known.
func (o *Opponent) RevealStat() (Stat, bool) {
	if o.Known == nil {
		o.Known = map[Stat]bool{}
	}
	for _, s := range Stats {
		if !o.Known[s] {
			o.Known[s] = true
			return s, true
		}
	}
	return "", false
}

func (o *Opponent) RevealAll() {
	if o.Known == nil {
		o.Known = map[Stat]bool{}
	}
	for _, s := range Stats {
		o.Known[s] = true
	}
}

func (o Opponent) FullyKnown() bool {
	for _, s := range Stats {
		if !o.Known[s] {
			return false
		}
	}
	return true
}

// Step runs the lab's turn: collect income, spend on researchers and compute, then
// advance progress. It returns the progress gained.
func (o *Opponent) Step(r Rand, c Costs) float64 {
	o.Budget += o.Income + o.Lobbyists*5

	if c.Hire > 0 && o.Budget >= c.Hire && r.Float64() < o.Aggression {
		o.Researchers++
		o.Budget -= c.Hire
	}
	if c.Compute > 0 && o.Budget >= c.Compute && r.Float64() < 0.5 {
		o.Compute += 10
		o.Budget -= c.Compute
	}
	if o.Budget >= 2*c.Hire && r.IntN(10) == 0 {
		o.Lobbyists++
		o.Budget -= c.Hire
	}

	gain := (float64(o.Researchers)*0.15 + float64(o.Compute)*0.01) * (0.5 + r.Float64())
	before := o.Progress
	o.Progress = math.Min(100, o.Progress+gain)
	return o.Progress - before
}

// View is what the player is allowed to see of an opponent. Unknown stats are nil.
type View struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Discovered  bool     `json:"discovered"`
	Description string   `json:"description,omitempty"`
	Budget      *int     `json:"budget,omitempty"`
	Researchers *int     `json:"researchers,omitempty"`
	Lobbyists   *int     `json:"lobbyists,omitempty"`
	Compute     *int     `json:"compute,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
}

func (o Opponent) View() View {
	v := View{ID: o.ID, Discovered: o.Discovered, Name: "Unknown lab"}
	if !o.Discovered {
		return v
	}
	v.Name = o.Name
	v.Description = o.Description
	if o.Known[StatBudget] {
		b := o.Budget
		v.Budget = &b
	}
	if o.Known[StatResearchers] {
		n := o.Researchers
		v.Researchers = &n
	}
	if o.Known[StatLobbyists] {
		n := o.Lobbyists
		v.Lobbyists = &n
	}
	if o.Known[StatCompute] {
		n := o.Compute
		v.Compute = &n
	}
	if o.Known[StatProgress] {
		p := math.Round(o.Progress*10) / 10
		v.Progress = &p
	}
	return v
}

// Defaults returns the starting rival labs. Only the first is public knowledge.
func Defaults() []Opponent {
	return []Opponent{
		{
			ID:          "techcorp",
			Name:        "TechCorp Labs",
			Description: "Well-funded frontier lab shipping products every quarter.",
			Budget:      500,
			Income:      40,
			Aggression:  0.6,
			Researchers: 12,
			Lobbyists:   2,
			Compute:     60,
			Discovered:  true,
		},
		{
			ID:          "national_initiative",
			Name:        "National AI Initiative",
			Description: "State-backed program with deep pockets and little oversight.",
			Budget:      800,
			Income:      30,
			Aggression:  0.4,
			Researchers: 8,
			Lobbyists:   4,
			Compute:     80,
		},
		{
			ID:          "stealth_startup",
			Name:        "Stealth Startup",
			Description: "Small team moving fast and breaking things.",
			Budget:      150,
			Income:      25,
			Aggression:  0.8,
			Researchers: 5,
			Lobbyists:   0,
			Compute:     20,
		},
	}
}
