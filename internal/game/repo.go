package game

import "context"

// Repository holds live games by id.
type Repository interface {
	Create(ctx context.Context, g *Game) error
	// With runs fn while holding the game's lock.
	With(ctx context.Context, id string, fn func(g *Game) error) error
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// Summary is a lightweight listing entry.
type Summary struct {
	ID      string  `json:"id"`
	Seed    string  `json:"seed"`
	Turn    int     `json:"turn"`
	Doom    int     `json:"doom"`
	Money   int     `json:"money"`
	Over    bool    `json:"over"`
	Outcome Outcome `json:"outcome,omitempty"`
}

func (g *Game) Summary() Summary {
	s := g.State
	return Summary{ID: s.ID, Seed: s.Seed, Turn: s.Turn, Doom: s.Doom, Money: s.Money, Over: s.Over, Outcome: s.Outcome}
}
