package score

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"pdoom/internal/game"
)

// Entry is one finished run.
type Entry struct {
	ID            string       `json:"id"`
	Player        string       `json:"player"`
	Seed          string       `json:"seed"`
	TurnsSurvived int          `json:"turns_survived"`
	FinalDoom     int          `json:"final_doom"`
	Money         int          `json:"money"`
	Reputation    int          `json:"reputation"`
	Staff         int          `json:"staff"`
	Papers        int          `json:"papers"`
	Outcome       game.Outcome `json:"outcome"`
	Won           bool         `json:"won"`
	PlayedAt      time.Time    `json:"played_at"`
}

// FromGame builds an entry from a finished (or abandoned) run.
func FromGame(g *game.Game, player string, at time.Time) Entry {
	s := g.State
	return Entry{
		ID:            uuid.NewString(),
		Player:        player,
		Seed:          s.Seed,
		TurnsSurvived: s.TurnsSurvived(),
		FinalDoom:     s.Doom,
		Money:         s.Money,
		Reputation:    s.Reputation,
		Staff:         s.Staff.Len(),
		Papers:        s.Papers,
		Outcome:       s.Outcome,
		Won:           s.Outcome.Won(),
		PlayedAt:      at.UTC(),
	}
}

// Better reports whether a ranks above b: more turns, then wins, then lower doom.
// Ties go to the earlier run.
func Better(a, b Entry) bool {
	if a.TurnsSurvived != b.TurnsSurvived {
		return a.TurnsSurvived > b.TurnsSurvived
	}
	if a.Won != b.Won {
		return a.Won
	}
	if a.FinalDoom != b.FinalDoom {
		return a.FinalDoom < b.FinalDoom
	}
	return a.PlayedAt.Before(b.PlayedAt)
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return Better(entries[i], entries[j]) })
}

func top(entries []Entry, seed string, n int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seed == "" || e.Seed == seed {
			out = append(out, e)
		}
	}
	sortEntries(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
