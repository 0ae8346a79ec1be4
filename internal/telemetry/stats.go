package telemetry

import (
	"encoding/json"
	"time"
)

// Stats aggregates balance signals across every recorded game.
type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	GamesStarted     int               `json:"games_started"`
	GamesFinished    int               `json:"games_finished"`
	Wins             int               `json:"wins"`
	TurnsEnded       int               `json:"turns_ended"`
	AvgTurnsPerGame  float64           `json:"avg_turns_per_game"`
	PapersPerTurn    float64           `json:"papers_per_turn"`
	PapersPublished  int               `json:"papers_published"`
	StaffQuit        int               `json:"staff_quit"`
	ActionUsage      map[string]int    `json:"action_usage"`
	DelegatedActions int               `json:"delegated_actions"`
	EventsFired      map[string]int    `json:"events_fired"`
	Outcomes         map[string]int    `json:"outcomes"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
		ActionUsage: make(map[string]int),
		EventsFired: make(map[string]int),
		Outcomes:    make(map[string]int),
	}

	turnsInFinished := 0
	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventGameStarted:
			stats.GamesStarted++
		case EventTurnEnded:
			stats.TurnsEnded++
		case EventPaperPublished:
			stats.PapersPublished++
		case EventStaffQuit:
			if n, ok := metadata["count"].(float64); ok {
				stats.StaffQuit += int(n)
			}
		case EventActionResolved:
			if id, ok := metadata["action"].(string); ok {
				stats.ActionUsage[id]++
			}
			if d, ok := metadata["delegated"].(bool); ok && d {
				stats.DelegatedActions++
			}
		case EventEventFired:
			if id, ok := metadata["event"].(string); ok {
				stats.EventsFired[id]++
			}
		case EventGameOver:
			stats.GamesFinished++
			if o, ok := metadata["outcome"].(string); ok {
				stats.Outcomes[o]++
			}
			if w, ok := metadata["won"].(bool); ok && w {
				stats.Wins++
			}
			if n, ok := metadata["turns"].(float64); ok {
				turnsInFinished += int(n)
			}
		}
	}

	if stats.GamesFinished > 0 {
		stats.AvgTurnsPerGame = float64(turnsInFinished) / float64(stats.GamesFinished)
	}
	if stats.TurnsEnded > 0 {
		stats.PapersPerTurn = float64(stats.PapersPublished) / float64(stats.TurnsEnded)
	}
	return stats, nil
}
