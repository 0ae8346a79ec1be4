package telemetry

import "time"

type EventType string

const (
	EventGameStarted        EventType = "game_started"
	EventActionSelected     EventType = "action_selected"
	EventActionResolved     EventType = "action_resolved"
	EventUpgradePurchased   EventType = "upgrade_purchased"
	EventTurnEnded          EventType = "turn_ended"
	EventEventFired         EventType = "event_fired"
	EventEventResolved      EventType = "event_resolved"
	EventMilestoneReached   EventType = "milestone_reached"
	EventOpponentDiscovered EventType = "opponent_discovered"
	EventPaperPublished     EventType = "paper_published"
	EventStaffQuit          EventType = "staff_quit"
	EventGameOver           EventType = "game_over"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
