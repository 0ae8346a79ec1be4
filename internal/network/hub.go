// Package network streams game updates to websocket subscribers.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"pdoom/internal/httpmw"
)

const (
	MsgTurnEnded   = "turn_ended"
	MsgStateChange = "state_changed"
	MsgGameOver    = "game_over"
)

var ErrHubBusy = errors.New("network: broadcast queue full")

// Message is the envelope written to subscribers.
type Message struct {
	Type      string `json:"type"`
	GameID    string `json:"game_id"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload,omitempty"`
}

type outbound struct {
	gameID string
	data   []byte
}

// Hub keeps subscribers grouped by game and fans messages out to them.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *log.Logger
	now        func() time.Time
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run handles registration and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			room := h.rooms[c.gameID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[c.gameID] = room
			}
			room[c] = true
			h.mu.Unlock()
			httpmw.Log(h.logger, "info", "ws_connected", map[string]any{"game_id": c.gameID})
		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()
		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.gameID] {
				select {
				case c.send <- m.data:
				default:
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(c *Client) {
	room := h.rooms[c.gameID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.gameID)
	}
	httpmw.Log(h.logger, "info", "ws_disconnected", map[string]any{"game_id": c.gameID})
}

// Publish queues a message for every subscriber of gameID. It never blocks.
func (h *Hub) Publish(gameID, msgType string, payload any) error {
	data, err := json.Marshal(Message{
		Type:      msgType,
		GameID:    gameID,
		Timestamp: h.now().Unix(),
		Payload:   payload,
	})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{gameID: gameID, data: data}:
		return nil
	default:
		return ErrHubBusy
	}
}

// Subscribers reports how many clients watch gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[gameID])
}
