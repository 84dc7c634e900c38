package server

import (
	"github.com/lox/holdemtable/internal/game"
)

// EventKind names something that happened at a table
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventHandStarted  EventKind = "hand_started"
	EventAction       EventKind = "action"
	EventTurnTimeout  EventKind = "turn_timeout"
	EventHandFinished EventKind = "hand_finished"
	EventHandAborted  EventKind = "hand_aborted"
	EventHandReset    EventKind = "hand_reset"
)

// Event is published by a runner after every change. State is the public
// view; no hole cards are included before showdown.
type Event struct {
	TableID    string         `json:"tableId"`
	TableName  string         `json:"tableName"`
	Kind       EventKind      `json:"kind"`
	HandNumber int            `json:"handNumber"`
	PlayerID   string         `json:"playerId,omitempty"`
	Action     string         `json:"action,omitempty"`
	Amount     int            `json:"amount,omitempty"`
	State      game.State     `json:"state"`
	Showdown   *game.Showdown `json:"showdown,omitempty"`
	Err        error          `json:"-"`
}

// EventHandler receives events on the runner goroutine. It must not call
// back into the runner.
type EventHandler func(Event)
