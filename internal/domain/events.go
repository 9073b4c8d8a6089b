package domain

import "time"

// EventType represents the type of outbound notification
type EventType string

const (
	EventJoinedSuccess EventType = "joinedSuccess"
	EventUpdatePlayers EventType = "updatePlayers"
	EventGameStarted   EventType = "gameStarted"
	EventStateChange   EventType = "stateChange"
	EventGameOver      EventType = "gameOver"
	EventResetToLobby  EventType = "resetToLobby"
	EventSnapshot      EventType = "snapshot"
	EventError         EventType = "error"
	EventPong          EventType = "pong"
)

// Event is a notification sent to one participant or broadcast to all
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a new event
func NewEvent(eventType EventType, payload any) *Event {
	return &Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// UpdatePlayersPayload carries the roster in join order
type UpdatePlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

// GameStartedPayload is sent to each participant with their role. Word is
// MaskedWord for the impostor.
type GameStartedPayload struct {
	Role Role   `json:"role"`
	Word string `json:"word"`
}

// StateChangePayload is broadcast on every phase change
type StateChangePayload struct {
	Phase Phase `json:"phase"`
}

// GameOverPayload announces the outcome of a round
type GameOverPayload struct {
	Winner  Faction `json:"winner"`
	Message string  `json:"message"`
}

// SnapshotPayload is sent to a connection when it opens
type SnapshotPayload struct {
	ConnectionID string       `json:"connectionId"`
	Phase        Phase        `json:"phase"`
	Players      []PlayerInfo `json:"players"`
	Role         Role         `json:"role,omitempty"`
	Word         string       `json:"word,omitempty"`
	VotedCount   int          `json:"votedCount"`
}

// ErrorPayload is sent when an action is rejected
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
