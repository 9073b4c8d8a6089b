package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MessageType represents the type of an inbound WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoin        MessageType = "join"
	MsgStartGame   MessageType = "startGame"
	MsgStartVoting MessageType = "startVoting"
	MsgVote        MessageType = "vote"
	MsgRestart     MessageType = "restartGame"
	MsgPing        MessageType = "ping"
)

// ErrInvalidMessage is returned for payloads that cannot be turned into a command
var ErrInvalidMessage = errors.New("invalid message")

// Error codes owned by the transport
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

// ClientMessage is the envelope of every message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command is one of the inbound actions below
type Command interface {
	command()
}

// JoinCommand asks to enter the lobby under a display name
type JoinCommand struct {
	Name string `json:"name"`
}

// StartGameCommand deals a new round
type StartGameCommand struct{}

// StartVotingCommand opens the vote
type StartVotingCommand struct{}

// VoteCommand picks a suspect
type VoteCommand struct {
	TargetID string `json:"targetId"`
}

// RestartCommand returns the room to the lobby
type RestartCommand struct{}

// PingCommand asks for a pong
type PingCommand struct{}

func (JoinCommand) command()        {}
func (StartGameCommand) command()   {}
func (StartVotingCommand) command() {}
func (VoteCommand) command()        {}
func (RestartCommand) command()     {}
func (PingCommand) command()        {}

// ParseCommand decodes and validates an inbound message
func ParseCommand(data []byte, maxNameLength int) (Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope", ErrInvalidMessage)
	}

	switch msg.Type {
	case MsgJoin:
		var cmd JoinCommand
		if err := decodePayload(msg.Payload, &cmd); err != nil {
			return nil, err
		}
		cmd.Name = strings.TrimSpace(cmd.Name)
		if cmd.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidMessage)
		}
		if maxNameLength > 0 && utf8.RuneCountInString(cmd.Name) > maxNameLength {
			return nil, fmt.Errorf("%w: name is longer than %d characters", ErrInvalidMessage, maxNameLength)
		}
		return cmd, nil
	case MsgVote:
		var cmd VoteCommand
		if err := decodePayload(msg.Payload, &cmd); err != nil {
			return nil, err
		}
		if cmd.TargetID == "" {
			return nil, fmt.Errorf("%w: targetId is required", ErrInvalidMessage)
		}
		return cmd, nil
	case MsgStartGame:
		return StartGameCommand{}, nil
	case MsgStartVoting:
		return StartVotingCommand{}, nil
	case MsgRestart:
		return RestartCommand{}, nil
	case MsgPing:
		return PingCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrInvalidMessage, msg.Type)
	}
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload is required", ErrInvalidMessage)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: invalid payload", ErrInvalidMessage)
	}
	return nil
}
