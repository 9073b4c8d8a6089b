package domain

import (
	"golang.org/x/text/cases"
)

// Participant is a connected player who has joined the room
type Participant struct {
	ID    string `json:"connectionId"`
	Name  string `json:"displayName"`
	Role  Role   `json:"role"`
	Alive bool   `json:"alive"`
}

// NewParticipant creates a civilian participant for the given connection
func NewParticipant(id, name string) *Participant {
	return &Participant{
		ID:    id,
		Name:  name,
		Role:  RoleCivilian,
		Alive: true,
	}
}

// ResetForNewRound clears per-round state
func (p *Participant) ResetForNewRound() {
	p.Role = RoleCivilian
	p.Alive = true
}

// NameKey applies full Unicode case folding ("ß" folds to "ss") so that
// names differing only in case compare equal.
func NameKey(name string) string {
	return cases.Fold().String(name)
}

// PlayerInfo is the public view of a participant. It never carries the role,
// so roster broadcasts during a round cannot reveal the impostor.
type PlayerInfo struct {
	ID    string `json:"connectionId"`
	Name  string `json:"displayName"`
	Alive bool   `json:"alive"`
}

// ToInfo converts a Participant to PlayerInfo (without role)
func (p *Participant) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:    p.ID,
		Name:  p.Name,
		Alive: p.Alive,
	}
}
