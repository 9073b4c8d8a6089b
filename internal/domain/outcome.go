package domain

import "time"

// Outcome is the resolution of one vote round
type Outcome struct {
	Winner         Faction      `json:"winner"`
	Message        string       `json:"message"`
	ImpostorID     string       `json:"impostorId"`
	ImpostorName   string       `json:"impostorName"`
	EliminatedID   string       `json:"eliminatedId"`
	EliminatedName string       `json:"eliminatedName"`
	SecretWord     string       `json:"secretWord"`
	Tally          []TallyEntry `json:"tally"`
	ResolvedAt     time.Time    `json:"resolvedAt"`
}

// GameOver returns the broadcast payload for this outcome
func (o *Outcome) GameOver() *GameOverPayload {
	return &GameOverPayload{
		Winner:  o.Winner,
		Message: o.Message,
	}
}
