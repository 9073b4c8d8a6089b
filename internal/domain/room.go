package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinPlayers is the smallest roster a round can be dealt to
	MinPlayers = 3

	// MaskedWord is what the impostor receives in place of the secret word
	MaskedWord = "???"

	// Placeholders used when a participant left before the round resolved
	DisconnectedName = "disconnected"
	NobodyName       = "no one"
)

// Rand is the source of randomness used to deal a round
type Rand interface {
	IntN(n int) int
}

// Room is the single shared game instance. It is not safe for concurrent use;
// callers serialize access.
type Room struct {
	Phase      Phase
	SecretWord string
	ImpostorID string

	roster []*Participant
	ballot *Ballot
}

// NewRoom creates an empty room in the lobby
func NewRoom() *Room {
	return &Room{
		Phase:  PhaseLobby,
		roster: make([]*Participant, 0),
		ballot: NewBallot(),
	}
}

// Join adds a participant to the lobby
func (r *Room) Join(id, name string) (*Participant, error) {
	if r.Phase != PhaseLobby {
		return nil, ErrRoundInProgress
	}

	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	key := NameKey(name)
	for _, p := range r.roster {
		if p.ID == id {
			return nil, ErrAlreadyJoined
		}
		if NameKey(p.Name) == key {
			return nil, ErrDuplicateName
		}
	}

	participant := NewParticipant(id, name)
	r.roster = append(r.roster, participant)

	return participant, nil
}

// Leave removes a participant. An empty room falls back to the lobby.
func (r *Room) Leave(id string) bool {
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}

	r.roster = append(r.roster[:idx], r.roster[idx+1:]...)
	r.ballot.Remove(id)

	if len(r.roster) == 0 {
		r.Phase = PhaseLobby
		r.ballot.Clear()
		r.ImpostorID = ""
		r.SecretWord = ""
	}

	return true
}

// StartRound deals roles and picks the secret word. It returns false and
// leaves the room untouched when there are not enough participants.
func (r *Room) StartRound(rng Rand, words []string) bool {
	if len(r.roster) < MinPlayers || len(words) == 0 {
		return false
	}

	impostorIdx := rng.IntN(len(r.roster))
	r.SecretWord = words[rng.IntN(len(words))]
	r.ImpostorID = r.roster[impostorIdx].ID

	for i, p := range r.roster {
		p.ResetForNewRound()
		if i == impostorIdx {
			p.Role = RoleImpostor
		}
	}

	r.ballot.Clear()
	r.Phase = PhasePlaying

	return true
}

// WordFor returns the word shown to a participant: the masked sentinel for
// the impostor, the secret word for everyone else.
func (r *Room) WordFor(p *Participant) string {
	if p.Role.IsImpostor() {
		return MaskedWord
	}
	return r.SecretWord
}

// StartVoting opens the vote. There is no guard on the current phase.
func (r *Room) StartVoting() {
	r.Phase = PhaseVoting
}

// CastVote records a vote. Votes outside VOTING or from connections that are
// not in the roster are ignored. The returned value reports whether the vote
// was recorded.
func (r *Room) CastVote(voterID, targetID string) bool {
	if r.Phase != PhaseVoting {
		return false
	}
	if r.indexOf(voterID) < 0 {
		return false
	}

	r.ballot.Cast(voterID, targetID)
	return true
}

// QuorumReached reports whether every participant still in the room has voted
func (r *Room) QuorumReached() bool {
	return r.Phase == PhaseVoting && len(r.roster) > 0 && r.ballot.Len() >= len(r.roster)
}

// VotedCount returns the number of distinct voters this round
func (r *Room) VotedCount() int {
	return r.ballot.Len()
}

// Resolve tallies the ballot, decides the winner and moves to RESULT
func (r *Room) Resolve() (*Outcome, bool) {
	if r.Phase != PhaseVoting {
		return nil, false
	}

	eliminatedID, tally := r.ballot.Tally()

	impostorName := DisconnectedName
	if p := r.Participant(r.ImpostorID); p != nil {
		impostorName = p.Name
	}

	eliminatedName := NobodyName
	if p := r.Participant(eliminatedID); p != nil {
		eliminatedName = p.Name
		p.Alive = false
	}

	outcome := &Outcome{
		ImpostorID:     r.ImpostorID,
		ImpostorName:   impostorName,
		EliminatedID:   eliminatedID,
		EliminatedName: eliminatedName,
		SecretWord:     r.SecretWord,
		Tally:          tally,
		ResolvedAt:     time.Now(),
	}

	if eliminatedID != "" && eliminatedID == r.ImpostorID {
		outcome.Winner = FactionCivilians
		outcome.Message = fmt.Sprintf("Nice one! You caught %s.", impostorName)
	} else {
		outcome.Winner = FactionImpostor
		outcome.Message = fmt.Sprintf("They got away! You eliminated %s. The impostor was %s.", eliminatedName, impostorName)
	}

	r.Phase = PhaseResult

	return outcome, true
}

// Reset returns the room to the lobby, keeping everyone who is connected
func (r *Room) Reset() {
	r.Phase = PhaseLobby
	r.ballot.Clear()
	r.ImpostorID = ""
	r.SecretWord = ""

	for _, p := range r.roster {
		p.ResetForNewRound()
	}
}

// Participant returns the participant with the given connection ID, or nil
func (r *Room) Participant(id string) *Participant {
	if idx := r.indexOf(id); idx >= 0 {
		return r.roster[idx]
	}
	return nil
}

// Size returns the number of participants
func (r *Room) Size() int {
	return len(r.roster)
}

// Roster returns a copy of the participants in join order
func (r *Room) Roster() []Participant {
	out := make([]Participant, 0, len(r.roster))
	for _, p := range r.roster {
		out = append(out, *p)
	}
	return out
}

// PlayerInfoList returns the public view of the roster in join order
func (r *Room) PlayerInfoList() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.roster))
	for _, p := range r.roster {
		players = append(players, p.ToInfo())
	}
	return players
}

// Ballot exposes the current ballot for inspection
func (r *Room) Ballot() *Ballot {
	return r.ballot
}

func (r *Room) indexOf(id string) int {
	for i, p := range r.roster {
		if p.ID == id {
			return i
		}
	}
	return -1
}
