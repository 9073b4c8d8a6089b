package domain

// Phase represents the current stage of the room
type Phase string

const (
	PhaseLobby   Phase = "LOBBY"   // Accepting joins
	PhasePlaying Phase = "PLAYING" // Roles dealt, discussion under way
	PhaseVoting  Phase = "VOTING"  // Every participant picks a suspect
	PhaseResult  Phase = "RESULT"  // Outcome announced, waiting for restart
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// InRound reports whether a round is in progress, i.e. roles and the secret
// word are assigned.
func (p Phase) InRound() bool {
	switch p {
	case PhasePlaying, PhaseVoting, PhaseResult:
		return true
	default:
		return false
	}
}
