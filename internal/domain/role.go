package domain

// Role represents a participant's role in a round
type Role string

const (
	RoleCivilian Role = "CIVILIAN"
	RoleImpostor Role = "IMPOSTOR"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsImpostor returns true if this role is the impostor
func (r Role) IsImpostor() bool {
	return r == RoleImpostor
}

// Faction is the side that wins a round
type Faction string

const (
	FactionCivilians Faction = "Civilians"
	FactionImpostor  Faction = "Impostor"
)
