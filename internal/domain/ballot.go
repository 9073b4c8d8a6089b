package domain

// Ballot maps voters to their chosen targets. Voters are kept in the order of
// their first vote; changing a vote keeps the original position.
type Ballot struct {
	order   []string
	targets map[string]string
}

// NewBallot creates an empty ballot
func NewBallot() *Ballot {
	return &Ballot{
		targets: make(map[string]string),
	}
}

// Cast records or overwrites the vote of voterID
func (b *Ballot) Cast(voterID, targetID string) {
	if _, ok := b.targets[voterID]; !ok {
		b.order = append(b.order, voterID)
	}
	b.targets[voterID] = targetID
}

// Remove drops the vote of voterID, if any
func (b *Ballot) Remove(voterID string) {
	if _, ok := b.targets[voterID]; !ok {
		return
	}
	delete(b.targets, voterID)
	for i, id := range b.order {
		if id == voterID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Clear empties the ballot
func (b *Ballot) Clear() {
	b.order = nil
	b.targets = make(map[string]string)
}

// Len returns the number of distinct voters
func (b *Ballot) Len() int {
	return len(b.targets)
}

// TargetOf returns the target chosen by voterID
func (b *Ballot) TargetOf(voterID string) (string, bool) {
	target, ok := b.targets[voterID]
	return target, ok
}

// Voters returns voter IDs in first-vote order
func (b *Ballot) Voters() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// TallyEntry is the vote count received by one target
type TallyEntry struct {
	TargetID string `json:"targetId"`
	Votes    int    `json:"votes"`
}

// Tally counts every vote and returns the eliminated target along with the
// per-target counts, listed in the order targets were first voted for.
//
// The eliminated target is the first entry in that order whose count
// strictly exceeds every earlier one, so on a tie the target voted for first
// wins.
func (b *Ballot) Tally() (string, []TallyEntry) {
	entries := make([]TallyEntry, 0)
	index := make(map[string]int)

	for _, voterID := range b.order {
		target := b.targets[voterID]
		if i, ok := index[target]; ok {
			entries[i].Votes++
			continue
		}
		index[target] = len(entries)
		entries = append(entries, TallyEntry{TargetID: target, Votes: 1})
	}

	eliminated := ""
	maxVotes := 0
	for _, entry := range entries {
		if entry.Votes > maxVotes {
			maxVotes = entry.Votes
			eliminated = entry.TargetID
		}
	}

	return eliminated, entries
}
