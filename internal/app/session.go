package app

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"impostor/internal/domain"
)

// Stats counts what happened in the session since the process started
type Stats struct {
	Joins          uint64
	RejectedJoins  uint64
	RoundsStarted  uint64
	RoundsResolved uint64
	CivilianWins   uint64
	ImpostorWins   uint64
	Votes          uint64
	Restarts       uint64
	Disconnects    uint64
}

// SessionConfig holds the optional collaborators of a session
type SessionConfig struct {
	Words    []string
	Rand     domain.Rand
	Outcomes *OutcomeDispatcher
}

// Session owns the room. Every action runs to completion, notifications
// included, under a single lock, so actions are applied in arrival order.
type Session struct {
	room     *domain.Room
	mu       sync.Mutex
	notifier Notifier
	words    []string
	rng      domain.Rand
	outcomes *OutcomeDispatcher
	stats    Stats
	logger   *slog.Logger
}

// NewSession creates a session with an empty lobby
func NewSession(cfg SessionConfig, notifier Notifier, logger *slog.Logger) *Session {
	words := cfg.Words
	if len(words) == 0 {
		words = DefaultWords
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Session{
		room:     domain.NewRoom(),
		notifier: notifier,
		words:    words,
		rng:      rng,
		outcomes: cfg.Outcomes,
		logger:   logger,
	}
}

// Join adds the connection to the lobby under the given display name. The
// caller is told about a rejection; nobody else is.
func (s *Session) Join(connectionID, name string) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, err := s.room.Join(connectionID, name)
	if err != nil {
		s.stats.RejectedJoins++
		s.logger.Debug("join rejected", "connectionID", connectionID, "name", name, "error", err)
		s.notifier.SendTo(connectionID, domain.NewEvent(domain.EventError, &domain.ErrorPayload{
			Code:    domain.ErrorCode(err),
			Message: err.Error(),
		}))
		return nil, err
	}

	s.stats.Joins++
	s.logger.Info("participant joined", "connectionID", connectionID, "name", name, "players", s.room.Size())

	joined := *participant
	s.notifier.SendTo(connectionID, domain.NewEvent(domain.EventJoinedSuccess, &joined))
	s.broadcastPlayers()

	return &joined, nil
}

// StartGame deals a new round. It does nothing while fewer than
// domain.MinPlayers have joined.
func (s *Session) StartGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.StartRound(s.rng, s.words) {
		s.logger.Debug("start ignored", "players", s.room.Size())
		return false
	}

	s.stats.RoundsStarted++
	s.logger.Info("round started", "players", s.room.Size())

	for _, p := range s.room.Roster() {
		s.notifier.SendTo(p.ID, domain.NewEvent(domain.EventGameStarted, &domain.GameStartedPayload{
			Role: p.Role,
			Word: s.room.WordFor(&p),
		}))
	}

	s.broadcastPhase()

	return true
}

// StartVoting opens the vote regardless of the current phase
func (s *Session) StartVoting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.room.StartVoting()
	s.logger.Info("voting started", "players", s.room.Size())
	s.broadcastPhase()
}

// Vote records the voter's choice. Once every participant has voted the
// round is resolved and the outcome broadcast.
func (s *Session) Vote(voterID, targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.CastVote(voterID, targetID) {
		s.logger.Debug("vote ignored", "connectionID", voterID, "phase", s.room.Phase)
		return
	}

	s.stats.Votes++

	if s.room.QuorumReached() {
		s.resolveLocked()
	}
}

// Restart returns everyone to the lobby. Participants stay in the room.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.room.Reset()
	s.stats.Restarts++
	s.logger.Info("room reset to lobby", "players", s.room.Size())

	s.notifier.Broadcast(domain.NewEvent(domain.EventResetToLobby, nil))
	s.broadcastPlayers()
}

// Disconnect removes the connection's participant. A vote the participant
// already cast is discarded, and during VOTING the remaining voters may now
// form a quorum.
func (s *Session) Disconnect(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.Leave(connectionID) {
		return
	}

	s.stats.Disconnects++
	s.logger.Info("participant left", "connectionID", connectionID, "players", s.room.Size(), "phase", s.room.Phase)

	s.broadcastPlayers()

	if s.room.QuorumReached() {
		s.resolveLocked()
	}
}

// Snapshot returns the state a freshly opened connection needs to render
func (s *Session) Snapshot(connectionID string) *domain.SnapshotPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &domain.SnapshotPayload{
		ConnectionID: connectionID,
		Phase:        s.room.Phase,
		Players:      s.room.PlayerInfoList(),
		VotedCount:   s.room.VotedCount(),
	}

	if p := s.room.Participant(connectionID); p != nil && s.room.Phase.InRound() {
		snapshot.Role = p.Role
		snapshot.Word = s.room.WordFor(p)
	}

	return snapshot
}

// GetPhase returns the current phase
func (s *Session) GetPhase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase
}

// GetPlayers returns the public roster in join order
func (s *Session) GetPlayers() []domain.PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.PlayerInfoList()
}

// GetPlayerCount returns the number of participants
func (s *Session) GetPlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Size()
}

// Stats returns a copy of the session counters
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// OutcomesDropped returns how many outcomes never reached the sink
func (s *Session) OutcomesDropped() uint64 {
	return s.outcomes.Dropped()
}

// resolveLocked resolves the round (caller must hold lock)
func (s *Session) resolveLocked() {
	outcome, ok := s.room.Resolve()
	if !ok {
		return
	}

	s.stats.RoundsResolved++
	if outcome.Winner == domain.FactionCivilians {
		s.stats.CivilianWins++
	} else {
		s.stats.ImpostorWins++
	}

	s.logger.Info("round resolved",
		"winner", outcome.Winner,
		"eliminatedID", outcome.EliminatedID,
		"impostorID", outcome.ImpostorID,
	)

	s.notifier.Broadcast(domain.NewEvent(domain.EventGameOver, outcome.GameOver()))
	s.outcomes.Dispatch(*outcome)
}

func (s *Session) broadcastPlayers() {
	s.notifier.Broadcast(domain.NewEvent(domain.EventUpdatePlayers, &domain.UpdatePlayersPayload{
		Players: s.room.PlayerInfoList(),
	}))
}

func (s *Session) broadcastPhase() {
	s.notifier.Broadcast(domain.NewEvent(domain.EventStateChange, &domain.StateChangePayload{
		Phase: s.room.Phase,
	}))
}
