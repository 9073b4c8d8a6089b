package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"impostor/internal/domain"
	"impostor/internal/history"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// API error codes
const (
	CodeInvalidLimit    = "INVALID_LIMIT"
	CodeUnavailable     = "UNAVAILABLE"
	CodeHistoryDisabled = "HISTORY_DISABLED"
	CodeMetricsDisabled = "METRICS_DISABLED"
)

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// RoomResponse describes the single room
type RoomResponse struct {
	Phase       domain.Phase        `json:"phase"`
	PlayerCount int                 `json:"playerCount"`
	Players     []domain.PlayerInfo `json:"players"`
	CanJoin     bool                `json:"canJoin"`
	Connections int                 `json:"connections"`
}

// HistoryResponse lists resolved rounds, newest first
type HistoryResponse struct {
	Rounds []domain.Outcome `json:"rounds"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleRoom handles GET /api/room
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	phase := s.deps.Room.GetPhase()
	resp := &RoomResponse{
		Phase:       phase,
		PlayerCount: s.deps.Room.GetPlayerCount(),
		Players:     s.deps.Room.GetPlayers(),
		CanJoin:     phase == domain.PhaseLobby,
	}
	if s.deps.Hub != nil {
		resp.Connections = s.deps.Hub.Count()
	}
	s.sendSuccess(w, resp)
}

// handleHistory handles GET /api/history?limit=n
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		s.sendError(w, http.StatusServiceUnavailable, CodeHistoryDisabled, "Round history is not configured")
		return
	}

	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.sendError(w, http.StatusBadRequest, CodeInvalidLimit, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rounds, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read history", "error", err)
		s.sendError(w, http.StatusServiceUnavailable, CodeUnavailable, "Round history is unavailable")
		return
	}
	if rounds == nil {
		rounds = []domain.Outcome{}
	}

	s.sendSuccess(w, &HistoryResponse{Rounds: rounds})
}

// handleMetrics handles GET /api/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Metrics == nil {
		s.sendError(w, http.StatusServiceUnavailable, CodeMetricsDisabled, "Metrics are not configured")
		return
	}

	snapshot, err := s.deps.Metrics.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("failed to collect metrics", "error", err)
		s.sendError(w, http.StatusInternalServerError, domain.CodeInternalError, "Internal server error")
		return
	}

	s.sendSuccess(w, snapshot)
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
