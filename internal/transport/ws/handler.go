package ws

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"impostor/internal/limiter"
)

// Limiter throttles connection attempts per remote address. Errors other
// than limiter.ErrRateLimited are logged and the attempt is allowed.
type Limiter interface {
	Allow(ctx context.Context, remoteAddr string) error
}

// HandlerConfig holds the settings of the WebSocket handler
type HandlerConfig struct {
	MaxNameLength int
	Limiter       Limiter
}

// Handler handles WebSocket connections
type Handler struct {
	session  Session
	hub      *Hub
	config   HandlerConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(session Session, hub *Hub, cfg HandlerConfig, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		hub:     hub,
		config:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The room is cooperative; any origin may connect
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		http.Error(w, ErrCodeRateLimited, http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	connectionID := uuid.NewString()
	client := NewClient(conn, h.session, h.hub, connectionID, h.config.MaxNameLength, h.logger)

	// The snapshot is queued before registration so it is always the first
	// event the connection sees.
	client.sendSnapshot()
	h.hub.Register(client)

	h.logger.Info("websocket connected", "connectionID", connectionID, "remoteAddr", r.RemoteAddr)

	client.Run()

	h.logger.Info("websocket disconnected", "connectionID", connectionID)
}

func (h *Handler) allow(r *http.Request) bool {
	if h.config.Limiter == nil {
		return true
	}

	err := h.config.Limiter.Allow(r.Context(), remoteIP(r))
	if err == nil {
		return true
	}
	if errors.Is(err, limiter.ErrRateLimited) {
		h.logger.Warn("connection attempt throttled", "remoteAddr", r.RemoteAddr)
		return false
	}

	h.logger.Warn("limiter unavailable, allowing connection", "error", err)
	return true
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
