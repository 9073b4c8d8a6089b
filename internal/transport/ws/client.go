package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"impostor/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Session is the part of app.Session a client drives
type Session interface {
	Join(connectionID, name string) (*domain.Participant, error)
	StartGame() bool
	StartVoting()
	Vote(voterID, targetID string)
	Restart()
	Disconnect(connectionID string)
	Snapshot(connectionID string) *domain.SnapshotPayload
}

// Client represents a WebSocket client connection
type Client struct {
	conn          *websocket.Conn
	session       Session
	hub           *Hub
	id            string
	maxNameLength int
	send          chan []byte
	done          chan struct{}
	logger        *slog.Logger
	mu            sync.Mutex
	closed        bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session Session, hub *Hub, id string, maxNameLength int, logger *slog.Logger) *Client {
	return &Client{
		conn:          conn,
		session:       session,
		hub:           hub,
		id:            id,
		maxNameLength: maxNameLength,
		send:          make(chan []byte, sendBufferSize),
		done:          make(chan struct{}),
		logger:        logger.With("connectionID", id),
	}
}

// ID returns the connection ID of this client
func (c *Client) ID() string {
	return c.id
}

// Send encodes and queues a message for this client
func (c *Client) Send(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

// enqueue never blocks; the session calls it while holding its lock
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, message dropped")
	}
}

// Close closes the underlying connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps and blocks until the
// connection ends
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.session.Disconnect(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
// Every event is written as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	cmd, err := ParseCommand(data, c.maxNameLength)
	if err != nil {
		c.logger.Debug("rejected message", "error", err)
		c.sendError(ErrCodeInvalidMessage, err.Error())
		return
	}

	switch cmd := cmd.(type) {
	case JoinCommand:
		// Rejections are reported to this connection by the session
		_, _ = c.session.Join(c.id, cmd.Name)
	case StartGameCommand:
		c.session.StartGame()
	case StartVotingCommand:
		c.session.StartVoting()
	case VoteCommand:
		c.session.Vote(c.id, cmd.TargetID)
	case RestartCommand:
		c.session.Restart()
	case PingCommand:
		c.Send(domain.NewEvent(domain.EventPong, nil))
	}
}

// sendSnapshot sends the current room state to the client
func (c *Client) sendSnapshot() {
	c.Send(domain.NewEvent(domain.EventSnapshot, c.session.Snapshot(c.id)))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(domain.NewEvent(domain.EventError, &domain.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
