package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eateryApi/internal/modules/dining/domain"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client is one WebSocket subscriber. Its hall scope, when set, limits delivery to messages about
// that hall; messages without a hall always pass.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	commands  *CommandProcessor
	topics    map[string]struct{} // guarded by hub.mu

	mu     sync.Mutex
	hallID string
	closed bool
}

// NewClient creates a client with a buffered outbound queue of size buf.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID, hallID string, buf int, fallback CommandHandler) *Client {
	if buf <= 0 {
		buf = 16
	}
	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, buf),
		sessionID: sessionID,
		hallID:    strings.TrimSpace(hallID),
		topics:    make(map[string]struct{}),
	}
	client.commands = NewCommandProcessor(hub, fallback)
	return client
}

func (c *Client) SessionID() string { return c.sessionID }

// HallID returns the current hall scope, or "" for every hall.
func (c *Client) HallID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hallID
}

func (c *Client) scopeTo(hallID string) {
	c.mu.Lock()
	c.hallID = hallID
	c.mu.Unlock()
}

// follows reports whether a message about hallID passes the client's scope.
func (c *Client) follows(hallID string) bool {
	hallID = strings.TrimSpace(hallID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hallID == "" || hallID == "" || c.hallID == hallID
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// enqueue queues data for the write pump. A full buffer detaches the client.
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- data:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		slog.Warn("websocket send buffer full", slog.String("sessionId", c.sessionID))
		go c.hub.detachClient(c)
	}
}

func (c *Client) SendDomainMessage(msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	c.enqueue(data)
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("websocket ping error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.hub.detachClient(c)
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.commands.Process(c, cmd)
	}
}
