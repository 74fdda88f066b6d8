package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
)

// Hub fans dining hall events out to WebSocket clients. A client receives a message when it
// follows the topic (or follows everything) and its hall scope matches the message's hall.
type Hub struct {
	mu        sync.RWMutex
	followers map[string]map[*Client]struct{}
	sessions  map[string]*Client
	everyone  map[*Client]struct{}
	halls     domain.Catalog
}

type HubOption func(*Hub)

// WithHallCatalog sets the halls clients may scope themselves to. Defaults to every known hall.
func WithHallCatalog(halls domain.Catalog) HubOption {
	return func(h *Hub) { h.halls = halls }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		followers: make(map[string]map[*Client]struct{}),
		sessions:  make(map[string]*Client),
		everyone:  make(map[*Client]struct{}),
		halls:     domain.DefaultCalendarCatalog(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// KnowsHall reports whether a client may scope itself to id.
func (h *Hub) KnowsHall(id string) bool {
	return h.halls.Contains(id)
}

// AttachClient registers c and makes it follow topics. A second client with the same session
// replaces the first.
func (h *Hub) AttachClient(c *Client, topics []string) {
	h.mu.Lock()
	h.registerLocked(c)
	for _, topic := range topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			h.followLocked(c, topic)
		}
	}
	h.mu.Unlock()
	slog.Info("ws client attached", slog.String("sessionId", c.sessionID), slog.String("hallId", c.HallID()), slog.Any("topics", topics))
}

// AttachClientToAll registers c as a follower of every topic.
func (h *Hub) AttachClientToAll(c *Client) {
	h.mu.Lock()
	h.registerLocked(c)
	h.everyone[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("ws client attached to all topics", slog.String("sessionId", c.sessionID))
}

// Broadcast delivers msg to every matching client. Clients whose buffer is full are detached.
func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("topic", msg.Topic), slog.Any("error", err))
		return
	}
	delivered := 0
	for _, c := range h.audience(msg.Topic) {
		if !c.follows(msg.ResourceID) {
			continue
		}
		c.enqueue(data)
		delivered++
	}
	slog.Debug("broadcast delivered", slog.String("topic", msg.Topic), slog.String("hallId", msg.ResourceID), slog.Int("clients", delivered))
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// audience snapshots the clients following topic, each listed once.
func (h *Hub) audience(topic string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.followers[topic])+len(h.everyone))
	for c := range h.everyone {
		out = append(out, c)
	}
	for c := range h.followers[topic] {
		if _, all := h.everyone[c]; !all {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) follow(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.followLocked(c, topic)
}

func (h *Hub) unfollow(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unfollowLocked(c, topic)
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) registerLocked(c *Client) {
	if previous, ok := h.sessions[c.sessionID]; ok && previous != c {
		slog.Info("ws session replaced", slog.String("sessionId", c.sessionID))
		h.detachLocked(previous)
	}
	h.sessions[c.sessionID] = c
}

func (h *Hub) followLocked(c *Client, topic string) {
	set, ok := h.followers[topic]
	if !ok {
		set = make(map[*Client]struct{})
		h.followers[topic] = set
	}
	set[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) unfollowLocked(c *Client, topic string) {
	if set, ok := h.followers[topic]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.followers, topic)
		}
	}
	delete(c.topics, topic)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	for topic := range c.topics {
		h.unfollowLocked(c, topic)
	}
	delete(h.everyone, c)
	if current, ok := h.sessions[c.sessionID]; ok && current == c {
		delete(h.sessions, c.sessionID)
	}
	c.close()
	slog.Info("ws client detached", slog.String("sessionId", c.sessionID))
}

var _ port.Broadcaster = (*Hub)(nil)
