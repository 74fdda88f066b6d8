package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"eateryApi/internal/modules/dining/domain"
)

// Command is a client-to-server WebSocket instruction.
type Command struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	HallID  string          `json:"hallId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CommandHandler func(ctx context.Context, client *Client, cmd Command)

const (
	commandSubscribe   = "subscribe"
	commandUnsubscribe = "unsubscribe"
	commandPing        = "ping"
)

// CommandProcessor handles subscription commands itself and hands every other action to the
// fallback, which runs in its own goroutine under fallbackTimeout.
//
// subscribe and unsubscribe take a dining-halls.* topic, a hallId, or both. A hallId on subscribe
// narrows the client to that hall; on unsubscribe it lifts the matching scope. Every subscription
// command is answered with system.subscribed, system.unsubscribed or system.rejected.
type CommandProcessor struct {
	hub             *Hub
	fallback        CommandHandler
	fallbackTimeout time.Duration
}

func NewCommandProcessor(hub *Hub, fallback CommandHandler) *CommandProcessor {
	return &CommandProcessor{hub: hub, fallback: fallback, fallbackTimeout: 15 * time.Second}
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}
	cmd.Action = strings.ToLower(strings.TrimSpace(cmd.Action))
	cmd.Topic = strings.TrimSpace(cmd.Topic)
	cmd.HallID = strings.TrimSpace(cmd.HallID)

	switch cmd.Action {
	case "":
		return
	case commandSubscribe:
		p.subscribe(client, cmd)
	case commandUnsubscribe:
		p.unsubscribe(client, cmd)
	case commandPing:
		client.SendDomainMessage(systemMessage(domain.TopicSystemPong, domain.ActionPong, "", nil))
	default:
		if p.fallback == nil {
			slog.Debug("ws command ignored", slog.String("sessionId", client.sessionID), slog.String("action", cmd.Action))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.fallbackTimeout)
		go func() {
			defer cancel()
			p.fallback(ctx, client, cmd)
		}()
	}
}

func (p *CommandProcessor) subscribe(client *Client, cmd Command) {
	if reason := p.validate(cmd); reason != "" {
		p.reject(client, cmd, reason)
		return
	}
	if cmd.Topic != "" {
		p.hub.follow(client, cmd.Topic)
	}
	if cmd.HallID != "" {
		client.scopeTo(cmd.HallID)
	}
	slog.Debug("ws subscribe", slog.String("sessionId", client.sessionID), slog.String("topic", cmd.Topic), slog.String("hallId", cmd.HallID))
	client.SendDomainMessage(systemMessage(domain.TopicSystemSubscribed, domain.ActionSubscribed, client.HallID(), map[string]string{"topic": cmd.Topic}))
}

func (p *CommandProcessor) unsubscribe(client *Client, cmd Command) {
	if reason := p.validate(cmd); reason != "" {
		p.reject(client, cmd, reason)
		return
	}
	if cmd.Topic != "" {
		p.hub.unfollow(client, cmd.Topic)
	}
	if cmd.HallID != "" && client.HallID() == cmd.HallID {
		client.scopeTo("")
	}
	slog.Debug("ws unsubscribe", slog.String("sessionId", client.sessionID), slog.String("topic", cmd.Topic), slog.String("hallId", cmd.HallID))
	client.SendDomainMessage(systemMessage(domain.TopicSystemUnsubscribed, domain.ActionUnsubscribed, client.HallID(), map[string]string{"topic": cmd.Topic}))
}

// validate returns why cmd cannot change a subscription, or "".
func (p *CommandProcessor) validate(cmd Command) string {
	switch {
	case cmd.Topic == "" && cmd.HallID == "":
		return "topic or hallId required"
	case cmd.Topic != "" && !domain.IsDiningHallTopic(cmd.Topic):
		return "unsupported topic"
	case cmd.HallID != "" && !p.hub.KnowsHall(cmd.HallID):
		return "unknown dining hall"
	}
	return ""
}

func (p *CommandProcessor) reject(client *Client, cmd Command, reason string) {
	slog.Debug("ws command rejected", slog.String("sessionId", client.sessionID), slog.String("action", cmd.Action), slog.String("reason", reason))
	client.SendDomainMessage(systemMessage(domain.TopicSystemRejected, domain.ActionRejected, cmd.HallID, map[string]string{
		"command": cmd.Action,
		"topic":   cmd.Topic,
		"reason":  reason,
	}))
}

func systemMessage(topic, action, hallID string, metadata map[string]string) *domain.Message {
	return &domain.Message{
		Topic:      topic,
		Entity:     domain.SystemEntity,
		Action:     action,
		ResourceID: hallID,
		Metadata:   metadata,
		Timestamp:  time.Now().UTC(),
	}
}
