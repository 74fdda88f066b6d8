package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
)

// ErrMissingHallID is returned for calendar events that do not name a dining hall.
var ErrMissingHallID = errors.New("calendar event missing hall id")

// Refresher is the subset of the data manager driven by calendar events.
type Refresher interface {
	RefreshOne(ctx context.Context, id string) (domain.DiningHall, error)
	RefreshAll(ctx context.Context) usecase.BatchResult
}

// CalendarUpdatedHandler refreshes dining halls when the upstream publishes a calendar change.
// A resource id of "*" (or an empty id with action "refresh-all") triggers a batch refresh.
type CalendarUpdatedHandler struct {
	topic     string
	refresher Refresher
}

func NewCalendarUpdatedHandler(topic string, refresher Refresher) *CalendarUpdatedHandler {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = domain.CustomTopic(domain.CalendarEntity, domain.ActionUpdated)
	}
	return &CalendarUpdatedHandler{topic: topic, refresher: refresher}
}

func (h *CalendarUpdatedHandler) Topic() string { return h.topic }

func (h *CalendarUpdatedHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	id := hallIDFromMessage(msg)
	if id == "*" || (id == "" && strings.EqualFold(msg.Action, "refresh-all")) {
		result := h.refresher.RefreshAll(ctx)
		slog.Info("calendar event batch refresh", slog.String("topic", msg.Topic), slog.Int("succeeded", len(result.Succeeded)), slog.Int("failed", len(result.Failed)))
		return nil
	}
	if id == "" {
		slog.Warn("calendar event ignored", slog.String("topic", msg.Topic), slog.String("action", msg.Action))
		return ErrMissingHallID
	}

	if _, err := h.refresher.RefreshOne(ctx, id); err != nil {
		slog.Warn("calendar event refresh failed", slog.String("hallId", id), slog.String("kind", string(port.KindOf(err))))
		return err
	}
	slog.Info("calendar event refreshed hall", slog.String("hallId", id))
	return nil
}

func hallIDFromMessage(msg *domain.Message) string {
	if id := strings.TrimSpace(msg.ResourceID); id != "" {
		return id
	}
	if msg.Metadata != nil {
		if id := strings.TrimSpace(msg.Metadata["hallId"]); id != "" {
			return id
		}
	}
	switch data := msg.Data.(type) {
	case string:
		return strings.TrimSpace(data)
	case map[string]any:
		if id, ok := data["id"].(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

var _ port.TopicHandler = (*CalendarUpdatedHandler)(nil)
