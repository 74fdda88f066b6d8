package usecase

import (
	"context"
	"time"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
)

// RefreshNotifier turns data manager events into broadcast messages.
type RefreshNotifier struct {
	broadcaster port.Broadcaster
}

func NewRefreshNotifier(b port.Broadcaster) *RefreshNotifier {
	return &RefreshNotifier{broadcaster: b}
}

// HallUpdated publishes the refreshed hall on dining-halls.updated.
func (n *RefreshNotifier) HallUpdated(ctx context.Context, hall domain.DiningHall) {
	n.broadcaster.Broadcast(ctx, &domain.Message{
		Topic:      domain.DiningHallUpdatedTopic,
		Entity:     domain.DiningHallEntity,
		Action:     domain.ActionUpdated,
		ResourceID: hall.ID,
		Data:       hall,
		Timestamp:  time.Now().UTC(),
	})
}

// BatchFinished publishes the aggregate outcome of a batch refresh on dining-halls.refreshed.
func (n *RefreshNotifier) BatchFinished(ctx context.Context, result BatchResult) {
	n.broadcaster.Broadcast(ctx, &domain.Message{
		Topic:  domain.DiningHallsRefreshedTopic,
		Entity: domain.DiningHallEntity,
		Action: domain.ActionRefreshed,
		Data: map[string]any{
			"succeeded": result.Succeeded,
			"stored":    result.Stored,
			"failed":    result.FailedIDs(),
			"total":     result.Total(),
			"elapsedMs": result.Elapsed.Milliseconds(),
		},
		Timestamp: time.Now().UTC(),
	})
}
