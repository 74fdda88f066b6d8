package port

import (
	"context"

	"eateryApi/internal/modules/dining/domain"
)

// Broadcaster pushes messages to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler is implemented by handlers registered per Kafka topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
