package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/modules/dining/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var sessionCounter atomic.Uint64

// NewDiningHallsWebsocketHandler exposes /ws/dining-halls?hall=<id>. Without a hall the client
// receives updates for every dining hall.
func NewDiningHallsWebsocketHandler(hub *infrastructure.Hub, manager *usecase.DataManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		hallID := strings.TrimSpace(c.QueryParam("hall"))
		if hallID != "" && !hub.KnowsHall(hallID) {
			slog.Warn("ws rejected unknown hall", slog.String("hallId", hallID), slog.String("ip", c.RealIP()))
			return echo.NewHTTPError(http.StatusNotFound, "unknown dining hall")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("hallId", hallID), slog.Any("error", err))
			return err
		}

		sessionID := strings.TrimSpace(c.QueryParam("sessionId"))
		if sessionID == "" {
			sessionID = fmt.Sprintf("dining-%d", sessionCounter.Add(1))
		}

		topics := []string{domain.DiningHallUpdatedTopic, domain.DiningHallsRefreshedTopic}
		client := infrastructure.NewClient(hub, conn, sessionID, hallID, 16, newDiningCommandHandler(manager))
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		metadata := map[string]string{"sessionId": sessionID}
		if hallID != "" {
			metadata["hallId"] = hallID
		}
		client.SendDomainMessage(&domain.Message{
			Topic:    domain.TopicSystemConnected,
			Entity:   domain.SystemEntity,
			Action:   domain.ActionConnected,
			Metadata: metadata,
			Data: map[string]any{
				"topics": topics,
				"hallId": hallID,
				"loaded": manager.Len(),
			},
			Timestamp: time.Now().UTC(),
		})
		slog.Info("ws connected", slog.String("sessionId", sessionID), slog.String("hallId", hallID), slog.String("ip", c.RealIP()))
		return nil
	}
}

// newDiningCommandHandler serves the snapshot and refresh commands. Refresh results reach the
// client through the regular update topics; only failures are answered directly. A refresh
// without a hall detaches from the command deadline, since each request of the batch is already
// bounded by the manager's request timeout, and reports on dining-halls.refreshed.
func newDiningCommandHandler(manager *usecase.DataManager) infrastructure.CommandHandler {
	return func(ctx context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		hallID := strings.TrimSpace(cmd.HallID)
		if hallID == "" {
			hallID = client.HallID()
		}

		switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
		case "snapshot":
			client.SendDomainMessage(snapshotMessage(manager, hallID))
		case "refresh":
			if hallID == "" {
				sessionID := client.SessionID()
				manager.RefreshAllAsync(context.WithoutCancel(ctx), func(result usecase.BatchResult) {
					slog.Info("ws refresh all finished", slog.String("sessionId", sessionID), slog.Int("succeeded", len(result.Succeeded)), slog.Int("failed", len(result.Failed)))
				})
				return
			}
			if _, err := manager.RefreshOne(ctx, hallID); err != nil {
				client.SendDomainMessage(failureMessage(hallID, err))
			}
		default:
			slog.Debug("ws command unsupported", slog.String("sessionId", client.SessionID()), slog.String("action", cmd.Action))
		}
	}
}

func snapshotMessage(manager *usecase.DataManager, hallID string) *domain.Message {
	msg := &domain.Message{
		Topic:      domain.DiningHallsSnapshotTopic,
		Entity:     domain.DiningHallEntity,
		Action:     domain.ActionSnapshot,
		ResourceID: hallID,
		Timestamp:  time.Now().UTC(),
	}
	if hallID == "" {
		msg.Data = manager.DiningHalls()
		return msg
	}
	if hall, ok := manager.DiningHall(hallID); ok {
		msg.Data = []domain.DiningHall{hall}
	} else {
		msg.Data = []domain.DiningHall{}
	}
	return msg
}

func failureMessage(hallID string, err error) *domain.Message {
	return &domain.Message{
		Topic:      domain.DiningHallFailedTopic,
		Entity:     domain.DiningHallEntity,
		Action:     domain.ActionFailed,
		ResourceID: hallID,
		Metadata:   map[string]string{"kind": string(port.KindOf(err))},
		Data:       map[string]string{"error": err.Error()},
		Timestamp:  time.Now().UTC(),
	}
}
