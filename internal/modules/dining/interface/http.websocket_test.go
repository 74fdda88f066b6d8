package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/modules/dining/infrastructure"
)

func startWebsocketServer(t *testing.T, fetcher *stubFetcher) (*httptest.Server, *infrastructure.Hub, *usecase.DataManager) {
	t.Helper()
	hub := infrastructure.NewHub()
	notifier := usecase.NewRefreshNotifier(hub)
	manager := usecase.NewDataManager(fetcher,
		usecase.WithOnUpdate(notifier.HallUpdated),
		usecase.WithOnBatch(notifier.BatchFinished),
	)
	manager.LoadFixtures()
	e := echo.New()
	RegisterRoutes(e, manager, hub, nil)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, hub, manager
}

func dial(t *testing.T, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dining-halls" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) domain.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg domain.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebsocket_ConnectAndSnapshot(t *testing.T) {
	srv, _, _ := startWebsocketServer(t, newStubFetcher())

	conn, _, err := dial(t, srv, "?hall=goldies")
	require.NoError(t, err)
	defer conn.Close()

	connected := readMessage(t, conn)
	require.Equal(t, domain.TopicSystemConnected, connected.Topic)
	require.Equal(t, "goldies", connected.Metadata["hallId"])

	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "snapshot"}))
	snapshot := readMessage(t, conn)
	require.Equal(t, domain.DiningHallsSnapshotTopic, snapshot.Topic)
	require.Equal(t, "goldies", snapshot.ResourceID)
	halls, ok := snapshot.Data.([]any)
	require.True(t, ok, "snapshot data should be a list")
	require.Len(t, halls, 1)
}

func TestWebsocket_ReceivesHallUpdates(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["goldies"] = domain.DiningHall{ID: "goldies", Name: "Goldies Cafe"}
	fetcher.halls["north_star"] = domain.DiningHall{ID: "north_star", Name: "North Star"}
	srv, hub, manager := startWebsocketServer(t, fetcher)

	conn, _, err := dial(t, srv, "?hall=goldies")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = manager.RefreshOne(context.Background(), "north_star")
	require.NoError(t, err)
	_, err = manager.RefreshOne(context.Background(), "goldies")
	require.NoError(t, err)

	update := readMessage(t, conn)
	require.Equal(t, domain.DiningHallUpdatedTopic, update.Topic)
	require.Equal(t, "goldies", update.ResourceID, "updates for other halls are filtered out")
}

func TestWebsocket_RefreshCommandReportsFailure(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.errs["goldies"] = fmt.Errorf("%w: unexpected calendar response 503", port.ErrNetwork)
	srv, _, _ := startWebsocketServer(t, fetcher)

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "refresh", HallID: "goldies"}))
	failure := readMessage(t, conn)
	require.Equal(t, domain.DiningHallFailedTopic, failure.Topic)
	require.Equal(t, string(port.KindNetwork), failure.Metadata["kind"])
}

func TestWebsocket_RefreshAllCommandReportsBatch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["goldies"] = domain.DiningHall{ID: "goldies", Name: "Goldies Cafe"}
	srv, _, _ := startWebsocketServer(t, fetcher)

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "subscribe", Topic: domain.DiningHallsRefreshedTopic}))
	require.Equal(t, domain.TopicSystemSubscribed, readMessage(t, conn).Topic)

	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "refresh"}))
	for {
		msg := readMessage(t, conn)
		if msg.Topic != domain.DiningHallsRefreshedTopic {
			continue
		}
		batch, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		require.Equal(t, []any{"goldies"}, batch["succeeded"])
		require.EqualValues(t, len(domain.DefaultCalendarCatalog().IDs()), batch["total"])
		return
	}
}

func TestWebsocket_SubscribeRescopesToKnownHall(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.halls["goldies"] = domain.DiningHall{ID: "goldies", Name: "Goldies Cafe"}
	fetcher.halls["north_star"] = domain.DiningHall{ID: "north_star", Name: "North Star"}
	srv, hub, manager := startWebsocketServer(t, fetcher)

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "subscribe", HallID: "nowhere"}))
	rejected := readMessage(t, conn)
	require.Equal(t, domain.TopicSystemRejected, rejected.Topic)
	require.Equal(t, "unknown dining hall", rejected.Metadata["reason"])

	require.NoError(t, conn.WriteJSON(infrastructure.Command{Action: "subscribe", HallID: "goldies"}))
	ack := readMessage(t, conn)
	require.Equal(t, domain.TopicSystemSubscribed, ack.Topic)
	require.Equal(t, "goldies", ack.ResourceID)

	_, err = manager.RefreshOne(context.Background(), "north_star")
	require.NoError(t, err)
	_, err = manager.RefreshOne(context.Background(), "goldies")
	require.NoError(t, err)

	update := readMessage(t, conn)
	require.Equal(t, domain.DiningHallUpdatedTopic, update.Topic)
	require.Equal(t, "goldies", update.ResourceID)
}

func TestWebsocket_RejectsUnknownHall(t *testing.T) {
	srv, _, _ := startWebsocketServer(t, newStubFetcher())

	_, resp, err := dial(t, srv, "?hall=nowhere")
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
