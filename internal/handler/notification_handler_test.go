package handler_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/handler"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/internal/service"
)

// signallingNotifications reports when a stream has subscribed.
type signallingNotifications struct {
	service.NotificationService
	subscribed chan string
}

func (s signallingNotifications) Subscribe(transport string) (<-chan dto.NotificationResponse, func()) {
	stream, cleanup := s.NotificationService.Subscribe(transport)
	s.subscribed <- transport
	return stream, cleanup
}

func newNotificationService(t *testing.T) service.NotificationService {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewNotificationRepository(repository.NewRedisStore(client, "ws-test"))
	return service.NewNotificationService(repo, nil, "", nil, validator.New(), zerolog.Nop())
}

func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return ln.Addr().String()
}

func TestNotificationHandler_WebsocketDeliversPublishedNotifications(t *testing.T) {
	svc := signallingNotifications{NotificationService: newNotificationService(t), subscribed: make(chan string, 1)}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.NewNotificationHandler(svc, zerolog.Nop(), 10*time.Second).Register(app.Group("/api/v1/notifications"))
	addr := serve(t, app)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/v1/notifications/ws", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	select {
	case transport := <-svc.subscribed:
		require.Equal(t, "websocket", transport)
	case <-time.After(2 * time.Second):
		t.Fatal("websocket never subscribed")
	}

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		Type:    models.NotificationAnalysisComplete,
		Title:   "Idea analyzed",
		Message: "Bakery &amp; cafe scored 70",
		IdeaID:  "idea-1",
	})
	require.NoError(t, err)
	require.Equal(t, "Bakery & cafe scored 70", published.Message)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var message struct {
		Event string                   `json:"event"`
		Data  dto.NotificationResponse `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&message))
	require.Equal(t, "notification", message.Event)
	require.Equal(t, published.ID, message.Data.ID)
	require.Equal(t, "idea-1", message.Data.IdeaID)
}

func TestNotificationHandler_WebsocketRequiresUpgrade(t *testing.T) {
	app := fiber.New()
	handler.NewNotificationHandler(newNotificationService(t), zerolog.Nop(), time.Second).Register(app.Group("/api/v1/notifications"))

	status, _ := rawRequest(t, app, http.MethodGet, "/api/v1/notifications/ws", "")
	require.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestNotificationHandler_ListAndClear(t *testing.T) {
	svc := newNotificationService(t)
	for _, title := range []string{"first", "second"} {
		_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
			Type:    models.NotificationClusterFormed,
			Title:   title,
			Message: "cluster update",
		})
		require.NoError(t, err)
	}

	app := fiber.New()
	handler.NewNotificationHandler(svc, zerolog.Nop(), time.Second).Register(app.Group("/api/v1/notifications"))

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/notifications?limit=1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, body.Meta["unread"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/notifications?limit=abc", "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/notifications", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	items, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, items)
}
