package handler

import (
	"bufio"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/utils"
)

// NotificationHandler manages SSE and websocket notification streams and CRUD operations.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
	timeout time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
		timeout: timeout,
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_ctx", requestContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/", h.list)
	router.Delete("/", h.clear)
	router.Get("/stream", h.stream)
	router.Get("/ws", websocket.New(h.handleConnection))
	router.Patch("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	notifications, err := h.service.List(requestContext(c), limit)
	if err != nil {
		return writeServiceError(c, h.logger, err, "list notifications")
	}

	unread := 0
	for _, item := range notifications {
		if !item.Read {
			unread++
		}
	}
	return utils.OK(c, notifications, "notifications", fiber.Map{"unread": unread})
}

func (h *NotificationHandler) clear(c *fiber.Ctx) error {
	if err := h.service.Clear(requestContext(c)); err != nil {
		return writeServiceError(c, h.logger, err, "clear notifications")
	}
	return utils.SendSuccess(c, "notifications cleared", nil)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "notification id required")
	}

	notification, err := h.service.MarkRead(requestContext(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err, "update notification")
	}
	return utils.SendSuccess(c, "notification updated", notification)
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := requestContext(c)
	stream, cleanup := h.service.Subscribe("sse")
	interval := h.keepAlive()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cleanup()

		if err := writeKeepAlive(w); err != nil {
			return
		}
		err := pump(ctx, stream, interval,
			func(n dto.NotificationResponse) error { return writeNotificationEvent(w, n) },
			func() error { return writeKeepAlive(w) },
		)
		if err != nil {
			h.logger.Debug().Err(err).Msg("notification event stream closed")
		}
	})

	return nil
}

func (h *NotificationHandler) handleConnection(conn *websocket.Conn) {
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	stream, cleanup := h.service.Subscribe("websocket")
	defer cleanup()

	h.logger.Info().Msg("notification websocket connected")
	defer h.logger.Info().Msg("notification websocket disconnected")

	// Inbound frames are discarded; a read error means the client left.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err := pump(ctx, stream, h.keepAlive(),
		func(n dto.NotificationResponse) error {
			return conn.WriteJSON(notificationEnvelope{Event: "notification", Data: n})
		},
		func() error {
			return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		},
	)
	if err != nil {
		h.logger.Debug().Err(err).Msg("notification websocket write failed")
	}
}

func (h *NotificationHandler) keepAlive() time.Duration {
	if h.timeout <= 0 {
		return 15 * time.Second
	}
	return h.timeout / 2
}

type notificationEnvelope struct {
	Event string                   `json:"event"`
	Data  dto.NotificationResponse `json:"data"`
}
