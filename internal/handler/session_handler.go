package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/utils"
)

// SessionHandler reports the workspace session.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register binds the session route.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("/", h.current)
}

func (h *SessionHandler) current(c *fiber.Ctx) error {
	session, err := h.service.Current(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load session")
	}
	return utils.SendSuccess(c, "session", session)
}
