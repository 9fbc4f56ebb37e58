package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/middleware"
	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/utils"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryBool(c *fiber.Ctx, key string) (*bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		builder := base.With()
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			builder = builder.Str("correlation_id", correlation)
		}
		if subject := middleware.SubjectFromContext(c); subject != "" {
			builder = builder.Str("subject", subject)
		}
		logger = builder.Logger()
	}
	return &logger
}

func validationDetails(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, FieldError{Field: fieldErr.Field(), Rule: fieldErr.Tag()})
	}
	return details
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	if details := validationDetails(err); details != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", details)
	}

	switch {
	case errors.Is(err, service.ErrEmptyIdea), errors.Is(err, service.ErrEmptyUpdate):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIdeaNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "idea not found")
	case errors.Is(err, service.ErrNotificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "notification not found")
	case errors.Is(err, ai.ErrConfiguration):
		requestLogger(logger, c).Warn().Err(err).Msg("analyzer not configured")
		return utils.FailWithCode(c, fiber.StatusServiceUnavailable, "analyzer_not_configured", "idea analyzer is not configured")
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
