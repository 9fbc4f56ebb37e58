package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/utils"
)

// IdeaHandler exposes idea analysis and management endpoints.
type IdeaHandler struct {
	analysis service.IdeaAnalysisService
	ideas    service.IdeaService
	logger   zerolog.Logger
	// analyzeLimiter guards the endpoints that may call the external analyzer.
	analyzeLimiter fiber.Handler
}

// NewIdeaHandler constructs an idea handler. limiter may be nil.
func NewIdeaHandler(analysis service.IdeaAnalysisService, ideas service.IdeaService, limiter fiber.Handler, logger zerolog.Logger) *IdeaHandler {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &IdeaHandler{
		analysis:       analysis,
		ideas:          ideas,
		analyzeLimiter: limiter,
		logger:         logger.With().Str("component", "idea_handler").Logger(),
	}
}

// Register binds idea routes. Static paths must be registered before /:id.
func (h *IdeaHandler) Register(router fiber.Router) {
	router.Post("/validate", h.validate)
	router.Post("/analyze", h.analyzeLimiter, h.analyze)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/star", h.toggleStar)
	router.Post("/:id/reanalyze", h.analyzeLimiter, h.reanalyze)
}

func (h *IdeaHandler) validate(c *fiber.Ctx) error {
	var payload dto.IdeaValidateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	verdict, err := h.analysis.Validate(requestContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "validate idea")
	}
	return utils.SendSuccess(c, "idea validated", verdict)
}

func (h *IdeaHandler) analyze(c *fiber.Ctx) error {
	var payload dto.IdeaAnalyzeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.analysis.Analyze(requestContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "analyze idea")
	}

	requestLogger(h.logger, c).Info().
		Str("idea_id", result.Idea.ID).
		Int("score", result.Idea.MaturityScore).
		Str("source", result.Source).
		Bool("fallback", result.Fallback).
		Msg("idea analyzed")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "idea analyzed", result)
}

func (h *IdeaHandler) reanalyze(c *fiber.Ctx) error {
	result, err := h.analysis.Reanalyze(requestContext(c), c.Params("id"))
	if err != nil {
		return writeServiceError(c, h.logger, err, "reanalyze idea")
	}
	return utils.SendSuccess(c, "idea reanalyzed", result)
}

func (h *IdeaHandler) list(c *fiber.Ctx) error {
	starred, err := parseQueryBool(c, "starred")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid starred filter")
	}

	query := dto.IdeaListQuery{
		Category: c.Query("category"),
		Stage:    c.Query("stage"),
		Starred:  starred,
		Sort:     c.Query("sort"),
	}

	ideas, err := h.ideas.List(requestContext(c), query)
	if err != nil {
		return writeServiceError(c, h.logger, err, "list ideas")
	}
	return utils.OK(c, ideas, "ideas", fiber.Map{"total": len(ideas)})
}

func (h *IdeaHandler) get(c *fiber.Ctx) error {
	idea, err := h.ideas.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load idea")
	}
	return utils.SendSuccess(c, "idea", idea)
}

func (h *IdeaHandler) update(c *fiber.Ctx) error {
	var payload dto.IdeaUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	idea, err := h.ideas.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "update idea")
	}
	return utils.SendSuccess(c, "idea updated", idea)
}

func (h *IdeaHandler) delete(c *fiber.Ctx) error {
	if err := h.ideas.Delete(requestContext(c), c.Params("id")); err != nil {
		return writeServiceError(c, h.logger, err, "delete idea")
	}
	return utils.SendSuccess(c, "idea deleted", nil)
}

func (h *IdeaHandler) toggleStar(c *fiber.Ctx) error {
	idea, err := h.ideas.ToggleStar(requestContext(c), c.Params("id"))
	if err != nil {
		return writeServiceError(c, h.logger, err, "star idea")
	}
	return utils.SendSuccess(c, "idea updated", idea)
}
