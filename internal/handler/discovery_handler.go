package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/utils"
)

// DiscoveryHandler serves fuzzy search and clusters.
type DiscoveryHandler struct {
	service service.DiscoveryService
	logger  zerolog.Logger
}

// NewDiscoveryHandler constructs a discovery handler.
func NewDiscoveryHandler(service service.DiscoveryService, logger zerolog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		service: service,
		logger:  logger.With().Str("component", "discovery_handler").Logger(),
	}
}

// Register binds discovery routes onto the ideas group.
func (h *DiscoveryHandler) Register(router fiber.Router) {
	router.Get("/search", h.search)
	router.Get("/clusters", h.clusters)
	router.Post("/clusters/refresh", h.refresh)
}

func (h *DiscoveryHandler) search(c *fiber.Ctx) error {
	result, err := h.service.Search(requestContext(c), c.Query("q"))
	if err != nil {
		return writeServiceError(c, h.logger, err, "search ideas")
	}
	message := "no similar idea"
	if result.Idea != nil {
		message = "similar idea found"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *DiscoveryHandler) clusters(c *fiber.Ctx) error {
	clusters, err := h.service.Clusters(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load clusters")
	}
	return utils.OK(c, clusters, "clusters", fiber.Map{"total": len(clusters)})
}

func (h *DiscoveryHandler) refresh(c *fiber.Ctx) error {
	clusters, err := h.service.Refresh(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "refresh clusters")
	}
	return utils.OK(c, clusters, "clusters refreshed", fiber.Map{"total": len(clusters)})
}
