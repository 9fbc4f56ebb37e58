package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/ideaforge-api/internal/config"
	"github.com/noah-isme/ideaforge-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	Service            string    `json:"service"`
	Environment        string    `json:"environment"`
	Store              string    `json:"store"`
	AnalyzerConfigured bool      `json:"analyzerConfigured"`
	Model              string    `json:"model,omitempty"`
}

// HealthCheck returns a handler that reports application health information.
// A missing analyzer key leaves the service up; analysis requests report it instead.
func HealthCheck(cfg config.Config, analyzerConfigured bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:             "ok",
			Timestamp:          time.Now().UTC(),
			Service:            cfg.AppName,
			Environment:        cfg.AppEnv,
			Store:              cfg.StoreDriver,
			AnalyzerConfigured: analyzerConfigured,
		}
		if analyzerConfigured {
			payload.Model = cfg.AIModel
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
