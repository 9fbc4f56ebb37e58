package config

import (
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/scoring"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

// ScoringPolicy builds the rule tables every binary scores ideas with.
func (c Config) ScoringPolicy() scoring.Policy {
	return scoring.DefaultPolicy(
		scoring.WithNonsensicalBand(scoring.Band{Min: c.ScoringNonsensicalMin, Max: c.ScoringNonsensicalMax}),
		scoring.WithLegitimateBand(scoring.Band{Min: c.ScoringLegitimateMin, Max: c.ScoringLegitimateMax}),
		scoring.WithMinValidScore(c.ScoringMinValid),
		scoring.WithReconcileBands(
			scoring.Band{Min: c.ReconcileLegitimateMin, Max: c.ReconcileLegitimateMax},
			scoring.Band{Min: c.ReconcileDefaultMin, Max: c.ReconcileDefaultMax},
		),
		scoring.WithExternalWeight(c.ScoringExternalWeight),
	)
}

// AnalyzerConfig maps the AI settings onto the chat-completions analyzer.
func (c Config) AnalyzerConfig(logger zerolog.Logger) ai.OpenAIConfig {
	return ai.OpenAIConfig{
		APIKey:      c.AIAPIKey,
		KeyPrefix:   c.AIKeyPrefix,
		BaseURL:     c.AIBaseURL,
		Model:       c.AIModel,
		SiteURL:     c.AISiteURL,
		SiteName:    c.AISiteName,
		MaxTokens:   c.AIMaxTokens,
		Temperature: c.AITemperature,
		JSONMode:    c.AIJSONMode,
		Timeout:     c.AITimeout,
		Logger:      logger,
	}
}
