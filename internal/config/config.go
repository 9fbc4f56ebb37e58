package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/ideaforge-api/internal/scoring"
)

// Store drivers accepted by IDEAFORGE_STORE_DRIVER.
const (
	StoreRedis = "redis"
	StoreSQL   = "sql"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	StoreDriver     string
	StoreKeyPrefix  string
	RedisURL        string
	DatabaseURL     string
	DatabaseDialect string

	AIAPIKey      string
	AIKeyPrefix   string
	AIBaseURL     string
	AIModel       string
	AISiteURL     string
	AISiteName    string
	AITemperature float32
	AIMaxTokens   int
	AIJSONMode    bool
	AITimeout     time.Duration

	ScoringNonsensicalMin      int
	ScoringNonsensicalMax      int
	ScoringLegitimateMin       int
	ScoringLegitimateMax       int
	ScoringMinValid            int
	ReconcileLegitimateMin     int
	ReconcileLegitimateMax     int
	ReconcileDefaultMin        int
	ReconcileDefaultMax        int
	ScoringExternalWeight      float64
	SimilarityQueryThreshold   float64
	SimilarityClusterThreshold float64

	JWTSecret          string
	NATSURL            string
	BroadcastChannel   string
	AnalyzeRateLimit   int
	AnalyzeRateWindow  time.Duration
	StreamKeepAlive    time.Duration
	CORSAllowedOrigins string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
// A missing AI key is not an error here; it is reported per analysis request.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("IDEAFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "IdeaForge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("store.driver", StoreRedis)
	v.SetDefault("store.key_prefix", "ideaforge")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("database.dialect", "sqlite")
	v.SetDefault("database.url", "file:ideaforge.db?cache=shared")

	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.site_url", "http://localhost:8080")
	v.SetDefault("ai.site_name", "IdeaForge")
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.max_tokens", 1200)
	v.SetDefault("ai.json_mode", false)
	v.SetDefault("ai.timeout", "30s")

	v.SetDefault("scoring.nonsensical_min", 3)
	v.SetDefault("scoring.nonsensical_max", 15)
	v.SetDefault("scoring.legitimate_min", 50)
	v.SetDefault("scoring.legitimate_max", 90)
	v.SetDefault("scoring.min_valid", 30)
	v.SetDefault("scoring.reconcile_legitimate_min", 55)
	v.SetDefault("scoring.reconcile_legitimate_max", 85)
	v.SetDefault("scoring.reconcile_default_min", 5)
	v.SetDefault("scoring.reconcile_default_max", 70)
	v.SetDefault("scoring.external_weight", 0.3)
	v.SetDefault("similarity.query_threshold", 0.45)
	v.SetDefault("similarity.cluster_threshold", 0.6)

	v.SetDefault("broadcast.channel", "ideaforge")
	v.SetDefault("rate_limit.analyze", 10)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("stream.keepalive", "30s")
	v.SetDefault("cors.allowed_origins", "*")

	aiTimeout, err := parseDuration(v, "ai.timeout")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}
	keepAlive, err := parseDuration(v, "stream.keepalive")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName: v.GetString("app.name"),
		AppEnv:  v.GetString("app.env"),
		AppPort: v.GetString("app.port"),

		StoreDriver:     strings.ToLower(v.GetString("store.driver")),
		StoreKeyPrefix:  v.GetString("store.key_prefix"),
		RedisURL:        v.GetString("redis.url"),
		DatabaseURL:     v.GetString("database.url"),
		DatabaseDialect: strings.ToLower(v.GetString("database.dialect")),

		AIAPIKey:      v.GetString("ai.api_key"),
		AIKeyPrefix:   v.GetString("ai.key_prefix"),
		AIBaseURL:     v.GetString("ai.base_url"),
		AIModel:       v.GetString("ai.model"),
		AISiteURL:     v.GetString("ai.site_url"),
		AISiteName:    v.GetString("ai.site_name"),
		AITemperature: float32(v.GetFloat64("ai.temperature")),
		AIMaxTokens:   v.GetInt("ai.max_tokens"),
		AIJSONMode:    v.GetBool("ai.json_mode"),
		AITimeout:     aiTimeout,

		ScoringNonsensicalMin:      v.GetInt("scoring.nonsensical_min"),
		ScoringNonsensicalMax:      v.GetInt("scoring.nonsensical_max"),
		ScoringLegitimateMin:       v.GetInt("scoring.legitimate_min"),
		ScoringLegitimateMax:       v.GetInt("scoring.legitimate_max"),
		ScoringMinValid:            v.GetInt("scoring.min_valid"),
		ReconcileLegitimateMin:     v.GetInt("scoring.reconcile_legitimate_min"),
		ReconcileLegitimateMax:     v.GetInt("scoring.reconcile_legitimate_max"),
		ReconcileDefaultMin:        v.GetInt("scoring.reconcile_default_min"),
		ReconcileDefaultMax:        v.GetInt("scoring.reconcile_default_max"),
		ScoringExternalWeight:      v.GetFloat64("scoring.external_weight"),
		SimilarityQueryThreshold:   v.GetFloat64("similarity.query_threshold"),
		SimilarityClusterThreshold: v.GetFloat64("similarity.cluster_threshold"),

		JWTSecret:          v.GetString("jwt.secret"),
		NATSURL:            v.GetString("nats.url"),
		BroadcastChannel:   v.GetString("broadcast.channel"),
		AnalyzeRateLimit:   v.GetInt("rate_limit.analyze"),
		AnalyzeRateWindow:  rateWindow,
		StreamKeepAlive:    keepAlive,
		CORSAllowedOrigins: v.GetString("cors.allowed_origins"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url must be provided for the redis store")
		}
	case StoreSQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url must be provided for the sql store")
		}
		if c.DatabaseDialect != "sqlite" && c.DatabaseDialect != "postgres" {
			return fmt.Errorf("unsupported database dialect %q", c.DatabaseDialect)
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}

	if c.ScoringNonsensicalMin > c.ScoringNonsensicalMax {
		return fmt.Errorf("nonsensical score band is inverted")
	}
	if c.ScoringNonsensicalMin < 0 || c.ScoringNonsensicalMax > scoring.MaxNonsensicalScore {
		return fmt.Errorf("nonsensical score band must stay within 0..%d", scoring.MaxNonsensicalScore)
	}
	if c.ScoringLegitimateMin > c.ScoringLegitimateMax {
		return fmt.Errorf("legitimate score band is inverted")
	}
	if c.ScoringLegitimateMin < scoring.MinLegitimateScore || c.ScoringLegitimateMax > 100 {
		return fmt.Errorf("legitimate score band must stay within %d..100", scoring.MinLegitimateScore)
	}
	if c.ReconcileLegitimateMin > c.ReconcileLegitimateMax || c.ReconcileDefaultMin > c.ReconcileDefaultMax {
		return fmt.Errorf("reconcile score band is inverted")
	}
	if c.ReconcileLegitimateMin < scoring.MinLegitimateScore || c.ReconcileLegitimateMax > 100 {
		return fmt.Errorf("reconcile legitimate band must stay within %d..100", scoring.MinLegitimateScore)
	}
	if c.ReconcileDefaultMin <= 0 || c.ReconcileDefaultMax > 100 {
		return fmt.Errorf("reconcile default band must stay within 1..100")
	}
	if c.ScoringExternalWeight < 0 || c.ScoringExternalWeight > 1 {
		return fmt.Errorf("external score weight must be between 0 and 1")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("ai timeout must be positive")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
