package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/config"
	"github.com/noah-isme/ideaforge-api/internal/database"
	"github.com/noah-isme/ideaforge-api/internal/handler"
	"github.com/noah-isme/ideaforge-api/internal/middleware"
	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/internal/router"
	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/similarity"
	"github.com/noah-isme/ideaforge-api/internal/utils"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store, redisClient, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn := connectNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	ideaRepo := repository.NewIdeaRepository(store)
	clusterRepo := repository.NewClusterRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	analyzer, analyzerErr := ai.NewOpenAIAnalyzer(cfg.AnalyzerConfig(logger))
	analysisCfg := service.AnalysisConfig{
		Policy:  cfg.ScoringPolicy(),
		Timeout: cfg.AITimeout,
	}
	if analyzerErr != nil {
		logger.Warn().Err(analyzerErr).Msg("idea analyzer disabled; analysis requests will report a configuration error")
		analysisCfg.AnalyzerErr = analyzerErr
	} else {
		analysisCfg.Analyzer = analyzer
	}
	analyzerConfigured := analyzerErr == nil

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.BroadcastChannel, natsConn, validate, logger)
	sessionService := service.NewSessionService(sessionRepo, ideaRepo, analyzerConfigured, logger)
	discoveryService := service.NewDiscoveryService(ideaRepo, clusterRepo, notificationService, similarityConfig(cfg), logger)
	ideaService := service.NewIdeaService(ideaRepo, discoveryService, validate, logger)
	analysisService := service.NewIdeaAnalysisService(ideaRepo, discoveryService, sessionService, notificationService, analysisCfg, validate, logger)

	analyzeLimiter := middleware.RateLimit("analyze", cfg.AnalyzeRateLimit, cfg.AnalyzeRateWindow)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    256 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return utils.SendError(c, fiberErr.Code, fiberErr.Message)
			}
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		},
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowedOrigins: cfg.CORSAllowedOrigins})
	router.Register(app, cfg, router.Dependencies{
		IdeaHandler:         handler.NewIdeaHandler(analysisService, ideaService, analyzeLimiter, logger),
		DiscoveryHandler:    handler.NewDiscoveryHandler(discoveryService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.StreamKeepAlive*2),
		SessionHandler:      handler.NewSessionHandler(sessionService, logger),
		JWTMiddleware:       middleware.Optional(cfg.JWTSecret),
		AnalyzerConfigured:  analyzerConfigured,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("store", cfg.StoreDriver).Msg("ideaforge api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func openStore(cfg config.Config, logger zerolog.Logger) (repository.KeyValueStore, *redis.Client, error) {
	switch cfg.StoreDriver {
	case config.StoreSQL:
		db, err := database.OpenSQL(cfg.DatabaseDialect, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		// Redis is only needed for cross-instance notification relay here.
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; notifications stay local to this instance")
			redisClient = nil
		}
		return repository.NewSQLStore(db), redisClient, nil
	default:
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(redisClient, cfg.StoreKeyPrefix), redisClient, nil
	}
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName), nats.MaxReconnects(-1))
	if err != nil {
		logger.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats unavailable; continuing without it")
		return nil
	}
	return conn
}

func similarityConfig(cfg config.Config) similarity.Config {
	simCfg := similarity.DefaultConfig()
	if cfg.SimilarityQueryThreshold > 0 {
		simCfg.QueryThreshold = cfg.SimilarityQueryThreshold
	}
	if cfg.SimilarityClusterThreshold > 0 {
		simCfg.ClusterThreshold = cfg.SimilarityClusterThreshold
	}
	return simCfg
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
