package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/config"
	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/handler"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/internal/router"
	"github.com/noah-isme/ideaforge-api/internal/scoring"
	"github.com/noah-isme/ideaforge-api/internal/service"
	"github.com/noah-isme/ideaforge-api/internal/similarity"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

type stubAnalyzer struct {
	assessment ai.Assessment
	err        error
	calls      int32
}

func (s *stubAnalyzer) Assess(context.Context, ai.AssessmentInput) (ai.Assessment, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.assessment, s.err
}

func bakeryAssessment() ai.Assessment {
	score := 74.0
	return ai.Assessment{
		Title:        "Neighbourhood bakery in Islamabad",
		Category:     "business",
		Tags:         []string{"bakery", "food", "retail"},
		PainPoints:   []string{"Supermarket bread goes stale quickly"},
		Features:     []string{"Fresh morning bread", "Custom cakes"},
		UserPersonas: []string{"Young families"},
		Suggestions:  []string{"Pilot a weekend stall first"},
		Score:        &score,
		RealityCheck: ai.RealityCheck{MarketDemand: "high", CompetitionLevel: "moderate", Profitability: "moderate"},
		Source:       ai.SourceModel,
		Model:        "test-model",
	}
}

func newAPI(t *testing.T, analyzer ai.Analyzer) *fiber.App {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewRedisStore(client, "api-test")

	ideaRepo := repository.NewIdeaRepository(store)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(store), nil, "", nil, validate, logger)
	sessions := service.NewSessionService(repository.NewSessionRepository(store), ideaRepo, analyzer != nil, logger)
	discovery := service.NewDiscoveryService(ideaRepo, repository.NewClusterRepository(store), notifications, similarity.DefaultConfig(), logger)
	ideas := service.NewIdeaService(ideaRepo, discovery, validate, logger)

	analysisCfg := service.AnalysisConfig{Policy: scoring.DefaultPolicy(), Timeout: time.Second}
	if analyzer != nil {
		analysisCfg.Analyzer = analyzer
	} else {
		analysisCfg.AnalyzerErr = ai.ErrMissingAPIKey
	}
	analysis := service.NewIdeaAnalysisService(ideaRepo, discovery, sessions, notifications, analysisCfg, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "IdeaForge Test", AppEnv: "test", StoreDriver: config.StoreRedis}, router.Dependencies{
		IdeaHandler:         handler.NewIdeaHandler(analysis, ideas, nil, logger),
		DiscoveryHandler:    handler.NewDiscoveryHandler(discovery, logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, logger, time.Second),
		SessionHandler:      handler.NewSessionHandler(sessions, logger),
		AnalyzerConfigured:  analyzer != nil,
	})
	return app
}

func rawRequest(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func analysisSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "idea_analysis.schema.json"))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func decodeAnalysis(t *testing.T, raw []byte) dto.IdeaAnalysisResponse {
	t.Helper()
	var body struct {
		Data dto.IdeaAnalysisResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Data
}

func TestAPI_AnalyzeResponsesMatchContract(t *testing.T) {
	schema := analysisSchema(t)
	analyzer := &stubAnalyzer{assessment: bakeryAssessment()}
	app := newAPI(t, analyzer)

	cases := []string{
		`{"text":"I want to open a bakery in Islamabad"}`,
		`{"text":"buy high and sell low to everyone"}`,
		`{"text":"A bakery in Islamabad that opens early for commuters","title":"Commuter bakery"}`,
	}
	for _, body := range cases {
		status, raw := rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", body)
		require.Equal(t, fiber.StatusCreated, status, string(raw))

		var payload interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		require.NoError(t, schema.Validate(payload), string(raw))
	}
}

func TestAPI_LegitimateAndNonsensicalScenarios(t *testing.T) {
	analyzer := &stubAnalyzer{assessment: bakeryAssessment()}
	app := newAPI(t, analyzer)

	status, raw := rawRequest(t, app, http.MethodPost, "/api/v1/ideas/validate", `{"text":"I want to open a bakery in Islamabad"}`)
	require.Equal(t, fiber.StatusOK, status)
	var verdict struct {
		Data dto.QualityVerdictResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &verdict))
	require.Equal(t, 65, verdict.Data.Score)
	require.True(t, verdict.Data.IsLegitimate)

	status, raw = rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", `{"text":"I want to open a bakery in Islamabad"}`)
	require.Equal(t, fiber.StatusCreated, status)
	legit := decodeAnalysis(t, raw)
	require.Equal(t, "ai", legit.Source)
	require.GreaterOrEqual(t, legit.Idea.MaturityScore, 55)
	require.LessOrEqual(t, legit.Idea.MaturityScore, 85)

	status, raw = rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", `{"text":"buy high and sell low to everyone"}`)
	require.Equal(t, fiber.StatusCreated, status)
	broken := decodeAnalysis(t, raw)
	require.Equal(t, "local", broken.Source)
	require.True(t, broken.Fallback)
	require.Equal(t, "rejected", broken.FallbackReason)
	require.Equal(t, models.StageRaw, broken.Idea.DevelopmentStage)
	require.GreaterOrEqual(t, broken.Idea.MaturityScore, 3)
	require.LessOrEqual(t, broken.Idea.MaturityScore, 15)
	require.Equal(t, int32(1), atomic.LoadInt32(&analyzer.calls))

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/ideas?sort=score", "")
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Data []models.Idea `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Data, 2)
	require.Equal(t, legit.Idea.ID, list.Data[0].ID)

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, fiber.StatusOK, status)
	var session struct {
		Data dto.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &session))
	require.Equal(t, 2, session.Data.IdeasAnalyzed)
	require.Equal(t, 1, session.Data.RejectedSubmissions)
	require.Equal(t, 2, session.Data.StoredIdeas)
	require.True(t, session.Data.AnalyzerConfigured)

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, fiber.StatusOK, status)
	var notifications struct {
		Data []dto.NotificationResponse `json:"data"`
		Meta map[string]int             `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(raw, &notifications))
	require.Len(t, notifications.Data, 2)
	require.Equal(t, models.NotificationIdeaRejected, notifications.Data[0].Type)
	require.Equal(t, 2, notifications.Meta["unread"])

	status, _ = rawRequest(t, app, http.MethodPatch, "/api/v1/notifications/"+notifications.Data[0].ID+"/read", "")
	require.Equal(t, fiber.StatusOK, status)
	status, _ = rawRequest(t, app, http.MethodPatch, "/api/v1/notifications/unknown/read", "")
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestAPI_UnconfiguredAnalyzerBlocksOnlyExternalCalls(t *testing.T) {
	app := newAPI(t, nil)

	status, raw := rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", `{"text":"I want to open a bakery in Islamabad"}`)
	require.Equal(t, fiber.StatusServiceUnavailable, status)
	var body envelope
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "analyzer_not_configured", body.Code)

	status, _ = rawRequest(t, app, http.MethodPost, "/api/v1/ideas/validate", `{"text":"I want to open a bakery in Islamabad"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, fiber.StatusOK, status)
	var health struct {
		Data handler.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &health))
	require.False(t, health.Data.AnalyzerConfigured)
	require.Equal(t, "ok", health.Data.Status)
	require.Equal(t, config.StoreRedis, health.Data.Store)
}

func TestAPI_SearchAndClusters(t *testing.T) {
	analyzer := &stubAnalyzer{assessment: bakeryAssessment()}
	app := newAPI(t, analyzer)

	for i := 0; i < 2; i++ {
		status, _ := rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", `{"text":"I want to open a bakery in Islamabad"}`)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, raw := rawRequest(t, app, http.MethodGet, "/api/v1/ideas/search?q=bakery%20in%20Islamabad", "")
	require.Equal(t, fiber.StatusOK, status)
	var search struct {
		Data dto.IdeaSearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &search))
	require.NotNil(t, search.Data.Idea)

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/ideas/search?q=zzzz", "")
	require.Equal(t, fiber.StatusOK, status)
	search.Data = dto.IdeaSearchResponse{}
	require.NoError(t, json.Unmarshal(raw, &search))
	require.Nil(t, search.Data.Idea)

	status, raw = rawRequest(t, app, http.MethodGet, "/api/v1/ideas/clusters", "")
	require.Equal(t, fiber.StatusOK, status)
	var clusters struct {
		Data []dto.IdeaClusterResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &clusters))
	require.Len(t, clusters.Data, 1)
	require.Len(t, clusters.Data[0].Ideas, 2)
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	app := newAPI(t, &stubAnalyzer{assessment: bakeryAssessment()})
	status, _ := rawRequest(t, app, http.MethodPost, "/api/v1/ideas/analyze", `{"text":"I want to open a bakery in Islamabad"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, raw := rawRequest(t, app, http.MethodGet, "/api/v1/metrics", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Contains(t, string(raw), "ideaforge_analyses_total")
}
