package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideaforge",
		Subsystem: "ai",
		Name:      "assessment_duration_seconds",
		Help:      "Duration of external idea assessment requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideaforge",
		Subsystem: "ai",
		Name:      "assessment_failures_total",
		Help:      "Number of external idea assessment failures by kind",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the chat-completions analyzer.
type OpenAIConfig struct {
	APIKey      string
	KeyPrefix   string
	BaseURL     string
	Model       string
	SiteURL     string
	SiteName    string
	MaxTokens   int
	Temperature float32
	JSONMode    bool
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// OpenAIAnalyzer implements Analyzer against any OpenAI-compatible chat completion API.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAnalyzer builds a new analyzer. Credential problems are reported as
// ErrConfiguration without touching the network.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if err := ValidateAPIKey(cfg.APIKey, cfg.KeyPrefix); err != nil {
		return nil, err
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1200
	}

	tracer := otel.Tracer("github.com/noah-isme/ideaforge-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	config.HTTPClient = withHeaders(httpClient, map[string]string{
		"HTTP-Referer": cfg.SiteURL,
		"X-Title":      cfg.SiteName,
	})

	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "openai_analyzer").Logger(),
	}, nil
}

// Model returns the configured model identifier.
func (a *OpenAIAnalyzer) Model() string {
	return a.cfg.Model
}

// Assess sends one chat completion request and parses the reply. No retries are attempted.
func (a *OpenAIAnalyzer) Assess(parent context.Context, input AssessmentInput) (Assessment, error) {
	ctx, span := a.tracer.Start(parent, "openai.assess", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.Int("input.length", len(input.Text)),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analystSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
	}
	if a.cfg.JSONMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return Assessment{}, a.fail(span, fmt.Errorf("openai assess: %w", classifyError(err)))
	}

	if len(resp.Choices) == 0 {
		return Assessment{}, a.fail(span, ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	assessment, err := ParseAssessment(content)
	if err != nil {
		a.logger.Debug().Int("content_length", len(content)).Msg("model reply was not parseable")
		return Assessment{}, a.fail(span, err)
	}

	assessment.Source = SourceModel
	assessment.Model = a.cfg.Model
	span.SetAttributes(attribute.Int("usage.total_tokens", resp.Usage.TotalTokens))

	return assessment, nil
}

func (a *OpenAIAnalyzer) fail(span trace.Span, err error) error {
	aiFailures.WithLabelValues(a.cfg.Model, ErrorKind(err)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func analystSystemPrompt() string {
	return "You are a blunt startup analyst. Assess the idea the user describes and respond with a single JSON object " +
		"with the keys: title, description, category (one of technology, business, health, education, social, entertainment, other), " +
		"tags, painPoints, features, userPersonas, suggestions, strengths, weaknesses, nextSteps, risks, timeline, " +
		"score (0-100), realityCheck {marketDemand, competitionLevel, profitability, implementationDifficulty, fatalFlaws} " +
		"and marketAnalysis {size, competition, demand, targetAudience, trends}. Be honest about ideas that cannot make money."
}

func buildUserPrompt(input AssessmentInput) string {
	builder := strings.Builder{}
	if input.Title != "" {
		builder.WriteString("# Title\n")
		builder.WriteString(input.Title)
		builder.WriteString("\n\n")
	}
	builder.WriteString("# Idea\n")
	builder.WriteString(input.Text)
	if input.Category != "" {
		builder.WriteString("\n\n## Category hint\n")
		builder.WriteString(input.Category)
	}
	if len(input.Issues) > 0 {
		builder.WriteString("\n\n## Issues spotted by a pre-check\n")
		for _, issue := range input.Issues {
			builder.WriteString("- ")
			builder.WriteString(issue)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		if value != "" {
			clone.Header.Set(key, value)
		}
	}
	return t.base.RoundTrip(clone)
}

func withHeaders(client *http.Client, headers map[string]string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = headerTransport{base: base, headers: headers}
	return &wrapped
}
