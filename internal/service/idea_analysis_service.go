package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/observability"
	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/internal/scoring"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

const defaultAnalysisTimeout = 30 * time.Second

// IdeaAnalysisService runs submissions through validation, the external
// analyzer and score reconciliation.
type IdeaAnalysisService interface {
	Validate(ctx context.Context, payload dto.IdeaValidateRequest) (dto.QualityVerdictResponse, error)
	Analyze(ctx context.Context, payload dto.IdeaAnalyzeRequest) (dto.IdeaAnalysisResponse, error)
	Reanalyze(ctx context.Context, id string) (dto.IdeaAnalysisResponse, error)
}

// AnalysisConfig wires the scoring policy and the external analyzer.
type AnalysisConfig struct {
	Policy scoring.Policy
	// Analyzer may be nil, in which case AnalyzerErr explains why.
	Analyzer    ai.Analyzer
	AnalyzerErr error
	Timeout     time.Duration
}

type ideaAnalysisService struct {
	ideas         repository.IdeaRepository
	discovery     DiscoveryService
	sessions      SessionService
	notifications NotificationService
	analyzer      ai.Analyzer
	analyzerErr   error
	checker       *scoring.Validator
	reconciler    *scoring.Reconciler
	fallback      *scoring.Fallback
	timeout       time.Duration
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// pipelineResult is everything one pass through the pipeline produced.
type pipelineResult struct {
	verdict        scoring.QualityVerdict
	assessment     ai.Assessment
	reconciliation scoring.Reconciliation
	fallback       bool
	fallbackReason string
	outcome        AnalysisOutcome
}

// NewIdeaAnalysisService constructs the analysis pipeline. sessions and notifications may be nil.
func NewIdeaAnalysisService(ideas repository.IdeaRepository, discovery DiscoveryService, sessions SessionService, notifications NotificationService, cfg AnalysisConfig, validate *validator.Validate, logger zerolog.Logger) IdeaAnalysisService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAnalysisTimeout
	}
	analyzerErr := cfg.AnalyzerErr
	if cfg.Analyzer == nil && analyzerErr == nil {
		analyzerErr = ai.ErrMissingAPIKey
	}

	return &ideaAnalysisService{
		ideas:         ideas,
		discovery:     discovery,
		sessions:      sessions,
		notifications: notifications,
		analyzer:      cfg.Analyzer,
		analyzerErr:   analyzerErr,
		checker:       scoring.NewValidator(cfg.Policy),
		reconciler:    scoring.NewReconciler(cfg.Policy),
		fallback:      scoring.NewFallback(cfg.Policy),
		timeout:       timeout,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "idea_analysis_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/ideaforge-api/internal/service/analysis"),
	}
}

func (s *ideaAnalysisService) Validate(ctx context.Context, payload dto.IdeaValidateRequest) (dto.QualityVerdictResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QualityVerdictResponse{}, err
	}
	text := s.clean(payload.Text)
	if text == "" {
		return dto.QualityVerdictResponse{}, ErrEmptyIdea
	}
	return dto.NewQualityVerdictResponse(s.checker.Validate(text)), nil
}

func (s *ideaAnalysisService) Analyze(ctx context.Context, payload dto.IdeaAnalyzeRequest) (dto.IdeaAnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ideas.analyze")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.IdeaAnalysisResponse{}, err
	}

	text := s.clean(payload.Text)
	if text == "" {
		span.SetStatus(codes.Error, "empty idea")
		return dto.IdeaAnalysisResponse{}, ErrEmptyIdea
	}
	title := s.clean(payload.Title)

	result, err := s.run(ctx, ai.AssessmentInput{Text: text, Title: title, Category: payload.Category})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis blocked")
		return dto.IdeaAnalysisResponse{}, err
	}

	var similar *dto.SimilarIdeaResponse
	if s.discovery != nil {
		if hit, err := s.discovery.Search(ctx, text); err != nil {
			s.logger.Warn().Err(err).Msg("similarity lookup failed")
		} else if hit.Idea != nil {
			similar = &dto.SimilarIdeaResponse{ID: hit.Idea.ID, Title: hit.Idea.Title, Score: hit.Score}
		}
	}

	now := time.Now().UTC()
	idea := models.Idea{CreatedAt: now}
	s.apply(&idea, text, result)
	if title != "" {
		idea.Title = title
	}
	if payload.Category != "" {
		idea.Category = models.ParseCategory(payload.Category)
	}
	idea.Suggestions = result.assessment.Suggestions

	saved, err := s.ideas.Save(ctx, idea)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.IdeaAnalysisResponse{}, err
	}
	span.SetAttributes(
		attribute.String("idea.id", saved.ID),
		attribute.Int("idea.score", saved.MaturityScore),
		attribute.String("idea.source", string(saved.Source)),
	)

	s.afterWrite(ctx, saved, result)

	response := s.response(saved, result)
	response.SimilarTo = similar
	return response, nil
}

func (s *ideaAnalysisService) Reanalyze(ctx context.Context, id string) (dto.IdeaAnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ideas.reanalyze", trace.WithAttributes(attribute.String("idea.id", id)))
	defer span.End()

	existing, err := s.ideas.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return dto.IdeaAnalysisResponse{}, err
	}

	text := strings.TrimSpace(existing.AnalysisText())
	if text == "" {
		return dto.IdeaAnalysisResponse{}, ErrEmptyIdea
	}

	input := ai.AssessmentInput{Text: text, Title: existing.Title}
	if existing.Category != models.CategoryOther {
		input.Category = string(existing.Category)
	}
	result, err := s.run(ctx, input)
	if err != nil {
		span.RecordError(err)
		return dto.IdeaAnalysisResponse{}, err
	}

	idea := existing
	prior := existing.Suggestions
	s.apply(&idea, existing.Description, result)
	idea.Title = existing.Title
	if existing.Category != models.CategoryOther {
		idea.Category = existing.Category
	}
	idea.Suggestions = append(append([]string{}, result.assessment.Suggestions...), prior...)
	idea.UpdatedAt = time.Now().UTC()

	saved, err := s.ideas.Save(ctx, idea)
	if err != nil {
		span.RecordError(err)
		return dto.IdeaAnalysisResponse{}, err
	}

	s.afterWrite(ctx, saved, result)
	return s.response(saved, result), nil
}

// run validates the text, consults the analyzer when allowed and reconciles.
// Only a configuration problem is returned as an error.
func (s *ideaAnalysisService) run(ctx context.Context, input ai.AssessmentInput) (pipelineResult, error) {
	result := pipelineResult{verdict: s.checker.Validate(input.Text), outcome: OutcomeAnalyzed}
	input.Issues = result.verdict.Issues

	switch {
	case result.verdict.IsNonsensical:
		result.assessment = s.fallback.Synthesize(input.Text, result.verdict)
		result.fallback = true
		result.fallbackReason = "rejected"
		result.outcome = OutcomeRejected
		observability.AnalysesRejected().WithLabelValues("nonsensical").Inc()
	case s.analyzer == nil:
		observability.AnalysesRejected().WithLabelValues("configuration").Inc()
		return result, fmt.Errorf("%w: %v", ErrAnalyzerNotConfigured, s.analyzerErr)
	default:
		assessment, err := s.assess(ctx, input)
		if err != nil {
			if errors.Is(err, ai.ErrConfiguration) {
				observability.AnalysesRejected().WithLabelValues("configuration").Inc()
				return result, fmt.Errorf("%w: %v", ErrAnalyzerNotConfigured, err)
			}
			s.logger.Warn().Err(err).Str("kind", ai.ErrorKind(err)).Msg("external analysis failed, using local assessment")
			assessment = s.fallback.Synthesize(input.Text, result.verdict)
			result.fallback = true
			result.fallbackReason = ai.ErrorKind(err)
			result.outcome = OutcomeFallback
		}
		result.assessment = assessment
	}

	result.reconciliation = s.reconciler.Reconcile(result.verdict, result.assessment)

	source := result.assessment.Source
	if source == "" {
		source = ai.SourceLocal
	}
	observability.Analyses().WithLabelValues(source, string(result.reconciliation.Tier)).Inc()
	observability.MaturityScores().WithLabelValues(string(result.reconciliation.Tier)).Observe(float64(result.reconciliation.Score))

	return result, nil
}

func (s *ideaAnalysisService) assess(ctx context.Context, input ai.AssessmentInput) (ai.Assessment, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.analyzer.Assess(callCtx, input)
}

// apply copies the pipeline output onto idea. Identity, timestamps and star are left alone.
func (s *ideaAnalysisService) apply(idea *models.Idea, text string, result pipelineResult) {
	assessment := result.assessment
	reconciliation := result.reconciliation

	idea.Title = firstNonBlank(assessment.Title, scoring.DeriveTitle(text))
	idea.Description = text
	idea.Category = models.ParseCategory(assessment.Category)
	idea.Tags = assessment.Tags
	idea.PainPoints = assessment.PainPoints
	idea.Features = assessment.Features
	idea.UserPersonas = assessment.UserPersonas
	idea.MaturityScore = reconciliation.Score
	idea.DevelopmentStage = reconciliation.Stage
	idea.Source = models.SourceLocal
	if assessment.Source == ai.SourceModel {
		idea.Source = models.SourceAI
	}

	market := reconciliation.Market
	feasibility := reconciliation.Feasibility
	maturity := reconciliation.Maturity
	idea.MarketAnalysis = &market
	idea.FeasibilityAnalysis = &feasibility
	idea.MaturityAnalysis = &maturity

	issues := append([]string{}, result.verdict.Issues...)
	idea.Quality = &models.QualitySnapshot{
		Score:         result.verdict.Score,
		IsNonsensical: result.verdict.IsNonsensical,
		IsLegitimate:  result.verdict.IsLegitimate,
		Issues:        issues,
	}
}

func (s *ideaAnalysisService) afterWrite(ctx context.Context, idea models.Idea, result pipelineResult) {
	if s.discovery != nil {
		if _, err := s.discovery.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to refresh idea clusters")
		}
	}
	if s.sessions != nil {
		if err := s.sessions.Record(ctx, result.outcome); err != nil {
			s.logger.Warn().Err(err).Str("outcome", string(result.outcome)).Msg("failed to record session activity")
		}
	}
	if s.notifications != nil {
		if _, err := s.notifications.Publish(ctx, notificationFor(idea, result)); err != nil {
			s.logger.Warn().Err(err).Str("idea_id", idea.ID).Msg("failed to publish analysis notification")
		}
	}
}

func (s *ideaAnalysisService) response(idea models.Idea, result pipelineResult) dto.IdeaAnalysisResponse {
	adjustments := result.reconciliation.Adjustments
	if adjustments == nil {
		adjustments = []scoring.Adjustment{}
	}
	return dto.IdeaAnalysisResponse{
		Idea:           idea,
		Verdict:        dto.NewQualityVerdictResponse(result.verdict),
		Tier:           string(result.reconciliation.Tier),
		Source:         string(idea.Source),
		Fallback:       result.fallback,
		FallbackReason: result.fallbackReason,
		Adjustments:    adjustments,
	}
}

func (s *ideaAnalysisService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func notificationFor(idea models.Idea, result pipelineResult) dto.NotificationCreateRequest {
	request := dto.NotificationCreateRequest{IdeaID: idea.ID}
	switch result.outcome {
	case OutcomeRejected:
		request.Type = models.NotificationIdeaRejected
		request.Title = "Idea flagged"
		request.Message = fmt.Sprintf("%q scored %d: the business model does not hold up", idea.Title, idea.MaturityScore)
	case OutcomeFallback:
		request.Type = models.NotificationAnalysisFallback
		request.Title = "Offline analysis used"
		request.Message = fmt.Sprintf("%q was scored locally (%d) because the analyzer was unavailable", idea.Title, idea.MaturityScore)
	default:
		request.Type = models.NotificationAnalysisComplete
		request.Title = "Analysis complete"
		request.Message = fmt.Sprintf("%q scored %d and is %s", idea.Title, idea.MaturityScore, idea.DevelopmentStage)
	}
	return request
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
