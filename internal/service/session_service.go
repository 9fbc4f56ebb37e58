package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/repository"
)

// AnalysisOutcome classifies a finished analysis for the session counters.
type AnalysisOutcome string

const (
	OutcomeAnalyzed AnalysisOutcome = "analyzed"
	OutcomeFallback AnalysisOutcome = "fallback"
	OutcomeRejected AnalysisOutcome = "rejected"
)

// SessionService keeps the workspace session record.
type SessionService interface {
	Current(ctx context.Context) (dto.SessionResponse, error)
	Record(ctx context.Context, outcome AnalysisOutcome) error
}

type sessionService struct {
	repo               repository.SessionRepository
	ideas              repository.IdeaRepository
	analyzerConfigured bool
	logger             zerolog.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo repository.SessionRepository, ideas repository.IdeaRepository, analyzerConfigured bool, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:               repo,
		ideas:              ideas,
		analyzerConfigured: analyzerConfigured,
		logger:             logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) Current(ctx context.Context) (dto.SessionResponse, error) {
	started := false
	session, err := s.repo.Update(ctx, func(session *models.Session) {
		started = ensureSession(session, time.Now().UTC())
	})
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if started {
		s.logger.Info().Str("session_id", session.ID).Msg("workspace session started")
	}

	ideas, err := s.ideas.List(ctx)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	return dto.SessionResponse{
		ID:                  session.ID,
		StartedAt:           session.StartedAt,
		LastActiveAt:        session.LastActiveAt,
		IdeasAnalyzed:       session.IdeasAnalyzed,
		FallbackAnalyses:    session.FallbackAnalyses,
		RejectedSubmissions: session.RejectedSubmissions,
		StoredIdeas:         len(ideas),
		AnalyzerConfigured:  s.analyzerConfigured,
	}, nil
}

func (s *sessionService) Record(ctx context.Context, outcome AnalysisOutcome) error {
	_, err := s.repo.Update(ctx, func(session *models.Session) {
		now := time.Now().UTC()
		ensureSession(session, now)
		session.LastActiveAt = now
		session.IdeasAnalyzed++
		switch outcome {
		case OutcomeFallback:
			session.FallbackAnalyses++
		case OutcomeRejected:
			session.RejectedSubmissions++
		}
	})
	return err
}

// ensureSession reports whether a new session had to be created.
func ensureSession(session *models.Session, now time.Time) bool {
	created := session.ID == ""
	if created {
		session.ID = uuid.NewString()
		session.StartedAt = now
	}
	if session.LastActiveAt.IsZero() {
		session.LastActiveAt = now
	}
	return created
}
