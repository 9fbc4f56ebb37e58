package service

import (
	"context"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/repository"
)

// IdeaService exposes read and edit operations on stored ideas.
type IdeaService interface {
	List(ctx context.Context, query dto.IdeaListQuery) ([]models.Idea, error)
	Get(ctx context.Context, id string) (models.Idea, error)
	Update(ctx context.Context, id string, payload dto.IdeaUpdateRequest) (models.Idea, error)
	ToggleStar(ctx context.Context, id string) (models.Idea, error)
	Delete(ctx context.Context, id string) error
}

type ideaService struct {
	repo      repository.IdeaRepository
	discovery DiscoveryService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewIdeaService constructs the idea service.
func NewIdeaService(repo repository.IdeaRepository, discovery DiscoveryService, validate *validator.Validate, logger zerolog.Logger) IdeaService {
	return &ideaService{
		repo:      repo,
		discovery: discovery,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "idea_service").Logger(),
	}
}

func (s *ideaService) List(ctx context.Context, query dto.IdeaListQuery) ([]models.Idea, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	ideas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if query.Category != "" && string(idea.Category) != query.Category {
			continue
		}
		if query.Stage != "" && string(idea.DevelopmentStage) != query.Stage {
			continue
		}
		if query.Starred != nil && idea.IsStarred != *query.Starred {
			continue
		}
		filtered = append(filtered, idea)
	}

	switch query.Sort {
	case "score":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].MaturityScore > filtered[j].MaturityScore
		})
	case "title":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Title) < strings.ToLower(filtered[j].Title)
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].UpdatedAt.After(filtered[j].UpdatedAt)
		})
	}

	return filtered, nil
}

func (s *ideaService) Get(ctx context.Context, id string) (models.Idea, error) {
	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Idea{}, err
	}

	viewed := time.Now().UTC()
	idea.LastViewedAt = &viewed
	saved, err := s.repo.Save(ctx, idea)
	if err != nil {
		s.logger.Warn().Err(err).Str("idea_id", id).Msg("failed to stamp last viewed time")
		return idea, nil
	}
	return saved, nil
}

func (s *ideaService) Update(ctx context.Context, id string, payload dto.IdeaUpdateRequest) (models.Idea, error) {
	if payload.Empty() {
		return models.Idea{}, ErrEmptyUpdate
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Idea{}, err
	}

	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Idea{}, err
	}

	if payload.Title != nil {
		if title := s.clean(*payload.Title); title != "" {
			idea.Title = title
		}
	}
	if payload.Description != nil {
		idea.Description = s.clean(*payload.Description)
	}
	if payload.Category != nil {
		idea.Category = models.ParseCategory(*payload.Category)
	}
	if payload.Tags != nil {
		idea.Tags = s.cleanList(*payload.Tags)
	}
	if payload.PainPoints != nil {
		idea.PainPoints = s.cleanList(*payload.PainPoints)
	}
	if payload.Features != nil {
		idea.Features = s.cleanList(*payload.Features)
	}
	if payload.UserPersonas != nil {
		idea.UserPersonas = s.cleanList(*payload.UserPersonas)
	}
	idea.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Save(ctx, idea)
	if err != nil {
		return models.Idea{}, err
	}
	s.refresh(ctx)
	return saved, nil
}

func (s *ideaService) ToggleStar(ctx context.Context, id string) (models.Idea, error) {
	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Idea{}, err
	}

	idea.IsStarred = !idea.IsStarred
	idea.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Save(ctx, idea)
	if err != nil {
		return models.Idea{}, err
	}
	s.refresh(ctx)
	return saved, nil
}

func (s *ideaService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

func (s *ideaService) refresh(ctx context.Context) {
	if s.discovery == nil {
		return
	}
	if _, err := s.discovery.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh idea clusters")
	}
}

func (s *ideaService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func (s *ideaService) cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, s.clean(value))
	}
	return models.CapList(out, models.MaxListEntries)
}
