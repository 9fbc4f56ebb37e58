package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/observability"
	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/internal/similarity"
)

// DiscoveryService answers fuzzy searches and maintains idea clusters.
type DiscoveryService interface {
	Search(ctx context.Context, query string) (dto.IdeaSearchResponse, error)
	Clusters(ctx context.Context) ([]dto.IdeaClusterResponse, error)
	Refresh(ctx context.Context) ([]models.IdeaCluster, error)
}

type discoveryService struct {
	ideas         repository.IdeaRepository
	clusters      repository.ClusterRepository
	notifications NotificationService
	cfg           similarity.Config
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewDiscoveryService constructs the discovery service. notifications may be nil.
func NewDiscoveryService(ideas repository.IdeaRepository, clusters repository.ClusterRepository, notifications NotificationService, cfg similarity.Config, logger zerolog.Logger) DiscoveryService {
	return &discoveryService{
		ideas:         ideas,
		clusters:      clusters,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger.With().Str("component", "discovery_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/ideaforge-api/internal/service/discovery"),
	}
}

func (s *discoveryService) Search(ctx context.Context, query string) (dto.IdeaSearchResponse, error) {
	query = strings.TrimSpace(query)
	response := dto.IdeaSearchResponse{Query: query}
	if query == "" {
		return response, nil
	}

	ideas, err := s.ideas.List(ctx)
	if err != nil {
		return response, err
	}

	match := similarity.Build(ideas, s.cfg).Query(query)
	if match == nil {
		return response, nil
	}

	idea := match.Idea
	response.Idea = &idea
	response.Score = match.Score
	return response, nil
}

func (s *discoveryService) Clusters(ctx context.Context) ([]dto.IdeaClusterResponse, error) {
	clusters, err := s.clusters.List(ctx)
	if err != nil {
		return nil, err
	}
	ideas, err := s.ideas.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Idea, len(ideas))
	for _, idea := range ideas {
		byID[idea.ID] = idea
	}

	out := make([]dto.IdeaClusterResponse, 0, len(clusters))
	for _, cluster := range clusters {
		members := make([]dto.IdeaSummary, 0, len(cluster.IdeaIDs))
		for _, id := range cluster.IdeaIDs {
			if idea, ok := byID[id]; ok {
				members = append(members, dto.NewIdeaSummary(idea))
			}
		}
		out = append(out, dto.IdeaClusterResponse{IdeaCluster: cluster, Ideas: members})
	}
	return out, nil
}

// Refresh re-clusters the stored ideas in their stored order and persists the result.
// Clusters that survive a rebuild keep their original creation time.
func (s *discoveryService) Refresh(ctx context.Context) ([]models.IdeaCluster, error) {
	ctx, span := s.tracer.Start(ctx, "discovery.refresh")
	defer span.End()

	ideas, err := s.ideas.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	previous, err := s.clusters.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	known := make(map[string]time.Time, len(previous))
	for _, cluster := range previous {
		known[cluster.ID] = cluster.CreatedAt
	}

	now := time.Now().UTC()
	clusters := similarity.Build(ideas, s.cfg).Cluster()
	formed := make([]models.IdeaCluster, 0)
	for i := range clusters {
		if createdAt, ok := known[clusters[i].ID]; ok && !createdAt.IsZero() {
			clusters[i].CreatedAt = createdAt
			continue
		}
		clusters[i].CreatedAt = now
		formed = append(formed, clusters[i])
	}

	if err := s.clusters.ReplaceAll(ctx, clusters); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("discovery.ideas", len(ideas)),
		attribute.Int("discovery.clusters", len(clusters)),
	)
	observability.Clusters().Set(float64(len(clusters)))
	s.announce(ctx, formed)

	return clusters, nil
}

func (s *discoveryService) announce(ctx context.Context, formed []models.IdeaCluster) {
	if s.notifications == nil {
		return
	}
	for _, cluster := range formed {
		_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
			Type:    models.NotificationClusterFormed,
			Title:   "Similar ideas grouped",
			Message: fmt.Sprintf("%d ideas now share the %q cluster", len(cluster.IdeaIDs), cluster.Label),
			IdeaID:  cluster.AnchorID,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("cluster_id", cluster.ID).Msg("failed to announce cluster")
		}
	}
}
