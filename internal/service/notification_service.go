package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ideaforge-api/internal/dto"
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/observability"
	"github.com/noah-isme/ideaforge-api/internal/repository"
)

const notificationBufferSize = 16

// NotificationService publishes, stores and streams pipeline notifications.
type NotificationService interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, limit int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id string) (dto.NotificationResponse, error)
	Clear(ctx context.Context) error
	Subscribe(transport string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo      repository.NotificationRepository
	relays    []notificationRelay
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	local     *fanout
	nodeID    string
}

// relayEnvelope is the cross-node wire form of a notification.
type relayEnvelope struct {
	Origin       string                   `json:"origin"`
	Notification dto.NotificationResponse `json:"notification"`
	EmittedAt    time.Time                `json:"emitted_at"`
}

// NewNotificationService constructs a notification service. The redis client and
// nats connection are optional; without them notifications stay on this node.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	log := logger.With().Str("component", "notification_service").Logger()
	return &notificationService{
		repo:      repo,
		relays:    buildRelays(redisClient, natsConn, channelBase, log),
		validator: validate,
		logger:    log,
		tracer:    otel.Tracer("github.com/noah-isme/ideaforge-api/internal/service/notification"),
		sanitizer: bluemonday.StrictPolicy(),
		local:     newFanout(),
		nodeID:    uuid.NewString(),
	}
}

func (s *notificationService) Start(ctx context.Context) {
	for _, relay := range s.relays {
		if err := relay.listen(ctx, s.receive); err != nil {
			s.logger.Error().Err(err).Str("relay", relay.name()).Msg("notification relay unavailable")
		}
	}
}

func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	cleanTitle := s.clean(payload.Title)
	cleanMessage := s.clean(payload.Message)
	if cleanMessage == "" || cleanTitle == "" {
		return dto.NotificationResponse{}, errors.New("notification empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.String("notification.type", payload.Type),
		attribute.String("notification.idea_id", payload.IdeaID),
	))
	defer span.End()

	model := models.Notification{
		ID:        uuid.NewString(),
		Type:      payload.Type,
		Title:     cleanTitle,
		Message:   cleanMessage,
		IdeaID:    payload.IdeaID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Append(spanCtx, model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	s.fanOut(response)
	s.relay(spanCtx, response)

	observability.NotificationsPublishedTotal().WithLabelValues(response.Type).Inc()

	return response, nil
}

func (s *notificationService) List(ctx context.Context, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (dto.NotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(
		attribute.String("notification.id", id),
	))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *notificationService) Subscribe(transport string) (<-chan dto.NotificationResponse, func()) {
	id, channel := s.local.add(notificationBufferSize)
	gauge := observability.StreamClientsActive().WithLabelValues(transport)
	gauge.Inc()

	var once sync.Once
	return channel, func() {
		once.Do(func() {
			s.local.remove(id)
			gauge.Dec()
		})
	}
}

// clean strips markup and decodes the entities the sanitizer leaves behind.
func (s *notificationService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func (s *notificationService) fanOut(notification dto.NotificationResponse) {
	if dropped := s.local.deliver(notification); dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Str("notification_id", notification.ID).Msg("stream subscribers lagging")
	}
}

func (s *notificationService) relay(ctx context.Context, notification dto.NotificationResponse) {
	if len(s.relays) == 0 {
		return
	}

	payload, err := json.Marshal(relayEnvelope{
		Origin:       s.nodeID,
		Notification: notification,
		EmittedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification for relay")
		return
	}

	for _, relay := range s.relays {
		if err := relay.send(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Str("relay", relay.name()).Msg("failed to relay notification")
		}
	}
}

// receive handles events relayed from other nodes; local echoes are ignored.
func (s *notificationService) receive(payload []byte) {
	var envelope relayEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid relayed notification")
		return
	}
	if envelope.Origin == s.nodeID {
		return
	}

	notification := envelope.Notification
	if notification.Type == "" {
		notification.Type = "generic"
	}

	observability.NotificationsPublishedTotal().WithLabelValues(notification.Type).Inc()
	s.fanOut(notification)
}
