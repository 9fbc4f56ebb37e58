package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// MaxStoredNotifications bounds the persisted notification list.
const MaxStoredNotifications = 50

// ErrNotificationNotFound is returned when marking an unknown notification.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository handles persistence for notification entities.
type NotificationRepository interface {
	Append(ctx context.Context, notification models.Notification) error
	List(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (models.Notification, error)
	Clear(ctx context.Context) error
}

type notificationRepository struct {
	doc document[[]models.Notification]
	mu  sync.Mutex
}

// NewNotificationRepository stores notifications newest first under KeyNotifications.
func NewNotificationRepository(store KeyValueStore) NotificationRepository {
	return &notificationRepository{doc: document[[]models.Notification]{store: store, key: KeyNotifications}}
}

func (r *notificationRepository) Append(ctx context.Context, notification models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.doc.load(ctx)
	if err != nil {
		return err
	}

	notifications := append([]models.Notification{notification}, existing...)
	if len(notifications) > MaxStoredNotifications {
		notifications = notifications[:MaxStoredNotifications]
	}
	return r.doc.save(ctx, notifications)
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxStoredNotifications {
		limit = MaxStoredNotifications
	}

	notifications, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	for i := range notifications {
		notifications[i].CreatedAt = notifications[i].CreatedAt.UTC()
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notifications, err := r.doc.load(ctx)
	if err != nil {
		return models.Notification{}, err
	}

	for i := range notifications {
		if notifications[i].ID != id {
			continue
		}
		if notifications[i].Read {
			return notifications[i], nil
		}
		notifications[i].Read = true
		if err := r.doc.save(ctx, notifications); err != nil {
			return models.Notification{}, err
		}
		return notifications[i], nil
	}
	return models.Notification{}, ErrNotificationNotFound
}

func (r *notificationRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.save(ctx, []models.Notification{})
}
