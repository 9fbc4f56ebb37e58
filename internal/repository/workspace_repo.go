package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// ClusterRepository persists the most recent clustering result.
type ClusterRepository interface {
	List(ctx context.Context) ([]models.IdeaCluster, error)
	ReplaceAll(ctx context.Context, clusters []models.IdeaCluster) error
}

type clusterRepository struct {
	doc document[[]models.IdeaCluster]
}

// NewClusterRepository stores clusters under KeyClusters.
func NewClusterRepository(store KeyValueStore) ClusterRepository {
	return &clusterRepository{doc: document[[]models.IdeaCluster]{store: store, key: KeyClusters}}
}

func (r *clusterRepository) List(ctx context.Context) ([]models.IdeaCluster, error) {
	clusters, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	if clusters == nil {
		return []models.IdeaCluster{}, nil
	}
	for i := range clusters {
		clusters[i].CreatedAt = clusters[i].CreatedAt.UTC()
	}
	return clusters, nil
}

func (r *clusterRepository) ReplaceAll(ctx context.Context, clusters []models.IdeaCluster) error {
	if clusters == nil {
		clusters = []models.IdeaCluster{}
	}
	return r.doc.save(ctx, clusters)
}

// SessionRepository persists the single workspace session record.
type SessionRepository interface {
	Get(ctx context.Context) (models.Session, bool, error)
	Save(ctx context.Context, session models.Session) error
	// Update applies fn to the stored session under a process-wide lock.
	Update(ctx context.Context, fn func(*models.Session)) (models.Session, error)
}

type sessionRepository struct {
	doc document[*models.Session]
	mu  sync.Mutex
}

// NewSessionRepository stores the session under KeySession.
func NewSessionRepository(store KeyValueStore) SessionRepository {
	return &sessionRepository{doc: document[*models.Session]{store: store, key: KeySession}}
}

func (r *sessionRepository) Get(ctx context.Context) (models.Session, bool, error) {
	session, err := r.doc.load(ctx)
	if err != nil {
		return models.Session{}, false, err
	}
	if session == nil {
		return models.Session{}, false, nil
	}
	session.StartedAt = session.StartedAt.UTC()
	session.LastActiveAt = session.LastActiveAt.UTC()
	return *session, true, nil
}

func (r *sessionRepository) Save(ctx context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.save(ctx, &session)
}

func (r *sessionRepository) Update(ctx context.Context, fn func(*models.Session)) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, _, err := r.Get(ctx)
	if err != nil {
		return models.Session{}, err
	}
	fn(&session)
	if err := r.doc.save(ctx, &session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}
