package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// ErrIdeaNotFound is returned when no stored idea carries the requested id.
var ErrIdeaNotFound = errors.New("idea not found")

// IdeaRepository persists the idea collection as a single document.
// Writes read the whole list, change it and write it back. Writers in the
// same process are serialised; across processes the last write wins.
type IdeaRepository interface {
	List(ctx context.Context) ([]models.Idea, error)
	FindByID(ctx context.Context, id string) (models.Idea, error)
	Save(ctx context.Context, idea models.Idea) (models.Idea, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, ideas []models.Idea) error
}

type ideaRepository struct {
	doc document[[]models.Idea]
	mu  sync.Mutex
}

// NewIdeaRepository stores ideas under KeyIdeas.
func NewIdeaRepository(store KeyValueStore) IdeaRepository {
	return &ideaRepository{doc: document[[]models.Idea]{store: store, key: KeyIdeas}}
}

func (r *ideaRepository) List(ctx context.Context) ([]models.Idea, error) {
	return r.load(ctx)
}

func (r *ideaRepository) FindByID(ctx context.Context, id string) (models.Idea, error) {
	ideas, err := r.load(ctx)
	if err != nil {
		return models.Idea{}, err
	}
	for _, idea := range ideas {
		if idea.ID == id {
			return idea, nil
		}
	}
	return models.Idea{}, ErrIdeaNotFound
}

// Save replaces the idea with the same id, or puts a new one at the front.
func (r *ideaRepository) Save(ctx context.Context, idea models.Idea) (models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ideas, err := r.load(ctx)
	if err != nil {
		return models.Idea{}, err
	}

	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	idea.Normalize()

	replaced := false
	for i := range ideas {
		if ideas[i].ID == idea.ID {
			ideas[i] = idea
			replaced = true
			break
		}
	}
	if !replaced {
		ideas = append([]models.Idea{idea}, ideas...)
	}

	if err := r.doc.save(ctx, ideas); err != nil {
		return models.Idea{}, err
	}
	return idea, nil
}

func (r *ideaRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ideas, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.ID != id {
			kept = append(kept, idea)
		}
	}
	if len(kept) == len(ideas) {
		return ErrIdeaNotFound
	}
	return r.doc.save(ctx, kept)
}

func (r *ideaRepository) ReplaceAll(ctx context.Context, ideas []models.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.ID == "" {
			idea.ID = uuid.NewString()
		}
		idea.Normalize()
		normalized = append(normalized, idea)
	}
	return r.doc.save(ctx, normalized)
}

// load normalises every record so older documents read like fresh ones.
func (r *ideaRepository) load(ctx context.Context) ([]models.Idea, error) {
	ideas, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		return []models.Idea{}, nil
	}
	for i := range ideas {
		if ideas[i].ID == "" {
			ideas[i].ID = uuid.NewString()
		}
		ideas[i].Normalize()
	}
	return ideas, nil
}
