package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/ideaforge-api/internal/repository"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

var (
	// ErrAnalyzerNotConfigured is the only analysis failure surfaced to callers.
	ErrAnalyzerNotConfigured = fmt.Errorf("idea analyzer not configured: %w", ai.ErrConfiguration)
	// ErrEmptyIdea indicates the submission had no text left after sanitizing.
	ErrEmptyIdea = errors.New("idea text is empty")
	// ErrEmptyUpdate indicates an update request without any field set.
	ErrEmptyUpdate = errors.New("no fields to update")
	// ErrIdeaNotFound mirrors repository.ErrIdeaNotFound.
	ErrIdeaNotFound = repository.ErrIdeaNotFound
	// ErrNotificationNotFound mirrors repository.ErrNotificationNotFound.
	ErrNotificationNotFound = repository.ErrNotificationNotFound
)
