package dto

import (
	"time"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// NotificationListQuery limits the number of notifications returned.
type NotificationListQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IdeaID    string    `json:"ideaId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		IdeaID:    model.IdeaID,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// SessionResponse exposes the workspace session counters.
type SessionResponse struct {
	ID                  string    `json:"id"`
	StartedAt           time.Time `json:"startedAt"`
	LastActiveAt        time.Time `json:"lastActiveAt"`
	IdeasAnalyzed       int       `json:"ideasAnalyzed"`
	FallbackAnalyses    int       `json:"fallbackAnalyses"`
	RejectedSubmissions int       `json:"rejectedSubmissions"`
	StoredIdeas         int       `json:"storedIdeas"`
	AnalyzerConfigured  bool      `json:"analyzerConfigured"`
}

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	Type    string `json:"type" validate:"required,oneof=analysis_complete analysis_fallback idea_rejected cluster_formed"`
	Title   string `json:"title" validate:"required,min=1,max=160"`
	Message string `json:"message" validate:"required,min=1,max=2000"`
	IdeaID  string `json:"ideaId" validate:"omitempty,max=64"`
}
