package models

import "time"

// IdeaCluster groups ideas the similarity index considers alike.
type IdeaCluster struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	AnchorID  string    `json:"anchorId"`
	IdeaIDs   []string  `json:"ideaIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session tracks the activity of the current workspace.
type Session struct {
	ID                  string    `json:"id"`
	StartedAt           time.Time `json:"startedAt"`
	LastActiveAt        time.Time `json:"lastActiveAt"`
	IdeasAnalyzed       int       `json:"ideasAnalyzed"`
	FallbackAnalyses    int       `json:"fallbackAnalyses"`
	RejectedSubmissions int       `json:"rejectedSubmissions"`
}

// NotificationType values emitted by the analysis pipeline.
const (
	NotificationAnalysisComplete = "analysis_complete"
	NotificationAnalysisFallback = "analysis_fallback"
	NotificationIdeaRejected     = "idea_rejected"
	NotificationClusterFormed    = "cluster_formed"
)

// Notification is an in-app message about pipeline activity.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IdeaID    string    `json:"ideaId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
