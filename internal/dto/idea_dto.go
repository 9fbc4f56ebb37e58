package dto

import (
	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/internal/scoring"
)

// IdeaValidateRequest asks for a quality verdict without running the analysis.
type IdeaValidateRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// IdeaAnalyzeRequest submits idea text for the full analysis pipeline.
type IdeaAnalyzeRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=5000"`
	Title    string `json:"title" validate:"omitempty,max=120"`
	Category string `json:"category" validate:"omitempty,oneof=technology business health education social entertainment other"`
}

// IdeaUpdateRequest carries the editable fields of an idea. Nil fields are left untouched.
type IdeaUpdateRequest struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=120"`
	Description  *string   `json:"description" validate:"omitempty,max=5000"`
	Category     *string   `json:"category" validate:"omitempty,oneof=technology business health education social entertainment other"`
	Tags         *[]string `json:"tags" validate:"omitempty,max=8,dive,max=60"`
	PainPoints   *[]string `json:"painPoints" validate:"omitempty,max=8,dive,max=280"`
	Features     *[]string `json:"features" validate:"omitempty,max=8,dive,max=280"`
	UserPersonas *[]string `json:"userPersonas" validate:"omitempty,max=8,dive,max=120"`
}

// Empty reports whether the update changes nothing.
func (r IdeaUpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Category == nil &&
		r.Tags == nil && r.PainPoints == nil && r.Features == nil && r.UserPersonas == nil
}

// IdeaListQuery filters and sorts the idea collection.
type IdeaListQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=technology business health education social entertainment other"`
	Stage    string `query:"stage" validate:"omitempty,oneof=raw structured validated developed"`
	Starred  *bool  `query:"starred"`
	Sort     string `query:"sort" validate:"omitempty,oneof=recent score title"`
}

// QualityVerdictResponse is the public part of a validator verdict.
type QualityVerdictResponse struct {
	Score         int      `json:"score"`
	IsValid       bool     `json:"isValid"`
	IsNonsensical bool     `json:"isNonsensical"`
	IsLegitimate  bool     `json:"isLegitimate"`
	Issues        []string `json:"issues"`
	MatchedRule   string   `json:"matchedRule,omitempty"`
	Keywords      []string `json:"keywords"`
}

// NewQualityVerdictResponse converts a verdict into its wire form.
func NewQualityVerdictResponse(verdict scoring.QualityVerdict) QualityVerdictResponse {
	issues := verdict.Issues
	if issues == nil {
		issues = []string{}
	}
	keywords := verdict.Signals.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return QualityVerdictResponse{
		Score:         verdict.Score,
		IsValid:       verdict.IsValid,
		IsNonsensical: verdict.IsNonsensical,
		IsLegitimate:  verdict.IsLegitimate,
		Issues:        issues,
		MatchedRule:   verdict.MatchedRule,
		Keywords:      keywords,
	}
}

// SimilarIdeaResponse points at an existing idea that resembles the submission.
type SimilarIdeaResponse struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// IdeaAnalysisResponse is returned by analyze and reanalyze.
type IdeaAnalysisResponse struct {
	Idea           models.Idea            `json:"idea"`
	Verdict        QualityVerdictResponse `json:"verdict"`
	Tier           string                 `json:"tier"`
	Source         string                 `json:"source"`
	Fallback       bool                   `json:"fallback"`
	FallbackReason string                 `json:"fallbackReason,omitempty"`
	Adjustments    []scoring.Adjustment   `json:"adjustments"`
	SimilarTo      *SimilarIdeaResponse   `json:"similarTo,omitempty"`
}

// IdeaSearchResponse wraps the best search hit, or nil when nothing matched.
type IdeaSearchResponse struct {
	Query string       `json:"query"`
	Idea  *models.Idea `json:"idea"`
	Score float64      `json:"score"`
}

// IdeaClusterResponse is a cluster with its member ideas expanded.
type IdeaClusterResponse struct {
	models.IdeaCluster
	Ideas []IdeaSummary `json:"ideas"`
}

// IdeaSummary is the short form of an idea used inside clusters.
type IdeaSummary struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Category      models.IdeaCategory `json:"category"`
	MaturityScore int                 `json:"maturityScore"`
}

// NewIdeaSummary trims an idea down to its summary.
func NewIdeaSummary(idea models.Idea) IdeaSummary {
	return IdeaSummary{
		ID:            idea.ID,
		Title:         idea.Title,
		Category:      idea.Category,
		MaturityScore: idea.MaturityScore,
	}
}
