package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// IdeaCategory enumerates the buckets an idea can be filed under.
type IdeaCategory string

const (
	CategoryTechnology    IdeaCategory = "technology"
	CategoryBusiness      IdeaCategory = "business"
	CategoryHealth        IdeaCategory = "health"
	CategoryEducation     IdeaCategory = "education"
	CategorySocial        IdeaCategory = "social"
	CategoryEntertainment IdeaCategory = "entertainment"
	CategoryOther         IdeaCategory = "other"
)

// IdeaCategories lists every valid category in display order.
var IdeaCategories = []IdeaCategory{
	CategoryTechnology,
	CategoryBusiness,
	CategoryHealth,
	CategoryEducation,
	CategorySocial,
	CategoryEntertainment,
	CategoryOther,
}

// ParseCategory normalises free text into a known category, defaulting to other.
func ParseCategory(value string) IdeaCategory {
	normalized := IdeaCategory(strings.ToLower(strings.TrimSpace(value)))
	for _, category := range IdeaCategories {
		if category == normalized {
			return category
		}
	}
	return CategoryOther
}

// DevelopmentStage tracks how far an idea has been worked out.
type DevelopmentStage string

const (
	StageRaw        DevelopmentStage = "raw"
	StageStructured DevelopmentStage = "structured"
	StageValidated  DevelopmentStage = "validated"
	StageDeveloped  DevelopmentStage = "developed"
)

// ParseStage returns the stage matching value, or false when unknown.
func ParseStage(value string) (DevelopmentStage, bool) {
	switch DevelopmentStage(strings.ToLower(strings.TrimSpace(value))) {
	case StageRaw:
		return StageRaw, true
	case StageStructured:
		return StageStructured, true
	case StageValidated:
		return StageValidated, true
	case StageDeveloped:
		return StageDeveloped, true
	}
	return "", false
}

// AnalysisSource records whether an analysis came from the external model or the local fallback.
type AnalysisSource string

const (
	SourceAI    AnalysisSource = "ai"
	SourceLocal AnalysisSource = "local"
)

// Caps applied whenever an idea is written. The length limits count runes.
const (
	MaxListEntries       = 8
	MaxSuggestions       = 20
	MaxTitleLength       = 120
	MaxDescriptionLength = 5000
)

// MarketAnalysis summarises the commercial outlook of an idea.
type MarketAnalysis struct {
	Score          int      `json:"score"`
	MarketSize     string   `json:"marketSize"`
	Competition    string   `json:"competition"`
	Demand         string   `json:"demand"`
	TargetAudience string   `json:"targetAudience"`
	Trends         []string `json:"trends"`
}

// FeasibilityAnalysis breaks the delivery risk of an idea into dimensions.
type FeasibilityAnalysis struct {
	Overall     int      `json:"overall"`
	Technical   int      `json:"technical"`
	Financial   int      `json:"financial"`
	Market      int      `json:"market"`
	Operational int      `json:"operational"`
	Timeline    string   `json:"timeline"`
	Risks       []string `json:"risks"`
}

// MaturityAnalysis explains the maturity score.
type MaturityAnalysis struct {
	Score      int      `json:"score"`
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	NextSteps  []string `json:"nextSteps"`
}

// QualitySnapshot keeps the verdict flags that were active when the idea was scored.
type QualitySnapshot struct {
	Score         int      `json:"score"`
	IsNonsensical bool     `json:"isNonsensical"`
	IsLegitimate  bool     `json:"isLegitimate"`
	Issues        []string `json:"issues"`
}

// Idea is the central persisted entity.
type Idea struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Category            IdeaCategory         `json:"category"`
	MaturityScore       int                  `json:"maturityScore"`
	Tags                []string             `json:"tags"`
	PainPoints          []string             `json:"painPoints"`
	Features            []string             `json:"features"`
	UserPersonas        []string             `json:"userPersonas"`
	DevelopmentStage    DevelopmentStage     `json:"developmentStage"`
	IsStarred           bool                 `json:"isStarred"`
	Source              AnalysisSource       `json:"source"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	LastViewedAt        *time.Time           `json:"lastViewedAt,omitempty"`
	MarketAnalysis      *MarketAnalysis      `json:"marketAnalysis,omitempty"`
	FeasibilityAnalysis *FeasibilityAnalysis `json:"feasibilityAnalysis,omitempty"`
	MaturityAnalysis    *MaturityAnalysis    `json:"maturityAnalysis,omitempty"`
	Quality             *QualitySnapshot     `json:"quality,omitempty"`
	Suggestions         []string             `json:"suggestions"`
}

// Normalize restores the invariants of a stored idea after it was decoded.
func (i *Idea) Normalize() {
	if i.Category == "" {
		i.Category = CategoryOther
	} else {
		i.Category = ParseCategory(string(i.Category))
	}
	if _, ok := ParseStage(string(i.DevelopmentStage)); !ok {
		i.DevelopmentStage = StageRaw
	}
	if i.MaturityScore < 0 {
		i.MaturityScore = 0
	}
	if i.MaturityScore > 100 {
		i.MaturityScore = 100
	}
	if i.Source == "" {
		i.Source = SourceLocal
	}

	i.CreatedAt = i.CreatedAt.UTC()
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = i.CreatedAt
	}
	i.UpdatedAt = i.UpdatedAt.UTC()
	if i.LastViewedAt != nil {
		viewed := i.LastViewedAt.UTC()
		i.LastViewedAt = &viewed
	}

	i.Title = TruncateRunes(strings.TrimSpace(i.Title), MaxTitleLength)
	i.Description = TruncateRunes(i.Description, MaxDescriptionLength)

	i.Tags = CapList(i.Tags, MaxListEntries)
	i.PainPoints = CapList(i.PainPoints, MaxListEntries)
	i.Features = CapList(i.Features, MaxListEntries)
	i.UserPersonas = CapList(i.UserPersonas, MaxListEntries)
	i.Suggestions = CapList(i.Suggestions, MaxSuggestions)
}

// AnalysisText returns the text fed back into the pipeline on re-analysis.
func (i Idea) AnalysisText() string {
	if strings.TrimSpace(i.Description) == "" {
		return i.Title
	}
	return i.Description
}

// TruncateRunes cuts value to at most limit runes.
func TruncateRunes(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

// CapList trims blanks, drops case-insensitive duplicates and keeps at most limit entries.
func CapList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
