package ai

import "context"

// AssessmentInput carries the idea text sent to the external model.
type AssessmentInput struct {
	Text     string
	Title    string
	Category string
	// Issues found by the local validator, forwarded so the model can address them.
	Issues []string
}

// RealityCheck is the qualitative critique section of an assessment.
type RealityCheck struct {
	MarketDemand             string   `json:"marketDemand,omitempty"`
	CompetitionLevel         string   `json:"competitionLevel,omitempty"`
	Profitability            string   `json:"profitability,omitempty"`
	ImplementationDifficulty string   `json:"implementationDifficulty,omitempty"`
	FatalFlaws               []string `json:"fatalFlaws,omitempty"`
}

// MarketInsight is the market section of an assessment.
type MarketInsight struct {
	Size           string   `json:"size,omitempty"`
	Competition    string   `json:"competition,omitempty"`
	Demand         string   `json:"demand,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty"`
	Trends         []string `json:"trends,omitempty"`
}

// Assessment is the structured critique of an idea. Every field is optional;
// callers must not assume anything was filled in.
type Assessment struct {
	Title        string        `json:"title,omitempty"`
	Description  string        `json:"description,omitempty"`
	Category     string        `json:"category,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	PainPoints   []string      `json:"painPoints,omitempty"`
	Features     []string      `json:"features,omitempty"`
	UserPersonas []string      `json:"userPersonas,omitempty"`
	Suggestions  []string      `json:"suggestions,omitempty"`
	Strengths    []string      `json:"strengths,omitempty"`
	Weaknesses   []string      `json:"weaknesses,omitempty"`
	NextSteps    []string      `json:"nextSteps,omitempty"`
	Risks        []string      `json:"risks,omitempty"`
	Timeline     string        `json:"timeline,omitempty"`
	Score        *float64      `json:"score,omitempty"`
	RealityCheck RealityCheck  `json:"realityCheck"`
	Market       MarketInsight `json:"market"`
	Source       string        `json:"source,omitempty"`
	Model        string        `json:"model,omitempty"`
}

// Sources reported on Assessment.Source.
const (
	SourceModel = "ai"
	SourceLocal = "local"
)

// Analyzer produces an assessment for a piece of idea text.
type Analyzer interface {
	Assess(ctx context.Context, input AssessmentInput) (Assessment, error)
}
