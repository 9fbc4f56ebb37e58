package scoring

import (
	"math"
	"strings"

	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

// Tier is the legitimacy class that decides which bands apply to a final score.
type Tier string

const (
	TierNonsensical Tier = "nonsensical"
	TierLegitimate  Tier = "legitimate"
	TierStandard    Tier = "standard"
)

const (
	defaultMarketText   = "Market research required"
	defaultAudienceText = "Target audience to be defined"
	defaultTimelineText = "Timeline to be estimated"
)

// Adjustment records one step the reconciler applied to the score.
type Adjustment struct {
	Reason string `json:"reason"`
	Delta  int    `json:"delta"`
}

// Reconciliation is the final, bounded scoring of an idea.
type Reconciliation struct {
	Score       int                        `json:"score"`
	Tier        Tier                       `json:"tier"`
	Stage       models.DevelopmentStage    `json:"stage"`
	Market      models.MarketAnalysis      `json:"market"`
	Feasibility models.FeasibilityAnalysis `json:"feasibility"`
	Maturity    models.MaturityAnalysis    `json:"maturity"`
	Adjustments []Adjustment               `json:"adjustments"`
}

// Reconciler merges the local verdict with an assessment into the final score.
type Reconciler struct {
	policy Policy
}

// NewReconciler builds a reconciler for the given policy.
func NewReconciler(policy Policy) *Reconciler {
	return &Reconciler{policy: policy}
}

// Reconcile is pure and total: any verdict and assessment produce a bounded result.
func (r *Reconciler) Reconcile(verdict QualityVerdict, assessment ai.Assessment) Reconciliation {
	p := r.policy
	result := Reconciliation{Adjustments: []Adjustment{}}

	if verdict.IsNonsensical {
		result.Tier = TierNonsensical
		result.Score = p.Headroom.Clamp(p.NonsensicalBand.Clamp(verdict.Score))
		result.Stage = models.StageRaw
		r.fillDerived(&result, verdict, assessment)
		return result
	}

	band := p.ReconcileDefault
	result.Tier = TierStandard
	if verdict.IsLegitimate {
		band = p.ReconcileLegitimate
		result.Tier = TierLegitimate
	}

	score := float64(verdict.Score)
	if score > float64(band.Max) {
		score = float64(band.Max)
	}
	if external, ok := finiteScore(assessment.Score); ok && assessment.Source == ai.SourceModel && p.ExternalWeight > 0 {
		blended := (1-p.ExternalWeight)*score + p.ExternalWeight*external
		result.add("Blended with external score", int(math.Round(blended-score)))
		score = blended
	}

	score += float64(r.penalties(&result, assessment.RealityCheck))
	if capped, ok := profitabilityCap(assessment.RealityCheck.Profitability); ok && score > capped {
		result.add("Profitability described as impossible", int(math.Round(capped-score)))
		score = capped
	}
	score += float64(r.completeness(&result, assessment))

	final := band.Clamp(int(math.Round(score)))
	result.Score = p.Headroom.Clamp(final)
	result.Stage = stageFor(result.Score, assessment.Source)

	r.fillDerived(&result, verdict, assessment)
	return result
}

func finiteScore(score *float64) (float64, bool) {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return 0, false
	}
	return *score, true
}

func (r *Reconciliation) add(reason string, delta int) {
	if delta == 0 {
		return
	}
	r.Adjustments = append(r.Adjustments, Adjustment{Reason: reason, Delta: delta})
}

func (r *Reconciler) penalties(result *Reconciliation, check ai.RealityCheck) int {
	total := 0
	apply := func(reason string, delta int) {
		result.add(reason, delta)
		total += delta
	}

	demand := strings.ToLower(check.MarketDemand)
	switch {
	case containsWord(demand, "nonexistent", "none", "no demand", "zero"):
		apply("Market demand is nonexistent", -15)
	case containsWord(demand, "low", "weak"):
		apply("Market demand is low", -5)
	case containsWord(demand, "high", "strong"):
		apply("Market demand is strong", 3)
	}

	competition := strings.ToLower(check.CompetitionLevel)
	if containsWord(competition, "saturated", "very high", "intense") {
		apply("Market is saturated", -5)
	}

	if containsWord(strings.ToLower(check.Profitability), "low", "thin") {
		apply("Profitability is low", -5)
	}

	difficulty := strings.ToLower(check.ImplementationDifficulty)
	switch {
	case containsWord(difficulty, "impossible"):
		apply("Implementation is impossible", -10)
	case containsWord(difficulty, "very high", "extreme"):
		apply("Implementation is very difficult", -5)
	}

	flaws := meaningful(check.FatalFlaws)
	if len(flaws) > 1 {
		penalty := 5 * (len(flaws) - 1)
		if penalty > 20 {
			penalty = 20
		}
		apply("Multiple fatal flaws", -penalty)
	}

	return total
}

func (r *Reconciler) completeness(result *Reconciliation, assessment ai.Assessment) int {
	bonus := 0
	if len(meaningful(assessment.PainPoints)) >= 3 {
		bonus += 2
	}
	if len(meaningful(assessment.Features)) >= 3 {
		bonus += 2
	}
	if len(meaningful(assessment.UserPersonas)) >= 2 {
		bonus++
	}
	result.add("Completeness bonus", bonus)
	return bonus
}

func profitabilityCap(value string) (float64, bool) {
	if containsWord(strings.ToLower(value), "impossible", "none", "negative") {
		return 25, true
	}
	return 0, false
}

func stageFor(score int, source string) models.DevelopmentStage {
	if source != ai.SourceModel {
		return models.StageRaw
	}
	switch {
	case score >= 80:
		return models.StageDeveloped
	case score >= 65:
		return models.StageValidated
	case score >= 45:
		return models.StageStructured
	default:
		return models.StageRaw
	}
}

func (r *Reconciler) fillDerived(result *Reconciliation, verdict QualityVerdict, assessment ai.Assessment) {
	result.Market = r.market(result, assessment)
	result.Feasibility = r.feasibility(result, assessment)
	result.Maturity = r.maturity(result, verdict, assessment)
}

func (r *Reconciler) tierBand(tier Tier, nonsensical, legitimate, standard Band) Band {
	switch tier {
	case TierNonsensical:
		return nonsensical
	case TierLegitimate:
		return legitimate
	default:
		return standard
	}
}

func (r *Reconciler) market(result *Reconciliation, assessment ai.Assessment) models.MarketAnalysis {
	check := assessment.RealityCheck
	insight := assessment.Market

	demand := firstNonEmpty(insight.Demand, check.MarketDemand)
	score := result.Score
	lowered := strings.ToLower(demand)
	switch {
	case containsWord(lowered, "nonexistent", "none", "no demand"):
		score -= 25
	case containsWord(lowered, "low", "weak"):
		score -= 10
	case containsWord(lowered, "high", "strong"):
		score += 10
	}

	band := r.tierBand(result.Tier, Band{Min: 0, Max: 10}, Band{Min: 40, Max: 90}, Band{Min: 10, Max: 75})

	audience := insight.TargetAudience
	if audience == "" && len(assessment.UserPersonas) > 0 {
		audience = strings.Join(meaningful(assessment.UserPersonas), ", ")
	}

	return models.MarketAnalysis{
		Score:          band.Clamp(score),
		MarketSize:     firstNonEmpty(insight.Size, defaultMarketText),
		Competition:    firstNonEmpty(insight.Competition, check.CompetitionLevel, defaultMarketText),
		Demand:         firstNonEmpty(demand, defaultMarketText),
		TargetAudience: firstNonEmpty(audience, defaultAudienceText),
		Trends:         nonNil(meaningful(insight.Trends)),
	}
}

func (r *Reconciler) feasibility(result *Reconciliation, assessment ai.Assessment) models.FeasibilityAnalysis {
	check := assessment.RealityCheck

	technical := lookupLevel(check.ImplementationDifficulty, []levelScore{
		{"impossible", 10}, {"very high", 30}, {"extreme", 30}, {"high", 45}, {"hard", 45},
		{"medium", 65}, {"moderate", 65}, {"low", 80}, {"easy", 80},
	}, 60)

	financial := lookupLevel(check.Profitability, []levelScore{
		{"impossible", 10}, {"none", 10}, {"negative", 10}, {"low", 40}, {"thin", 40},
		{"medium", 60}, {"moderate", 60}, {"high", 80}, {"strong", 80},
	}, result.Score)

	operational := 55 + (result.Score-50)/5
	if result.Tier == TierLegitimate {
		operational += 10
	}

	risks := meaningful(append(append([]string{}, assessment.Risks...), check.FatalFlaws...))
	if len(risks) == 0 {
		risks = []string{"Unvalidated market assumptions"}
	}

	timeline := assessment.Timeline
	if result.Tier == TierNonsensical {
		financial = Band{Min: 0, Max: 10}.Clamp(financial)
		timeline = "Not viable in its current form"
	}

	marketScore := result.Market.Score
	band := r.tierBand(result.Tier, Band{Min: 0, Max: 15}, Band{Min: 40, Max: 90}, Band{Min: 5, Max: 80})
	unit := Band{Min: 0, Max: 100}
	technical = unit.Clamp(technical)
	financial = unit.Clamp(financial)
	operational = unit.Clamp(operational)
	overall := int(math.Round(float64(technical+financial+marketScore+operational) / 4))

	return models.FeasibilityAnalysis{
		Overall:     band.Clamp(overall),
		Technical:   technical,
		Financial:   financial,
		Market:      marketScore,
		Operational: operational,
		Timeline:    firstNonEmpty(timeline, defaultTimelineText),
		Risks:       models.CapList(risks, models.MaxListEntries),
	}
}

func (r *Reconciler) maturity(result *Reconciliation, verdict QualityVerdict, assessment ai.Assessment) models.MaturityAnalysis {
	summary := "An early concept that needs more structure"
	strengths := meaningful(assessment.Strengths)
	switch result.Tier {
	case TierNonsensical:
		summary = "The idea contradicts basic economics and needs rethinking"
	case TierLegitimate:
		summary = "A recognisable business model with room to validate"
		if len(strengths) == 0 {
			strengths = []string{"Proven business model"}
		}
	}
	if len(strengths) == 0 && len(meaningful(assessment.PainPoints)) > 0 {
		strengths = []string{"Clear problem statement"}
	}

	weaknesses := meaningful(append(append([]string{}, assessment.Weaknesses...), verdict.Issues...))

	nextSteps := meaningful(assessment.NextSteps)
	if len(nextSteps) == 0 {
		nextSteps = []string{
			"Interview five potential customers",
			"Estimate startup costs and pricing",
			"Sketch the smallest sellable version",
		}
	}

	return models.MaturityAnalysis{
		Score:      result.Score,
		Summary:    summary,
		Strengths:  models.CapList(strengths, models.MaxListEntries),
		Weaknesses: models.CapList(weaknesses, models.MaxListEntries),
		NextSteps:  models.CapList(nextSteps, models.MaxListEntries),
	}
}

type levelScore struct {
	level string
	score int
}

func lookupLevel(value string, levels []levelScore, fallback int) int {
	lowered := strings.ToLower(value)
	for _, candidate := range levels {
		if containsWord(lowered, candidate.level) {
			return candidate.score
		}
	}
	return fallback
}

// containsWord matches whole words or phrases so "low" does not hit "below".
func containsWord(value string, needles ...string) bool {
	if value == "" {
		return false
	}
	padded := " " + strings.Join(tokenize(strings.ToLower(value)), " ") + " "
	for _, needle := range needles {
		if strings.Contains(padded, " "+needle+" ") {
			return true
		}
	}
	return false
}

// meaningful drops blanks and placeholder entries such as "none" or "n/a".
func meaningful(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		switch strings.ToLower(strings.Trim(trimmed, ".")) {
		case "", "none", "n/a", "na", "none identified", "nothing", "unknown":
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
