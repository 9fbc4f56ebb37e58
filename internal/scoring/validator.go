package scoring

import (
	"strings"
)

// QualityVerdict is the outcome of validating a piece of idea text.
type QualityVerdict struct {
	Score         int      `json:"score"`
	IsValid       bool     `json:"isValid"`
	IsNonsensical bool     `json:"isNonsensical"`
	IsLegitimate  bool     `json:"isLegitimate"`
	Issues        []string `json:"issues"`
	MatchedRule   string   `json:"matchedRule,omitempty"`
	Signals       Signals  `json:"signals"`
}

// Validator scores idea text with the policy's rule tables.
type Validator struct {
	policy Policy
}

// NewValidator builds a validator for the given policy.
func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy exposes the rule table the validator was built with.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate never fails; empty or garbage input simply scores low.
func (v *Validator) Validate(text string) QualityVerdict {
	p := v.policy
	lower := strings.ToLower(strings.TrimSpace(text))
	signals := ExtractSignals(text, p.Lexicon)

	if verdict, ok := v.nonsensical(lower, signals); ok {
		return verdict
	}

	verdict := QualityVerdict{Signals: signals, Issues: []string{}}
	floor := 0
	for _, rule := range p.LegitimateRules {
		if rule.Pattern.MatchString(lower) {
			verdict.IsLegitimate = true
			verdict.MatchedRule = rule.Name
			floor = rule.Floor
			break
		}
	}
	if verdict.IsLegitimate && p.PlacePattern != nil && p.PlacePattern.MatchString(lower) {
		floor += p.PlaceBonus
		if p.MaxFloor > 0 && floor > p.MaxFloor {
			floor = p.MaxFloor
		}
	}

	score := p.BaseScore + v.adjust(signals, &verdict.Issues)

	band := p.DefaultBand
	if verdict.IsLegitimate {
		band = Band{Min: floor, Max: p.LegitimateBand.Max}
		if band.Min < p.LegitimateBand.Min {
			band.Min = p.LegitimateBand.Min
		}
	}
	score = band.Clamp(score)
	verdict.Score = Band{Min: 0, Max: 100}.Clamp(score)
	verdict.IsValid = verdict.Score >= p.MinValidScore

	if !verdict.IsValid {
		verdict.Issues = append(verdict.Issues, "Idea needs more detail before it can be analysed")
	}

	return verdict
}

func (v *Validator) nonsensical(lower string, signals Signals) (QualityVerdict, bool) {
	p := v.policy
	build := func(rule string, score int, issue string) QualityVerdict {
		return QualityVerdict{
			Score:         p.NonsensicalBand.Clamp(score),
			IsNonsensical: true,
			Issues:        []string{issue},
			MatchedRule:   rule,
			Signals:       signals,
		}
	}

	for _, rule := range p.NonsensicalRules {
		if rule.Pattern.MatchString(lower) {
			return build(rule.Name, rule.Score, rule.Issue), true
		}
	}
	if signals.KeyboardMash {
		return build("keyboard_mash", p.MashScore, "Text looks like random keyboard input"), true
	}
	if signals.HasRepeatedRun {
		return build("repeated_characters", p.RepetitionScore, "Text contains excessive character repetition"), true
	}
	return QualityVerdict{}, false
}

func (v *Validator) adjust(signals Signals, issues *[]string) int {
	delta := 0

	switch {
	case signals.Length == 0:
		delta -= 30
		*issues = append(*issues, "No idea text was provided")
	case signals.Length < 20:
		delta -= 20
		*issues = append(*issues, "Description is too short to evaluate")
	case signals.Length < 50:
		delta -= 10
		*issues = append(*issues, "Add more detail about how the idea works")
	case signals.Length > 200:
		delta += 10
	case signals.Length > 100:
		delta += 5
	}

	if signals.WordCount > 0 && signals.WordCount < 4 {
		delta -= 10
		*issues = append(*issues, "Use at least one full sentence")
	}
	if signals.WordCount > 0 && signals.AvgWordLength < 3 {
		delta -= 10
		*issues = append(*issues, "Words look truncated or abbreviated")
	}

	switch {
	case signals.SentenceCount >= 4:
		delta += 10
	case signals.SentenceCount >= 2:
		delta += 5
	}

	switch {
	case signals.HasProblemKeyword && signals.HasSolutionKeyword:
		delta += 10
	case signals.HasProblemKeyword || signals.HasSolutionKeyword:
		delta += 3
	}
	if signals.Length > 0 && !signals.HasProblemKeyword {
		*issues = append(*issues, "Describe the problem this idea solves")
	}
	if signals.Length > 0 && !signals.HasSolutionKeyword {
		*issues = append(*issues, "Explain how the idea addresses the problem")
	}

	business := signals.BusinessTermHits * 2
	if business > 10 {
		business = 10
	}
	delta += business

	return delta
}
