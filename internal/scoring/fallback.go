package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/ideaforge-api/internal/models"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

const maxTitleRunes = 60

// Fallback synthesises an assessment from local signals when the external model
// is skipped or unavailable. Output depends only on the input text and verdict.
type Fallback struct {
	policy Policy
}

// NewFallback builds a fallback synthesiser for the given policy.
func NewFallback(policy Policy) *Fallback {
	return &Fallback{policy: policy}
}

// Synthesize builds a local assessment for text.
func (f *Fallback) Synthesize(text string, verdict QualityVerdict) ai.Assessment {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	words := tokenize(lower)
	sentences := splitSentences(trimmed)
	lexicon := f.policy.Lexicon

	assessment := ai.Assessment{
		Title:       titleFrom(sentences),
		Description: trimmed,
		Category:    string(f.category(lower, words, verdict)),
		Tags:        append([]string{}, verdict.Signals.Keywords...),
		Source:      ai.SourceLocal,
	}
	if len(assessment.Tags) == 0 {
		assessment.Tags = topKeywords(words, lexicon.Stopwords, maxKeywords)
	}

	for _, sentence := range sentences {
		sentenceLower := strings.ToLower(sentence)
		sentenceWords := tokenize(sentenceLower)
		switch {
		case containsAny(sentenceLower, sentenceWords, lexicon.ProblemKeywords):
			assessment.PainPoints = append(assessment.PainPoints, sentence)
		case containsAny(sentenceLower, sentenceWords, lexicon.SolutionKeywords):
			assessment.Features = append(assessment.Features, sentence)
		}
	}

	for _, hint := range f.policy.Personas {
		if matchesKeyword(lower, words, hint.Stem) {
			assessment.UserPersonas = append(assessment.UserPersonas, hint.Label)
		}
	}

	if verdict.IsNonsensical {
		assessment.RealityCheck = ai.RealityCheck{
			MarketDemand:  "none",
			Profitability: "impossible",
			FatalFlaws:    append([]string{}, verdict.Issues...),
		}
		assessment.Suggestions = append([]string{}, verdict.Issues...)
		assessment.Suggestions = append(assessment.Suggestions,
			"Revisit the pricing model so each sale covers its cost",
			"Describe a customer who would pay for this and why",
		)
		return assessment
	}

	if len(assessment.PainPoints) == 0 {
		assessment.PainPoints = []string{"Problem statement needs clarification"}
	}
	if len(assessment.Features) == 0 {
		assessment.Features = []string{"Core offering to be defined"}
	}
	if len(assessment.UserPersonas) == 0 {
		assessment.UserPersonas = []string{"Early adopters"}
	}

	assessment.Suggestions = append([]string{}, verdict.Issues...)
	assessment.Suggestions = append(assessment.Suggestions,
		"Describe who has this problem and how often",
		"Explain how the idea makes money",
		"Name the closest existing alternatives",
	)
	assessment.Weaknesses = []string{"Assessed offline without market data"}

	return assessment
}

func (f *Fallback) category(lower string, words []string, verdict QualityVerdict) models.IdeaCategory {
	best := models.CategoryOther
	bestHits := 0
	for _, entry := range f.policy.Categories {
		hits := 0
		for _, keyword := range entry.Keywords {
			if matchesKeyword(lower, words, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			best = entry.Category
			bestHits = hits
		}
	}
	if bestHits == 0 && verdict.IsLegitimate {
		return models.CategoryBusiness
	}
	return best
}

func titleFrom(sentences []string) string {
	if len(sentences) == 0 {
		return "Untitled idea"
	}

	title := strings.Join(strings.Fields(sentences[0]), " ")
	if utf8.RuneCountInString(title) > maxTitleRunes {
		runes := []rune(title)
		cut := string(runes[:maxTitleRunes])
		if idx := strings.LastIndex(cut, " "); idx > maxTitleRunes/2 {
			cut = cut[:idx]
		}
		title = strings.TrimSpace(cut) + "..."
	}

	first, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(first)) + title[size:]
}

// DeriveTitle builds a display title from the first sentence of text.
func DeriveTitle(text string) string {
	return titleFrom(splitSentences(text))
}
