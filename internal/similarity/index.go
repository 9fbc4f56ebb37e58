// Package similarity finds ideas that describe the same thing and groups them.
package similarity

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// Weights sets how much each idea field contributes to a similarity score.
type Weights struct {
	Title       float64
	Description float64
	Tags        float64
	PainPoints  float64
}

// Config tunes the index.
type Config struct {
	Weights          Weights
	QueryThreshold   float64
	ClusterThreshold float64
	// TokenMatch is the Jaro-Winkler similarity at which two words count as the same.
	TokenMatch float64
}

// DefaultConfig returns the weights and thresholds used by the service.
func DefaultConfig() Config {
	return Config{
		Weights:          Weights{Title: 0.4, Description: 0.3, Tags: 0.2, PainPoints: 0.1},
		QueryThreshold:   0.45,
		ClusterThreshold: 0.6,
		TokenMatch:       0.88,
	}
}

const fieldCount = 4

type document struct {
	idea   models.Idea
	fields [fieldCount]string
	tokens [fieldCount][]string
}

// Match is a query hit.
type Match struct {
	Idea  models.Idea `json:"idea"`
	Score float64     `json:"score"`
}

// Index is an immutable snapshot of the idea collection. Rebuild it whenever the collection changes.
type Index struct {
	cfg     Config
	weights [fieldCount]float64
	docs    []document
	dice    *metrics.SorensenDice
	jaro    *metrics.JaroWinkler
}

// Build indexes ideas in the given order; clustering depends on that order.
func Build(ideas []models.Idea, cfg Config) *Index {
	dice := metrics.NewSorensenDice()
	dice.CaseSensitive = false
	dice.NgramSize = 2

	jaro := metrics.NewJaroWinkler()
	jaro.CaseSensitive = false

	index := &Index{
		cfg:     cfg,
		weights: [fieldCount]float64{cfg.Weights.Title, cfg.Weights.Description, cfg.Weights.Tags, cfg.Weights.PainPoints},
		docs:    make([]document, 0, len(ideas)),
		dice:    dice,
		jaro:    jaro,
	}

	for _, idea := range ideas {
		doc := document{idea: idea}
		doc.fields = [fieldCount]string{
			normalize(idea.Title),
			normalize(idea.Description),
			normalize(strings.Join(idea.Tags, " ")),
			normalize(strings.Join(idea.PainPoints, " ")),
		}
		for i, field := range doc.fields {
			doc.tokens[i] = significantTokens(field)
		}
		index.docs = append(index.docs, doc)
	}

	return index
}

// Len reports the number of indexed ideas.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Query returns the best-matching idea above the query threshold, or nil.
// An empty index or an empty query never matches.
func (ix *Index) Query(text string) *Match {
	query := normalize(text)
	if query == "" || len(ix.docs) == 0 {
		return nil
	}
	queryTokens := significantTokens(query)

	var best *Match
	for _, doc := range ix.docs {
		score := ix.queryScore(query, queryTokens, doc)
		if score < ix.cfg.QueryThreshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{Idea: doc.idea, Score: score}
		}
	}
	return best
}

// Similarity compares two indexed ideas by position.
func (ix *Index) Similarity(i, j int) float64 {
	return ix.pairScore(ix.docs[i], ix.docs[j])
}

func (ix *Index) queryScore(query string, queryTokens []string, doc document) float64 {
	total, weightSum := 0.0, 0.0
	for i := 0; i < fieldCount; i++ {
		if doc.fields[i] == "" || ix.weights[i] <= 0 {
			continue
		}
		score := strutil.Similarity(query, doc.fields[i], ix.dice)
		if coverage := ix.coverage(queryTokens, doc.tokens[i]); coverage > score {
			score = coverage
		}
		total += score * ix.weights[i]
		weightSum += ix.weights[i]
	}
	if weightSum == 0 {
		return 0
	}
	return total / weightSum
}

func (ix *Index) pairScore(a, b document) float64 {
	total, weightSum := 0.0, 0.0
	for i := 0; i < fieldCount; i++ {
		if a.fields[i] == "" || b.fields[i] == "" || ix.weights[i] <= 0 {
			continue
		}
		score := strutil.Similarity(a.fields[i], b.fields[i], ix.dice)
		coverage := (ix.coverage(a.tokens[i], b.tokens[i]) + ix.coverage(b.tokens[i], a.tokens[i])) / 2
		if coverage > score {
			score = coverage
		}
		total += score * ix.weights[i]
		weightSum += ix.weights[i]
	}
	if weightSum == 0 {
		return 0
	}
	return total / weightSum
}

// coverage is the share of needle tokens that have a close match in haystack.
func (ix *Index) coverage(needle, haystack []string) float64 {
	if len(needle) == 0 || len(haystack) == 0 {
		return 0
	}
	hits := 0
	for _, token := range needle {
		for _, candidate := range haystack {
			if token == candidate || strutil.Similarity(token, candidate, ix.jaro) >= ix.cfg.TokenMatch {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(needle))
}

func normalize(text string) string {
	var builder strings.Builder
	space := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			space = false
			continue
		}
		if !space && builder.Len() > 0 {
			builder.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(builder.String())
}

var ignored = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {}, "into": {},
	"want": {}, "will": {}, "our": {}, "your": {}, "their": {}, "are": {}, "was": {}, "has": {},
}

func significantTokens(field string) []string {
	words := strings.Fields(field)
	out := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		if _, skip := ignored[word]; skip {
			continue
		}
		out = append(out, word)
	}
	return out
}
