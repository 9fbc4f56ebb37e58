package scoring

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxKeywords = 5

// Signals are the lightweight measurements taken from raw idea text.
type Signals struct {
	Length             int      `json:"length"`
	WordCount          int      `json:"wordCount"`
	SentenceCount      int      `json:"sentenceCount"`
	AvgWordLength      float64  `json:"avgWordLength"`
	HasRepeatedRun     bool     `json:"hasRepeatedRun"`
	KeyboardMash       bool     `json:"keyboardMash"`
	HasProblemKeyword  bool     `json:"hasProblemKeyword"`
	HasSolutionKeyword bool     `json:"hasSolutionKeyword"`
	BusinessTermHits   int      `json:"businessTermHits"`
	Keywords           []string `json:"keywords"`
}

// ExtractSignals measures text against the lexicon. It is total: any input,
// including the empty string, yields a value.
func ExtractSignals(text string, lexicon Lexicon) Signals {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Signals{}
	}

	lower := strings.ToLower(trimmed)
	words := tokenize(lower)

	signals := Signals{
		Length:         utf8.RuneCountInString(trimmed),
		WordCount:      len(words),
		SentenceCount:  len(splitSentences(trimmed)),
		HasRepeatedRun: hasRepeatedRun(lower, lexicon.RepeatRunLength),
		KeyboardMash:   looksMashed(lower, words, lexicon.MashSequences),
	}

	if len(words) > 0 {
		total := 0
		for _, word := range words {
			total += utf8.RuneCountInString(word)
		}
		signals.AvgWordLength = float64(total) / float64(len(words))
	}

	signals.HasProblemKeyword = containsAny(lower, words, lexicon.ProblemKeywords)
	signals.HasSolutionKeyword = containsAny(lower, words, lexicon.SolutionKeywords)
	for _, term := range lexicon.BusinessTerms {
		if matchesKeyword(lower, words, term) {
			signals.BusinessTermHits++
		}
	}
	signals.Keywords = topKeywords(words, lexicon.Stopwords, maxKeywords)

	return signals
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func splitSentences(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func hasRepeatedRun(text string, runLength int) bool {
	if runLength <= 1 {
		return false
	}

	var previous rune
	run := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			run = 0
			previous = 0
			continue
		}
		if r == previous {
			run++
		} else {
			previous = r
			run = 1
		}
		if run >= runLength {
			return true
		}
	}
	return false
}

func looksMashed(lower string, words []string, sequences []string) bool {
	for _, sequence := range sequences {
		if strings.Contains(lower, sequence) {
			return true
		}
	}
	for _, word := range words {
		if len(word) >= 7 && isASCIILetters(word) && !strings.ContainsAny(word, "aeiouy") {
			return true
		}
	}
	return false
}

func isASCIILetters(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}

func containsAny(lower string, words []string, keywords []string) bool {
	for _, keyword := range keywords {
		if matchesKeyword(lower, words, keyword) {
			return true
		}
	}
	return false
}

// matchesKeyword treats multi-word keywords as phrases, short keywords as whole
// words and everything else as a word prefix so stems like "frustrat" match.
func matchesKeyword(lower string, words []string, keyword string) bool {
	if strings.ContainsAny(keyword, " '") {
		return strings.Contains(lower, keyword)
	}
	for _, word := range words {
		if len(keyword) <= 3 {
			if word == keyword {
				return true
			}
			continue
		}
		if strings.HasPrefix(word, keyword) {
			return true
		}
	}
	return false
}

func topKeywords(words []string, stopwords map[string]struct{}, limit int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range words {
		word = strings.Trim(word, "'")
		if utf8.RuneCountInString(word) < 4 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
