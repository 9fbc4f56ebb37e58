package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSignalsEmptyInput(t *testing.T) {
	lexicon := DefaultPolicy().Lexicon
	require.Equal(t, Signals{}, ExtractSignals("", lexicon))
	require.Equal(t, Signals{}, ExtractSignals("   \n\t", lexicon))
}

func TestExtractSignalsCountsStructure(t *testing.T) {
	text := "Parents struggle to find tutors. We will build an app that matches them!  ...  Really?"
	signals := ExtractSignals(text, DefaultPolicy().Lexicon)

	require.Equal(t, 3, signals.SentenceCount, "empty fragments between punctuation are dropped")
	require.Equal(t, 14, signals.WordCount)
	require.True(t, signals.HasProblemKeyword)
	require.True(t, signals.HasSolutionKeyword)
	require.False(t, signals.HasRepeatedRun)
	require.False(t, signals.KeyboardMash)
	require.Greater(t, signals.AvgWordLength, 3.0)
	require.Contains(t, signals.Keywords, "parents")
}

func TestExtractSignalsDetectsGibberish(t *testing.T) {
	lexicon := DefaultPolicy().Lexicon

	require.True(t, ExtractSignals("sooooo good", lexicon).HasRepeatedRun)
	require.False(t, ExtractSignals("!!!!!! wow", lexicon).HasRepeatedRun, "punctuation runs are ignored")
	require.False(t, ExtractSignals("a budget of 2000000 rupees", lexicon).HasRepeatedRun, "digit runs are ignored")
	require.True(t, ExtractSignals("asdfasdf jkjk", lexicon).KeyboardMash)
	require.True(t, ExtractSignals("xkcdprtz", lexicon).KeyboardMash)
	require.False(t, ExtractSignals("rhythm and blues", lexicon).KeyboardMash)
}

func TestExtractSignalsBusinessTerms(t *testing.T) {
	signals := ExtractSignals("Customers pay a monthly subscription and revenue grows with the market.", DefaultPolicy().Lexicon)
	require.Equal(t, 4, signals.BusinessTermHits)
}

func TestTopKeywordsOrdersByFrequencyThenFirstSeen(t *testing.T) {
	words := tokenize("bread bakery bread flour oven bakery bread butter sugar")
	keywords := topKeywords(words, DefaultPolicy().Lexicon.Stopwords, 3)
	require.Equal(t, []string{"bread", "bakery", "flour"}, keywords)
}
