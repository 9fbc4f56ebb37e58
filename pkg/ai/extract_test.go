package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONSkipsBracesInsideStrings(t *testing.T) {
	content := `Result: {"title":"Use {curly} braces","tags":["a","b"]} trailing }`
	span, err := ExtractJSON(content)
	require.NoError(t, err)
	require.Equal(t, `{"title":"Use {curly} braces","tags":["a","b"]}`, span)
}

func TestExtractJSONSkipsInvalidCandidates(t *testing.T) {
	span, err := ExtractJSON(`{oops} then [1, 2, 3]`)
	require.NoError(t, err)
	require.Equal(t, `[1, 2, 3]`, span)
}

func TestExtractJSONWithoutJSON(t *testing.T) {
	_, err := ExtractJSON("no structured data here")
	require.ErrorIs(t, err, ErrUnparseableResponse)

	_, err = ExtractJSON(`{"unterminated": true`)
	require.ErrorIs(t, err, ErrUnparseableResponse)
}

func TestParseAssessmentLenientShapes(t *testing.T) {
	content := `[{
		"Title": "Meal kits",
		"keyFeatures": "- Weekly box\n- Recipe cards\n2. Delivery tracking",
		"personas": "busy parents, students",
		"maturity_score": "7.5/10",
		"marketAnalysis": {"market_size": "Large", "trends": ["home cooking"]},
		"realityCheck": {"difficulty": "medium", "fatalFlaws": [{"description": "thin margins"}]}
	}]`

	assessment, err := ParseAssessment(content)
	require.NoError(t, err)
	require.Equal(t, "Meal kits", assessment.Title)
	require.Equal(t, []string{"Weekly box", "Recipe cards", "Delivery tracking"}, assessment.Features)
	require.Equal(t, []string{"busy parents", "students"}, assessment.UserPersonas)
	require.NotNil(t, assessment.Score)
	require.InDelta(t, 75.0, *assessment.Score, 0.001)
	require.Equal(t, "Large", assessment.Market.Size)
	require.Equal(t, []string{"home cooking"}, assessment.Market.Trends)
	require.Equal(t, "medium", assessment.RealityCheck.ImplementationDifficulty)
	require.Equal(t, []string{"thin margins"}, assessment.RealityCheck.FatalFlaws)
}

func TestParseAssessmentDropsNonFiniteScores(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Infinity"`, `"+Inf/10"`} {
		assessment, err := ParseAssessment(`{"title": "Meal kits", "score": ` + raw + `}`)
		require.NoError(t, err, raw)
		require.Nil(t, assessment.Score, raw)
		require.Equal(t, "Meal kits", assessment.Title)
	}
}

func TestParseAssessmentRejectsScalarArrays(t *testing.T) {
	_, err := ParseAssessment(`[1, 2, 3]`)
	require.ErrorIs(t, err, ErrUnparseableResponse)
}
