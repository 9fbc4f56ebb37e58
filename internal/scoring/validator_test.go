package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateLegitimateBakery(t *testing.T) {
	verdict := NewValidator(DefaultPolicy()).Validate("I want to open a bakery in Islamabad")

	require.True(t, verdict.IsLegitimate)
	require.False(t, verdict.IsNonsensical)
	require.True(t, verdict.IsValid)
	require.Equal(t, "storefront", verdict.MatchedRule)
	require.Equal(t, 65, verdict.Score, "storefront floor plus the place bonus")
}

func TestValidateNonsensicalBuyHighSellLow(t *testing.T) {
	verdict := NewValidator(DefaultPolicy()).Validate("buy high and sell low to everyone")

	require.True(t, verdict.IsNonsensical)
	require.False(t, verdict.IsValid)
	require.False(t, verdict.IsLegitimate)
	require.GreaterOrEqual(t, verdict.Score, 3)
	require.LessOrEqual(t, verdict.Score, 15)
	require.Equal(t, "buy_high_sell_low", verdict.MatchedRule)
	require.NotEmpty(t, verdict.Issues)
}

func TestValidateLegitimateIdeaWithLargeNumbers(t *testing.T) {
	validator := NewValidator(DefaultPolicy())

	verdict := validator.Validate("I want to open a bakery in Islamabad with a budget of 2000000 rupees.")
	require.False(t, verdict.IsNonsensical)
	require.True(t, verdict.IsLegitimate)
	require.Equal(t, "storefront", verdict.MatchedRule)
	require.GreaterOrEqual(t, verdict.Score, 65)

	verdict = validator.Validate("We plan to sell 100000 handmade candles online to gift shops across the country.")
	require.False(t, verdict.IsNonsensical)
	require.NotEqual(t, "repeated_characters", verdict.MatchedRule)
}

func TestValidateNonsensicalBeatsLegitimate(t *testing.T) {
	text := "Open a bakery where we buy expensive flour and sell bread cheaper than anyone."
	verdict := NewValidator(DefaultPolicy()).Validate(text)

	require.True(t, verdict.IsNonsensical)
	require.False(t, verdict.IsLegitimate)
	require.LessOrEqual(t, verdict.Score, 15)
}

func TestValidateRuleTables(t *testing.T) {
	validator := NewValidator(DefaultPolicy())

	nonsensical := []string{
		"We will sell phones at a loss forever",
		"My plan is to lose money on purpose every month",
		"asdfghjkl",
		"heeeeeelp",
		"We never charge anyone and pay users to sign up",
	}
	for _, text := range nonsensical {
		verdict := validator.Validate(text)
		require.True(t, verdict.IsNonsensical, text)
		require.LessOrEqual(t, verdict.Score, 15, text)
		require.False(t, verdict.IsValid, text)
	}

	legitimate := []string{
		"Start a small coffee shop near the university",
		"A tutoring service for high school maths",
		"Launch an online store for handmade rugs",
		"We want to teach coding classes to kids",
		"Open a consultancy",
	}
	for _, text := range legitimate {
		verdict := validator.Validate(text)
		require.True(t, verdict.IsLegitimate, text)
		require.False(t, verdict.IsNonsensical, text)
		require.GreaterOrEqual(t, verdict.Score, 50, text)
	}
}

func TestValidateEmptyInputDoesNotFail(t *testing.T) {
	verdict := NewValidator(DefaultPolicy()).Validate("")

	require.False(t, verdict.IsValid)
	require.False(t, verdict.IsNonsensical)
	require.GreaterOrEqual(t, verdict.Score, 0)
	require.LessOrEqual(t, verdict.Score, 100)
	require.Contains(t, verdict.Issues, "No idea text was provided")
}

func TestValidateRewardsDetail(t *testing.T) {
	validator := NewValidator(DefaultPolicy())
	short := validator.Validate("Dog walking")
	detailed := validator.Validate("Busy pet owners struggle to walk their dogs during work hours. " +
		"We will build an app that connects them with vetted walkers nearby. " +
		"Customers pay per walk and walkers keep most of the revenue. " +
		"The market in large cities is growing quickly.")

	require.Greater(t, detailed.Score, short.Score)
	require.True(t, detailed.IsValid)
	require.False(t, short.IsValid)
}

func TestValidateScoreAlwaysBounded(t *testing.T) {
	validator := NewValidator(DefaultPolicy())
	inputs := []string{"", "a", "x y z", "!!!???...", "Open a bakery", "buy high sell low"}
	for _, input := range inputs {
		verdict := validator.Validate(input)
		require.GreaterOrEqual(t, verdict.Score, 0, input)
		require.LessOrEqual(t, verdict.Score, 100, input)
		if verdict.IsNonsensical {
			require.LessOrEqual(t, verdict.Score, 15, input)
		}
		if verdict.IsLegitimate && !verdict.IsNonsensical {
			require.GreaterOrEqual(t, verdict.Score, 50, input)
		}
	}
}

func TestValidateHonoursConfiguredBands(t *testing.T) {
	policy := DefaultPolicy(WithNonsensicalBand(Band{Min: 1, Max: 5}), WithMinValidScore(70))
	validator := NewValidator(policy)

	require.LessOrEqual(t, validator.Validate("buy high and sell low").Score, 5)
	require.False(t, validator.Validate("I want to open a bakery in Islamabad").IsValid)
}
