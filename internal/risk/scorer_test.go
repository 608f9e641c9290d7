package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ZeroIncomeUsesFloors(t *testing.T) {
	profile := FinancialProfile{
		MonthlyIncome:   0,
		MonthlyExpenses: 5000,
	}

	assessment := Score(profile)

	// No divide-by-zero: the expense component degrades to its floor.
	assert.Equal(t, 0.0, assessment.RawScores["expense"])
	assert.Equal(t, 0.0, assessment.RawScores["income"])
	assert.Equal(t, CategoryVeryHigh, assessment.Category)
	assert.GreaterOrEqual(t, assessment.FinalScore, 300)
}

func TestScore_HighIncomeProfileLandsInLowRisk(t *testing.T) {
	profile := FinancialProfile{
		MonthlyIncome:        85000,
		MonthlyExpenses:      25000,
		AverageBalance:       60000,
		TransactionFrequency: 28,
		IncomeStability:      0.05,
		ExpensePatternScore:  0.8,
	}

	assessment := Score(profile)

	assert.Contains(t, []Category{CategoryLow, CategoryVeryLow}, assessment.Category)
	assert.Empty(t, assessment.RiskFactors)
}

func TestScore_BoundsHoldForAdversarialInputs(t *testing.T) {
	profiles := []FinancialProfile{
		{MonthlyIncome: 1e18, MonthlyExpenses: -1e18, AverageBalance: 1e18, TransactionFrequency: 1 << 30},
		{MonthlyIncome: -5000, MonthlyExpenses: 1e12, AverageBalance: -1e12, IncomeStability: -99, ExpensePatternScore: 99},
		{},
		{MonthlyIncome: 1, MonthlyExpenses: 1e9, TransactionFrequency: 1, IncomeStability: 1e9},
	}

	for _, p := range profiles {
		assessment := Score(p)
		assert.GreaterOrEqual(t, assessment.FinalScore, 300)
		assert.LessOrEqual(t, assessment.FinalScore, 900)
		for name, v := range assessment.ComponentScores {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 100.0, name)
		}
	}
}

func TestScore_NonFiniteInputDegrades(t *testing.T) {
	assessment := Score(FinancialProfile{MonthlyIncome: math.NaN()})

	assert.True(t, assessment.Degraded)
	assert.Equal(t, 500, assessment.FinalScore)
	assert.Equal(t, CategoryMedium, assessment.Category)
	assert.Equal(t, []string{"Data processing error"}, assessment.RiskFactors)
	assert.Equal(t, []string{"Please retry assessment"}, assessment.Recommendations)
}

func TestScore_FactorRulesAreOrderStable(t *testing.T) {
	profile := FinancialProfile{
		MonthlyIncome:        10000,
		MonthlyExpenses:      9500,
		AverageBalance:       500,
		TransactionFrequency: 4,
		IncomeStability:      0.6,
		ExpensePatternScore:  0.2,
	}

	assessment := Score(profile)

	require.Equal(t, []string{
		"Irregular income pattern",
		"High expense to income ratio",
		"Low average account balance",
		"Low transaction activity",
	}, assessment.RiskFactors)
	require.Equal(t, []string{
		"Consider building an emergency fund",
		"Review and optimize monthly expenses",
		"Diversify income sources for better stability",
	}, assessment.Recommendations)
}

func TestCategorize_CutPoints(t *testing.T) {
	assert.Equal(t, CategoryVeryLow, categorize(750))
	assert.Equal(t, CategoryLow, categorize(749))
	assert.Equal(t, CategoryLow, categorize(650))
	assert.Equal(t, CategoryMedium, categorize(649))
	assert.Equal(t, CategoryMedium, categorize(550))
	assert.Equal(t, CategoryHigh, categorize(549))
	assert.Equal(t, CategoryHigh, categorize(450))
	assert.Equal(t, CategoryVeryHigh, categorize(449))
}
