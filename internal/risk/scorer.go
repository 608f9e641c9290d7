package risk

import "math"

// Component weights. They sum to 1 so the weighted score stays in [0,1] and
// the final score in [300,900].
const (
	weightIncome    = 0.25
	weightExpenses  = 0.20
	weightBalance   = 0.20
	weightFrequency = 0.15
	weightStability = 0.10
	weightPattern   = 0.10
)

// Reference points for component normalization.
const (
	incomeCeiling    = 100000.0
	balanceFloor     = 50000.0
	frequencyOptimum = 30.0

	scoreBase  = 300
	scoreRange = 600
)

// Score converts a FinancialProfile into an Assessment. Every component is
// clamped to [0,1] first, so arbitrary inputs cannot push the final score
// outside its bounds. Zero income degrades the expense and debt components
// to their floors instead of dividing by zero.
func Score(profile FinancialProfile) Assessment {
	if !finite(profile) {
		return DegradedAssessment()
	}

	incomeScore := clamp01(profile.MonthlyIncome / incomeCeiling)

	expenseRatio := 1.0
	if profile.MonthlyIncome > 0 {
		expenseRatio = profile.MonthlyExpenses / profile.MonthlyIncome
	}
	expenseScore := clamp01(1.0 - expenseRatio)

	balanceScore := 0.0
	if profile.AverageBalance > 0 {
		balanceScore = clamp01(profile.AverageBalance / balanceFloor)
	}

	frequencyScore := clamp01(float64(profile.TransactionFrequency) / frequencyOptimum)
	stabilityScore := clamp01(1.0 - profile.IncomeStability)
	patternScore := clamp01(profile.ExpensePatternScore)

	weighted := incomeScore*weightIncome +
		expenseScore*weightExpenses +
		balanceScore*weightBalance +
		frequencyScore*weightFrequency +
		stabilityScore*weightStability +
		patternScore*weightPattern

	finalScore := scoreBase + int(weighted*scoreRange)

	assessment := Assessment{
		FinalScore:    finalScore,
		Category:      categorize(finalScore),
		WeightedScore: weighted,
		ComponentScores: map[string]float64{
			"income_component":    incomeScore * 100,
			"expense_component":   expenseScore * 100,
			"balance_component":   balanceScore * 100,
			"frequency_component": frequencyScore * 100,
			"stability_component": stabilityScore * 100,
			"pattern_component":   patternScore * 100,
		},
		RawScores: map[string]float64{
			"income":    incomeScore,
			"expense":   expenseScore,
			"balance":   balanceScore,
			"frequency": frequencyScore,
			"stability": stabilityScore,
			"pattern":   patternScore,
		},
	}

	// Risk factors and recommendations are independent threshold rules,
	// emitted in a fixed order.
	if profile.IncomeStability > 0.3 {
		assessment.RiskFactors = append(assessment.RiskFactors, "Irregular income pattern")
	}
	if expenseRatio > 0.8 {
		assessment.RiskFactors = append(assessment.RiskFactors, "High expense to income ratio")
	}
	if profile.AverageBalance < 10000 {
		assessment.RiskFactors = append(assessment.RiskFactors, "Low average account balance")
	}
	if profile.TransactionFrequency < 10 {
		assessment.RiskFactors = append(assessment.RiskFactors, "Low transaction activity")
	}

	if profile.AverageBalance < 30000 {
		assessment.Recommendations = append(assessment.Recommendations, "Consider building an emergency fund")
	}
	if expenseRatio > 0.7 {
		assessment.Recommendations = append(assessment.Recommendations, "Review and optimize monthly expenses")
	}
	if profile.IncomeStability > 0.2 {
		assessment.Recommendations = append(assessment.Recommendations, "Diversify income sources for better stability")
	}

	return assessment
}

// DegradedAssessment is the neutral default returned when scoring cannot
// proceed. Callers get a structurally complete result instead of an error.
func DegradedAssessment() Assessment {
	return Assessment{
		FinalScore:      500,
		Category:        CategoryMedium,
		ComponentScores: map[string]float64{},
		RawScores:       map[string]float64{},
		RiskFactors:     []string{"Data processing error"},
		Recommendations: []string{"Please retry assessment"},
		Degraded:        true,
	}
}

func categorize(score int) Category {
	switch {
	case score >= 750:
		return CategoryVeryLow
	case score >= 650:
		return CategoryLow
	case score >= 550:
		return CategoryMedium
	case score >= 450:
		return CategoryHigh
	default:
		return CategoryVeryHigh
	}
}

func finite(p FinancialProfile) bool {
	for _, v := range []float64{
		p.MonthlyIncome, p.MonthlyExpenses, p.AverageBalance,
		p.IncomeStability, p.ExpensePatternScore,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.TransactionFrequency >= 0
}
