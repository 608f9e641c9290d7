package risk

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Underwriting component weights.
const (
	underwriteWeightCredit   = 0.40
	underwriteWeightIncome   = 0.25
	underwriteWeightDebt     = 0.25
	underwriteWeightIdentity = 0.10
)

// Identity risk levels depending on whether a verified, non-fallback proof
// accompanies the application.
const (
	identityRiskVerified   = 0.1
	identityRiskUnverified = 0.5
)

// Underwrite produces a comprehensive decision for the applicant.
// identityVerified reports whether a real proof backs the applicant's
// identity; without one the identity component carries medium risk.
func Underwrite(applicant Applicant, identityVerified bool, rng *rand.Rand) UnderwritingResult {
	start := time.Now()

	risks := ComponentRisks{
		Credit:   creditRisk(applicant.CreditScore),
		Income:   incomeRisk(applicant.Income, applicant.EmploymentYears),
		Debt:     debtRisk(applicant.DebtToIncomeRatio),
		Identity: identityRiskUnverified,
	}
	if identityVerified {
		risks.Identity = identityRiskVerified
	}
	risks.Overall = risks.Credit*underwriteWeightCredit +
		risks.Income*underwriteWeightIncome +
		risks.Debt*underwriteWeightDebt +
		risks.Identity*underwriteWeightIdentity

	level := LevelVeryHigh
	switch {
	case risks.Overall <= 0.3:
		level = LevelLow
	case risks.Overall <= 0.5:
		level = LevelMedium
	case risks.Overall <= 0.7:
		level = LevelHigh
	}

	decision, maxAmount, rateBps, conditions := decide(applicant, risks.Overall)

	// Confidence tracks the inverse of risk with a little jitter, clamped
	// to a sane band.
	confidence := 1 - risks.Overall + (rng.Float64()*0.2 - 0.1)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < 0.5 {
		confidence = 0.5
	}

	return UnderwritingResult{
		Decision:          decision,
		Level:             level,
		Risks:             risks,
		Confidence:        confidence,
		MaxApprovedAmount: maxAmount,
		RateAdjustmentBps: rateBps,
		Conditions:        conditions,
		Explanation:       explain(decision, risks),
		ProcessingMs:      float64(time.Since(start).Microseconds()) / 1000.0,
	}
}

func decide(applicant Applicant, overall float64) (Decision, *float64, int, []string) {
	loanToIncome := 999.0
	if applicant.Income > 0 {
		loanToIncome = applicant.LoanAmount / applicant.Income
	}

	switch {
	case overall <= 0.3 && loanToIncome <= 4:
		amount := applicant.LoanAmount
		return DecisionApproved, &amount, 0, []string{"Standard terms apply"}
	case overall <= 0.5 && loanToIncome <= 5:
		amount := min(applicant.LoanAmount, applicant.Income*4)
		return DecisionConditionallyApproved, &amount, 25, []string{
			"Income verification required",
			"Collateral assessment needed",
		}
	case overall <= 0.7:
		amount := min(applicant.LoanAmount*0.8, applicant.Income*3)
		return DecisionManualReview, &amount, 50, []string{
			"Manual underwriter review",
			"Additional documentation required",
			"Co-signer may be needed",
		}
	default:
		return DecisionDeclined, nil, 0, []string{"Risk level too high for automatic approval"}
	}
}

func explain(decision Decision, risks ComponentRisks) string {
	var factors []string
	if risks.Credit <= 0.3 {
		factors = append(factors, "Excellent credit score")
	} else if risks.Credit >= 0.7 {
		factors = append(factors, "Credit score requires attention")
	}
	if risks.Debt <= 0.3 {
		factors = append(factors, "Low debt-to-income ratio")
	} else if risks.Debt >= 0.7 {
		factors = append(factors, "High debt burden")
	}
	if risks.Identity <= 0.2 {
		factors = append(factors, "Identity verified with ZK proof")
	}

	explanation := fmt.Sprintf("Decision: %s. ", decision)
	if len(factors) > 0 {
		explanation += "Key factors: " + strings.Join(factors, ", ") + "."
	}
	return explanation
}

func creditRisk(creditScore int) float64 {
	switch {
	case creditScore >= 750:
		return 0.1
	case creditScore >= 700:
		return 0.3
	case creditScore >= 650:
		return 0.5
	case creditScore >= 600:
		return 0.7
	default:
		return 0.9
	}
}

func incomeRisk(income, employmentYears float64) float64 {
	incomeFactor := max(0, 1-income/100000)
	employmentFactor := max(0, 1-employmentYears/10)
	return (incomeFactor + employmentFactor) / 2
}

func debtRisk(debtToIncome float64) float64 {
	switch {
	case debtToIncome <= 0.3:
		return 0.2
	case debtToIncome <= 0.4:
		return 0.4
	case debtToIncome <= 0.5:
		return 0.7
	default:
		return 0.9
	}
}

// ScoreSimple is the compact 0-100 scorecard used by lightweight clients.
func ScoreSimple(applicant Applicant, existingDebt float64) SimpleScore {
	creditFactor := creditFactor(applicant.CreditScore)
	incomeFactor := incomeFactor(applicant.Income, applicant.EmploymentYears)
	debtFactor := debtFactor(existingDebt, applicant.Income)
	employmentFactor := employmentFactor(applicant.EmploymentYears)

	overall := int(float64(creditFactor)*0.4 +
		float64(incomeFactor)*0.3 +
		float64(debtFactor)*0.2 +
		float64(employmentFactor)*0.1)

	level := LevelVeryHigh
	recommendation := "Very high risk. Consider declining or requiring co-signer."
	switch {
	case overall >= 80:
		level = LevelLow
		recommendation = "Excellent candidate for loan approval with standard terms."
	case overall >= 60:
		level = LevelMedium
		recommendation = "Good candidate with some conditions. Consider income verification."
	case overall >= 40:
		level = LevelHigh
		recommendation = "High risk candidate. Requires additional documentation and review."
	}

	return SimpleScore{
		OverallScore: overall,
		Level:        level,
		Factors: map[string]int{
			"credit_score":       creditFactor,
			"income_stability":   incomeFactor,
			"debt_ratio":         100 - debtFactor,
			"employment_history": employmentFactor,
		},
		Recommendation: recommendation,
	}
}

func creditFactor(creditScore int) int {
	switch {
	case creditScore >= 750:
		return 90
	case creditScore >= 700:
		return 75
	case creditScore >= 650:
		return 60
	case creditScore >= 600:
		return 45
	default:
		return 25
	}
}

func incomeFactor(income, employmentYears float64) int {
	incomeScore := 20
	if income > 0 {
		incomeScore = int(income / 100000 * 70)
		if incomeScore > 100 {
			incomeScore = 100
		}
	}
	employmentScore := int(employmentYears * 6)
	if employmentScore > 30 {
		employmentScore = 30
	}
	return incomeScore + employmentScore
}

func debtFactor(debt, income float64) int {
	if income <= 0 {
		return 90
	}
	ratio := debt / income
	switch {
	case ratio <= 0.3:
		return 20
	case ratio <= 0.5:
		return 50
	case ratio <= 0.7:
		return 70
	default:
		return 90
	}
}

func employmentFactor(employmentYears float64) int {
	switch {
	case employmentYears >= 5:
		return 90
	case employmentYears >= 2:
		return 70
	case employmentYears >= 1:
		return 50
	default:
		return 30
	}
}
