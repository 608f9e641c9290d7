// Package risk scores financial activity profiles and makes underwriting
// decisions, optionally weighted by an identity verification signal.
package risk

import "time"

// Category buckets a composite score, ordered from safest to riskiest.
type Category string

const (
	CategoryVeryLow  Category = "VERY_LOW"
	CategoryLow      Category = "LOW"
	CategoryMedium   Category = "MEDIUM"
	CategoryHigh     Category = "HIGH"
	CategoryVeryHigh Category = "VERY_HIGH"
)

// Data sources for a FinancialProfile.
const (
	SourceTransactions = "transactions"
	SourceSynthetic    = "synthetic"
)

// FinancialProfile summarizes one month of financial activity. Synthetic
// profiles are sampled when no usable transaction data is supplied and are
// flagged as such rather than blended silently with real-data results.
type FinancialProfile struct {
	MonthlyIncome        float64 `json:"monthly_income"`
	MonthlyExpenses      float64 `json:"monthly_expenses"`
	AverageBalance       float64 `json:"average_balance"`
	TransactionFrequency int     `json:"transaction_frequency"`
	IncomeStability      float64 `json:"income_stability"`
	ExpensePatternScore  float64 `json:"expense_pattern_score"`
	DebtToIncomeRatio    float64 `json:"debt_to_income_ratio"`
	Synthetic            bool    `json:"synthetic_data"`
	DataSource           string  `json:"data_source"`
}

// Assessment is the full scoring output.
type Assessment struct {
	FinalScore      int                `json:"final_score"`
	Category        Category           `json:"risk_category"`
	ComponentScores map[string]float64 `json:"component_scores"`
	WeightedScore   float64            `json:"weighted_score"`
	RawScores       map[string]float64 `json:"raw_scores"`
	RiskFactors     []string           `json:"risk_factors"`
	Recommendations []string           `json:"recommendations"`
	Degraded        bool               `json:"degraded,omitempty"`
}

// Applicant is the full loan-application profile for underwriting.
type Applicant struct {
	Age               int     `json:"age"`
	Income            float64 `json:"income"`
	CreditScore       int     `json:"credit_score"`
	EmploymentYears   float64 `json:"employment_years"`
	DebtToIncomeRatio float64 `json:"debt_to_income_ratio"`
	LoanAmount        float64 `json:"loan_amount"`
	LoanPurpose       string  `json:"loan_purpose"`
}

// Decision is the underwriting outcome.
type Decision string

const (
	DecisionApproved              Decision = "approved"
	DecisionConditionallyApproved Decision = "conditionally_approved"
	DecisionDeclined              Decision = "declined"
	DecisionManualReview          Decision = "requires_manual_review"
)

// Level buckets the overall underwriting risk score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// ComponentRisks are the weighted inputs to an underwriting decision, each
// in [0,1] where higher means riskier.
type ComponentRisks struct {
	Overall  float64 `json:"overall_score"`
	Credit   float64 `json:"credit_risk"`
	Income   float64 `json:"income_risk"`
	Debt     float64 `json:"debt_risk"`
	Identity float64 `json:"identity_risk"`
}

// UnderwritingResult is the comprehensive decision output.
type UnderwritingResult struct {
	Decision           Decision       `json:"decision"`
	Level              Level          `json:"risk_level"`
	Risks              ComponentRisks `json:"risk_scores"`
	Confidence         float64        `json:"confidence"`
	MaxApprovedAmount  *float64       `json:"max_approved_amount"`
	RateAdjustmentBps  int            `json:"interest_rate_adjustment"`
	Conditions         []string       `json:"conditions"`
	Explanation        string         `json:"explanation"`
	ProcessingMs       float64        `json:"processing_time_ms"`
}

// SimpleScore is the compact 0-100 scorecard variant.
type SimpleScore struct {
	OverallScore   int            `json:"overall_score"`
	Level          Level          `json:"risk_level"`
	Factors        map[string]int `json:"factors"`
	Recommendation string         `json:"recommendation"`
}

// AssessmentRecord is the persisted audit-trail row for one scoring call.
// The wallet address is stored only as a bcrypt hash.
type AssessmentRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	WalletHash string    `json:"-"`
	Score      int       `json:"score"`
	Category   Category  `json:"category"`
	Synthetic  bool      `json:"synthetic_data"`
	CreatedAt  time.Time `json:"created_at"`
}
