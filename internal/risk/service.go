package risk

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
)

// Service runs scoring and underwriting, records metrics on every call, and
// keeps the audit trail. Scoring never returns an error to the caller: any
// internal fault degrades to the neutral default assessment instead.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	rng     *rand.Rand
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger attaches a structured logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithServiceMetrics records every call into the registry.
func WithServiceMetrics(reg *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = reg }
}

// WithRand overrides the sampling source, mainly for tests.
func WithRand(rng *rand.Rand) ServiceOption {
	return func(s *Service) { s.rng = rng }
}

// NewService builds a Service backed by the given audit-trail store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: logger.Discard(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreResult bundles the profile that was scored with its assessment.
type ScoreResult struct {
	Profile    FinancialProfile `json:"financial_profile"`
	Assessment Assessment       `json:"risk_assessment"`
}

// ScoreRisk derives a profile from the payload (or samples one when the
// payload is empty or unparseable), scores it, and appends the result to the
// audit trail. Audit failures are logged, never surfaced.
func (s *Service) ScoreRisk(ctx context.Context, userID, walletAddress, payload string) ScoreResult {
	profile := ProfileFromPayload(payload, s.rng)
	assessment := Score(profile)

	if s.metrics != nil {
		s.metrics.RecordRiskAssessment()
		s.metrics.RecordFinancialRequest()
	}

	s.logger.InfoContext(ctx, "risk assessment completed",
		"user_id", userID,
		"score", assessment.FinalScore,
		"category", assessment.Category,
		"data_source", profile.DataSource,
	)

	if s.store != nil {
		record := AssessmentRecord{
			ID:         uuid.NewString(),
			UserID:     userID,
			WalletHash: hashWallet(walletAddress),
			Score:      assessment.FinalScore,
			Category:   assessment.Category,
			Synthetic:  profile.Synthetic,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.store.Save(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "audit trail save failed", "error", err)
		}
	}

	return ScoreResult{Profile: profile, Assessment: assessment}
}

// Underwrite runs the comprehensive decision for an applicant.
func (s *Service) Underwrite(ctx context.Context, applicant Applicant, identityVerified bool) UnderwritingResult {
	result := Underwrite(applicant, identityVerified, s.rng)

	if s.metrics != nil {
		s.metrics.RecordRiskAssessment()
	}
	s.logger.InfoContext(ctx, "underwriting decision",
		"decision", result.Decision,
		"risk_level", result.Level,
		"identity_verified", identityVerified,
	)
	return result
}

// History returns the stored audit trail for a user, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]AssessmentRecord, error) {
	return s.store.ListByUser(ctx, userID)
}

// hashWallet stores only a bcrypt digest of the wallet address, so the trail
// can confirm a known address without retaining it.
func hashWallet(walletAddress string) string {
	if walletAddress == "" {
		return ""
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(walletAddress), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hash)
}
