package httptransport

import (
	"facegate/internal/biometric"
	"facegate/internal/proof"
	"facegate/internal/risk"
)

// GenerateProofRequest is the body of POST /generate-proof.
type GenerateProofRequest struct {
	Embedding     []int  `json:"embedding"`
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	Priority      string `json:"priority"`
}

// BatchProveRequest is the body of POST /batch-prove. The three arrays are
// positional: element i of each belongs to the same request.
type BatchProveRequest struct {
	Embeddings      [][]int  `json:"embeddings"`
	UserIDs         []string `json:"user_ids"`
	WalletAddresses []string `json:"wallet_addresses"`
}

// BatchProveResponse lists results in input order.
type BatchProveResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Results []proof.Result `json:"results"`
}

// ScoreRiskRequest is the body of POST /score-risk. UPIData optionally
// carries raw transaction CSV; without it a synthetic profile is sampled.
type ScoreRiskRequest struct {
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	ConsentAA     bool   `json:"consent_aa"`
	UPIData       string `json:"upi_data"`
}

// ScoreRiskResponse is the structural always-success envelope for scoring.
type ScoreRiskResponse struct {
	Success          bool                  `json:"success"`
	UserID           string                `json:"user_id"`
	WalletAddress    string                `json:"wallet_address,omitempty"`
	RiskScore        int                   `json:"risk_score"`
	RiskCategory     risk.Category         `json:"risk_category"`
	FinancialProfile risk.FinancialProfile `json:"financial_profile"`
	RiskAssessment   risk.Assessment       `json:"risk_assessment"`
	Recommendations  []string              `json:"recommendations"`
	RiskFactors      []string              `json:"risk_factors"`
	Timestamp        string                `json:"timestamp"`
}

// UnderwriteRequest is the body of POST /underwrite.
type UnderwriteRequest struct {
	ApplicantData risk.Applicant `json:"applicant_data"`
	ZKFaceProof   *ProofSummary  `json:"zk_face_proof"`
}

// ProofSummary is the caller-supplied view of a previously generated proof.
// Only a successful real proof counts as verified identity.
type ProofSummary struct {
	Success   bool   `json:"success"`
	ProofType string `json:"proof_type"`
}

// Verified reports whether the summary demonstrates verified identity.
func (p *ProofSummary) Verified() bool {
	return p != nil && p.Success && p.ProofType == string(proof.ProofTypeReal)
}

// ProveFaceResponse is the combined liveness-plus-proof payload of
// POST /prove-face. Proof and VerificationToken are present only on a live
// verdict.
type ProveFaceResponse struct {
	Success           bool                     `json:"success"`
	RequestID         string                   `json:"request_id,omitempty"`
	Liveness          biometric.LivenessResult `json:"liveness"`
	FailedChecks      []string                 `json:"failed_checks,omitempty"`
	Proof             *proof.Result            `json:"proof,omitempty"`
	VerificationToken string                   `json:"verification_token,omitempty"`
}

// CaptureFaceResponse returns the embedding alongside the liveness verdict
// without generating a proof.
type CaptureFaceResponse struct {
	Success       bool                     `json:"success"`
	Liveness      biometric.LivenessResult `json:"liveness"`
	FailedChecks  []string                 `json:"failed_checks,omitempty"`
	Embedding     biometric.Embedding      `json:"embedding,omitempty"`
	EmbeddingHash string                   `json:"embedding_hash,omitempty"`
}
