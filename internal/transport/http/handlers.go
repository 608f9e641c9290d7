// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules stay in the domain packages.
package httptransport

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"time"

	"facegate/internal/biometric"
	jwttoken "facegate/internal/jwt_token"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
	"facegate/internal/platform/middleware"
	"facegate/internal/proof"
	"facegate/internal/risk"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/platform/httputil"
)

const (
	maxImageBytes    = 8 << 20 // 8 MiB upload cap
	verificationTTL  = 15 * time.Minute
)

// Handler wires all endpoints to their domain services.
type Handler struct {
	detector biometric.Detector
	analyzer *biometric.Analyzer
	engine   *proof.Engine
	monitor  *proof.Monitor
	risk     *risk.Service
	tokens   *jwttoken.JWTService
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger attaches a structured logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// WithHandlerMetrics exposes the snapshot endpoint.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithTokens enables verification token minting on successful proofs.
func WithTokens(t *jwttoken.JWTService) HandlerOption {
	return func(h *Handler) { h.tokens = t }
}

// NewHandler constructs the HTTP handler with its dependencies.
func NewHandler(
	detector biometric.Detector,
	analyzer *biometric.Analyzer,
	engine *proof.Engine,
	monitor *proof.Monitor,
	riskSvc *risk.Service,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		detector: detector,
		analyzer: analyzer,
		engine:   engine,
		monitor:  monitor,
		risk:     riskSvc,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleProveFace handles POST /prove-face: multipart image upload through
// liveness analysis and, on a live verdict, proof generation.
func (h *Handler) HandleProveFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	img, userID, priority, advanced, err := h.decodeCapture(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	set, err := h.detector.Detect(ctx, img)
	if err != nil {
		h.logger.InfoContext(ctx, "face detection failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	liveness := h.analyzer.Analyze(img, set, advanced)
	if !liveness.IsLive {
		// Structured rejection: the caller gets the verdict breakdown and
		// per-check remediation hints, not a bare error.
		httputil.WriteJSON(w, http.StatusBadRequest, ProveFaceResponse{
			Success:      false,
			RequestID:    requestID,
			Liveness:     liveness,
			FailedChecks: biometric.FailedChecks(liveness),
		})
		return
	}

	embedding, err := biometric.EncodeLandmarks(set)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.engine.Generate(ctx, embedding, userID, proof.ParsePriority(priority))

	resp := ProveFaceResponse{
		Success:   true,
		RequestID: requestID,
		Liveness:  liveness,
		Proof:     &result,
	}
	if h.tokens != nil {
		token, err := h.tokens.GenerateVerificationToken(
			userID, result.Nullifier, result.EmbeddingHash, string(result.ProofType), verificationTTL)
		if err != nil {
			h.logger.WarnContext(ctx, "verification token minting failed", "error", err)
		} else {
			resp.VerificationToken = token
		}
	}

	h.logger.InfoContext(ctx, "face proved",
		"request_id", requestID,
		"user_id", userID,
		"proof_type", result.ProofType,
		"confidence", liveness.Confidence,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCaptureFace handles POST /capture-face: liveness and embedding only,
// no proof generation.
func (h *Handler) HandleCaptureFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, _, _, advanced, err := h.decodeCapture(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	set, err := h.detector.Detect(ctx, img)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	liveness := h.analyzer.Analyze(img, set, advanced)
	if !liveness.IsLive {
		httputil.WriteJSON(w, http.StatusBadRequest, CaptureFaceResponse{
			Success:      false,
			Liveness:     liveness,
			FailedChecks: biometric.FailedChecks(liveness),
		})
		return
	}

	embedding, err := biometric.EncodeLandmarks(set)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CaptureFaceResponse{
		Success:       true,
		Liveness:      liveness,
		Embedding:     embedding,
		EmbeddingHash: proof.HashEmbedding(embedding),
	})
}

// HandleGenerateProof handles POST /generate-proof for callers that already
// hold an embedding.
func (h *Handler) HandleGenerateProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[GenerateProofRequest](w, r)
	if !ok {
		return
	}
	if len(req.Embedding) != biometric.EmbeddingSize {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("embedding must have exactly %d elements", biometric.EmbeddingSize)))
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = req.WalletAddress
	}
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user_id or wallet_address is required"))
		return
	}

	result := h.engine.Generate(ctx, biometric.Embedding(req.Embedding), userID, proof.ParsePriority(req.Priority))
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleBatchProve handles POST /batch-prove. The three arrays must be the
// same length and within the batch cap; validation happens before any proof
// attempt.
func (h *Handler) HandleBatchProve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[BatchProveRequest](w, r)
	if !ok {
		return
	}
	if len(req.Embeddings) != len(req.UserIDs) || len(req.Embeddings) != len(req.WalletAddresses) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			"embeddings, user_ids, and wallet_addresses must have the same length"))
		return
	}

	items := make([]proof.BatchItem, len(req.Embeddings))
	for i := range req.Embeddings {
		items[i] = proof.BatchItem{
			Embedding:     biometric.Embedding(req.Embeddings[i]),
			UserID:        req.UserIDs[i],
			WalletAddress: req.WalletAddresses[i],
		}
	}

	results, err := h.engine.GenerateBatch(ctx, items)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, BatchProveResponse{
		Success: true,
		Count:   len(results),
		Results: results,
	})
}

// HandleScoreRisk handles POST /score-risk. The response is structurally
// always a success; internal faults surface as a flagged degraded assessment.
func (h *Handler) HandleScoreRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[ScoreRiskRequest](w, r)
	if !ok {
		return
	}
	if req.UserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user_id is required"))
		return
	}

	payload := ""
	if req.ConsentAA {
		payload = req.UPIData
	}
	result := h.risk.ScoreRisk(ctx, req.UserID, req.WalletAddress, payload)

	httputil.WriteJSON(w, http.StatusOK, ScoreRiskResponse{
		Success:          true,
		UserID:           req.UserID,
		WalletAddress:    req.WalletAddress,
		RiskScore:        result.Assessment.FinalScore,
		RiskCategory:     result.Assessment.Category,
		FinancialProfile: result.Profile,
		RiskAssessment:   result.Assessment,
		Recommendations:  result.Assessment.Recommendations,
		RiskFactors:      result.Assessment.RiskFactors,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleUnderwrite handles POST /underwrite.
func (h *Handler) HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[UnderwriteRequest](w, r)
	if !ok {
		return
	}
	if req.ApplicantData.LoanAmount < 0 || req.ApplicantData.Income < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "income and loan amount must be non-negative"))
		return
	}

	result := h.risk.Underwrite(ctx, req.ApplicantData, req.ZKFaceProof.Verified())
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleCircuitHealth handles GET /circuit-health.
func (h *Handler) HandleCircuitHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.monitor.Check(r.Context()))
}

// HandleHealthz handles GET /healthz.
func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "facegate",
		"timestamp": time.Now().Unix(),
	})
}

// HandleMetricsSummary handles GET /metrics-summary.
func (h *Handler) HandleMetricsSummary(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "metrics are not enabled"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// decodeCapture extracts the uploaded frame and form fields from a multipart
// capture request.
func (h *Handler) decodeCapture(r *http.Request) (image.Image, string, string, bool, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, "", "", false, dErrors.New(dErrors.CodeBadRequest, "expected multipart form with an image file")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, "", "", false, dErrors.New(dErrors.CodeBadRequest, "image file is required")
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, "", "", false, dErrors.New(dErrors.CodeInvalidInput, "image could not be decoded")
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		userID = r.FormValue("wallet_address")
	}
	if userID == "" {
		return nil, "", "", false, dErrors.New(dErrors.CodeInvalidInput, "user_id or wallet_address is required")
	}

	return img, userID, r.FormValue("priority"), r.FormValue("advanced") == "true", nil
}
