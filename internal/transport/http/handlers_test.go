package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facegate/internal/biometric"
	jwttoken "facegate/internal/jwt_token"
	"facegate/internal/platform/config"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
	"facegate/internal/proof"
	"facegate/internal/risk"
)

// unavailableProver always fails, so every proof falls back to simulated.
type unavailableProver struct{}

func (unavailableProver) Probe(context.Context) error { return errors.New("not installed") }
func (unavailableProver) FullProve(context.Context, string, string, string, string, string) error {
	return errors.New("not installed")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWith(t, biometric.NewStubDetector())
}

func newTestRouterWith(t *testing.T, detector biometric.Detector) http.Handler {
	t.Helper()

	cfg := config.CircuitConfig{
		Dir:           t.TempDir(),
		ProbeTimeout:  time.Second,
		NormalTimeout: time.Second,
		HighTimeout:   2 * time.Second,
		HealthTTL:     time.Minute,
		BatchLimit:    10,
	}
	reg := metrics.NewWith(prometheus.NewRegistry())
	monitor := proof.NewMonitor(cfg, unavailableProver{})
	engine, err := proof.NewEngine(cfg, unavailableProver{}, monitor, proof.WithEngineMetrics(reg))
	require.NoError(t, err)

	riskSvc := risk.NewService(risk.NewMemoryStore(),
		risk.WithServiceMetrics(reg),
		risk.WithRand(rand.New(rand.NewPCG(1, 2))),
	)

	h := NewHandler(
		detector,
		biometric.NewAnalyzer(biometric.DefaultAnalyzerConfig()),
		engine,
		monitor,
		riskSvc,
		WithHandlerMetrics(reg),
		WithTokens(jwttoken.NewJWTService("test-key", "facegate", "facegate-clients")),
	)

	return NewRouter(h, logger.Discard(), reg, nil)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)
	return srv
}

// captureBody builds a multipart body with a PNG frame and form fields.
func captureBody(t *testing.T, img image.Image, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "frame.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// sharpFrame is bright enough, sharp enough, and large enough to pass every
// quality gate.
func sharpFrame(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(64)
			if (x+y)%2 == 0 {
				v = 192
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHandleProveFace_LiveFaceGetsSimulatedProof(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := captureBody(t, sharpFrame(256, 256), map[string]string{
		"user_id":  "user-1",
		"priority": "normal",
	})
	resp, err := http.Post(srv.URL+"/prove-face", contentType, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[ProveFaceResponse](t, resp)

	assert.True(t, got.Success)
	assert.True(t, got.Liveness.IsLive)
	require.NotNil(t, got.Proof)
	assert.Equal(t, proof.ProofTypeSimulated, got.Proof.ProofType)
	assert.NotEmpty(t, got.Proof.FallbackReason)
	assert.NotEmpty(t, got.VerificationToken)
	assert.NotEmpty(t, got.RequestID)
}

func TestHandleProveFace_TinyFrameIsNoFace(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := captureBody(t, sharpFrame(32, 32), map[string]string{"user_id": "user-1"})
	resp, err := http.Post(srv.URL+"/prove-face", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleProveFace_ClosedEyesFailLiveness(t *testing.T) {
	detector := biometric.NewStubDetector()
	detector.ClosedEyes = true
	srv := httptest.NewServer(newTestRouterWith(t, detector))
	t.Cleanup(srv.Close)

	body, contentType := captureBody(t, sharpFrame(256, 256), map[string]string{"user_id": "user-1"})
	resp, err := http.Post(srv.URL+"/prove-face", contentType, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	got := decodeBody[ProveFaceResponse](t, resp)

	assert.False(t, got.Success)
	assert.False(t, got.Liveness.IsLive)
	assert.Contains(t, got.FailedChecks, "Eyes appear closed or partially closed")
	assert.Nil(t, got.Proof)
}

func TestHandleProveFace_MissingImage(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_id", "user-1"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/prove-face", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCaptureFace_ReturnsEmbeddingWithoutProof(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := captureBody(t, sharpFrame(256, 256), map[string]string{"user_id": "user-1"})
	resp, err := http.Post(srv.URL+"/capture-face", contentType, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[CaptureFaceResponse](t, resp)

	assert.True(t, got.Success)
	assert.Len(t, got.Embedding, biometric.EmbeddingSize)
	assert.Len(t, got.EmbeddingHash, 64)
}

func TestHandleGenerateProof(t *testing.T) {
	srv := newTestServer(t)

	t.Run("wrong embedding length rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/generate-proof", `{"embedding":[1,2,3],"user_id":"u"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		embedding := strings.Repeat("128,", biometric.EmbeddingSize-1) + "128"
		resp := postJSON(t, srv.URL+"/generate-proof", `{"embedding":[`+embedding+`]}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("valid embedding proved", func(t *testing.T) {
		embedding := strings.Repeat("128,", biometric.EmbeddingSize-1) + "128"
		resp := postJSON(t, srv.URL+"/generate-proof", `{"embedding":[`+embedding+`],"wallet_address":"0xabc"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeBody[proof.Result](t, resp)
		assert.True(t, got.Success)
		assert.Equal(t, proof.ProofTypeSimulated, got.ProofType)
	})
}

func TestHandleBatchProve(t *testing.T) {
	srv := newTestServer(t)
	embedding := strings.Repeat("128,", biometric.EmbeddingSize-1) + "128"

	t.Run("mismatched array lengths rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/batch-prove",
			`{"embeddings":[[`+embedding+`]],"user_ids":["a","b"],"wallet_addresses":["0x1"]}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("oversized batch rejected", func(t *testing.T) {
		var embeddings, users, wallets []string
		for i := 0; i < 11; i++ {
			embeddings = append(embeddings, "["+embedding+"]")
			users = append(users, `"u"`)
			wallets = append(wallets, `"0x1"`)
		}
		resp := postJSON(t, srv.URL+"/batch-prove",
			`{"embeddings":[`+strings.Join(embeddings, ",")+`],"user_ids":[`+strings.Join(users, ",")+`],"wallet_addresses":[`+strings.Join(wallets, ",")+`]}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ordered results", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/batch-prove",
			`{"embeddings":[[`+embedding+`],[`+embedding+`]],"user_ids":["alice","bob"],"wallet_addresses":["0x1","0x2"]}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeBody[BatchProveResponse](t, resp)
		assert.True(t, got.Success)
		assert.Equal(t, 2, got.Count)
		require.Len(t, got.Results, 2)
		assert.True(t, got.Results[0].Success)
		assert.True(t, got.Results[1].Success)
	})
}

func TestHandleScoreRisk(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing user rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/score-risk", `{}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no payload samples synthetic and says so", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/score-risk", `{"user_id":"user-1"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeBody[ScoreRiskResponse](t, resp)
		assert.True(t, got.Success)
		assert.True(t, got.FinancialProfile.Synthetic)
		assert.GreaterOrEqual(t, got.RiskScore, 300)
		assert.LessOrEqual(t, got.RiskScore, 900)
	})

	t.Run("consented transaction data is used", func(t *testing.T) {
		csv := "txn_id,date,amount,type\\n1,2024-01-02,50000,SALARY\\n2,2024-01-05,-12000,RENT"
		resp := postJSON(t, srv.URL+"/score-risk",
			`{"user_id":"user-2","consent_aa":true,"upi_data":"`+csv+`"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		got := decodeBody[ScoreRiskResponse](t, resp)
		assert.False(t, got.FinancialProfile.Synthetic)
		assert.Equal(t, 50000.0, got.FinancialProfile.MonthlyIncome)
	})
}

func TestHandleUnderwrite(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"applicant_data": {
			"age": 35, "income": 75000, "credit_score": 780,
			"employment_years": 8.5, "debt_to_income_ratio": 0.25,
			"loan_amount": 250000, "loan_purpose": "home_purchase"
		},
		"zk_face_proof": {"success": true, "proof_type": "real"}
	}`
	resp := postJSON(t, srv.URL+"/underwrite", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[risk.UnderwritingResult](t, resp)
	assert.Equal(t, risk.DecisionApproved, got.Decision)
	assert.Equal(t, 0.1, got.Risks.Identity)
}

func TestHandleCircuitHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/circuit-health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[proof.Health](t, resp)
	assert.Equal(t, proof.OverallUnhealthy, got.Overall)
	assert.False(t, got.WasmExists)
}

func TestHandleHealthzAndMetricsSummary(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Drive one proof so the snapshot has data.
	embedding := strings.Repeat("128,", biometric.EmbeddingSize-1) + "128"
	proofResp := postJSON(t, srv.URL+"/generate-proof", `{"embedding":[`+embedding+`],"user_id":"u"}`)
	proofResp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics-summary")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[metrics.Snapshot](t, resp)
	assert.Equal(t, int64(1), got.TotalProofs)
	assert.Equal(t, int64(1), got.SimulatedProofs)
	assert.Equal(t, int64(1), got.FailedProofs)
}

func TestUnsupportedContentTypeRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/generate-proof", "text/plain", strings.NewReader("nope"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
