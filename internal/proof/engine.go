package proof

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facegate/internal/biometric"
	"facegate/internal/platform/config"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
	"facegate/internal/proof/nullifier"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/platform/circuit"
)

// fieldModulus bounds every derived circuit input so it fits the proof
// system's numeric field.
const fieldModulus = int64(1) << 31

// Embedding length bounds enforced before hashing: shorter vectors are
// zero-padded, longer ones truncated.
const (
	minHashLen = 128
	maxHashLen = 256
)

// Fallback reasons, also used as error-kind labels in the metrics registry.
const (
	reasonEmptyEmbedding   = "empty embedding"
	reasonArtifactsMissing = "circuit artifacts missing"
	reasonTimeout          = "proof generation timed out"
	reasonProverFailed     = "prover invocation failed"
	reasonParseFailed      = "proof output parse failed"
	reasonBreakerOpen      = "prover circuit open"
)

// Engine runs the proof state machine: artifact check, at most one real
// attempt, then the simulated fallback. Generate never returns an error;
// backend unavailability degrades to a simulated result.
type Engine struct {
	cfg        config.CircuitConfig
	prover     Prover
	monitor    *Monitor
	metrics    *metrics.Metrics
	nullifiers nullifier.Store
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger attaches a structured logger.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithEngineMetrics records every call into the registry.
func WithEngineMetrics(reg *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = reg }
}

// WithNullifierStore flags proof reuse across subjects.
func WithNullifierStore(store nullifier.Store) EngineOption {
	return func(e *Engine) { e.nullifiers = store }
}

// WithBreaker skips the real attempt while the prover keeps failing, so a
// broken backend degrades to fast fallbacks instead of burning timeouts.
func WithBreaker(b *circuit.Breaker) EngineOption {
	return func(e *Engine) { e.breaker = b }
}

// NewEngine builds an Engine. Prover and monitor are required.
func NewEngine(cfg config.CircuitConfig, prover Prover, monitor *Monitor, opts ...EngineOption) (*Engine, error) {
	if prover == nil {
		return nil, fmt.Errorf("prover is required")
	}
	if monitor == nil {
		return nil, fmt.Errorf("health monitor is required")
	}
	e := &Engine{
		cfg:     cfg,
		prover:  prover,
		monitor: monitor,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Generate produces a proof for the embedding. It always returns a Result:
// any failure on the real path falls through to the simulated fallback with
// the triggering reason attached.
func (e *Engine) Generate(ctx context.Context, embedding biometric.Embedding, userID string, priority Priority) Result {
	start := time.Now()
	priority = ParsePriority(string(priority))

	health := e.monitor.Check(ctx)

	if len(embedding) == 0 {
		return e.fallback(ctx, start, sha256Hex([]byte("fallback")), userID, priority, health, reasonEmptyEmbedding)
	}

	embeddingHash := HashEmbedding(embedding)

	if health.Overall == OverallUnhealthy || !health.ArtifactsPresent() {
		return e.fallback(ctx, start, embeddingHash, userID, priority, health, reasonArtifactsMissing)
	}

	if e.breaker != nil && e.breaker.IsOpen() {
		return e.fallback(ctx, start, embeddingHash, userID, priority, health, reasonBreakerOpen)
	}

	inputs := deriveCircuitInputs(embeddingHash, embedding, userID)

	result, reason := e.attemptReal(ctx, start, inputs, embeddingHash, userID, priority, health)
	if reason != "" {
		if e.breaker != nil {
			if _, change := e.breaker.RecordFailure(); change.Opened {
				e.logger.WarnContext(ctx, "prover circuit opened", "breaker", e.breaker.Name())
			}
		}
		return e.fallback(ctx, start, embeddingHash, userID, priority, health, reason)
	}

	if e.breaker != nil {
		if _, change := e.breaker.RecordSuccess(); change.Closed {
			e.logger.InfoContext(ctx, "prover circuit closed", "breaker", e.breaker.Name())
		}
	}
	e.record(ctx, result, true, time.Since(start))
	return result
}

// BatchItem is one entry of a batch proof request.
type BatchItem struct {
	Embedding     biometric.Embedding
	UserID        string
	WalletAddress string
}

// GenerateBatch runs the whole state machine once per item, in input order.
// Individual fallbacks do not abort the batch; the cap and emptiness are
// validated before any proof attempt.
func (e *Engine) GenerateBatch(ctx context.Context, items []BatchItem) ([]Result, error) {
	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "empty batch")
	}
	if len(items) > e.cfg.BatchLimit {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("batch size limited to %d requests", e.cfg.BatchLimit))
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, e.Generate(ctx, item.Embedding, item.UserID, PriorityNormal))
	}
	return results, nil
}

// timeoutFor maps priority to the timeout budget.
func (e *Engine) timeoutFor(priority Priority) time.Duration {
	if priority == PriorityHigh {
		return e.cfg.HighTimeout
	}
	return e.cfg.NormalTimeout
}

// attemptReal makes the single real-prover attempt. On any failure it
// returns an empty result and the fallback reason; temp files are removed on
// every exit path.
func (e *Engine) attemptReal(ctx context.Context, start time.Time, inputs CircuitInputs, embeddingHash, userID string, priority Priority, health Health) (Result, string) {
	dir, err := os.MkdirTemp("", "facegate-proof-*")
	if err != nil {
		e.logger.WarnContext(ctx, "temp dir creation failed", "error", err)
		return Result{}, reasonProverFailed
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "input.json")
	proofPath := filepath.Join(dir, "proof.json")
	publicPath := filepath.Join(dir, "public.json")

	inputJSON, err := json.Marshal(inputs)
	if err != nil {
		return Result{}, reasonProverFailed
	}
	if err := os.WriteFile(inputPath, inputJSON, 0o600); err != nil {
		e.logger.WarnContext(ctx, "circuit input write failed", "error", err)
		return Result{}, reasonProverFailed
	}

	proveCtx, cancel := context.WithTimeout(ctx, e.timeoutFor(priority))
	defer cancel()

	e.logger.InfoContext(ctx, "generating proof",
		"user_id", userID,
		"priority", priority,
	)

	err = e.prover.FullProve(proveCtx,
		inputPath,
		filepath.Join(e.cfg.Dir, wasmArtifact),
		filepath.Join(e.cfg.Dir, zkeyArtifact),
		proofPath,
		publicPath,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(proveCtx.Err(), context.DeadlineExceeded) {
			e.logger.WarnContext(ctx, "prover timed out",
				"user_id", userID,
				"elapsed", time.Since(start),
			)
			return Result{}, reasonTimeout
		}
		e.logger.WarnContext(ctx, "prover failed", "error", err)
		return Result{}, reasonProverFailed
	}

	var proofData Data
	if err := readJSON(proofPath, &proofData); err != nil {
		e.logger.WarnContext(ctx, "proof file parse failed", "error", err)
		return Result{}, reasonParseFailed
	}
	var publicSignals []string
	if err := readJSON(publicPath, &publicSignals); err != nil {
		e.logger.WarnContext(ctx, "public signals parse failed", "error", err)
		return Result{}, reasonParseFailed
	}

	elapsed := time.Since(start)
	return Result{
		Success:       true,
		ProofType:     ProofTypeReal,
		Protocol:      "groth16",
		Circuit:       "semaphore",
		Proof:         proofData,
		PublicSignals: publicSignals,
		EmbeddingHash: embeddingHash,
		Nullifier:     inputs.NullifierHash,
		Timestamp:     time.Now().Unix(),
		Processing:    elapsed,
		ProcessingMs:  float64(elapsed.Microseconds()) / 1000.0,
		Priority:      priority,
		CircuitHealth: string(health.Overall),
	}, ""
}

// fallback produces the simulated result. The payload shape matches the real
// proof exactly; only ProofType and FallbackReason reveal the difference.
func (e *Engine) fallback(ctx context.Context, start time.Time, embeddingHash, userID string, priority Priority, health Health, reason string) Result {
	elapsed := time.Since(start)
	result := Result{
		Success:        true,
		ProofType:      ProofTypeSimulated,
		Protocol:       "groth16_simulated",
		Circuit:        "semaphore_simulated",
		Proof:          simulatedProofData(),
		PublicSignals:  []string{embeddingHash[:16]},
		EmbeddingHash:  embeddingHash,
		Nullifier:      hashPrefixMod([]byte(userID)),
		Timestamp:      time.Now().Unix(),
		Processing:     elapsed,
		ProcessingMs:   float64(elapsed.Microseconds()) / 1000.0,
		Priority:       priority,
		FallbackReason: reason,
		CircuitHealth:  string(health.Overall),
	}

	e.logger.InfoContext(ctx, "simulated proof generated",
		"user_id", userID,
		"reason", reason,
	)
	e.record(ctx, result, false, elapsed)
	return result
}

// record updates metrics and the nullifier registry on every exit path.
func (e *Engine) record(ctx context.Context, result Result, realSuccess bool, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordProof(string(result.ProofType), realSuccess, elapsed)
		if result.FallbackReason != "" {
			e.metrics.RecordError(errorKind(result.FallbackReason))
		}
	}

	if e.nullifiers == nil {
		return
	}
	fresh, boundTo, err := e.nullifiers.Record(ctx, result.Nullifier, subjectOf(result))
	if err != nil {
		e.logger.WarnContext(ctx, "nullifier record failed", "error", err)
		return
	}
	if !fresh && boundTo != subjectOf(result) {
		e.logger.WarnContext(ctx, "nullifier reuse detected",
			"nullifier", result.Nullifier,
			"bound_to", boundTo,
		)
		if e.metrics != nil {
			e.metrics.RecordError("nullifier_reuse")
		}
	}
}

// subjectOf derives the registry subject from a result. The embedding hash
// stands in for the user when two callers derive the same nullifier.
func subjectOf(r Result) string {
	return r.EmbeddingHash
}

// HashEmbedding commits to the embedding with a SHA-256 digest. The vector
// is zero-padded to 128 elements or truncated to 256 first so the digest
// preimage always has a bounded length.
func HashEmbedding(embedding biometric.Embedding) string {
	n := len(embedding)
	if n > maxHashLen {
		n = maxHashLen
	}
	size := n
	if size < minHashLen {
		size = minHashLen
	}
	buf := make([]byte, size)
	for i := 0; i < n; i++ {
		v := embedding[i]
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		buf[i] = byte(v)
	}
	return sha256Hex(buf)
}

// deriveCircuitInputs reduces the embedding hash and subject identifier into
// the circuit's bounded integer inputs.
func deriveCircuitInputs(embeddingHash string, embedding biometric.Embedding, userID string) CircuitInputs {
	signalPreimage := make([]byte, 0, 8)
	for i := 0; i < len(embedding) && i < 8; i++ {
		signalPreimage = append(signalPreimage, byte(embedding[i]))
	}

	identityNullifier := int64(12345)
	identityTrapdoor := int64(67890)
	if raw, err := hex.DecodeString(embeddingHash[:16]); err == nil && len(raw) >= 2 {
		identityNullifier = int64(raw[0])
		identityTrapdoor = int64(raw[1])
	}

	return CircuitInputs{
		NullifierHash:     hashPrefixMod([]byte(embeddingHash)),
		SignalHash:        hashPrefixMod(signalPreimage),
		ExternalNullifier: hashPrefixMod([]byte(userID)),
		IdentityNullifier: identityNullifier,
		IdentityTrapdoor:  identityTrapdoor,
		PathElements:      []int64{11111, 22222, 33333, 44444},
		PathIndices:       []int{0, 1, 0, 1},
	}
}

// hashPrefixMod interprets the first four digest bytes as an unsigned
// integer reduced modulo the field.
func hashPrefixMod(data []byte) int64 {
	sum := sha256.Sum256(data)
	return int64(binary.BigEndian.Uint32(sum[:4])) % fieldModulus
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// simulatedProofData returns the fixed placeholder payload with the same
// shape as a real pairing-based proof.
func simulatedProofData() Data {
	rep := func(c string) string { return "0x" + strings.Repeat(c, 64) }
	return Data{
		PiA: []string{rep("1"), rep("2"), "0x1"},
		PiB: [][]string{
			{rep("3"), rep("4")},
			{rep("5"), rep("6")},
			{"0x1", "0x0"},
		},
		PiC:      []string{rep("7"), rep("8"), "0x1"},
		Protocol: "groth16",
		Curve:    "bn128",
	}
}

func errorKind(reason string) string {
	switch reason {
	case reasonEmptyEmbedding:
		return "empty_embedding"
	case reasonArtifactsMissing:
		return "artifacts_missing"
	case reasonTimeout:
		return "timeout"
	case reasonParseFailed:
		return "parse_error"
	case reasonBreakerOpen:
		return "circuit_open"
	default:
		return "prover_error"
	}
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
