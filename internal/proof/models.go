// Package proof orchestrates proof generation against the external prover
// tool, with a structurally identical simulated fallback when the prover or
// its circuit artifacts are unavailable.
package proof

import (
	"strings"
	"time"
)

// Priority selects the timeout budget for one proof request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a caller-supplied priority, defaulting to normal.
func ParsePriority(raw string) Priority {
	switch Priority(strings.ToLower(raw)) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// ProofType distinguishes a real prover run from the simulated fallback.
type ProofType string

const (
	ProofTypeReal      ProofType = "real"
	ProofTypeSimulated ProofType = "simulated"
)

// Data is the pairing-shaped proof payload. The simulated fallback emits the
// exact same shape so consumers cannot structurally tell the two apart.
type Data struct {
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
}

// Result is the outcome of one Generate call. Success is about the request
// as a whole: a simulated fallback still succeeds.
type Result struct {
	Success        bool          `json:"success"`
	ProofType      ProofType     `json:"proof_type"`
	Protocol       string        `json:"protocol"`
	Circuit        string        `json:"circuit"`
	Proof          Data          `json:"proof"`
	PublicSignals  []string      `json:"publicSignals"`
	EmbeddingHash  string        `json:"embedding_hash"`
	Nullifier      int64         `json:"nullifier"`
	Timestamp      int64         `json:"timestamp"`
	Processing     time.Duration `json:"-"`
	ProcessingMs   float64       `json:"processing_time_ms"`
	Priority       Priority      `json:"priority"`
	FallbackReason string        `json:"fallback_reason,omitempty"`
	CircuitHealth  string        `json:"circuit_health"`
}

// CircuitInputs are the bounded integers handed to the proving circuit. All
// derived values are reduced modulo fieldModulus so they fit the circuit's
// numeric field.
type CircuitInputs struct {
	NullifierHash     int64   `json:"nullifierHash"`
	SignalHash        int64   `json:"signalHash"`
	ExternalNullifier int64   `json:"externalNullifier"`
	IdentityNullifier int64   `json:"identityNullifier"`
	IdentityTrapdoor  int64   `json:"identityTrapdoor"`
	PathElements      []int64 `json:"pathElements"`
	PathIndices       []int   `json:"pathIndices"`
}

// Overall classifies circuit backend availability.
type Overall string

const (
	OverallHealthy   Overall = "healthy"
	OverallDegraded  Overall = "degraded"
	OverallUnhealthy Overall = "unhealthy"
	OverallError     Overall = "error"
)

// Health is the point-in-time circuit backend classification. It is
// read-mostly shared state: recomputed on demand, cached with explicit
// invalidation.
type Health struct {
	WasmExists      bool          `json:"wasm_exists"`
	ZkeyExists      bool          `json:"zkey_exists"`
	R1csExists      bool          `json:"r1cs_exists"`
	WasmSize        int64         `json:"wasm_size"`
	ZkeySize        int64         `json:"zkey_size"`
	ProverAvailable bool          `json:"prover_available"`
	EstimatedProof  time.Duration `json:"-"`
	EstimatedLabel  string        `json:"estimated_proof_time"`
	Overall         Overall       `json:"overall_health"`
	CheckedAt       time.Time     `json:"checked_at"`
}

// ArtifactsPresent reports whether the files required to attempt a real
// proof exist.
func (h Health) ArtifactsPresent() bool {
	return h.WasmExists && h.ZkeyExists
}
