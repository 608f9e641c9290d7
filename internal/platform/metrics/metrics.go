// Package metrics owns the process-wide verification counters. The registry
// is constructed once in main and passed by reference into every component;
// there is no ambient global. Counters are mirrored into Prometheus
// collectors for scraping and kept as atomics for the snapshot endpoint.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application plus the atomic
// counters backing the JSON snapshot endpoint.
type Metrics struct {
	ProofsTotal     *prometheus.CounterVec
	ProofDuration   prometheus.Histogram
	RiskAssessments prometheus.Counter
	RequestLatency  prometheus.Histogram

	startTime time.Time

	totalProofs      atomic.Int64
	successfulProofs atomic.Int64
	failedProofs     atomic.Int64
	realProofs       atomic.Int64
	simulatedProofs  atomic.Int64
	riskAssessments  atomic.Int64
	financialReqs    atomic.Int64

	mu            sync.Mutex
	avgProofMs    float64
	errorCounts   map[string]int64
	circuitHealth string
}

// Snapshot is the read-only view served by the metrics summary endpoint.
type Snapshot struct {
	UptimeSeconds      float64          `json:"uptime_seconds"`
	TotalProofs        int64            `json:"total_proofs"`
	SuccessfulProofs   int64            `json:"successful_proofs"`
	FailedProofs       int64            `json:"failed_proofs"`
	SuccessRatePercent float64          `json:"success_rate_percent"`
	AvgProcessingMs    float64          `json:"average_processing_ms"`
	RealProofs         int64            `json:"real_proofs"`
	SimulatedProofs    int64            `json:"simulated_proofs"`
	RiskAssessments    int64            `json:"risk_assessments"`
	FinancialRequests  int64            `json:"financial_requests"`
	ErrorCounts        map[string]int64 `json:"error_counts"`
	CircuitHealth      string           `json:"circuit_health"`
}

// New creates and registers all metrics on the default Prometheus registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on the given registerer so tests can use
// an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProofsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_proofs_total",
			Help: "Total number of proof generation attempts by type and outcome",
		}, []string{"type", "outcome"}),
		ProofDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "facegate_proof_duration_seconds",
			Help:    "Wall-clock duration of proof generation calls",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		RiskAssessments: factory.NewCounter(prometheus.CounterOpts{
			Name: "facegate_risk_assessments_total",
			Help: "Total number of risk assessments produced",
		}),
		RequestLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "facegate_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}),
		startTime:     time.Now(),
		errorCounts:   make(map[string]int64),
		circuitHealth: "unknown",
	}
}

// RecordProof updates proof counters and the running average latency.
// Called exactly once per Generate call regardless of outcome.
func (m *Metrics) RecordProof(proofType string, success bool, elapsed time.Duration) {
	total := m.totalProofs.Add(1)
	if success {
		m.successfulProofs.Add(1)
	} else {
		m.failedProofs.Add(1)
	}
	switch proofType {
	case "real":
		m.realProofs.Add(1)
	case "simulated":
		m.simulatedProofs.Add(1)
	}

	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.ProofsTotal.WithLabelValues(proofType, outcome).Inc()
	m.ProofDuration.Observe(elapsed.Seconds())

	ms := float64(elapsed.Milliseconds())
	m.mu.Lock()
	m.avgProofMs = (m.avgProofMs*float64(total-1) + ms) / float64(total)
	m.mu.Unlock()
}

// RecordError bumps the per-kind error counter.
func (m *Metrics) RecordError(kind string) {
	m.mu.Lock()
	m.errorCounts[kind]++
	m.mu.Unlock()
}

// RecordRiskAssessment counts one completed risk assessment.
func (m *Metrics) RecordRiskAssessment() {
	m.riskAssessments.Add(1)
	m.RiskAssessments.Inc()
}

// RecordFinancialRequest counts one inbound financial-activity payload.
func (m *Metrics) RecordFinancialRequest() {
	m.financialReqs.Add(1)
}

// SetCircuitHealth records the latest overall circuit classification for the
// snapshot view.
func (m *Metrics) SetCircuitHealth(overall string) {
	m.mu.Lock()
	m.circuitHealth = overall
	m.mu.Unlock()
}

// ObserveRequestLatency records one HTTP request duration.
func (m *Metrics) ObserveRequestLatency(elapsed time.Duration) {
	m.RequestLatency.Observe(elapsed.Seconds())
}

// Snapshot returns a consistent copy of the counters.
func (m *Metrics) Snapshot() Snapshot {
	total := m.totalProofs.Load()
	successful := m.successfulProofs.Load()

	rate := 0.0
	if total > 0 {
		rate = float64(successful) / float64(total) * 100
	}

	m.mu.Lock()
	avg := m.avgProofMs
	health := m.circuitHealth
	errs := make(map[string]int64, len(m.errorCounts))
	for k, v := range m.errorCounts {
		errs[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UptimeSeconds:      time.Since(m.startTime).Seconds(),
		TotalProofs:        total,
		SuccessfulProofs:   successful,
		FailedProofs:       m.failedProofs.Load(),
		SuccessRatePercent: rate,
		AvgProcessingMs:    avg,
		RealProofs:         m.realProofs.Load(),
		SimulatedProofs:    m.simulatedProofs.Load(),
		RiskAssessments:    m.riskAssessments.Load(),
		FinancialRequests:  m.financialReqs.Load(),
		ErrorCounts:        errs,
		CircuitHealth:      health,
	}
}
