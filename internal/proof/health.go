package proof

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"facegate/internal/platform/config"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
)

// Artifact file names inside the circuit directory.
const (
	wasmArtifact = "semaphore_js/semaphore.wasm"
	zkeyArtifact = "semaphore_4signals.zkey"
	r1csArtifact = "semaphore.r1cs"
)

// Monitor classifies whether the external proof backend is usable. Checks
// run on demand, are cached for a TTL, and are deduplicated with
// singleflight so concurrent requests share one probe.
type Monitor struct {
	cfg     config.CircuitConfig
	prover  Prover
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu     sync.RWMutex
	cached *Health

	group singleflight.Group
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger attaches a structured logger.
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// WithMonitorMetrics mirrors the overall classification into the registry.
func WithMonitorMetrics(reg *metrics.Metrics) MonitorOption {
	return func(m *Monitor) { m.metrics = reg }
}

// NewMonitor builds a Monitor for the configured circuit directory and prover.
func NewMonitor(cfg config.CircuitConfig, prover Prover, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		prover: prover,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check returns the current health, reusing a cached result inside the TTL.
// Concurrent cold checks collapse into one filesystem/probe pass.
func (m *Monitor) Check(ctx context.Context) Health {
	m.mu.RLock()
	if m.cached != nil && time.Since(m.cached.CheckedAt) < m.cfg.HealthTTL {
		h := *m.cached
		m.mu.RUnlock()
		return h
	}
	m.mu.RUnlock()

	v, _, _ := m.group.Do("circuit-health", func() (any, error) {
		h := m.check(ctx)
		m.mu.Lock()
		m.cached = &h
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.SetCircuitHealth(string(h.Overall))
		}
		return h, nil
	})
	return v.(Health)
}

// Invalidate drops the cached result so the next Check re-probes.
func (m *Monitor) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

func (m *Monitor) check(ctx context.Context) Health {
	h := Health{
		Overall:   OverallUnhealthy,
		CheckedAt: time.Now(),
	}

	statErr := false
	stat := func(name string) (int64, bool) {
		info, err := os.Stat(filepath.Join(m.cfg.Dir, name))
		if err != nil {
			if !os.IsNotExist(err) {
				statErr = true
				m.logger.WarnContext(ctx, "artifact stat failed", "artifact", name, "error", err)
			}
			return 0, false
		}
		return info.Size(), true
	}

	h.WasmSize, h.WasmExists = stat(wasmArtifact)
	h.ZkeySize, h.ZkeyExists = stat(zkeyArtifact)
	_, h.R1csExists = stat(r1csArtifact)

	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()
	if err := m.prover.Probe(probeCtx); err != nil {
		m.logger.WarnContext(ctx, "prover probe failed", "error", err)
	} else {
		h.ProverAvailable = true
	}

	switch {
	case statErr:
		h.Overall = OverallError
	case h.WasmExists && h.ZkeyExists && h.ProverAvailable:
		h.Overall = OverallHealthy
	case h.WasmExists || h.ZkeyExists || h.R1csExists || h.ProverAvailable:
		h.Overall = OverallDegraded
	default:
		h.Overall = OverallUnhealthy
	}

	if h.ZkeySize > 0 {
		// Proving time grows roughly linearly with key size; floor at 1s.
		est := time.Duration(h.ZkeySize/1_000_000) * time.Second
		if est < time.Second {
			est = time.Second
		}
		h.EstimatedProof = est
		h.EstimatedLabel = fmt.Sprintf("%.1fs", est.Seconds())
	} else {
		h.EstimatedLabel = "unknown"
	}

	return h
}
