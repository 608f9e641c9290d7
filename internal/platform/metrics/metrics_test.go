package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	return NewWith(prometheus.NewRegistry())
}

func TestRecordProofCounts(t *testing.T) {
	m := newTestMetrics()

	m.RecordProof("real", true, 120*time.Millisecond)
	m.RecordProof("simulated", true, 40*time.Millisecond)
	m.RecordProof("simulated", false, 40*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalProofs)
	assert.Equal(t, int64(2), snap.SuccessfulProofs)
	assert.Equal(t, int64(1), snap.FailedProofs)
	assert.Equal(t, int64(1), snap.RealProofs)
	assert.Equal(t, int64(2), snap.SimulatedProofs)
	assert.InDelta(t, 66.66, snap.SuccessRatePercent, 0.1)
}

func TestRunningAverage(t *testing.T) {
	m := newTestMetrics()

	m.RecordProof("real", true, 100*time.Millisecond)
	m.RecordProof("real", true, 300*time.Millisecond)

	snap := m.Snapshot()
	assert.InDelta(t, 200, snap.AvgProcessingMs, 0.01)
}

func TestConcurrentUpdates(t *testing.T) {
	m := newTestMetrics()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordProof("simulated", true, 10*time.Millisecond)
			m.RecordError("timeout")
			m.RecordRiskAssessment()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	require.Equal(t, int64(50), snap.TotalProofs)
	assert.Equal(t, int64(50), snap.ErrorCounts["timeout"])
	assert.Equal(t, int64(50), snap.RiskAssessments)
}

func TestSnapshotCopiesErrorCounts(t *testing.T) {
	m := newTestMetrics()
	m.RecordError("parse")

	snap := m.Snapshot()
	snap.ErrorCounts["parse"] = 99

	assert.Equal(t, int64(1), m.Snapshot().ErrorCounts["parse"])
}
