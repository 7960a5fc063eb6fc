package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor keeps last-run bookkeeping for the health endpoint. The HTTP
// handlers read it concurrently with the run worker writing it.
type Monitor struct {
	mu             sync.RWMutex
	startTime      time.Time
	lastRunTime    time.Time
	lastRunSuccess bool
	lastRunSummary string
	totalRuns      int
	totalFailures  int
}

// Status is the payload served by the health endpoint.
type Status struct {
	Healthy       bool   `json:"healthy"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	TotalRuns     int    `json:"totalRuns"`
	Failures      int    `json:"failures"`
	LastRun       string `json:"lastRun,omitempty"`
	LastRunAt     string `json:"lastRunAt,omitempty"`
}

func NewMonitor() *Monitor {
	return &Monitor{startTime: time.Now()}
}

// RecordSuccess notes a completed run.
func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRuns++
	m.lastRunTime = time.Now()
	m.lastRunSuccess = true
	m.lastRunSummary = summary

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration.Round(time.Millisecond))
}

// RecordFailure notes a failed run.
func (m *Monitor) RecordFailure(kind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRuns++
	m.totalFailures++
	m.lastRunTime = time.Now()
	m.lastRunSuccess = false
	m.lastRunSummary = fmt.Sprintf("%s: %s", kind, message)

	log.Printf("🚨 Run failed (%s): %s", kind, message)
}

// IsHealthy reports whether the most recent run succeeded.
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

// GetStatus snapshots the monitor for the health endpoint.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		Healthy:       m.lastRunTime.IsZero() || m.lastRunSuccess,
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		TotalRuns:     m.totalRuns,
		Failures:      m.totalFailures,
		LastRun:       m.lastRunSummary,
	}
	if !m.lastRunTime.IsZero() {
		status.LastRunAt = m.lastRunTime.Format(time.RFC3339)
	}
	return status
}
