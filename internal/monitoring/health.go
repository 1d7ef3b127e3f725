// Package monitoring's HealthChecker exposes a JSON /healthz endpoint for
// the driver, re-keyed from the teacher's connection/last-trade shape to
// this engine's bar-synchronous vocabulary: last bar processed, whether
// the hard stop is latched, and the most recent fatal invariant breach
// (if any), which per §7 means the engine has stopped processing bars.
package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type HealthChecker struct {
	mu            sync.RWMutex
	lastBar       time.Time
	lastClose     float64
	hardStop      bool
	fatalErr      string
	startTime     time.Time
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastBar   time.Time `json:"last_bar"`
	LastClose float64   `json:"last_close"`
	HardStop  bool      `json:"hard_stop_active"`
	Uptime    string    `json:"uptime"`
	FatalErr  string    `json:"fatal_error,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{startTime: time.Now()}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.hardStop {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if h.fatalErr != "" {
		status = "fatal"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastBar:   h.lastBar,
		LastClose: h.lastClose,
		HardStop:  h.hardStop,
		Uptime:    time.Since(h.startTime).String(),
		FatalErr:  h.fatalErr,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// RecordBar updates the last-processed-bar fields after each ProcessBar
// call, regardless of whether the bar was skipped.
func (h *HealthChecker) RecordBar(timestamp time.Time, close float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastBar = timestamp
	h.lastClose = close
}

// SetHardStop reflects the controller's latched state into the health
// endpoint.
func (h *HealthChecker) SetHardStop(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hardStop = active
}

// SetFatal records the invariant breach that halted the engine, per §7.
func (h *HealthChecker) SetFatal(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.fatalErr = err.Error()
	}
}
