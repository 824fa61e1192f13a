// internal/output/latest.go
package output

import (
	"sync"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// Latest keeps the most recent measurement for readers such as the HTTP API.
type Latest struct {
	mu  sync.RWMutex
	m   probe.Measurement
	set bool
}

func NewLatest() *Latest { return &Latest{} }

func (l *Latest) Name() string { return "latest" }

func (l *Latest) WriteMeasurement(m probe.Measurement) error {
	l.mu.Lock()
	l.m = m
	l.set = true
	l.mu.Unlock()
	return nil
}

// Get returns the last measurement and whether one was ever written.
func (l *Latest) Get() (probe.Measurement, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m, l.set
}
