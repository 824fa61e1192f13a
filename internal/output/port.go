// internal/output/port.go
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// Sink consumes measurements written to a Port.
type Sink interface {
	Name() string
	WriteMeasurement(m probe.Measurement) error
}

// ErrorObserver is told about every failed sink write.
type ErrorObserver interface {
	ObserveSinkError(sink string, err error)
}

// Port fans measurements out to connected sinks.
// Writes are delivery-only: sink errors are logged, never returned.
type Port struct {
	name string

	mu       sync.RWMutex
	sinks    []Sink
	observer ErrorObserver
}

// NewPort creates an unconnected port.
func NewPort(name string) *Port {
	return &Port{name: name}
}

// SetErrorObserver installs o. nil disables observation.
func (p *Port) SetErrorObserver(o ErrorObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = o
}

// Connect attaches a sink. Sink names must be unique per port.
func (p *Port) Connect(s Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.sinks {
		if existing.Name() == s.Name() {
			return fmt.Errorf("output %s: sink %q already connected", p.name, s.Name())
		}
	}
	p.sinks = append(p.sinks, s)
	return nil
}

// Disconnect detaches the sink with the given name. Unknown names are ignored.
func (p *Port) Disconnect(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.sinks[:0]
	for _, s := range p.sinks {
		if s.Name() != name {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(p.sinks); i++ {
		p.sinks[i] = nil
	}
	p.sinks = kept
}

// Connected reports whether at least one sink is attached.
func (p *Port) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sinks) > 0
}

// Write delivers m to every connected sink, in connection order.
func (p *Port) Write(m probe.Measurement) {
	p.mu.RLock()
	sinks := append([]Sink(nil), p.sinks...)
	observer := p.observer
	p.mu.RUnlock()

	for _, s := range sinks {
		if err := s.WriteMeasurement(m); err != nil {
			log.Printf("sink write failed (port=%s sink=%s): %v", p.name, s.Name(), err)
			if observer != nil {
				observer.ObserveSinkError(s.Name(), err)
			}
		}
	}
}
