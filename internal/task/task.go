// internal/task/task.go
package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/water-probe-monitor/internal/monitor"
	"github.com/tamzrod/water-probe-monitor/internal/output"
	"github.com/tamzrod/water-probe-monitor/internal/probe"
	"github.com/tamzrod/water-probe-monitor/internal/status"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed
	// from the current state.
	ErrInvalidTransition = errors.New("task: invalid state transition")

	// ErrNoLink is returned by Configure when no port URI is set and the
	// host did not attach a link.
	ErrNoLink = errors.New("task: no io_port and no attached link")
)

// Config is what Configure needs.
type Config struct {
	DeviceAddress          int
	IOPort                 string
	ReadTimeout            time.Duration
	MaxConsecutiveTimeouts int
}

// Driver is the probe driver as owned by the task.
type Driver interface {
	monitor.Reader
	Close() error
}

// DriverFactory creates and opens a driver. The address is already validated.
type DriverFactory func(cfg Config, link probe.RegisterReader) (Driver, error)

// Observer receives lifecycle and poll notifications.
type Observer interface {
	monitor.Observer
	ObserveState(s State)
	ObserveFault(r FaultReason)
}

// Option configures a Task.
type Option func(*Task)

// WithLink attaches a host-provided link used when IOPort is empty.
func WithLink(link probe.RegisterReader) Option {
	return func(t *Task) { t.link = link }
}

// WithDriverFactory replaces the default probe driver factory.
func WithDriverFactory(f DriverFactory) Option {
	return func(t *Task) {
		if f != nil {
			t.openDriver = f
		}
	}
}

// WithObserver installs a lifecycle/poll observer.
func WithObserver(o Observer) Option {
	return func(t *Task) { t.observer = o }
}

// WithClock overrides the clock used for status timing.
func WithClock(now func() time.Time) Option {
	return func(t *Task) {
		if now != nil {
			t.now = now
		}
	}
}

// Task owns one probe driver and its fault monitor, and enforces the
// lifecycle Uninitialized -> Ready -> Running -> Stopped | Faulted.
type Task struct {
	name       string
	out        *output.Port
	link       probe.RegisterReader
	openDriver DriverFactory
	observer   Observer
	now        func() time.Time

	// runMu serializes lifecycle operations, including the blocking read.
	runMu  sync.Mutex
	cfg    Config
	driver Driver
	mon    *monitor.Monitor

	// mu guards the fields read by Snapshot.
	mu          sync.Mutex
	state       State
	runID       string
	fault       error
	faultReason FaultReason
	lastErr     error
	lastSample  time.Time
	healthy     bool
	errorSince  time.Time
	failures    int
	threshold   int
}

// New creates an unconfigured task publishing on out.
func New(name string, out *output.Port, opts ...Option) *Task {
	t := &Task{
		name:       name,
		out:        out,
		openDriver: openProbe,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func openProbe(cfg Config, link probe.RegisterReader) (Driver, error) {
	d, err := probe.NewDriver(cfg.DeviceAddress, probe.WithReadTimeout(cfg.ReadTimeout))
	if err != nil {
		return nil, err
	}

	if cfg.IOPort != "" {
		if err := d.OpenURI(cfg.IOPort); err != nil {
			return nil, err
		}
		return d, nil
	}

	if link == nil {
		return nil, ErrNoLink
	}
	d.Attach(link)
	return d, nil
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RunID returns the id of the current run, empty before the first Start.
func (t *Task) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Fault returns the error that moved the task to StateFaulted, if any.
func (t *Task) Fault() (FaultReason, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.faultReason, t.fault
}

// Configure validates cfg and creates the driver.
// On failure the task stays Uninitialized and no driver is kept.
func (t *Task) Configure(cfg Config) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if err := t.guard("configure"); err != nil {
		return err
	}

	if !probe.ValidAddress(cfg.DeviceAddress) {
		return fmt.Errorf("task %s: configure: %w: %d", t.name, probe.ErrInvalidAddress, cfg.DeviceAddress)
	}
	if cfg.MaxConsecutiveTimeouts < 0 {
		return fmt.Errorf("task %s: configure: max_consecutive_timeouts must be >= 0", t.name)
	}

	drv, err := t.openDriver(cfg, t.link)
	if err != nil {
		return fmt.Errorf("task %s: configure: %w", t.name, err)
	}

	var out monitor.Output
	if t.out != nil {
		out = t.out
	}
	mon, err := monitor.New(drv, out, cfg.MaxConsecutiveTimeouts)
	if err != nil {
		_ = drv.Close()
		return fmt.Errorf("task %s: configure: %w", t.name, err)
	}
	mon.SetObserver(pollObserver{t})

	t.cfg = cfg
	t.driver = drv
	t.mon = mon

	t.mu.Lock()
	t.threshold = cfg.MaxConsecutiveTimeouts
	t.mu.Unlock()

	t.setState(StateReady)

	log.Printf("task configured (probe=%s address=%d port=%q max_timeouts=%d)",
		t.name, cfg.DeviceAddress, cfg.IOPort, cfg.MaxConsecutiveTimeouts)
	return nil
}

// Start begins a new run: counter reset, fresh run id.
func (t *Task) Start() error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if err := t.guard("start"); err != nil {
		return err
	}

	t.mon.Reset()

	t.mu.Lock()
	t.runID = uuid.NewString()
	t.lastErr = nil
	t.healthy = false
	t.failures = 0
	t.errorSince = t.now()
	runID := t.runID
	t.mu.Unlock()

	t.setState(StateRunning)
	log.Printf("task started (probe=%s run=%s)", t.name, runID)
	return nil
}

// Update runs one tick. A returned error other than a context error
// has moved the task to StateFaulted.
func (t *Task) Update(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if err := t.guard("update"); err != nil {
		return err
	}

	err := t.mon.PollOnce(ctx)
	if err == nil {
		return nil
	}

	// Shutdown in progress: not a device fault.
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}

	reason := FaultIO
	if errors.Is(err, monitor.ErrEscalated) {
		reason = FaultTimeout
	}

	t.mu.Lock()
	t.fault = err
	t.faultReason = reason
	t.lastErr = err
	if t.healthy || t.errorSince.IsZero() {
		t.errorSince = t.now()
	}
	t.healthy = false
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.ObserveFault(reason)
	}
	t.setState(StateFaulted)
	log.Printf("task faulted (probe=%s reason=%s): %v", t.name, reason, err)
	return err
}

// Stop ends the run normally.
func (t *Task) Stop() error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if err := t.guard("stop"); err != nil {
		return err
	}
	t.setState(StateStopped)
	log.Printf("task stopped (probe=%s)", t.name)
	return nil
}

// Cleanup closes the driver and returns to StateUninitialized.
func (t *Task) Cleanup() error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if err := t.guard("cleanup"); err != nil {
		return err
	}

	var err error
	if t.driver != nil {
		err = t.driver.Close()
	}
	t.driver = nil
	t.mon = nil

	t.mu.Lock()
	t.fault = nil
	t.faultReason = FaultNone
	t.runID = ""
	t.mu.Unlock()

	t.setState(StateUninitialized)
	if err != nil {
		return fmt.Errorf("task %s: cleanup: %w", t.name, err)
	}
	return nil
}

// Snapshot returns the status view of the task.
func (t *Task) Snapshot() status.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := status.Snapshot{
		Probe:                  t.name,
		RunID:                  t.runID,
		State:                  t.state.String(),
		StateCode:              uint16(t.state),
		ConsecutiveFailures:    t.failures,
		MaxConsecutiveFailures: t.threshold,
		LastErrorCode:          status.ErrorCode(t.lastErr),
		LastMeasurement:        t.lastSample,
	}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	if t.fault != nil {
		s.Fault = t.faultReason.String()
	}

	switch {
	case t.state == StateFaulted:
		s.Health = status.HealthError
	case t.state != StateRunning:
		s.Health = status.HealthDisabled
	case t.failures > 0:
		s.Health = status.HealthStale
	case t.healthy:
		s.Health = status.HealthOK
	default:
		s.Health = status.HealthUnknown
	}

	if s.Health != status.HealthOK && s.Health != status.HealthDisabled && !t.errorSince.IsZero() {
		secs := int64(t.now().Sub(t.errorSince) / time.Second)
		if secs > status.MaxSecondsInError {
			secs = status.MaxSecondsInError
		}
		if secs > 0 {
			s.SecondsInError = uint16(secs)
		}
	}

	return s
}

func (t *Task) guard(op string) error {
	t.mu.Lock()
	s := t.state
	t.mu.Unlock()

	if !allowed(op, s) {
		return fmt.Errorf("%w: %s from %s (task=%s)", ErrInvalidTransition, op, s, t.name)
	}
	return nil
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.ObserveState(s)
	}
}

// pollObserver records per-poll status on the task and forwards to the
// external observer.
type pollObserver struct{ t *Task }

func (p pollObserver) ObservePoll(o monitor.Outcome, failures int) {
	t := p.t

	t.mu.Lock()
	t.failures = failures
	switch o.Kind {
	case monitor.KindSuccess:
		t.lastSample = o.Measurement.Time
		t.healthy = true
		t.errorSince = time.Time{}
	default:
		t.lastErr = o.Err
		if t.healthy || t.errorSince.IsZero() {
			t.errorSince = t.now()
		}
		t.healthy = false
	}
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.ObservePoll(o, failures)
	}
}
