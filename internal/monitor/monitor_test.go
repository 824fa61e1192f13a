// internal/monitor/monitor_test.go
package monitor

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// ---- fakes ----

type step int

const (
	ok step = iota
	miss
	fatal
)

var errFatal = errors.New("modbus: exception '2' (illegal data address)")

type scriptedReader struct {
	script []step
	calls  int
}

func (r *scriptedReader) Read(ctx context.Context) (probe.Measurement, error) {
	s := r.script[r.calls]
	r.calls++
	switch s {
	case miss:
		return probe.Measurement{}, &probe.TransientError{Err: errors.New("serial: timeout")}
	case fatal:
		return probe.Measurement{}, errFatal
	default:
		return probe.Measurement{PH: float64(r.calls)}, nil
	}
}

type fakeOutput struct {
	connected bool
	writes    []probe.Measurement
}

func (f *fakeOutput) Connected() bool            { return f.connected }
func (f *fakeOutput) Write(m probe.Measurement) { f.writes = append(f.writes, m) }

type recordingObserver struct {
	kinds    []Kind
	failures []int
}

func (o *recordingObserver) ObservePoll(out Outcome, failures int) {
	o.kinds = append(o.kinds, out.Kind)
	o.failures = append(o.failures, failures)
}

func newMonitor(t *testing.T, threshold int, script ...step) (*Monitor, *scriptedReader, *fakeOutput) {
	t.Helper()
	r := &scriptedReader{script: script}
	out := &fakeOutput{connected: true}
	m, err := New(r, out, threshold)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return m, r, out
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, nil, 1); err == nil {
		t.Fatalf("expected error for nil reader")
	}
	if _, err := New(&scriptedReader{}, nil, -1); err == nil {
		t.Fatalf("expected error for negative threshold")
	}
}

func TestPollOnce_EscalatesOnThresholdPlusOne(t *testing.T) {
	m, _, _ := newMonitor(t, 3, miss, miss, miss, miss)

	for i, want := range []int{1, 2, 3} {
		if err := m.PollOnce(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i+1, err)
		}
		if m.Failures() != want {
			t.Fatalf("tick %d: failures=%d want=%d", i+1, m.Failures(), want)
		}
	}

	err := m.PollOnce(context.Background())
	if !errors.Is(err, ErrEscalated) {
		t.Fatalf("tick 4: expected ErrEscalated, got %v", err)
	}
	if !m.Halted() {
		t.Fatalf("monitor should be halted after escalation")
	}
}

func TestPollOnce_SuccessInterruptsRun(t *testing.T) {
	m, _, out := newMonitor(t, 3, miss, miss, ok, miss, miss, miss, miss)

	wantFailures := []int{1, 2, 0, 1, 2, 3}
	for i, want := range wantFailures {
		if err := m.PollOnce(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i+1, err)
		}
		if m.Failures() != want {
			t.Fatalf("tick %d: failures=%d want=%d", i+1, m.Failures(), want)
		}
	}
	if len(out.writes) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(out.writes))
	}

	if err := m.PollOnce(context.Background()); !errors.Is(err, ErrEscalated) {
		t.Fatalf("tick 7: expected ErrEscalated, got %v", err)
	}
}

func TestPollOnce_HaltedDoesNotRead(t *testing.T) {
	m, r, _ := newMonitor(t, 0, miss, ok)

	if err := m.PollOnce(context.Background()); !errors.Is(err, ErrEscalated) {
		t.Fatalf("threshold 0 must escalate on first miss, got %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.PollOnce(context.Background()); !errors.Is(err, ErrHalted) {
			t.Fatalf("expected ErrHalted, got %v", err)
		}
	}
	if r.calls != 1 {
		t.Fatalf("halted monitor must not read: calls=%d", r.calls)
	}

	m.Reset()
	if err := m.PollOnce(context.Background()); err != nil {
		t.Fatalf("after Reset: unexpected error %v", err)
	}
	if r.calls != 2 {
		t.Fatalf("expected read after Reset")
	}
}

func TestPollOnce_EscalationWrapsCause(t *testing.T) {
	m, _, _ := newMonitor(t, 0, miss)

	err := m.PollOnce(context.Background())
	if !errors.Is(err, ErrEscalated) || !probe.IsTransient(err) {
		t.Fatalf("escalation must wrap the transient cause: %v", err)
	}
}

func TestPollOnce_FatalPropagatesUnmodified(t *testing.T) {
	m, _, _ := newMonitor(t, 5, miss, miss, fatal, miss)

	_ = m.PollOnce(context.Background())
	_ = m.PollOnce(context.Background())

	err := m.PollOnce(context.Background())
	if err != errFatal {
		t.Fatalf("fatal error must be returned as-is, got %v", err)
	}
	if m.Failures() != 2 {
		t.Fatalf("fatal failure must not touch the counter: failures=%d", m.Failures())
	}
	if m.Halted() {
		t.Fatalf("fatal failure is not an escalation")
	}
}

func TestPollOnce_DisconnectedOutputStillReads(t *testing.T) {
	m, r, out := newMonitor(t, 3, miss, miss, ok)
	out.connected = false

	for i := 0; i < 3; i++ {
		if err := m.PollOnce(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error %v", i+1, err)
		}
	}
	if r.calls != 3 {
		t.Fatalf("reads must happen regardless of output: calls=%d", r.calls)
	}
	if len(out.writes) != 0 {
		t.Fatalf("disconnected output must not be written")
	}
	if m.Failures() != 0 {
		t.Fatalf("success must reset counter even when disconnected")
	}
}

func TestPollOnce_NilOutput(t *testing.T) {
	m, err := New(&scriptedReader{script: []step{ok}}, nil, 1)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := m.PollOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestPollOnce_Observer(t *testing.T) {
	m, _, _ := newMonitor(t, 1, miss, ok, fatal)
	obs := &recordingObserver{}
	m.SetObserver(obs)

	for i := 0; i < 3; i++ {
		_ = m.PollOnce(context.Background())
	}

	wantKinds := []Kind{KindTransient, KindSuccess, KindFatal}
	wantFailures := []int{1, 0, 0}
	for i := range wantKinds {
		if obs.kinds[i] != wantKinds[i] || obs.failures[i] != wantFailures[i] {
			t.Fatalf("observation %d: got=(%v,%d) want=(%v,%d)",
				i, obs.kinds[i], obs.failures[i], wantKinds[i], wantFailures[i])
		}
	}
}

// Counter always equals the trailing run of misses; escalation happens
// exactly when that run reaches threshold+1.
func TestPollOnce_CounterTracksTrailingRun(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		threshold := rng.Intn(5)
		script := make([]step, 40)
		for i := range script {
			if rng.Intn(3) == 0 {
				script[i] = ok
			} else {
				script[i] = miss
			}
		}

		m, _, out := newMonitor(t, threshold, script...)
		run, writes := 0, 0

		for i, s := range script {
			err := m.PollOnce(context.Background())

			if s == ok {
				run = 0
				writes++
			} else {
				run++
			}

			if run > threshold {
				if !errors.Is(err, ErrEscalated) {
					t.Fatalf("round %d tick %d: expected escalation, got %v", round, i, err)
				}
				if errors.Is(m.PollOnce(context.Background()), ErrEscalated) {
					t.Fatalf("round %d: escalation raised twice", round)
				}
				break
			}
			if err != nil {
				t.Fatalf("round %d tick %d: unexpected error %v", round, i, err)
			}
			if m.Failures() != run {
				t.Fatalf("round %d tick %d: failures=%d want=%d", round, i, m.Failures(), run)
			}
		}

		if len(out.writes) != writes {
			t.Fatalf("round %d: writes=%d want=%d", round, len(out.writes), writes)
		}
	}
}
