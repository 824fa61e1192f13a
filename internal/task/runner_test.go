// internal/task/runner_test.go
package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/water-probe-monitor/internal/monitor"
)

func TestRun_ReturnsOnEscalation(t *testing.T) {
	link := &scriptedLink{script: []reply{okReply(), missReply()}}
	tk, sink := newTask(t, link)
	mustRun(t, tk, cfg(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, tk, time.Millisecond)
	if !errors.Is(err, monitor.ErrEscalated) {
		t.Fatalf("expected escalation, got %v", err)
	}
	if tk.State() != StateFaulted {
		t.Fatalf("state=%s want FAULTED", tk.State())
	}
	if link.Calls() != 3 {
		t.Fatalf("expected ok + 2 misses = 3 reads, got %d", link.Calls())
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one published sample, got %d", sink.Len())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	link := &scriptedLink{script: []reply{okReply()}}
	tk, _ := newTask(t, link)
	mustRun(t, tk, cfg(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, tk, time.Millisecond) }()

	deadline := time.Now().Add(5 * time.Second)
	for link.Calls() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run must return nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if tk.State() != StateRunning {
		t.Fatalf("cancel must not change the task state, got %s", tk.State())
	}
}

func TestRun_StopsWhenTaskStopped(t *testing.T) {
	link := &scriptedLink{script: []reply{okReply()}}
	tk, _ := newTask(t, link)
	mustRun(t, tk, cfg(1))

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), tk, time.Millisecond) }()

	deadline := time.Now().Add(5 * time.Second)
	for link.Calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := tk.Stop(); err != nil {
		t.Fatalf("Stop err=%v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run must return nil after Stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after Stop")
	}
}

func TestRun_RejectsBadPeriod(t *testing.T) {
	tk, _ := newTask(t, &scriptedLink{script: []reply{okReply()}})
	if err := Run(context.Background(), tk, 0); err == nil {
		t.Fatalf("expected error for zero period")
	}
}
