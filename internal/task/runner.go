// internal/task/runner.go
package task

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Run drives t with one Update per period until ctx is done or t leaves
// StateRunning. The first tick runs immediately. No overlap. No retries.
//
// Returns nil on cancellation, the fault error when the task faulted.
func Run(ctx context.Context, t *Task, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("task %s: period must be > 0", t.Name())
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if err := t.Update(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrInvalidTransition) && t.State() == StateStopped {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
