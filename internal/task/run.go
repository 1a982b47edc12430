package task

import (
	"context"
	"time"
)

// Work is the function signature for work registered under a task. It
// receives the task's cancellation token and a reporter for progress
// updates, and returns a result to store on success.
type Work func(ctx context.Context, report func(Progress)) (any, error)

// Run creates a task, starts fn in a new goroutine bound to the task's
// cancellation token, and returns the task's public snapshot immediately.
// fn's return value is stored via StoreResult on success; a non-nil error
// is recorded via Fail unless the context was already cancelled, in which
// case the task's terminal state (set by Cancel or TTL expiry) stands.
func (m *Manager) Run(ctx context.Context, ttl, pollInterval time.Duration, fn Work) Task {
	t, taskCtx := m.Create(ctx, ttl, pollInterval)

	go func() {
		report := func(p Progress) { _ = m.UpdateProgress(t.ID, p) }
		result, err := fn(taskCtx, report)
		if err != nil {
			if taskCtx.Err() != nil {
				return
			}
			_ = m.Fail(t.ID, err.Error())
			return
		}
		_ = m.StoreResult(t.ID, result)
	}()

	return t
}
