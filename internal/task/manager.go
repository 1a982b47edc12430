package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codeintel-dev/codeintel/internal/codeerr"
)

// Status is a task's lifecycle state. completed, failed, and cancelled are
// terminal: once reached, no further status transition is accepted.
type Status string

const (
	StatusWorking       Status = "working"
	StatusInputRequired Status = "inputRequired"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
	StatusCancelled     Status = "cancelled"
)

func (s Status) terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Phase is the indexing-specific progress phase carried alongside a task.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseIndexing   Phase = "indexing"
	PhaseSaving     Phase = "saving"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Progress is the optional indexing progress side-data attached to a task.
type Progress struct {
	Phase           Phase
	FilesProcessed  int
	TotalFiles      int
	CurrentFile     string
	ChunksIndexed   int
	SnippetsIndexed int
	Errors          []string
}

// Task is the externally visible record for a long-running operation.
// Copies returned by Get/List/Await are snapshots; mutate the task only
// through the Manager's methods.
type Task struct {
	ID             string
	Status         Status
	StatusMessage  string
	CreatedAt      time.Time
	LastUpdatedAt  time.Time
	TTL            time.Duration
	PollInterval   time.Duration
	Progress       *Progress
	Result         any
	FailureReason  string
}

type entry struct {
	task     Task
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{} // closed exactly once, on terminal transition
	doneOnce sync.Once
	ttlTimer *time.Timer
}

// Manager is the single-writer task table described by the engine's async
// surface: it registers a cancellation token per task, tracks monotonic
// status transitions, and lets any number of callers await the same
// terminal outcome exactly once each.
//
// Modeled on a BackgroundIndexer-style lifecycle (stopCh/doneCh,
// mutex-guarded running flag) generalized from one job to a table of jobs,
// plus a Debouncer's time.AfterFunc idiom generalized to per-task TTL
// expiration.
type Manager struct {
	mu      sync.Mutex
	tasks   map[string]*entry
	nextSeq uint64
	clock   func() time.Time
}

// NewManager creates an empty task table.
func NewManager() *Manager {
	return &Manager{
		tasks: make(map[string]*entry),
		clock: time.Now,
	}
}

// Create registers a new task in the working state and returns its public
// snapshot. If ttl is non-zero, the task auto-expires to cancelled if it
// is still non-terminal when the TTL elapses.
func (m *Manager) Create(ctx context.Context, ttl, pollInterval time.Duration) (Task, context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	id := newTaskID(m.nextSeq)
	now := m.clock()

	taskCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		task: Task{
			ID:            id,
			Status:        StatusWorking,
			CreatedAt:     now,
			LastUpdatedAt: now,
			TTL:           ttl,
			PollInterval:  pollInterval,
		},
		ctx:    taskCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if ttl > 0 {
		e.ttlTimer = time.AfterFunc(ttl, func() { m.expire(id) })
	}
	m.tasks[id] = e
	return e.task, taskCtx
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	e, ok := m.tasks[id]
	if !ok || e.task.Status.terminal() {
		m.mu.Unlock()
		return
	}
	m.transitionLocked(e, StatusCancelled, "ttl expired")
	m.mu.Unlock()
}

// transitionLocked moves a task into a terminal state, cancels its context,
// and wakes awaiters. Callers must hold m.mu.
func (m *Manager) transitionLocked(e *entry, status Status, message string) {
	if e.task.Status.terminal() {
		return
	}
	e.task.Status = status
	e.task.StatusMessage = message
	e.task.LastUpdatedAt = m.clock()
	if status == StatusFailed {
		e.task.FailureReason = message
	}
	e.cancel()
	if e.ttlTimer != nil {
		e.ttlTimer.Stop()
	}
	e.doneOnce.Do(func() { close(e.done) })
}

// UpdateStatus sets a non-terminal status and optional message. Rejected
// once the task is already terminal.
func (m *Manager) UpdateStatus(id string, status Status, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return codeerr.TaskNotFound(id)
	}
	if e.task.Status.terminal() {
		return nil
	}
	if status.terminal() {
		m.transitionLocked(e, status, message)
		return nil
	}
	e.task.Status = status
	e.task.StatusMessage = message
	e.task.LastUpdatedAt = m.clock()
	return nil
}

// UpdateProgress replaces the task's indexing progress snapshot.
func (m *Manager) UpdateProgress(id string, progress Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return codeerr.TaskNotFound(id)
	}
	if e.task.Status.terminal() {
		return nil
	}
	p := progress
	e.task.Progress = &p
	e.task.LastUpdatedAt = m.clock()
	return nil
}

// StoreResult transitions the task to completed and attaches its result.
func (m *Manager) StoreResult(id string, result any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return codeerr.TaskNotFound(id)
	}
	if e.task.Status.terminal() {
		return nil
	}
	e.task.Result = result
	m.transitionLocked(e, StatusCompleted, "")
	return nil
}

// Fail transitions the task to failed with the given message.
func (m *Manager) Fail(id string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return codeerr.TaskNotFound(id)
	}
	m.transitionLocked(e, StatusFailed, message)
	return nil
}

// Cancel sets the cancellation token, cancels the registered background
// work via its context, and wakes any awaiter with a cancellation outcome.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return codeerr.TaskNotFound(id)
	}
	m.transitionLocked(e, StatusCancelled, "cancelled by caller")
	return nil
}

// Get returns a snapshot of the task.
func (m *Manager) Get(id string) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return Task{}, codeerr.TaskNotFound(id)
	}
	return e.task, nil
}

// List returns up to limit tasks, ordered by ID, starting after cursor.
// An empty cursor starts from the beginning.
func (m *Manager) List(cursor string, limit int) ([]Task, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if cursor != "" {
		idx := sort.SearchStrings(ids, cursor)
		if idx < len(ids) && ids[idx] == cursor {
			start = idx + 1
		} else {
			start = idx
		}
	}

	if limit <= 0 {
		limit = len(ids)
	}
	out := make([]Task, 0, limit)
	next := ""
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.tasks[ids[i]].task)
		next = ids[i]
	}
	return out, next
}

// Await returns the task's terminal snapshot once reached, or the current
// snapshot immediately if already terminal. If timeout is non-zero and
// elapses first, it returns the current (non-terminal) snapshot and a
// deadline-exceeded error. Each awaiter receives its own wakeup — Await
// may be called concurrently by multiple goroutines for the same task.
func (m *Manager) Await(ctx context.Context, id string, timeout time.Duration) (Task, error) {
	m.mu.Lock()
	e, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return Task{}, codeerr.TaskNotFound(id)
	}
	if e.task.Status.terminal() {
		snap := e.task
		m.mu.Unlock()
		return snap, nil
	}
	done := e.done
	m.mu.Unlock()

	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-done:
		return m.Get(id)
	case <-timeoutCh:
		snap, _ := m.Get(id)
		return snap, context.DeadlineExceeded
	case <-ctx.Done():
		snap, _ := m.Get(id)
		return snap, ctx.Err()
	}
}

// GetResult returns the stored result, or codeerr.NoResult if the task has
// not completed successfully (including cancelled/failed tasks).
func (m *Manager) GetResult(id string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return nil, codeerr.TaskNotFound(id)
	}
	if e.task.Status != StatusCompleted {
		return nil, codeerr.NoResult(id)
	}
	return e.task.Result, nil
}

// GetCancellationToken returns the context that is cancelled when the task
// transitions to a terminal state — the token background work should
// select on.
func (m *Manager) GetCancellationToken(id string) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return nil, codeerr.TaskNotFound(id)
	}
	return e.ctx, nil
}

// Cleanup evicts terminal tasks whose LastUpdatedAt is older than olderThan.
// Returns the number of tasks evicted.
func (m *Manager) Cleanup(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock().Add(-olderThan)
	n := 0
	for id, e := range m.tasks {
		if e.task.Status.terminal() && e.task.LastUpdatedAt.Before(cutoff) {
			delete(m.tasks, id)
			n++
		}
	}
	return n
}

func newTaskID(seq uint64) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, 0, 12)
	n := seq
	if n == 0 {
		buf = append(buf, '0')
	}
	for n > 0 {
		buf = append([]byte{alphabet[n%uint64(len(alphabet))]}, buf...)
		n /= uint64(len(alphabet))
	}
	return "task_" + string(buf)
}
