package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Common errors returned by the Pool.
var (
	ErrInvalidConcurrency = errors.New("max concurrency must be positive")
	ErrNilTransport       = errors.New("transport cannot be nil")
	ErrPoolClosed         = errors.New("pool is closed")
	ErrDuplicateTask      = errors.New("task already registered")
)

// Defaults applied by New for unset optional config values.
const (
	defaultQueueSize    = 256
	defaultPollInterval = 100 * time.Millisecond
)

// Config holds pool construction options.
type Config struct {
	// MaxConcurrency bounds how many task executions run at once. Required,
	// must be positive.
	MaxConcurrency int

	// QueueSize is the admission queue's initial capacity. The queue grows
	// past it as needed; submissions are never rejected for backlog.
	// Defaults to 256.
	QueueSize int

	// PollInterval is the dispatch loop's re-check delay while executions
	// are in flight but the queue is empty. Defaults to 100ms.
	PollInterval time.Duration
}

// Stats is a point-in-time snapshot of pool state. Individual counters are
// read independently, so the snapshot is approximate while dispatch is
// active and exact once the pool is idle.
type Stats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Running     int64 `json:"running"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Cancelled   int64 `json:"cancelled"`
	Dispatching bool  `json:"dispatching"`
}

// Pool schedules submitted tasks onto a bounded number of concurrent
// executions. Tasks are admitted in FIFO order; a single dispatch loop,
// started lazily on first submission, moves tasks from the admission queue to
// execution under a counting semaphore. The loop exits when the pool drains
// and restarts on the next submission.
type Pool struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger

	sem   *semaphore.Weighted
	queue *taskQueue

	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task

	total     atomic.Int64
	running   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	cancelled atomic.Int64

	// inflight counts launched executions that have not yet released their
	// slot. It drives idle detection together with the queue length.
	inflight atomic.Int64

	// startMu guards the check-then-start of the dispatch loop so that
	// concurrent submissions never launch two loops.
	startMu     sync.Mutex
	dispatching bool
	loopDone    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	notifyMu      sync.RWMutex
	drainHandlers []DrainHandler
}

// New creates a pool executing tasks through the given transport. Returns an
// error if the configured concurrency is not positive or the transport is
// nil. A nil logger falls back to slog.Default().
func New(cfg Config, transport Transport, logger *slog.Logger) (*Pool, error) {
	if cfg.MaxConcurrency <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, cfg.MaxConcurrency)
	}
	if transport == nil {
		return nil, ErrNilTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("component", "pool"),
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		queue:     newTaskQueue(cfg.QueueSize),
		tasks:     make(map[uuid.UUID]*Task),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Submit registers the task and appends it to the admission queue. The
// dispatch loop is started if it is not already running. Returns a validation
// error for a nil task or empty endpoint, ErrPoolClosed after shutdown, and
// ErrDuplicateTask for an already registered identifier. A valid submission
// to an open pool is always accepted: the queue grows as needed, so Submit
// never blocks beyond registry and queue insertion and never rejects for
// backlog.
func (p *Pool) Submit(t *Task) error {
	if t == nil {
		return ErrNilTask
	}
	if t.endpoint == "" {
		return ErrEmptyEndpoint
	}
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.mu.Lock()
	if _, ok := p.tasks[t.id]; ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.id)
	}
	p.tasks[t.id] = t
	p.mu.Unlock()

	// Count the task before it becomes visible to the dispatch loop, so a
	// drain snapshot can never observe more terminal tasks than total.
	p.total.Add(1)
	p.queue.push(t)

	// A submission racing an immediate stop can land after the shutdown
	// drain emptied the queue. Re-checking after the insert closes that
	// window: either the task is still waiting and we take it back, or the
	// drain (or the loop) already claimed it.
	if p.closed.Load() && p.queue.remove(t) {
		p.total.Add(-1)
		p.mu.Lock()
		delete(p.tasks, t.id)
		p.mu.Unlock()
		return ErrPoolClosed
	}

	p.logger.Debug("task submitted",
		"task_id", t.id,
		"endpoint", t.endpoint,
		"method", t.method,
		"queue_len", p.queue.len())

	p.ensureDispatching()
	return nil
}

// SubmitBatch submits tasks in the given order. A task that fails submission
// does not affect previously accepted tasks; there is no atomicity across the
// batch. The returned error joins every per-task failure.
func (p *Pool) SubmitBatch(tasks []*Task) error {
	var errs []error
	for i, t := range tasks {
		if err := p.Submit(t); err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Get builds a GET task for the endpoint, attaches the optional callbacks,
// and submits it. Returns the generated task identifier.
func (p *Pool) Get(endpoint string, onSuccess SuccessFunc, onFailure FailureFunc) (uuid.UUID, error) {
	return p.submitConvenience(endpoint, MethodGet, nil, onSuccess, onFailure)
}

// Post builds a POST task for the endpoint and body, attaches the optional
// callbacks, and submits it. Returns the generated task identifier.
func (p *Pool) Post(endpoint string, body []byte, onSuccess SuccessFunc, onFailure FailureFunc) (uuid.UUID, error) {
	return p.submitConvenience(endpoint, MethodPost, body, onSuccess, onFailure)
}

func (p *Pool) submitConvenience(endpoint, method string, body []byte, onSuccess SuccessFunc, onFailure FailureFunc) (uuid.UUID, error) {
	t, err := NewTask(endpoint, method, body)
	if err != nil {
		return uuid.Nil, err
	}
	t.SetOnSuccess(onSuccess)
	t.SetOnFailure(onFailure)
	if err := p.Submit(t); err != nil {
		return uuid.Nil, err
	}
	return t.ID(), nil
}

// Task returns the registered task with the given identifier. Registry
// entries persist for the pool's lifetime, so terminal tasks stay queryable.
func (p *Pool) Task(id uuid.UUID) (*Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tasks[id]
	return t, ok
}

// Tasks returns a snapshot copy of all registered tasks, in no particular
// order.
func (p *Pool) Tasks() []*Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		out = append(out, t)
	}
	return out
}

// Stats returns a point-in-time snapshot of the pool's aggregate counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Total:       p.total.Load(),
		Pending:     int64(p.queue.len()),
		Running:     p.running.Load(),
		Completed:   p.completed.Load(),
		Failed:      p.failed.Load(),
		Cancelled:   p.cancelled.Load(),
		Dispatching: p.isDispatching(),
	}
}

func (p *Pool) isDispatching() bool {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	return p.dispatching
}

// ensureDispatching starts the dispatch loop unless one is already running or
// the pool is closed.
func (p *Pool) ensureDispatching() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.dispatching || p.closed.Load() {
		return
	}
	p.dispatching = true
	p.loopDone = make(chan struct{})
	go p.dispatch(p.loopDone)
}

// dispatch is the single coordination loop: it pulls tasks from the admission
// queue under the semaphore's limit, launches one goroutine per admitted
// task, and exits after firing the drain notification once the queue is empty
// and nothing is in flight. Cancellation aborts the loop at any suspension
// point without firing the notification.
func (p *Pool) dispatch(done chan struct{}) {
	defer close(done)
	defer func() {
		p.startMu.Lock()
		if p.loopDone == done {
			p.dispatching = false
		}
		p.startMu.Unlock()
	}()

	p.logger.Debug("dispatch loop started")

	for {
		if p.ctx.Err() != nil {
			p.logger.Debug("dispatch loop cancelled")
			return
		}

		if p.queue.len() == 0 {
			if p.inflight.Load() == 0 {
				if p.becomeIdle() {
					return
				}
				// A submission raced in; keep draining.
				continue
			}
			select {
			case <-p.ctx.Done():
				p.logger.Debug("dispatch loop cancelled")
				return
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			// Cancelled while waiting for a slot.
			p.logger.Debug("dispatch loop cancelled", "error", err)
			return
		}

		// Count the execution in flight before the pop, so Wait and Stop can
		// never observe the task gone from the queue yet not accounted.
		p.inflight.Add(1)
		if t, ok := p.queue.pop(); ok {
			p.launch(t)
		} else {
			// The queue raced empty between the check and the pop; hand the
			// slot back and re-evaluate.
			p.inflight.Add(-1)
			p.sem.Release(1)
		}
	}
}

// becomeIdle transitions the loop to idle and fires the drain notification.
// The queue re-check happens under the same lock as loop startup, so a
// submission that lands during the transition either keeps this loop draining
// or starts a fresh one; no task is ever stranded.
func (p *Pool) becomeIdle() bool {
	p.startMu.Lock()
	if p.queue.len() > 0 {
		p.startMu.Unlock()
		return false
	}
	p.dispatching = false
	p.startMu.Unlock()

	p.notifyDrained(p.Stats())
	p.logger.Debug("dispatch loop idle")
	return true
}

// launch runs the task on its own goroutine. The caller has already counted
// the execution in flight; the count and the semaphore slot are released on
// every exit path, including a panicking callback.
func (p *Pool) launch(t *Task) {
	go func() {
		defer p.sem.Release(1)
		defer p.inflight.Add(-1)
		p.execute(t)
	}()
}

// execute runs a single task to a terminal state and invokes at most one of
// its callbacks. Transport errors are contained here: they mark the task
// Failed and never propagate to the dispatch loop or sibling executions.
func (p *Pool) execute(t *Task) {
	t.markRunning()
	p.running.Add(1)
	defer p.running.Add(-1)

	logger := p.logger.With(
		"task_id", t.ID(),
		"endpoint", t.Endpoint(),
		"method", t.Method(),
	)
	logger.Debug("executing task")

	// A started execution always runs to its own completion or failure, so
	// the transport gets a fresh context rather than the pool's.
	payload, err := p.transport.Execute(context.Background(), t.Endpoint(), t.Method(), t.Body())
	if err != nil {
		logger.Error("task execution failed", "error", err)
		p.failed.Add(1)
		if cb := t.fail(err); cb != nil {
			cb(t, err)
		}
		return
	}

	logger.Debug("task completed", "payload_size", len(payload))
	p.completed.Add(1)
	if cb := t.complete(payload); cb != nil {
		cb(t)
	}
}

// Wait blocks until the queue is empty and no executions are in flight, or
// until timeout elapses. A non-positive timeout waits indefinitely. Returns
// true if the pool drained before the timeout; an empty pool is vacuously
// drained. A timed-out wait has no side effects: no tasks are cancelled.
func (p *Pool) Wait(timeout time.Duration) bool {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if p.queue.len() == 0 && p.inflight.Load() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

// Stop performs a graceful shutdown: further submissions are rejected, queued
// tasks and in-flight executions run to completion bounded by timeout (a
// non-positive timeout waits indefinitely), then the cancellation signal is
// raised and the dispatch loop is joined. Returns true if the pool fully
// drained before the timeout.
func (p *Pool) Stop(timeout time.Duration) bool {
	p.closed.Store(true)
	p.logger.Info("pool stopping", "timeout", timeout)

	drained := p.Wait(timeout)

	p.cancel()
	p.joinLoop()

	p.logger.Info("pool stopped", "drained", drained)
	return drained
}

// StopNow stops the pool immediately: submissions are rejected, the dispatch
// loop is cancelled, and every task still sitting in the admission queue is
// marked Cancelled. Executions already launched are not interrupted and run
// to completion; a task the loop has already popped counts as launched and is
// never cancelled. Safe to call more than once.
func (p *Pool) StopNow() {
	p.closed.Store(true)
	p.cancel()
	p.joinLoop()

	cancelled := 0
	for _, t := range p.queue.drain() {
		if t.cancel() {
			p.cancelled.Add(1)
			cancelled++
		}
	}
	if cancelled > 0 {
		p.logger.Info("cancelled queued tasks", "count", cancelled)
	}
}

// Close tears the pool down, composing an immediate stop with release of the
// coordination primitives. Idempotent.
func (p *Pool) Close() error {
	p.StopNow()
	return nil
}

// joinLoop waits for the currently running dispatch loop, if any, to end.
func (p *Pool) joinLoop() {
	p.startMu.Lock()
	done := p.loopDone
	active := p.dispatching
	p.startMu.Unlock()

	if active && done != nil {
		<-done
	}
}
