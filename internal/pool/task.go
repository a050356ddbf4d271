package pool

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Methods accepted by the pool.
const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// Common validation errors for Task.
var (
	ErrNilTask       = errors.New("task cannot be nil")
	ErrEmptyEndpoint = errors.New("task endpoint cannot be empty")
	ErrInvalidMethod = errors.New("task method must be GET or POST")
)

// SuccessFunc is invoked after a task reaches Completed.
type SuccessFunc func(*Task)

// FailureFunc is invoked with the task and the transport error after a task
// reaches Failed.
type FailureFunc func(*Task, error)

// Result holds the outcome of a task's single execution: the response payload
// on success, or the error description on failure.
type Result struct {
	Payload []byte `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Task represents one outbound request submitted to the pool. The descriptor
// fields (endpoint, method, body) are immutable after construction; the pool
// exclusively owns the mutable lifecycle state after submission. Callers keep
// the pointer for status polling through the thread-safe accessors.
type Task struct {
	id        uuid.UUID
	endpoint  string
	method    string
	body      []byte
	createdAt time.Time

	onSuccess SuccessFunc
	onFailure FailureFunc

	mu          sync.Mutex
	status      Status
	startedAt   time.Time
	completedAt time.Time
	result      *Result
}

// NewTask creates a task for the given endpoint and method. The method is
// normalized to upper case. Returns an error if the endpoint is empty or the
// method is not GET or POST.
func NewTask(endpoint, method string, body []byte) (*Task, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	method = strings.ToUpper(method)
	switch method {
	case MethodGet, MethodPost:
	case "":
		method = MethodGet
	default:
		return nil, ErrInvalidMethod
	}

	return &Task{
		id:        uuid.New(),
		endpoint:  endpoint,
		method:    method,
		body:      body,
		createdAt: time.Now().UTC(),
		status:    StatusPending,
	}, nil
}

// NewGetTask creates a GET task for the given endpoint.
func NewGetTask(endpoint string) (*Task, error) {
	return NewTask(endpoint, MethodGet, nil)
}

// NewPostTask creates a POST task for the given endpoint and body.
func NewPostTask(endpoint string, body []byte) (*Task, error) {
	return NewTask(endpoint, MethodPost, body)
}

// ID returns the task's unique identifier.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Endpoint returns the task's target endpoint.
func (t *Task) Endpoint() string {
	return t.endpoint
}

// Method returns the task's request method.
func (t *Task) Method() string {
	return t.method
}

// Body returns the task's request body.
func (t *Task) Body() []byte {
	return t.body
}

// CreatedAt returns when the task was constructed.
func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

// SetOnSuccess registers a callback invoked at most once, after the task
// reaches Completed. Must be called before the task is submitted.
func (t *Task) SetOnSuccess(fn SuccessFunc) {
	t.onSuccess = fn
}

// SetOnFailure registers a callback invoked at most once, after the task
// reaches Failed. Must be called before the task is submitted.
func (t *Task) SetOnFailure(fn FailureFunc) {
	t.onFailure = fn
}

// Status returns the current task status.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// StartedAt returns when execution began, or the zero time if the task never
// started.
func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// CompletedAt returns when the task reached a terminal state, or the zero
// time if it has not.
func (t *Task) CompletedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedAt
}

// Result returns the task's execution outcome, or nil while the task is still
// pending or running. The returned value must be treated as read-only.
func (t *Task) Result() *Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// markRunning transitions the task from Pending to Running and records the
// start time.
func (t *Task) markRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusPending {
		return
	}
	t.status = StatusRunning
	t.startedAt = time.Now().UTC()
}

// complete records a successful result and transitions the task to Completed.
// Returns the success callback to invoke, or nil if the task was already
// terminal.
func (t *Task) complete(payload []byte) SuccessFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return nil
	}
	t.status = StatusCompleted
	t.completedAt = time.Now().UTC()
	t.result = &Result{Payload: payload}
	return t.onSuccess
}

// fail records the execution error and transitions the task to Failed.
// Returns the failure callback to invoke, or nil if the task was already
// terminal.
func (t *Task) fail(err error) FailureFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return nil
	}
	t.status = StatusFailed
	t.completedAt = time.Now().UTC()
	t.result = &Result{Err: err.Error()}
	return t.onFailure
}

// cancel transitions a still-pending task to Cancelled. Reports whether the
// transition happened; a task that has started executing is never cancelled.
func (t *Task) cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusPending {
		return false
	}
	t.status = StatusCancelled
	t.completedAt = time.Now().UTC()
	return true
}
