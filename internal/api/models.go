package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/reqpool/internal/pool"
)

// Common request/response structures

// SubmitTaskRequest defines the payload for the task submission endpoint.
type SubmitTaskRequest struct {
	Endpoint string          `json:"endpoint" validate:"required,url"`
	Method   string          `json:"method"   validate:"omitempty,oneof=GET POST get post"`
	Body     json.RawMessage `json:"body,omitempty"`
}

// SubmitTaskResponse defines the successful response for task submission.
type SubmitTaskResponse struct {
	ID string `json:"id"`
}

// BatchSubmitRequest defines the payload for the batch submission endpoint.
// Items are validated individually at submission time so one invalid item
// fails alone instead of rejecting the whole batch.
type BatchSubmitRequest struct {
	Tasks []SubmitTaskRequest `json:"tasks" validate:"required,min=1"`
}

// BatchItemResponse reports the outcome of one submission in a batch.
// Exactly one of ID and Error is set.
type BatchItemResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string       `json:"id"`
	Endpoint    string       `json:"endpoint"`
	Method      string       `json:"method"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Result      *pool.Result `json:"result,omitempty"`
}

// taskToDTOResponse converts a pool.Task to a TaskResponse.
func taskToDTOResponse(t *pool.Task) TaskResponse {
	resp := TaskResponse{
		ID:        t.ID().String(),
		Endpoint:  t.Endpoint(),
		Method:    t.Method(),
		Status:    string(t.Status()),
		CreatedAt: t.CreatedAt(),
		Result:    t.Result(),
	}
	if started := t.StartedAt(); !started.IsZero() {
		resp.StartedAt = &started
	}
	if completed := t.CompletedAt(); !completed.IsZero() {
		resp.CompletedAt = &completed
	}
	return resp
}
