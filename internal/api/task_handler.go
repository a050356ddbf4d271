package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/reqpool/internal/api/shared"
	"github.com/phrazzld/reqpool/internal/pool"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	pool *pool.Pool
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(p *pool.Pool) *TaskHandler {
	return &TaskHandler{pool: p}
}

// SubmitTask handles POST /api/tasks requests.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := pool.NewTask(req.Endpoint, req.Method, req.Body)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	if err := h.pool.Submit(task); err != nil {
		slog.Error("failed to submit task", "error", err, "endpoint", req.Endpoint)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	// 202 Accepted: execution happens asynchronously.
	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitTaskResponse{ID: task.ID().String()})
}

// SubmitBatch handles POST /api/tasks/batch requests. Submissions are applied
// in order; an invalid item fails alone without affecting accepted ones.
func (h *TaskHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchSubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	items := make([]BatchItemResponse, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		task, err := pool.NewTask(item.Endpoint, item.Method, item.Body)
		if err == nil {
			err = h.pool.Submit(task)
		}
		if err != nil {
			items = append(items, BatchItemResponse{Error: GetSafeErrorMessage(err)})
			continue
		}
		items = append(items, BatchItemResponse{ID: task.ID().String()})
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, items)
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, ok := h.pool.Task(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToDTOResponse(task))
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.pool.Tasks()
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToDTOResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetStatus handles GET /api/status requests.
func (h *TaskHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.pool.Stats())
}
