package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/reqpool/internal/pool"
)

// fakeTransport lets tests control execution outcomes.
type fakeTransport struct {
	execFn func(ctx context.Context, endpoint, method string, body []byte) ([]byte, error)
}

func (f *fakeTransport) Execute(ctx context.Context, endpoint, method string, body []byte) ([]byte, error) {
	if f.execFn != nil {
		return f.execFn(ctx, endpoint, method, body)
	}
	return []byte("ok"), nil
}

func newTestHandler(t *testing.T, transport pool.Transport) (*TaskHandler, *pool.Pool) {
	t.Helper()
	p, err := pool.New(
		pool.Config{MaxConcurrency: 2, PollInterval: 10 * time.Millisecond},
		transport,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return NewTaskHandler(p), p
}

func newTestRouter(h *TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/tasks", h.SubmitTask)
	r.Post("/api/tasks/batch", h.SubmitBatch)
	r.Get("/api/tasks", h.ListTasks)
	r.Get("/api/tasks/{id}", h.GetTask)
	r.Get("/api/status", h.GetStatus)
	return r
}

func TestSubmitTask(t *testing.T) {
	handler, p := newTestHandler(t, &fakeTransport{})
	router := newTestRouter(handler)

	body := bytes.NewBufferString(`{"endpoint":"https://example.com/ocr","method":"POST","body":{"image":"abc"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp SubmitTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	require.True(t, p.Wait(2*time.Second))
	task, ok := p.Task(id)
	require.True(t, ok)
	assert.Equal(t, pool.StatusCompleted, task.Status())
}

func TestSubmitTask_Validation(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeTransport{})
	router := newTestRouter(handler)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"endpoint":`},
		{name: "missing endpoint", body: `{"method":"GET"}`},
		{name: "non-URL endpoint", body: `{"endpoint":"not a url"}`},
		{name: "unsupported method", body: `{"endpoint":"https://example.com","method":"DELETE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitBatch_PartialFailure(t *testing.T) {
	handler, p := newTestHandler(t, &fakeTransport{})
	router := newTestRouter(handler)

	body := bytes.NewBufferString(`{"tasks":[
		{"endpoint":"https://example.com/1"},
		{"endpoint":"https://example.com/2","method":"PATCH"},
		{"endpoint":"https://example.com/3"}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/batch", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var items []BatchItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.NotEmpty(t, items[0].ID)
	assert.Empty(t, items[0].Error)
	assert.Empty(t, items[1].ID)
	assert.NotEmpty(t, items[1].Error)
	assert.NotEmpty(t, items[2].ID)

	require.True(t, p.Wait(2*time.Second))
	assert.Equal(t, int64(2), p.Stats().Completed)
}

func TestGetTask(t *testing.T) {
	transport := &fakeTransport{
		execFn: func(ctx context.Context, endpoint, method string, body []byte) ([]byte, error) {
			return nil, errors.New("upstream timeout")
		},
	}
	handler, p := newTestHandler(t, transport)
	router := newTestRouter(handler)

	id, err := p.Get("https://example.com/flaky", nil, nil)
	require.NoError(t, err)
	require.True(t, p.Wait(2*time.Second))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.ID)
	assert.Equal(t, string(pool.StatusFailed), resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "upstream timeout", resp.Result.Err)
	assert.NotNil(t, resp.StartedAt)
	assert.NotNil(t, resp.CompletedAt)
}

func TestGetTask_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeTransport{})
	router := newTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksAndStatus(t *testing.T) {
	handler, p := newTestHandler(t, &fakeTransport{})
	router := newTestRouter(handler)

	for i := 0; i < 3; i++ {
		_, err := p.Get("https://example.com/items", nil, nil)
		require.NoError(t, err)
	}
	require.True(t, p.Wait(2*time.Second))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 3)

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats pool.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Completed)
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: pool.ErrEmptyEndpoint, want: http.StatusBadRequest},
		{err: pool.ErrInvalidMethod, want: http.StatusBadRequest},
		{err: pool.ErrDuplicateTask, want: http.StatusConflict},
		{err: pool.ErrPoolClosed, want: http.StatusServiceUnavailable},
		{err: errors.New("anything else"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err), tt.err.Error())
	}
}
