package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.TaskStore, *repository.MemoryKV) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := repository.NewMemoryKV()
	store := service.NewTaskStore(context.Background(), kv, service.WithLogger(logger.Discard()))
	h := NewHandler(store)

	r := gin.New()
	r.GET("/tasks", h.ListTasks)
	r.GET("/tasks/stats", h.TaskStats)
	r.GET("/tasks/:id", h.GetTask)
	r.POST("/tasks", h.CreateTask)
	r.PATCH("/tasks/:id/toggle", h.ToggleTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	r.GET("/export", h.Export)
	r.GET("/me", h.Me)
	return r, store, kv
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type taskResponse struct {
	Task    *domain.Task `json:"task"`
	Skipped bool         `json:"skipped"`
	Error   string       `json:"error"`
}

type listResponse struct {
	Filter domain.Filter `json:"filter"`
	Tasks  []domain.Task `json:"tasks"`
	Stats  domain.Stats  `json:"stats"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateTask(t *testing.T) {
	r, _, kv := newTestRouter(t)

	w := do(r, http.MethodPost, "/tasks", `{"title":"Ship release","description":"v2.0","priority":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[taskResponse](t, w)
	require.NotNil(t, res.Task)
	assert.Equal(t, "Ship release", res.Task.Title)
	assert.Equal(t, domain.PriorityHigh, res.Task.Priority)
	assert.Equal(t, 1, kv.Writes())

	w = do(r, http.MethodPost, "/tasks", `{"title":"defaults"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.PriorityMedium, decode[taskResponse](t, w).Task.Priority)
}

func TestCreateTaskEmptyTitleIsSkipped(t *testing.T) {
	r, store, kv := newTestRouter(t)

	w := do(r, http.MethodPost, "/tasks", `{"title":"   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[taskResponse](t, w)
	assert.True(t, res.Skipped)
	assert.Nil(t, res.Task)
	assert.Equal(t, 0, store.Stats().Total)
	assert.Equal(t, 0, kv.Writes())
}

func TestCreateTaskBadInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"title":`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"title":"x","priority":"urgent"}`).Code)
}

func TestListFiltersAndStats(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	milk, err := store.Add(ctx, "Buy milk", "", domain.PriorityLow)
	require.NoError(t, err)
	_, err = store.Add(ctx, "Ship release", "v2.0", domain.PriorityHigh)
	require.NoError(t, err)

	w := do(r, http.MethodPatch, "/tasks/"+milk.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[taskResponse](t, w).Task.Completed)

	all := decode[listResponse](t, do(r, http.MethodGet, "/tasks", ""))
	assert.Equal(t, domain.FilterAll, all.Filter)
	require.Len(t, all.Tasks, 2)
	assert.Equal(t, "Ship release", all.Tasks[0].Title)
	assert.Equal(t, domain.Stats{Total: 2, Completed: 1, Active: 1}, all.Stats)

	done := decode[listResponse](t, do(r, http.MethodGet, "/tasks?filter=completed", ""))
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, "Buy milk", done.Tasks[0].Title)

	active := decode[listResponse](t, do(r, http.MethodGet, "/tasks?filter=active", ""))
	require.Len(t, active.Tasks, 1)
	assert.Equal(t, "Ship release", active.Tasks[0].Title)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tasks?filter=done", "").Code)

	w = do(r, http.MethodGet, "/tasks/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stats":{"total":2,"completed":1,"active":1}}`, w.Body.String())
}

func TestGetToggleDeleteUnknown(t *testing.T) {
	r, _, kv := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tasks/nope", "").Code)

	w := do(r, http.MethodPatch, "/tasks/nope/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[taskResponse](t, w).Skipped)

	w = do(r, http.MethodDelete, "/tasks/nope", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, w.Body.String())
	assert.Equal(t, 0, kv.Writes())
}

func TestDeleteTask(t *testing.T) {
	r, store, _ := newTestRouter(t)
	task, err := store.Add(context.Background(), "gone soon", "", domain.PriorityLow)
	require.NoError(t, err)

	w := do(r, http.MethodDelete, "/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
	assert.Equal(t, 0, store.Stats().Total)
}

func TestWriteFailureIsReported(t *testing.T) {
	r, store, kv := newTestRouter(t)
	kv.FailWrites = errors.New("disk full")

	w := do(r, http.MethodPost, "/tasks", `{"title":"unsaved"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	res := decode[taskResponse](t, w)
	assert.Equal(t, notSavedMessage, res.Error)
	require.NotNil(t, res.Task)
	assert.Equal(t, 1, store.Stats().Total, "mutation stays in memory")
}

func TestExport(t *testing.T) {
	r, store, kv := newTestRouter(t)
	_, err := store.Add(context.Background(), "exported", "", domain.PriorityLow)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	persisted, _, err := kv.Read(context.Background(), service.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, persisted, w.Body.String())
}

func TestMeAnonymous(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}
