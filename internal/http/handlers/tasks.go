package handlers

import (
	"errors"
	"net/http"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

const notSavedMessage = "change applied but may not be saved"

// ListTasks returns the tasks selected by ?filter= together with the stats of
// the whole collection.
func (h *Handler) ListTasks(c *gin.Context) {
	f, err := domain.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filter": f,
		"tasks":  h.Tasks.List(f),
		"stats":  h.Tasks.Stats(),
	})
}

func (h *Handler) TaskStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.Tasks.Stats()})
}

func (h *Handler) GetTask(c *gin.Context) {
	task, ok := h.Tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// CreateTask adds a task. An empty title is declined without an error.
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := mutationContext(c.Request.Context())
	defer cancel()

	task, err := h.Tasks.Add(ctx, req.Title, req.Description, priority)
	if err != nil {
		h.persistFailed(c, "add", err, gin.H{"task": task})
		return
	}
	if task == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil, "skipped": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) ToggleTask(c *gin.Context) {
	ctx, cancel := mutationContext(c.Request.Context())
	defer cancel()

	task, err := h.Tasks.ToggleComplete(ctx, c.Param("id"))
	if err != nil {
		h.persistFailed(c, "toggle", err, gin.H{"task": task})
		return
	}
	if task == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil, "skipped": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	ctx, cancel := mutationContext(c.Request.Context())
	defer cancel()

	deleted, err := h.Tasks.Delete(ctx, c.Param("id"))
	if err != nil {
		h.persistFailed(c, "delete", err, gin.H{"deleted": deleted})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Export streams the collection exactly as it is persisted.
func (h *Handler) Export(c *gin.Context) {
	data, err := h.Tasks.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export tasks"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// persistFailed reports a write-through failure. The in-memory change stays,
// so the body still carries the result of the operation.
func (h *Handler) persistFailed(c *gin.Context, op string, err error, body gin.H) {
	status := http.StatusInternalServerError
	log := logger.FromContext(c.Request.Context())
	if !errors.Is(err, service.ErrPersist) {
		log.Error("task operation failed", "op", op, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	owner, _ := getOwner(c)
	log.Warn("task change not saved", "op", op, "owner", owner, "error", err)
	body["error"] = notSavedMessage
	c.JSON(status, body)
}
