package handlers

import (
	"context"
	"time"

	"taskboard/internal/domain"

	"github.com/gin-gonic/gin"
)

// TaskService is the slice of service.TaskStore the HTTP layer needs.
type TaskService interface {
	Add(ctx context.Context, title, description string, priority domain.Priority) (*domain.Task, error)
	ToggleComplete(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(f domain.Filter) []domain.Task
	Get(id string) (*domain.Task, bool)
	Stats() domain.Stats
	Snapshot() ([]byte, error)
}

// writeTimeout bounds the write-through of a single request.
const writeTimeout = 5 * time.Second

type Handler struct {
	Tasks TaskService
}

func NewHandler(tasks TaskService) *Handler {
	return &Handler{Tasks: tasks}
}

// getOwner returns the JWT subject set by middleware.Auth, if any.
func getOwner(c *gin.Context) (string, bool) {
	owner := c.GetString("owner")
	return owner, owner != ""
}

// mutationContext detaches the write-through from client cancellation: once
// a mutation is applied its write should still be attempted.
func mutationContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), writeTimeout)
}
