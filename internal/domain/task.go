package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a caller submits a task without a priority.
const DefaultPriority = PriorityMedium

var ErrInvalidPriority = errors.New("invalid priority")

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts low/medium/high in any case. An empty string maps to
// DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrEmptyID    = errors.New("task id is empty")
	ErrEmptyTitle = errors.New("task title is empty")
)

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return nil
}

// Stats is derived from the collection; Total always equals Completed + Active.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

func ComputeStats(tasks []Task) Stats {
	var s Stats
	for i := range tasks {
		if tasks[i].Completed {
			s.Completed++
		} else {
			s.Active++
		}
	}
	s.Total = s.Completed + s.Active
	return s
}
