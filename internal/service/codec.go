package service

import (
	"encoding/json"
	"fmt"

	"taskboard/internal/domain"
)

// EncodeTasks renders the collection in its persisted form: a JSON array,
// newest first.
func EncodeTasks(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return json.Marshal(tasks)
}

// DecodeTasks parses a persisted collection. Every record must pass
// Task.Validate and ids must be unique; otherwise the whole value is rejected.
func DecodeTasks(raw string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	seen := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[tasks[i].ID]; dup {
			return nil, fmt.Errorf("task %d: duplicate id %q", i, tasks[i].ID)
		}
		seen[tasks[i].ID] = struct{}{}
	}
	return tasks, nil
}
