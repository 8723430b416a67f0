package domain

import "time"

type EventType string

const (
	EventTaskAdded   EventType = "task.added"
	EventTaskToggled EventType = "task.toggled"
	EventTaskDeleted EventType = "task.deleted"
)

// Event describes one applied mutation. Task holds the state after the
// change, or the removed task for EventTaskDeleted.
type Event struct {
	Type  EventType `json:"type"`
	Task  Task      `json:"task"`
	Stats Stats     `json:"stats"`
	At    time.Time `json:"at"`
}
