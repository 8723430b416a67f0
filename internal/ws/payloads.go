package ws

import "taskboard/internal/domain"

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type SnapshotMessage struct {
	Type  string        `json:"type"`
	Tasks []domain.Task `json:"tasks"`
	Stats domain.Stats  `json:"stats"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
