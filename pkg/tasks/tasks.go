// Package tasks defines the messages that are sent to Kafka.
package tasks

import (
	"time"

	"dome-admin-go/internal/model"

	"github.com/google/uuid"
)

// FileStoredTask is published once for every file that reached durable storage.
type FileStoredTask struct {
	EventID    string           `json:"event_id"`
	RequestID  string           `json:"request_id,omitempty"`
	File       model.StoredFile `json:"file"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewFileStoredTask builds a task with a fresh event id.
func NewFileStoredTask(f model.StoredFile, requestID string) FileStoredTask {
	return FileStoredTask{
		EventID:    uuid.NewString(),
		RequestID:  requestID,
		File:       f,
		OccurredAt: time.Now(),
	}
}
