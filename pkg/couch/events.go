package couch

import (
	"context"
	"time"
)

// MutationEvent describes a write the server has accepted.
type MutationEvent struct {
	Operation  string    `json:"operation"     yaml:"operation"`
	Database   string    `json:"database"      yaml:"database"`
	DocumentID string    `json:"id,omitempty"  yaml:"id,omitempty"`
	Rev        string    `json:"rev,omitempty" yaml:"rev,omitempty"`
	Timestamp  time.Time `json:"timestamp"     yaml:"timestamp"`
}

// Notifier receives an event after each successful mutation. A failing
// notifier is logged and never fails the mutation itself.
type Notifier interface {
	Notify(ctx context.Context, event MutationEvent) error
}
