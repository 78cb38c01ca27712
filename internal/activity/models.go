// Package activity records administrative actions for the admin dashboard's
// recent-activity feed. Recording is fail-open: a failure to persist or
// publish an entry never fails the action that produced it.
package activity

import (
	"context"
	"time"
)

// Action classifies what an admin did.
type Action string

const (
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionDelete  Action = "delete"
	ActionWarn    Action = "warn"
)

// Entry is one recorded admin action.
type Entry struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"adminId"`
	AdminName  string    `json:"adminName"`
	Action     Action    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store is the persistence boundary for activity entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Publisher fans an entry out to an external sink (e.g. a Kafka topic).
// Implementations must be fail-open: errors are logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, e Entry)
}
