// Package queue defines message payloads exchanged over the message broker.
package queue

import "context"

// Event types published on the account.events queue.
const (
	EventAccountCreated  = "account.created"
	EventAccountDeleted  = "account.deleted"
	EventPasswordChanged = "account.password_changed"
)

// AccountEvent is published on account lifecycle transitions.  It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type AccountEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Username   string `json:"username,omitempty"`
	UserType   string `json:"user_type,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Publisher pushes account events to the broker.  Handlers treat
// publishing as fire-and-forget: errors are logged by the implementation
// and never interrupt the request flow.
type Publisher interface {
	PublishAccountEvent(ctx context.Context, ev AccountEvent) error
}
