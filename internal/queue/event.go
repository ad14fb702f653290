// Package queue carries domain events over RabbitMQ: a publisher used by the
// service layer and an audit consumer that appends events to a log file.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  Each event type has its own durable queue and is published
// on the default exchange with the queue name as routing key.
const (
	UserRegisteredQueue    = "user.registered"
	PreferenceUpdatedQueue = "preference.updated"
)

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	EventID    string `json:"event_id"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	Locale     string `json:"locale"`
	OccurredAt string `json:"occurred_at"`
}

// PreferenceUpdatedEvent is published whenever a user sets a preference.
type PreferenceUpdatedEvent struct {
	EventID             string `json:"event_id"`
	UserID              uint64 `json:"user_id"`
	NotificationTypeKey string `json:"notification_type_key"`
	Enabled             bool   `json:"enabled"`
	OccurredAt          string `json:"occurred_at"`
}

// NewUserRegistered stamps a fresh event id and timestamp.
func NewUserRegistered(userID uint64, email, locale string, at time.Time) UserRegisteredEvent {
	return UserRegisteredEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Email:      email,
		Locale:     locale,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}

// NewPreferenceUpdated stamps a fresh event id and timestamp.
func NewPreferenceUpdated(userID uint64, key string, enabled bool, at time.Time) PreferenceUpdatedEvent {
	return PreferenceUpdatedEvent{
		EventID:             uuid.NewString(),
		UserID:              userID,
		NotificationTypeKey: key,
		Enabled:             enabled,
		OccurredAt:          at.UTC().Format(time.RFC3339),
	}
}
