// Package service holds the business logic behind the HTTP handlers.  It
// depends on storage and messaging through the small interfaces below so it
// can be tested with in-memory fakes.
package service

import (
	"context"

	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/queue"
)

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateLocale(ctx context.Context, id uint64, locale string) error
}

// NotificationTypeStore is implemented by repository.NotificationTypeRepo.
type NotificationTypeStore interface {
	ListActive(ctx context.Context) ([]model.NotificationType, error)
	GetActiveByKey(ctx context.Context, key string) (model.NotificationType, error)
}

// PreferenceStore is implemented by repository.PreferenceRepo.
type PreferenceStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.UserNotificationPreference, error)
	Upsert(ctx context.Context, userID, typeID uint64, enabled bool) (model.UserNotificationPreference, error)
}

// EventPublisher is implemented by queue.Publisher and queue.NoopPublisher.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
	PublishPreferenceUpdated(ctx context.Context, ev queue.PreferenceUpdatedEvent) error
}
