package model

import (
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/notification-preferences/internal/i18n"
)

// MaxNotificationKeyLen matches the width of notification_types.key.
const MaxNotificationKeyLen = 64

// NotificationType is a catalog entry describing a category of
// notification a user can enable or disable.  It corresponds to a row in
// the `notification_types` table; Descriptions and DeprecatedReason are
// JSON objects keyed by locale.
type NotificationType struct {
	ID               uint64    // notification_types.id
	Key              string    // notification_types.key (unique)
	Descriptions     i18n.Text // notification_types.descriptions
	IsActive         bool      // notification_types.is_active
	IsDeprecated     bool      // notification_types.is_deprecated
	DeprecatedReason i18n.Text // notification_types.deprecated_reason (nullable)
	CreatedAt        time.Time // notification_types.created_at
	UpdatedAt        time.Time // notification_types.updated_at
}

var (
	ErrNotificationKeyRequired = errors.New("notification type key is required")
	ErrNotificationKeyTooLong  = errors.New("notification type key is too long")
	ErrDescriptionsRequired    = errors.New("notification type needs at least one description")
)

// Validate enforces the catalog invariants: a non-empty key that fits the
// column and at least one description.
func (n NotificationType) Validate() error {
	key := strings.TrimSpace(n.Key)
	if key == "" {
		return ErrNotificationKeyRequired
	}
	if len(key) > MaxNotificationKeyLen {
		return ErrNotificationKeyTooLong
	}
	if len(n.Descriptions) == 0 {
		return ErrDescriptionsRequired
	}
	return nil
}

// Description returns the description for locale following the i18n
// fallback chain, or "" when none is stored.
func (n NotificationType) Description(locale string) string {
	d, _ := n.Descriptions.Resolve(locale)
	return d
}

// Reason returns the deprecation reason for locale.  It is nil when the
// type is not deprecated or carries no reason.
func (n NotificationType) Reason(locale string) *string {
	if !n.IsDeprecated {
		return nil
	}
	r, ok := n.DeprecatedReason.Resolve(locale)
	if !ok {
		return nil
	}
	return &r
}

// UserNotificationPreference stores whether a user wants a given
// notification type.  At most one row exists per (user, type); rows are
// removed by the storage layer when either parent is deleted.
type UserNotificationPreference struct {
	ID                  uint64    // user_notification_preferences.id
	UserID              uint64    // user_notification_preferences.user_id
	NotificationTypeID  uint64    // user_notification_preferences.notification_type_id
	NotificationTypeKey string    // joined from notification_types.key
	Enabled             bool      // user_notification_preferences.enabled
	CreatedAt           time.Time // user_notification_preferences.created_at
	UpdatedAt           time.Time // user_notification_preferences.updated_at
}
