package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/notification-preferences/internal/model"
)

const notificationTypeColumns = "id, `key`, descriptions, is_active, is_deprecated, deprecated_reason, created_at, updated_at"

// NotificationTypeRepo encapsulates queries on the `notification_types`
// catalog.
type NotificationTypeRepo struct {
	db *sql.DB
}

func NewNotificationTypeRepo(db *sql.DB) *NotificationTypeRepo {
	return &NotificationTypeRepo{db: db}
}

// ListActive returns all active notification types ordered by key.  The key
// column uses a binary collation so the order is byte-wise.
func (r *NotificationTypeRepo) ListActive(ctx context.Context) ([]model.NotificationType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationTypeColumns+" FROM notification_types WHERE is_active = TRUE ORDER BY `key` ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.NotificationType
	for rows.Next() {
		n, err := scanNotificationType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetActiveByKey fetches an active notification type.  Inactive and unknown
// keys both yield ErrNotificationTypeNotFound.
func (r *NotificationTypeRepo) GetActiveByKey(ctx context.Context, key string) (model.NotificationType, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+notificationTypeColumns+" FROM notification_types WHERE `key` = ? AND is_active = TRUE LIMIT 1", key)
	n, err := scanNotificationType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotificationType{}, ErrNotificationTypeNotFound
	}
	return n, err
}

// Upsert creates the notification type or replaces the stored fields of the
// row with the same key.  It is used by catalog administration only.
func (r *NotificationTypeRepo) Upsert(ctx context.Context, n *model.NotificationType) error {
	if err := n.Validate(); err != nil {
		return err
	}
	const q = "INSERT INTO notification_types (`key`, descriptions, is_active, is_deprecated, deprecated_reason) " +
		"VALUES (?,?,?,?,?) ON DUPLICATE KEY UPDATE " +
		"descriptions=VALUES(descriptions), is_active=VALUES(is_active), is_deprecated=VALUES(is_deprecated), " +
		"deprecated_reason=VALUES(deprecated_reason), updated_at=CURRENT_TIMESTAMP"
	if _, err := r.db.ExecContext(ctx, q, n.Key, n.Descriptions, n.IsActive, n.IsDeprecated, n.DeprecatedReason); err != nil {
		return err
	}
	row := r.db.QueryRowContext(ctx,
		"SELECT "+notificationTypeColumns+" FROM notification_types WHERE `key` = ? LIMIT 1", n.Key)
	stored, err := scanNotificationType(row)
	if err != nil {
		return err
	}
	*n = stored
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotificationType(s rowScanner) (model.NotificationType, error) {
	var n model.NotificationType
	err := s.Scan(&n.ID, &n.Key, &n.Descriptions, &n.IsActive, &n.IsDeprecated, &n.DeprecatedReason, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
